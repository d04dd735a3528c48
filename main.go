package main

import "github.com/jvasek/facemark/cmd"

func main() {
	cmd.Execute()
}
