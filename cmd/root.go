package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Build metadata variables, set by -ldflags at compile time.
var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "facemark",
	Short: "Face recognition attendance service",
	Long: `Facemark manages the enrollment-to-recognition lifecycle of a face
recognition attendance system: it stores enrollment images, keeps the
recognition model retrained, and records attendance produced by the
face matcher.`,
	Version: fmt.Sprintf("%s (commit %s, built %s)", Version, CommitSHA, BuildDate),
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
