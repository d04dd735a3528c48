package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jvasek/facemark/internal/config"
	"github.com/jvasek/facemark/internal/imagestore"
	"github.com/jvasek/facemark/internal/training"
)

var retrainCmd = &cobra.Command{
	Use:   "retrain",
	Short: "Run one training pass over the enrollment corpus",
	Long: `Run the external face recognition trainer once in the foreground,
over all currently stored enrollment images. Useful after restoring
image folders from backup or changing the training script.`,
	RunE: runRetrain,
}

func init() {
	rootCmd.AddCommand(retrainCmd)
}

func runRetrain(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	store := imagestore.New(&cfg.ImageStore)
	recognizer := training.NewRecognizer(cfg.Recognizer, store.BaseDir())

	fmt.Printf("Training over corpus at %s\n", store.BaseDir())
	if err := recognizer.Train(ctx); err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	fmt.Println("Training completed")
	return nil
}
