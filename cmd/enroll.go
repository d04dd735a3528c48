package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/jvasek/facemark/internal/attendance"
	"github.com/jvasek/facemark/internal/config"
	"github.com/jvasek/facemark/internal/enrollment"
	"github.com/jvasek/facemark/internal/imagestore"
	"github.com/jvasek/facemark/internal/training"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <registration-no> <folder-path>",
	Short: "Enroll a student from a folder of face images",
	Long: `Enroll a student using face images captured ahead of time.

All supported images in the folder are read and stored under the
student's enrollment folder. By default the recognition model is
retrained in the foreground afterwards.

Example:
  facemark enroll REG7 /path/to/captures --name "Asha Rao" --email asha@example.com`,
	Args: cobra.ExactArgs(2),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("name", "", "Student name (required)")
	enrollCmd.Flags().String("email", "", "Student email")
	enrollCmd.Flags().String("password", "", "Student credential")
	enrollCmd.Flags().Bool("skip-training", false, "Skip the foreground training pass after enrollment")
	enrollCmd.MarkFlagRequired("name")
}

// isImageFile checks if a file has a supported image extension
func isImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	supported := map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
		".bmp":  true,
		".webp": true,
	}
	return supported[ext]
}

// collectImages reads all supported images in a folder (non-recursive).
func collectImages(folderPath string) ([][]byte, error) {
	info, err := os.Stat(folderPath)
	if err != nil {
		return nil, fmt.Errorf("cannot access folder %s: %w", folderPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", folderPath)
	}

	entries, err := os.ReadDir(folderPath)
	if err != nil {
		return nil, fmt.Errorf("reading folder %s: %w", folderPath, err)
	}

	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() && isImageFile(entry.Name()) {
			paths = append(paths, filepath.Join(folderPath, entry.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no supported images found in %s", folderPath)
	}

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription("Reading images"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	images := make([][]byte, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		images = append(images, data)
		bar.Add(1)
	}
	fmt.Println()

	return images, nil
}

// noopRetrainer suppresses the async retrain trigger; the CLI runs the
// training pass in the foreground instead.
type noopRetrainer struct{}

func (noopRetrainer) RequestRetrain() {}

func runEnroll(cmd *cobra.Command, args []string) error {
	regNo := args[0]
	folderPath := args[1]
	name := mustGetString(cmd, "name")
	email := mustGetString(cmd, "email")
	password := mustGetString(cmd, "password")
	skipTraining := mustGetBool(cmd, "skip-training")

	cfg := config.Load()
	ctx := context.Background()

	images, err := collectImages(folderPath)
	if err != nil {
		return err
	}

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	store := imagestore.New(&cfg.ImageStore)
	ledger := attendance.NewLedger(repos.attendance)
	manager := enrollment.NewManager(repos.identities, store, ledger, noopRetrainer{})

	identity, err := manager.Enroll(ctx, regNo, name, email, password, images)
	if errors.Is(err, enrollment.ErrAlreadyEnrolled) {
		return fmt.Errorf("%s is already enrolled", regNo)
	}
	if err != nil {
		return fmt.Errorf("enrolling %s: %w", regNo, err)
	}

	fmt.Printf("Enrolled %s (%s) with %d images at %s\n", identity.Name, identity.RegistrationNo, len(images), identity.ImagePath)

	if skipTraining {
		fmt.Println("Skipping training pass (--skip-training)")
		return nil
	}

	fmt.Println("Retraining recognition model...")
	recognizer := training.NewRecognizer(cfg.Recognizer, store.BaseDir())
	if err := recognizer.Train(ctx); err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	fmt.Println("Training completed")
	return nil
}
