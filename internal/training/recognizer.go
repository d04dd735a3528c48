package training

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"

	"github.com/jvasek/facemark/internal/config"
)

// Trainer rebuilds the recognition model from the enrollment image corpus.
// The production implementation shells out to the external recognizer; tests
// substitute fakes.
type Trainer interface {
	Train(ctx context.Context) error
}

// Recognizer invokes the external face recognition trainer as a subprocess.
// The trainer is opaque to this service: invoke, stream its output to the log,
// await the exit status.
type Recognizer struct {
	cfg       config.RecognizerConfig
	corpusDir string
}

// NewRecognizer creates a subprocess-backed trainer. corpusDir is the
// enrollment image root passed explicitly to every invocation, so a run always
// trains on the corpus location captured at launch.
func NewRecognizer(cfg config.RecognizerConfig, corpusDir string) *Recognizer {
	return &Recognizer{cfg: cfg, corpusDir: corpusDir}
}

// Train runs one full training pass and blocks until the trainer exits.
// Diagnostic output is streamed to the log line by line as it arrives.
func (r *Recognizer) Train(ctx context.Context) error {
	args := append(append([]string{}, r.cfg.Args...), "--images", r.corpusDir)
	cmd := exec.CommandContext(ctx, r.cfg.Command, args...)
	cmd.Dir = r.cfg.WorkingDir
	// The trainer prints progress with non-ASCII glyphs; force UTF-8 so its
	// output stream does not fail on narrow platform encodings.
	cmd.Env = append(os.Environ(), "PYTHONIOENCODING=utf-8")

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("opening trainer output pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launching trainer %s: %w", r.cfg.Command, err)
	}

	scanner := bufio.NewScanner(stdout)
	// Trainers dump whole progress bars on one line; the default 64KB line
	// limit would stop streaming mid-run.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		log.Printf("[trainer] %s", scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		log.Printf("[trainer] output stream error: %v", err)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("trainer exited: %w", err)
	}
	return nil
}
