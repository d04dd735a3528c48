package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed recognizer.yaml
var recognizerYAML []byte

type Config struct {
	Database   DatabaseConfig
	ImageStore ImageStoreConfig
	Recognizer RecognizerConfig
}

type DatabaseConfig struct {
	Driver       string // "postgres" (default) or "mysql"
	URL          string // connection URL / DSN
	MaxOpenConns int    // maximum open connections (default 25)
	MaxIdleConns int    // maximum idle connections (default 5)
}

type ImageStoreConfig struct {
	BaseDir string // root directory for enrollment image folders
}

// RecognizerConfig describes how to invoke the external face recognition
// trainer. Command and Args default to the values embedded in recognizer.yaml
// and can be overridden per deployment via environment variables.
type RecognizerConfig struct {
	Command    string   `yaml:"command"`     // trainer executable (e.g. "python")
	Args       []string `yaml:"args"`        // trainer arguments (e.g. the training script)
	WorkingDir string   `yaml:"working_dir"` // fixed working directory for the trainer
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envString reads an environment variable with a fallback default.
func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func Load() *Config {
	var recognizer RecognizerConfig
	if err := yaml.Unmarshal(recognizerYAML, &recognizer); err != nil {
		// This is an embedded file so this error should never happen in practice.
		panic("failed to unmarshal embedded recognizer.yaml: " + err.Error())
	}

	recognizer.Command = envString("RECOGNIZER_COMMAND", recognizer.Command)
	recognizer.WorkingDir = envString("RECOGNIZER_WORKDIR", recognizer.WorkingDir)
	if script := os.Getenv("RECOGNIZER_TRAIN_SCRIPT"); script != "" {
		recognizer.Args = []string{script}
	}

	return &Config{
		Database: DatabaseConfig{
			Driver:       envString("DATABASE_DRIVER", "postgres"),
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		ImageStore: ImageStoreConfig{
			BaseDir: envString("IMAGE_BASE_DIR", "registered_images"),
		},
		Recognizer: recognizer,
	}
}
