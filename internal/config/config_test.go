package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("DATABASE_DRIVER")
	os.Unsetenv("DATABASE_MAX_OPEN_CONNS")
	os.Unsetenv("IMAGE_BASE_DIR")
	os.Unsetenv("RECOGNIZER_COMMAND")
	os.Unsetenv("RECOGNIZER_TRAIN_SCRIPT")

	cfg := Load()

	if cfg.Database.Driver != "postgres" {
		t.Errorf("expected default driver 'postgres', got '%s'", cfg.Database.Driver)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("expected default max open conns 25, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.ImageStore.BaseDir != "registered_images" {
		t.Errorf("expected default image base dir 'registered_images', got '%s'", cfg.ImageStore.BaseDir)
	}
}

func TestLoad_EmbeddedRecognizerDefaults(t *testing.T) {
	os.Unsetenv("RECOGNIZER_COMMAND")
	os.Unsetenv("RECOGNIZER_WORKDIR")
	os.Unsetenv("RECOGNIZER_TRAIN_SCRIPT")

	cfg := Load()

	if cfg.Recognizer.Command != "python" {
		t.Errorf("expected embedded recognizer command 'python', got '%s'", cfg.Recognizer.Command)
	}
	if len(cfg.Recognizer.Args) != 1 || cfg.Recognizer.Args[0] != "train_model.py" {
		t.Errorf("expected embedded args [train_model.py], got %v", cfg.Recognizer.Args)
	}
}

func TestLoad_RecognizerOverrides(t *testing.T) {
	t.Setenv("RECOGNIZER_COMMAND", "python3")
	t.Setenv("RECOGNIZER_WORKDIR", "/opt/recognizer")
	t.Setenv("RECOGNIZER_TRAIN_SCRIPT", "/opt/recognizer/train.py")

	cfg := Load()

	if cfg.Recognizer.Command != "python3" {
		t.Errorf("expected recognizer command 'python3', got '%s'", cfg.Recognizer.Command)
	}
	if cfg.Recognizer.WorkingDir != "/opt/recognizer" {
		t.Errorf("expected workdir '/opt/recognizer', got '%s'", cfg.Recognizer.WorkingDir)
	}
	if len(cfg.Recognizer.Args) != 1 || cfg.Recognizer.Args[0] != "/opt/recognizer/train.py" {
		t.Errorf("expected args [/opt/recognizer/train.py], got %v", cfg.Recognizer.Args)
	}
}

func TestLoad_DatabaseConfig(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "mysql")
	t.Setenv("DATABASE_URL", "facemark:facemark@tcp(localhost:3306)/facemark")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "10")
	t.Setenv("DATABASE_MAX_IDLE_CONNS", "3")

	cfg := Load()

	if cfg.Database.Driver != "mysql" {
		t.Errorf("expected driver 'mysql', got '%s'", cfg.Database.Driver)
	}
	if cfg.Database.URL != "facemark:facemark@tcp(localhost:3306)/facemark" {
		t.Errorf("unexpected database URL '%s'", cfg.Database.URL)
	}
	if cfg.Database.MaxOpenConns != 10 {
		t.Errorf("expected max open conns 10, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns != 3 {
		t.Errorf("expected max idle conns 3, got %d", cfg.Database.MaxIdleConns)
	}
}

func TestLoad_InvalidConnCounts(t *testing.T) {
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "invalid")
	t.Setenv("DATABASE_MAX_IDLE_CONNS", "-2")

	cfg := Load()

	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("expected fallback max open conns 25, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns != 5 {
		t.Errorf("expected fallback max idle conns 5, got %d", cfg.Database.MaxIdleConns)
	}
}
