package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/log"
)

func TestLoadEnvFileDoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("FINTRACK_TEST_A=from-file\nFINTRACK_TEST_B=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("FINTRACK_TEST_A", "from-env")
	t.Setenv("FINTRACK_TEST_B", "")
	os.Unsetenv("FINTRACK_TEST_B")

	LoadEnvFile(path)
	defer os.Unsetenv("FINTRACK_TEST_B")

	if got := os.Getenv("FINTRACK_TEST_A"); got != "from-env" {
		t.Fatalf("existing variable overridden: %q", got)
	}
	if got := os.Getenv("FINTRACK_TEST_B"); got != "from-file" {
		t.Fatalf("variable not loaded from file: %q", got)
	}
}

func TestLoadEnvFileIgnoresMissingFile(t *testing.T) {
	LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoadConfigReportsValidationErrors(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("PORT", "not-a-port")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected validation error")
	}

	t.Setenv("PORT", "8080")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.StorageBackend != "memory" {
		t.Fatalf("unexpected backend %q", cfg.StorageBackend)
	}
}

func TestShutdownContextCancelsWithParent(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	ctx, cancel := ShutdownContext(parent, log.Discard())
	defer cancel()

	cancelParent()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatalf("context not cancelled with parent")
	}
}

func TestSetupLoggerLevel(t *testing.T) {
	logger := SetupLogger("error")
	if logger.Enabled(context.Background(), -4) {
		t.Fatalf("debug should be disabled at error level")
	}
}
