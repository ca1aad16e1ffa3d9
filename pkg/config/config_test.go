package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type sampleConfig struct {
	Backend string        `split_words:"true" default:"file"`
	Window  int           `split_words:"true" default:"10"`
	Timeout time.Duration `split_words:"true" default:"5s"`
}

type checkedConfig struct {
	Name string `split_words:"true"`
}

var errNameRequired = errors.New("name is required")

func (c *checkedConfig) Validate() error {
	if c.Name == "" {
		return errNameRequired
	}
	return nil
}

func TestNewReadsEnvFileWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	content := "CFGTEST_BACKEND=bolt\nCFGTEST_WINDOW=4\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv(EnvFileVar, path)
	t.Setenv("CFGTEST_WINDOW", "7")

	conf, err := New[sampleConfig]("CFGTEST")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if conf.Backend != "bolt" {
		t.Fatalf("Backend = %q, want value from file", conf.Backend)
	}
	if conf.Window != 7 {
		t.Fatalf("Window = %d, want process env to win", conf.Window)
	}
	if conf.Timeout != 5*time.Second {
		t.Fatalf("Timeout = %s, want default", conf.Timeout)
	}
}

func TestNewRunsValidator(t *testing.T) {
	t.Setenv(EnvFileVar, "")

	if _, err := New[checkedConfig]("CFGCHECK"); !errors.Is(err, errNameRequired) {
		t.Fatalf("New() error = %v, want errNameRequired", err)
	}

	t.Setenv("CFGCHECK_NAME", "arbiter")
	conf, err := New[checkedConfig]("CFGCHECK")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if conf.Name != "arbiter" {
		t.Fatalf("Name = %q", conf.Name)
	}
}

func TestNewMissingEnvFile(t *testing.T) {
	t.Setenv(EnvFileVar, filepath.Join(t.TempDir(), "missing.env"))

	if _, err := New[sampleConfig]("CFGMISSING"); err == nil {
		t.Fatal("expected error for missing env file")
	}
}
