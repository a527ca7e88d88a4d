package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Token string `yaml:"token"`
}

type validated struct {
	Name string `yaml:"name"`
}

var errNameMissing = errors.New("name is required")

func (v *validated) Validate() error {
	if v.Name == "" {
		return errNameMissing
	}
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_TOKEN", "sekrit")
	path := writeFile(t, "name: demo\ntoken: ${SAMPLE_TOKEN}\n")

	var cfg sample
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Token != "sekrit" {
		t.Errorf("token = %q, want sekrit", cfg.Token)
	}
}

func TestLoadMissingFile(t *testing.T) {
	var cfg sample
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &cfg); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeFile(t, "name: [unclosed\n")
	var cfg sample
	if err := Load(path, &cfg); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadRunsValidator(t *testing.T) {
	path := writeFile(t, "name: \"\"\n")
	var cfg validated
	err := Load(path, &cfg)
	if !errors.Is(err, errNameMissing) {
		t.Fatalf("err = %v, want wrapped errNameMissing", err)
	}
}
