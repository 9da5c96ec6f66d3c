package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("overrides_defaults", func(t *testing.T) {
		path := writeConfigFile(t, "api:\n  url: http://10.0.0.5:5001\n  timeout: 30s\n")

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if cfg.API.URL != "http://10.0.0.5:5001" {
			t.Errorf("Expected overridden URL, got %q", cfg.API.URL)
		}
		if cfg.API.Timeout.Std() != 30*time.Second {
			t.Errorf("Expected 30s timeout, got %v", cfg.API.Timeout.Std())
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("Expected defaulted logging level, got %q", cfg.Logging.Level)
		}
	})

	t.Run("empty_file_uses_defaults", func(t *testing.T) {
		path := writeConfigFile(t, "")

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Failed to load empty config: %v", err)
		}
		if cfg.API.URL != DefaultConfig().API.URL {
			t.Errorf("Expected default URL, got %q", cfg.API.URL)
		}
	})

	t.Run("rejects_unknown_fields", func(t *testing.T) {
		path := writeConfigFile(t, "api:\n  url: http://127.0.0.1:5001\n  cluster_url: http://127.0.0.1:9094\n")

		if _, err := Load(path); err == nil {
			t.Fatal("Expected error for unknown field")
		}
	})

	t.Run("rejects_bad_duration", func(t *testing.T) {
		path := writeConfigFile(t, "api:\n  timeout: soon\n")

		if _, err := Load(path); err == nil {
			t.Fatal("Expected error for unparseable duration")
		}
	})

	t.Run("numeric_duration", func(t *testing.T) {
		path := writeConfigFile(t, "api:\n  timeout: 5000000000\n")

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if cfg.API.Timeout.Std() != 5*time.Second {
			t.Errorf("Expected 5s timeout from nanoseconds, got %v", cfg.API.Timeout.Std())
		}
	})

	t.Run("missing_file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Fatal("Expected error for missing file")
		}
	})
}
