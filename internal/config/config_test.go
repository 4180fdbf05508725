package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var envKeys = []string{
	EnvConfig,
	EnvPrefix + "PRETTY_NAME",
	EnvPrefix + "MINIFIED_NAME",
	EnvPrefix + "LOG_LEVEL",
	EnvPrefix + "STANDARD_SEPARATORS",
	EnvPrefix + "LEGACY_JSON",
}

// clearEnv blanks every SIDESCRIPTS_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sidescripts.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.PrettyName != "files.json" || cfg.MinifiedName != "files.min.json" {
			t.Errorf("names = %q, %q", cfg.PrettyName, cfg.MinifiedName)
		}
		if cfg.LogLevel != "info" || cfg.StandardSeparators || cfg.LegacyJSON {
			t.Errorf("Load() = %+v", cfg)
		}
	})

	t.Run("yaml file", func(t *testing.T) {
		clearEnv(t)
		path := writeConfig(t, `prettyName: meta.json
minifiedName: meta.min.json
standardSeparators: true
logLevel: debug
filter:
  ignoredPatterns: ["draft*"]
  allowedExtensions: [".tiff"]
`)

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.PrettyName != "meta.json" || cfg.MinifiedName != "meta.min.json" {
			t.Errorf("names = %q, %q", cfg.PrettyName, cfg.MinifiedName)
		}
		if !cfg.StandardSeparators || cfg.LogLevel != "debug" {
			t.Errorf("Load() = %+v", cfg)
		}
		if len(cfg.Filter.IgnoredPatterns) != 1 || cfg.Filter.AllowedExtensions[0] != ".tiff" {
			t.Errorf("Filter = %+v", cfg.Filter)
		}
	})

	t.Run("config path from environment", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvConfig, writeConfig(t, "legacyJson: true\n"))

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if !cfg.LegacyJSON {
			t.Error("LegacyJSON = false, want true")
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		clearEnv(t)
		path := writeConfig(t, "prettyName: meta.json\nlogLevel: debug\n")
		t.Setenv(EnvPrefix+"PRETTY_NAME", "env.json")
		t.Setenv(EnvPrefix+"LOG_LEVEL", "warn")
		t.Setenv(EnvPrefix+"STANDARD_SEPARATORS", "true")
		t.Setenv(EnvPrefix+"LEGACY_JSON", "1")

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.PrettyName != "env.json" || cfg.LogLevel != "warn" {
			t.Errorf("Load() = %+v", cfg)
		}
		if !cfg.StandardSeparators || !cfg.LegacyJSON {
			t.Errorf("bool overrides not applied: %+v", cfg)
		}
	})

	t.Run("dotenv file", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SIDESCRIPTS_MINIFIED_NAME=dot.min.json\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		// godotenv never overrides a variable that exists, even if empty.
		os.Unsetenv(EnvPrefix + "MINIFIED_NAME")
		t.Chdir(dir)

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.MinifiedName != "dot.min.json" {
			t.Errorf("MinifiedName = %q, want dot.min.json", cfg.MinifiedName)
		}
	})
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		wantErr string
	}{
		{"unknown key", "prettyname: x.json\n", nil, "failed to parse config"},
		{"bad yaml", "prettyName: [\n", nil, "failed to parse config"},
		{"same names", "prettyName: a.json\nminifiedName: a.json\n", nil, "share the name"},
		{"nested name", "prettyName: sub/a.json\n", nil, "plain file name"},
		{"bad level", "logLevel: loud\n", nil, "invalid log level"},
		{"bad bool", "", map[string]string{EnvPrefix + "LEGACY_JSON": "maybe"}, "LEGACY_JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		clearEnv(t)
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("Load() error = %v, want not found", err)
		}
	})
}

func TestMetadataOptions(t *testing.T) {
	cfg := Default()
	cfg.StandardSeparators = true

	opts := cfg.MetadataOptions()
	if opts.PrettyName != cfg.PrettyName || opts.MinifiedName != cfg.MinifiedName {
		t.Errorf("MetadataOptions() names = %+v", opts)
	}
	if !opts.StandardSeparators || opts.LegacyJSON {
		t.Errorf("MetadataOptions() = %+v", opts)
	}
}
