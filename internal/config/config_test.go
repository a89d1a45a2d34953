package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg := Load(t.TempDir())
		if cfg.DefaultBranch != "master" {
			t.Errorf("DefaultBranch = %q, want %q", cfg.DefaultBranch, "master")
		}
		if cfg.TestCommand != "" {
			t.Errorf("TestCommand = %q, want empty", cfg.TestCommand)
		}
		if cfg.MCPJetBrainsServer != "http://localhost:63342" {
			t.Errorf("MCPJetBrainsServer = %q, want %q", cfg.MCPJetBrainsServer, "http://localhost:63342")
		}
	})

	t.Run("malformed file yields defaults without error", func(t *testing.T) {
		root := t.TempDir()
		if err := os.MkdirAll(filepath.Join(root, Dir), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(Path(root), []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}

		cfg := Load(root)
		if cfg.DefaultBranch != "master" {
			t.Errorf("DefaultBranch = %q, want %q", cfg.DefaultBranch, "master")
		}
	})

	t.Run("blank default branch falls back", func(t *testing.T) {
		root := t.TempDir()
		cfg := &Config{TestCommand: "go test ./...", MCPJetBrainsServer: ServerURL("9999"), DefaultBranch: "  "}
		if err := cfg.Save(root); err != nil {
			t.Fatal(err)
		}

		loaded := Load(root)
		if loaded.DefaultBranch != "master" {
			t.Errorf("DefaultBranch = %q, want %q", loaded.DefaultBranch, "master")
		}
		if loaded.TestCommand != "go test ./..." {
			t.Errorf("TestCommand = %q, want %q", loaded.TestCommand, "go test ./...")
		}
	})
}

func TestSaveAndLoad(t *testing.T) {
	root := t.TempDir()

	cfg := &Config{
		TestCommand:        "pytest",
		MCPJetBrainsServer: ServerURL("63342"),
		DefaultBranch:      "main",
	}
	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if !Exists(root) {
		t.Error("Exists() = false after Save")
	}

	loaded := Load(root)
	if *loaded != *cfg {
		t.Errorf("Load() = %+v, want %+v", loaded, cfg)
	}
}

// The on-disk format is consumed by other tools; the keys are fixed.
func TestConfigFileShape(t *testing.T) {
	root := t.TempDir()

	cfg := &Config{
		TestCommand:        "npm test",
		MCPJetBrainsServer: ServerURL("63342"),
		DefaultBranch:      "master",
	}
	if err := cfg.Save(root); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(Path(root))
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("config file is not valid JSON: %v", err)
	}

	want := map[string]string{
		"test_command":         "npm test",
		"mcp_jetbrains_server": "http://localhost:63342",
		"default_branch":       "master",
	}
	for key, value := range want {
		if raw[key] != value {
			t.Errorf("config[%q] = %q, want %q", key, raw[key], value)
		}
	}
}

func TestSaveOverwrites(t *testing.T) {
	root := t.TempDir()

	first := &Config{TestCommand: "old", MCPJetBrainsServer: ServerURL("1111"), DefaultBranch: "master"}
	if err := first.Save(root); err != nil {
		t.Fatal(err)
	}

	second := &Config{TestCommand: "new", MCPJetBrainsServer: ServerURL("2222"), DefaultBranch: "main"}
	if err := second.Save(root); err != nil {
		t.Fatal(err)
	}

	loaded := Load(root)
	if loaded.TestCommand != "new" {
		t.Errorf("TestCommand = %q, want %q", loaded.TestCommand, "new")
	}
	if loaded.DefaultBranch != "main" {
		t.Errorf("DefaultBranch = %q, want %q", loaded.DefaultBranch, "main")
	}
}
