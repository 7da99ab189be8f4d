package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvToken, "")
	t.Setenv(EnvRemoteURL, "")
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Store.Backend != BackendSQLite {
		t.Errorf("got backend %q, want sqlite", cfg.Store.Backend)
	}
	if cfg.Editor.Debounce != time.Second {
		t.Errorf("got debounce %v, want 1s", cfg.Editor.Debounce)
	}
	if cfg.Editor.PlaceholderTitle != "Note Title:" {
		t.Errorf("got placeholder %q", cfg.Editor.PlaceholderTitle)
	}
	if !cfg.Watch.Enabled {
		t.Error("watch should be enabled by default")
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFrom("/nonexistent/path/config.json")
	if err != nil {
		t.Errorf("should not error on missing file: %v", err)
	}
	if cfg == nil {
		t.Fatal("should return default config")
	}
	if cfg.Store.RequestTimeout != 10*time.Second {
		t.Errorf("got timeout %v, want default", cfg.Store.RequestTimeout)
	}
}

func TestLoadFrom_ValidJSON(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	content := []byte(`{
		"store": {
			"backend": "remote",
			"remoteURL": "https://notes.example.com/api",
			"token": "abc",
			"requestTimeout": "3s"
		},
		"editor": {
			"debounce": "250ms"
		},
		"ui": {
			"showFooter": false
		},
		"watch": {
			"enabled": false
		}
	}`)

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Store.Backend != BackendRemote {
		t.Errorf("got backend %q", cfg.Store.Backend)
	}
	if cfg.Store.Token != "abc" {
		t.Errorf("got token %q", cfg.Store.Token)
	}
	if cfg.Store.RequestTimeout != 3*time.Second {
		t.Errorf("got timeout %v, want 3s", cfg.Store.RequestTimeout)
	}
	if cfg.Editor.Debounce != 250*time.Millisecond {
		t.Errorf("got debounce %v, want 250ms", cfg.Editor.Debounce)
	}
	if cfg.UI.ShowFooter {
		t.Error("showFooter should be false")
	}
	if cfg.Watch.Enabled {
		t.Error("watch should be disabled")
	}
	// Default values should still be present
	if !cfg.UI.MarkdownPreview {
		t.Error("markdownPreview should still be enabled (default)")
	}
	if cfg.Editor.PlaceholderTitle != "Note Title:" {
		t.Error("placeholder should keep its default")
	}
}

func TestLoadFrom_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	if err := os.WriteFile(path, []byte(`{invalid`), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Error("should error on invalid JSON")
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"store": {"token": "from-file"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvToken, "from-env")
	t.Setenv(EnvRemoteURL, "http://localhost:8000/api")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.Token != "from-env" {
		t.Errorf("got token %q, want env value", cfg.Store.Token)
	}
	if cfg.Store.RemoteURL != "http://localhost:8000/api" {
		t.Errorf("got remote url %q", cfg.Store.RemoteURL)
	}
}

func TestLoadFrom_BadDurationKeepsDefault(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"editor": {"debounce": "soon"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Editor.Debounce != time.Second {
		t.Errorf("got debounce %v, want default", cfg.Editor.Debounce)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input  string
		expect string
	}{
		{"~/.config/noteshelf/notes.db", filepath.Join(home, ".config/noteshelf/notes.db")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
	}

	for _, tc := range tests {
		got := ExpandPath(tc.input)
		if got != tc.expect {
			t.Errorf("ExpandPath(%q) = %q, want %q", tc.input, got, tc.expect)
		}
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Store.Backend = "postgres"
	cfg.Store.Driver = "odbc"
	cfg.Store.RequestTimeout = -1
	cfg.Editor.Debounce = 0
	cfg.Watch.Debounce = -time.Second

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}

	d := Default()
	if cfg.Store.Backend != d.Store.Backend || cfg.Store.Driver != d.Store.Driver {
		t.Errorf("got backend %q driver %q, want defaults", cfg.Store.Backend, cfg.Store.Driver)
	}
	if cfg.Store.RequestTimeout != d.Store.RequestTimeout {
		t.Errorf("got timeout %v", cfg.Store.RequestTimeout)
	}
	if cfg.Editor.Debounce != time.Second {
		t.Errorf("got debounce %v, want 1s after validation", cfg.Editor.Debounce)
	}
	if cfg.Watch.Debounce != d.Watch.Debounce {
		t.Errorf("got watch debounce %v", cfg.Watch.Debounce)
	}
}
