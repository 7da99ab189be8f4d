package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	configDir  = ".config/noteshelf"
	configFile = "config.json"
)

// Environment overrides, applied after the file.
const (
	EnvToken     = "NOTESHELF_TOKEN"
	EnvRemoteURL = "NOTESHELF_REMOTE_URL"
)

// rawConfig is the JSON-unmarshaling intermediary.
type rawConfig struct {
	Store  rawStoreConfig  `json:"store"`
	Editor rawEditorConfig `json:"editor"`
	Keymap KeymapConfig    `json:"keymap"`
	UI     rawUIConfig     `json:"ui"`
	Watch  rawWatchConfig  `json:"watch"`
}

type rawStoreConfig struct {
	Backend        string `json:"backend"`
	DBPath         string `json:"dbPath"`
	Driver         string `json:"driver"`
	RemoteURL      string `json:"remoteURL"`
	Token          string `json:"token"`
	MongoURI       string `json:"mongoURI"`
	MongoDatabase  string `json:"mongoDatabase"`
	RequestTimeout string `json:"requestTimeout"`
}

type rawEditorConfig struct {
	Debounce         string `json:"debounce"`
	PlaceholderTitle string `json:"placeholderTitle"`
}

type rawUIConfig struct {
	ShowFooter      *bool       `json:"showFooter"`
	MarkdownPreview *bool       `json:"markdownPreview"`
	Theme           ThemeConfig `json:"theme"`
}

type rawWatchConfig struct {
	Enabled  *bool  `json:"enabled"`
	Debounce string `json:"debounce"`
}

// Load loads configuration from the default location.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from a specific path.
// If path is empty, uses ~/.config/noteshelf/config.json
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = ConfigPath()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			var raw rawConfig
			if err := json.Unmarshal(data, &raw); err != nil {
				return nil, err
			}
			mergeConfig(cfg, &raw)
		case !os.IsNotExist(err):
			return nil, err
		}
	}

	applyEnv(cfg)
	cfg.Store.DBPath = ExpandPath(cfg.Store.DBPath)

	if cfg.Store.Backend == BackendRemote && cfg.Store.RemoteURL == "" {
		slog.Warn("remote backend selected without remoteURL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvToken); v != "" {
		cfg.Store.Token = v
	}
	if v := os.Getenv(EnvRemoteURL); v != "" {
		cfg.Store.RemoteURL = v
	}
}

func parseDuration(field, s string, dst *time.Duration) {
	if s == "" {
		return
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		slog.Warn("invalid duration in config", "field", field, "value", s)
		return
	}
	*dst = d
}

// mergeConfig merges raw config values into the config.
func mergeConfig(cfg *Config, raw *rawConfig) {
	// Store
	if raw.Store.Backend != "" {
		cfg.Store.Backend = raw.Store.Backend
	}
	if raw.Store.DBPath != "" {
		cfg.Store.DBPath = raw.Store.DBPath
	}
	if raw.Store.Driver != "" {
		cfg.Store.Driver = raw.Store.Driver
	}
	if raw.Store.RemoteURL != "" {
		cfg.Store.RemoteURL = raw.Store.RemoteURL
	}
	if raw.Store.Token != "" {
		cfg.Store.Token = raw.Store.Token
	}
	if raw.Store.MongoURI != "" {
		cfg.Store.MongoURI = raw.Store.MongoURI
	}
	if raw.Store.MongoDatabase != "" {
		cfg.Store.MongoDatabase = raw.Store.MongoDatabase
	}
	parseDuration("store.requestTimeout", raw.Store.RequestTimeout, &cfg.Store.RequestTimeout)

	// Editor
	parseDuration("editor.debounce", raw.Editor.Debounce, &cfg.Editor.Debounce)
	if raw.Editor.PlaceholderTitle != "" {
		cfg.Editor.PlaceholderTitle = raw.Editor.PlaceholderTitle
	}

	// Keymap
	for k, v := range raw.Keymap.Overrides {
		cfg.Keymap.Overrides[k] = v
	}

	// UI
	if raw.UI.ShowFooter != nil {
		cfg.UI.ShowFooter = *raw.UI.ShowFooter
	}
	if raw.UI.MarkdownPreview != nil {
		cfg.UI.MarkdownPreview = *raw.UI.MarkdownPreview
	}
	if raw.UI.Theme.Name != "" {
		cfg.UI.Theme.Name = raw.UI.Theme.Name
	}

	// Watch
	if raw.Watch.Enabled != nil {
		cfg.Watch.Enabled = *raw.Watch.Enabled
	}
	parseDuration("watch.debounce", raw.Watch.Debounce, &cfg.Watch.Debounce)
}

// ExpandPath expands ~ to home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// testConfigPath overrides ConfigPath in tests.
var testConfigPath string

// SetTestConfigPath points ConfigPath at path. For tests only.
func SetTestConfigPath(path string) { testConfigPath = path }

// ResetTestConfigPath undoes SetTestConfigPath.
func ResetTestConfigPath() { testConfigPath = "" }

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	if testConfigPath != "" {
		return testConfigPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, configDir, configFile)
}

// Dir returns the directory holding the config, state and log files.
func Dir() string {
	return filepath.Dir(ConfigPath())
}
