package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// saveConfig is the JSON-marshaling intermediary that uses string durations.
type saveConfig struct {
	Store  saveStoreConfig  `json:"store"`
	Editor saveEditorConfig `json:"editor"`
	Keymap KeymapConfig     `json:"keymap"`
	UI     UIConfig         `json:"ui"`
	Watch  saveWatchConfig  `json:"watch"`
}

type saveStoreConfig struct {
	Backend        string `json:"backend,omitempty"`
	DBPath         string `json:"dbPath,omitempty"`
	Driver         string `json:"driver,omitempty"`
	RemoteURL      string `json:"remoteURL,omitempty"`
	MongoURI       string `json:"mongoURI,omitempty"`
	MongoDatabase  string `json:"mongoDatabase,omitempty"`
	RequestTimeout string `json:"requestTimeout,omitempty"`
}

type saveEditorConfig struct {
	Debounce         string `json:"debounce,omitempty"`
	PlaceholderTitle string `json:"placeholderTitle,omitempty"`
}

type saveWatchConfig struct {
	Enabled  *bool  `json:"enabled,omitempty"`
	Debounce string `json:"debounce,omitempty"`
}

// toSaveConfig converts Config to the JSON-serializable format. The token
// is never written back; it comes from the file or the environment.
func toSaveConfig(cfg *Config) saveConfig {
	return saveConfig{
		Store: saveStoreConfig{
			Backend:        cfg.Store.Backend,
			DBPath:         cfg.Store.DBPath,
			Driver:         cfg.Store.Driver,
			RemoteURL:      cfg.Store.RemoteURL,
			MongoURI:       cfg.Store.MongoURI,
			MongoDatabase:  cfg.Store.MongoDatabase,
			RequestTimeout: cfg.Store.RequestTimeout.String(),
		},
		Editor: saveEditorConfig{
			Debounce:         cfg.Editor.Debounce.String(),
			PlaceholderTitle: cfg.Editor.PlaceholderTitle,
		},
		Keymap: cfg.Keymap,
		UI:     cfg.UI,
		Watch: saveWatchConfig{
			Enabled:  &cfg.Watch.Enabled,
			Debounce: cfg.Watch.Debounce.String(),
		},
	}
}

// Save writes the config to ~/.config/noteshelf/config.json
func Save(cfg *Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path. Top-level keys it does not manage
// (including a hand-written token) are preserved.
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	merged := make(map[string]json.RawMessage)
	if data, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(data, &merged)
	}

	managed, err := json.Marshal(toSaveConfig(cfg))
	if err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(managed, &fields); err != nil {
		return err
	}
	for k, v := range fields {
		if k == "store" {
			v = keepToken(merged[k], v)
		}
		merged[k] = v
	}

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// keepToken carries a token already present in the file over to the new
// store section.
func keepToken(prev, next json.RawMessage) json.RawMessage {
	if prev == nil {
		return next
	}
	var old struct {
		Token string `json:"token"`
	}
	if json.Unmarshal(prev, &old) != nil || old.Token == "" {
		return next
	}
	var m map[string]any
	if json.Unmarshal(next, &m) != nil {
		return next
	}
	m["token"] = old.Token
	out, err := json.Marshal(m)
	if err != nil {
		return next
	}
	return out
}

// SaveTheme updates only the theme name in config and saves.
func SaveTheme(themeName string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	cfg.UI.Theme.Name = themeName
	return Save(cfg)
}
