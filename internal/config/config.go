package config

import "time"

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendRemote = "remote"
	BackendMongo  = "mongo"
)

// Config is the root configuration structure.
type Config struct {
	Store  StoreConfig  `json:"store"`
	Editor EditorConfig `json:"editor"`
	Keymap KeymapConfig `json:"keymap"`
	UI     UIConfig     `json:"ui"`
	Watch  WatchConfig  `json:"watch"`
}

// StoreConfig selects and configures the note store.
type StoreConfig struct {
	Backend        string        `json:"backend"` // "sqlite", "remote" or "mongo"
	DBPath         string        `json:"dbPath"`
	Driver         string        `json:"driver"` // "sqlite3" (cgo) or "sqlite" (pure Go)
	RemoteURL      string        `json:"remoteURL"`
	Token          string        `json:"token,omitempty"`
	MongoURI       string        `json:"mongoURI"`
	MongoDatabase  string        `json:"mongoDatabase"`
	RequestTimeout time.Duration `json:"requestTimeout"`
}

// EditorConfig configures the note editor.
type EditorConfig struct {
	Debounce         time.Duration `json:"debounce"`
	PlaceholderTitle string        `json:"placeholderTitle"`
}

// KeymapConfig holds key binding overrides.
type KeymapConfig struct {
	Overrides map[string]string `json:"overrides"`
}

// UIConfig configures UI appearance.
type UIConfig struct {
	ShowFooter      bool        `json:"showFooter"`
	MarkdownPreview bool        `json:"markdownPreview"`
	Theme           ThemeConfig `json:"theme"`
}

// ThemeConfig configures the color theme.
type ThemeConfig struct {
	Name string `json:"name"`
}

// WatchConfig configures reloading the list when the database file changes.
type WatchConfig struct {
	Enabled  bool          `json:"enabled"`
	Debounce time.Duration `json:"debounce"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:        BackendSQLite,
			DBPath:         "~/.config/noteshelf/notes.db",
			Driver:         "sqlite",
			MongoURI:       "mongodb://localhost:27017",
			MongoDatabase:  "noteshelf",
			RequestTimeout: 10 * time.Second,
		},
		Editor: EditorConfig{
			Debounce:         time.Second,
			PlaceholderTitle: "Note Title:",
		},
		Keymap: KeymapConfig{
			Overrides: make(map[string]string),
		},
		UI: UIConfig{
			ShowFooter:      true,
			MarkdownPreview: true,
			Theme:           ThemeConfig{Name: "default"},
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: 300 * time.Millisecond,
		},
	}
}

// Validate checks the configuration for errors, resetting out-of-range
// values to their defaults.
func (c *Config) Validate() error {
	d := Default()
	switch c.Store.Backend {
	case BackendSQLite, BackendRemote, BackendMongo:
	default:
		c.Store.Backend = d.Store.Backend
	}
	if c.Store.Driver != "sqlite" && c.Store.Driver != "sqlite3" {
		c.Store.Driver = d.Store.Driver
	}
	if c.Store.RequestTimeout <= 0 {
		c.Store.RequestTimeout = d.Store.RequestTimeout
	}
	if c.Editor.Debounce <= 0 {
		c.Editor.Debounce = d.Editor.Debounce
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = d.Watch.Debounce
	}
	return nil
}
