package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/marcus/noteshelf/internal/app"
	"github.com/marcus/noteshelf/internal/config"
	"github.com/marcus/noteshelf/internal/keymap"
	"github.com/marcus/noteshelf/internal/plugin"
	"github.com/marcus/noteshelf/internal/plugins/notes"
	"github.com/marcus/noteshelf/internal/state"
	"github.com/marcus/noteshelf/internal/store"
	"github.com/marcus/noteshelf/internal/styles"
)

const logFileName = "noteshelf.log"

var (
	configPath string
	debugFlag  bool

	cfg     *config.Config
	logger  *slog.Logger
	logFile *os.File
)

var rootCmd = &cobra.Command{
	Use:   "noteshelf",
	Short: "Notes in your terminal, saved as you type",
	Long: `noteshelf is a terminal notes client. Notes are grouped into colored
categories and saved automatically while you edit them.

Run without a subcommand to open the browser.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger = newLogger(cmd.ErrOrStderr())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			_ = logFile.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	rootCmd.Version = effectiveVersion(Version)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// newLogger writes to a log file next to the config so log lines never
// corrupt the TUI. Falls back to stderr when the file can't be opened.
func newLogger(fallback io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if debugFlag {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var w io.Writer = fallback
	dir := config.Dir()
	if err := os.MkdirAll(dir, 0755); err == nil {
		f, err := os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			logFile = f
			w = f
		}
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openStore connects to the configured backend.
func openStore(ctx context.Context) (store.Backend, error) {
	s, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	return s, nil
}

func runTUI(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	// Load persistent state (ignore errors - state is optional)
	if err := state.Init(); err != nil {
		logger.Warn("state unavailable", "err", err)
	}
	styles.ApplyTheme(cfg.UI.Theme.Name)

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	km := keymap.NewRegistry()
	keymap.RegisterDefaults(km)
	for key, cmdID := range cfg.Keymap.Overrides {
		km.SetUserOverride(key, cmdID)
	}

	registry := plugin.NewRegistry(&plugin.Context{
		Config: cfg,
		Store:  s,
		Keymap: km,
		Logger: logger,
	})
	if err := registry.Register(notes.New()); err != nil {
		return err
	}

	logger.Info("starting", "version", effectiveVersion(Version), "backend", cfg.Store.Backend)
	model := app.New(registry, km, cfg, logger)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("run application: %w", err)
	}
	if m, ok := final.(app.Model); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}
