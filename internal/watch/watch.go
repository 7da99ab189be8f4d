// Package watch reports changes made to the local database file by other
// processes, such as a second noteshelf or the seed command.
package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of writes one transaction produces.
const DefaultDebounce = 300 * time.Millisecond

// ChangedMsg is delivered once per debounced burst of database writes.
type ChangedMsg struct {
	Path string
}

// Watcher watches a sqlite database and its WAL/journal side files.
type Watcher struct {
	fs      *fsnotify.Watcher
	path    string
	events  chan ChangedMsg
	logger  *slog.Logger
	delay   time.Duration
	mu      sync.Mutex
	closed  bool
	timer   *time.Timer
	stopped chan struct{}
}

// New starts watching dbPath. The parent directory is watched so the file
// may be created after the watcher starts.
func New(dbPath string, delay time.Duration, logger *slog.Logger) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(dbPath)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(dbPath), err)
	}

	w := &Watcher{
		fs:      fsw,
		path:    filepath.Clean(dbPath),
		events:  make(chan ChangedMsg, 1),
		logger:  logger,
		delay:   delay,
		stopped: make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) relevant(name string) bool {
	name = filepath.Clean(name)
	return name == w.path || name == w.path+"-wal" || name == w.path+"-journal"
}

func (w *Watcher) loop() {
	defer close(w.stopped)
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(ev.Name) || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.schedule()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch: fsnotify error", "err", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.closed {
			return
		}
		// A notification already queued covers this burst too.
		select {
		case w.events <- ChangedMsg{Path: w.path}:
		default:
		}
	})
}

// Events returns the debounced change channel. It is closed by Close.
func (w *Watcher) Events() <-chan ChangedMsg {
	return w.events
}

// Wait returns a command that blocks until the next change. Re-issue it
// after each ChangedMsg to keep listening.
func (w *Watcher) Wait() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-w.events
		if !ok {
			return nil
		}
		return ev
	}
}

// Close stops the watcher and closes the events channel.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.fs.Close()
	<-w.stopped
	close(w.events)
	return err
}
