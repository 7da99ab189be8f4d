package plugin

import (
	"log/slog"

	"github.com/marcus/noteshelf/internal/config"
	"github.com/marcus/noteshelf/internal/keymap"
	"github.com/marcus/noteshelf/internal/note"
)

// Context carries the shared services handed to every plugin on Init.
type Context struct {
	Config *config.Config
	Store  note.Store
	Keymap *keymap.Registry
	Logger *slog.Logger

	// Epoch increments whenever async results in flight should be dropped,
	// e.g. after the store is swapped or the database changes underneath us.
	Epoch uint64
}

// NextEpoch advances the epoch and returns the new value.
func (c *Context) NextEpoch() uint64 {
	c.Epoch++
	return c.Epoch
}
