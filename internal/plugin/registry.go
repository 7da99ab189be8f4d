package plugin

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Registry owns the plugins in tab order.
type Registry struct {
	ctx     *Context
	plugins []Plugin
}

// NewRegistry creates a registry that initializes plugins with ctx.
func NewRegistry(ctx *Context) *Registry {
	return &Registry{ctx: ctx}
}

// Context returns the shared plugin context.
func (r *Registry) Context() *Context {
	return r.ctx
}

// Register initializes p and appends it. A plugin that fails Init is not
// registered.
func (r *Registry) Register(p Plugin) error {
	for _, existing := range r.plugins {
		if existing.ID() == p.ID() {
			return fmt.Errorf("plugin %q already registered", p.ID())
		}
	}
	if err := p.Init(r.ctx); err != nil {
		if r.ctx != nil && r.ctx.Logger != nil {
			r.ctx.Logger.Warn("plugin init failed", "plugin", p.ID(), "err", err)
		}
		return fmt.Errorf("init %s: %w", p.ID(), err)
	}
	r.plugins = append(r.plugins, p)
	return nil
}

// Plugins returns the registered plugins. The slice is shared so callers
// can store updated plugin values in place.
func (r *Registry) Plugins() []Plugin {
	return r.plugins
}

// Get returns the plugin with the given ID.
func (r *Registry) Get(id string) Plugin {
	for _, p := range r.plugins {
		if p.ID() == id {
			return p
		}
	}
	return nil
}

// Start starts every plugin and returns their startup commands.
func (r *Registry) Start() []tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(r.plugins))
	for _, p := range r.plugins {
		if cmd := p.Start(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// Stop stops every plugin in reverse order.
func (r *Registry) Stop() {
	for i := len(r.plugins) - 1; i >= 0; i-- {
		r.plugins[i].Stop()
	}
}
