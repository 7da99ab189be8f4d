package keymap

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// Registry resolves key presses to command IDs per focus context.
type Registry struct {
	bindings  map[string]map[string]string // context -> key -> command
	overrides map[string]string            // key -> command, "" unbinds
	pending   string                       // first key of a sequence
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		bindings:  make(map[string]map[string]string),
		overrides: make(map[string]string),
	}
}

// RegisterDefaults loads DefaultBindings into r.
func RegisterDefaults(r *Registry) {
	for _, b := range DefaultBindings() {
		r.Bind(b)
	}
}

// Bind adds or replaces a binding.
func (r *Registry) Bind(b Binding) {
	m, ok := r.bindings[b.Context]
	if !ok {
		m = make(map[string]string)
		r.bindings[b.Context] = m
	}
	m[b.Key] = b.Command
}

// SetUserOverride binds key to cmdID in every context where cmdID exists.
// An empty cmdID unbinds key everywhere.
func (r *Registry) SetUserOverride(key, cmdID string) {
	r.overrides[key] = cmdID
}

// Resolve returns the command bound to keyStr in context, or "" when the key
// is unbound or starts a pending sequence.
func (r *Registry) Resolve(context, keyStr string) string {
	if r.pending != "" {
		seq := r.pending + " " + keyStr
		r.pending = ""
		if id := r.lookup(context, seq); id != "" {
			return id
		}
	}
	if id := r.lookup(context, keyStr); id != "" {
		return id
	}
	if r.startsSequence(context, keyStr) {
		r.pending = keyStr
	}
	return ""
}

// Pending reports whether the registry is waiting for the rest of a sequence.
func (r *Registry) Pending() bool {
	return r.pending != ""
}

func (r *Registry) lookup(context, keyStr string) string {
	if id, ok := r.overrides[keyStr]; ok {
		if id == "" || !r.hasCommand(context, id) {
			return ""
		}
		return id
	}
	return r.bindings[context][keyStr]
}

func (r *Registry) hasCommand(context, cmdID string) bool {
	for _, id := range r.bindings[context] {
		if id == cmdID {
			return true
		}
	}
	return false
}

func (r *Registry) startsSequence(context, keyStr string) bool {
	prefix := keyStr + " "
	for k := range r.bindings[context] {
		if strings.HasPrefix(k, prefix) {
			if id, ok := r.overrides[k]; ok && id == "" {
				continue
			}
			return true
		}
	}
	return false
}

// KeysFor returns the keys bound to cmdID in context, overrides first.
func (r *Registry) KeysFor(context, cmdID string) []string {
	var keys []string
	for k, id := range r.overrides {
		if id == cmdID && r.hasCommand(context, cmdID) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var defaults []string
	for k, id := range r.bindings[context] {
		if id != cmdID {
			continue
		}
		if o, ok := r.overrides[k]; ok && o != cmdID {
			continue
		}
		if containsKey(keys, k) {
			continue
		}
		defaults = append(defaults, k)
	}
	sort.Slice(defaults, func(i, j int) bool {
		if len(defaults[i]) != len(defaults[j]) {
			return len(defaults[i]) < len(defaults[j])
		}
		return defaults[i] < defaults[j]
	})
	return append(keys, defaults...)
}

// HelpBinding builds a bubbles key.Binding for cmdID in context, suitable
// for the help footer. The binding is disabled when nothing is bound.
func (r *Registry) HelpBinding(context, cmdID, name string) key.Binding {
	keys := r.KeysFor(context, cmdID)
	if len(keys) == 0 {
		return key.NewBinding(key.WithDisabled())
	}
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(keys[0], name),
	)
}

func containsKey(keys []string, k string) bool {
	for _, x := range keys {
		if x == k {
			return true
		}
	}
	return false
}
