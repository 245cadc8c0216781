package breaker

import (
	"sort"
	"sync"
)

// Group hands out one breaker per operation name. All breakers in a group
// share the same Config and options.
type Group struct {
	cfg  Config
	opts []Option

	mu       sync.RWMutex
	breakers map[string]*Breaker
}

// NewGroup creates an empty group.
func NewGroup(cfg Config, opts ...Option) *Group {
	return &Group{
		cfg:      cfg,
		opts:     opts,
		breakers: make(map[string]*Breaker),
	}
}

// Get returns the breaker registered under name, creating it on first use.
func (g *Group) Get(name string) *Breaker {
	g.mu.RLock()
	b, ok := g.breakers[name]
	g.mu.RUnlock()
	if ok {
		return b
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	// Double-check after acquiring the write lock
	if b, ok := g.breakers[name]; ok {
		return b
	}

	b = New(name, g.cfg, g.opts...)
	g.breakers[name] = b
	return b
}

// Names returns the registered breaker names in sorted order.
func (g *Group) Names() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	names := make([]string, 0, len(g.breakers))
	for name := range g.breakers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshots returns the current snapshot of every breaker in the group.
func (g *Group) Snapshots() map[string]Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make(map[string]Snapshot, len(g.breakers))
	for name, b := range g.breakers {
		out[name] = b.Snapshot()
	}
	return out
}
