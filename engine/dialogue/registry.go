package dialogue

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownNPC is returned when no NPC is registered under a name.
var ErrUnknownNPC = errors.New("unknown npc")

// ErrDuplicateNPC is returned when a name is registered twice.
var ErrDuplicateNPC = errors.New("duplicate npc")

// Registry looks NPCs up by name, case-insensitively.
type Registry struct {
	mu   sync.RWMutex
	npcs map[string]*NPC
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{npcs: make(map[string]*NPC)}
}

// Add registers an NPC.
func (r *Registry) Add(npc *NPC) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(npc.Name())
	if _, ok := r.npcs[key]; ok {
		return fmt.Errorf("%s: %w", npc.Name(), ErrDuplicateNPC)
	}
	r.npcs[key] = npc
	return nil
}

// Get returns the NPC registered under name.
func (r *Registry) Get(name string) (*NPC, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	npc, ok := r.npcs[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownNPC)
	}
	return npc, nil
}

// Names returns the registered NPC names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.npcs))
	for _, npc := range r.npcs {
		names = append(names, npc.Name())
	}
	sort.Strings(names)
	return names
}

// Freeze makes every registered NPC's rule table read-only.
func (r *Registry) Freeze() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, npc := range r.npcs {
		npc.Freeze()
	}
}
