package state

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nathoo/parley/engine/world"
	"github.com/nathoo/parley/types"
)

// ErrUnknownItem is returned when an item prototype does not exist.
var ErrUnknownItem = errors.New("unknown item")

// ErrNoRoom is returned when an item cannot be placed in the inventory.
var ErrNoRoom = errors.New("no room in inventory")

// Saver persists player records. It is satisfied by the store package.
type Saver interface {
	Save(ctx context.Context, p *Player) error
}

// World is an in-memory item catalogue with a persistence trigger.
type World struct {
	logger      zerolog.Logger
	saver       Saver
	saveTimeout time.Duration

	mu       sync.RWMutex
	items    map[string]types.ItemDef
	modified map[string]int
}

var _ world.World = (*World)(nil)

// NewWorld creates an empty world. saver may be nil, in which case Modify
// only records that a player changed.
func NewWorld(logger zerolog.Logger, saver Saver) *World {
	return &World{
		logger:      logger,
		saver:       saver,
		saveTimeout: 5 * time.Second,
		items:       map[string]types.ItemDef{},
		modified:    map[string]int{},
	}
}

// RegisterItem adds or replaces an item prototype.
func (w *World) RegisterItem(def types.ItemDef) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items[def.Name] = def
}

// ItemDef looks up an item prototype by name.
func (w *World) ItemDef(name string) (types.ItemDef, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	def, ok := w.items[name]
	return def, ok
}

// ItemNames returns every registered prototype name in sorted order.
func (w *World) ItemNames() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	names := make([]string, 0, len(w.items))
	for name := range w.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateItem instantiates one unit of the named prototype with a new id.
func (w *World) CreateItem(name string) (*types.Item, error) {
	def, ok := w.ItemDef(name)
	if !ok {
		return nil, fmt.Errorf("create %q: %w", name, ErrUnknownItem)
	}
	return &types.Item{
		ID:          uuid.NewString(),
		Name:        def.Name,
		Stackable:   def.Stackable,
		Quantity:    1,
		Description: def.Description,
	}, nil
}

// Modify records a player mutation and persists the record when a saver is
// configured. Persistence failures are logged; the in-memory state stays
// authoritative.
func (w *World) Modify(p world.Player) {
	w.mu.Lock()
	w.modified[p.ID()]++
	w.mu.Unlock()

	if w.saver == nil {
		return
	}
	sp, ok := p.(*Player)
	if !ok {
		w.logger.Warn().Str("player", p.Name()).Msg("cannot persist foreign player implementation")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), w.saveTimeout)
	defer cancel()
	if err := w.saver.Save(ctx, sp); err != nil {
		w.logger.Error().Err(err).Str("player", p.Name()).Msg("persist player failed")
	}
}

// Modifications returns how many times Modify was called for a player id.
func (w *World) Modifications(playerID string) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.modified[playerID]
}
