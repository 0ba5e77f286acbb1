// Package engine provides the World orchestrator that wires NPCs, quests,
// the item catalogue and the event bus together and routes each utterance to
// the addressed NPC.
package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/nathoo/parley/engine/dialogue"
	"github.com/nathoo/parley/engine/events"
	"github.com/nathoo/parley/engine/quest"
	"github.com/nathoo/parley/engine/rng"
	"github.com/nathoo/parley/engine/state"
	"github.com/nathoo/parley/engine/world"
	"github.com/nathoo/parley/types"
)

// Options configure a World.
type Options struct {
	Logger zerolog.Logger
	// Saver persists players on every Modify. May be nil.
	Saver state.Saver
	// Now defaults to time.Now.
	Now func() time.Time
	// Seed seeds the shared reply RNG. Zero seeds from the clock.
	Seed        int64
	IdleTimeout time.Duration
}

// World holds every NPC and quest of a running game.
type World struct {
	State *state.World
	NPCs  *dialogue.Registry
	Bus   *events.Bus
	RNG   *rng.RNG

	logger zerolog.Logger
	now    func() time.Time
	deps   dialogue.Deps
	quests []*quest.BuiltQuest
	frozen bool
}

// New creates an empty world.
func New(opts Options) *World {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	seed := opts.Seed
	if seed == 0 {
		seed = opts.Now().UnixNano()
	}
	r := rng.New(seed)
	sw := state.NewWorld(opts.Logger, opts.Saver)
	return &World{
		State:  sw,
		NPCs:   dialogue.NewRegistry(),
		Bus:    events.NewBus(),
		RNG:    r,
		logger: opts.Logger,
		now:    opts.Now,
		deps: dialogue.Deps{
			World:       sw,
			Logger:      opts.Logger,
			RNG:         r,
			Now:         opts.Now,
			IdleTimeout: opts.IdleTimeout,
		},
	}
}

// Now returns the world clock.
func (w *World) Now() time.Time { return w.now() }

// NewNPC creates an NPC sharing the world's collaborators and registers it.
func (w *World) NewNPC(name string) (*dialogue.NPC, error) {
	if w.frozen {
		return nil, fmt.Errorf("add npc %s: world is frozen", name)
	}
	npc := dialogue.New(name, w.deps)
	if err := w.NPCs.Add(npc); err != nil {
		return nil, err
	}
	return npc, nil
}

// AddQuest builds a quest and registers its rules. The giver and every NPC
// the task refers to must already exist.
func (w *World) AddQuest(def quest.Definition) (*quest.BuiltQuest, error) {
	if w.frozen {
		return nil, fmt.Errorf("add quest %s: world is frozen", def.Info.InternalName)
	}
	q, err := quest.Build(def, w.logger)
	if err != nil {
		return nil, err
	}
	for _, existing := range w.quests {
		if existing.Slot() == q.Slot() {
			return nil, fmt.Errorf("quest %s: %w", q.Slot(), quest.ErrInvalid)
		}
	}
	if err := q.AddToWorld(w.NPCs); err != nil {
		return nil, err
	}
	w.quests = append(w.quests, q)
	return q, nil
}

// Quests returns the built quests in registration order.
func (w *World) Quests() []*quest.BuiltQuest {
	return append([]*quest.BuiltQuest(nil), w.quests...)
}

// Quest looks up a built quest by slot.
func (w *World) Quest(slot string) (*quest.BuiltQuest, bool) {
	for _, q := range w.quests {
		if q.Slot() == slot {
			return q, true
		}
	}
	return nil, false
}

// Freeze ends world setup. Rule tables become read-only.
func (w *World) Freeze() {
	w.NPCs.Freeze()
	w.frozen = true
}

// Say routes one utterance to the named NPC and dispatches the events the
// turn emitted. Only an unknown NPC is an error.
func (w *World) Say(ctx context.Context, p world.Player, npcName, text string) (types.Result, error) {
	npc, err := w.NPCs.Get(npcName)
	if err != nil {
		return types.Result{}, err
	}
	result := npc.Handle(p, text)
	w.logger.Debug().
		Str("npc", npc.Name()).
		Str("player", p.Name()).
		Str("text", text).
		Bool("matched", result.Matched).
		Int("state", int(result.State)).
		Msg("turn")
	if len(result.Events) > 0 {
		w.Bus.Dispatch(ctx, result.Events)
	}
	return result, nil
}

// History returns the journal of every quest the player has started, keyed
// by quest slot.
func (w *World) History(p world.Player) map[string][]string {
	now := w.now()
	res := map[string][]string{}
	for _, q := range w.quests {
		if h := q.History(p, now); len(h) > 0 {
			res[q.Slot()] = h
		}
	}
	return res
}

// HistorySlots returns the keys of a History result in sorted order.
func HistorySlots(h map[string][]string) []string {
	slots := make([]string, 0, len(h))
	for s := range h {
		slots = append(slots, s)
	}
	sort.Strings(slots)
	return slots
}
