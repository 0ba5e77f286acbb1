// Package state provides the in-memory player record and world used by the
// CLI and the tests, plus inventory lookups shared by behaviours and quests.
package state

import (
	"github.com/google/uuid"

	"github.com/nathoo/parley/engine/world"
	"github.com/nathoo/parley/types"
)

// Default inventory layout of a new player.
const (
	BagSlot     = "bag"
	BagCapacity = 12
)

// Record is the persistent part of a player.
type Record struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Level          int               `json:"level"`
	XP             int               `json:"xp"`
	HP             int               `json:"hp"`
	BaseHP         int               `json:"base_hp"`
	Quests         map[string]string `json:"quests"`
	Slots          []*types.Slot     `json:"slots"`
	Outfit         types.Outfit      `json:"outfit"`
	OriginalOutfit *types.Outfit     `json:"original_outfit,omitempty"`
}

// Player is an in-memory player record implementing world.Player.
type Player struct {
	rec Record
}

var _ world.Player = (*Player)(nil)

// NewPlayer creates a player with full health, an empty bag and two hands.
func NewPlayer(name string, level int) *Player {
	return FromRecord(Record{
		ID:     uuid.NewString(),
		Name:   name,
		Level:  level,
		HP:     100,
		BaseHP: 100,
		Slots: []*types.Slot{
			{Name: BagSlot, Capacity: BagCapacity},
			{Name: "lhand", Capacity: 1},
			{Name: "rhand", Capacity: 1},
		},
	})
}

// FromRecord wraps a persisted record, filling in nil collections.
func FromRecord(r Record) *Player {
	if r.Quests == nil {
		r.Quests = map[string]string{}
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	for _, s := range r.Slots {
		if s.Items == nil {
			s.Items = []*types.Item{}
		}
	}
	return &Player{rec: r}
}

// Record returns the persistent form of the player. The returned value
// shares slots and items with the player.
func (p *Player) Record() Record {
	return p.rec
}

func (p *Player) ID() string   { return p.rec.ID }
func (p *Player) Name() string { return p.rec.Name }
func (p *Player) Level() int   { return p.rec.Level }
func (p *Player) XP() int      { return p.rec.XP }
func (p *Player) HP() int      { return p.rec.HP }
func (p *Player) BaseHP() int  { return p.rec.BaseHP }

// SetLevel changes the player's level.
func (p *Player) SetLevel(level int) { p.rec.Level = level }

// SetHP sets current health, clamped to [0, BaseHP].
func (p *Player) SetHP(hp int) {
	p.rec.HP = min(max(hp, 0), p.rec.BaseHP)
}

// Heal restores full health.
func (p *Player) Heal() { p.rec.HP = p.rec.BaseHP }

// AddXP adds experience points.
func (p *Player) AddXP(amount int) { p.rec.XP += amount }

// HasQuest reports whether the quest slot holds any progress.
func (p *Player) HasQuest(slot string) bool {
	_, ok := p.rec.Quests[slot]
	return ok
}

// Quest returns the raw progress string of a quest slot.
func (p *Player) Quest(slot string) string { return p.rec.Quests[slot] }

// SetQuest stores the raw progress string of a quest slot.
func (p *Player) SetQuest(slot, value string) { p.rec.Quests[slot] = value }

// RemoveQuest clears a quest slot.
func (p *Player) RemoveQuest(slot string) { delete(p.rec.Quests, slot) }

// QuestSlots returns every quest slot the player has progress in.
func (p *Player) QuestSlots() map[string]string {
	out := make(map[string]string, len(p.rec.Quests))
	for k, v := range p.rec.Quests {
		out[k] = v
	}
	return out
}

// Slots returns the inventory containers.
func (p *Player) Slots() []*types.Slot { return p.rec.Slots }

// Slot returns the container with the given name, or nil.
func (p *Player) Slot(name string) *types.Slot {
	for _, s := range p.rec.Slots {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Equip places an item into the inventory. Stackable items merge into an
// existing stack of the same name, info and binding; anything else goes into
// the first container with a free place.
func (p *Player) Equip(item *types.Item) bool {
	if item.Stackable {
		for _, s := range p.rec.Slots {
			for _, it := range s.Items {
				if it.Stackable && it.Name == item.Name && it.Info == item.Info && it.BoundTo == item.BoundTo {
					it.Quantity += item.Quantity
					return true
				}
			}
		}
	}
	for _, s := range p.rec.Slots {
		if len(s.Items) < s.Capacity {
			s.Items = append(s.Items, item)
			return true
		}
	}
	return false
}

// Drop removes one item instance from whichever container holds it.
func (p *Player) Drop(item *types.Item) bool {
	for _, s := range p.rec.Slots {
		for i, it := range s.Items {
			if it == item {
				s.Items = append(s.Items[:i], s.Items[i+1:]...)
				return true
			}
		}
	}
	return false
}

// Outfit returns the current outfit.
func (p *Player) Outfit() types.Outfit { return p.rec.Outfit }

// SetOutfit changes the outfit. The first temporary change remembers the
// outfit worn before it.
func (p *Player) SetOutfit(o types.Outfit, temporary bool) {
	if temporary && p.rec.OriginalOutfit == nil {
		orig := p.rec.Outfit
		p.rec.OriginalOutfit = &orig
	}
	if !temporary {
		p.rec.OriginalOutfit = nil
	}
	p.rec.Outfit = o
}

// ReturnToOriginalOutfit undoes temporary outfit changes.
func (p *Player) ReturnToOriginalOutfit() {
	if p.rec.OriginalOutfit != nil {
		p.rec.Outfit = *p.rec.OriginalOutfit
		p.rec.OriginalOutfit = nil
	}
}

// FindItems returns every carried item instance with the given name, in
// container order.
func FindItems(p world.Player, name string) []*types.Item {
	var result []*types.Item
	for _, s := range p.Slots() {
		for _, it := range s.Items {
			if it.Name == name {
				result = append(result, it)
			}
		}
	}
	return result
}

// CountItems returns the total quantity of the named item across all
// containers. Non-stackable instances count as one each.
func CountItems(p world.Player, name string) int {
	total := 0
	for _, it := range FindItems(p, name) {
		total += Quantity(it)
	}
	return total
}

// HasItem returns true if the player carries at least one of the named item.
func HasItem(p world.Player, name string) bool {
	return CountItems(p, name) > 0
}

// Quantity returns how many units an item instance represents.
func Quantity(it *types.Item) int {
	if !it.Stackable {
		return 1
	}
	return it.Quantity
}
