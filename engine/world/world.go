// Package world declares the narrow interfaces through which the dialogue
// engine reaches players and the game world. Implementations live outside
// the engine; package state provides an in-memory one.
package world

import "github.com/nathoo/parley/types"

// Player is the player record a conversation acts upon. All methods are
// synchronous and immediately consistent after mutation.
type Player interface {
	ID() string
	Name() string
	Level() int

	// Quest slots hold the persisted progress string of one quest.
	HasQuest(slot string) bool
	Quest(slot string) string
	SetQuest(slot, value string)
	RemoveQuest(slot string)

	// Slots returns the inventory containers in search order. Callers may
	// mutate the returned items and slot contents directly.
	Slots() []*types.Slot
	// Equip places an item into the first container with room, merging
	// stackable items into a matching stack. It reports false when there is
	// no room.
	Equip(item *types.Item) bool
	// Drop removes one specific item instance from the inventory.
	Drop(item *types.Item) bool

	Outfit() types.Outfit
	// SetOutfit changes the outfit. A temporary outfit remembers the
	// original so that ReturnToOriginalOutfit can restore it.
	SetOutfit(o types.Outfit, temporary bool)
	ReturnToOriginalOutfit()

	HP() int
	BaseHP() int
	Heal()
	AddXP(amount int)
}

// World gives access to the item catalogue and the persistence trigger.
type World interface {
	// CreateItem instantiates a new item with a fresh entity id from the
	// prototype registered under name.
	CreateItem(name string) (*types.Item, error)
	// ItemDef looks up an item prototype by name.
	ItemDef(name string) (types.ItemDef, bool)
	// Modify must be called after any player mutation for it to be durable.
	Modify(p Player)
}
