package rules

import (
	"fmt"

	"github.com/nathoo/parley/engine/progress"
	"github.com/nathoo/parley/engine/state"
	"github.com/nathoo/parley/types"
)

// Sequence runs actions in order and stops at the first error.
func Sequence(actions ...Action) Action {
	return ActionFunc(func(ctx *Context) error {
		for _, a := range actions {
			if a == nil {
				continue
			}
			if err := a.Fire(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// Say speaks a fixed line.
func Say(text string) Action {
	return ActionFunc(func(ctx *Context) error {
		ctx.Say(text)
		return nil
	})
}

// SetQuestRejected marks the quest rejected, keeping its completion count.
func SetQuestRejected(slot string) Action {
	return ActionFunc(func(ctx *Context) error {
		p := readQuest(ctx, slot)
		progress.Write(ctx.Player, slot, progress.Progress{
			Status:      progress.Rejected,
			Timestamp:   p.Timestamp,
			Completions: p.Completions,
		})
		ctx.World.Modify(ctx.Player)
		ctx.Emit("quest_rejected", map[string]any{"quest": slot})
		return nil
	})
}

// SetQuestStage moves the quest into an active stage stamped with the current
// time, keeping its completion count.
func SetQuestStage(slot, stage string) Action {
	return ActionFunc(func(ctx *Context) error {
		p := readQuest(ctx, slot)
		progress.Write(ctx.Player, slot, progress.Progress{
			Status:      progress.Active,
			Stage:       stage,
			Timestamp:   ctx.Now,
			Completions: p.Completions,
		})
		ctx.World.Modify(ctx.Player)
		return nil
	})
}

// CompleteQuest marks the quest done at the current time and counts the
// completion.
func CompleteQuest(slot string) Action {
	return ActionFunc(func(ctx *Context) error {
		p := readQuest(ctx, slot)
		progress.Write(ctx.Player, slot, progress.Progress{
			Status:      progress.Done,
			Timestamp:   ctx.Now,
			Completions: p.Completions + 1,
		})
		ctx.World.Modify(ctx.Player)
		ctx.Emit("quest_completed", map[string]any{"quest": slot, "completions": p.Completions + 1})
		return nil
	})
}

// IncreaseXP grants experience.
func IncreaseXP(amount int) Action {
	return ActionFunc(func(ctx *Context) error {
		ctx.Player.AddXP(amount)
		ctx.World.Modify(ctx.Player)
		return nil
	})
}

// EquipItem gives the player amount of a freshly created item. For
// non-stackable items one instance per unit is created; if any does not fit,
// the ones already placed are taken back.
func EquipItem(name string, amount int) Action {
	return ActionFunc(func(ctx *Context) error {
		item, err := ctx.World.CreateItem(name)
		if err != nil {
			return fmt.Errorf("equip %s: %w", name, err)
		}
		if item.Stackable {
			item.Quantity = amount
			if !ctx.Player.Equip(item) {
				return fmt.Errorf("equip %d %s: %w", amount, name, state.ErrNoRoom)
			}
			ctx.World.Modify(ctx.Player)
			return nil
		}

		var equipped []*types.Item
		for i := 0; i < amount; i++ {
			if i > 0 {
				if item, err = ctx.World.CreateItem(name); err != nil {
					dropAll(ctx, equipped)
					return fmt.Errorf("equip %s: %w", name, err)
				}
			}
			if !ctx.Player.Equip(item) {
				dropAll(ctx, equipped)
				return fmt.Errorf("equip %d %s: %w", amount, name, state.ErrNoRoom)
			}
			equipped = append(equipped, item)
		}
		ctx.World.Modify(ctx.Player)
		return nil
	})
}

func dropAll(ctx *Context, items []*types.Item) {
	for _, it := range items {
		ctx.Player.Drop(it)
	}
}
