package rules

import (
	"time"

	"github.com/nathoo/parley/engine/progress"
	"github.com/nathoo/parley/engine/state"
)

// Not negates a condition.
func Not(c Condition) Condition {
	return ConditionFunc(func(ctx *Context) bool { return !c.Fire(ctx) })
}

// And holds when every condition holds. An empty list is vacuously true.
func And(conds ...Condition) Condition {
	return ConditionFunc(func(ctx *Context) bool {
		for _, c := range conds {
			if c != nil && !c.Fire(ctx) {
				return false
			}
		}
		return true
	})
}

// Or holds when any condition holds.
func Or(conds ...Condition) Condition {
	return ConditionFunc(func(ctx *Context) bool {
		for _, c := range conds {
			if c != nil && c.Fire(ctx) {
				return true
			}
		}
		return false
	})
}

func readQuest(ctx *Context, slot string) progress.Progress {
	return progress.Read(ctx.Player, slot, ctx.Logger)
}

// QuestNotStarted holds when the player has no usable progress in the slot.
func QuestNotStarted(slot string) Condition {
	return ConditionFunc(func(ctx *Context) bool {
		return readQuest(ctx, slot).Status == progress.NotStarted
	})
}

// QuestStarted holds when the slot holds any progress, including rejection.
func QuestStarted(slot string) Condition {
	return Not(QuestNotStarted(slot))
}

// QuestRejected holds when the player turned the quest down.
func QuestRejected(slot string) Condition {
	return ConditionFunc(func(ctx *Context) bool {
		return readQuest(ctx, slot).Status == progress.Rejected
	})
}

// QuestActive holds while the quest is accepted and not yet done.
func QuestActive(slot string) Condition {
	return ConditionFunc(func(ctx *Context) bool {
		return readQuest(ctx, slot).Status == progress.Active
	})
}

// QuestInStage holds when the quest is active in the named stage.
func QuestInStage(slot, stage string) Condition {
	return ConditionFunc(func(ctx *Context) bool {
		p := readQuest(ctx, slot)
		return p.Status == progress.Active && p.Stage == stage
	})
}

// QuestCompleted holds when the quest is done.
func QuestCompleted(slot string) Condition {
	return ConditionFunc(func(ctx *Context) bool {
		return readQuest(ctx, slot).Status == progress.Done
	})
}

// TimePassed holds when at least minutes have elapsed since the timestamp
// stored in the slot. A slot without a timestamp always satisfies it.
func TimePassed(slot string, minutes int) Condition {
	return ConditionFunc(func(ctx *Context) bool {
		p := readQuest(ctx, slot)
		if p.Timestamp.IsZero() {
			return true
		}
		return ctx.Now.Sub(p.Timestamp) >= time.Duration(minutes)*time.Minute
	})
}

// LevelAtLeast holds when the player is at least the given level.
func LevelAtLeast(level int) Condition {
	return ConditionFunc(func(ctx *Context) bool {
		return ctx.Player.Level() >= level
	})
}

// HasItem holds when the player carries at least amount of the named item.
func HasItem(name string, amount int) Condition {
	return ConditionFunc(func(ctx *Context) bool {
		return state.CountItems(ctx.Player, name) >= amount
	})
}
