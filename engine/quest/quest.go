// Package quest assembles multi-step quests out of conversation rules. A
// Definition is composed from declarative fragments; Build validates it and
// AddToWorld registers the resulting rules on the quest giver.
package quest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nathoo/parley/engine/dialogue"
	"github.com/nathoo/parley/engine/parser"
	"github.com/nathoo/parley/engine/progress"
	"github.com/nathoo/parley/engine/rules"
	"github.com/nathoo/parley/engine/world"
	"github.com/nathoo/parley/types"
)

// ErrInvalid is returned by Build for an incomplete definition.
var ErrInvalid = errors.New("invalid quest definition")

// Repeatability intervals.
const (
	NeverRepeatable  = -1
	AlwaysRepeatable = 0
)

// Info is the quest metadata.
type Info struct {
	Name         string
	InternalName string
	Description  string
	GiverNPC     string
	MinLevel     int
	Region       string
	// RepeatableAfterMinutes is -1 for never, 0 for immediately, or a cooldown.
	RepeatableAfterMinutes int
}

// History holds the journal lines shown for each milestone. Empty lines are
// skipped.
type History struct {
	WhenNPCWasMet          string
	WhenQuestWasRejected   string
	WhenQuestWasAccepted   string
	WhenTaskWasCompleted   string
	WhenQuestWasCompleted  string
	WhenQuestCanBeRepeated string
	// WhenCompletionsShown may contain [count] and one bracketed noun that is
	// pluralised by the count, e.g. "I have delivered [count] [pizza].".
	WhenCompletionsShown string
}

// Offer holds the giver's lines around offering the quest.
type Offer struct {
	RespondToRequest             string
	RespondToUnrepeatableRequest string
	RespondToRepeatedRequest     string
	RespondToAccept              string
	RespondToReject              string
}

// Complete holds what happens when the giver sees the task done.
type Complete struct {
	RespondToCompletion string
	XP                  int
}

// Task is the mechanics of a quest. All methods receive the quest slot.
type Task interface {
	// Prepare registers rules the task needs on NPCs other than the offer
	// and completion rules, e.g. on the people the player must visit.
	Prepare(reg *dialogue.Registry, giver *dialogue.NPC, slot string) error
	// PreCondition further restricts when the quest is offered. May be nil.
	PreCondition(slot string) rules.Condition
	StartAction(slot string) rules.Action
	RejectAction(slot string) rules.Action
	RemindAction(slot string) rules.Action
	CompletedCondition(slot string) rules.Condition
	CompleteAction(slot string) rules.Action
	// IsCompleted reports whether the task itself is done while the quest
	// is still open.
	IsCompleted(p progress.Progress) bool
	// HistoryProgress projects the progress record to journal lines. It must
	// not have side effects.
	HistoryProgress(p progress.Progress, now time.Time) []string
}

// Definition is the full declarative description of a quest.
type Definition struct {
	Info     Info
	History  History
	Offer    Offer
	Complete Complete
	Task     Task
}

// BuiltQuest is an immutable, validated quest.
type BuiltQuest struct {
	def    Definition
	slot   string
	logger zerolog.Logger
}

// Build validates a definition.
func Build(def Definition, logger zerolog.Logger) (*BuiltQuest, error) {
	switch {
	case def.Info.InternalName == "":
		return nil, fmt.Errorf("missing internal name: %w", ErrInvalid)
	case def.Info.GiverNPC == "":
		return nil, fmt.Errorf("%s: missing quest giver: %w", def.Info.InternalName, ErrInvalid)
	case def.Task == nil:
		return nil, fmt.Errorf("%s: missing task: %w", def.Info.InternalName, ErrInvalid)
	case def.Info.RepeatableAfterMinutes < NeverRepeatable:
		return nil, fmt.Errorf("%s: repeat interval %d: %w", def.Info.InternalName, def.Info.RepeatableAfterMinutes, ErrInvalid)
	}
	slot := strings.ToLower(def.Info.InternalName)
	return &BuiltQuest{
		def:    def,
		slot:   slot,
		logger: logger.With().Str("quest", slot).Logger(),
	}, nil
}

// Slot returns the quest slot name.
func (q *BuiltQuest) Slot() string { return q.slot }

// Info returns the quest metadata.
func (q *BuiltQuest) Info() Info { return q.def.Info }

// Progress reads the player's progress in this quest.
func (q *BuiltQuest) Progress(p world.Player) progress.Progress {
	return progress.Read(p, q.slot, q.logger)
}

// IsCompleted reports whether the player has finished the quest at least once
// and it is currently done.
func (q *BuiltQuest) IsCompleted(p world.Player) bool {
	return q.Progress(p).Status == progress.Done
}

// IsRepeatable reports whether a completed quest may be started again.
func (q *BuiltQuest) IsRepeatable(p world.Player, now time.Time) bool {
	return q.repeatable(q.Progress(p), now)
}

func (q *BuiltQuest) repeatable(pr progress.Progress, now time.Time) bool {
	interval := q.def.Info.RepeatableAfterMinutes
	if interval < 0 || pr.Status != progress.Done {
		return false
	}
	if interval == 0 || pr.Timestamp.IsZero() {
		return true
	}
	return now.Sub(pr.Timestamp) >= time.Duration(interval)*time.Minute
}

// History returns the player's journal for this quest. It only reads the
// persisted progress, so repeated calls with the same state agree.
func (q *BuiltQuest) History(p world.Player, now time.Time) []string {
	if !p.HasQuest(q.slot) {
		return nil
	}
	pr := q.Progress(p)
	if pr.Status == progress.NotStarted {
		return nil
	}

	h := q.def.History
	var res []string
	add := func(line string) {
		if line != "" {
			res = append(res, line)
		}
	}

	add(h.WhenNPCWasMet)
	if pr.Status == progress.Rejected {
		add(h.WhenQuestWasRejected)
		return res
	}
	add(h.WhenQuestWasAccepted)
	for _, line := range q.def.Task.HistoryProgress(pr, now) {
		add(line)
	}
	if pr.Status == progress.Done || q.def.Task.IsCompleted(pr) {
		add(h.WhenTaskWasCompleted)
	}
	if pr.Status == progress.Done {
		add(h.WhenQuestWasCompleted)
	}
	if q.repeatable(pr, now) {
		add(h.WhenQuestCanBeRepeated)
	}
	if h.WhenCompletionsShown != "" && pr.Completions > 0 {
		add(completions(h.WhenCompletionsShown, pr.Completions))
	}
	return res
}

func completions(template string, count int) string {
	out := strings.ReplaceAll(template, "[count]", strconv.Itoa(count))
	i := strings.Index(out, "[")
	j := strings.Index(out, "]")
	if i > -1 && j > i+1 {
		noun := out[i+1 : j]
		out = strings.ReplaceAll(out, "["+noun+"]", parser.PluralNoun(count, noun))
	}
	return out
}

// repeatableCondition holds when the quest is done and may be repeated now.
func (q *BuiltQuest) repeatableCondition() rules.Condition {
	return rules.ConditionFunc(func(ctx *rules.Context) bool {
		return q.repeatable(progress.Read(ctx.Player, q.slot, ctx.Logger), ctx.Now)
	})
}

// AddToWorld registers the quest's rules on its giver and lets the task
// prepare any other NPCs.
func (q *BuiltQuest) AddToWorld(reg *dialogue.Registry) error {
	giver, err := reg.Get(q.def.Info.GiverNPC)
	if err != nil {
		return fmt.Errorf("quest %s: %w", q.slot, err)
	}
	task := q.def.Task
	if err := task.Prepare(reg, giver, q.slot); err != nil {
		return fmt.Errorf("quest %s: %w", q.slot, err)
	}

	slot := q.slot
	offer := q.def.Offer
	completed := task.CompletedCondition(slot)
	if completed == nil {
		completed = rules.ConditionFunc(func(*rules.Context) bool { return false })
	}

	type rule struct {
		from    types.ConversationState
		cond    rules.Condition
		to      types.ConversationState
		reply   string
		action  rules.Action
		trigger []string
	}
	regs := []rule{
		{types.StateAttending, rules.And(rules.Or(rules.QuestNotStarted(slot), rules.QuestRejected(slot)), task.PreCondition(slot)),
			types.StateQuestOffered, offer.RespondToRequest, nil, dialogue.QuestTriggers},
		{types.StateAttending, rules.And(rules.QuestCompleted(slot), rules.Not(q.repeatableCondition())),
			types.StateAttending, offer.RespondToUnrepeatableRequest, nil, dialogue.QuestTriggers},
		{types.StateAttending, q.repeatableCondition(),
			types.StateQuestOffered, offer.RespondToRepeatedRequest, nil, dialogue.QuestTriggers},
		{types.StateAttending, rules.And(rules.QuestActive(slot), completed),
			types.StateAttending, q.def.Complete.RespondToCompletion,
			rules.Sequence(task.CompleteAction(slot), rules.CompleteQuest(slot), xp(q.def.Complete.XP)), dialogue.QuestTriggers},
		{types.StateAttending, rules.QuestActive(slot),
			types.StateAttending, "", task.RemindAction(slot), dialogue.QuestTriggers},
		{types.StateQuestOffered, nil,
			types.StateAttending, offer.RespondToAccept, task.StartAction(slot), []string{"yes"}},
		{types.StateQuestOffered, nil,
			types.StateAttending, offer.RespondToReject, rules.Sequence(rules.SetQuestRejected(slot), task.RejectAction(slot)), []string{"no"}},
	}
	for _, r := range regs {
		if err := giver.Add(r.from, r.trigger, r.cond, r.to, r.reply, r.action); err != nil {
			return fmt.Errorf("quest %s: %w", slot, err)
		}
	}
	q.logger.Debug().Str("giver", giver.Name()).Msg("quest added")
	return nil
}

func xp(amount int) rules.Action {
	if amount <= 0 {
		return nil
	}
	return rules.IncreaseXP(amount)
}
