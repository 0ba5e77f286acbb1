// Package rules implements the conversation rule table: conditions, actions
// and the TriggerTable that maps (state, trigger) to candidate rules.
package rules

import (
	"errors"
	"fmt"

	"github.com/nathoo/parley/engine/parser"
	"github.com/nathoo/parley/types"
)

var (
	// ErrFrozen is returned when registering into a frozen table.
	ErrFrozen = errors.New("trigger table is frozen")
	// ErrDuplicateRule is returned when a second unconditional rule is
	// registered for the same state and trigger.
	ErrDuplicateRule = errors.New("duplicate unconditional rule")
	// ErrNoTriggers is returned when none of the given triggers has words.
	ErrNoTriggers = errors.New("no triggers")
)

// Condition decides whether a rule is eligible this turn. Conditions must not
// mutate anything.
type Condition interface {
	Fire(ctx *Context) bool
}

// ConditionFunc adapts a function to Condition.
type ConditionFunc func(ctx *Context) bool

func (f ConditionFunc) Fire(ctx *Context) bool { return f(ctx) }

// Action performs the side effects of a rule. An error aborts the turn: the
// state transition is not applied and queued speech is dropped. Actions must
// check every precondition before mutating the player.
type Action interface {
	Fire(ctx *Context) error
}

// ActionFunc adapts a function to Action.
type ActionFunc func(ctx *Context) error

func (f ActionFunc) Fire(ctx *Context) error { return f(ctx) }

// Rule is one registered transition.
type Rule struct {
	From      types.ConversationState
	Trigger   string
	Condition Condition
	To        types.ConversationState
	Replies   []string
	Action    Action

	order int
}

// Order returns the registration sequence number of the rule.
func (r *Rule) Order() int { return r.order }

type key struct {
	state   types.ConversationState
	trigger string
}

// TriggerTable maps (state, normalized trigger) to rules in registration
// order. Register is not safe for concurrent use; after Freeze the table is
// read-only and Resolve may be called from any goroutine.
type TriggerTable struct {
	rules  map[key][]*Rule
	frozen bool
	next   int
}

// NewTriggerTable returns an empty table.
func NewTriggerTable() *TriggerTable {
	return &TriggerTable{rules: make(map[key][]*Rule)}
}

// Register adds a rule for every trigger. cond and action may be nil.
// replies holds alternative responses, one of which is chosen at random.
// Either every trigger is registered or none is.
func (t *TriggerTable) Register(from types.ConversationState, triggers []string, cond Condition,
	to types.ConversationState, replies []string, action Action) error {

	if t.frozen {
		return ErrFrozen
	}

	var keys []key
	seen := make(map[string]bool, len(triggers))
	for _, trig := range triggers {
		norm := parser.NormalizeTrigger(trig)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		k := key{from, norm}
		if cond == nil {
			for _, r := range t.rules[k] {
				if r.Condition == nil {
					return fmt.Errorf("state %v trigger %q: %w", from, norm, ErrDuplicateRule)
				}
			}
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return fmt.Errorf("state %v %q: %w", from, triggers, ErrNoTriggers)
	}

	for _, k := range keys {
		t.rules[k] = append(t.rules[k], &Rule{
			From:      from,
			Trigger:   k.trigger,
			Condition: cond,
			To:        to,
			Replies:   replies,
			Action:    action,
			order:     t.next,
		})
		t.next++
	}
	return nil
}

// Freeze makes the table read-only.
func (t *TriggerTable) Freeze() { t.frozen = true }

// Frozen reports whether Freeze has been called.
func (t *TriggerTable) Frozen() bool { return t.frozen }

// Len returns the number of registered (state, trigger) rules.
func (t *TriggerTable) Len() int { return t.next }

// Candidates returns the rules registered for an exact state and trigger.
func (t *TriggerTable) Candidates(state types.ConversationState, trigger string) []*Rule {
	return t.rules[key{state, parser.NormalizeTrigger(trigger)}]
}
