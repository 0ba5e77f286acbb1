package rules

import (
	"github.com/nathoo/parley/engine/parser"
	"github.com/nathoo/parley/types"
)

// Resolve finds the rule to fire for a sentence in the given state.
//
// Resolution order: every word prefix of the sentence, longest first, in the
// exact state; then the same prefixes in StateAny. Within one (state, trigger)
// candidates are tried in registration order and the first whose condition
// holds wins.
//
// The second result reports whether any trigger matched at all, even if
// every candidate's condition failed.
func (t *TriggerTable) Resolve(state types.ConversationState, s types.Sentence, ctx *Context) (*Rule, bool) {
	prefixes := parser.Prefixes(s)
	states := []types.ConversationState{state}
	if state != types.StateAny {
		states = append(states, types.StateAny)
	}

	triggered := false
	for _, st := range states {
		for _, p := range prefixes {
			for _, r := range t.rules[key{st, p}] {
				triggered = true
				if r.Condition == nil || r.Condition.Fire(ctx) {
					return r, true
				}
			}
		}
	}
	return nil, triggered
}
