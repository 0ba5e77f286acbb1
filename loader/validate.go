package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/nathoo/parley/engine/behaviour"
	"github.com/nathoo/parley/engine/progress"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Known effect types.
var validEffectTypes = map[string]bool{
	"say":             true,
	"give_item":       true,
	"increase_xp":     true,
	"set_quest_stage": true,
	"reject_quest":    true,
	"complete_quest":  true,
}

// Known condition types.
var validConditionTypes = map[string]bool{
	"has_item":          true,
	"level_at_least":    true,
	"quest_not_started": true,
	"quest_started":     true,
	"quest_rejected":    true,
	"quest_active":      true,
	"quest_completed":   true,
	"quest_in_stage":    true,
	"time_passed":       true,
	"not":               true,
}

// Known state names for Reply from/to.
var validStates = map[string]bool{
	"":              true,
	"idle":          true,
	"attending":     true,
	"quest_offered": true,
	"any":           true,
}

// validate checks the compiled content for referential integrity and
// consistency.
func validate(c *Content) error {
	ve := &ValidationError{}

	items := map[string]bool{}
	for _, it := range c.Items {
		if items[it.Name] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("duplicate item %q", it.Name))
		}
		items[it.Name] = true
	}

	npcs := map[string]NPCDef{}
	usesMoney := false
	for _, npc := range c.NPCs {
		key := strings.ToLower(npc.Name)
		if _, ok := npcs[key]; ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf("duplicate npc %q", npc.Name))
		}
		npcs[key] = npc

		for _, prices := range []map[string]int{npc.Sells, npc.Buys} {
			for item, price := range prices {
				if !items[strings.ToLower(item)] {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"npc %q trades undefined item %q", npc.Name, item))
				}
				if price <= 0 {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"npc %q price for %q must be positive, got %d", npc.Name, item, price))
				}
				usesMoney = true
			}
		}
		if npc.HealCost != nil {
			if *npc.HealCost < 0 {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"npc %q heal cost must not be negative", npc.Name))
			}
			if *npc.HealCost > 0 {
				usesMoney = true
			}
		}

		for i, r := range npc.Replies {
			validateReply(npc.Name, i, r, items, ve)
		}
	}

	givers := map[string]string{}
	slots := map[string]bool{}
	for _, q := range c.Quests {
		if slots[strings.ToLower(q.Slot)] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("duplicate quest %q", q.Slot))
		}
		slots[strings.ToLower(q.Slot)] = true

		giver, ok := npcs[strings.ToLower(q.Giver)]
		switch {
		case q.Giver == "":
			ve.Errors = append(ve.Errors, fmt.Sprintf("quest %q has no giver", q.Slot))
		case !ok:
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"quest %q giver %q is not a defined npc", q.Slot, q.Giver))
		case giver.Quest != "":
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"npc %q has a fixed quest reply and gives quest %q", giver.Name, q.Slot))
		}
		if other, ok := givers[strings.ToLower(q.Giver)]; ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"npc %q gives both %q and %q", q.Giver, other, q.Slot))
		}
		givers[strings.ToLower(q.Giver)] = q.Slot

		if q.RepeatableAfter < -1 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"quest %q repeatable_after must be -1, 0 or positive", q.Slot))
		}
		if !items[q.Item] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"quest %q delivers undefined item %q", q.Slot, q.Item))
		}
		if len(q.Orders) == 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("quest %q has no orders", q.Slot))
		}
		for _, o := range q.Orders {
			if _, ok := npcs[strings.ToLower(o.Customer)]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"quest %q customer %q is not a defined npc", q.Slot, o.Customer))
			}
			if err := progress.CheckStage(o.Customer); err != nil {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"quest %q customer %q cannot be stored as a quest stage", q.Slot, o.Customer))
			}
			if o.Flavor == "" {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"quest %q order for %q has no flavor", q.Slot, o.Customer))
			}
			if o.Minutes <= 0 {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"quest %q order for %q needs positive minutes", q.Slot, o.Customer))
			}
			if o.Tip > 0 || o.LateTip > 0 {
				usesMoney = true
			}
		}
	}

	if usesMoney && !items[behaviour.Money] {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"content trades or tips but defines no %q item", behaviour.Money))
	}

	// Warnings: NPCs nobody can talk to usefully.
	for _, npc := range c.NPCs {
		if len(npc.Replies) == 0 && npc.Job == "" && npc.Help == "" && len(npc.Sells) == 0 &&
			len(npc.Buys) == 0 && npc.HealCost == nil && givers[strings.ToLower(npc.Name)] == "" {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"npc %q only greets and says goodbye", npc.Name))
		}
	}

	// Print warnings to stderr.
	for _, w := range ve.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateReply(npc string, i int, r ReplyDef, items map[string]bool, ve *ValidationError) {
	where := fmt.Sprintf("npc %q reply %d", npc, i+1)
	if len(r.Triggers) == 0 {
		ve.Errors = append(ve.Errors, where+" has no triggers")
	}
	if !validStates[r.From] {
		ve.Errors = append(ve.Errors, fmt.Sprintf("%s: unknown state %q", where, r.From))
	}
	if !validStates[r.To] || r.To == "any" {
		ve.Errors = append(ve.Errors, fmt.Sprintf("%s: invalid target state %q", where, r.To))
	}
	validateConditions(where, r.Requires, items, ve)
	validateEffects(where, r.Effects, items, ve)
}

func validateConditions(where string, conditions []ConditionDef, items map[string]bool, ve *ValidationError) {
	for _, cond := range conditions {
		if !validConditionTypes[cond.Type] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("%s: unknown condition type %q", where, cond.Type))
			continue
		}
		if cond.Type == "not" {
			if cond.Inner == nil {
				ve.Errors = append(ve.Errors, fmt.Sprintf("%s: Not() without a condition", where))
			} else {
				validateConditions(where, []ConditionDef{*cond.Inner}, items, ve)
			}
			continue
		}
		if cond.Type == "has_item" {
			if item, _ := cond.Params["item"].(string); !items[item] {
				ve.Errors = append(ve.Errors, fmt.Sprintf("%s: condition references undefined item %q", where, item))
			}
		}
	}
}

func validateEffects(where string, effects []EffectDef, items map[string]bool, ve *ValidationError) {
	for _, eff := range effects {
		if !validEffectTypes[eff.Type] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("%s: unknown effect type %q", where, eff.Type))
			continue
		}
		if eff.Type == "give_item" {
			if item, _ := eff.Params["item"].(string); !items[item] {
				ve.Errors = append(ve.Errors, fmt.Sprintf("%s: effect references undefined item %q", where, item))
			}
		}
	}
}
