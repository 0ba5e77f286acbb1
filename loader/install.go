package loader

import (
	"fmt"
	"strings"

	"github.com/nathoo/parley/engine"
	"github.com/nathoo/parley/engine/behaviour"
	"github.com/nathoo/parley/engine/quest"
	"github.com/nathoo/parley/engine/rules"
	"github.com/nathoo/parley/types"
)

// Install registers the content's items, NPCs and quests in w and freezes
// it. Quests are added last so that every NPC they mention exists.
func Install(c *Content, w *engine.World) error {
	for _, it := range c.Items {
		w.State.RegisterItem(it)
	}
	for _, def := range c.NPCs {
		if err := installNPC(w, def); err != nil {
			return fmt.Errorf("npc %s: %w", def.Name, err)
		}
	}
	for _, q := range c.Quests {
		if _, err := w.AddQuest(q.definition()); err != nil {
			return err
		}
	}
	w.Freeze()
	return nil
}

func installNPC(w *engine.World, def NPCDef) error {
	npc, err := w.NewNPC(def.Name)
	if err != nil {
		return err
	}
	if def.NotUnderstood != "" {
		npc.SetNotUnderstood(def.NotUnderstood)
	}
	if err := npc.AddGreeting(def.Greeting, nil); err != nil {
		return err
	}
	if err := npc.AddGoodbye(def.Goodbye); err != nil {
		return err
	}
	for _, fixed := range []struct {
		text string
		add  func(string) error
	}{
		{def.Job, npc.AddJob},
		{def.Help, npc.AddHelp},
		{def.Quest, npc.AddQuest},
	} {
		if fixed.text == "" {
			continue
		}
		if err := fixed.add(fixed.text); err != nil {
			return err
		}
	}

	for i, r := range def.Replies {
		if err := installReply(npc, r); err != nil {
			return fmt.Errorf("reply %d: %w", i+1, err)
		}
	}

	// Behaviours never register "offer" themselves; one combined reply lists
	// everything the NPC does.
	var offers []string
	if len(def.Sells) > 0 {
		s := behaviour.NewSeller(def.Sells)
		if err := behaviour.AddSeller(npc, s, false); err != nil {
			return err
		}
		offers = append(offers, s.OfferText())
	}
	if len(def.Buys) > 0 {
		b := behaviour.NewBuyer(def.Buys)
		if err := behaviour.AddBuyer(npc, b, false); err != nil {
			return err
		}
		offers = append(offers, b.OfferText())
	}
	if def.HealCost != nil {
		if err := behaviour.AddHealer(npc, *def.HealCost, false); err != nil {
			return err
		}
		offers = append(offers, behaviour.HealerOfferText)
	}
	offer := def.Offer
	if offer == "" {
		offer = strings.Join(offers, " ")
	}
	if offer != "" {
		return npc.AddOffer(offer)
	}
	return nil
}

type replyTarget interface {
	AddAlternatives(from types.ConversationState, triggers []string, cond rules.Condition,
		to types.ConversationState, replies []string, action rules.Action) error
}

func installReply(npc replyTarget, r ReplyDef) error {
	from := stateByName(r.From, types.StateAttending)
	to := stateByName(r.To, from)
	if to == types.StateAny {
		to = types.StateAttending
	}

	var conds []rules.Condition
	for _, d := range r.Requires {
		c, err := condition(d)
		if err != nil {
			return err
		}
		conds = append(conds, c)
	}
	var cond rules.Condition
	if len(conds) > 0 {
		cond = rules.And(conds...)
	}

	var actions []rules.Action
	for _, d := range r.Effects {
		a, err := effect(d)
		if err != nil {
			return err
		}
		actions = append(actions, a)
	}
	var action rules.Action
	if len(actions) > 0 {
		action = rules.Sequence(actions...)
	}

	var replies []string
	if r.Text != "" {
		replies = append(replies, r.Text)
	}
	replies = append(replies, r.Alternates...)
	return npc.AddAlternatives(from, r.Triggers, cond, to, replies, action)
}

func stateByName(name string, def types.ConversationState) types.ConversationState {
	switch name {
	case "idle":
		return types.StateIdle
	case "attending":
		return types.StateAttending
	case "quest_offered":
		return types.StateQuestOffered
	case "any":
		return types.StateAny
	}
	return def
}

func stringParam(p map[string]any, key string) string {
	s, _ := p[key].(string)
	return s
}

func intParam(p map[string]any, key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

// condition converts a Lua condition into a rules.Condition.
func condition(d ConditionDef) (rules.Condition, error) {
	slot := strings.ToLower(stringParam(d.Params, "slot"))
	switch d.Type {
	case "not":
		if d.Inner == nil {
			return nil, fmt.Errorf("not: missing inner condition")
		}
		inner, err := condition(*d.Inner)
		if err != nil {
			return nil, err
		}
		return rules.Not(inner), nil
	case "has_item":
		return rules.HasItem(stringParam(d.Params, "item"), intParam(d.Params, "amount", 1)), nil
	case "level_at_least":
		return rules.LevelAtLeast(intParam(d.Params, "level", 0)), nil
	case "quest_not_started":
		return rules.QuestNotStarted(slot), nil
	case "quest_started":
		return rules.QuestStarted(slot), nil
	case "quest_rejected":
		return rules.QuestRejected(slot), nil
	case "quest_active":
		return rules.QuestActive(slot), nil
	case "quest_completed":
		return rules.QuestCompleted(slot), nil
	case "quest_in_stage":
		return rules.QuestInStage(slot, stringParam(d.Params, "stage")), nil
	case "time_passed":
		return rules.TimePassed(slot, intParam(d.Params, "minutes", 0)), nil
	}
	return nil, fmt.Errorf("unknown condition type %q", d.Type)
}

// effect converts a Lua effect into a rules.Action.
func effect(d EffectDef) (rules.Action, error) {
	slot := strings.ToLower(stringParam(d.Params, "slot"))
	switch d.Type {
	case "say":
		return rules.Say(stringParam(d.Params, "text")), nil
	case "give_item":
		return rules.EquipItem(stringParam(d.Params, "item"), intParam(d.Params, "amount", 1)), nil
	case "increase_xp":
		return rules.IncreaseXP(intParam(d.Params, "amount", 0)), nil
	case "set_quest_stage":
		return rules.SetQuestStage(slot, stringParam(d.Params, "stage")), nil
	case "reject_quest":
		return rules.SetQuestRejected(slot), nil
	case "complete_quest":
		return rules.CompleteQuest(slot), nil
	}
	return nil, fmt.Errorf("unknown effect type %q", d.Type)
}

// definition builds the quest definition of a delivery quest.
func (q DeliveryQuestDef) definition() quest.Definition {
	h, o := q.History, q.Offer
	task := &quest.DeliverItemTask{
		Item:    q.Item,
		Uniform: q.Uniform,
		History: quest.DeliveryHistory{
			WhenItemWasGiven:      h["item_given"],
			WhenToldAboutCustomer: h["told_about_customer"],
			WhenInTime:            h["in_time"],
			WhenOutOfTime:         h["out_of_time"],
		},
	}
	for _, od := range q.Orders {
		task.Orders = append(task.Orders, quest.Order{
			Customer:              od.Customer,
			Description:           od.Description,
			Flavor:                od.Flavor,
			ExpectedMinutes:       od.Minutes,
			MinLevel:              od.MinLevel,
			Weight:                od.Weight,
			Tip:                   od.Tip,
			LateTip:               od.LateTip,
			XP:                    od.XP,
			RespondToFastDelivery: od.Fast,
			RespondToSlowDelivery: od.Slow,
		})
	}
	return quest.Definition{
		Info: quest.Info{
			Name:                   q.Name,
			InternalName:           q.Slot,
			Description:            q.Description,
			GiverNPC:               q.Giver,
			MinLevel:               q.MinLevel,
			Region:                 q.Region,
			RepeatableAfterMinutes: q.RepeatableAfter,
		},
		History: quest.History{
			WhenNPCWasMet:          h["met"],
			WhenQuestWasRejected:   h["rejected"],
			WhenQuestWasAccepted:   h["accepted"],
			WhenTaskWasCompleted:   h["task_completed"],
			WhenQuestWasCompleted:  h["completed"],
			WhenQuestCanBeRepeated: h["can_repeat"],
			WhenCompletionsShown:   h["completions"],
		},
		Offer: quest.Offer{
			RespondToRequest:             o["request"],
			RespondToUnrepeatableRequest: o["unrepeatable"],
			RespondToRepeatedRequest:     o["repeated"],
			RespondToAccept:              o["accept"],
			RespondToReject:              o["reject"],
		},
		Task: task,
	}
}
