package loader

import (
	"github.com/nathoo/parley/types"
)

// Content is everything a content directory defines, compiled to Go values.
type Content struct {
	Title  string
	Items  []types.ItemDef
	NPCs   []NPCDef
	Quests []DeliveryQuestDef
}

// NPCDef describes one NPC and the behaviours attached to it.
type NPCDef struct {
	Name          string
	Greeting      string
	Goodbye       string
	Job           string
	Help          string
	Quest         string
	Offer         string
	NotUnderstood string
	Replies       []ReplyDef
	Sells         map[string]int
	Buys          map[string]int
	// HealCost is nil when the NPC does not heal.
	HealCost *int
}

// ReplyDef is a free-form rule.
type ReplyDef struct {
	Triggers   []string
	Text       string
	Alternates []string
	From       string // idle, attending, quest_offered or any
	To         string
	Requires   []ConditionDef
	Effects    []EffectDef
}

// ConditionDef is a condition as written in Lua, before it becomes a rules.Condition.
type ConditionDef struct {
	Type   string
	Params map[string]any
	Inner  *ConditionDef
}

// EffectDef is an action as written in Lua.
type EffectDef struct {
	Type   string
	Params map[string]any
}

// DeliveryQuestDef is a delivery quest.
type DeliveryQuestDef struct {
	Slot            string
	Name            string
	Description     string
	Giver           string
	MinLevel        int
	Region          string
	RepeatableAfter int
	Item            string
	Uniform         types.Outfit
	History         map[string]string
	Offer           map[string]string
	Orders          []OrderDef
}

// OrderDef is one delivery customer.
type OrderDef struct {
	Customer    string
	Description string
	Flavor      string
	Minutes     int
	MinLevel    int
	Weight      int
	Tip         int
	LateTip     int
	XP          int
	Fast        string
	Slow        string
}

// NPC returns the definition of the named NPC.
func (c *Content) NPC(name string) (NPCDef, bool) {
	for _, n := range c.NPCs {
		if n.Name == name {
			return n, true
		}
	}
	return NPCDef{}, false
}

// Item returns the named item prototype.
func (c *Content) Item(name string) (types.ItemDef, bool) {
	for _, it := range c.Items {
		if it.Name == name {
			return it, true
		}
	}
	return types.ItemDef{}, false
}
