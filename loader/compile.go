// Package loader loads Lua content into Go structs at startup and installs it
// into a world. The Lua VM is discarded after loading; no Lua runs at runtime.
package loader

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/parley/types"
)

// rawItem holds an item table before compilation.
type rawItem struct {
	name  string
	table *lua.LTable
}

// rawNPC holds an NPC table before compilation.
type rawNPC struct {
	name  string
	table *lua.LTable
}

// rawQuest holds a delivery quest table before compilation.
type rawQuest struct {
	slot  string
	table *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getIntOr returns an int field, or def when the field is absent.
func getIntOr(tbl *lua.LTable, key string, def int) int {
	if _, ok := tbl.RawGetString(key).(lua.LNumber); !ok {
		return def
	}
	return getInt(tbl, key)
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		// Check if it's an array (sequential integer keys starting at 1).
		maxN := val.MaxN()
		if maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// tableToStringMap converts a Lua table to a map[string]string.
func tableToStringMap(tbl *lua.LTable) map[string]string {
	if tbl == nil {
		return nil
	}
	m := map[string]string{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			if vs, ok := v.(lua.LString); ok {
				m[string(ks)] = string(vs)
			}
		}
	})
	return m
}

// tableToIntMap converts a Lua table of numbers to a map[string]int.
func tableToIntMap(tbl *lua.LTable) map[string]int {
	if tbl == nil {
		return nil
	}
	m := map[string]int{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			if n, ok := v.(lua.LNumber); ok {
				m[string(ks)] = int(n)
			}
		}
	})
	return m
}

// stringList reads a field that is either one string or an array of strings.
func stringList(tbl *lua.LTable, key string) []string {
	switch v := tbl.RawGetString(key).(type) {
	case lua.LString:
		return []string{string(v)}
	case *lua.LTable:
		var out []string
		for i := 1; i <= v.MaxN(); i++ {
			if s, ok := v.RawGetInt(i).(lua.LString); ok {
				out = append(out, string(s))
			}
		}
		return out
	}
	return nil
}

// compile converts all collected Lua data into Content.
func compile(coll *collector) (*Content, error) {
	c := &Content{}
	if coll.world != nil {
		c.Title = getString(coll.world, "title")
	}

	for _, raw := range coll.items {
		c.Items = append(c.Items, types.ItemDef{
			Name:        raw.name,
			Stackable:   getBool(raw.table, "stackable", false),
			Description: getString(raw.table, "description"),
		})
	}

	for _, raw := range coll.npcs {
		npc, err := compileNPC(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling npc %s: %w", raw.name, err)
		}
		c.NPCs = append(c.NPCs, npc)
	}

	for _, raw := range coll.quests {
		c.Quests = append(c.Quests, compileQuest(raw))
	}

	return c, nil
}

func compileNPC(raw rawNPC) (NPCDef, error) {
	tbl := raw.table
	npc := NPCDef{
		Name:          raw.name,
		Greeting:      getString(tbl, "greeting"),
		Goodbye:       getString(tbl, "goodbye"),
		Job:           getString(tbl, "job"),
		Help:          getString(tbl, "help"),
		Quest:         getString(tbl, "quest"),
		Offer:         getString(tbl, "offer"),
		NotUnderstood: getString(tbl, "not_understood"),
		Sells:         tableToIntMap(getTable(tbl, "sells")),
		Buys:          tableToIntMap(getTable(tbl, "buys")),
	}
	if _, ok := tbl.RawGetString("heals").(lua.LNumber); ok {
		cost := getInt(tbl, "heals")
		npc.HealCost = &cost
	}

	if repliesTbl := getTable(tbl, "replies"); repliesTbl != nil {
		replies, err := compileReplies(repliesTbl)
		if err != nil {
			return NPCDef{}, err
		}
		npc.Replies = replies
	}
	return npc, nil
}

// compileReplies accepts both the short form { trigger = "text" } and an
// array of Reply { ... } tables. Short-form replies are sorted by trigger.
func compileReplies(tbl *lua.LTable) ([]ReplyDef, error) {
	var short []ReplyDef
	var long []ReplyDef
	var err error
	tbl.ForEach(func(k, v lua.LValue) {
		switch key := k.(type) {
		case lua.LString:
			text, ok := v.(lua.LString)
			if !ok {
				err = fmt.Errorf("reply %q: text must be a string", string(key))
				return
			}
			short = append(short, ReplyDef{Triggers: []string{string(key)}, Text: string(text)})
		case lua.LNumber:
			rt, ok := v.(*lua.LTable)
			if !ok {
				err = fmt.Errorf("reply %d: expected a table", int(key))
				return
			}
			long = append(long, compileReply(rt))
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(short, func(i, j int) bool { return short[i].Triggers[0] < short[j].Triggers[0] })
	return append(long, short...), nil
}

func compileReply(tbl *lua.LTable) ReplyDef {
	r := ReplyDef{
		Triggers:   stringList(tbl, "triggers"),
		Text:       getString(tbl, "text"),
		Alternates: stringList(tbl, "alternatives"),
		From:       getString(tbl, "from"),
		To:         getString(tbl, "to"),
	}
	if t := stringList(tbl, "trigger"); len(t) > 0 {
		r.Triggers = append(r.Triggers, t...)
	}
	if reqTbl := getTable(tbl, "requires"); reqTbl != nil {
		r.Requires = compileConditions(reqTbl)
	}
	if effTbl := getTable(tbl, "effects"); effTbl != nil {
		r.Effects = compileEffects(effTbl)
	}
	return r
}

func compileConditions(tbl *lua.LTable) []ConditionDef {
	var conditions []ConditionDef
	for i := 1; i <= tbl.MaxN(); i++ {
		if condTbl, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			conditions = append(conditions, compileCondition(condTbl))
		}
	}
	return conditions
}

func compileCondition(tbl *lua.LTable) ConditionDef {
	condType := getString(tbl, "type")

	if condType == "not" {
		if innerTbl := getTable(tbl, "inner"); innerTbl != nil {
			inner := compileCondition(innerTbl)
			return ConditionDef{Type: "not", Inner: &inner}
		}
	}

	return ConditionDef{Type: condType, Params: params(tbl)}
}

func compileEffects(tbl *lua.LTable) []EffectDef {
	var effects []EffectDef
	for i := 1; i <= tbl.MaxN(); i++ {
		if effTbl, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			effects = append(effects, EffectDef{Type: getString(effTbl, "type"), Params: params(effTbl)})
		}
	}
	return effects
}

// params collects every field except "type".
func params(tbl *lua.LTable) map[string]any {
	p := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok && string(ks) != "type" {
			p[string(ks)] = toGoValue(v)
		}
	})
	return p
}

func compileQuest(raw rawQuest) DeliveryQuestDef {
	tbl := raw.table
	q := DeliveryQuestDef{
		Slot:            raw.slot,
		Name:            getString(tbl, "name"),
		Description:     getString(tbl, "description"),
		Giver:           getString(tbl, "giver"),
		MinLevel:        getInt(tbl, "min_level"),
		Region:          getString(tbl, "region"),
		RepeatableAfter: getIntOr(tbl, "repeatable_after", -1),
		Item:            getString(tbl, "item"),
		History:         tableToStringMap(getTable(tbl, "history")),
		Offer:           tableToStringMap(getTable(tbl, "offer")),
	}
	if u := getTable(tbl, "uniform"); u != nil {
		q.Uniform = types.Outfit{
			Body:  getInt(u, "body"),
			Dress: getInt(u, "dress"),
			Head:  getInt(u, "head"),
			Hair:  getInt(u, "hair"),
		}
	}
	if orders := getTable(tbl, "orders"); orders != nil {
		for i := 1; i <= orders.MaxN(); i++ {
			ot, ok := orders.RawGetInt(i).(*lua.LTable)
			if !ok {
				continue
			}
			q.Orders = append(q.Orders, OrderDef{
				Customer:    getString(ot, "customer"),
				Description: getString(ot, "description"),
				Flavor:      getString(ot, "flavor"),
				Minutes:     getInt(ot, "minutes"),
				MinLevel:    getInt(ot, "min_level"),
				Weight:      getIntOr(ot, "weight", 1),
				Tip:         getInt(ot, "tip"),
				LateTip:     getInt(ot, "late_tip"),
				XP:          getInt(ot, "xp"),
				Fast:        getString(ot, "fast"),
				Slow:        getString(ot, "slow"),
			})
		}
	}
	return q
}

// sortedLuaFiles returns .lua files with world.lua first and the rest sorted
// alphabetically.
func sortedLuaFiles(files []string) []string {
	var worldFile string
	var others []string
	for _, f := range files {
		if f == "world.lua" {
			worldFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if worldFile != "" {
		return append([]string{worldFile}, others...)
	}
	return others
}
