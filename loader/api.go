package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerConditionHelpers(L)
	registerEffectHelpers(L)
}

// curried registers a constructor of the form Name "id" { ... }.
func curried(L *lua.LState, global string, collect func(id string, tbl *lua.LTable)) {
	L.SetGlobal(global, L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			collect(id, L.CheckTable(1))
			return 0
		}))
		return 1
	}))
}

func registerConstructors(L *lua.LState, coll *collector) {
	// World { title = "..." }
	L.SetGlobal("World", L.NewFunction(func(L *lua.LState) int {
		coll.world = L.CheckTable(1)
		return 0
	}))

	// Item "money" { stackable = true, description = "..." }
	curried(L, "Item", func(id string, tbl *lua.LTable) {
		coll.items = append(coll.items, rawItem{name: id, table: tbl})
	})

	// NPC "Xin Blanca" { greeting = "...", sells = { ... }, replies = { ... } }
	curried(L, "NPC", func(id string, tbl *lua.LTable) {
		coll.npcs = append(coll.npcs, rawNPC{name: id, table: tbl})
	})

	// DeliveryQuest "pizza_delivery" { giver = "...", orders = { ... } }
	curried(L, "DeliveryQuest", func(id string, tbl *lua.LTable) {
		coll.quests = append(coll.quests, rawQuest{slot: id, table: tbl})
	})

	// Reply { triggers = {...}, text = "...", requires = {...}, effects = {...} }
	// Pass-through, returns the table.
	L.SetGlobal("Reply", L.NewFunction(func(L *lua.LState) int {
		L.Push(L.CheckTable(1))
		return 1
	}))
}

// tagged pushes a table { type = kind, ... } built by fill.
func tagged(L *lua.LState, kind string, fill func(tbl *lua.LTable)) int {
	tbl := L.NewTable()
	tbl.RawSetString("type", lua.LString(kind))
	fill(tbl)
	L.Push(tbl)
	return 1
}

func registerConditionHelpers(L *lua.LState) {
	// HasItem("flour", 5)
	L.SetGlobal("HasItem", L.NewFunction(func(L *lua.LState) int {
		item := L.CheckString(1)
		amount := L.OptInt(2, 1)
		return tagged(L, "has_item", func(tbl *lua.LTable) {
			tbl.RawSetString("item", lua.LString(item))
			tbl.RawSetString("amount", lua.LNumber(amount))
		})
	}))

	// LevelAtLeast(10)
	L.SetGlobal("LevelAtLeast", L.NewFunction(func(L *lua.LState) int {
		level := L.CheckInt(1)
		return tagged(L, "level_at_least", func(tbl *lua.LTable) {
			tbl.RawSetString("level", lua.LNumber(level))
		})
	}))

	// QuestNotStarted / QuestStarted / QuestRejected / QuestActive / QuestCompleted ("slot")
	for global, kind := range map[string]string{
		"QuestNotStarted": "quest_not_started",
		"QuestStarted":    "quest_started",
		"QuestRejected":   "quest_rejected",
		"QuestActive":     "quest_active",
		"QuestCompleted":  "quest_completed",
	} {
		L.SetGlobal(global, L.NewFunction(func(L *lua.LState) int {
			slot := L.CheckString(1)
			return tagged(L, kind, func(tbl *lua.LTable) {
				tbl.RawSetString("slot", lua.LString(slot))
			})
		}))
	}

	// QuestInStage("slot", "stage")
	L.SetGlobal("QuestInStage", L.NewFunction(func(L *lua.LState) int {
		slot := L.CheckString(1)
		stage := L.CheckString(2)
		return tagged(L, "quest_in_stage", func(tbl *lua.LTable) {
			tbl.RawSetString("slot", lua.LString(slot))
			tbl.RawSetString("stage", lua.LString(stage))
		})
	}))

	// TimePassed("slot", minutes)
	L.SetGlobal("TimePassed", L.NewFunction(func(L *lua.LState) int {
		slot := L.CheckString(1)
		minutes := L.CheckInt(2)
		return tagged(L, "time_passed", func(tbl *lua.LTable) {
			tbl.RawSetString("slot", lua.LString(slot))
			tbl.RawSetString("minutes", lua.LNumber(minutes))
		})
	}))

	// Not(condition)
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		inner := L.CheckTable(1)
		return tagged(L, "not", func(tbl *lua.LTable) {
			tbl.RawSetString("inner", inner)
		})
	}))
}

func registerEffectHelpers(L *lua.LState) {
	// Say("text")
	L.SetGlobal("Say", L.NewFunction(func(L *lua.LState) int {
		text := L.CheckString(1)
		return tagged(L, "say", func(tbl *lua.LTable) {
			tbl.RawSetString("text", lua.LString(text))
		})
	}))

	// GiveItem("flask", 2)
	L.SetGlobal("GiveItem", L.NewFunction(func(L *lua.LState) int {
		item := L.CheckString(1)
		amount := L.OptInt(2, 1)
		return tagged(L, "give_item", func(tbl *lua.LTable) {
			tbl.RawSetString("item", lua.LString(item))
			tbl.RawSetString("amount", lua.LNumber(amount))
		})
	}))

	// IncreaseXP(50)
	L.SetGlobal("IncreaseXP", L.NewFunction(func(L *lua.LState) int {
		amount := L.CheckInt(1)
		return tagged(L, "increase_xp", func(tbl *lua.LTable) {
			tbl.RawSetString("amount", lua.LNumber(amount))
		})
	}))

	// SetQuestStage("slot", "stage")
	L.SetGlobal("SetQuestStage", L.NewFunction(func(L *lua.LState) int {
		slot := L.CheckString(1)
		stage := L.CheckString(2)
		return tagged(L, "set_quest_stage", func(tbl *lua.LTable) {
			tbl.RawSetString("slot", lua.LString(slot))
			tbl.RawSetString("stage", lua.LString(stage))
		})
	}))

	// RejectQuest("slot")
	L.SetGlobal("RejectQuest", L.NewFunction(func(L *lua.LState) int {
		slot := L.CheckString(1)
		return tagged(L, "reject_quest", func(tbl *lua.LTable) {
			tbl.RawSetString("slot", lua.LString(slot))
		})
	}))

	// CompleteQuest("slot")
	L.SetGlobal("CompleteQuest", L.NewFunction(func(L *lua.LState) int {
		slot := L.CheckString(1)
		return tagged(L, "complete_quest", func(tbl *lua.LTable) {
			tbl.RawSetString("slot", lua.LString(slot))
		})
	}))
}
