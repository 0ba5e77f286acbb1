package rules

import (
	"testing"
	"time"

	"github.com/nathoo/parley/engine/progress"
)

func TestCombinators(t *testing.T) {
	ctx := testContext("hi")
	yes := ConditionFunc(func(*Context) bool { return true })
	no := ConditionFunc(func(*Context) bool { return false })

	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		{"not yes", Not(yes), false},
		{"not no", Not(no), true},
		{"and empty", And(), true},
		{"and yes yes", And(yes, yes), true},
		{"and yes no", And(yes, no), false},
		{"and nil yes", And(nil, yes), true},
		{"or empty", Or(), false},
		{"or no yes", Or(no, yes), true},
		{"or no no", Or(no, no), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cond.Fire(ctx); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuestConditions(t *testing.T) {
	tests := []struct {
		raw       string
		set       bool
		notStart  bool
		rejected  bool
		active    bool
		completed bool
	}{
		{set: false, notStart: true},
		{raw: "rejected", set: true, rejected: true},
		{raw: "Marcus;1700000000000", set: true, active: true},
		{raw: "done;1700000000000;1", set: true, completed: true},
		{raw: "done;broken", set: true, notStart: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			ctx := testContext("quest")
			if tt.set {
				ctx.Player.SetQuest("pizza", tt.raw)
			}
			if got := QuestNotStarted("pizza").Fire(ctx); got != tt.notStart {
				t.Errorf("NotStarted = %v", got)
			}
			if got := QuestStarted("pizza").Fire(ctx); got == tt.notStart {
				t.Errorf("Started = %v", got)
			}
			if got := QuestRejected("pizza").Fire(ctx); got != tt.rejected {
				t.Errorf("Rejected = %v", got)
			}
			if got := QuestActive("pizza").Fire(ctx); got != tt.active {
				t.Errorf("Active = %v", got)
			}
			if got := QuestCompleted("pizza").Fire(ctx); got != tt.completed {
				t.Errorf("Completed = %v", got)
			}
		})
	}
}

func TestQuestInStage(t *testing.T) {
	ctx := testContext("pizza")
	ctx.Player.SetQuest("pizza", "Marcus;1700000000000")
	if !QuestInStage("pizza", "Marcus").Fire(ctx) {
		t.Error("expected stage Marcus")
	}
	if QuestInStage("pizza", "Fidorea").Fire(ctx) {
		t.Error("unexpected stage Fidorea")
	}
}

func TestTimePassed(t *testing.T) {
	ctx := testContext("quest")
	done := testNow.Add(-30 * time.Minute)
	progress.Write(ctx.Player, "pizza", progress.Progress{Status: progress.Done, Timestamp: done, Completions: 1})

	if TimePassed("pizza", 60).Fire(ctx) {
		t.Error("30 minutes should not satisfy 60")
	}
	if !TimePassed("pizza", 30).Fire(ctx) {
		t.Error("30 minutes should satisfy 30")
	}
	if !TimePassed("pizza", 0).Fire(ctx) {
		t.Error("0 minutes is always satisfied")
	}

	ctx.Player.SetQuest("other", "done")
	if !TimePassed("other", 1000).Fire(ctx) {
		t.Error("missing timestamp should satisfy")
	}
}

func TestLevelAndItems(t *testing.T) {
	ctx := testContext("buy")
	if !LevelAtLeast(5).Fire(ctx) || LevelAtLeast(6).Fire(ctx) {
		t.Error("LevelAtLeast wrong for level 5")
	}
	if HasItem("sword", 1).Fire(ctx) {
		t.Error("should not have a sword")
	}
	if err := EquipItem("sword", 1).Fire(ctx); err != nil {
		t.Fatal(err)
	}
	if !HasItem("sword", 1).Fire(ctx) || HasItem("sword", 2).Fire(ctx) {
		t.Error("HasItem wrong with one sword")
	}
}
