package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nathoo/parley/engine"
	"github.com/nathoo/parley/engine/behaviour"
	"github.com/nathoo/parley/engine/quest"
	"github.com/nathoo/parley/store"
	"github.com/nathoo/parley/types"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// testWorld returns a baker who hands out pizza orders and a guard who eats
// them.
func testWorld(t *testing.T, clock *Clock) *engine.World {
	t.Helper()
	w := engine.New(engine.Options{Logger: zerolog.Nop(), Now: clock.Now, Seed: 5})
	w.State.RegisterItem(types.ItemDef{Name: behaviour.Money, Stackable: true})
	w.State.RegisterItem(types.ItemDef{Name: "pizza"})
	w.State.RegisterItem(types.ItemDef{Name: "flask", Stackable: true})

	for _, name := range []string{"Leander", "Marcus"} {
		npc, err := w.NewNPC(name)
		if err != nil {
			t.Fatal(err)
		}
		if err := npc.AddGreeting("", nil); err != nil {
			t.Fatal(err)
		}
		if err := npc.AddGoodbye(""); err != nil {
			t.Fatal(err)
		}
	}
	leander, _ := w.NPCs.Get("Leander")
	if err := leander.AddJob("I bake pizza."); err != nil {
		t.Fatal(err)
	}
	if err := behaviour.AddSeller(leander, behaviour.NewSeller(map[string]int{"flask": 5}), true); err != nil {
		t.Fatal(err)
	}

	_, err := w.AddQuest(quest.Definition{
		Info: quest.Info{Name: "Pizza Delivery", InternalName: "pizza_delivery", GiverNPC: "Leander"},
		History: quest.History{
			WhenNPCWasMet:         "I met Leander.",
			WhenQuestWasAccepted:  "I agreed to help.",
			WhenQuestWasCompleted: "I delivered the pizza.",
		},
		Offer: quest.Offer{RespondToRequest: "Will you deliver a pizza?"},
		Task: &quest.DeliverItemTask{
			Item: "pizza",
			Orders: []quest.Order{{
				Customer: "Marcus", Flavor: "Pizza Margherita", ExpectedMinutes: 10,
				Tip: 15, LateTip: 5, XP: 20,
				RespondToFastDelivery: "Hot! [tip] coins.",
				RespondToSlowDelivery: "Cold. [tip] coins.",
			}},
			History: quest.DeliveryHistory{WhenOutOfTime: "It has gone cold."},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	w.Freeze()
	return w
}

func newTestCLI(t *testing.T, input string) (*CLI, *bytes.Buffer) {
	t.Helper()
	clock := NewClock(func() time.Time { return t0 })
	var out bytes.Buffer
	c := New(testWorld(t, clock), store.NewMemory(), clock)
	c.Title = "Test Town"
	c.In = strings.NewReader(input)
	c.Out = &out
	return c, &out
}

func run(t *testing.T, input string) (*CLI, string) {
	t.Helper()
	c, out := newTestCLI(t, input)
	c.Run(context.Background())
	return c, out.String()
}

func TestCLI_Intro(t *testing.T) {
	_, output := run(t, "/quit\n")
	if !strings.Contains(output, "Test Town") {
		t.Error("expected title in output")
	}
	if !strings.Contains(output, "[You are hero.") {
		t.Error("expected player introduction in output")
	}
	if !strings.Contains(output, "[Goodbye.]") {
		t.Error("expected goodbye on /quit")
	}
}

func TestCLI_NotTalking(t *testing.T) {
	_, output := run(t, "hi\n/quit\n")
	if !strings.Contains(output, "You are not talking to anyone") {
		t.Error("expected a hint to use /talk")
	}
}

func TestCLI_Conversation(t *testing.T) {
	_, output := run(t, "/talk leander\nhi\njob\noffer\nbye\n/quit\n")
	for _, want := range []string{
		"[You are talking to Leander.]",
		"Leander: Greetings! How may I help you?",
		"Leander: I bake pizza.",
		"Leander: I sell flask.",
		"Leander: Bye.",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestCLI_TalkUnknown(t *testing.T) {
	_, output := run(t, "/talk Nobody\n/talk\n/quit\n")
	if !strings.Contains(output, "There is nobody called Nobody here.") {
		t.Error("expected unknown NPC message")
	}
	if !strings.Contains(output, "Usage: /talk <npc>") {
		t.Error("expected usage message")
	}
}

func TestCLI_Again(t *testing.T) {
	_, output := run(t, "g\n/talk Leander\nhi\njob\nagain\n/quit\n")
	if !strings.Contains(output, "Nothing to repeat.") {
		t.Error("expected nothing to repeat before the first utterance")
	}
	if strings.Count(output, "Leander: I bake pizza.") != 2 {
		t.Errorf("expected job reply twice:\n%s", output)
	}
}

func TestCLI_LateDelivery(t *testing.T) {
	c, output := run(t, strings.Join([]string{
		"/talk Leander", "hi", "quest", "yes",
		"/advance 11m",
		"/talk Marcus", "hi", "pizza",
		"/quests",
		"/quit",
	}, "\n")+"\n")

	if !strings.Contains(output, "[11m0s pass.]") {
		t.Errorf("expected advance confirmation:\n%s", output)
	}
	if !strings.Contains(output, "Marcus: Cold. 5 coins.") {
		t.Errorf("expected a late delivery:\n%s", output)
	}
	if !strings.Contains(output, "Pizza Delivery:\n  I met Leander.") {
		t.Errorf("expected the quest journal:\n%s", output)
	}
	if behaviour.CountMoney(c.Player) != 5 {
		t.Errorf("money = %d, want 5", behaviour.CountMoney(c.Player))
	}
}

func TestCLI_AdvanceUsage(t *testing.T) {
	_, output := run(t, "/advance soon\n/advance -5m\n/quit\n")
	if strings.Count(output, "Usage: /advance") != 2 {
		t.Errorf("expected two usage messages:\n%s", output)
	}
}

func TestCLI_SaveAndLoad(t *testing.T) {
	clock := NewClock(func() time.Time { return t0 })
	st := store.NewMemory()
	w := testWorld(t, clock)

	var out bytes.Buffer
	c := New(w, st, clock)
	c.In = strings.NewReader("/level 4\n/save\n/player alice\n/state\n/load hero\n/state\n/quit\n")
	c.Out = &out
	c.Run(context.Background())

	output := out.String()
	for _, want := range []string{
		"[Level set to 4.]",
		"[Saved hero.]",
		"[New player alice.]",
		"[Player: alice (level 1",
		"[Loaded hero.]",
		"[Player: hero (level 4",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
	if c.Player.Name() != "hero" {
		t.Errorf("player = %s, want hero", c.Player.Name())
	}
}

func TestCLI_PlayerFromStore(t *testing.T) {
	clock := NewClock(func() time.Time { return t0 })
	st := store.NewMemory()
	w := testWorld(t, clock)

	first := New(w, st, clock)
	first.Player.SetLevel(7)
	if err := st.Save(context.Background(), first.Player); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	c := New(w, st, clock)
	c.In = strings.NewReader("/player HERO\n/load ghost\n/quit\n")
	c.Out = &out
	c.Run(context.Background())

	if !strings.Contains(out.String(), "[Welcome back, hero.]") {
		t.Errorf("expected stored player:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Load failed") {
		t.Errorf("expected load failure for a missing player:\n%s", out.String())
	}
	if c.Player.Level() != 7 {
		t.Errorf("level = %d, want 7", c.Player.Level())
	}
}

func TestCLI_Inventory(t *testing.T) {
	c, out := newTestCLI(t, "/inv\n/quit\n")
	c.Run(context.Background())
	if !strings.Contains(out.String(), "You carry nothing.") {
		t.Error("expected empty inventory")
	}

	c, out = newTestCLI(t, "/inv\n/quit\n")
	if err := behaviour.Pay(c.World.State, c.Player, 12); err != nil {
		t.Fatal(err)
	}
	c.Run(context.Background())
	if !strings.Contains(out.String(), "money x12") {
		t.Errorf("expected money in inventory:\n%s", out.String())
	}
}

func TestCLI_HelpCommand(t *testing.T) {
	_, output := run(t, "/help\n/quit\n")
	for _, want := range []string{"/talk", "/save", "/load", "/advance", "/quit"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in help output", want)
		}
	}
}

func TestCLI_UnknownMetaCommand(t *testing.T) {
	_, output := run(t, "/bogus\n/quit\n")
	if !strings.Contains(output, "Unknown command") {
		t.Error("expected unknown command message")
	}
}

func TestCLI_TraceToggle(t *testing.T) {
	_, output := run(t, "/trace\n/talk Leander\nhi\n/trace\n/quit\n")
	if !strings.Contains(output, "Trace output enabled") {
		t.Error("expected trace enabled message")
	}
	if !strings.Contains(output, "[[trace] State: attending]") {
		t.Errorf("expected state trace:\n%s", output)
	}
	if !strings.Contains(output, "Trace output disabled") {
		t.Error("expected trace disabled message")
	}
}

func TestCLI_ScriptEcho(t *testing.T) {
	c, out := newTestCLI(t, "# a comment\n/npcs\n/quit\n")
	c.EchoInput = true
	c.Run(context.Background())

	output := out.String()
	if strings.Contains(output, "a comment") {
		t.Error("comment lines should be skipped")
	}
	if !strings.Contains(output, "> /npcs\n[Leander, Marcus]") {
		t.Errorf("expected echoed command and NPC list:\n%s", output)
	}
}

func TestClock_Advance(t *testing.T) {
	c := NewClock(func() time.Time { return t0 })
	c.Advance(90 * time.Second)
	if got := c.Now(); !got.Equal(t0.Add(90 * time.Second)) {
		t.Errorf("Now = %v", got)
	}
	if NewClock(nil).Now().IsZero() {
		t.Error("nil base should fall back to the wall clock")
	}
}
