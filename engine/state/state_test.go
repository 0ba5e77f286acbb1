package state

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/nathoo/parley/types"
)

func testWorld(saver Saver) *World {
	w := NewWorld(zerolog.Nop(), saver)
	w.RegisterItem(types.ItemDef{Name: "money", Stackable: true})
	w.RegisterItem(types.ItemDef{Name: "sword", Description: "A sharp blade."})
	w.RegisterItem(types.ItemDef{Name: "pizza", Description: "A warm pizza."})
	return w
}

func TestNewPlayer_Defaults(t *testing.T) {
	p := NewPlayer("hero", 3)
	if p.ID() == "" {
		t.Error("expected an id")
	}
	if p.Name() != "hero" || p.Level() != 3 {
		t.Errorf("got %q level %d", p.Name(), p.Level())
	}
	if p.HP() != 100 || p.BaseHP() != 100 {
		t.Errorf("HP = %d/%d, want 100/100", p.HP(), p.BaseHP())
	}
	if bag := p.Slot(BagSlot); bag == nil || bag.Capacity != BagCapacity {
		t.Fatalf("bag slot = %+v", bag)
	}
	if p.Slot("missing") != nil {
		t.Error("expected nil for unknown slot")
	}
}

func TestFromRecord_FillsCollections(t *testing.T) {
	p := FromRecord(Record{Name: "old", Slots: []*types.Slot{{Name: BagSlot, Capacity: 2}}})
	if p.ID() == "" {
		t.Error("expected generated id")
	}
	p.SetQuest("q", "start")
	if p.Quest("q") != "start" {
		t.Error("quest map not initialised")
	}
	if p.Slot(BagSlot).Items == nil {
		t.Error("slot items not initialised")
	}
}

func TestQuests(t *testing.T) {
	p := NewPlayer("hero", 1)
	if p.HasQuest("pizza") {
		t.Fatal("new player should have no quests")
	}
	p.SetQuest("pizza", "rejected")
	if !p.HasQuest("pizza") || p.Quest("pizza") != "rejected" {
		t.Errorf("quest = %q", p.Quest("pizza"))
	}
	slots := p.QuestSlots()
	slots["pizza"] = "tampered"
	if p.Quest("pizza") != "rejected" {
		t.Error("QuestSlots must return a copy")
	}
	p.RemoveQuest("pizza")
	if p.HasQuest("pizza") {
		t.Error("quest should be removed")
	}
}

func TestEquip_StacksMerge(t *testing.T) {
	w := testWorld(nil)
	p := NewPlayer("hero", 1)

	a, _ := w.CreateItem("money")
	a.Quantity = 10
	b, _ := w.CreateItem("money")
	b.Quantity = 5
	p.Equip(a)
	p.Equip(b)

	if got := len(FindItems(p, "money")); got != 1 {
		t.Errorf("stacks = %d, want 1", got)
	}
	if got := CountItems(p, "money"); got != 15 {
		t.Errorf("money = %d, want 15", got)
	}
}

func TestEquip_BoundStacksStaySeparate(t *testing.T) {
	w := testWorld(nil)
	p := NewPlayer("hero", 1)

	a, _ := w.CreateItem("money")
	b, _ := w.CreateItem("money")
	b.BoundTo = "hero"
	p.Equip(a)
	p.Equip(b)

	if got := len(FindItems(p, "money")); got != 2 {
		t.Errorf("stacks = %d, want 2", got)
	}
}

func TestEquip_Full(t *testing.T) {
	w := testWorld(nil)
	p := FromRecord(Record{Name: "tiny", Slots: []*types.Slot{{Name: BagSlot, Capacity: 1}}})

	first, _ := w.CreateItem("sword")
	second, _ := w.CreateItem("sword")
	if !p.Equip(first) {
		t.Fatal("first equip should succeed")
	}
	if p.Equip(second) {
		t.Error("second equip should fail, bag is full")
	}
	if CountItems(p, "sword") != 1 {
		t.Errorf("swords = %d, want 1", CountItems(p, "sword"))
	}
}

func TestDrop_ByIdentity(t *testing.T) {
	w := testWorld(nil)
	p := NewPlayer("hero", 1)
	a, _ := w.CreateItem("pizza")
	b, _ := w.CreateItem("pizza")
	b.Info = "Margherita"
	p.Equip(a)
	p.Equip(b)

	if !p.Drop(b) {
		t.Fatal("drop failed")
	}
	left := FindItems(p, "pizza")
	if len(left) != 1 || left[0] != a {
		t.Errorf("remaining = %+v", left)
	}
	if p.Drop(b) {
		t.Error("dropping twice should fail")
	}
}

func TestHasItem(t *testing.T) {
	w := testWorld(nil)
	p := NewPlayer("hero", 1)
	if HasItem(p, "sword") {
		t.Error("should not have sword")
	}
	s, _ := w.CreateItem("sword")
	p.Equip(s)
	if !HasItem(p, "sword") {
		t.Error("should have sword")
	}
}

func TestOutfit_Temporary(t *testing.T) {
	p := NewPlayer("hero", 1)
	p.SetOutfit(types.Outfit{Body: 1, Dress: 2}, false)

	p.SetOutfit(types.Outfit{Body: 1, Dress: 990}, true)
	p.SetOutfit(types.Outfit{Body: 1, Dress: 991}, true)
	if p.Outfit().Dress != 991 {
		t.Errorf("dress = %d, want 991", p.Outfit().Dress)
	}
	p.ReturnToOriginalOutfit()
	if p.Outfit().Dress != 2 {
		t.Errorf("dress = %d, want original 2", p.Outfit().Dress)
	}
	// No-op without a temporary outfit.
	p.ReturnToOriginalOutfit()
	if p.Outfit().Dress != 2 {
		t.Errorf("dress = %d, want 2", p.Outfit().Dress)
	}
}

func TestHealth(t *testing.T) {
	p := NewPlayer("hero", 1)
	p.SetHP(-5)
	if p.HP() != 0 {
		t.Errorf("HP = %d, want 0", p.HP())
	}
	p.SetHP(500)
	if p.HP() != 100 {
		t.Errorf("HP = %d, want clamped 100", p.HP())
	}
	p.SetHP(30)
	p.Heal()
	if p.HP() != 100 {
		t.Errorf("HP = %d after heal", p.HP())
	}
	p.AddXP(50)
	p.AddXP(25)
	if p.XP() != 75 {
		t.Errorf("XP = %d, want 75", p.XP())
	}
}

func TestCreateItem(t *testing.T) {
	w := testWorld(nil)
	a, err := w.CreateItem("sword")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	b, _ := w.CreateItem("sword")
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("ids must be unique and non-empty: %q %q", a.ID, b.ID)
	}
	if a.Quantity != 1 || a.Description != "A sharp blade." {
		t.Errorf("item = %+v", a)
	}

	_, err = w.CreateItem("dragon")
	if !errors.Is(err, ErrUnknownItem) {
		t.Errorf("err = %v, want ErrUnknownItem", err)
	}
}

func TestItemNames_Sorted(t *testing.T) {
	w := testWorld(nil)
	got := w.ItemNames()
	want := []string{"money", "pizza", "sword"}
	if len(got) != len(want) {
		t.Fatalf("names = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

type recordingSaver struct {
	saved []string
	err   error
}

func (r *recordingSaver) Save(_ context.Context, p *Player) error {
	r.saved = append(r.saved, p.Name())
	return r.err
}

func TestModify_Persists(t *testing.T) {
	saver := &recordingSaver{}
	w := testWorld(saver)
	p := NewPlayer("hero", 1)

	w.Modify(p)
	w.Modify(p)

	if w.Modifications(p.ID()) != 2 {
		t.Errorf("modifications = %d, want 2", w.Modifications(p.ID()))
	}
	if len(saver.saved) != 2 {
		t.Errorf("saves = %d, want 2", len(saver.saved))
	}
}

func TestModify_SaveErrorIsLogged(t *testing.T) {
	saver := &recordingSaver{err: errors.New("disk full")}
	w := testWorld(saver)
	p := NewPlayer("hero", 1)

	w.Modify(p)
	if w.Modifications(p.ID()) != 1 {
		t.Error("modification should still be counted")
	}
}
