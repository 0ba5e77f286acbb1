package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/nathoo/parley/types"
)

func TestDispatch_MatchesEventType(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.On("item_bought", func(_ context.Context, e types.Event) { got = append(got, "first:"+e.Type) })
	bus.On("healed", func(_ context.Context, e types.Event) { got = append(got, "healer:"+e.Type) })
	bus.On("item_bought", func(_ context.Context, e types.Event) { got = append(got, "second:"+e.Type) })

	n := bus.Dispatch(context.Background(), []types.Event{{Type: "item_bought"}})
	if n != 2 {
		t.Fatalf("expected 2 invocations, got %d", n)
	}
	if len(got) != 2 || got[0] != "first:item_bought" || got[1] != "second:item_bought" {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestDispatch_NoHandlers(t *testing.T) {
	bus := NewBus()
	if n := bus.Dispatch(context.Background(), []types.Event{{Type: "quest_completed"}}); n != 0 {
		t.Errorf("expected 0 invocations, got %d", n)
	}
}

func TestDispatch_All(t *testing.T) {
	bus := NewBus()
	var seen []string
	bus.On(All, func(_ context.Context, e types.Event) { seen = append(seen, e.Type) })

	bus.Dispatch(context.Background(), []types.Event{{Type: "a"}, {Type: "b"}})
	if len(seen) != 2 || seen[0] != "a" || seen[1] != "b" {
		t.Errorf("seen = %v", seen)
	}
}

func TestDispatch_SinglePass(t *testing.T) {
	bus := NewBus()
	count := 0
	bus.On("quest_started", func(ctx context.Context, e types.Event) {
		count++
		// Handlers have no way to feed events back into the running dispatch.
	})
	events := []types.Event{{Type: "quest_started"}}
	bus.Dispatch(context.Background(), events)
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

type recordingPublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (r *recordingPublisher) Publish(_ context.Context, subject string, data []byte) error {
	r.subjects = append(r.subjects, subject)
	r.payloads = append(r.payloads, data)
	return r.err
}

func (r *recordingPublisher) Close() {}

func TestPublish(t *testing.T) {
	pub := &recordingPublisher{}
	bus := NewBus()
	bus.On(All, Publish(pub, zerolog.Nop()))

	bus.Dispatch(context.Background(), []types.Event{
		{Type: "item_sold", Data: map[string]any{"item": "sword", "amount": 1}},
	})
	if len(pub.subjects) != 1 || pub.subjects[0] != "parley.item_sold" {
		t.Fatalf("subjects = %v", pub.subjects)
	}
	var msg struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(pub.payloads[0], &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != "item_sold" || msg.Data["item"] != "sword" {
		t.Errorf("payload = %+v", msg)
	}
}

func TestPublish_ErrorIsSwallowed(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("down")}
	h := Publish(pub, zerolog.Nop())
	h(context.Background(), types.Event{Type: "healed"})
	if len(pub.subjects) != 1 {
		t.Error("publish should have been attempted")
	}
}

func TestNoopPublisher(t *testing.T) {
	p := NewNoopPublisher()
	if err := p.Publish(context.Background(), "x", nil); err != nil {
		t.Error(err)
	}
	p.Close()
}
