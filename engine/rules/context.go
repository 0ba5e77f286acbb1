package rules

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nathoo/parley/engine/rng"
	"github.com/nathoo/parley/engine/session"
	"github.com/nathoo/parley/engine/world"
	"github.com/nathoo/parley/types"
)

// Context is everything a condition or action may read or change during one
// turn. Speech, events and state overrides are buffered so that the caller
// can discard them when an action fails.
type Context struct {
	NPC      string
	Player   world.Player
	World    world.World
	Sentence types.Sentence
	Session  *session.Session
	RNG      *rng.RNG
	Now      time.Time
	Logger   zerolog.Logger

	output    []string
	events    []types.Event
	nextState types.ConversationState
	stateSet  bool
	withheld  bool
}

// Say queues a line of NPC speech.
func (c *Context) Say(text string) {
	c.output = append(c.output, text)
}

// Sayf queues a formatted line of NPC speech.
func (c *Context) Sayf(format string, args ...any) {
	c.Say(fmt.Sprintf(format, args...))
}

// SetState overrides the target state of the rule being executed.
func (c *Context) SetState(s types.ConversationState) {
	c.nextState = s
	c.stateSet = true
}

// WithholdReply stops the rule's fixed reply from being spoken, e.g. when
// the action turns the request down.
func (c *Context) WithholdReply() {
	c.withheld = true
}

// ReplyWithheld reports whether WithholdReply was called.
func (c *Context) ReplyWithheld() bool { return c.withheld }

// Emit queues an event for dispatch after the turn completes.
func (c *Context) Emit(eventType string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["npc"]; !ok {
		data["npc"] = c.NPC
	}
	if c.Player != nil {
		if _, ok := data["player"]; !ok {
			data["player"] = c.Player.Name()
		}
	}
	c.events = append(c.events, types.Event{Type: eventType, Data: data})
}

// Output returns the queued speech.
func (c *Context) Output() []string { return c.output }

// Events returns the queued events.
func (c *Context) Events() []types.Event { return c.events }

// NextState returns the state override set by an action, if any.
func (c *Context) NextState() (types.ConversationState, bool) {
	return c.nextState, c.stateSet
}

// Discard drops everything queued so far.
func (c *Context) Discard() {
	c.output = nil
	c.events = nil
	c.stateSet = false
}
