// Package dialogue implements the per-NPC conversation engine: one rule
// table, one session, and the turn loop that ties them together.
package dialogue

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nathoo/parley/engine/parser"
	"github.com/nathoo/parley/engine/rng"
	"github.com/nathoo/parley/engine/rules"
	"github.com/nathoo/parley/engine/session"
	"github.com/nathoo/parley/engine/world"
	"github.com/nathoo/parley/types"
)

// Fixed replies.
const (
	DefaultNotUnderstood = "Sorry, I did not understand you."
	Apology              = "Sorry, I cannot do that right now."
	waitFormat           = "Please wait! I am attending %s."
)

// Deps are the collaborators an NPC needs.
type Deps struct {
	World  world.World
	Logger zerolog.Logger
	RNG    *rng.RNG
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
	// IdleTimeout ends a conversation that has been silent for longer. Zero
	// disables expiry. Expiry is checked on the next utterance only.
	IdleTimeout time.Duration
}

// NPC is a speaker with its own rule table and conversation session.
// Handle serializes utterances, so one NPC talks to one player at a time.
type NPC struct {
	name          string
	deps          Deps
	logger        zerolog.Logger
	table         *rules.TriggerTable
	notUnderstood string

	mu      sync.Mutex
	session *session.Session
}

// New creates an NPC with an empty rule table.
func New(name string, deps Deps) *NPC {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.RNG == nil {
		deps.RNG = rng.New(deps.Now().UnixNano())
	}
	return &NPC{
		name:          name,
		deps:          deps,
		logger:        deps.Logger.With().Str("npc", name).Logger(),
		table:         rules.NewTriggerTable(),
		notUnderstood: DefaultNotUnderstood,
		session:       session.New(),
	}
}

// Name returns the NPC's name.
func (n *NPC) Name() string { return n.name }

// Table returns the NPC's rule table.
func (n *NPC) Table() *rules.TriggerTable { return n.table }

// World returns the world the NPC acts upon.
func (n *NPC) World() world.World { return n.deps.World }

// Logger returns the NPC's logger.
func (n *NPC) Logger() zerolog.Logger { return n.logger }

// SetNotUnderstood replaces the reply given to unmatched utterances.
func (n *NPC) SetNotUnderstood(text string) { n.notUnderstood = text }

// Add registers a rule with a single reply. An empty reply says nothing.
func (n *NPC) Add(from types.ConversationState, triggers []string, cond rules.Condition,
	to types.ConversationState, reply string, action rules.Action) error {
	var replies []string
	if reply != "" {
		replies = []string{reply}
	}
	return n.AddAlternatives(from, triggers, cond, to, replies, action)
}

// AddAlternatives registers a rule whose reply is picked at random from
// replies each time it fires.
func (n *NPC) AddAlternatives(from types.ConversationState, triggers []string, cond rules.Condition,
	to types.ConversationState, replies []string, action rules.Action) error {
	if err := n.table.Register(from, triggers, cond, to, replies, action); err != nil {
		n.logger.Warn().Err(err).Strs("triggers", triggers).Msg("rule rejected")
		return fmt.Errorf("%s: %w", n.name, err)
	}
	return nil
}

// Freeze makes the rule table read-only.
func (n *NPC) Freeze() { n.table.Freeze() }

// Handle processes one utterance from a player and returns the NPC's reply.
// It never fails: unmatched input and failing actions produce fixed replies.
func (n *NPC) Handle(player world.Player, text string) types.Result {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.deps.Now()
	s := n.session

	if s.Attending() && s.Expired(now, n.deps.IdleTimeout) {
		n.logger.Debug().Str("player", s.PlayerName).Msg("conversation timed out")
		s.Reset()
	}

	if s.AttendingOther(player.ID()) {
		n.logger.Debug().Str("player", player.Name()).Str("attending", s.PlayerName).Msg("busy")
		return types.Result{
			Output: []string{fmt.Sprintf(waitFormat, s.PlayerName)},
			State:  s.State,
		}
	}

	ctx := &rules.Context{
		NPC:      n.name,
		Player:   player,
		World:    n.deps.World,
		Sentence: parser.Parse(text),
		Session:  s,
		RNG:      n.deps.RNG,
		Now:      now,
		Logger:   n.logger,
	}

	rule, triggered := n.table.Resolve(s.State, ctx.Sentence, ctx)
	if rule == nil {
		n.logger.Debug().Str("player", player.Name()).Str("input", ctx.Sentence.Normalized).
			Bool("triggered", triggered).Msg("not understood")
		if s.Attending() {
			s.Touch(now)
		}
		return types.Result{Output: []string{n.notUnderstood}, State: s.State}
	}

	before := s.Snapshot()
	s.Attend(player.ID(), player.Name())

	if rule.Action != nil {
		if err := rule.Action.Fire(ctx); err != nil {
			n.logger.Error().Err(err).Str("player", player.Name()).Str("trigger", rule.Trigger).Msg("action failed")
			ctx.Discard()
			s.Restore(before)
			return types.Result{Output: []string{Apology}, State: s.State}
		}
	}

	next := rule.To
	if st, ok := ctx.NextState(); ok {
		next = st
	}

	var output []string
	if len(rule.Replies) > 0 && !ctx.ReplyWithheld() {
		output = append(output, rule.Replies[n.deps.RNG.Pick(len(rule.Replies))])
	}
	output = append(output, ctx.Output()...)

	if next == types.StateIdle {
		s.Reset()
	} else {
		s.State = next
		s.Touch(now)
	}

	return types.Result{
		Output:  output,
		Events:  ctx.Events(),
		State:   s.State,
		Matched: true,
	}
}

// EndConversation returns the NPC to idle, dropping any negotiation.
func (n *NPC) EndConversation() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.session.Reset()
}

// State returns the current conversation state.
func (n *NPC) State() types.ConversationState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.session.State
}

// Attending returns the name of the attended player, if any.
func (n *NPC) Attending() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.session.Attending() {
		return "", false
	}
	return n.session.PlayerName, true
}

// Session returns a copy of the conversation session.
func (n *NPC) Session() session.Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.session.Snapshot()
}
