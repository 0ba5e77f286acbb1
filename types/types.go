// Package types defines the shared data structures for the Parley engine.
// This package contains only type definitions and constants; no logic.
package types

// ConversationState is the state of one NPC conversation.
type ConversationState int

// Built-in conversation states. Quest and behaviour authors allocate their
// own auxiliary states starting at StateUser.
const (
	// StateAny matches rules regardless of the current state. It is only
	// valid as the source state of a rule.
	StateAny ConversationState = -1

	StateIdle         ConversationState = 0
	StateAttending    ConversationState = 1
	StateQuestOffered ConversationState = 2

	// Confirmation states used by the trade and healing behaviours.
	StateSellPriceOffered ConversationState = 20 // NPC sells, player confirms
	StateBuyPriceOffered  ConversationState = 30 // NPC buys, player confirms
	StateHealOffered      ConversationState = 40

	StateUser ConversationState = 100
)

// Sentence is the tokenized form of a player utterance.
type Sentence struct {
	Raw        string
	Normalized string   // lowercase, trimmed, single-spaced
	Words      []string // Normalized split on spaces
	Verb       string   // first word
	Amount     int      // quantity following the verb, 1 when absent
	Object     string   // remaining words without articles
}

// Item is one item instance carried by a player.
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Stackable   bool   `json:"stackable,omitempty"`
	Quantity    int    `json:"quantity"`
	Info        string `json:"info,omitempty"` // free-form tag, e.g. a flavour
	Description string `json:"description,omitempty"`
	BoundTo     string `json:"bound_to,omitempty"`
}

// ItemDef is the prototype an item instance is created from.
type ItemDef struct {
	Name        string
	Stackable   bool
	Description string
}

// Slot is one inventory container on a player.
type Slot struct {
	Name     string  `json:"name"`
	Capacity int     `json:"capacity"`
	Items    []*Item `json:"items"`
}

// Outfit is the visible clothing of a player. Zero means "no layer".
type Outfit struct {
	Body  int `json:"body"`
	Dress int `json:"dress"`
	Head  int `json:"head"`
	Hair  int `json:"hair"`
}

// Event is emitted by actions after a successful turn.
type Event struct {
	Type string
	Data map[string]any
}

// Result is the output of one handled utterance.
type Result struct {
	Output  []string
	Events  []Event
	State   ConversationState // session state after the turn
	Matched bool              // a rule fired
}
