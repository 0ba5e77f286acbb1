package dialogue

import (
	"github.com/nathoo/parley/engine/rules"
	"github.com/nathoo/parley/types"
)

// Standard trigger vocabularies.
var (
	GreetingTriggers = []string{"hi", "hello", "greetings", "hola"}
	GoodbyeTriggers  = []string{"bye", "farewell", "cya", "adios"}
	JobTriggers      = []string{"job", "work", "occupation"}
	HelpTriggers     = []string{"help", "ado"}
	QuestTriggers    = []string{"quest", "task", "favor", "favour"}
	OfferTriggers    = []string{"offer"}
)

// Default texts for the standard helpers.
const (
	DefaultGreeting = "Greetings! How may I help you?"
	DefaultGoodbye  = "Bye."
)

// AddGreeting makes the NPC start attending whoever greets it while idle.
func (n *NPC) AddGreeting(text string, action rules.Action) error {
	if text == "" {
		text = DefaultGreeting
	}
	return n.Add(types.StateIdle, GreetingTriggers, nil, types.StateAttending, text, action)
}

// AddGoodbye ends the conversation from any state.
func (n *NPC) AddGoodbye(text string) error {
	if text == "" {
		text = DefaultGoodbye
	}
	return n.Add(types.StateAny, GoodbyeTriggers, nil, types.StateIdle, text, nil)
}

// AddReply answers one or more triggers while attending.
func (n *NPC) AddReply(triggers []string, text string) error {
	return n.Add(types.StateAttending, triggers, nil, types.StateAttending, text, nil)
}

// AddJob answers questions about the NPC's occupation.
func (n *NPC) AddJob(text string) error {
	return n.AddReply(JobTriggers, text)
}

// AddHelp answers requests for help.
func (n *NPC) AddHelp(text string) error {
	return n.AddReply(HelpTriggers, text)
}

// AddQuest answers quest requests with a fixed text. Quest builders register
// conditional rules for the same triggers instead.
func (n *NPC) AddQuest(text string) error {
	return n.AddReply(QuestTriggers, text)
}

// AddOffer answers "offer" with a fixed text.
func (n *NPC) AddOffer(text string) error {
	return n.AddReply(OfferTriggers, text)
}
