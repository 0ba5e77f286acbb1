// Package session holds the per-NPC conversation state: the current
// conversational state, the attended player, and behaviour data scoped to the
// current negotiation.
package session

import (
	"time"

	"github.com/nathoo/parley/types"
)

// Kind names a behaviour that keeps negotiation data in the session.
type Kind int

const (
	Seller Kind = iota
	Buyer
	Healer
)

func (k Kind) String() string {
	switch k {
	case Seller:
		return "seller"
	case Buyer:
		return "buyer"
	case Healer:
		return "healer"
	}
	return "unknown"
}

// Offer is a pending trade quoted to the attended player.
type Offer struct {
	Item      string
	Amount    int
	UnitPrice int
}

// Total is the price of the whole offer.
func (o Offer) Total() int { return o.Amount * o.UnitPrice }

// Session is owned by one NPC and mutated only while that NPC handles an
// utterance.
type Session struct {
	State      types.ConversationState
	PlayerID   string
	PlayerName string
	LastActive time.Time

	offers map[Kind]*Offer
}

// New returns an idle session.
func New() *Session {
	return &Session{State: types.StateIdle}
}

// Attending reports whether the session is engaged with a player.
func (s *Session) Attending() bool {
	return s.State != types.StateIdle && s.PlayerID != ""
}

// AttendingOther reports whether the session is engaged with a player other
// than the given one.
func (s *Session) AttendingOther(playerID string) bool {
	return s.Attending() && s.PlayerID != playerID
}

// Attend binds the session to a player.
func (s *Session) Attend(playerID, playerName string) {
	if s.PlayerID != playerID {
		s.offers = nil
	}
	s.PlayerID = playerID
	s.PlayerName = playerName
}

// Touch records activity at now.
func (s *Session) Touch(now time.Time) { s.LastActive = now }

// Expired reports whether the session has been idle longer than timeout.
// A non-positive timeout never expires.
func (s *Session) Expired(now time.Time, timeout time.Duration) bool {
	if timeout <= 0 || s.LastActive.IsZero() {
		return false
	}
	return now.Sub(s.LastActive) > timeout
}

// Offer returns the pending offer of a behaviour, or nil.
func (s *Session) Offer(k Kind) *Offer {
	return s.offers[k]
}

// SetOffer records a pending offer for a behaviour.
func (s *Session) SetOffer(k Kind, o Offer) {
	if s.offers == nil {
		s.offers = make(map[Kind]*Offer)
	}
	s.offers[k] = &o
}

// ClearOffer drops the pending offer of a behaviour.
func (s *Session) ClearOffer(k Kind) {
	delete(s.offers, k)
}

// Reset returns the session to idle and forgets the player and all
// behaviour data.
func (s *Session) Reset() {
	s.State = types.StateIdle
	s.PlayerID = ""
	s.PlayerName = ""
	s.offers = nil
}

// Snapshot is a copy of the session for inspection by callers.
type Snapshot struct {
	State      types.ConversationState
	PlayerID   string
	PlayerName string
	Offers     map[Kind]Offer
}

// Snapshot copies the session.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{State: s.State, PlayerID: s.PlayerID, PlayerName: s.PlayerName}
	if len(s.offers) > 0 {
		snap.Offers = make(map[Kind]Offer, len(s.offers))
		for k, o := range s.offers {
			snap.Offers[k] = *o
		}
	}
	return snap
}

// Restore puts the session back to a snapshot taken earlier. LastActive is
// not part of the snapshot and is left unchanged.
func (s *Session) Restore(snap Snapshot) {
	s.State = snap.State
	s.PlayerID = snap.PlayerID
	s.PlayerName = snap.PlayerName
	s.offers = nil
	for k, o := range snap.Offers {
		s.SetOffer(k, o)
	}
}
