package session

import (
	"testing"
	"time"

	"github.com/nathoo/parley/types"
)

func TestNew_Idle(t *testing.T) {
	s := New()
	if s.State != types.StateIdle || s.Attending() {
		t.Errorf("new session = %+v", s)
	}
}

func TestAttendingOther(t *testing.T) {
	s := New()
	s.Attend("a", "Alice")
	s.State = types.StateAttending

	if !s.AttendingOther("b") {
		t.Error("expected to be attending someone other than b")
	}
	if s.AttendingOther("a") {
		t.Error("a is the attended player")
	}
}

func TestOffers_TypedAndScoped(t *testing.T) {
	s := New()
	s.Attend("a", "Alice")
	s.SetOffer(Seller, Offer{Item: "sword", Amount: 2, UnitPrice: 100})

	if s.Offer(Buyer) != nil {
		t.Error("buyer offer should be empty")
	}
	o := s.Offer(Seller)
	if o == nil || o.Total() != 200 {
		t.Fatalf("seller offer = %+v", o)
	}

	// Switching player forgets the previous negotiation.
	s.Attend("b", "Bob")
	if s.Offer(Seller) != nil {
		t.Error("offer leaked across players")
	}

	s.SetOffer(Healer, Offer{Item: "heal", Amount: 1, UnitPrice: 5})
	s.ClearOffer(Healer)
	if s.Offer(Healer) != nil {
		t.Error("ClearOffer did not clear")
	}
}

func TestReset(t *testing.T) {
	s := New()
	s.Attend("a", "Alice")
	s.State = types.StateSellPriceOffered
	s.SetOffer(Seller, Offer{Item: "sword", Amount: 1, UnitPrice: 100})

	s.Reset()
	if s.State != types.StateIdle || s.PlayerID != "" || s.Offer(Seller) != nil {
		t.Errorf("after reset = %+v", s.Snapshot())
	}
}

func TestExpired(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := New()
	if s.Expired(now, time.Minute) {
		t.Error("never-touched session should not expire")
	}
	s.Touch(now)
	tests := []struct {
		after   time.Duration
		timeout time.Duration
		want    bool
	}{
		{30 * time.Second, time.Minute, false},
		{61 * time.Second, time.Minute, true},
		{time.Hour, 0, false},
	}
	for _, tt := range tests {
		if got := s.Expired(now.Add(tt.after), tt.timeout); got != tt.want {
			t.Errorf("Expired(+%v, %v) = %v, want %v", tt.after, tt.timeout, got, tt.want)
		}
	}
}

func TestSnapshot_IsCopy(t *testing.T) {
	s := New()
	s.SetOffer(Buyer, Offer{Item: "flour", Amount: 3, UnitPrice: 2})
	snap := s.Snapshot()
	s.Offer(Buyer).Amount = 10
	if snap.Offers[Buyer].Amount != 3 {
		t.Errorf("snapshot changed: %+v", snap.Offers[Buyer])
	}
}

func TestRestore(t *testing.T) {
	s := New()
	s.Attend("a", "Alice")
	s.State = types.StateAttending
	snap := s.Snapshot()

	s.Attend("b", "Bob")
	s.State = types.StateSellPriceOffered
	s.SetOffer(Seller, Offer{Item: "sword", Amount: 1, UnitPrice: 100})

	s.Restore(snap)
	if s.PlayerID != "a" || s.State != types.StateAttending || s.Offer(Seller) != nil {
		t.Errorf("restored = %+v", s.Snapshot())
	}
}
