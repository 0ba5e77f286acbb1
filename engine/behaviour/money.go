// Package behaviour provides reusable NPC rule bundles: selling, buying and
// healing, plus the money accounting they share.
package behaviour

import (
	"fmt"

	"github.com/nathoo/parley/engine/state"
	"github.com/nathoo/parley/engine/world"
	"github.com/nathoo/parley/types"
)

// Money is the item name of the currency.
const Money = "money"

// CountMoney returns the player's total currency across all containers.
func CountMoney(p world.Player) int {
	return state.CountItems(p, Money)
}

type removal struct {
	item *types.Item
	qty  int
}

// planTake decides which instances to remove for amount units of name
// without touching the inventory. Whole instances are consumed in container
// order and the last one is split when it is a stack.
func planTake(p world.Player, name string, amount int) ([]removal, bool) {
	if amount <= 0 {
		return nil, true
	}
	var plan []removal
	left := amount
	for _, it := range state.FindItems(p, name) {
		q := state.Quantity(it)
		if q <= left {
			plan = append(plan, removal{it, q})
			left -= q
		} else {
			plan = append(plan, removal{it, left})
			left = 0
		}
		if left == 0 {
			return plan, true
		}
	}
	return nil, false
}

func applyTake(p world.Player, plan []removal) {
	for _, r := range plan {
		if r.qty >= state.Quantity(r.item) {
			p.Drop(r.item)
			continue
		}
		r.item.Quantity -= r.qty
	}
}

// Take removes amount units of the named item. Nothing is removed unless the
// player carries the whole amount.
func Take(p world.Player, name string, amount int) bool {
	plan, ok := planTake(p, name, amount)
	if !ok {
		return false
	}
	applyTake(p, plan)
	return true
}

// Charge removes amount currency. It reports false, changing nothing, when
// the player cannot afford it.
func Charge(p world.Player, amount int) bool {
	return Take(p, Money, amount)
}

// Pay gives the player amount currency, adding it to the first unbound money
// stack or creating a new one.
func Pay(w world.World, p world.Player, amount int) error {
	po, err := PreparePay(w, p, amount, canReceive(p))
	if err != nil {
		return err
	}
	return po.Commit(p)
}

// Payout is currency made ready for a player. Preparing it does not touch
// the inventory, so a trade can fail cleanly before any goods move.
type Payout struct {
	amount int
	stack  *types.Item
	coins  *types.Item
}

// PreparePay readies amount currency for p. room tells whether a new stack
// will have a place at commit time; it only matters when p carries no
// unbound money stack. The error wraps state.ErrNoRoom when it does not.
func PreparePay(w world.World, p world.Player, amount int, room bool) (*Payout, error) {
	po := &Payout{amount: amount}
	if amount <= 0 {
		return po, nil
	}
	if po.stack = moneyStack(p); po.stack != nil {
		return po, nil
	}
	if !room {
		return nil, fmt.Errorf("pay %d: %w", amount, state.ErrNoRoom)
	}
	coins, err := w.CreateItem(Money)
	if err != nil {
		return nil, fmt.Errorf("pay %d: %w", amount, err)
	}
	coins.Quantity = amount
	po.coins = coins
	return po, nil
}

// Commit hands the prepared currency to p.
func (po *Payout) Commit(p world.Player) error {
	switch {
	case po.stack != nil:
		po.stack.Quantity += po.amount
	case po.coins != nil:
		if !p.Equip(po.coins) {
			return fmt.Errorf("pay %d: %w", po.amount, state.ErrNoRoom)
		}
	}
	return nil
}

func moneyStack(p world.Player) *types.Item {
	for _, it := range state.FindItems(p, Money) {
		if it.BoundTo == "" {
			return it
		}
	}
	return nil
}

// canReceive reports whether an item that does not merge into an existing
// stack would fit somewhere.
func canReceive(p world.Player) bool {
	for _, s := range p.Slots() {
		if len(s.Items) < s.Capacity {
			return true
		}
	}
	return false
}
