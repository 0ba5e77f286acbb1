package behaviour

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/nathoo/parley/engine/dialogue"
	"github.com/nathoo/parley/engine/parser"
	"github.com/nathoo/parley/engine/rules"
	"github.com/nathoo/parley/engine/session"
	"github.com/nathoo/parley/engine/state"
	"github.com/nathoo/parley/types"
)

const cancelled = "Ok, how may I help you?"

// PriceList maps item names to unit prices.
type PriceList struct {
	prices map[string]int
}

// NewPriceList copies prices, normalizing item names to lower case.
func NewPriceList(prices map[string]int) PriceList {
	pl := PriceList{prices: make(map[string]int, len(prices))}
	for name, price := range prices {
		pl.prices[strings.ToLower(name)] = price
	}
	return pl
}

// Items returns the priced item names in sorted order.
func (pl PriceList) Items() []string {
	items := make([]string, 0, len(pl.prices))
	for name := range pl.prices {
		items = append(items, name)
	}
	sort.Strings(items)
	return items
}

// Price returns the unit price of an item.
func (pl PriceList) Price(item string) (int, bool) {
	p, ok := pl.prices[item]
	return p, ok
}

// Lookup matches what the player said against the list, accepting plurals.
func (pl PriceList) Lookup(object string) (string, int, bool) {
	if object == "" {
		return "", 0, false
	}
	if p, ok := pl.prices[object]; ok {
		return object, p, true
	}
	single := parser.Singular(object)
	if p, ok := pl.prices[single]; ok {
		return single, p, true
	}
	return "", 0, false
}

func (pl PriceList) offerText(verb string) string {
	return fmt.Sprintf("I %s %s.", verb, strings.Join(pl.Items(), ", "))
}

// Seller sells items to players.
type Seller struct {
	PriceList
}

// NewSeller creates a seller with the given prices.
func NewSeller(prices map[string]int) *Seller {
	return &Seller{PriceList: NewPriceList(prices)}
}

// OfferText lists what the seller sells.
func (s *Seller) OfferText() string { return s.offerText("sell") }

// AddSeller registers the buy / confirm / cancel stages on an NPC. With
// offer set, "offer" lists the wares.
func AddSeller(npc *dialogue.NPC, s *Seller, offer bool) error {
	if offer {
		if err := npc.AddOffer(s.OfferText()); err != nil {
			return err
		}
	}
	if err := npc.Add(types.StateAttending, []string{"buy"}, nil, types.StateSellPriceOffered, "",
		rules.ActionFunc(s.quote)); err != nil {
		return err
	}
	if err := npc.Add(types.StateSellPriceOffered, []string{"yes"}, nil, types.StateAttending, "",
		rules.ActionFunc(s.confirm)); err != nil {
		return err
	}
	return npc.Add(types.StateSellPriceOffered, []string{"no"}, nil, types.StateAttending, cancelled,
		clearOffer(session.Seller))
}

func (s *Seller) quote(ctx *rules.Context) error {
	ctx.Session.ClearOffer(session.Seller)
	name, price, ok := s.Lookup(ctx.Sentence.Object)
	if !ok {
		refuse(ctx, "Sorry, I don't sell %s.", orThat(ctx.Sentence.Object))
		return nil
	}
	def, ok := ctx.World.ItemDef(name)
	if !ok {
		return fmt.Errorf("seller prices unknown item %q: %w", name, state.ErrUnknownItem)
	}
	amount := ctx.Sentence.Amount
	if !def.Stackable {
		amount = 1
	}
	if tooMany(amount, price) {
		refuse(ctx, "Sorry, I cannot sell you that many %s.", parser.PluralNoun(2, name))
		return nil
	}
	o := session.Offer{Item: name, Amount: amount, UnitPrice: price}
	ctx.Session.SetOffer(session.Seller, o)
	ctx.Sayf("%s %s %d. Do you want to buy %s?", parser.Plural(amount, name), verbCost(amount), o.Total(), itThem(amount))
	return nil
}

func (s *Seller) confirm(ctx *rules.Context) error {
	o := ctx.Session.Offer(session.Seller)
	if o == nil {
		ctx.Say(cancelled)
		return nil
	}
	ctx.Session.ClearOffer(session.Seller)

	if CountMoney(ctx.Player) < o.Total() {
		refuse(ctx, "Sorry, you don't have enough money!")
		return nil
	}

	item, err := ctx.World.CreateItem(o.Item)
	if err != nil {
		return fmt.Errorf("sell %s: %w", o.Item, err)
	}
	if item.Stackable {
		item.Quantity = o.Amount
	}
	if !ctx.Player.Equip(item) {
		refuse(ctx, "Sorry, but you cannot carry the %s.", o.Item)
		return nil
	}
	// Funds were checked above, so the charge cannot fail.
	Charge(ctx.Player, o.Total())
	ctx.World.Modify(ctx.Player)

	if o.Amount == 1 {
		ctx.Sayf("Congratulations! Here is your %s!", o.Item)
	} else {
		ctx.Sayf("Congratulations! Here are your %s!", parser.Plural(o.Amount, o.Item))
	}
	ctx.Emit("item_bought", map[string]any{"item": o.Item, "amount": o.Amount, "price": o.Total()})
	return nil
}

// Buyer buys items from players.
type Buyer struct {
	PriceList
}

// NewBuyer creates a buyer with the given prices.
func NewBuyer(prices map[string]int) *Buyer {
	return &Buyer{PriceList: NewPriceList(prices)}
}

// OfferText lists what the buyer buys.
func (b *Buyer) OfferText() string { return b.offerText("buy") }

// AddBuyer registers the sell / confirm / cancel stages on an NPC.
func AddBuyer(npc *dialogue.NPC, b *Buyer, offer bool) error {
	if offer {
		if err := npc.AddOffer(b.OfferText()); err != nil {
			return err
		}
	}
	if err := npc.Add(types.StateAttending, []string{"sell"}, nil, types.StateBuyPriceOffered, "",
		rules.ActionFunc(b.quote)); err != nil {
		return err
	}
	if err := npc.Add(types.StateBuyPriceOffered, []string{"yes"}, nil, types.StateAttending, "",
		rules.ActionFunc(b.confirm)); err != nil {
		return err
	}
	return npc.Add(types.StateBuyPriceOffered, []string{"no"}, nil, types.StateAttending, cancelled,
		clearOffer(session.Buyer))
}

func (b *Buyer) quote(ctx *rules.Context) error {
	ctx.Session.ClearOffer(session.Buyer)
	name, price, ok := b.Lookup(ctx.Sentence.Object)
	if !ok {
		refuse(ctx, "Sorry, I don't buy %s.", orThat(ctx.Sentence.Object))
		return nil
	}
	if tooMany(ctx.Sentence.Amount, price) {
		refuse(ctx, "Sorry, I cannot buy that many %s.", parser.PluralNoun(2, name))
		return nil
	}
	o := session.Offer{Item: name, Amount: ctx.Sentence.Amount, UnitPrice: price}
	ctx.Session.SetOffer(session.Buyer, o)
	ctx.Sayf("%s %s worth %d. Do you want to sell %s?", parser.Plural(o.Amount, name), isAre(o.Amount), o.Total(), itThem(o.Amount))
	return nil
}

func (b *Buyer) confirm(ctx *rules.Context) error {
	o := ctx.Session.Offer(session.Buyer)
	if o == nil {
		ctx.Say(cancelled)
		return nil
	}
	ctx.Session.ClearOffer(session.Buyer)

	plan, ok := planTake(ctx.Player, o.Item, o.Amount)
	if !ok {
		refuse(ctx, "Sorry! You don't have enough %s.", o.Item)
		return nil
	}
	// The money is created before the goods are taken so that a failure
	// leaves the player untouched.
	po, err := PreparePay(ctx.World, ctx.Player, o.Total(), canReceive(ctx.Player) || freesInstance(plan))
	switch {
	case errors.Is(err, state.ErrNoRoom):
		refuse(ctx, "Sorry, you have no room for the money.")
		return nil
	case err != nil:
		return fmt.Errorf("buy %s: %w", o.Item, err)
	}

	applyTake(ctx.Player, plan)
	if err := po.Commit(ctx.Player); err != nil {
		return fmt.Errorf("buy %s: %w", o.Item, err)
	}
	ctx.World.Modify(ctx.Player)
	ctx.Say("Thanks! Here is your money.")
	ctx.Emit("item_sold", map[string]any{"item": o.Item, "amount": o.Amount, "price": o.Total()})
	return nil
}

// tooMany reports whether amount units at price would overflow the total.
func tooMany(amount, price int) bool {
	return price > 0 && amount > math.MaxInt/price
}

func freesInstance(plan []removal) bool {
	for _, r := range plan {
		if r.qty >= state.Quantity(r.item) {
			return true
		}
	}
	return false
}

// refuse speaks a refusal and drops the negotiation back to attending.
func refuse(ctx *rules.Context, format string, args ...any) {
	ctx.Sayf(format, args...)
	ctx.SetState(types.StateAttending)
}

func clearOffer(k session.Kind) rules.Action {
	return rules.ActionFunc(func(ctx *rules.Context) error {
		ctx.Session.ClearOffer(k)
		return nil
	})
}

func orThat(object string) string {
	if object == "" {
		return "that"
	}
	return object
}

func verbCost(n int) string {
	if n == 1 {
		return "costs"
	}
	return "cost"
}

func isAre(n int) string {
	if n == 1 {
		return "is"
	}
	return "are"
}

func itThem(n int) string {
	if n == 1 {
		return "it"
	}
	return "them"
}
