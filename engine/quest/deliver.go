package quest

import (
	"fmt"
	"strings"
	"time"

	"github.com/nathoo/parley/engine/behaviour"
	"github.com/nathoo/parley/engine/dialogue"
	"github.com/nathoo/parley/engine/parser"
	"github.com/nathoo/parley/engine/progress"
	"github.com/nathoo/parley/engine/rules"
	"github.com/nathoo/parley/engine/state"
	"github.com/nathoo/parley/engine/world"
	"github.com/nathoo/parley/types"
)

// DefaultUniformDress is the dress layer worn while delivering.
const DefaultUniformDress = 990

// Order is one customer a delivery can be for.
type Order struct {
	Customer        string
	Description     string // what the giver says about the customer
	Flavor          string
	ExpectedMinutes int
	MinLevel        int
	Weight          int // relative chance of being picked, default 1
	Tip             int
	LateTip         int
	XP              int
	// Lines spoken by the customer. [tip] and [flavor] are substituted.
	RespondToFastDelivery string
	RespondToSlowDelivery string
}

// DeliveryHistory holds the journal lines of an open delivery. [flavor],
// [customerName] and [customerDescription] are substituted.
type DeliveryHistory struct {
	WhenItemWasGiven      string
	WhenToldAboutCustomer string
	WhenInTime            string
	WhenOutOfTime         string
}

// DeliverItemTask sends the player to a random customer with a bound,
// flavoured item before a deadline. Lateness is only checked when the player
// talks to the giver or the customer again.
type DeliverItemTask struct {
	Item    string
	Uniform types.Outfit
	Orders  []Order
	History DeliveryHistory
}

var _ Task = (*DeliverItemTask)(nil)

func (t *DeliverItemTask) order(customer string) (Order, bool) {
	for _, o := range t.Orders {
		if o.Customer == customer {
			return o, true
		}
	}
	return Order{}, false
}

// eligible returns the orders open to a player of the given level.
func (t *DeliverItemTask) eligible(level int) []Order {
	var res []Order
	for _, o := range t.Orders {
		if level >= o.MinLevel {
			res = append(res, o)
		}
	}
	return res
}

// IsLate reports whether an active delivery has missed its deadline.
func (t *DeliverItemTask) IsLate(p progress.Progress, now time.Time) bool {
	if p.Status != progress.Active {
		return false
	}
	o, ok := t.order(p.Stage)
	if !ok {
		return false
	}
	return now.Sub(p.Timestamp) > time.Duration(o.ExpectedMinutes)*time.Minute
}

func (t *DeliverItemTask) uniform() types.Outfit {
	u := t.Uniform
	if u == (types.Outfit{}) {
		u.Dress = DefaultUniformDress
	}
	return u
}

func (t *DeliverItemTask) putOnUniform(p world.Player) {
	o := p.Outfit()
	o.Dress = t.uniform().Dress
	p.SetOutfit(o, true)
}

func (t *DeliverItemTask) putOffUniform(p world.Player) {
	if p.Outfit().Dress == t.uniform().Dress {
		p.ReturnToOriginalOutfit()
	}
}

func (t *DeliverItemTask) substitute(text string, o Order) string {
	return strings.NewReplacer(
		"[flavor]", o.Flavor,
		"[customerName]", o.Customer,
		"[customerDescription]", o.Description,
	).Replace(text)
}

// Prepare lets the giver describe each customer and teaches every customer to
// accept the delivery.
func (t *DeliverItemTask) Prepare(reg *dialogue.Registry, giver *dialogue.NPC, slot string) error {
	for _, o := range t.Orders {
		if err := progress.CheckStage(o.Customer); err != nil {
			return fmt.Errorf("customer: %w", err)
		}
		if o.Description != "" {
			if err := giver.AddReply([]string{o.Customer}, o.Description); err != nil {
				return err
			}
		}
		customer, err := reg.Get(o.Customer)
		if err != nil {
			return err
		}
		if err := customer.Add(types.StateAttending, []string{t.Item}, rules.QuestInStage(slot, o.Customer),
			types.StateAttending, "", t.deliverAction(slot, o)); err != nil {
			return err
		}
	}
	return nil
}

// PreCondition is nil: any player may be offered the delivery.
func (t *DeliverItemTask) PreCondition(string) rules.Condition { return nil }

// StartAction picks a customer and hands over the item.
func (t *DeliverItemTask) StartAction(slot string) rules.Action {
	return rules.ActionFunc(func(ctx *rules.Context) error {
		return t.start(ctx, slot)
	})
}

func (t *DeliverItemTask) start(ctx *rules.Context, slot string) error {
	orders := t.eligible(ctx.Player.Level())
	if len(orders) == 0 {
		decline(ctx, "Sorry, I have no %s to deliver for someone of your experience.", t.Item)
		return nil
	}
	weights := make([]int, len(orders))
	for i, o := range orders {
		weights[i] = max(o.Weight, 1)
	}
	o := orders[ctx.RNG.WeightedSelect(weights)]

	item, err := ctx.World.CreateItem(t.Item)
	if err != nil {
		return fmt.Errorf("deliver: %w", err)
	}
	item.Info = o.Flavor
	item.Description = fmt.Sprintf("You see a %s.", o.Flavor)
	item.BoundTo = ctx.Player.Name()
	if !ctx.Player.Equip(item) {
		decline(ctx, "Come back when you have space to carry the %s!", t.Item)
		return nil
	}

	ctx.Sayf("You must bring this %s to %s within %s. Say \"%s\" so that %s knows that I sent you. Oh, and please wear this uniform on your way.",
		o.Flavor, o.Customer, parser.Plural(o.ExpectedMinutes, "minute"), t.Item, o.Customer)
	t.putOnUniform(ctx.Player)

	prev := progress.Read(ctx.Player, slot, ctx.Logger)
	progress.Write(ctx.Player, slot, progress.Progress{
		Status:      progress.Active,
		Stage:       o.Customer,
		Timestamp:   ctx.Now,
		Completions: prev.Completions,
	})
	ctx.World.Modify(ctx.Player)
	ctx.Emit("quest_started", map[string]any{"quest": slot, "customer": o.Customer})
	return nil
}

// decline turns an accepted offer down: the giver's thanks are not spoken
// and the conversation goes back to attending.
func decline(ctx *rules.Context, format string, args ...any) {
	ctx.WithholdReply()
	ctx.Sayf(format, args...)
	ctx.SetState(types.StateAttending)
}

// RejectAction takes the uniform off again.
func (t *DeliverItemTask) RejectAction(string) rules.Action {
	return rules.ActionFunc(func(ctx *rules.Context) error {
		t.putOffUniform(ctx.Player)
		ctx.World.Modify(ctx.Player)
		return nil
	})
}

// RemindAction restarts a rejected delivery, re-offers a late one after
// taking the item back, and otherwise reminds the player of the customer.
func (t *DeliverItemTask) RemindAction(slot string) rules.Action {
	return rules.ActionFunc(func(ctx *rules.Context) error {
		pr := progress.Read(ctx.Player, slot, ctx.Logger)
		if pr.Status == progress.Rejected || pr.Status == progress.NotStarted {
			return t.start(ctx, slot)
		}
		o, ok := t.order(pr.Stage)
		if !ok {
			ctx.Logger.Warn().Str("customer", pr.Stage).Msg("delivery for unknown customer, restarting")
			return t.start(ctx, slot)
		}

		if t.IsLate(pr, ctx.Now) {
			for _, it := range state.FindItems(ctx.Player, t.Item) {
				if it.Info != "" {
					ctx.Player.Drop(it)
				}
			}
			t.putOffUniform(ctx.Player)
			ctx.World.Modify(ctx.Player)
			ctx.Sayf("I see you failed to deliver the %s to %s in time. Are you sure you will be more reliable this time?", t.Item, o.Customer)
			ctx.SetState(types.StateQuestOffered)
			return nil
		}
		ctx.Sayf("You still have to deliver a %s to %s, and hurry!", t.Item, o.Customer)
		ctx.SetState(types.StateAttending)
		return nil
	})
}

// CompletedCondition never holds: deliveries are completed by the customer.
func (t *DeliverItemTask) CompletedCondition(string) rules.Condition {
	return rules.ConditionFunc(func(*rules.Context) bool { return false })
}

// CompleteAction is unused for deliveries.
func (t *DeliverItemTask) CompleteAction(string) rules.Action { return nil }

// IsCompleted is false: the task is only done once the quest is done.
func (t *DeliverItemTask) IsCompleted(progress.Progress) bool { return false }

// HistoryProgress describes an open delivery.
func (t *DeliverItemTask) HistoryProgress(p progress.Progress, now time.Time) []string {
	if p.Status != progress.Active {
		return nil
	}
	o, ok := t.order(p.Stage)
	if !ok {
		return nil
	}
	res := []string{
		t.substitute(t.History.WhenItemWasGiven, o),
		t.substitute(t.History.WhenToldAboutCustomer, o),
	}
	if t.IsLate(p, now) {
		res = append(res, t.substitute(t.History.WhenOutOfTime, o))
	} else {
		res = append(res, t.substitute(t.History.WhenInTime, o))
	}
	return res
}

// deliverAction runs on the customer when the player says the item name.
func (t *DeliverItemTask) deliverAction(slot string, o Order) rules.Action {
	return rules.ActionFunc(func(ctx *rules.Context) error {
		var delivered *types.Item
		for _, it := range state.FindItems(ctx.Player, t.Item) {
			if it.Info == o.Flavor {
				delivered = it
				break
			}
		}
		if delivered == nil {
			if state.HasItem(ctx.Player, t.Item) {
				ctx.Sayf("No, thanks. I like %s better.", o.Flavor)
			} else {
				ctx.Sayf("A %s? Where?", t.Item)
			}
			return nil
		}

		pr := progress.Read(ctx.Player, slot, ctx.Logger)
		late := t.IsLate(pr, ctx.Now)
		tip, line := o.Tip, o.RespondToFastDelivery
		if late {
			tip, line = o.LateTip, o.RespondToSlowDelivery
		}
		// Dropping the delivered item frees its place, so there is always
		// room for the tip once it is gone.
		tipped, err := behaviour.PreparePay(ctx.World, ctx.Player, tip, true)
		if err != nil {
			return fmt.Errorf("deliver tip: %w", err)
		}
		ctx.Player.Drop(delivered)
		if err := tipped.Commit(ctx.Player); err != nil {
			return fmt.Errorf("deliver tip: %w", err)
		}
		if o.XP > 0 {
			ctx.Player.AddXP(o.XP)
		}
		t.putOffUniform(ctx.Player)
		progress.Write(ctx.Player, slot, progress.Progress{
			Status:      progress.Done,
			Timestamp:   ctx.Now,
			Completions: pr.Completions + 1,
		})
		ctx.World.Modify(ctx.Player)

		if line != "" {
			ctx.Say(strings.ReplaceAll(t.substitute(line, o), "[tip]", fmt.Sprint(tip)))
		}
		ctx.Emit("quest_completed", map[string]any{
			"quest": slot, "customer": o.Customer, "late": late, "tip": tip, "completions": pr.Completions + 1,
		})
		return nil
	})
}
