package behaviour

import (
	"github.com/nathoo/parley/engine/dialogue"
	"github.com/nathoo/parley/engine/rules"
	"github.com/nathoo/parley/engine/session"
	"github.com/nathoo/parley/types"
)

const healed = "There, you are healed. How may I help you?"

// HealerOfferText is the "offer" reply of a healer.
const HealerOfferText = "I can heal you."

// AddHealer registers the heal / confirm / cancel stages on an NPC. A cost of
// zero heals immediately.
func AddHealer(npc *dialogue.NPC, cost int, offer bool) error {
	if offer {
		if err := npc.AddOffer(HealerOfferText); err != nil {
			return err
		}
	}

	quote := rules.ActionFunc(func(ctx *rules.Context) error {
		if cost <= 0 {
			heal(ctx, 0)
			ctx.SetState(types.StateAttending)
			return nil
		}
		ctx.Session.SetOffer(session.Healer, session.Offer{Item: "heal", Amount: 1, UnitPrice: cost})
		ctx.Sayf("Healing costs %d. Do you want to pay?", cost)
		return nil
	})

	confirm := rules.ActionFunc(func(ctx *rules.Context) error {
		o := ctx.Session.Offer(session.Healer)
		if o == nil {
			ctx.Say(cancelled)
			return nil
		}
		ctx.Session.ClearOffer(session.Healer)
		if !Charge(ctx.Player, o.Total()) {
			refuse(ctx, "Sorry, you don't have enough money!")
			return nil
		}
		heal(ctx, o.Total())
		return nil
	})

	if err := npc.Add(types.StateAttending, []string{"heal"}, nil, types.StateHealOffered, "", quote); err != nil {
		return err
	}
	if err := npc.Add(types.StateHealOffered, []string{"yes"}, nil, types.StateAttending, "", confirm); err != nil {
		return err
	}
	return npc.Add(types.StateHealOffered, []string{"no"}, nil, types.StateAttending, cancelled,
		clearOffer(session.Healer))
}

func heal(ctx *rules.Context, paid int) {
	ctx.Player.Heal()
	ctx.World.Modify(ctx.Player)
	ctx.Say(healed)
	ctx.Emit("healed", map[string]any{"price": paid})
}
