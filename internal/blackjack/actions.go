package blackjack

import (
	"slices"

	"github.com/lox/blackjack/internal/deck"
)

// Act applies a playing decision to the hand currently acting. Busting,
// doubling and surrendering end the hand; splitting keeps the first of the
// two new hands in play.
func (r *Room) Act(id string, action Action) error {
	if r.phase != PhaseActing {
		return ErrWrongPhase
	}
	p := r.current()
	if p == nil || p.ID != id {
		return ErrNotYourTurn
	}
	now := r.now()
	if r.rules.ActionCooldown > 0 && !p.lastAction.IsZero() && now.Sub(p.lastAction) < r.rules.ActionCooldown {
		return ErrDuplicateAction
	}

	var err error
	switch action {
	case ActionHit:
		err = r.hit(p)
	case ActionStand:
		r.advance()
	case ActionDouble:
		err = r.double(p)
	case ActionSplit:
		err = r.split(p)
	case ActionSurrender:
		err = r.surrender(p)
	default:
		err = ErrUnknownAction
	}
	if err != nil {
		return err
	}
	p.lastAction = now
	return nil
}

func (r *Room) hit(p *Player) error {
	h := p.Hands[r.hand]
	card, err := r.shoe.Draw()
	if err != nil {
		return err
	}
	h.Cards = append(h.Cards, card)
	if h.Busted() {
		r.advance()
	}
	return nil
}

func (r *Room) double(p *Player) error {
	h := p.Hands[r.hand]
	if !h.canDouble() {
		return ErrIllegalAction
	}
	if p.Chips < h.Bet {
		return ErrInsufficientChips
	}
	card, err := r.shoe.Draw()
	if err != nil {
		return err
	}
	p.Chips -= h.Bet
	h.Bet *= 2
	h.Doubled = true
	h.Cards = append(h.Cards, card)
	r.advance()
	return nil
}

func (r *Room) split(p *Player) error {
	h := p.Hands[r.hand]
	if !h.canSplit() {
		return ErrIllegalAction
	}
	if p.Chips < h.Bet {
		return ErrInsufficientChips
	}
	if r.rules.MaxSplits > 0 && p.Splits >= r.rules.MaxSplits {
		return ErrSplitLimit
	}
	if r.shoe.Available() < 2 {
		return ErrShoeExhausted
	}

	// Available covers both draws, so neither can fail.
	first, _ := r.shoe.Draw()
	second, _ := r.shoe.Draw()

	p.Chips -= h.Bet
	p.Splits++
	right := &Hand{Cards: []deck.Card{h.Cards[1], second}, Bet: h.Bet}
	h.Cards = []deck.Card{h.Cards[0], first}
	p.Hands = slices.Insert(p.Hands, r.hand+1, right)
	return nil
}

func (r *Room) surrender(p *Player) error {
	h := p.Hands[r.hand]
	if h.State != HandActive || len(h.Cards) != 2 || p.Surrendered {
		return ErrIllegalAction
	}
	refund := h.Bet / 2
	p.Chips += refund
	p.Surrendered = true
	h.Refunded = refund
	h.State = HandSurrendered
	r.advance()
	return nil
}
