package blackjack

import "github.com/lox/blackjack/internal/deck"

// DealerShouldDraw reports whether the dealer must take another card: below
// 17, or a soft 17 when the table hits soft 17. An exhausted shoe makes the
// dealer stand.
func (r *Room) DealerShouldDraw() bool {
	if r.phase != PhaseDealer || r.shoe.Available() == 0 {
		return false
	}
	v := HandValue(r.dealer)
	return v.Total < 17 || (r.rules.HitSoft17 && v.Total == 17 && v.Soft)
}

// DealerDraw gives the dealer one card.
func (r *Room) DealerDraw() (deck.Card, error) {
	if r.phase != PhaseDealer {
		return deck.Card{}, ErrWrongPhase
	}
	card, err := r.shoe.Draw()
	if err != nil {
		return deck.Card{}, err
	}
	r.dealer = append(r.dealer, card)
	return card, nil
}

// PlayDealer runs the whole dealer turn without pacing and settles.
func (r *Room) PlayDealer() []Settlement {
	for r.DealerShouldDraw() {
		if _, err := r.DealerDraw(); err != nil {
			break
		}
	}
	return r.Settle()
}
