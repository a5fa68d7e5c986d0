package blackjack

import "fmt"

// InsurancePayout is the total returned per chip of insurance when the
// dealer holds blackjack: the stake plus 2:1.
const InsurancePayout = 3

// BuyInsurance records the current player's insurance decision. Insurance
// costs half the primary wager. After the last player decides, a dealer
// blackjack settles the round at once; otherwise play begins.
func (r *Room) BuyInsurance(id string, buy bool) error {
	if r.phase != PhaseInsurance {
		return ErrWrongPhase
	}
	p := r.current()
	if p == nil || p.ID != id {
		return ErrNotYourTurn
	}
	if buy && !p.Insured {
		cost := p.Hands[0].Bet / 2
		if p.Chips < cost {
			return ErrInsufficientChips
		}
		p.Chips -= cost
		p.Insured = true
		p.InsuranceBet = cost
	}

	if !r.nextTurn() {
		r.resolveInsurance()
	}
	return nil
}

// resolveInsurance ends the insurance phase once every bettor has decided.
func (r *Room) resolveInsurance() {
	dealerBlackjack := IsBlackjack(r.dealer)
	for _, id := range r.order {
		p := r.players[id]
		if !p.Insured {
			continue
		}
		if dealerBlackjack {
			win := p.InsuranceBet * InsurancePayout
			p.Chips += win
			p.InsuranceResult = fmt.Sprintf("Insurance +%d", win-p.InsuranceBet)
		} else {
			p.InsuranceResult = fmt.Sprintf("Insurance -%d", p.InsuranceBet)
		}
		p.InsuranceBet = 0
	}

	if dealerBlackjack {
		r.Settle()
		return
	}
	r.phase = PhaseActing
	r.turn = -1
	if !r.nextTurn() {
		r.finishActing()
	}
}
