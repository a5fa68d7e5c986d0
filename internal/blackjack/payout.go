package blackjack

import "fmt"

// Outcome classifies how a hand settled.
type Outcome int

const (
	OutcomeLoss Outcome = iota
	OutcomeBust
	OutcomePush
	OutcomeWin
	OutcomeBlackjack
	OutcomeSurrender
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoss:
		return "loss"
	case OutcomeBust:
		return "bust"
	case OutcomePush:
		return "push"
	case OutcomeWin:
		return "win"
	case OutcomeBlackjack:
		return "blackjack win"
	case OutcomeSurrender:
		return "surrender"
	default:
		return "unknown"
	}
}

// Result is one hand's settlement. Net is the chip change relative to the
// wager: positive for wins and negative for losses.
type Result struct {
	Outcome Outcome
	Net     int
}

// Label renders the result for players, e.g. "Blackjack +150".
func (r Result) Label() string {
	switch r.Outcome {
	case OutcomeBlackjack:
		return fmt.Sprintf("Blackjack +%d", r.Net)
	case OutcomeWin:
		return fmt.Sprintf("Win +%d", r.Net)
	case OutcomePush:
		return "Push ±0"
	case OutcomeBust:
		return fmt.Sprintf("Bust %d", r.Net)
	case OutcomeSurrender:
		return fmt.Sprintf("Surrender %d", r.Net)
	default:
		return fmt.Sprintf("Lose %d", r.Net)
	}
}

// Settlement summarizes one player's round.
type Settlement struct {
	PlayerID string
	Results  []Result
	Credited int
}

// SettleHand decides a hand against the dealer. It returns the chips to
// credit back to the player, the wager having been escrowed when placed.
func SettleHand(h *Hand, dealer Value, dealerBlackjack bool, payout Ratio) (int, Result) {
	if h.State == HandSurrendered {
		return 0, Result{Outcome: OutcomeSurrender, Net: h.Refunded - h.Bet}
	}

	bet := h.Bet
	player := h.Value()
	playerBlackjack := h.IsBlackjack()

	switch {
	case playerBlackjack && !dealerBlackjack:
		bonus := payout.Of(bet)
		return bet + bonus, Result{Outcome: OutcomeBlackjack, Net: bonus}
	case dealerBlackjack && !playerBlackjack:
		return 0, Result{Outcome: OutcomeLoss, Net: -bet}
	case player.Total > 21:
		return 0, Result{Outcome: OutcomeBust, Net: -bet}
	case dealer.Total > 21 || player.Total > dealer.Total:
		return bet * 2, Result{Outcome: OutcomeWin, Net: bet}
	case player.Total == dealer.Total:
		return bet, Result{Outcome: OutcomePush}
	default:
		return 0, Result{Outcome: OutcomeLoss, Net: -bet}
	}
}

// Settle pays every hand against the dealer, moves all cards to the discard
// pile and reopens betting.
func (r *Room) Settle() []Settlement {
	r.phase = PhasePayouts
	dealer := HandValue(r.dealer)
	dealerBlackjack := IsBlackjack(r.dealer)

	var settlements []Settlement
	for _, id := range r.order {
		p := r.players[id]
		if !p.InRound() {
			continue
		}
		s := Settlement{PlayerID: id, Results: make([]Result, len(p.Hands))}
		for i, h := range p.Hands {
			credit, res := SettleHand(h, dealer, dealerBlackjack, r.rules.BlackjackPayout)
			p.Chips += credit
			s.Credited += credit
			s.Results[i] = res
		}
		p.Results = s.Results
		settlements = append(settlements, s)
	}

	for _, id := range r.order {
		p := r.players[id]
		for _, h := range p.Hands {
			r.shoe.Discard(h.Cards...)
		}
		if p.InRound() {
			p.clearRound()
		}
	}
	r.shoe.Discard(r.dealer...)
	r.lastDealer = r.dealer
	r.dealer = nil

	r.phase = PhaseBetting
	r.turn, r.hand = 0, 0
	return settlements
}
