package blackjack

import "github.com/lox/blackjack/internal/deck"

// Value is the scored total of a hand.
type Value struct {
	Total int  `json:"total"`
	Soft  bool `json:"soft"`
}

// HandValue scores cards with every ace first counted as 11, then demotes
// aces to 1 one at a time while the total is over 21.
func HandValue(cards []deck.Card) Value {
	total, aces := 0, 0
	for _, c := range cards {
		total += c.Rank.Points()
		if c.IsAce() {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return Value{Total: total, Soft: aces > 0 && total <= 21}
}

// IsBlackjack reports a two card 21.
func IsBlackjack(cards []deck.Card) bool {
	return len(cards) == 2 && HandValue(cards).Total == 21
}

// HandState tags whether a hand takes part in settlement.
type HandState int

const (
	HandActive HandState = iota
	HandSurrendered
)

func (s HandState) String() string {
	if s == HandSurrendered {
		return "surrendered"
	}
	return "active"
}

// Hand is one wager and the cards dealt to it. A player holds several after
// splitting.
type Hand struct {
	Cards    []deck.Card
	Bet      int
	State    HandState
	Doubled  bool
	Refunded int // chips handed back on surrender
}

// Value scores the hand.
func (h *Hand) Value() Value {
	return HandValue(h.Cards)
}

// IsBlackjack reports a natural on this hand.
func (h *Hand) IsBlackjack() bool {
	return IsBlackjack(h.Cards)
}

// Busted reports a total over 21.
func (h *Hand) Busted() bool {
	return h.Value().Total > 21
}

func (h *Hand) canSplit() bool {
	return h.State == HandActive && len(h.Cards) == 2 && h.Cards[0].SameRank(h.Cards[1])
}

func (h *Hand) canDouble() bool {
	return h.State == HandActive && len(h.Cards) == 2
}
