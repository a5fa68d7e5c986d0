package blackjack

import (
	"strings"
	"time"
)

// MaxNameLength caps display names, counted in runes.
const MaxNameLength = 20

// Player is one connection's seat, bankroll and in-progress hands.
type Player struct {
	ID     string
	Name   string
	Chips  int
	Seated bool

	// Wager is the escrowed bet placed during betting, before cards are
	// dealt. Once the round starts the wager lives on Hands[0].
	Wager int
	Hands []*Hand

	Insured      bool
	InsuranceBet int
	Surrendered  bool
	Splits       int

	Results         []Result
	InsuranceResult string

	lastAction time.Time
}

func newPlayer(id, name string, chips int) *Player {
	return &Player{ID: id, Name: normalizeName(name), Chips: chips}
}

// InRound reports whether the player holds cards in the current round.
func (p *Player) InRound() bool {
	return len(p.Hands) > 0
}

// Bets returns the wager on each hand, or the escrowed wager before the deal.
func (p *Player) Bets() []int {
	if len(p.Hands) == 0 {
		if p.Wager > 0 {
			return []int{p.Wager}
		}
		return []int{}
	}
	bets := make([]int, len(p.Hands))
	for i, h := range p.Hands {
		bets[i] = h.Bet
	}
	return bets
}

// Exposure is every chip the player has committed and not yet settled.
func (p *Player) Exposure() int {
	total := p.Wager + p.InsuranceBet
	for _, h := range p.Hands {
		total += h.Bet - h.Refunded
	}
	return total
}

// clearRound forgets per-round state. Results stay visible until the next
// settlement overwrites them.
func (p *Player) clearRound() {
	p.Hands = nil
	p.Wager = 0
	p.Insured = false
	p.InsuranceBet = 0
	p.Surrendered = false
	p.Splits = 0
}

func normalizeName(name string) string {
	runes := []rune(strings.TrimSpace(name))
	if len(runes) == 0 {
		return "Player"
	}
	if len(runes) > MaxNameLength {
		runes = runes[:MaxNameLength]
	}
	return string(runes)
}
