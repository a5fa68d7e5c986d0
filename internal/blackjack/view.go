package blackjack

import "github.com/lox/blackjack/internal/deck"

// View is the snapshot of a room sent to clients.
type View struct {
	Code            string       `json:"code"`
	Phase           string       `json:"phase"`
	MinBet          int          `json:"minBet"`
	MaxBet          int          `json:"maxBet"`
	MaxPlayers      int          `json:"maxPlayers"`
	Dealer          []string     `json:"dealer"`
	DealerTotal     *int         `json:"dealerTotal"`
	LastDealer      []string     `json:"lastDealer"`
	LastDealerTotal *int         `json:"lastDealerTotal"`
	Turn            *string      `json:"turn"`
	HandIndex       int          `json:"handIndex"`
	Players         []PlayerView `json:"players"`
	You             string       `json:"you,omitempty"`
}

// PlayerView is one member's entry in a View.
type PlayerView struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Chips       int        `json:"chips"`
	Seated      bool       `json:"seated"`
	Bets        []int      `json:"bets"`
	Hands       [][]string `json:"hands"`
	HandValues  []Value    `json:"handValues"`
	Surrendered []bool     `json:"surrendered"`
	Insured     bool       `json:"insured"`
	Insurance   string     `json:"insurance,omitempty"`
	LastResults []string   `json:"lastResults"`
	Me          bool       `json:"me"`
}

// PublicView renders the room for anyone watching.
func (r *Room) PublicView() View {
	return r.View("")
}

// View renders the room for viewer. An empty viewer gives the public
// snapshot. The dealer's hole card is hidden outside the acting, dealer and
// payout phases.
func (r *Room) View(viewer string) View {
	v := View{
		Code:       r.code,
		Phase:      r.phase.String(),
		MinBet:     r.rules.MinBet,
		MaxBet:     r.rules.MaxBet,
		MaxPlayers: r.rules.MaxSeats,
		LastDealer: deck.Strings(r.lastDealer),
		HandIndex:  r.hand,
		Players:    make([]PlayerView, 0, len(r.order)),
		You:        viewer,
	}

	switch {
	case r.phase.revealsDealer():
		v.Dealer = deck.Strings(r.dealer)
		if len(r.dealer) > 0 {
			total := HandValue(r.dealer).Total
			v.DealerTotal = &total
		}
	case len(r.dealer) > 0:
		v.Dealer = deck.Strings(r.dealer[:1])
	default:
		v.Dealer = []string{}
	}
	if len(r.lastDealer) > 0 {
		total := HandValue(r.lastDealer).Total
		v.LastDealerTotal = &total
	}

	if id, hand, ok := r.CurrentTurn(); ok {
		v.Turn = &id
		v.HandIndex = hand
	}

	for _, id := range r.order {
		v.Players = append(v.Players, r.players[id].view(id == viewer))
	}
	return v
}

func (p *Player) view(me bool) PlayerView {
	pv := PlayerView{
		ID:          p.ID,
		Name:        p.Name,
		Chips:       p.Chips,
		Seated:      p.Seated,
		Bets:        p.Bets(),
		Hands:       make([][]string, len(p.Hands)),
		HandValues:  make([]Value, len(p.Hands)),
		Surrendered: make([]bool, len(p.Hands)),
		Insured:     p.Insured,
		Insurance:   p.InsuranceResult,
		LastResults: make([]string, len(p.Results)),
		Me:          me,
	}
	for i, h := range p.Hands {
		pv.Hands[i] = deck.Strings(h.Cards)
		pv.HandValues[i] = h.Value()
		pv.Surrendered[i] = h.State == HandSurrendered
	}
	for i, res := range p.Results {
		pv.LastResults[i] = res.Label()
	}
	return pv
}
