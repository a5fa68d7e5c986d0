package blackjack

import (
	"fmt"
	"slices"
	"time"

	"github.com/lox/blackjack/internal/deck"
)

// Room is one table: its shoe, the dealer hand, the members in join order
// and the phase, turn and sub-hand cursors.
type Room struct {
	code  string
	rules Rules
	shoe  *deck.Shoe
	now   func() time.Time

	players map[string]*Player
	order   []string

	dealer     []deck.Card
	lastDealer []deck.Card

	phase Phase
	turn  int
	hand  int
}

// RoomOption configures a Room.
type RoomOption func(*Room)

// WithClock sets the time source used by the double-submit guard.
func WithClock(now func() time.Time) RoomOption {
	return func(r *Room) {
		r.now = now
	}
}

// NewRoom creates an empty room in the lobby phase.
func NewRoom(code string, rules Rules, shoe *deck.Shoe, opts ...RoomOption) *Room {
	r := &Room{
		code:    code,
		rules:   rules,
		shoe:    shoe,
		now:     time.Now,
		players: make(map[string]*Player),
		phase:   PhaseLobby,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Code returns the room's join code.
func (r *Room) Code() string { return r.code }

// Rules returns the table rules.
func (r *Room) Rules() Rules { return r.rules }

// Phase returns the current phase.
func (r *Room) Phase() Phase { return r.phase }

// Shoe exposes the room's shoe.
func (r *Room) Shoe() *deck.Shoe { return r.shoe }

// Dealer returns a copy of the dealer's cards.
func (r *Room) Dealer() []deck.Card { return slices.Clone(r.dealer) }

// LastDealer returns the dealer's cards from the last settled round.
func (r *Room) LastDealer() []deck.Card { return slices.Clone(r.lastDealer) }

// Player returns a member by connection id.
func (r *Room) Player(id string) (*Player, bool) {
	p, ok := r.players[id]
	return p, ok
}

// Players returns members in join order.
func (r *Room) Players() []*Player {
	out := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.players[id])
	}
	return out
}

// Members returns member ids in join order.
func (r *Room) Members() []string {
	return slices.Clone(r.order)
}

// Empty reports whether nobody is left in the room.
func (r *Room) Empty() bool {
	return len(r.order) == 0
}

// CurrentTurn returns whose decision is awaited and on which hand. It only
// reports a turn during the insurance and acting phases.
func (r *Room) CurrentTurn() (id string, hand int, ok bool) {
	if r.phase != PhaseInsurance && r.phase != PhaseActing {
		return "", 0, false
	}
	if r.turn < 0 || r.turn >= len(r.order) {
		return "", 0, false
	}
	return r.order[r.turn], r.hand, true
}

// SeatedCount returns the number of occupied seats.
func (r *Room) SeatedCount() int {
	n := 0
	for _, p := range r.players {
		if p.Seated {
			n++
		}
	}
	return n
}

// CardsAccountedFor counts every card owned by the room: shoe, discard
// pile, dealer hand and all player hands. It always equals Shoe().Size().
func (r *Room) CardsAccountedFor() int {
	n := r.shoe.Remaining() + r.shoe.Discarded() + len(r.dealer)
	for _, p := range r.players {
		for _, h := range p.Hands {
			n += len(h.Cards)
		}
	}
	return n
}

// Join adds a member, or renames an existing one.
func (r *Room) Join(id, name string) *Player {
	if p, ok := r.players[id]; ok {
		p.Name = normalizeName(name)
		return p
	}
	p := newPlayer(id, name, r.rules.StartingChips)
	r.players[id] = p
	r.order = append(r.order, id)
	return p
}

// Leave removes a member. Cards they held go to the discard pile and any
// chips on the table are forfeited. If they were the one acting the turn
// passes on, which may end the insurance or acting phase.
func (r *Room) Leave(id string) error {
	p, ok := r.players[id]
	if !ok {
		return ErrNotMember
	}
	idx := slices.Index(r.order, id)

	for _, h := range p.Hands {
		r.shoe.Discard(h.Cards...)
	}
	delete(r.players, id)
	r.order = slices.Delete(r.order, idx, idx+1)

	switch r.phase {
	case PhaseInsurance, PhaseActing:
		if idx < r.turn {
			r.turn--
			return nil
		}
		if idx > r.turn {
			return nil
		}
		r.turn--
		if r.nextTurn() {
			return nil
		}
		if r.phase == PhaseInsurance {
			r.resolveInsurance()
		} else {
			r.finishActing()
		}
	default:
		if r.turn >= len(r.order) {
			r.turn, r.hand = 0, 0
		}
	}
	return nil
}

// TakeSeat seats a member if the table has room.
func (r *Room) TakeSeat(id string) error {
	p, ok := r.players[id]
	if !ok {
		return ErrNotMember
	}
	if p.Seated {
		return nil
	}
	if r.SeatedCount() >= r.rules.MaxSeats {
		return ErrTableFull
	}
	p.Seated = true
	return nil
}

// StandUp vacates a seat between rounds, returning any escrowed wager.
func (r *Room) StandUp(id string) error {
	p, ok := r.players[id]
	if !ok {
		return ErrNotMember
	}
	if p.InRound() {
		return fmt.Errorf("%w: finish the round first", ErrWrongPhase)
	}
	p.Chips += p.Wager
	p.Wager = 0
	p.Seated = false
	return nil
}

// PlaceBet escrows a wager for the next round. The amount is clamped to the
// table limits and replaces any wager already placed. It returns the amount
// actually wagered.
func (r *Room) PlaceBet(id string, amount int) (int, error) {
	if !r.phase.acceptsBets() {
		return 0, ErrWrongPhase
	}
	p, ok := r.players[id]
	if !ok {
		return 0, ErrNotMember
	}
	if !p.Seated {
		return 0, ErrNotSeated
	}
	amount = r.rules.ClampBet(amount)
	available := p.Chips + p.Wager
	if amount > available {
		return 0, ErrInsufficientChips
	}

	r.phase = PhaseBetting
	p.clearRound()
	p.Chips = available - amount
	p.Wager = amount
	return amount, nil
}

// StartRound deals two cards to every seated bettor and two to the dealer,
// one card per pass. An ace up opens insurance; otherwise play starts with
// the first bettor.
func (r *Room) StartRound(id string) error {
	if !r.phase.acceptsBets() {
		return ErrWrongPhase
	}
	if _, ok := r.players[id]; !ok {
		return ErrNotMember
	}

	var bettors []*Player
	for _, pid := range r.order {
		if p := r.players[pid]; p.Seated && p.Wager > 0 {
			bettors = append(bettors, p)
		}
	}
	if len(bettors) == 0 {
		return ErrNoBets
	}
	if r.shoe.Available() < 2*len(bettors)+2 {
		return ErrShoeExhausted
	}

	r.phase = PhaseDealing
	r.dealer = nil
	r.shoe.ReshuffleIfNeeded()

	for _, p := range bettors {
		p.Hands = []*Hand{{Bet: p.Wager}}
		p.Wager = 0
		p.InsuranceResult = ""
	}
	for range 2 {
		for _, p := range bettors {
			card, err := r.shoe.Draw()
			if err != nil {
				return fmt.Errorf("dealing: %w", err)
			}
			p.Hands[0].Cards = append(p.Hands[0].Cards, card)
		}
		card, err := r.shoe.Draw()
		if err != nil {
			return fmt.Errorf("dealing: %w", err)
		}
		r.dealer = append(r.dealer, card)
	}

	if r.dealer[0].IsAce() {
		r.phase = PhaseInsurance
	} else {
		r.phase = PhaseActing
	}
	r.turn = -1
	r.nextTurn()
	return nil
}

// current returns the player whose turn it is.
func (r *Room) current() *Player {
	if r.turn < 0 || r.turn >= len(r.order) {
		return nil
	}
	return r.players[r.order[r.turn]]
}

func (r *Room) eligible(i int) bool {
	p := r.players[r.order[i]]
	return p != nil && p.Seated && len(p.Hands) > 0
}

// nextTurn moves the turn cursor to the next seated player holding a hand,
// resetting the sub-hand cursor. It returns false, with both cursors reset,
// when no such player remains.
func (r *Room) nextTurn() bool {
	r.hand = 0
	for r.turn++; r.turn < len(r.order); r.turn++ {
		if r.eligible(r.turn) {
			return true
		}
	}
	r.turn = 0
	return false
}

// advance finishes the current hand and moves to the player's next split
// hand or the next player.
func (r *Room) advance() {
	if p := r.current(); p != nil && r.hand+1 < len(p.Hands) {
		r.hand++
		return
	}
	if !r.nextTurn() {
		r.finishActing()
	}
}

// finishActing hands the table to the dealer.
func (r *Room) finishActing() {
	r.phase = PhaseDealer
	r.turn, r.hand = 0, 0
}
