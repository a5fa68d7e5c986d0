package blackjack

import (
	"testing"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/stretchr/testify/require"
)

// newTestRoom builds a room whose shoe deals cards in the given order.
// Dealing alternates one card per bettor then one to the dealer, twice.
func newTestRoom(t *testing.T, cards string, opts ...func(*Rules)) *Room {
	t.Helper()
	rules := DefaultRules()
	rules.ActionCooldown = 0
	for _, opt := range opts {
		opt(&rules)
	}
	require.NoError(t, rules.Validate())
	shoe := deck.NewStackedShoe(deck.MustParseCards(cards), randutil.New(1))
	return NewRoom("TEST", rules, shoe)
}

func seatAndBet(t *testing.T, r *Room, id string, bet int) {
	t.Helper()
	r.Join(id, id)
	require.NoError(t, r.TakeSeat(id))
	_, err := r.PlaceBet(id, bet)
	require.NoError(t, err)
}

func mustPlayer(t *testing.T, r *Room, id string) *Player {
	t.Helper()
	p, ok := r.Player(id)
	require.True(t, ok, "player %s not in room", id)
	return p
}

func requireCardsConserved(t *testing.T, r *Room) {
	t.Helper()
	require.Equal(t, r.Shoe().Size(), r.CardsAccountedFor(), "cards must be conserved")
}
