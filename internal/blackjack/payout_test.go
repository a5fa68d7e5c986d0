package blackjack

import (
	"testing"

	"github.com/lox/blackjack/internal/deck"
	"github.com/stretchr/testify/assert"
)

func TestSettleHand(t *testing.T) {
	t.Parallel()
	threeToTwo := Ratio{Num: 3, Den: 2}

	tests := []struct {
		name       string
		player     string
		dealer     string
		bet        int
		wantCredit int
		want       Result
	}{
		{"blackjack pays three to two", "As Kd", "9c 7h 2d", 100, 250, Result{OutcomeBlackjack, 150}},
		{"blackjack bonus rounds down", "As Kd", "10c 8h", 5, 12, Result{OutcomeBlackjack, 7}},
		{"dealer blackjack beats twenty one", "7s 7h 7d", "Ac Kh", 100, 0, Result{OutcomeLoss, -100}},
		{"both blackjack push", "As Kd", "Ac Qh", 100, 100, Result{OutcomePush, 0}},
		{"bust loses even when dealer busts", "Ks Qh 5d", "10c 6h Kd", 100, 0, Result{OutcomeBust, -100}},
		{"dealer bust pays even money", "10s 8h", "10c 6h Kd", 100, 200, Result{OutcomeWin, 100}},
		{"higher total wins", "10s 9h", "10c 8h", 100, 200, Result{OutcomeWin, 100}},
		{"equal totals push", "10s Qh", "Kc Jh", 100, 100, Result{OutcomePush, 0}},
		{"lower total loses", "10s 7h", "10c 9h", 100, 0, Result{OutcomeLoss, -100}},
		{"three card twenty one against twenty one pushes", "7s 7h 7d", "10c 5h 6d", 50, 50, Result{OutcomePush, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Hand{Cards: deck.MustParseCards(tt.player), Bet: tt.bet}
			dealer := deck.MustParseCards(tt.dealer)
			credit, res := SettleHand(h, HandValue(dealer), IsBlackjack(dealer), threeToTwo)
			assert.Equal(t, tt.wantCredit, credit)
			assert.Equal(t, tt.want, res)
		})
	}
}

func TestSettleHandSurrenderIgnoresDealer(t *testing.T) {
	t.Parallel()
	h := &Hand{Cards: deck.MustParseCards("10s 6h"), Bet: 100, Refunded: 50, State: HandSurrendered}

	for _, dealer := range []string{"10c 6h Kd", "As Kd", "10c 9h"} {
		cards := deck.MustParseCards(dealer)
		credit, res := SettleHand(h, HandValue(cards), IsBlackjack(cards), Ratio{3, 2})
		assert.Equal(t, 0, credit, dealer)
		assert.Equal(t, Result{OutcomeSurrender, -50}, res, dealer)
	}
}

func TestResultLabel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		res  Result
		want string
	}{
		{Result{OutcomeBlackjack, 150}, "Blackjack +150"},
		{Result{OutcomeWin, 100}, "Win +100"},
		{Result{OutcomePush, 0}, "Push ±0"},
		{Result{OutcomeLoss, -100}, "Lose -100"},
		{Result{OutcomeBust, -25}, "Bust -25"},
		{Result{OutcomeSurrender, -50}, "Surrender -50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.res.Label())
	}
	assert.Equal(t, "blackjack win", OutcomeBlackjack.String())
	assert.Equal(t, "loss", OutcomeLoss.String())
}
