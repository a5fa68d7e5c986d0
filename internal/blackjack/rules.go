package blackjack

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Ratio is a payout ratio such as 3:2.
type Ratio struct {
	Num int
	Den int
}

// ParseRatio parses "3:2" or "6/5".
func ParseRatio(s string) (Ratio, error) {
	sep := strings.IndexAny(s, ":/")
	if sep < 0 {
		return Ratio{}, fmt.Errorf("invalid payout ratio %q", s)
	}
	num, err := strconv.Atoi(strings.TrimSpace(s[:sep]))
	if err != nil {
		return Ratio{}, fmt.Errorf("invalid payout ratio %q: %w", s, err)
	}
	den, err := strconv.Atoi(strings.TrimSpace(s[sep+1:]))
	if err != nil {
		return Ratio{}, fmt.Errorf("invalid payout ratio %q: %w", s, err)
	}
	r := Ratio{Num: num, Den: den}
	if err := r.validate(); err != nil {
		return Ratio{}, err
	}
	return r, nil
}

// Of applies the ratio to amount, rounding down.
func (r Ratio) Of(amount int) int {
	return amount * r.Num / r.Den
}

func (r Ratio) String() string {
	return fmt.Sprintf("%d:%d", r.Num, r.Den)
}

func (r Ratio) validate() error {
	if r.Num <= 0 || r.Den <= 0 {
		return fmt.Errorf("payout ratio %d:%d must be positive", r.Num, r.Den)
	}
	return nil
}

// Rules are the table settings shared by every room on a server.
type Rules struct {
	Decks           int
	MaxSeats        int
	MinBet          int
	MaxBet          int
	StartingChips   int
	HitSoft17       bool
	BlackjackPayout Ratio
	RevealDelay     time.Duration
	DrawDelay       time.Duration
	MaxSplits       int // 0 means unlimited
	ActionCooldown  time.Duration
}

// DefaultRules returns the standard six deck table.
func DefaultRules() Rules {
	return Rules{
		Decks:           6,
		MaxSeats:        6,
		MinBet:          5,
		MaxBet:          500,
		StartingChips:   1000,
		HitSoft17:       true,
		BlackjackPayout: Ratio{Num: 3, Den: 2},
		RevealDelay:     900 * time.Millisecond,
		DrawDelay:       900 * time.Millisecond,
		MaxSplits:       3,
		ActionCooldown:  200 * time.Millisecond,
	}
}

// Validate checks the rules for values no table can run with.
func (r Rules) Validate() error {
	var errs []error
	if r.Decks < 1 {
		errs = append(errs, fmt.Errorf("decks must be at least 1, got %d", r.Decks))
	}
	if r.MaxSeats < 1 {
		errs = append(errs, fmt.Errorf("max seats must be at least 1, got %d", r.MaxSeats))
	}
	if r.MinBet <= 0 {
		errs = append(errs, fmt.Errorf("minimum bet must be positive, got %d", r.MinBet))
	}
	if r.MinBet > r.MaxBet {
		errs = append(errs, fmt.Errorf("minimum bet %d exceeds maximum bet %d", r.MinBet, r.MaxBet))
	}
	if r.StartingChips < 0 {
		errs = append(errs, fmt.Errorf("starting chips must not be negative, got %d", r.StartingChips))
	}
	if err := r.BlackjackPayout.validate(); err != nil {
		errs = append(errs, err)
	}
	if r.RevealDelay < 0 || r.DrawDelay < 0 || r.ActionCooldown < 0 {
		errs = append(errs, errors.New("delays must not be negative"))
	}
	if r.MaxSplits < 0 {
		errs = append(errs, fmt.Errorf("max splits must not be negative, got %d", r.MaxSplits))
	}
	return errors.Join(errs...)
}

// ClampBet limits amount to the table's betting range.
func (r Rules) ClampBet(amount int) int {
	return max(r.MinBet, min(r.MaxBet, amount))
}
