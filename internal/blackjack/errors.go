package blackjack

import (
	"errors"

	"github.com/lox/blackjack/internal/deck"
)

// Protocol errors. Each is returned before any state is changed.
var (
	ErrNotMember         = errors.New("not a member of this room")
	ErrNotSeated         = errors.New("take a seat first")
	ErrTableFull         = errors.New("table is full")
	ErrWrongPhase        = errors.New("not allowed right now")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrNoBets            = errors.New("at least one seated player must bet")
	ErrInsufficientChips = errors.New("not enough chips")
	ErrIllegalAction     = errors.New("invalid action for this hand")
	ErrUnknownAction     = errors.New("unknown action")
	ErrDuplicateAction   = errors.New("action submitted too quickly")
	ErrSplitLimit        = errors.New("split limit reached")
	ErrShoeExhausted     = deck.ErrShoeExhausted
)
