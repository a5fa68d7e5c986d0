package server

import (
	"errors"

	"github.com/lox/blackjack/internal/blackjack"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrInvalidMessage = errors.New("invalid message")
	ErrRoomCodesSpent = errors.New("no free room code")
)

// errorReply maps an error to the code and text sent back to the client.
func errorReply(err error) (code, message string) {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "room_not_found", "Room not found."
	case errors.Is(err, ErrInvalidMessage):
		return "invalid_message", err.Error()
	case errors.Is(err, blackjack.ErrTableFull):
		return "table_full", "Table is full."
	case errors.Is(err, blackjack.ErrInsufficientChips):
		return "insufficient_chips", "Not enough chips."
	case errors.Is(err, blackjack.ErrNoBets):
		return "no_bets", "At least one seated player must bet."
	case errors.Is(err, blackjack.ErrNotMember):
		return "not_member", "You are not in this room."
	case errors.Is(err, blackjack.ErrNotSeated):
		return "not_seated", "Take a seat first."
	case errors.Is(err, blackjack.ErrWrongPhase):
		return "wrong_phase", "That is not possible right now."
	case errors.Is(err, blackjack.ErrNotYourTurn):
		return "not_your_turn", "It is not your turn."
	case errors.Is(err, blackjack.ErrIllegalAction), errors.Is(err, blackjack.ErrSplitLimit):
		return "illegal_action", "Invalid action or insufficient chips."
	case errors.Is(err, blackjack.ErrUnknownAction):
		return "unknown_action", err.Error()
	case errors.Is(err, blackjack.ErrShoeExhausted):
		return "shoe_exhausted", "The shoe is out of cards."
	default:
		return "internal", "Something went wrong."
	}
}
