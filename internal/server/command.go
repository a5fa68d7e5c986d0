package server

import (
	"fmt"

	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/protocol"
	"github.com/lox/blackjack/internal/roomcode"
)

// Command is a validated client request. The concrete types below are the
// only implementations.
type Command interface {
	Kind() protocol.MessageType
}

type (
	CreateRoomCmd struct {
		Name string
	}
	JoinRoomCmd struct {
		Code string
		Name string
	}
	LeaveRoomCmd struct {
		Code string
	}
	TakeSeatCmd struct {
		Code string
	}
	StandUpCmd struct {
		Code string
	}
	PlaceBetCmd struct {
		Code   string
		Amount int
	}
	StartRoundCmd struct {
		Code string
	}
	BuyInsuranceCmd struct {
		Code string
		Buy  bool
	}
	ActionCmd struct {
		Code   string
		Action blackjack.Action
	}
)

func (CreateRoomCmd) Kind() protocol.MessageType   { return protocol.TypeCreateRoom }
func (JoinRoomCmd) Kind() protocol.MessageType     { return protocol.TypeJoinRoom }
func (LeaveRoomCmd) Kind() protocol.MessageType    { return protocol.TypeLeaveRoom }
func (TakeSeatCmd) Kind() protocol.MessageType     { return protocol.TypeTakeSeat }
func (StandUpCmd) Kind() protocol.MessageType      { return protocol.TypeStandUp }
func (PlaceBetCmd) Kind() protocol.MessageType     { return protocol.TypePlaceBet }
func (StartRoundCmd) Kind() protocol.MessageType   { return protocol.TypeStartRound }
func (BuyInsuranceCmd) Kind() protocol.MessageType { return protocol.TypeBuyInsurance }
func (ActionCmd) Kind() protocol.MessageType       { return protocol.TypeAction }

// ParseCommand decodes and validates a client frame. Room codes are
// normalized so "ab12 " and "AB12" name the same room.
func ParseCommand(msg *protocol.Message) (Command, error) {
	switch msg.Type {
	case protocol.TypeCreateRoom:
		var data protocol.CreateRoom
		if err := decode(msg, &data); err != nil {
			return nil, err
		}
		return CreateRoomCmd{Name: data.Name}, nil

	case protocol.TypeJoinRoom:
		var data protocol.JoinRoom
		if err := decode(msg, &data); err != nil {
			return nil, err
		}
		code, err := parseCode(data.Code)
		if err != nil {
			return nil, err
		}
		return JoinRoomCmd{Code: code, Name: data.Name}, nil

	case protocol.TypeLeaveRoom, protocol.TypeTakeSeat, protocol.TypeStandUp, protocol.TypeStartRound:
		var data protocol.RoomRef
		if err := decode(msg, &data); err != nil {
			return nil, err
		}
		code, err := parseCode(data.Code)
		if err != nil {
			return nil, err
		}
		switch msg.Type {
		case protocol.TypeLeaveRoom:
			return LeaveRoomCmd{Code: code}, nil
		case protocol.TypeTakeSeat:
			return TakeSeatCmd{Code: code}, nil
		case protocol.TypeStandUp:
			return StandUpCmd{Code: code}, nil
		default:
			return StartRoundCmd{Code: code}, nil
		}

	case protocol.TypePlaceBet:
		var data protocol.PlaceBet
		if err := decode(msg, &data); err != nil {
			return nil, err
		}
		code, err := parseCode(data.Code)
		if err != nil {
			return nil, err
		}
		return PlaceBetCmd{Code: code, Amount: data.Amount}, nil

	case protocol.TypeBuyInsurance:
		var data protocol.BuyInsurance
		if err := decode(msg, &data); err != nil {
			return nil, err
		}
		code, err := parseCode(data.Code)
		if err != nil {
			return nil, err
		}
		return BuyInsuranceCmd{Code: code, Buy: data.Buy}, nil

	case protocol.TypeAction:
		var data protocol.Action
		if err := decode(msg, &data); err != nil {
			return nil, err
		}
		code, err := parseCode(data.Code)
		if err != nil {
			return nil, err
		}
		action, err := blackjack.ParseAction(data.Act)
		if err != nil {
			return nil, err
		}
		return ActionCmd{Code: code, Action: action}, nil

	default:
		return nil, fmt.Errorf("%w: unknown message type %q", ErrInvalidMessage, msg.Type)
	}
}

func decode(msg *protocol.Message, v any) error {
	if err := msg.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	return nil
}

func parseCode(code string) (string, error) {
	code = roomcode.Normalize(code)
	if err := roomcode.Validate(code); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	return code, nil
}
