package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// InputKind is what a line typed at the prompt asks for.
type InputKind int

const (
	InputNone InputKind = iota
	InputHelp
	InputQuit
	InputCreate
	InputJoin
	InputLeave
	InputSeat
	InputStandUp
	InputBet
	InputStart
	InputAction
	InputInsurance
)

// Input is a parsed prompt line.
type Input struct {
	Kind   InputKind
	Code   string
	Name   string
	Amount int // zero means the configured default bet
	Action string
	Buy    bool
}

var errUsage = errors.New("usage")

var actionAliases = map[string]string{
	"hit":       "hit",
	"h":         "hit",
	"stand":     "stand",
	"s":         "stand",
	"double":    "double",
	"d":         "double",
	"split":     "split",
	"p":         "split",
	"surrender": "surrender",
	"r":         "surrender",
}

// HelpLines lists the prompt commands.
var HelpLines = []string{
	"create [name]       open a new room",
	"join CODE [name]    join a room by code",
	"leave               leave the room",
	"sit / stand up      take or give up a seat",
	"bet [amount]        wager on the next round",
	"start               deal the round",
	"hit stand double split surrender",
	"insurance yes|no    answer the insurance offer",
	"quit                exit",
}

func parseInput(line string) (Input, error) {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), "/"))
	if len(fields) == 0 {
		return Input{Kind: InputNone}, nil
	}
	verb := strings.ToLower(fields[0])
	args := fields[1:]

	if action, ok := actionAliases[verb]; ok {
		if verb == "stand" && len(args) == 1 && strings.EqualFold(args[0], "up") {
			return Input{Kind: InputStandUp}, nil
		}
		if len(args) > 0 {
			return Input{}, fmt.Errorf("%w: %s", errUsage, verb)
		}
		return Input{Kind: InputAction, Action: action}, nil
	}

	switch verb {
	case "help", "?":
		return Input{Kind: InputHelp}, nil
	case "quit", "exit", "q":
		return Input{Kind: InputQuit}, nil
	case "create", "new":
		return Input{Kind: InputCreate, Name: strings.Join(args, " ")}, nil
	case "join":
		if len(args) == 0 {
			return Input{}, fmt.Errorf("%w: join CODE [name]", errUsage)
		}
		return Input{Kind: InputJoin, Code: strings.ToUpper(args[0]), Name: strings.Join(args[1:], " ")}, nil
	case "leave":
		return Input{Kind: InputLeave}, nil
	case "sit", "seat":
		return Input{Kind: InputSeat}, nil
	case "standup", "up":
		return Input{Kind: InputStandUp}, nil
	case "bet":
		if len(args) == 0 {
			return Input{Kind: InputBet}, nil
		}
		amount, err := strconv.Atoi(strings.TrimPrefix(args[0], "$"))
		if err != nil || amount <= 0 || len(args) > 1 {
			return Input{}, fmt.Errorf("%w: bet [amount]", errUsage)
		}
		return Input{Kind: InputBet, Amount: amount}, nil
	case "start", "deal":
		return Input{Kind: InputStart}, nil
	case "insurance", "insure", "ins":
		if len(args) == 0 {
			return Input{Kind: InputInsurance, Buy: true}, nil
		}
		switch strings.ToLower(args[0]) {
		case "yes", "y":
			return Input{Kind: InputInsurance, Buy: true}, nil
		case "no", "n":
			return Input{Kind: InputInsurance, Buy: false}, nil
		}
		return Input{}, fmt.Errorf("%w: insurance yes|no", errUsage)
	case "decline", "no":
		return Input{Kind: InputInsurance, Buy: false}, nil
	}
	return Input{}, fmt.Errorf("unknown command %q, type help", verb)
}
