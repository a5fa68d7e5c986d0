package blackjack

import (
	"fmt"
	"strings"
)

// Phase is the room-wide state that decides which commands are legal.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseBetting
	PhaseDealing
	PhaseInsurance
	PhaseActing
	PhaseDealer
	PhasePayouts
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseBetting:
		return "betting"
	case PhaseDealing:
		return "dealing"
	case PhaseInsurance:
		return "insurance"
	case PhaseActing:
		return "acting"
	case PhaseDealer:
		return "dealer"
	case PhasePayouts:
		return "payouts"
	default:
		return "unknown"
	}
}

// acceptsBets reports whether seats and wagers may change.
func (p Phase) acceptsBets() bool {
	return p == PhaseLobby || p == PhaseBetting
}

// revealsDealer reports whether the dealer's full hand is public.
func (p Phase) revealsDealer() bool {
	return p == PhaseActing || p == PhaseDealer || p == PhasePayouts
}

// Action is a playing decision on the hand currently acting.
type Action int

const (
	ActionHit Action = iota
	ActionStand
	ActionDouble
	ActionSplit
	ActionSurrender
)

func (a Action) String() string {
	switch a {
	case ActionHit:
		return "hit"
	case ActionStand:
		return "stand"
	case ActionDouble:
		return "double"
	case ActionSplit:
		return "split"
	case ActionSurrender:
		return "surrender"
	default:
		return "unknown"
	}
}

// ParseAction converts a client action name, case-insensitively.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hit":
		return ActionHit, nil
	case "stand":
		return ActionStand, nil
	case "double":
		return ActionDouble, nil
	case "split":
		return ActionSplit, nil
	case "surrender":
		return ActionSurrender, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAction, s)
}
