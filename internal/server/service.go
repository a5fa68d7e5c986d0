package server

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/protocol"
)

// Service applies client commands to rooms and tracks which rooms each
// connection belongs to.
type Service struct {
	registry *Registry
	out      Broadcaster
	logger   *log.Logger

	mu      sync.Mutex
	members map[string][]string // connection id -> room codes
}

// NewService creates a service over registry.
func NewService(registry *Registry, out Broadcaster, logger *log.Logger) *Service {
	return &Service{
		registry: registry,
		out:      out,
		logger:   logger.WithPrefix("service"),
		members:  make(map[string][]string),
	}
}

// Handle applies cmd on behalf of connID. Rejected commands leave the room
// untouched and return the reason.
func (s *Service) Handle(connID string, cmd Command) error {
	if c, ok := cmd.(CreateRoomCmd); ok {
		return s.createRoom(connID, c)
	}

	code, apply := s.bind(connID, cmd)
	if apply == nil {
		return fmt.Errorf("%w: unsupported command %s", ErrInvalidMessage, cmd.Kind())
	}
	t, err := s.registry.Get(code)
	if err != nil {
		return err
	}
	if err := t.Do(apply); err != nil {
		return err
	}

	switch cmd.(type) {
	case JoinRoomCmd:
		s.addMembership(connID, code)
	case LeaveRoomCmd:
		s.removeMembership(connID, code)
		s.sendLeft(connID, code)
	}
	return nil
}

// bind turns a room command into the room mutation it performs.
func (s *Service) bind(connID string, cmd Command) (string, func(*blackjack.Room) error) {
	switch c := cmd.(type) {
	case JoinRoomCmd:
		return c.Code, func(r *blackjack.Room) error {
			r.Join(connID, c.Name)
			return nil
		}
	case LeaveRoomCmd:
		return c.Code, func(r *blackjack.Room) error { return r.Leave(connID) }
	case TakeSeatCmd:
		return c.Code, func(r *blackjack.Room) error { return r.TakeSeat(connID) }
	case StandUpCmd:
		return c.Code, func(r *blackjack.Room) error { return r.StandUp(connID) }
	case PlaceBetCmd:
		return c.Code, func(r *blackjack.Room) error {
			_, err := r.PlaceBet(connID, c.Amount)
			return err
		}
	case StartRoundCmd:
		return c.Code, func(r *blackjack.Room) error { return r.StartRound(connID) }
	case BuyInsuranceCmd:
		return c.Code, func(r *blackjack.Room) error { return r.BuyInsurance(connID, c.Buy) }
	case ActionCmd:
		return c.Code, func(r *blackjack.Room) error { return r.Act(connID, c.Action) }
	}
	return "", nil
}

func (s *Service) createRoom(connID string, c CreateRoomCmd) error {
	t, err := s.registry.Create()
	if err != nil {
		return err
	}
	if err := t.Do(func(r *blackjack.Room) error {
		r.Join(connID, c.Name)
		return nil
	}); err != nil {
		return err
	}
	s.addMembership(connID, t.Code())
	s.logger.Info("Room opened", "room", t.Code(), "conn", connID)
	return nil
}

// Disconnect removes connID from every room it joined.
func (s *Service) Disconnect(connID string) {
	s.mu.Lock()
	codes := s.members[connID]
	delete(s.members, connID)
	s.mu.Unlock()

	for _, code := range codes {
		t, err := s.registry.Get(code)
		if err != nil {
			continue
		}
		err = t.Do(func(r *blackjack.Room) error { return r.Leave(connID) })
		if err != nil && !errors.Is(err, blackjack.ErrNotMember) && !errors.Is(err, ErrRoomNotFound) {
			s.logger.Warn("Failed to remove disconnected player", "room", code, "conn", connID, "error", err)
		}
	}
}

// Rooms returns the codes connID belongs to.
func (s *Service) Rooms(connID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.members[connID])
}

func (s *Service) addMembership(connID, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.members[connID], code) {
		s.members[connID] = append(s.members[connID], code)
	}
}

func (s *Service) removeMembership(connID, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	codes := slices.DeleteFunc(s.members[connID], func(c string) bool { return c == code })
	if len(codes) == 0 {
		delete(s.members, connID)
		return
	}
	s.members[connID] = codes
}

func (s *Service) sendLeft(connID, code string) {
	msg, err := protocol.NewMessage(protocol.TypeLeft, protocol.Left{Code: code})
	if err != nil {
		s.logger.Error("Failed to encode left message", "error", err)
		return
	}
	s.out.Send(connID, msg)
}
