package server

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/protocol"
)

// Broadcaster delivers a message to one connection. Implementations must
// not block.
type Broadcaster interface {
	Send(connID string, msg *protocol.Message)
}

// Table owns one room. Every mutation, including each dealer step, happens
// under mu, so commands for a room are serialized while rooms run in
// parallel.
type Table struct {
	mu     sync.Mutex
	room   *blackjack.Room
	clock  quartz.Clock
	out    Broadcaster
	logger *log.Logger

	dealing    bool
	closed     bool
	lastActive time.Time

	stop chan struct{}
	wg   sync.WaitGroup
}

func newTable(room *blackjack.Room, clock quartz.Clock, out Broadcaster, logger *log.Logger) *Table {
	return &Table{
		room:       room,
		clock:      clock,
		out:        out,
		logger:     logger.WithPrefix("table").With("room", room.Code()),
		lastActive: clock.Now(),
		stop:       make(chan struct{}),
	}
}

// Code returns the room code.
func (t *Table) Code() string {
	return t.room.Code()
}

// Do runs fn against the room. When fn succeeds every member receives a
// fresh snapshot, and the dealer sequence starts if play has reached the
// dealer. State is untouched when fn rejects the command.
func (t *Table) Do(fn func(*blackjack.Room) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrRoomNotFound
	}

	if err := fn(t.room); err != nil {
		return err
	}
	t.lastActive = t.clock.Now()
	t.startDealerLocked()
	t.broadcastLocked()
	return nil
}

// View returns a snapshot for viewer.
func (t *Table) View(viewer string) blackjack.View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.room.View(viewer)
}

// Summary describes the room for listings.
func (t *Table) Summary() protocol.RoomSummary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return protocol.RoomSummary{
		Code:    t.room.Code(),
		Phase:   t.room.Phase().String(),
		Members: len(t.room.Members()),
		Seated:  t.room.SeatedCount(),
	}
}

// Dealing reports whether the dealer sequence is running.
func (t *Table) Dealing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dealing
}

// expireIfIdle closes the table when it is empty, not dealing and untouched
// for at least timeout. A closed table rejects every later command.
func (t *Table) expireIfIdle(now time.Time, timeout time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.dealing || !t.room.Empty() || now.Sub(t.lastActive) < timeout {
		return false
	}
	t.closed = true
	close(t.stop)
	return true
}

// Close stops a running dealer sequence and rejects further commands.
func (t *Table) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	close(t.stop)
	t.mu.Unlock()
	t.wg.Wait()
}

// startDealerLocked schedules the dealer turn. The reveal timer is created
// before the caller broadcasts so the first dealer snapshot always has a
// pending step behind it.
func (t *Table) startDealerLocked() {
	if t.dealing || t.room.Phase() != blackjack.PhaseDealer {
		return
	}
	t.dealing = true
	t.logger.Debug("Dealer sequence started")
	timer := t.clock.NewTimer(t.room.Rules().RevealDelay, "dealer", "reveal")
	t.wg.Add(1)
	go t.runDealer(timer)
}

// runDealer draws for the dealer one paced step at a time and settles.
func (t *Table) runDealer(timer *quartz.Timer) {
	defer t.wg.Done()
	for {
		select {
		case <-timer.C:
		case <-t.stop:
			timer.Stop()
			return
		}
		if timer = t.dealerStep(); timer == nil {
			return
		}
	}
}

// dealerStep takes one card and returns the timer for the next step, or
// settles the round and returns nil.
func (t *Table) dealerStep() *quartz.Timer {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}

	if t.room.DealerShouldDraw() {
		card, err := t.room.DealerDraw()
		if err == nil {
			t.logger.Debug("Dealer draws", "card", card.String())
			next := t.clock.NewTimer(t.room.Rules().DrawDelay, "dealer", "draw")
			t.broadcastLocked()
			return next
		}
		t.logger.Warn("Dealer cannot draw, standing", "error", err)
	}

	if t.room.Phase() == blackjack.PhaseDealer {
		settlements := t.room.Settle()
		t.logger.Info("Round settled", "players", len(settlements), "dealer", blackjack.HandValue(t.room.LastDealer()).Total)
		for _, s := range settlements {
			t.logger.Debug("Settlement", "player", s.PlayerID, "credited", s.Credited, "hands", len(s.Results))
		}
	}
	t.dealing = false
	t.lastActive = t.clock.Now()
	t.broadcastLocked()
	return nil
}

// broadcastLocked sends each member their private snapshot followed by the
// public one.
func (t *Table) broadcastLocked() {
	members := t.room.Members()
	if len(members) == 0 {
		return
	}
	public, err := protocol.NewMessage(protocol.TypeState, t.room.PublicView())
	if err != nil {
		t.logger.Error("Failed to encode state", "error", err)
		return
	}
	for _, id := range members {
		private, err := protocol.NewMessage(protocol.TypeState, t.room.View(id))
		if err != nil {
			t.logger.Error("Failed to encode state", "error", err, "conn", id)
			continue
		}
		t.out.Send(id, private)
		t.out.Send(id, public)
	}
}
