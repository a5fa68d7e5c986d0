package server

import (
	"context"
	"io"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/protocol"
	"github.com/lox/blackjack/internal/roomcode"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func testRules() blackjack.Rules {
	rules := blackjack.DefaultRules()
	rules.ActionCooldown = 0
	return rules
}

// stackedShoes deals the same fixed stack to every new room.
func stackedShoes(cards string) ShoeFactory {
	return func(_ blackjack.Rules, rng *rand.Rand) *deck.Shoe {
		return deck.NewStackedShoe(deck.MustParseCards(cards), rng)
	}
}

// codeSeq is a roomcode.RandSource replaying fixed alphabet indexes,
// repeating the last one forever.
type codeSeq struct {
	mu   sync.Mutex
	idxs []int
}

func (s *codeSeq) IntN(int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.idxs[0]
	if len(s.idxs) > 1 {
		s.idxs = s.idxs[1:]
	}
	return v
}

func fixedCodes(idxs ...int) *roomcode.Generator {
	return roomcode.NewGenerator(&codeSeq{idxs: idxs})
}

type sent struct {
	conn string
	msg  *protocol.Message
}

// recorder is a Broadcaster that keeps every message for inspection.
// Messages read while waiting on one connection are held back for the
// others.
type recorder struct {
	ch      chan sent
	backlog map[string][]*protocol.Message
}

func newRecorder() *recorder {
	return &recorder{
		ch:      make(chan sent, 4096),
		backlog: make(map[string][]*protocol.Message),
	}
}

func (r *recorder) Send(connID string, msg *protocol.Message) {
	r.ch <- sent{conn: connID, msg: msg}
}

// waitFor returns the first message to conn accepted by match. Earlier
// messages to conn that match rejects are discarded.
func (r *recorder) waitFor(t *testing.T, conn string, match func(*protocol.Message) bool) *protocol.Message {
	t.Helper()
	for len(r.backlog[conn]) > 0 {
		msg := r.backlog[conn][0]
		r.backlog[conn] = r.backlog[conn][1:]
		if match(msg) {
			return msg
		}
	}

	timeout := time.After(5 * time.Second)
	for {
		select {
		case s := <-r.ch:
			if s.conn != conn {
				r.backlog[s.conn] = append(r.backlog[s.conn], s.msg)
				continue
			}
			if match(s.msg) {
				return s.msg
			}
		case <-timeout:
			t.Fatalf("timed out waiting for message to %s", conn)
			return nil
		}
	}
}

// waitState returns the next private snapshot for conn accepted by match.
func (r *recorder) waitState(t *testing.T, conn string, match func(blackjack.View) bool) blackjack.View {
	t.Helper()
	var view blackjack.View
	r.waitFor(t, conn, func(msg *protocol.Message) bool {
		if msg.Type != protocol.TypeState {
			return false
		}
		var v blackjack.View
		require.NoError(t, msg.Decode(&v))
		if v.You != conn || !match(v) {
			return false
		}
		view = v
		return true
	})
	return view
}

// drain discards everything recorded so far.
func (r *recorder) drain() {
	clear(r.backlog)
	for {
		select {
		case <-r.ch:
		default:
			return
		}
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func phaseIs(phase blackjack.Phase) func(blackjack.View) bool {
	return func(v blackjack.View) bool { return v.Phase == phase.String() }
}
