package server

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/protocol"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/roomcode"
)

// maxCodeAttempts bounds the search for an unused room code.
const maxCodeAttempts = 100

// ShoeFactory builds the shoe for a new room.
type ShoeFactory func(rules blackjack.Rules, rng *rand.Rand) *deck.Shoe

// DefaultShoeFactory shuffles rules.Decks fresh decks.
func DefaultShoeFactory(rules blackjack.Rules, rng *rand.Rand) *deck.Shoe {
	return deck.NewShoe(rules.Decks, rng)
}

// Registry is the process-wide set of rooms keyed by code.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*Table

	rules       blackjack.Rules
	out         Broadcaster
	logger      *log.Logger
	clock       quartz.Clock
	rngs        *randutil.Source
	codes       *roomcode.Generator
	newShoe     ShoeFactory
	idleTimeout time.Duration
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryClock sets the clock used for dealer pacing and expiry.
func WithRegistryClock(clock quartz.Clock) RegistryOption {
	return func(r *Registry) { r.clock = clock }
}

// WithRandSource sets the source of per-room shuffle generators and codes.
func WithRandSource(src *randutil.Source) RegistryOption {
	return func(r *Registry) {
		r.rngs = src
		r.codes = roomcode.NewGenerator(src)
	}
}

// WithCodeGenerator overrides how room codes are drawn.
func WithCodeGenerator(g *roomcode.Generator) RegistryOption {
	return func(r *Registry) { r.codes = g }
}

// WithShoeFactory overrides how shoes are built, e.g. to stack the deck.
func WithShoeFactory(f ShoeFactory) RegistryOption {
	return func(r *Registry) { r.newShoe = f }
}

// WithIdleTimeout sets how long an empty room survives.
func WithIdleTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) { r.idleTimeout = d }
}

// NewRegistry creates an empty registry whose tables report to out.
func NewRegistry(rules blackjack.Rules, out Broadcaster, logger *log.Logger, opts ...RegistryOption) *Registry {
	r := &Registry{
		tables:      make(map[string]*Table),
		rules:       rules,
		out:         out,
		logger:      logger.WithPrefix("registry"),
		clock:       quartz.NewReal(),
		newShoe:     DefaultShoeFactory,
		idleTimeout: 30 * time.Minute,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rngs == nil {
		r.rngs = randutil.NewSource(time.Now().UnixNano())
	}
	if r.codes == nil {
		r.codes = roomcode.NewGenerator(nil)
	}
	return r
}

// Create opens a room under a fresh code.
func (r *Registry) Create() (*Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := ""
	for range maxCodeAttempts {
		c := r.codes.Generate()
		if _, taken := r.tables[c]; !taken {
			code = c
			break
		}
	}
	if code == "" {
		return nil, fmt.Errorf("%w after %d attempts", ErrRoomCodesSpent, maxCodeAttempts)
	}

	shoe := r.newShoe(r.rules, r.rngs.Next())
	room := blackjack.NewRoom(code, r.rules, shoe, blackjack.WithClock(func() time.Time { return r.clock.Now() }))
	t := newTable(room, r.clock, r.out, r.logger)
	r.tables[code] = t
	r.logger.Info("Room created", "room", code, "rooms", len(r.tables))
	return t, nil
}

// Get looks up a room by code.
func (r *Registry) Get(code string) (*Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[roomcode.Normalize(code)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, code)
	}
	return t, nil
}

// Len returns the number of open rooms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables)
}

// List summarizes every room, ordered by code.
func (r *Registry) List() []protocol.RoomSummary {
	r.mu.RLock()
	tables := make([]*Table, 0, len(r.tables))
	for _, t := range r.tables {
		tables = append(tables, t)
	}
	r.mu.RUnlock()

	out := make([]protocol.RoomSummary, 0, len(tables))
	for _, t := range tables {
		out = append(out, t.Summary())
	}
	slices.SortFunc(out, func(a, b protocol.RoomSummary) int {
		return strings.Compare(a.Code, b.Code)
	})
	return out
}

// Sweep closes rooms that are empty, not dealing and idle past the timeout.
// It returns the expired codes.
func (r *Registry) Sweep() []string {
	now := r.clock.Now()

	r.mu.Lock()
	var expired []*Table
	for code, t := range r.tables {
		if t.expireIfIdle(now, r.idleTimeout) {
			expired = append(expired, t)
			delete(r.tables, code)
		}
	}
	remaining := len(r.tables)
	r.mu.Unlock()

	codes := make([]string, 0, len(expired))
	for _, t := range expired {
		codes = append(codes, t.Code())
		r.logger.Info("Room expired", "room", t.Code(), "rooms", remaining)
	}
	slices.Sort(codes)
	return codes
}

// Run sweeps on every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	ticker := r.clock.NewTicker(interval, "registry", "sweep")
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close shuts every room.
func (r *Registry) Close() {
	r.mu.Lock()
	tables := make([]*Table, 0, len(r.tables))
	for code, t := range r.tables {
		tables = append(tables, t)
		delete(r.tables, code)
	}
	r.mu.Unlock()

	for _, t := range tables {
		t.Close()
	}
}
