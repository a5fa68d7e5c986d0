package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/server"
	"golang.org/x/sync/errgroup"
)

// ServerCmd runs the websocket server. Flags override blackjack.hcl.
type ServerCmd struct {
	Config      string         `short:"c" default:"blackjack.hcl" help:"Path to HCL configuration file"`
	Addr        string         `env:"BLACKJACK_ADDR" help:"Address to listen on, host:port (overrides config)"`
	LogLevel    string         `short:"l" help:"Log level: debug, info, warn or error (overrides config)"`
	Decks       *int           `env:"NUM_DECKS" help:"Decks per shoe"`
	MaxPlayers  *int           `env:"MAX_PLAYERS" help:"Seats per table"`
	MinBet      *int           `env:"MIN_BET" help:"Minimum wager"`
	MaxBet      *int           `env:"MAX_BET" help:"Maximum wager"`
	RevealDelay Delay          `env:"DEALER_REVEAL_DELAY" help:"Pause before the dealer plays, in seconds (0.9) or as a duration (900ms)"`
	DrawDelay   Delay          `env:"DEALER_DRAW_DELAY" help:"Pause between dealer draws, in seconds (0.9) or as a duration (900ms)"`
	HitSoft17   *bool          `name:"hit-soft-17" env:"HIT_SOFT_17" help:"Dealer hits soft 17"`
	Payout      string         `name:"blackjack-payout" env:"BLACKJACK_PAYOUT" help:"Blackjack payout ratio, e.g. 3:2 or 6:5"`
	IdleTimeout *time.Duration `name:"room-idle-timeout" env:"ROOM_IDLE_TIMEOUT" help:"How long an empty room survives"`
	Seed        *int64         `env:"SEED" help:"Deterministic RNG seed for shuffles and room codes (optional)"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := c.apply(&cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(os.Stderr, cfg.Server.LogLevel)
	seed := randutil.Seed(c.Seed)
	if c.Seed != nil {
		logger.Info("Using deterministic seed", "seed", seed)
	} else {
		logger.Debug("Using random seed", "seed", seed)
	}

	s := server.NewServer(cfg, logger, server.WithRNG(randutil.NewSource(seed)))
	logger.Info("Starting blackjack server",
		"addr", cfg.Addr(),
		"decks", cfg.Rules.Decks,
		"seats", cfg.Rules.MaxSeats,
		"bets", fmt.Sprintf("$%d-$%d", cfg.Rules.MinBet, cfg.Rules.MaxBet),
		"hit_soft_17", cfg.Rules.HitSoft17,
		"payout", cfg.Rules.BlackjackPayout.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return s.RunSweeper(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// apply copies the flags that were set over cfg.
func (c *ServerCmd) apply(cfg *server.Config) error {
	if c.Addr != "" {
		host, port, err := net.SplitHostPort(c.Addr)
		if err != nil {
			return fmt.Errorf("invalid address %q: %w", c.Addr, err)
		}
		n, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", port, err)
		}
		cfg.Server.Address = host
		cfg.Server.Port = n
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}

	rules := &cfg.Rules
	if c.Decks != nil {
		rules.Decks = *c.Decks
	}
	if c.MaxPlayers != nil {
		rules.MaxSeats = *c.MaxPlayers
	}
	if c.MinBet != nil {
		rules.MinBet = *c.MinBet
	}
	if c.MaxBet != nil {
		rules.MaxBet = *c.MaxBet
	}
	if c.RevealDelay.Set {
		rules.RevealDelay = c.RevealDelay.Duration
	}
	if c.DrawDelay.Set {
		rules.DrawDelay = c.DrawDelay.Duration
	}
	if c.HitSoft17 != nil {
		rules.HitSoft17 = *c.HitSoft17
	}
	if c.Payout != "" {
		ratio, err := blackjack.ParseRatio(c.Payout)
		if err != nil {
			return fmt.Errorf("invalid blackjack payout: %w", err)
		}
		rules.BlackjackPayout = ratio
	}
	if c.IdleTimeout != nil {
		cfg.Rooms.IdleTimeout = *c.IdleTimeout
	}
	return nil
}
