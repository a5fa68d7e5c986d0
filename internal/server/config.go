package server

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/blackjack/internal/blackjack"
)

// Config is the complete server configuration.
type Config struct {
	Server ServerSettings
	Rules  blackjack.Rules
	Rooms  RoomSettings
}

// ServerSettings contains listener and logging configuration.
type ServerSettings struct {
	Address  string
	Port     int
	LogLevel string
}

// RoomSettings controls how long abandoned rooms live.
type RoomSettings struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

// fileConfig mirrors blackjack.hcl. Every block and attribute is optional;
// pointers distinguish "absent" from an explicit zero.
type fileConfig struct {
	Server *serverBlock `hcl:"server,block"`
	Rules  *rulesBlock  `hcl:"rules,block"`
	Rooms  *roomsBlock  `hcl:"rooms,block"`
}

type serverBlock struct {
	Address  *string `hcl:"address,optional"`
	Port     *int    `hcl:"port,optional"`
	LogLevel *string `hcl:"log_level,optional"`
}

type rulesBlock struct {
	Decks            *int    `hcl:"decks,optional"`
	MaxSeats         *int    `hcl:"max_seats,optional"`
	MinBet           *int    `hcl:"min_bet,optional"`
	MaxBet           *int    `hcl:"max_bet,optional"`
	StartingChips    *int    `hcl:"starting_chips,optional"`
	HitSoft17        *bool   `hcl:"hit_soft_17,optional"`
	BlackjackPayout  *string `hcl:"blackjack_payout,optional"`
	RevealDelayMs    *int    `hcl:"reveal_delay_ms,optional"`
	DrawDelayMs      *int    `hcl:"draw_delay_ms,optional"`
	MaxSplits        *int    `hcl:"max_splits,optional"`
	ActionCooldownMs *int    `hcl:"action_cooldown_ms,optional"`
}

type roomsBlock struct {
	IdleTimeoutS   *int `hcl:"idle_timeout_s,optional"`
	SweepIntervalS *int `hcl:"sweep_interval_s,optional"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Rules: blackjack.DefaultRules(),
		Rooms: RoomSettings{
			IdleTimeout:   30 * time.Minute,
			SweepInterval: time.Minute,
		},
	}
}

// LoadConfig reads an HCL configuration file. A missing file yields the
// defaults.
func LoadConfig(filename string) (Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return ParseConfig(src, filename)
}

// ParseConfig decodes HCL source over the defaults.
func ParseConfig(src []byte, filename string) (Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &fc); diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := DefaultConfig()
	if s := fc.Server; s != nil {
		setString(&cfg.Server.Address, s.Address)
		setInt(&cfg.Server.Port, s.Port)
		setString(&cfg.Server.LogLevel, s.LogLevel)
	}
	if r := fc.Rules; r != nil {
		setInt(&cfg.Rules.Decks, r.Decks)
		setInt(&cfg.Rules.MaxSeats, r.MaxSeats)
		setInt(&cfg.Rules.MinBet, r.MinBet)
		setInt(&cfg.Rules.MaxBet, r.MaxBet)
		setInt(&cfg.Rules.StartingChips, r.StartingChips)
		setInt(&cfg.Rules.MaxSplits, r.MaxSplits)
		if r.HitSoft17 != nil {
			cfg.Rules.HitSoft17 = *r.HitSoft17
		}
		if r.BlackjackPayout != nil {
			ratio, err := blackjack.ParseRatio(*r.BlackjackPayout)
			if err != nil {
				return Config{}, fmt.Errorf("rules: %w", err)
			}
			cfg.Rules.BlackjackPayout = ratio
		}
		setDuration(&cfg.Rules.RevealDelay, r.RevealDelayMs, time.Millisecond)
		setDuration(&cfg.Rules.DrawDelay, r.DrawDelayMs, time.Millisecond)
		setDuration(&cfg.Rules.ActionCooldown, r.ActionCooldownMs, time.Millisecond)
	}
	if r := fc.Rooms; r != nil {
		setDuration(&cfg.Rooms.IdleTimeout, r.IdleTimeoutS, time.Second)
		setDuration(&cfg.Rooms.SweepInterval, r.SweepIntervalS, time.Second)
	}
	return cfg, nil
}

// Validate checks the configuration for values the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port: %d", c.Server.Port))
	}
	switch strings.ToLower(c.Server.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Server.LogLevel))
	}
	if err := c.Rules.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Rooms.IdleTimeout <= 0 {
		errs = append(errs, fmt.Errorf("room idle timeout must be positive, got %s", c.Rooms.IdleTimeout))
	}
	if c.Rooms.SweepInterval <= 0 {
		errs = append(errs, fmt.Errorf("room sweep interval must be positive, got %s", c.Rooms.SweepInterval))
	}
	return errors.Join(errs...)
}

// Addr returns the host:port the server listens on.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *int, unit time.Duration) {
	if v != nil {
		*dst = time.Duration(*v) * unit
	}
}
