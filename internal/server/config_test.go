package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lox/blackjack/internal/blackjack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "localhost:8080", cfg.Addr())
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "blackjack.hcl")
	src := `
server {
  address   = "0.0.0.0"
  port      = 9000
  log_level = "debug"
}

rules {
  decks            = 2
  min_bet          = 10
  hit_soft_17      = false
  blackjack_payout = "6:5"
  reveal_delay_ms  = 250
  max_splits       = 0
}

rooms {
  idle_timeout_s = 60
}
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:9000", cfg.Addr())
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 2, cfg.Rules.Decks)
	assert.Equal(t, 10, cfg.Rules.MinBet)
	assert.Equal(t, 500, cfg.Rules.MaxBet, "unset attributes keep their default")
	assert.False(t, cfg.Rules.HitSoft17)
	assert.Equal(t, blackjack.Ratio{Num: 6, Den: 5}, cfg.Rules.BlackjackPayout)
	assert.Equal(t, 250*time.Millisecond, cfg.Rules.RevealDelay)
	assert.Equal(t, 900*time.Millisecond, cfg.Rules.DrawDelay)
	assert.Equal(t, 0, cfg.Rules.MaxSplits, "an explicit zero is kept")
	assert.Equal(t, time.Minute, cfg.Rooms.IdleTimeout)
	assert.Equal(t, time.Minute, cfg.Rooms.SweepInterval)
}

func TestParseConfigErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `server {`},
		{"unknown attribute", `rules { jokers = 2 }`},
		{"wrong type", `server { port = "eighty" }`},
		{"bad payout", `rules { blackjack_payout = "three to two" }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.src), "test.hcl")
			assert.Error(t, err)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Server.Port = 0
	cfg.Server.LogLevel = "loud"
	cfg.Rules.MinBet = 0
	cfg.Rooms.IdleTimeout = 0

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"invalid port", "log level", "minimum bet", "idle timeout"} {
		assert.Contains(t, err.Error(), want)
	}
}
