package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/blackjack/internal/client"
	"github.com/lox/blackjack/internal/tui"
)

// ClientCmd connects the terminal UI to a server.
type ClientCmd struct {
	Config   string `short:"c" default:"blackjack-client.hcl" help:"Path to HCL configuration file"`
	Server   string `short:"s" help:"Server URL to connect to (overrides config)"`
	Name     string `short:"n" help:"Display name (overrides config)"`
	Bet      int    `help:"Default bet (overrides config)"`
	Join     string `short:"j" help:"Room code to join on connect"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	LogFile  string `help:"Log file path (overrides config)"`
}

func (c *ClientCmd) Run() error {
	cfg, err := client.LoadConfig(c.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if c.Server != "" {
		cfg.Server.URL = c.Server
	}
	if c.Name != "" {
		cfg.Player.Name = c.Name
	}
	if c.Bet > 0 {
		cfg.Player.DefaultBet = c.Bet
	}
	if c.LogLevel != "" {
		cfg.UI.LogLevel = c.LogLevel
	}
	if c.LogFile != "" {
		cfg.UI.LogFile = c.LogFile
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()
	logger := newLogger(logFile, cfg.UI.LogLevel)

	logger.Info("Starting blackjack client",
		"server", cfg.Server.URL,
		"player", cfg.Player.Name,
		"config", c.Config)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ConnectTimeout)*time.Second)
	defer cancel()

	ws := client.New(cfg.Server.URL, logger)
	if err := ws.Connect(ctx); err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	if c.Join != "" {
		if err := ws.JoinRoom(c.Join, cfg.Player.Name); err != nil {
			return err
		}
	}

	model := tui.New(ws, logger, tui.Options{
		Name:       cfg.Player.Name,
		DefaultBet: cfg.Player.DefaultBet,
		ServerURL:  cfg.Server.URL,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
