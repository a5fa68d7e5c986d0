package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/protocol"
)

// Session is the server connection the model drives. *client.Client
// satisfies it.
type Session interface {
	CreateRoom(name string) error
	JoinRoom(code, name string) error
	LeaveRoom() error
	TakeSeat() error
	StandUp() error
	PlaceBet(amount int) error
	StartRound() error
	BuyInsurance(buy bool) error
	Act(action string) error
	Incoming() <-chan *protocol.Message
}

// Options are the player defaults the model starts with.
type Options struct {
	Name       string
	DefaultBet int
	ServerURL  string
}

// serverMsg carries one message from the server into the update loop.
type serverMsg struct {
	msg *protocol.Message
}

type disconnectedMsg struct{}

// Model is the Bubble Tea model for a blackjack table.
type Model struct {
	session Session
	logger  *log.Logger
	opts    Options

	logViewport viewport.Model
	input       textinput.Model

	gameLog  []string
	view     *blackjack.View
	quitting bool

	width  int
	height int
}

// New creates a model playing through session.
func New(session Session, logger *log.Logger, opts Options) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "create, join CODE, sit, bet 25, start, hit, stand..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 60
	ti.PromptStyle = TurnMarkerStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(cream)
	ti.Prompt = "> "

	m := &Model{
		session:     session,
		logger:      logger.WithPrefix("tui"),
		opts:        opts,
		logViewport: vp,
		input:       ti,
	}
	m.AddLogEntry("=== Blackjack ===")
	if opts.ServerURL != "" {
		m.AddLogEntry("Connected to " + opts.ServerURL)
	}
	m.AddLogEntry("Type help for commands")
	return m
}

// Init starts the cursor and the server listener.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listen())
}

func (m *Model) listen() tea.Cmd {
	incoming := m.session.Incoming()
	return func() tea.Msg {
		msg, ok := <-incoming
		if !ok {
			return disconnectedMsg{}
		}
		return serverMsg{msg: msg}
	}
}

// Update handles input, resizes and server messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case serverMsg:
		m.handleServer(msg.msg)
		return m, m.listen()

	case disconnectedMsg:
		m.AddLogEntry(ErrorStyle.Render("Disconnected from server"))
		m.quitting = true
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			line := m.input.Value()
			m.input.SetValue("")
			if cmd := m.submit(line); cmd != nil {
				return m, cmd
			}
		case "pgup":
			m.logViewport.HalfPageUp()
		case "pgdown":
			m.logViewport.HalfPageDown()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit runs one prompt line. It returns tea.Quit when the player leaves
// the program.
func (m *Model) submit(line string) tea.Cmd {
	in, err := parseInput(line)
	if err != nil {
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
		return nil
	}

	switch in.Kind {
	case InputNone:
		return nil
	case InputQuit:
		m.quitting = true
		return tea.Quit
	case InputHelp:
		for _, l := range HelpLines {
			m.AddLogEntry(MutedStyle.Render("  " + l))
		}
		return nil
	}

	m.AddLogEntry(MutedStyle.Render("> " + strings.TrimSpace(line)))
	if err := m.send(in); err != nil {
		m.logger.Warn("Command failed", "input", line, "error", err)
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
	}
	return nil
}

func (m *Model) send(in Input) error {
	switch in.Kind {
	case InputCreate:
		return m.session.CreateRoom(m.nameOr(in.Name))
	case InputJoin:
		return m.session.JoinRoom(in.Code, m.nameOr(in.Name))
	}

	if m.view == nil {
		return fmt.Errorf("not in a room: create or join one first")
	}
	switch in.Kind {
	case InputLeave:
		return m.session.LeaveRoom()
	case InputSeat:
		return m.session.TakeSeat()
	case InputStandUp:
		return m.session.StandUp()
	case InputBet:
		amount := in.Amount
		if amount == 0 {
			amount = m.opts.DefaultBet
		}
		return m.session.PlaceBet(amount)
	case InputStart:
		return m.session.StartRound()
	case InputAction:
		return m.session.Act(in.Action)
	case InputInsurance:
		return m.session.BuyInsurance(in.Buy)
	}
	return nil
}

func (m *Model) nameOr(name string) string {
	if name != "" {
		return name
	}
	return m.opts.Name
}

func (m *Model) handleServer(msg *protocol.Message) {
	switch msg.Type {
	case protocol.TypeState:
		var v blackjack.View
		if err := msg.Decode(&v); err != nil {
			m.logger.Error("Bad state from server", "error", err)
			return
		}
		if v.You == "" {
			return
		}
		for _, line := range describeChange(m.view, v) {
			m.AddLogEntry(line)
		}
		m.view = &v

	case protocol.TypeError:
		var e protocol.Error
		if err := msg.Decode(&e); err != nil {
			m.logger.Error("Bad error from server", "error", err)
			return
		}
		m.AddLogEntry(ErrorStyle.Render(e.Message))

	case protocol.TypeLeft:
		var left protocol.Left
		if err := msg.Decode(&left); err != nil {
			return
		}
		if m.view != nil && m.view.Code == left.Code {
			m.view = nil
		}
		m.AddLogEntry("Left room " + left.Code)

	default:
		m.logger.Debug("Ignoring message", "type", msg.Type)
	}
}

// AddLogEntry appends to the game log and scrolls to the bottom.
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// View renders the log on the left, the table on the right and the prompt
// underneath.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	prompt := m.renderPrompt()
	promptHeight := lipgloss.Height(prompt)
	promptPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(m.width-2, 1)).
		Render(prompt)

	tableContent := MutedStyle.Render("Not in a room")
	if m.view != nil {
		tableContent = renderTable(*m.view)
	}
	paneHeight := max(m.height-promptHeight-4, 1)
	tableWidth := max(lipgloss.Width(tableContent), 36)
	tablePane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(tableWidth).
		Height(paneHeight).
		Render(tableContent)

	m.logViewport.Width = max(m.width-tableWidth-4, 1)
	m.logViewport.Height = paneHeight
	logPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(m.logViewport.Width).
		Height(paneHeight).
		Render(m.logViewport.View())

	top := lipgloss.JoinHorizontal(lipgloss.Top, logPane, tablePane)
	return lipgloss.JoinVertical(lipgloss.Top, top, promptPane)
}

func (m *Model) renderPrompt() string {
	var content strings.Builder
	if m.view != nil && m.view.Turn != nil && *m.view.Turn == m.view.You {
		if m.view.Phase == "insurance" {
			content.WriteString(DecisionStyle.Render("Insurance? [insurance yes] [insurance no]"))
		} else {
			content.WriteString(DecisionStyle.Render("Actions: [hit] [stand] [double] [split] [surrender]"))
		}
	} else {
		content.WriteString(MutedStyle.Render("Waiting..."))
	}
	content.WriteString("\n")
	content.WriteString(m.input.View())
	content.WriteString("\n")
	content.WriteString(MutedStyle.Render("Enter to submit • PgUp/PgDn scroll • Ctrl+C to quit"))
	return content.String()
}
