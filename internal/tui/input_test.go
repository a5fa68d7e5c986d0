package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInput(t *testing.T) {
	t.Parallel()
	tests := []struct {
		line string
		want Input
	}{
		{"", Input{Kind: InputNone}},
		{"   ", Input{Kind: InputNone}},
		{"help", Input{Kind: InputHelp}},
		{"/quit", Input{Kind: InputQuit}},
		{"create", Input{Kind: InputCreate}},
		{"create Ann Lee", Input{Kind: InputCreate, Name: "Ann Lee"}},
		{"join abcd", Input{Kind: InputJoin, Code: "ABCD"}},
		{"join K2Q9 Bob", Input{Kind: InputJoin, Code: "K2Q9", Name: "Bob"}},
		{"leave", Input{Kind: InputLeave}},
		{"sit", Input{Kind: InputSeat}},
		{"seat", Input{Kind: InputSeat}},
		{"stand up", Input{Kind: InputStandUp}},
		{"standup", Input{Kind: InputStandUp}},
		{"bet", Input{Kind: InputBet}},
		{"bet 25", Input{Kind: InputBet, Amount: 25}},
		{"bet $40", Input{Kind: InputBet, Amount: 40}},
		{"start", Input{Kind: InputStart}},
		{"deal", Input{Kind: InputStart}},
		{"hit", Input{Kind: InputAction, Action: "hit"}},
		{"H", Input{Kind: InputAction, Action: "hit"}},
		{"stand", Input{Kind: InputAction, Action: "stand"}},
		{"s", Input{Kind: InputAction, Action: "stand"}},
		{"double", Input{Kind: InputAction, Action: "double"}},
		{"split", Input{Kind: InputAction, Action: "split"}},
		{"surrender", Input{Kind: InputAction, Action: "surrender"}},
		{"insurance", Input{Kind: InputInsurance, Buy: true}},
		{"insurance yes", Input{Kind: InputInsurance, Buy: true}},
		{"insurance no", Input{Kind: InputInsurance, Buy: false}},
		{"decline", Input{Kind: InputInsurance, Buy: false}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := parseInput(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseInputRejects(t *testing.T) {
	t.Parallel()
	for _, line := range []string{
		"join",
		"bet ten",
		"bet -5",
		"bet 0",
		"bet 5 10",
		"hit me",
		"insurance maybe",
		"fold",
	} {
		t.Run(line, func(t *testing.T) {
			_, err := parseInput(line)
			assert.Error(t, err)
		})
	}
}
