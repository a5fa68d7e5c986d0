package tui

import (
	"fmt"
	"strings"

	"github.com/lox/blackjack/internal/blackjack"
)

// formatCards colors cards by suit. Hidden is the number of face down cards
// to append.
func formatCards(cards []string, hidden int) string {
	formatted := make([]string, 0, len(cards)+hidden)
	for _, c := range cards {
		if strings.ContainsAny(c, "♥♦") {
			formatted = append(formatted, RedSuitStyle.Render(c))
		} else {
			formatted = append(formatted, BlackSuitStyle.Render(c))
		}
	}
	for range hidden {
		formatted = append(formatted, HoleCardStyle.Render("??"))
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

func formatValue(v blackjack.Value) string {
	if v.Soft {
		return fmt.Sprintf("soft %d", v.Total)
	}
	return fmt.Sprintf("%d", v.Total)
}

// holeHidden reports whether the dealer holds a card the view leaves out.
func holeHidden(v blackjack.View) bool {
	return (v.Phase == "insurance" || v.Phase == "dealing") && len(v.Dealer) == 1
}

// renderTable draws the room: dealer first, then every member with their
// hands. The hand awaiting a decision is marked.
func renderTable(v blackjack.View) string {
	var b strings.Builder

	b.WriteString(RoomBannerStyle.Render(fmt.Sprintf("Room %s", v.Code)))
	b.WriteString(" ")
	b.WriteString(MutedStyle.Render(fmt.Sprintf("%s · bets $%d-$%d · %d seats", v.Phase, v.MinBet, v.MaxBet, v.MaxPlayers)))
	b.WriteString("\n\n")

	switch {
	case len(v.Dealer) > 0:
		hidden := 0
		if holeHidden(v) {
			hidden = 1
		}
		b.WriteString(DealerStyle.Render("Dealer: ") + formatCards(v.Dealer, hidden))
		if v.DealerTotal != nil {
			b.WriteString(fmt.Sprintf(" %d", *v.DealerTotal))
		}
	case len(v.LastDealer) > 0:
		b.WriteString(MutedStyle.Render("Last dealer: ") + formatCards(v.LastDealer, 0))
		if v.LastDealerTotal != nil {
			b.WriteString(fmt.Sprintf(" %d", *v.LastDealerTotal))
		}
	default:
		b.WriteString(MutedStyle.Render("Dealer: waiting for bets"))
	}
	b.WriteString("\n\n")

	for _, p := range v.Players {
		b.WriteString(renderPlayer(v, p))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderPlayer(v blackjack.View, p blackjack.PlayerView) string {
	var b strings.Builder

	name := p.Name
	if p.Me {
		name += " (you)"
	}
	status := "watching"
	if p.Seated {
		status = "seated"
	}
	mine := v.Turn != nil && *v.Turn == p.ID
	if mine && len(p.Hands) == 0 {
		b.WriteString(TurnMarkerStyle.Render("▶ "))
	} else {
		b.WriteString("  ")
	}
	b.WriteString(fmt.Sprintf("%s %s %s", name, ChipStyle.Render(fmt.Sprintf("$%d", p.Chips)), MutedStyle.Render(status)))
	if p.Insured {
		b.WriteString(SideBetStyle.Render(" insured"))
	}
	if p.Insurance != "" {
		b.WriteString(" " + SideBetStyle.Render(p.Insurance))
	}
	b.WriteString("\n")

	for i, cards := range p.Hands {
		marker := "    "
		if mine && i == v.HandIndex {
			marker = TurnMarkerStyle.Render("  ▶ ")
		}
		line := fmt.Sprintf("%s%s %s", marker, formatCards(cards, 0), formatValue(p.HandValues[i]))
		if i < len(p.Bets) {
			line += fmt.Sprintf(" bet $%d", p.Bets[i])
		}
		if i < len(p.Surrendered) && p.Surrendered[i] {
			line += SideBetStyle.Render(" surrendered")
		}
		b.WriteString(line + "\n")
	}
	if len(p.Hands) == 0 && len(p.Bets) > 0 {
		b.WriteString(fmt.Sprintf("    bet $%d\n", p.Bets[0]))
	}
	if len(p.Hands) == 0 && len(p.LastResults) > 0 {
		b.WriteString("    " + renderResults(p.LastResults) + "\n")
	}
	return b.String()
}

func renderResults(results []string) string {
	styled := make([]string, len(results))
	for i, r := range results {
		styled[i] = resultStyle(r).Render(r)
	}
	return strings.Join(styled, ", ")
}

// describeChange turns the difference between two snapshots into plain log
// lines. prev is nil for the first snapshot of a room.
func describeChange(prev *blackjack.View, cur blackjack.View) []string {
	if prev == nil || prev.Code != cur.Code {
		return []string{fmt.Sprintf("Joined room %s, share the code to invite others", cur.Code)}
	}

	var lines []string
	if prev.Phase != cur.Phase {
		switch cur.Phase {
		case "insurance":
			lines = append(lines, "Dealer shows an ace: insurance yes|no")
		case "acting":
			lines = append(lines, "Cards dealt")
		case "dealer":
			lines = append(lines, "Dealer's turn")
		case "betting":
			if prev.Phase != "lobby" {
				lines = append(lines, roundSummary(cur)...)
			}
		}
	}

	if cur.Turn != nil && cur.You != "" && *cur.Turn == cur.You {
		if prev.Turn == nil || *prev.Turn != cur.You || prev.HandIndex != cur.HandIndex || prev.Phase != cur.Phase {
			switch cur.Phase {
			case "insurance":
				lines = append(lines, "Your call: insurance yes|no")
			case "acting":
				lines = append(lines, fmt.Sprintf("Your turn on hand %d: hit, stand, double, split or surrender", cur.HandIndex+1))
			}
		}
	}

	before := make(map[string]string, len(prev.Players))
	for _, p := range prev.Players {
		before[p.ID] = p.Name
	}
	for _, p := range cur.Players {
		if _, ok := before[p.ID]; !ok {
			lines = append(lines, fmt.Sprintf("%s joined", p.Name))
		}
		delete(before, p.ID)
	}
	for _, name := range before {
		lines = append(lines, fmt.Sprintf("%s left", name))
	}
	return lines
}

func roundSummary(v blackjack.View) []string {
	lines := []string{"Round over"}
	for _, p := range v.Players {
		if len(p.LastResults) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s: %s", p.Name, strings.Join(p.LastResults, ", ")))
	}
	return lines
}
