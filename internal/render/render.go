// Package render draws the client state for the terminal.
package render

import (
	"fmt"
	"strings"
	"time"

	"tictacgo/internal/domain"

	"github.com/charmbracelet/lipgloss"
)

var (
	clrBorder = lipgloss.Color("#30363d")
	clrSubtle = lipgloss.Color("#8b949e")
	clrGold   = lipgloss.Color("#e3b341")
	clrGreen  = lipgloss.Color("#3fb950")
	clrRed    = lipgloss.Color("#f85149")
	clrTitle  = lipgloss.Color("#58a6ff")

	markColor = map[string]lipgloss.Color{
		string(domain.SymbolX): lipgloss.Color("#44AAFF"),
		string(domain.SymbolO): lipgloss.Color("#FF6B6B"),
	}
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func bold(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

func box(content string, borderClr lipgloss.Color) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderClr).
		Padding(0, 1).
		Render(content)
}

// Board draws the grid with row/col labels and a status line underneath.
// role is the locally stored marker for the game, "" when unknown.
func Board(g domain.GameState, role domain.Symbol) string {
	var b strings.Builder

	title := fmt.Sprintf("Game %s", g.GameID)
	if g.Mode != "" {
		title += fmt.Sprintf(" (%s)", g.Mode)
	}
	b.WriteString(bold(clrTitle).Render(title))
	b.WriteString("\n")
	if role != "" {
		b.WriteString(fg(clrSubtle).Render("You play " + string(role)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString("    0   1   2\n")
	for r := 0; r < domain.BoardSize; r++ {
		cells := make([]string, domain.BoardSize)
		for c := 0; c < domain.BoardSize; c++ {
			cells[c] = " " + cell(g.Board[r][c]) + " "
		}
		fmt.Fprintf(&b, "%d  %s\n", r, strings.Join(cells, fg(clrBorder).Render("│")))
		if r < domain.BoardSize-1 {
			b.WriteString("   " + fg(clrBorder).Render("───┼───┼───") + "\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(Status(g, role))

	return box(b.String(), clrBorder)
}

func cell(mark string) string {
	if mark == "" {
		return fg(clrSubtle).Render("·")
	}
	if c, ok := markColor[mark]; ok {
		return bold(c).Render(mark)
	}
	return mark
}

// Status is the one-line summary under the board.
func Status(g domain.GameState, role domain.Symbol) string {
	switch g.Status {
	case domain.GameStatusWaiting:
		return fg(clrSubtle).Render("Waiting for an opponent...")
	case domain.GameStatusFinished:
		switch {
		case g.Winner == domain.WinnerDraw:
			return bold(clrGold).Render("Draw")
		case role != "" && g.Winner == string(role):
			return bold(clrGreen).Render("You win!")
		case role != "" && g.Winner != "":
			return bold(clrRed).Render("You lose")
		case g.Winner != "":
			return bold(clrGold).Render(g.Winner + " wins")
		}
		return bold(clrGold).Render("Game over")
	}

	if g.CurrentTurn == "" {
		return fg(clrSubtle).Render(string(g.Status))
	}
	if role != "" && g.CurrentTurn == string(role) {
		return bold(clrGreen).Render("Your turn")
	}
	return fg(clrSubtle).Render("Turn: " + g.CurrentTurn)
}

// Lobby lists joinable games.
func Lobby(games []domain.GameState) string {
	if len(games) == 0 {
		return fg(clrSubtle).Render("No open games. Create one with: create PVP")
	}

	var b strings.Builder
	b.WriteString(bold(clrTitle).Render("Open games"))
	for _, g := range games {
		host := "?"
		if g.CreatedBy != nil && g.CreatedBy.Name != "" {
			host = g.CreatedBy.Name
		}
		fmt.Fprintf(&b, "\n  %s  %s", fg(clrGold).Render(g.GameID), fg(clrSubtle).Render("hosted by "+host))
	}
	return box(b.String(), clrBorder)
}

func Stats(s domain.Stats) string {
	return fmt.Sprintf("%s %s  %s %s  %s %s",
		fg(clrSubtle).Render("Wins"), bold(clrGreen).Render(fmt.Sprint(s.Wins)),
		fg(clrSubtle).Render("Losses"), bold(clrRed).Render(fmt.Sprint(s.Losses)),
		fg(clrSubtle).Render("Draws"), bold(clrGold).Render(fmt.Sprint(s.Draws)),
	)
}

// History lists finished games, newest first.
func History(records []domain.LocalGameRecord) string {
	if len(records) == 0 {
		return fg(clrSubtle).Render("No finished games yet.")
	}

	var b strings.Builder
	b.WriteString(bold(clrTitle).Render("History"))
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		when := time.UnixMilli(rec.Timestamp).Format("2006-01-02 15:04")
		fmt.Fprintf(&b, "\n  %s  %-4s vs %s  %s",
			fg(clrSubtle).Render(when), result(rec.Result), rec.Opponent, fg(clrSubtle).Render(rec.GameID))
	}
	return b.String()
}

func result(r domain.GameResult) string {
	switch r {
	case domain.GameResultWin:
		return bold(clrGreen).Render(string(r))
	case domain.GameResultLoss:
		return bold(clrRed).Render(string(r))
	}
	return bold(clrGold).Render(string(r))
}

// Error renders msg in red, or nothing for "".
func Error(msg string) string {
	if msg == "" {
		return ""
	}
	return bold(clrRed).Render(msg)
}

func Player(p domain.Player) string {
	return fmt.Sprintf("%s %s", bold(clrTitle).Render(p.Name), fg(clrSubtle).Render("("+p.ID+")"))
}
