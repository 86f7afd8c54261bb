package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/clinicquest/engine/state"
)

// renderStatusBar produces a full-width inverted status line showing the
// current location, the protagonist's stats, active quests and turn count.
func (m Model) renderStatusBar() string {
	p, err := m.engine.Protagonist(m.ctx, m.playerID)
	if err != nil {
		return styleStatusBar.Width(m.width).Render(" " + m.engine.World().Game.Title)
	}
	w := m.engine.World()

	left := fmt.Sprintf(" %s | HP %d/%d  STR %d  XP %d",
		w.Name(p.Location), state.HP(p), w.Rules().MaxHP, state.Strength(p), p.XP)
	right := fmt.Sprintf("T:%d ", p.TurnCount)

	// Show quest names if they fit, otherwise just the count.
	if active := state.ActiveQuests(p); len(active) > 0 {
		names := make([]string, 0, len(active))
		for _, id := range active {
			names = append(names, w.Name(id))
		}
		candidate := fmt.Sprintf("Quests: %s | T:%d ", strings.Join(names, ", "), p.TurnCount)
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		} else {
			right = fmt.Sprintf("Quests: %d | T:%d ", len(active), p.TurnCount)
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	if state.IsOut(p) {
		return styleStatusBarOut.Width(m.width).Render(bar)
	}
	return styleStatusBar.Width(m.width).Render(bar)
}
