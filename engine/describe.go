package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nathoo/clinicquest/engine/resolve"
	"github.com/nathoo/clinicquest/engine/state"
	"github.com/nathoo/clinicquest/types"
)

// describeView produces the standard location description output.
func (e *Engine) describeView(v types.View) []string {
	output := []string{v.Location.Name + ". " + v.Location.Description}

	if len(v.Characters) > 0 {
		var names []string
		for _, c := range v.Characters {
			if c.Kind == types.KindEnemy {
				names = append(names, fmt.Sprintf("%s (%d hp)", c.Name, c.HP))
				continue
			}
			names = append(names, c.Name)
		}
		output = append(output, "You see: "+strings.Join(names, ", ")+".")
	}

	if items := append(append([]types.ItemView(nil), v.Items...), v.Drops...); len(items) > 0 {
		var names []string
		for _, it := range items {
			names = append(names, it.Name)
		}
		output = append(output, "Lying around: "+strings.Join(names, ", ")+".")
	}

	if len(v.Neighbours) > 0 {
		var names []string
		for _, n := range v.Neighbours {
			names = append(names, n.Name)
		}
		output = append(output, "Exits: "+strings.Join(names, ", ")+".")
	}
	return output
}

// describeEffect renders a side-effect's stat deltas, e.g. "(+5 strength)".
func describeEffect(se types.SideEffect) string {
	var parts []string
	add := func(n int, stat string) {
		if n != 0 {
			parts = append(parts, fmt.Sprintf("%+d %s", n, stat))
		}
	}
	add(se.HPChange, "hp")
	add(se.StrengthChange, "strength")
	add(se.XPChange, "xp")
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// describeStats renders the protagonist's stat line.
func (e *Engine) describeStats(p *types.Protagonist) string {
	return fmt.Sprintf("%s: hp %d/%d, strength %d, xp %d.",
		p.Name, state.HP(p), e.world.Rules().MaxHP, state.Strength(p), p.XP)
}

func itemNames(items []types.Item) string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	return strings.Join(names, ", ")
}

// describeError turns a rejected action into a player-facing message.
func describeError(err error) string {
	var nf *resolve.NotFoundError
	var amb *resolve.AmbiguityError
	switch {
	case errors.As(err, &nf), errors.As(err, &amb):
		return capitalize(err.Error()) + "."
	case errors.Is(err, types.ErrGameOver):
		return "Game over. Use /load to restore a save or /quit to exit."
	case errors.Is(err, types.ErrNotNeighbour):
		return "You can't get there from here."
	case errors.Is(err, types.ErrNotHere):
		return "That isn't here."
	case errors.Is(err, types.ErrNotHeld):
		return "You don't have that."
	case errors.Is(err, types.ErrAlreadyUsed):
		return "That's used up."
	case errors.Is(err, types.ErrNoEffect):
		return "Nothing happens."
	case errors.Is(err, types.ErrAlreadyDefeated):
		return "They're already beaten."
	case errors.Is(err, types.ErrQuestNotReady):
		return "That quest isn't ready to hand in."
	case errors.Is(err, types.ErrNotFound):
		return "You can't do that."
	default:
		return "Something went wrong."
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
