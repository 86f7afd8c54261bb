// Package effects implements stat mutation for characters: hits, heals and
// side-effect application. Every hp change goes through the [0, maxHP] clamp.
package effects

import "github.com/nathoo/clinicquest/types"

// TakeHit deals amount damage. A negative amount heals instead.
// Returns true when hp has reached zero.
func TakeHit(c *types.CombatStats, amount, maxHP int) bool {
	if amount < 0 {
		Heal(c, -amount, maxHP)
		return c.HP <= 0
	}
	c.HP = clamp(c.HP-amount, maxHP)
	return c.HP <= 0
}

// Heal restores amount hp, capped at maxHP. A negative amount is a hit.
func Heal(c *types.CombatStats, amount, maxHP int) {
	c.HP = clamp(c.HP+amount, maxHP)
}

// Apply adds the side-effect's deltas to a character. Characters without
// combat stats only receive the xp delta.
func Apply(se types.SideEffect, c *types.Character, maxHP int) {
	shift(c, se.HPChange, se.XPChange, se.StrengthChange, maxHP)
}

// Cancel subtracts the side-effect's deltas from a character.
func Cancel(se types.SideEffect, c *types.Character, maxHP int) {
	shift(c, -se.HPChange, -se.XPChange, -se.StrengthChange, maxHP)
}

// ApplyTo applies a side-effect to the protagonist and records the
// application, with the hp it actually changed after clamping, so it can be
// cancelled later.
func ApplyTo(p *types.Protagonist, se types.SideEffect, maxHP int) types.Event {
	before := hp(&p.Character)
	Apply(se, &p.Character, maxHP)
	if p.Applied == nil {
		p.Applied = map[string]int{}
	}
	if p.AppliedHP == nil {
		p.AppliedHP = map[string]int{}
	}
	p.Applied[se.ID]++
	p.AppliedHP[se.ID] += hp(&p.Character) - before
	return statEvent("effect_applied", p, se)
}

// CancelOn cancels one recorded application of a side-effect. The hp part
// reverses what the application actually changed, so an effect clamped at
// maxHP or zero is not over-reversed. With several applications outstanding
// each cancel takes an even share of the recorded hp change. It is a no-op
// returning false when none is outstanding.
func CancelOn(p *types.Protagonist, se types.SideEffect, maxHP int) (types.Event, bool) {
	n := p.Applied[se.ID]
	if n <= 0 {
		return types.Event{}, false
	}
	undo, ok := p.AppliedHP[se.ID]
	if ok {
		undo /= n
	} else {
		undo = se.HPChange
	}
	shift(&p.Character, -undo, -se.XPChange, -se.StrengthChange, maxHP)

	p.Applied[se.ID]--
	if ok {
		p.AppliedHP[se.ID] -= undo
	}
	if p.Applied[se.ID] == 0 {
		delete(p.Applied, se.ID)
		delete(p.AppliedHP, se.ID)
	}
	return statEvent("effect_cancelled", p, se), true
}

func hp(c *types.Character) int {
	if c.Combat == nil {
		return 0
	}
	return c.Combat.HP
}

func shift(c *types.Character, hp, xp, strength, maxHP int) {
	c.XP += xp
	if c.Combat == nil {
		return
	}
	c.Combat.Strength += strength
	c.Combat.HP = clamp(c.Combat.HP+hp, maxHP)
}

func clamp(hp, maxHP int) int {
	if hp < 0 {
		return 0
	}
	if hp > maxHP {
		return maxHP
	}
	return hp
}

func statEvent(typ string, p *types.Protagonist, se types.SideEffect) types.Event {
	data := map[string]any{
		"effect": se.ID,
		"name":   se.Name,
		"xp":     p.XP,
	}
	if p.Combat != nil {
		data["hp"] = p.Combat.HP
		data["strength"] = p.Combat.Strength
	}
	return types.Event{Type: typ, Data: data}
}
