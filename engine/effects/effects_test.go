package effects

import (
	"testing"

	"github.com/nathoo/clinicquest/types"
)

const maxHP = 10

func testProtagonist() *types.Protagonist {
	return &types.Protagonist{
		Character: types.Character{
			ID:     "hero",
			Kind:   types.KindProtagonist,
			Combat: &types.CombatStats{HP: 10, Strength: 10},
		},
		Applied: map[string]int{},
	}
}

func TestTakeHit(t *testing.T) {
	tests := []struct {
		name     string
		hp       int
		amount   int
		wantHP   int
		defeated bool
	}{
		{"partial", 10, 5, 5, false},
		{"exact", 5, 5, 0, true},
		{"overkill clamps at zero", 3, 7, 0, true},
		{"zero damage", 4, 0, 4, false},
		{"negative heals", 4, -3, 7, false},
		{"negative heal clamps at max", 9, -5, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &types.CombatStats{HP: tt.hp}
			got := TakeHit(c, tt.amount, maxHP)
			if c.HP != tt.wantHP {
				t.Errorf("expected hp %d, got %d", tt.wantHP, c.HP)
			}
			if got != tt.defeated {
				t.Errorf("expected defeated=%v, got %v", tt.defeated, got)
			}
		})
	}
}

func TestHeal_IdempotentAtCap(t *testing.T) {
	c := &types.CombatStats{HP: 10}
	Heal(c, 5, maxHP)
	Heal(c, 5, maxHP)
	if c.HP != 10 {
		t.Errorf("expected hp to stay at 10, got %d", c.HP)
	}
}

func TestHeal_NeverBelowZero(t *testing.T) {
	c := &types.CombatStats{HP: 2}
	Heal(c, -5, maxHP)
	if c.HP != 0 {
		t.Errorf("expected hp 0, got %d", c.HP)
	}
}

func TestApplyCancel_RoundTrip(t *testing.T) {
	se := types.SideEffect{ID: "mood", HPChange: -1, XPChange: 3, StrengthChange: -1}
	c := &types.Character{Combat: &types.CombatStats{HP: 5, Strength: 10}, XP: 1}

	Apply(se, c, maxHP)
	if c.Combat.HP != 4 || c.Combat.Strength != 9 || c.XP != 4 {
		t.Fatalf("after apply: hp=%d strength=%d xp=%d", c.Combat.HP, c.Combat.Strength, c.XP)
	}
	Cancel(se, c, maxHP)
	if c.Combat.HP != 5 || c.Combat.Strength != 10 || c.XP != 1 {
		t.Errorf("after cancel: hp=%d strength=%d xp=%d", c.Combat.HP, c.Combat.Strength, c.XP)
	}
}

func TestApply_HPClamped(t *testing.T) {
	se := types.SideEffect{ID: "hp_up", HPChange: 5}
	c := &types.Character{Combat: &types.CombatStats{HP: 10}}
	Apply(se, c, maxHP)
	if c.Combat.HP != 10 {
		t.Errorf("expected hp 10, got %d", c.Combat.HP)
	}
}

func TestApply_NoCombatStats(t *testing.T) {
	se := types.SideEffect{ID: "xp", HPChange: 5, XPChange: 50}
	c := &types.Character{Kind: types.KindNPC}
	Apply(se, c, maxHP)
	if c.XP != 50 {
		t.Errorf("expected xp 50, got %d", c.XP)
	}
}

func TestApplyTo_Records(t *testing.T) {
	p := testProtagonist()
	se := types.SideEffect{ID: "strength_up", Name: "+5 strength", StrengthChange: 5}

	ev := ApplyTo(p, se, maxHP)
	ApplyTo(p, se, maxHP)

	if ev.Type != "effect_applied" {
		t.Errorf("expected effect_applied, got %q", ev.Type)
	}
	if p.Applied["strength_up"] != 2 {
		t.Errorf("expected 2 recorded applications, got %d", p.Applied["strength_up"])
	}
	if p.Combat.Strength != 20 {
		t.Errorf("expected strength 20, got %d", p.Combat.Strength)
	}
}

func TestCancelOn(t *testing.T) {
	p := testProtagonist()
	se := types.SideEffect{ID: "mood", HPChange: -1, StrengthChange: -1}

	if _, ok := CancelOn(p, se, maxHP); ok {
		t.Fatal("expected no-op cancel without an application")
	}
	if p.Combat.Strength != 10 {
		t.Errorf("no-op cancel changed strength to %d", p.Combat.Strength)
	}

	ApplyTo(p, se, maxHP)
	ev, ok := CancelOn(p, se, maxHP)
	if !ok {
		t.Fatal("expected cancel to succeed")
	}
	if ev.Type != "effect_cancelled" {
		t.Errorf("expected effect_cancelled, got %q", ev.Type)
	}
	if p.Combat.HP != 10 || p.Combat.Strength != 10 {
		t.Errorf("expected stats restored, got hp=%d strength=%d", p.Combat.HP, p.Combat.Strength)
	}
	if _, ok := p.Applied["mood"]; ok {
		t.Error("expected record removed after last cancel")
	}
	if _, ok := CancelOn(p, se, maxHP); ok {
		t.Error("expected second cancel to be a no-op")
	}
}

func TestCancelOn_NilApplied(t *testing.T) {
	p := testProtagonist()
	p.Applied = nil
	if _, ok := CancelOn(p, types.SideEffect{ID: "x"}, maxHP); ok {
		t.Error("expected no-op on nil record")
	}
}

func TestCancelOn_UndoesClampedHeal(t *testing.T) {
	p := testProtagonist()
	p.Combat.HP = 9
	calm := types.SideEffect{ID: "calm", HPChange: 3}

	ApplyTo(p, calm, maxHP)
	if p.Combat.HP != 10 {
		t.Fatalf("expected hp 10 after heal, got %d", p.Combat.HP)
	}
	if p.AppliedHP["calm"] != 1 {
		t.Errorf("expected 1 hp recorded, got %d", p.AppliedHP["calm"])
	}
	CancelOn(p, calm, maxHP)
	if p.Combat.HP != 9 {
		t.Errorf("expected hp back at 9, got %d", p.Combat.HP)
	}
	if _, ok := p.AppliedHP["calm"]; ok {
		t.Error("expected hp record removed after last cancel")
	}
}

func TestCancelOn_SharesRecordedHP(t *testing.T) {
	p := testProtagonist()
	p.Combat.HP = 7
	calm := types.SideEffect{ID: "calm", HPChange: 2}

	ApplyTo(p, calm, maxHP) // 7 -> 9
	ApplyTo(p, calm, maxHP) // 9 -> 10, clamped
	if p.AppliedHP["calm"] != 3 {
		t.Fatalf("expected 3 hp recorded, got %d", p.AppliedHP["calm"])
	}
	CancelOn(p, calm, maxHP)
	CancelOn(p, calm, maxHP)
	if p.Combat.HP != 7 {
		t.Errorf("expected hp back at 7, got %d", p.Combat.HP)
	}
}

func TestCancelOn_FallsBackToNominal(t *testing.T) {
	p := testProtagonist()
	p.Combat.HP = 5
	p.Applied["mood"] = 1
	p.AppliedHP = nil

	CancelOn(p, types.SideEffect{ID: "mood", HPChange: -1}, maxHP)
	if p.Combat.HP != 6 {
		t.Errorf("expected hp 6, got %d", p.Combat.HP)
	}
}
