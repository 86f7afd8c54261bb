package inventory

import (
	"errors"
	"testing"

	"github.com/nathoo/clinicquest/engine/state"
	"github.com/nathoo/clinicquest/engine/world"
	"github.com/nathoo/clinicquest/engine/world/worldtest"
	"github.com/nathoo/clinicquest/types"
)

func testSetup(location string) (*world.World, *types.Protagonist) {
	w := worldtest.Clinic()
	p := state.NewProtagonist(w, "p1", "Vasya")
	p.Location = location
	return w, p
}

func TestTake(t *testing.T) {
	w, p := testSetup(worldtest.Therapist)

	events, err := Take(w, p, worldtest.Donut)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].Type != "item_taken" {
		t.Errorf("expected item_taken, got %v", events)
	}
	h, ok := p.Held[worldtest.Donut]
	if !ok {
		t.Fatal("expected donut held")
	}
	if h.UsesLeft == nil || *h.UsesLeft != 1 {
		t.Errorf("expected 1 use left, got %v", h.UsesLeft)
	}

	if _, err := Take(w, p, worldtest.Donut); !errors.Is(err, types.ErrNotHere) {
		t.Errorf("expected ErrNotHere on second take, got %v", err)
	}
}

func TestTake_WrongLocation(t *testing.T) {
	w, p := testSetup(worldtest.Registry)
	if _, err := Take(w, p, worldtest.Donut); !errors.Is(err, types.ErrNotHere) {
		t.Errorf("expected ErrNotHere, got %v", err)
	}
	if _, err := Take(w, p, "scalpel"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTake_EnemyDrop(t *testing.T) {
	w, p := testSetup(worldtest.Registry)

	if _, err := Take(w, p, worldtest.Sandwich); !errors.Is(err, types.ErrNotHere) {
		t.Fatalf("expected drop to be unreachable before defeat, got %v", err)
	}

	p.Defeated[worldtest.Granny] = true
	if _, err := Take(w, p, worldtest.Sandwich); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !state.HasItem(p, worldtest.Sandwich) {
		t.Error("expected sandwich held")
	}
}

func TestUse_SingleUse(t *testing.T) {
	w, p := testSetup(worldtest.Therapist)
	if _, err := Take(w, p, worldtest.Donut); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events, err := Use(w, p, worldtest.Donut, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if events[0].Type != "item_used" {
		t.Errorf("expected item_used first, got %q", events[0].Type)
	}
	if p.Combat.Strength != 15 {
		t.Errorf("expected strength 15, got %d", p.Combat.Strength)
	}
	if p.Applied[worldtest.StrengthUp] != 1 {
		t.Errorf("expected applied record, got %v", p.Applied)
	}

	_, err = Use(w, p, worldtest.Donut, "")
	if !errors.Is(err, types.ErrAlreadyUsed) {
		t.Errorf("expected ErrAlreadyUsed, got %v", err)
	}
	if p.Combat.Strength != 15 {
		t.Errorf("failed use changed strength to %d", p.Combat.Strength)
	}
}

func TestUse_NUses(t *testing.T) {
	w, p := testSetup(worldtest.Registry)
	three := 3
	w.Items["pills"] = types.Item{
		ID: "pills", Name: "Pills", EffectID: worldtest.HPUp, Uses: &three,
		Owner: types.Owner{Kind: types.OwnerLocation, ID: worldtest.Registry},
	}
	state.Give(p, w.Items["pills"])

	for i := 0; i < 3; i++ {
		if _, err := Use(w, p, "pills", ""); err != nil {
			t.Fatalf("use %d: unexpected error: %v", i+1, err)
		}
	}
	if _, err := Use(w, p, "pills", ""); !errors.Is(err, types.ErrAlreadyUsed) {
		t.Errorf("expected ErrAlreadyUsed after 3 uses, got %v", err)
	}
}

func TestUse_Unlimited(t *testing.T) {
	w, p := testSetup(worldtest.Registry)
	w.Items["badge"] = types.Item{
		ID: "badge", EffectID: worldtest.SideQuestXP,
		Owner: types.Owner{Kind: types.OwnerLocation, ID: worldtest.Registry},
	}
	state.Give(p, w.Items["badge"])

	for i := 0; i < 5; i++ {
		if _, err := Use(w, p, "badge", p.ID); err != nil {
			t.Fatalf("use %d: unexpected error: %v", i+1, err)
		}
	}
	if p.XP != 250 {
		t.Errorf("expected xp 250, got %d", p.XP)
	}
}

func TestUse_Errors(t *testing.T) {
	w, p := testSetup(worldtest.Registry)
	if _, err := Use(w, p, worldtest.Donut, ""); !errors.Is(err, types.ErrNotHeld) {
		t.Errorf("expected ErrNotHeld, got %v", err)
	}

	w.Items["leaflet"] = types.Item{
		ID: "leaflet", Owner: types.Owner{Kind: types.OwnerLocation, ID: worldtest.Registry},
	}
	state.Give(p, w.Items["leaflet"])
	if _, err := Use(w, p, "leaflet", ""); !errors.Is(err, types.ErrNoEffect) {
		t.Errorf("expected ErrNoEffect, got %v", err)
	}
	if p.Held["leaflet"].UsesLeft != nil {
		t.Error("failed use must not touch the counter")
	}
}

func TestUse_OnEnemy(t *testing.T) {
	w, p := testSetup(worldtest.Registry)
	w.Effects["poison"] = types.SideEffect{ID: "poison", HPChange: -10}
	one := 1
	w.Items["vial"] = types.Item{
		ID: "vial", EffectID: "poison", Uses: &one,
		Owner: types.Owner{Kind: types.OwnerLocation, ID: worldtest.Registry},
	}
	state.Give(p, w.Items["vial"])

	events, err := Use(w, p, "vial", worldtest.Granny)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !state.IsDefeated(p, worldtest.Granny) {
		t.Error("expected granny defeated")
	}
	if len(events) != 2 || events[1].Type != "enemy_defeated" {
		t.Errorf("expected item_used then enemy_defeated, got %v", events)
	}
	if p.Combat.HP != 10 {
		t.Errorf("enemy-targeted use changed protagonist hp to %d", p.Combat.HP)
	}
	if w.Characters[worldtest.Granny].Combat.HP != 10 {
		t.Error("world template mutated")
	}
}

func TestUse_OnEnemyElsewhere(t *testing.T) {
	w, p := testSetup(worldtest.Therapist)
	state.Give(p, w.Items[worldtest.Donut])

	_, err := Use(w, p, worldtest.Donut, worldtest.Granny)
	if !errors.Is(err, types.ErrNotHere) {
		t.Errorf("expected ErrNotHere, got %v", err)
	}
	if *p.Held[worldtest.Donut].UsesLeft != 1 {
		t.Error("failed use consumed the item")
	}
}
