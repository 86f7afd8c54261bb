package engine

import (
	"fmt"

	"github.com/nathoo/clinicquest/engine/dialogue"
	"github.com/nathoo/clinicquest/engine/effects"
	"github.com/nathoo/clinicquest/engine/state"
	"github.com/nathoo/clinicquest/engine/world"
	"github.com/nathoo/clinicquest/types"
)

// attack deals amount damage to an enemy at the protagonist's location.
// Enemies do not strike back. An enemy reaching zero hp is defeated and
// its xp goes to the protagonist; otherwise it answers with a taunt.
func attack(w *world.World, p *types.Protagonist, enemyID string, amount int, rng *RNG) ([]types.Event, []string, error) {
	tmpl, err := w.Character(enemyID)
	if err != nil {
		return nil, nil, err
	}
	if tmpl.Kind != types.KindEnemy {
		return nil, nil, fmt.Errorf("attack %q: not an enemy: %w", enemyID, types.ErrNotFound)
	}
	if tmpl.Location != p.Location {
		return nil, nil, fmt.Errorf("attack %q: %w", enemyID, types.ErrNotHere)
	}
	if state.IsDefeated(p, enemyID) {
		return nil, nil, fmt.Errorf("attack %q: %w", enemyID, types.ErrAlreadyDefeated)
	}

	enemy, err := state.Enemy(w, p, enemyID)
	if err != nil {
		return nil, nil, err
	}
	if enemy.Combat == nil {
		return nil, nil, fmt.Errorf("enemy %q has no combat stats: %w", enemyID, types.ErrDanglingReference)
	}

	down := effects.TakeHit(enemy.Combat, amount, w.Rules().MaxHP)
	evts := []types.Event{{
		Type: "enemy_hit",
		Data: map[string]any{"enemy": enemyID, "name": enemy.Name, "amount": amount, "hp": enemy.Combat.HP},
	}}
	out := []string{fmt.Sprintf("You hit %s for %d. (%s: %d hp)", enemy.Name, amount, enemy.Name, enemy.Combat.HP)}

	if !down {
		p.Encounters[enemyID] = enemy
		out = append(out, dialogue.Taunt(enemy, rng.Intn))
		return evts, out, nil
	}

	if ev, ok := state.Defeat(p, enemy); ok {
		evts = append(evts, ev)
	}
	if bye := dialogue.Farewell(enemy); bye != "" {
		out = append(out, bye)
	}
	out = append(out, fmt.Sprintf("%s is defeated.", enemy.Name))
	if enemy.XP > 0 {
		out = append(out, fmt.Sprintf("You gain %d xp.", enemy.XP))
	}
	drops, err := w.CharacterItems(enemyID)
	if err != nil {
		return nil, nil, err
	}
	if len(drops) > 0 {
		out = append(out, fmt.Sprintf("%s dropped: %s.", enemy.Name, itemNames(drops)))
	}
	return evts, out, nil
}

// strikeAmount is the damage a text-command attack deals.
func strikeAmount(p *types.Protagonist) int {
	if s := state.Strength(p); s > 1 {
		return s
	}
	return 1
}
