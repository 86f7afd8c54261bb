// Package inventory implements picking up and using items.
package inventory

import (
	"fmt"

	"github.com/nathoo/clinicquest/engine/effects"
	"github.com/nathoo/clinicquest/engine/state"
	"github.com/nathoo/clinicquest/engine/world"
	"github.com/nathoo/clinicquest/types"
)

// Take moves an item into the protagonist's held set. The item must lie in
// the current location or in the drop list of an enemy defeated here.
func Take(w *world.World, p *types.Protagonist, itemID string) ([]types.Event, error) {
	it, err := w.Item(itemID)
	if err != nil {
		return nil, err
	}
	if state.HasItem(p, itemID) || !Reachable(w, p, it) {
		return nil, fmt.Errorf("take %q: %w", itemID, types.ErrNotHere)
	}
	state.Give(p, it)
	return []types.Event{{
		Type: "item_taken",
		Data: map[string]any{"item": it.ID, "name": it.Name},
	}}, nil
}

// Reachable reports whether an item not yet held can be picked up at the
// protagonist's location.
func Reachable(w *world.World, p *types.Protagonist, it types.Item) bool {
	switch it.Owner.Kind {
	case types.OwnerLocation:
		return it.Owner.ID == p.Location
	case types.OwnerCharacter:
		holder, ok := w.Characters[it.Owner.ID]
		return ok && holder.Kind == types.KindEnemy &&
			holder.Location == p.Location && state.IsDefeated(p, holder.ID)
	default:
		return false
	}
}

// Use spends one use of a held item and applies its side-effect to the
// protagonist (targetID "" or the protagonist's ID) or to an enemy at the
// current location.
func Use(w *world.World, p *types.Protagonist, itemID, targetID string) ([]types.Event, error) {
	h, ok := p.Held[itemID]
	if !ok {
		return nil, fmt.Errorf("use %q: %w", itemID, types.ErrNotHeld)
	}
	if h.UsesLeft != nil && *h.UsesLeft <= 0 {
		return nil, fmt.Errorf("use %q: %w", itemID, types.ErrAlreadyUsed)
	}
	se, hasEffect, err := w.ItemEffect(itemID)
	if err != nil {
		return nil, err
	}
	if !hasEffect {
		return nil, fmt.Errorf("use %q: %w", itemID, types.ErrNoEffect)
	}

	maxHP := w.Rules().MaxHP
	var events []types.Event
	if targetID == "" || targetID == p.ID {
		targetID = p.ID
		events = append(events, effects.ApplyTo(p, se, maxHP))
	} else {
		enemy, err := enemyHere(w, p, targetID)
		if err != nil {
			return nil, fmt.Errorf("use %q on %q: %w", itemID, targetID, err)
		}
		effects.Apply(se, &enemy, maxHP)
		p.Encounters[enemy.ID] = enemy
		if enemy.Combat != nil && enemy.Combat.HP <= 0 {
			if ev, ok := state.Defeat(p, enemy); ok {
				events = append(events, ev)
			}
		}
	}

	if h.UsesLeft != nil {
		n := *h.UsesLeft - 1
		h.UsesLeft = &n
		p.Held[itemID] = h
	}
	used := types.Event{
		Type: "item_used",
		Data: map[string]any{"item": itemID, "target": targetID, "effect": se.ID},
	}
	return append([]types.Event{used}, events...), nil
}

func enemyHere(w *world.World, p *types.Protagonist, enemyID string) (types.Character, error) {
	tmpl, err := w.Character(enemyID)
	if err != nil {
		return types.Character{}, err
	}
	if tmpl.Kind != types.KindEnemy || tmpl.Location != p.Location {
		return types.Character{}, types.ErrNotHere
	}
	if state.IsDefeated(p, enemyID) {
		return types.Character{}, types.ErrAlreadyDefeated
	}
	return state.Enemy(w, p, enemyID)
}
