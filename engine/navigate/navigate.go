// Package navigate answers "where am I" and moves the protagonist between
// adjacent locations, swapping ambient effects on the way.
package navigate

import (
	"fmt"

	"github.com/nathoo/clinicquest/engine/effects"
	"github.com/nathoo/clinicquest/engine/state"
	"github.com/nathoo/clinicquest/engine/world"
	"github.com/nathoo/clinicquest/types"
)

// WhereAmI describes the protagonist's current location: characters minus
// defeated enemies, items not yet held, drops of defeated enemies and the
// neighbouring locations.
func WhereAmI(w *world.World, p *types.Protagonist) (types.View, error) {
	loc, err := w.Location(p.Location)
	if err != nil {
		return types.View{}, err
	}
	view := types.View{Location: loc}

	chars, err := w.LocationCharacters(loc.ID)
	if err != nil {
		return types.View{}, err
	}
	for _, c := range chars {
		if c.Kind == types.KindEnemy && state.IsDefeated(p, c.ID) {
			drops, err := w.CharacterItems(c.ID)
			if err != nil {
				return types.View{}, err
			}
			for _, it := range drops {
				if !state.HasItem(p, it.ID) {
					view.Drops = append(view.Drops, itemView(it))
				}
			}
			continue
		}
		cv := types.CharacterView{ID: c.ID, Name: c.Name, Kind: c.Kind}
		if c.Kind == types.KindEnemy {
			enemy, err := state.Enemy(w, p, c.ID)
			if err != nil {
				return types.View{}, err
			}
			if enemy.Combat != nil {
				cv.HP = enemy.Combat.HP
			}
		}
		view.Characters = append(view.Characters, cv)
	}

	items, err := w.LocationItems(loc.ID)
	if err != nil {
		return types.View{}, err
	}
	for _, it := range items {
		if !state.HasItem(p, it.ID) {
			view.Items = append(view.Items, itemView(it))
		}
	}

	view.Neighbours, err = w.Neighbours(loc.ID)
	if err != nil {
		return types.View{}, err
	}
	return view, nil
}

// Go moves the protagonist to an adjacent location. The ambient effect of
// the location being left is cancelled and the new one applied.
func Go(w *world.World, p *types.Protagonist, locationID string) ([]types.Event, error) {
	if _, err := w.Location(locationID); err != nil {
		return nil, err
	}
	if !w.IsNeighbour(p.Location, locationID) {
		return nil, fmt.Errorf("go %q from %q: %w", locationID, p.Location, types.ErrNotNeighbour)
	}

	var events []types.Event
	maxHP := w.Rules().MaxHP
	if p.Ambient != "" {
		se, err := w.SideEffect(p.Ambient)
		if err != nil {
			return nil, fmt.Errorf("ambient of %q: %w", p.Location, types.ErrDanglingReference)
		}
		if ev, ok := effects.CancelOn(p, se, maxHP); ok {
			events = append(events, ev)
		}
		p.Ambient = ""
	}

	from := p.Location
	p.Location = locationID
	events = append(events, types.Event{
		Type: "room_entered",
		Data: map[string]any{"room": locationID, "from": from, "name": w.Name(locationID)},
	})
	entered, err := Enter(w, p)
	if err != nil {
		return nil, err
	}
	return append(events, entered...), nil
}

// Enter applies the ambient effect of the protagonist's current location.
func Enter(w *world.World, p *types.Protagonist) ([]types.Event, error) {
	se, ok, err := w.LocationEffect(p.Location)
	if err != nil || !ok {
		return nil, err
	}
	p.Ambient = se.ID
	return []types.Event{effects.ApplyTo(p, se, w.Rules().MaxHP)}, nil
}

func itemView(it types.Item) types.ItemView {
	v := types.ItemView{ID: it.ID, Name: it.Name}
	if it.Uses != nil {
		n := *it.Uses
		v.UsesLeft = &n
	}
	return v
}
