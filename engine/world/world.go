// Package world holds the static game-world arena: side-effects, items,
// characters, quests and locations addressed by stable string IDs.
// A World is immutable after loading and safe to share between sessions.
package world

import (
	"fmt"
	"sort"
	"sync"

	"github.com/nathoo/clinicquest/types"
)

// EntityKind names the table an entity lives in.
type EntityKind string

const (
	KindEffect    EntityKind = "side_effect"
	KindItem      EntityKind = "item"
	KindCharacter EntityKind = "character"
	KindQuest     EntityKind = "quest"
	KindLocation  EntityKind = "location"
)

// Entity is the common header of every world entity.
type Entity struct {
	Kind        EntityKind
	ID          string
	Name        string
	Description string
}

// World is the static entity graph.
type World struct {
	Game       types.GameDef
	Effects    map[string]types.SideEffect
	Items      map[string]types.Item
	Characters map[string]types.Character
	Quests     map[string]types.Quest
	Locations  map[string]types.Location
	Handlers   []types.EventHandler

	once sync.Once
	idx  index
}

type index struct {
	charsByLoc   map[string][]string
	itemsByOwner map[types.Owner][]string
}

// New returns an empty world with initialised tables.
func New(game types.GameDef) *World {
	return &World{
		Game:       game,
		Effects:    map[string]types.SideEffect{},
		Items:      map[string]types.Item{},
		Characters: map[string]types.Character{},
		Quests:     map[string]types.Quest{},
		Locations:  map[string]types.Location{},
	}
}

// Rules returns the world-wide numeric settings.
func (w *World) Rules() types.Rules {
	return w.Game.Rules
}

func (w *World) index() *index {
	w.once.Do(func() {
		w.idx = index{
			charsByLoc:   map[string][]string{},
			itemsByOwner: map[types.Owner][]string{},
		}
		for id, c := range w.Characters {
			w.idx.charsByLoc[c.Location] = append(w.idx.charsByLoc[c.Location], id)
		}
		for id, it := range w.Items {
			w.idx.itemsByOwner[it.Owner] = append(w.idx.itemsByOwner[it.Owner], id)
		}
		for _, ids := range w.idx.charsByLoc {
			sort.Strings(ids)
		}
		for _, ids := range w.idx.itemsByOwner {
			sort.Strings(ids)
		}
	})
	return &w.idx
}

// Get looks an entity up in every table.
func (w *World) Get(id string) (Entity, error) {
	if se, ok := w.Effects[id]; ok {
		return Entity{Kind: KindEffect, ID: id, Name: se.Name, Description: se.Description}, nil
	}
	if it, ok := w.Items[id]; ok {
		return Entity{Kind: KindItem, ID: id, Name: it.Name, Description: it.Description}, nil
	}
	if c, ok := w.Characters[id]; ok {
		return Entity{Kind: KindCharacter, ID: id, Name: c.Name, Description: c.Description}, nil
	}
	if q, ok := w.Quests[id]; ok {
		return Entity{Kind: KindQuest, ID: id, Name: q.Name, Description: q.Description}, nil
	}
	if l, ok := w.Locations[id]; ok {
		return Entity{Kind: KindLocation, ID: id, Name: l.Name, Description: l.Description}, nil
	}
	return Entity{}, fmt.Errorf("%q: %w", id, types.ErrNotFound)
}

// SideEffect returns a side-effect by ID.
func (w *World) SideEffect(id string) (types.SideEffect, error) {
	se, ok := w.Effects[id]
	if !ok {
		return types.SideEffect{}, fmt.Errorf("side effect %q: %w", id, types.ErrNotFound)
	}
	return se, nil
}

// Item returns an item template by ID.
func (w *World) Item(id string) (types.Item, error) {
	it, ok := w.Items[id]
	if !ok {
		return types.Item{}, fmt.Errorf("item %q: %w", id, types.ErrNotFound)
	}
	return it, nil
}

// Character returns a character by ID.
func (w *World) Character(id string) (types.Character, error) {
	c, ok := w.Characters[id]
	if !ok {
		return types.Character{}, fmt.Errorf("character %q: %w", id, types.ErrNotFound)
	}
	return c, nil
}

// Quest returns a quest template by ID.
func (w *World) Quest(id string) (types.Quest, error) {
	q, ok := w.Quests[id]
	if !ok {
		return types.Quest{}, fmt.Errorf("quest %q: %w", id, types.ErrNotFound)
	}
	return q, nil
}

// Location returns a location by ID.
func (w *World) Location(id string) (types.Location, error) {
	l, ok := w.Locations[id]
	if !ok {
		return types.Location{}, fmt.Errorf("location %q: %w", id, types.ErrNotFound)
	}
	return l, nil
}

// Name returns the display name of any entity, or its ID if unknown.
func (w *World) Name(id string) string {
	if e, err := w.Get(id); err == nil && e.Name != "" {
		return e.Name
	}
	return id
}

// LocationCharacters returns the characters placed at a location, sorted by ID.
func (w *World) LocationCharacters(locationID string) ([]types.Character, error) {
	if _, err := w.Location(locationID); err != nil {
		return nil, err
	}
	ids := w.index().charsByLoc[locationID]
	out := make([]types.Character, 0, len(ids))
	for _, id := range ids {
		c, err := w.resolveCharacter(id)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// LocationItems returns the items lying at a location, sorted by ID.
func (w *World) LocationItems(locationID string) ([]types.Item, error) {
	if _, err := w.Location(locationID); err != nil {
		return nil, err
	}
	return w.ownedItems(types.Owner{Kind: types.OwnerLocation, ID: locationID})
}

// CharacterItems returns the items a character carries (an enemy's drop list).
func (w *World) CharacterItems(characterID string) ([]types.Item, error) {
	if _, err := w.Character(characterID); err != nil {
		return nil, err
	}
	return w.ownedItems(types.Owner{Kind: types.OwnerCharacter, ID: characterID})
}

// Neighbours returns the locations adjacent to a location, sorted by ID.
func (w *World) Neighbours(locationID string) ([]types.Location, error) {
	loc, err := w.Location(locationID)
	if err != nil {
		return nil, err
	}
	ids := append([]string(nil), loc.Neighbours...)
	sort.Strings(ids)
	out := make([]types.Location, 0, len(ids))
	for _, id := range ids {
		n, ok := w.Locations[id]
		if !ok {
			return nil, fmt.Errorf("location %q neighbour %q: %w", locationID, id, types.ErrDanglingReference)
		}
		out = append(out, n)
	}
	return out, nil
}

// IsNeighbour reports whether b is adjacent to a.
func (w *World) IsNeighbour(a, b string) bool {
	loc, ok := w.Locations[a]
	if !ok {
		return false
	}
	for _, id := range loc.Neighbours {
		if id == b {
			return true
		}
	}
	return false
}

// QuestEffect resolves a quest's reward side-effect.
func (w *World) QuestEffect(questID string) (types.SideEffect, error) {
	q, err := w.Quest(questID)
	if err != nil {
		return types.SideEffect{}, err
	}
	se, ok := w.Effects[q.EffectID]
	if !ok {
		return types.SideEffect{}, fmt.Errorf("quest %q reward %q: %w", questID, q.EffectID, types.ErrDanglingReference)
	}
	return se, nil
}

// QuestReward resolves a quest's reward item. The bool is false when the
// quest rewards no item.
func (w *World) QuestReward(questID string) (types.Item, bool, error) {
	q, err := w.Quest(questID)
	if err != nil {
		return types.Item{}, false, err
	}
	if q.RewardItem == "" {
		return types.Item{}, false, nil
	}
	it, ok := w.Items[q.RewardItem]
	if !ok {
		return types.Item{}, false, fmt.Errorf("quest %q reward item %q: %w", questID, q.RewardItem, types.ErrDanglingReference)
	}
	return it, true, nil
}

// ItemEffect resolves an item's side-effect. The bool is false when the
// item has none.
func (w *World) ItemEffect(itemID string) (types.SideEffect, bool, error) {
	it, err := w.Item(itemID)
	if err != nil {
		return types.SideEffect{}, false, err
	}
	if it.EffectID == "" {
		return types.SideEffect{}, false, nil
	}
	se, ok := w.Effects[it.EffectID]
	if !ok {
		return types.SideEffect{}, false, fmt.Errorf("item %q effect %q: %w", itemID, it.EffectID, types.ErrDanglingReference)
	}
	return se, true, nil
}

// LocationEffect resolves a location's ambient side-effect.
func (w *World) LocationEffect(locationID string) (types.SideEffect, bool, error) {
	loc, err := w.Location(locationID)
	if err != nil {
		return types.SideEffect{}, false, err
	}
	if loc.EffectID == "" {
		return types.SideEffect{}, false, nil
	}
	se, ok := w.Effects[loc.EffectID]
	if !ok {
		return types.SideEffect{}, false, fmt.Errorf("location %q effect %q: %w", locationID, loc.EffectID, types.ErrDanglingReference)
	}
	return se, true, nil
}

// OfferedBy resolves the quests an NPC offers, in declaration order.
func (w *World) OfferedBy(npcID string) ([]types.Quest, error) {
	c, err := w.Character(npcID)
	if err != nil {
		return nil, err
	}
	out := make([]types.Quest, 0, len(c.Offers))
	for _, id := range c.Offers {
		q, ok := w.Quests[id]
		if !ok {
			return nil, fmt.Errorf("npc %q offer %q: %w", npcID, id, types.ErrDanglingReference)
		}
		out = append(out, q)
	}
	return out, nil
}

// StartingQuests returns quests no NPC offers, sorted by ID.
func (w *World) StartingQuests() []types.Quest {
	var out []types.Quest
	for _, q := range w.Quests {
		if q.GiverID == "" {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (w *World) ownedItems(owner types.Owner) ([]types.Item, error) {
	ids := w.index().itemsByOwner[owner]
	out := make([]types.Item, 0, len(ids))
	for _, id := range ids {
		it, ok := w.Items[id]
		if !ok {
			return nil, fmt.Errorf("%s %q item %q: %w", owner.Kind, owner.ID, id, types.ErrDanglingReference)
		}
		out = append(out, it)
	}
	return out, nil
}

func (w *World) resolveCharacter(id string) (types.Character, error) {
	c, ok := w.Characters[id]
	if !ok {
		return types.Character{}, fmt.Errorf("character %q: %w", id, types.ErrDanglingReference)
	}
	return c, nil
}
