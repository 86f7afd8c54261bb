// Package state creates and queries the per-session protagonist record.
// The protagonist is the only record mutated during play; static world
// content is read through the world arena.
package state

import (
	"sort"

	"github.com/nathoo/clinicquest/engine/world"
	"github.com/nathoo/clinicquest/types"
)

// NewProtagonist creates a fresh protagonist at the world's start location.
// It does not apply the start ambient effect or grant starting quests; the
// engine does that as part of the first transaction.
func NewProtagonist(w *world.World, id, name string) *types.Protagonist {
	rules := w.Rules()
	return &types.Protagonist{
		Character: types.Character{
			ID:       id,
			Name:     name,
			Kind:     types.KindProtagonist,
			XP:       rules.StartXP,
			Location: w.Game.Start,
			Combat:   &types.CombatStats{HP: rules.StartHP, Strength: rules.StartStrength},
		},
		Met:        map[string]bool{},
		Defeated:   map[string]bool{},
		Applied:    map[string]int{},
		AppliedHP:  map[string]int{},
		Quests:     map[string]types.QuestStatus{},
		Held:       map[string]types.HeldItem{},
		Encounters: map[string]types.Character{},
	}
}

// Clone returns a deep copy of a protagonist.
func Clone(p *types.Protagonist) *types.Protagonist {
	c := *p
	c.Character = cloneCharacter(p.Character)
	c.Met = cloneMap(p.Met)
	c.Defeated = cloneMap(p.Defeated)
	c.Applied = cloneMap(p.Applied)
	c.AppliedHP = cloneMap(p.AppliedHP)
	c.Quests = cloneMap(p.Quests)
	c.Held = make(map[string]types.HeldItem, len(p.Held))
	for id, h := range p.Held {
		if h.UsesLeft != nil {
			n := *h.UsesLeft
			h.UsesLeft = &n
		}
		c.Held[id] = h
	}
	c.Encounters = make(map[string]types.Character, len(p.Encounters))
	for id, e := range p.Encounters {
		c.Encounters[id] = cloneCharacter(e)
	}
	return &c
}

// Ensure initialises nil maps, e.g. after decoding a snapshot.
func Ensure(p *types.Protagonist) {
	if p.Met == nil {
		p.Met = map[string]bool{}
	}
	if p.Defeated == nil {
		p.Defeated = map[string]bool{}
	}
	if p.Applied == nil {
		p.Applied = map[string]int{}
	}
	if p.AppliedHP == nil {
		p.AppliedHP = map[string]int{}
	}
	if p.Quests == nil {
		p.Quests = map[string]types.QuestStatus{}
	}
	if p.Held == nil {
		p.Held = map[string]types.HeldItem{}
	}
	if p.Encounters == nil {
		p.Encounters = map[string]types.Character{}
	}
	if p.Combat == nil {
		p.Combat = &types.CombatStats{}
	}
}

// HasItem returns true if the protagonist holds the item.
func HasItem(p *types.Protagonist, itemID string) bool {
	_, ok := p.Held[itemID]
	return ok
}

// IsDefeated returns true if the enemy has been defeated by this protagonist.
func IsDefeated(p *types.Protagonist, enemyID string) bool {
	return p.Defeated[enemyID]
}

// HasMet returns true if the protagonist has talked to the NPC.
func HasMet(p *types.Protagonist, npcID string) bool {
	return p.Met[npcID]
}

// QuestStatus returns the protagonist's status for a quest. Unrecorded
// quests are not started.
func QuestStatus(p *types.Protagonist, questID string) types.QuestStatus {
	return p.Quests[questID]
}

// HP returns the protagonist's current hp.
func HP(p *types.Protagonist) int {
	if p.Combat == nil {
		return 0
	}
	return p.Combat.HP
}

// Strength returns the protagonist's current strength.
func Strength(p *types.Protagonist) int {
	if p.Combat == nil {
		return 0
	}
	return p.Combat.Strength
}

// IsOut returns true once the protagonist's hp has reached zero.
func IsOut(p *types.Protagonist) bool {
	return HP(p) <= 0
}

// HeldItems returns held items in acquisition order.
func HeldItems(p *types.Protagonist) []types.HeldItem {
	out := make([]types.HeldItem, 0, len(p.Held))
	for _, h := range p.Held {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out
}

// Give moves an item template into the held set with its template use count.
func Give(p *types.Protagonist, it types.Item) {
	h := types.HeldItem{ItemID: it.ID, Order: nextOrder(p)}
	if it.Uses != nil {
		n := *it.Uses
		h.UsesLeft = &n
	}
	p.Held[it.ID] = h
}

// Enemy returns the protagonist's encounter copy of an enemy, falling back
// to the world template for enemies not yet engaged.
func Enemy(w *world.World, p *types.Protagonist, enemyID string) (types.Character, error) {
	if e, ok := p.Encounters[enemyID]; ok {
		return e, nil
	}
	c, err := w.Character(enemyID)
	if err != nil {
		return types.Character{}, err
	}
	return cloneCharacter(c), nil
}

// ActiveQuests returns the IDs of quests in progress or completed, sorted.
func ActiveQuests(p *types.Protagonist) []string {
	var ids []string
	for id, st := range p.Quests {
		if st == types.QuestInProgress || st == types.QuestCompleted {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func nextOrder(p *types.Protagonist) int {
	n := 0
	for _, h := range p.Held {
		if h.Order >= n {
			n = h.Order + 1
		}
	}
	return n
}

func cloneCharacter(c types.Character) types.Character {
	if c.Combat != nil {
		cs := *c.Combat
		c.Combat = &cs
	}
	if c.Dialogue != nil {
		d := *c.Dialogue
		d.Phrases = append([]string(nil), c.Dialogue.Phrases...)
		c.Dialogue = &d
	}
	c.Offers = append([]string(nil), c.Offers...)
	return c
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Defeat records an enemy's defeat: the encounter copy is stored, the enemy
// joins the defeated set and its xp goes to the protagonist. Defeating an
// enemy twice has no further effect.
func Defeat(p *types.Protagonist, enemy types.Character) (types.Event, bool) {
	p.Encounters[enemy.ID] = enemy
	if p.Defeated[enemy.ID] {
		return types.Event{}, false
	}
	p.Defeated[enemy.ID] = true
	p.XP += enemy.XP
	return types.Event{
		Type: "enemy_defeated",
		Data: map[string]any{"enemy": enemy.ID, "name": enemy.Name, "xp": enemy.XP},
	}, true
}
