package world

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nathoo/clinicquest/types"
)

// Check validates the whole entity graph. It returns nil for a consistent
// world, otherwise a joined error with one entry per problem. Broken
// references wrap types.ErrDanglingReference.
func (w *World) Check() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}
	dangling := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format+": %w", append(args, types.ErrDanglingReference)...))
	}

	rules := w.Game.Rules
	if rules.MaxHP <= 0 {
		add("max_hp must be positive, got %d", rules.MaxHP)
	}
	if rules.StartHP <= 0 || rules.StartHP > rules.MaxHP {
		add("start_hp %d must be within (0, %d]", rules.StartHP, rules.MaxHP)
	}
	if w.Game.Start == "" {
		add("start location is required")
	} else if _, ok := w.Locations[w.Game.Start]; !ok {
		dangling("start location %q", w.Game.Start)
	}

	if err := w.checkUniqueIDs(); err != nil {
		errs = append(errs, err)
	}

	for _, id := range sortedKeys(w.Locations) {
		loc := w.Locations[id]
		if loc.EffectID != "" {
			if _, ok := w.Effects[loc.EffectID]; !ok {
				dangling("location %q effect %q", id, loc.EffectID)
			}
		}
		seen := map[string]bool{}
		for _, n := range loc.Neighbours {
			switch {
			case n == id:
				add("location %q lists itself as a neighbour", id)
			case seen[n]:
				add("location %q lists neighbour %q twice", id, n)
			default:
				if _, ok := w.Locations[n]; !ok {
					dangling("location %q neighbour %q", id, n)
				} else if !w.IsNeighbour(n, id) {
					add("adjacency %q -> %q is not symmetric", id, n)
				}
			}
			seen[n] = true
		}
	}

	for _, id := range sortedKeys(w.Characters) {
		c := w.Characters[id]
		if _, ok := w.Locations[c.Location]; !ok {
			dangling("character %q location %q", id, c.Location)
		}
		switch c.Kind {
		case types.KindNPC:
			for _, qid := range c.Offers {
				q, ok := w.Quests[qid]
				if !ok {
					dangling("npc %q offer %q", id, qid)
				} else if q.GiverID != id {
					add("npc %q offers quest %q given by %q", id, qid, q.GiverID)
				}
			}
		case types.KindEnemy:
			if c.Combat == nil {
				add("enemy %q has no combat stats", id)
			} else if c.Combat.HP <= 0 || c.Combat.HP > rules.MaxHP {
				add("enemy %q hp %d must be within (0, %d]", id, c.Combat.HP, rules.MaxHP)
			}
			if len(c.Offers) > 0 {
				add("enemy %q cannot offer quests", id)
			}
		default:
			add("character %q has invalid kind %q", id, c.Kind)
		}
	}

	for _, id := range sortedKeys(w.Items) {
		it := w.Items[id]
		if it.EffectID != "" {
			if _, ok := w.Effects[it.EffectID]; !ok {
				dangling("item %q effect %q", id, it.EffectID)
			}
		}
		if it.Uses != nil && *it.Uses < 0 {
			add("item %q uses must not be negative", id)
		}
		switch it.Owner.Kind {
		case types.OwnerLocation:
			if _, ok := w.Locations[it.Owner.ID]; !ok {
				dangling("item %q location %q", id, it.Owner.ID)
			}
		case types.OwnerCharacter:
			if _, ok := w.Characters[it.Owner.ID]; !ok {
				dangling("item %q holder %q", id, it.Owner.ID)
			}
		case types.OwnerQuest:
			q, ok := w.Quests[it.Owner.ID]
			if !ok {
				dangling("item %q reward_of %q", id, it.Owner.ID)
			} else if q.RewardItem != id {
				add("item %q is reward of %q but the quest rewards %q", id, it.Owner.ID, q.RewardItem)
			}
		default:
			add("item %q must have exactly one owner", id)
		}
	}

	for _, id := range sortedKeys(w.Quests) {
		q := w.Quests[id]
		if q.EffectID == "" {
			add("quest %q has no reward effect", id)
		} else if _, ok := w.Effects[q.EffectID]; !ok {
			dangling("quest %q effect %q", id, q.EffectID)
		}
		if q.RewardItem != "" {
			it, ok := w.Items[q.RewardItem]
			if !ok {
				dangling("quest %q reward item %q", id, q.RewardItem)
			} else if it.Owner != (types.Owner{Kind: types.OwnerQuest, ID: id}) {
				add("quest %q reward item %q is owned by %s %q", id, q.RewardItem, it.Owner.Kind, it.Owner.ID)
			}
		}
		if q.GiverID != "" {
			g, ok := w.Characters[q.GiverID]
			if !ok {
				dangling("quest %q giver %q", id, q.GiverID)
			} else if g.Kind != types.KindNPC {
				add("quest %q giver %q is not an npc", id, q.GiverID)
			}
		}
		for _, ref := range q.Requires.NPCs {
			if c, ok := w.Characters[ref]; !ok {
				dangling("quest %q requires npc %q", id, ref)
			} else if c.Kind != types.KindNPC {
				add("quest %q requires npc %q which is a %s", id, ref, c.Kind)
			}
		}
		for _, ref := range q.Requires.Enemies {
			if c, ok := w.Characters[ref]; !ok {
				dangling("quest %q requires enemy %q", id, ref)
			} else if c.Kind != types.KindEnemy {
				add("quest %q requires enemy %q which is a %s", id, ref, c.Kind)
			}
		}
		for _, ref := range q.Requires.Quests {
			if _, ok := w.Quests[ref]; !ok {
				dangling("quest %q requires quest %q", id, ref)
			}
		}
		for _, ref := range q.Requires.Items {
			if _, ok := w.Items[ref]; !ok {
				dangling("quest %q requires item %q", id, ref)
			}
		}
	}
	if cycle := w.questCycle(); cycle != "" {
		add("quest prerequisites form a cycle through %q", cycle)
	}

	return errors.Join(errs...)
}

// checkUniqueIDs reports IDs reused across entity tables.
func (w *World) checkUniqueIDs() error {
	owner := map[string]EntityKind{}
	var errs []error
	claim := func(kind EntityKind, ids []string) {
		for _, id := range ids {
			if prev, ok := owner[id]; ok {
				errs = append(errs, fmt.Errorf("id %q is used by both a %s and a %s", id, prev, kind))
				continue
			}
			owner[id] = kind
		}
	}
	claim(KindEffect, sortedKeys(w.Effects))
	claim(KindItem, sortedKeys(w.Items))
	claim(KindCharacter, sortedKeys(w.Characters))
	claim(KindQuest, sortedKeys(w.Quests))
	claim(KindLocation, sortedKeys(w.Locations))
	return errors.Join(errs...)
}

// questCycle returns a quest on a prerequisite cycle, or "".
func (w *World) questCycle() string {
	const (
		unvisited = iota
		visiting
		done
	)
	mark := map[string]int{}
	var visit func(id string) string
	visit = func(id string) string {
		switch mark[id] {
		case visiting:
			return id
		case done:
			return ""
		}
		mark[id] = visiting
		for _, dep := range w.Quests[id].Requires.Quests {
			if _, ok := w.Quests[dep]; !ok {
				continue
			}
			if c := visit(dep); c != "" {
				return c
			}
		}
		mark[id] = done
		return ""
	}
	for _, id := range sortedKeys(w.Quests) {
		if c := visit(id); c != "" {
			return c
		}
	}
	return ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
