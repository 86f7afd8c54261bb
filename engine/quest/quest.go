// Package quest implements the per-protagonist quest lifecycle:
// not started, in progress, completed, handed. Status only moves forward.
package quest

import (
	"fmt"
	"sort"

	"github.com/nathoo/clinicquest/engine/effects"
	"github.com/nathoo/clinicquest/engine/state"
	"github.com/nathoo/clinicquest/engine/world"
	"github.com/nathoo/clinicquest/types"
)

// Grant records a quest as in progress. Quests already recorded are left
// alone and false is returned.
func Grant(w *world.World, p *types.Protagonist, questID string) (types.Event, bool) {
	if _, ok := p.Quests[questID]; ok {
		return types.Event{}, false
	}
	p.Quests[questID] = types.QuestInProgress
	return types.Event{
		Type: "quest_granted",
		Data: map[string]any{"quest": questID, "name": w.Name(questID)},
	}, true
}

// GrantStarting grants every quest that no NPC offers.
func GrantStarting(w *world.World, p *types.Protagonist) []types.Event {
	var events []types.Event
	for _, q := range w.StartingQuests() {
		if ev, ok := Grant(w, p, q.ID); ok {
			events = append(events, ev)
		}
	}
	return events
}

// TalkTo meets an NPC at the current location and takes every quest it
// offers that this protagonist has not recorded yet. It returns the IDs of
// newly granted quests; talking again returns none.
func TalkTo(w *world.World, p *types.Protagonist, npcID string) ([]string, []types.Event, error) {
	npc, err := w.Character(npcID)
	if err != nil {
		return nil, nil, err
	}
	if npc.Kind != types.KindNPC {
		return nil, nil, fmt.Errorf("talk to %q: not an npc: %w", npcID, types.ErrNotFound)
	}
	if npc.Location != p.Location {
		return nil, nil, fmt.Errorf("talk to %q: %w", npcID, types.ErrNotHere)
	}
	offered, err := w.OfferedBy(npcID)
	if err != nil {
		return nil, nil, err
	}

	var events []types.Event
	if !p.Met[npcID] {
		p.Met[npcID] = true
		p.XP += npc.XP
		events = append(events, types.Event{
			Type: "npc_met",
			Data: map[string]any{"npc": npcID, "name": npc.Name, "xp": npc.XP},
		})
	}

	var granted []string
	for _, q := range offered {
		if ev, ok := Grant(w, p, q.ID); ok {
			granted = append(granted, q.ID)
			events = append(events, ev)
		}
	}
	return granted, events, nil
}

// Accept takes a single quest. Offered quests need their NPC to be at the
// current location. Accepting a recorded quest is a no-op.
func Accept(w *world.World, p *types.Protagonist, questID string) ([]types.Event, error) {
	q, err := w.Quest(questID)
	if err != nil {
		return nil, err
	}
	if q.GiverID != "" {
		giver, ok := w.Characters[q.GiverID]
		if !ok {
			return nil, fmt.Errorf("quest %q giver %q: %w", questID, q.GiverID, types.ErrDanglingReference)
		}
		if giver.Location != p.Location {
			return nil, fmt.Errorf("accept %q: %w", questID, types.ErrNotHere)
		}
	}
	if ev, ok := Grant(w, p, questID); ok {
		return []types.Event{ev}, nil
	}
	return nil, nil
}

// Ready reports whether every requirement of a quest holds.
func Ready(w *world.World, p *types.Protagonist, q types.Quest) bool {
	for _, id := range q.Requires.Enemies {
		if !state.IsDefeated(p, id) {
			return false
		}
	}
	for _, id := range q.Requires.NPCs {
		if !state.HasMet(p, id) {
			return false
		}
	}
	for _, id := range q.Requires.Quests {
		if state.QuestStatus(p, id) != types.QuestHanded {
			return false
		}
	}
	for _, id := range q.Requires.Items {
		if !state.HasItem(p, id) {
			return false
		}
	}
	return true
}

// Refresh completes every in-progress quest whose requirements hold.
func Refresh(w *world.World, p *types.Protagonist) []types.Event {
	ids := make([]string, 0, len(p.Quests))
	for id, st := range p.Quests {
		if st == types.QuestInProgress {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	var events []types.Event
	for _, id := range ids {
		q, ok := w.Quests[id]
		if !ok || !Ready(w, p, q) {
			continue
		}
		p.Quests[id] = types.QuestCompleted
		events = append(events, types.Event{
			Type: "quest_completed",
			Data: map[string]any{"quest": id, "name": q.Name},
		})
	}
	return events
}

// TurnIn hands a completed quest: the reward side-effect is applied and
// the reward item, if any, moves into the held set.
func TurnIn(w *world.World, p *types.Protagonist, questID string) ([]types.Event, error) {
	q, err := w.Quest(questID)
	if err != nil {
		return nil, err
	}
	if st := state.QuestStatus(p, questID); st != types.QuestCompleted {
		return nil, fmt.Errorf("turn in %q (%s): %w", questID, st, types.ErrQuestNotReady)
	}
	se, err := w.QuestEffect(questID)
	if err != nil {
		return nil, err
	}
	reward, hasReward, err := w.QuestReward(questID)
	if err != nil {
		return nil, err
	}

	p.Quests[questID] = types.QuestHanded
	events := []types.Event{{
		Type: "quest_handed",
		Data: map[string]any{"quest": questID, "name": q.Name},
	}}
	events = append(events, effects.ApplyTo(p, se, w.Rules().MaxHP))
	if hasReward && !state.HasItem(p, reward.ID) {
		state.Give(p, reward)
		events = append(events, types.Event{
			Type: "item_taken",
			Data: map[string]any{"item": reward.ID, "name": reward.Name},
		})
	}
	return events, nil
}

// Views returns the protagonist's recorded quests sorted by ID.
func Views(w *world.World, p *types.Protagonist) []types.QuestView {
	out := make([]types.QuestView, 0, len(p.Quests))
	for id, st := range p.Quests {
		out = append(out, types.QuestView{ID: id, Name: w.Name(id), Status: st})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
