// Package save implements JSON serialization and deserialization of a
// protagonist snapshot.
package save

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/nathoo/clinicquest/engine/state"
	"github.com/nathoo/clinicquest/engine/world"
	"github.com/nathoo/clinicquest/types"
)

// FormatVersion is the snapshot layout version written by Save.
const FormatVersion = 1

// ErrIncompatible is returned when a snapshot cannot be restored into the
// current world.
var ErrIncompatible = errors.New("incompatible save")

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Format      int               `json:"format"`
	Game        string            `json:"game"`
	GameVersion string            `json:"game_version"`
	Turn        int               `json:"turn"`
	Protagonist ProtagonistData   `json:"protagonist"`
	Encounters  []EncounterData   `json:"encounters,omitempty"`
	Held        []HeldData        `json:"held"`
	Quests      map[string]string `json:"quests"`
	RNGSeed     int64             `json:"rng_seed"`
	RNGPosition int64             `json:"rng_position"`
}

// ProtagonistData holds the protagonist's own stats and progression sets.
type ProtagonistData struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Location  string         `json:"location"`
	Ambient   string         `json:"ambient,omitempty"`
	HP        int            `json:"hp"`
	Strength  int            `json:"strength"`
	XP        int            `json:"xp"`
	Met       []string       `json:"met"`
	Defeated  []string       `json:"defeated"`
	Applied   map[string]int `json:"applied"`
	AppliedHP map[string]int `json:"applied_hp,omitempty"` // hp actually changed by Applied
}

// EncounterData is the remaining hp of an engaged enemy.
type EncounterData struct {
	Enemy string `json:"enemy"`
	HP    int    `json:"hp"`
}

// HeldData is a held item and its remaining uses.
type HeldData struct {
	Item     string `json:"item"`
	UsesLeft *int   `json:"uses_left,omitempty"`
}

// Save serializes a protagonist to JSON bytes.
func Save(p *types.Protagonist, w *world.World) ([]byte, error) {
	data := SaveData{
		Format:      FormatVersion,
		Game:        w.Game.Title,
		GameVersion: w.Game.Version,
		Turn:        p.TurnCount,
		Protagonist: ProtagonistData{
			ID:        p.ID,
			Name:      p.Name,
			Location:  p.Location,
			Ambient:   p.Ambient,
			HP:        state.HP(p),
			Strength:  state.Strength(p),
			XP:        p.XP,
			Met:       trueKeys(p.Met),
			Defeated:  trueKeys(p.Defeated),
			Applied:   p.Applied,
			AppliedHP: p.AppliedHP,
		},
		Quests:      make(map[string]string, len(p.Quests)),
		RNGSeed:     p.RNGSeed,
		RNGPosition: p.RNGPosition,
	}
	for id, st := range p.Quests {
		data.Quests[id] = st.String()
	}
	for _, h := range state.HeldItems(p) {
		data.Held = append(data.Held, HeldData{Item: h.ItemID, UsesLeft: h.UsesLeft})
	}
	ids := make([]string, 0, len(p.Encounters))
	for id := range p.Encounters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		e := p.Encounters[id]
		hp := 0
		if e.Combat != nil {
			hp = e.Combat.HP
		}
		data.Encounters = append(data.Encounters, EncounterData{Enemy: id, HP: hp})
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	if sd.Format != FormatVersion {
		return nil, fmt.Errorf("save format %d, want %d: %w", sd.Format, FormatVersion, ErrIncompatible)
	}
	if sd.Protagonist.Applied == nil {
		sd.Protagonist.Applied = map[string]int{}
	}
	if sd.Quests == nil {
		sd.Quests = map[string]string{}
	}
	return &sd, nil
}

// Restore rebuilds a protagonist from loaded save data. Every referenced
// ID must exist in the world.
func Restore(sd *SaveData, w *world.World) (*types.Protagonist, error) {
	if sd.Game != w.Game.Title {
		return nil, fmt.Errorf("save is for %q, not %q: %w", sd.Game, w.Game.Title, ErrIncompatible)
	}
	pd := sd.Protagonist
	p := state.NewProtagonist(w, pd.ID, pd.Name)
	var problems []error
	check := func(kind, id string, ok bool) {
		if !ok {
			problems = append(problems, fmt.Errorf("unknown %s %q", kind, id))
		}
	}

	_, ok := w.Locations[pd.Location]
	check("location", pd.Location, ok)
	p.Location = pd.Location
	if pd.Ambient != "" {
		_, ok := w.Effects[pd.Ambient]
		check("side-effect", pd.Ambient, ok)
		p.Ambient = pd.Ambient
	}
	p.Combat.HP = pd.HP
	p.Combat.Strength = pd.Strength
	p.XP = pd.XP
	for _, id := range pd.Met {
		_, ok := w.Characters[id]
		check("npc", id, ok)
		p.Met[id] = true
	}
	for _, id := range pd.Defeated {
		_, ok := w.Characters[id]
		check("enemy", id, ok)
		p.Defeated[id] = true
	}
	for id, n := range pd.Applied {
		_, ok := w.Effects[id]
		check("side-effect", id, ok)
		p.Applied[id] = n
	}
	for id, n := range pd.AppliedHP {
		if _, ok := pd.Applied[id]; !ok {
			problems = append(problems, fmt.Errorf("hp record for side-effect %q without applications", id))
			continue
		}
		p.AppliedHP[id] = n
	}
	for id, name := range sd.Quests {
		_, ok := w.Quests[id]
		check("quest", id, ok)
		st, err := parseStatus(name)
		if err != nil {
			problems = append(problems, fmt.Errorf("quest %q: %w", id, err))
			continue
		}
		p.Quests[id] = st
	}
	for i, h := range sd.Held {
		_, ok := w.Items[h.Item]
		check("item", h.Item, ok)
		p.Held[h.Item] = types.HeldItem{ItemID: h.Item, UsesLeft: h.UsesLeft, Order: i}
	}
	for _, e := range sd.Encounters {
		enemy, err := state.Enemy(w, p, e.Enemy)
		if err != nil || enemy.Combat == nil {
			check("enemy", e.Enemy, false)
			continue
		}
		enemy.Combat.HP = e.HP
		p.Encounters[e.Enemy] = enemy
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrIncompatible, errors.Join(problems...))
	}

	p.TurnCount = sd.Turn
	p.RNGSeed = sd.RNGSeed
	p.RNGPosition = sd.RNGPosition
	return p, nil
}

func parseStatus(s string) (types.QuestStatus, error) {
	for _, st := range []types.QuestStatus{
		types.QuestNotStarted,
		types.QuestInProgress,
		types.QuestCompleted,
		types.QuestHanded,
	} {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", s)
}

func trueKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		if v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
