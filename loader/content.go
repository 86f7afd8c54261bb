package loader

import (
	"fmt"
	"sort"

	"github.com/nathoo/clinicquest/engine/world"
	"github.com/nathoo/clinicquest/types"
)

// Defaults for Game fields left out of the content.
const (
	DefaultMaxHP    = 10
	DefaultStrength = 10
)

// Content is world content in source form, before it is built into a
// world. Lua and YAML content both decode into it.
type Content struct {
	Game        GameSpec       `yaml:"game"`
	SideEffects []EffectSpec   `yaml:"side_effects"`
	Locations   []LocationSpec `yaml:"locations"`
	NPCs        []NPCSpec      `yaml:"npcs"`
	Enemies     []EnemySpec    `yaml:"enemies"`
	Items       []ItemSpec     `yaml:"items"`
	Quests      []QuestSpec    `yaml:"quests"`
	Handlers    []HandlerSpec  `yaml:"on"`
}

// GameSpec is the game metadata and start rules.
type GameSpec struct {
	Title         string `yaml:"title"`
	Author        string `yaml:"author"`
	Version       string `yaml:"version"`
	Start         string `yaml:"start"`
	Intro         string `yaml:"intro"`
	MaxHP         int    `yaml:"max_hp"`
	StartHP       *int   `yaml:"start_hp"`
	StartStrength *int   `yaml:"start_strength"`
	StartXP       int    `yaml:"start_xp"`
}

// EffectSpec is a side-effect definition.
type EffectSpec struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	HP          int    `yaml:"hp"`
	XP          int    `yaml:"xp"`
	Strength    int    `yaml:"strength"`
}

// LocationSpec is a location definition. Neighbours need only be listed
// on one side.
type LocationSpec struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Effect      string   `yaml:"effect"`
	Neighbours  []string `yaml:"neighbours"`
}

// NPCSpec is a non-combat character definition.
type NPCSpec struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Location    string `yaml:"location"`
	XP          int    `yaml:"xp"`
	StartPhrase string `yaml:"start_phrase"`
	EndPhrase   string `yaml:"end_phrase"`
}

// EnemySpec is a combat character definition.
type EnemySpec struct {
	NPCSpec  `yaml:",inline"`
	HP       int      `yaml:"hp"`
	Strength int      `yaml:"strength"`
	Phrases  []string `yaml:"phrases"`
}

// ItemSpec is an item definition. Exactly one of Location, Holder and
// RewardOf names its owner. Items have one use unless Uses or Unlimited
// says otherwise.
type ItemSpec struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Value       int    `yaml:"value"`
	Effect      string `yaml:"effect"`
	Uses        *int   `yaml:"uses"`
	Unlimited   bool   `yaml:"unlimited"`
	Location    string `yaml:"location"`
	Holder      string `yaml:"holder"`
	RewardOf    string `yaml:"reward_of"`
}

// QuestSpec is a quest definition.
type QuestSpec struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Giver       string       `yaml:"giver"`
	Effect      string       `yaml:"effect"`
	Reward      string       `yaml:"reward"`
	Requires    RequiresSpec `yaml:"requires"`
}

// RequiresSpec lists quest requirements.
type RequiresSpec struct {
	NPCs    []string `yaml:"npcs"`
	Enemies []string `yaml:"enemies"`
	Quests  []string `yaml:"quests"`
	Items   []string `yaml:"items"`
}

// HandlerSpec narrates an event.
type HandlerSpec struct {
	Event string            `yaml:"event"`
	Match map[string]string `yaml:"match"`
	Say   string            `yaml:"say"`
}

// build turns content into a world. It reports problems the world tables
// cannot express, such as duplicate IDs within one kind or items with
// several owners; cross-reference checks are left to world.Check.
func build(c *Content) (*world.World, []string) {
	var problems []string
	seen := map[string]bool{}
	claim := func(kind, id string) bool {
		if id == "" {
			problems = append(problems, fmt.Sprintf("%s with empty id", kind))
			return false
		}
		if seen[kind+":"+id] {
			problems = append(problems, fmt.Sprintf("duplicate %s %q", kind, id))
			return false
		}
		seen[kind+":"+id] = true
		return true
	}

	w := world.New(compileGame(c.Game))

	for _, s := range c.SideEffects {
		if !claim("side-effect", s.ID) {
			continue
		}
		w.Effects[s.ID] = types.SideEffect{
			ID:             s.ID,
			Name:           nameOr(s.Name, s.ID),
			Description:    s.Description,
			HPChange:       s.HP,
			XPChange:       s.XP,
			StrengthChange: s.Strength,
		}
	}

	for _, s := range c.Locations {
		if !claim("location", s.ID) {
			continue
		}
		w.Locations[s.ID] = types.Location{
			ID:          s.ID,
			Name:        nameOr(s.Name, s.ID),
			Description: s.Description,
			EffectID:    s.Effect,
			Neighbours:  append([]string(nil), s.Neighbours...),
		}
	}
	mirrorNeighbours(w)

	for _, s := range c.NPCs {
		if !claim("character", s.ID) {
			continue
		}
		w.Characters[s.ID] = compileNPC(s, types.KindNPC)
	}
	for _, s := range c.Enemies {
		if !claim("character", s.ID) {
			continue
		}
		ch := compileNPC(s.NPCSpec, types.KindEnemy)
		ch.Combat = &types.CombatStats{HP: s.HP, Strength: s.Strength}
		if ch.Dialogue == nil && len(s.Phrases) > 0 {
			ch.Dialogue = &types.Dialogue{}
		}
		if ch.Dialogue != nil {
			ch.Dialogue.Phrases = append([]string(nil), s.Phrases...)
		}
		w.Characters[s.ID] = ch
	}

	for _, s := range c.Quests {
		if !claim("quest", s.ID) {
			continue
		}
		w.Quests[s.ID] = types.Quest{
			ID:          s.ID,
			Name:        nameOr(s.Name, s.ID),
			Description: s.Description,
			EffectID:    s.Effect,
			RewardItem:  s.Reward,
			GiverID:     s.Giver,
			Requires: types.Requirements{
				NPCs:    append([]string(nil), s.Requires.NPCs...),
				Enemies: append([]string(nil), s.Requires.Enemies...),
				Quests:  append([]string(nil), s.Requires.Quests...),
				Items:   append([]string(nil), s.Requires.Items...),
			},
		}
	}

	for _, s := range c.Items {
		if !claim("item", s.ID) {
			continue
		}
		it, err := compileItem(s)
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		w.Items[s.ID] = it
	}
	linkRewards(w)
	linkOffers(w)

	for _, h := range c.Handlers {
		if h.Event == "" {
			problems = append(problems, "On handler with empty event type")
			continue
		}
		w.Handlers = append(w.Handlers, types.EventHandler{EventType: h.Event, Match: h.Match, Say: h.Say})
	}
	return w, problems
}

func compileGame(g GameSpec) types.GameDef {
	rules := types.Rules{MaxHP: g.MaxHP, StartStrength: DefaultStrength, StartXP: g.StartXP}
	if rules.MaxHP == 0 {
		rules.MaxHP = DefaultMaxHP
	}
	rules.StartHP = rules.MaxHP
	if g.StartHP != nil {
		rules.StartHP = *g.StartHP
	}
	if g.StartStrength != nil {
		rules.StartStrength = *g.StartStrength
	}
	return types.GameDef{
		Title:   g.Title,
		Author:  g.Author,
		Version: g.Version,
		Start:   g.Start,
		Intro:   g.Intro,
		Rules:   rules,
	}
}

func compileNPC(s NPCSpec, kind types.Kind) types.Character {
	c := types.Character{
		ID:          s.ID,
		Name:        nameOr(s.Name, s.ID),
		Description: s.Description,
		Kind:        kind,
		XP:          s.XP,
		Location:    s.Location,
	}
	if s.StartPhrase != "" || s.EndPhrase != "" {
		c.Dialogue = &types.Dialogue{StartPhrase: s.StartPhrase, EndPhrase: s.EndPhrase}
	}
	return c
}

func compileItem(s ItemSpec) (types.Item, error) {
	it := types.Item{
		ID:          s.ID,
		Name:        nameOr(s.Name, s.ID),
		Description: s.Description,
		Value:       s.Value,
		EffectID:    s.Effect,
	}

	switch {
	case s.Unlimited && s.Uses != nil:
		return it, fmt.Errorf("item %q sets both uses and unlimited", s.ID)
	case s.Unlimited:
	case s.Uses != nil:
		n := *s.Uses
		it.Uses = &n
	default:
		n := 1
		it.Uses = &n
	}

	owners := 0
	if s.Location != "" {
		it.Owner = types.Owner{Kind: types.OwnerLocation, ID: s.Location}
		owners++
	}
	if s.Holder != "" {
		it.Owner = types.Owner{Kind: types.OwnerCharacter, ID: s.Holder}
		owners++
	}
	if s.RewardOf != "" {
		it.Owner = types.Owner{Kind: types.OwnerQuest, ID: s.RewardOf}
		owners++
	}
	if owners > 1 {
		return it, fmt.Errorf("item %q must have exactly one owner, got %d", s.ID, owners)
	}
	return it, nil
}

// mirrorNeighbours makes adjacency symmetric. Unknown targets are left in
// place for world.Check to report.
func mirrorNeighbours(w *world.World) {
	for _, id := range sortedIDs(w.Locations) {
		for _, n := range w.Locations[id].Neighbours {
			other, ok := w.Locations[n]
			if !ok || n == id || contains(other.Neighbours, id) {
				continue
			}
			other.Neighbours = append(other.Neighbours, id)
			w.Locations[n] = other
		}
	}
}

// linkRewards ties reward items and quests together when only one side
// names the other.
func linkRewards(w *world.World) {
	for _, id := range sortedIDs(w.Quests) {
		q := w.Quests[id]
		if q.RewardItem == "" {
			continue
		}
		if it, ok := w.Items[q.RewardItem]; ok && it.Owner.Kind == "" {
			it.Owner = types.Owner{Kind: types.OwnerQuest, ID: id}
			w.Items[it.ID] = it
		}
	}
	for _, id := range sortedIDs(w.Items) {
		it := w.Items[id]
		if it.Owner.Kind != types.OwnerQuest {
			continue
		}
		if q, ok := w.Quests[it.Owner.ID]; ok && q.RewardItem == "" {
			q.RewardItem = id
			w.Quests[q.ID] = q
		}
	}
}

// linkOffers fills NPC offer lists from quest givers.
func linkOffers(w *world.World) {
	for _, id := range sortedIDs(w.Quests) {
		q := w.Quests[id]
		c, ok := w.Characters[q.GiverID]
		if q.GiverID == "" || !ok || c.Kind != types.KindNPC {
			continue
		}
		c.Offers = append(c.Offers, id)
		w.Characters[c.ID] = c
	}
}

func nameOr(name, id string) string {
	if name != "" {
		return name
	}
	return id
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sortedIDs[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
