// Package loader loads Lua or YAML world content into a world arena.
// The Lua VM is discarded after loading: zero Lua at runtime.
package loader

import (
	"fmt"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Lua constructor names.
const (
	kindSideEffect = "SideEffect"
	kindLocation   = "Location"
	kindNPC        = "NPC"
	kindEnemy      = "Enemy"
	kindItem       = "Item"
	kindQuest      = "Quest"
)

// rawDef holds a curried constructor's table before compilation.
type rawDef struct {
	kind  string
	id    string
	table *lua.LTable
}

// rawHandler holds an event handler before compilation.
type rawHandler struct {
	eventType string
	table     *lua.LTable
}

// Known keys per constructor. Unknown keys are errors so typos surface at
// load time.
var knownKeys = map[string][]string{
	"Game":         {"title", "author", "version", "start", "intro", "max_hp", "start_hp", "start_strength", "start_xp"},
	kindSideEffect: {"name", "description", "hp", "xp", "strength"},
	kindLocation:   {"name", "description", "effect", "neighbours"},
	kindNPC:        {"name", "description", "location", "xp", "start_phrase", "end_phrase"},
	kindEnemy:      {"name", "description", "location", "xp", "start_phrase", "end_phrase", "hp", "strength", "phrases"},
	kindItem:       {"name", "description", "value", "effect", "uses", "unlimited", "location", "holder", "reward_of"},
	kindQuest:      {"name", "description", "giver", "effect", "reward", "requires"},
	"requires":     {"npcs", "enemies", "quests", "items"},
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return int(n)
	}
	return 0
}

// getIntPtr returns an int field from a Lua table, or nil if missing.
func getIntPtr(tbl *lua.LTable, key string) *int {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		i := int(n)
		return &i
	}
	return nil
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// getStrings returns the array part of a table field as strings.
func getStrings(tbl *lua.LTable, key string) []string {
	t := getTable(tbl, key)
	if t == nil {
		return nil
	}
	var out []string
	for i := 1; i <= t.MaxN(); i++ {
		out = append(out, lua.LVAsString(t.RawGetInt(i)))
	}
	return out
}

// toGoValue converts a scalar Lua value to a Go value.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case lua.LString:
		return string(val)
	default:
		return nil
	}
}

// checkKeys reports string keys of tbl not listed for kind.
func checkKeys(kind, id string, tbl *lua.LTable) error {
	allowed := map[string]bool{}
	for _, k := range knownKeys[kind] {
		allowed[k] = true
	}
	var unknown []string
	tbl.ForEach(func(k, _ lua.LValue) {
		ks, ok := k.(lua.LString)
		if !ok {
			unknown = append(unknown, k.String())
			return
		}
		if !allowed[string(ks)] {
			unknown = append(unknown, string(ks))
		}
	})
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("%s %q: unknown field(s) %s", kind, id, strings.Join(unknown, ", "))
}

// compile converts all collected Lua data into Content.
func compile(coll *collector) (*Content, error) {
	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	if err := checkKeys("Game", "", coll.game); err != nil {
		return nil, err
	}
	c := &Content{Game: compileGameTable(coll.game)}

	for _, raw := range coll.defs {
		if err := checkKeys(raw.kind, raw.id, raw.table); err != nil {
			return nil, err
		}
		t := raw.table
		switch raw.kind {
		case kindSideEffect:
			c.SideEffects = append(c.SideEffects, EffectSpec{
				ID:          raw.id,
				Name:        getString(t, "name"),
				Description: getString(t, "description"),
				HP:          getInt(t, "hp"),
				XP:          getInt(t, "xp"),
				Strength:    getInt(t, "strength"),
			})
		case kindLocation:
			c.Locations = append(c.Locations, LocationSpec{
				ID:          raw.id,
				Name:        getString(t, "name"),
				Description: getString(t, "description"),
				Effect:      getString(t, "effect"),
				Neighbours:  getStrings(t, "neighbours"),
			})
		case kindNPC:
			c.NPCs = append(c.NPCs, compileNPCTable(raw.id, t))
		case kindEnemy:
			c.Enemies = append(c.Enemies, EnemySpec{
				NPCSpec:  compileNPCTable(raw.id, t),
				HP:       getInt(t, "hp"),
				Strength: getInt(t, "strength"),
				Phrases:  getStrings(t, "phrases"),
			})
		case kindItem:
			c.Items = append(c.Items, ItemSpec{
				ID:          raw.id,
				Name:        getString(t, "name"),
				Description: getString(t, "description"),
				Value:       getInt(t, "value"),
				Effect:      getString(t, "effect"),
				Uses:        getIntPtr(t, "uses"),
				Unlimited:   getBool(t, "unlimited", false),
				Location:    getString(t, "location"),
				Holder:      getString(t, "holder"),
				RewardOf:    getString(t, "reward_of"),
			})
		case kindQuest:
			q, err := compileQuestTable(raw.id, t)
			if err != nil {
				return nil, err
			}
			c.Quests = append(c.Quests, q)
		}
	}

	for _, h := range coll.handlers {
		c.Handlers = append(c.Handlers, compileHandler(h))
	}
	return c, nil
}

func compileGameTable(tbl *lua.LTable) GameSpec {
	return GameSpec{
		Title:         getString(tbl, "title"),
		Author:        getString(tbl, "author"),
		Version:       getString(tbl, "version"),
		Start:         getString(tbl, "start"),
		Intro:         getString(tbl, "intro"),
		MaxHP:         getInt(tbl, "max_hp"),
		StartHP:       getIntPtr(tbl, "start_hp"),
		StartStrength: getIntPtr(tbl, "start_strength"),
		StartXP:       getInt(tbl, "start_xp"),
	}
}

func compileNPCTable(id string, tbl *lua.LTable) NPCSpec {
	return NPCSpec{
		ID:          id,
		Name:        getString(tbl, "name"),
		Description: getString(tbl, "description"),
		Location:    getString(tbl, "location"),
		XP:          getInt(tbl, "xp"),
		StartPhrase: getString(tbl, "start_phrase"),
		EndPhrase:   getString(tbl, "end_phrase"),
	}
}

func compileQuestTable(id string, tbl *lua.LTable) (QuestSpec, error) {
	q := QuestSpec{
		ID:          id,
		Name:        getString(tbl, "name"),
		Description: getString(tbl, "description"),
		Giver:       getString(tbl, "giver"),
		Effect:      getString(tbl, "effect"),
		Reward:      getString(tbl, "reward"),
	}
	if req := getTable(tbl, "requires"); req != nil {
		if err := checkKeys("requires", id, req); err != nil {
			return q, err
		}
		q.Requires = RequiresSpec{
			NPCs:    getStrings(req, "npcs"),
			Enemies: getStrings(req, "enemies"),
			Quests:  getStrings(req, "quests"),
			Items:   getStrings(req, "items"),
		}
	}
	return q, nil
}

// compileHandler converts an On() table: say is the narration, every
// other string key is matched against the event data.
func compileHandler(raw rawHandler) HandlerSpec {
	h := HandlerSpec{Event: raw.eventType, Say: getString(raw.table, "say")}
	raw.table.ForEach(func(k, v lua.LValue) {
		ks, ok := k.(lua.LString)
		if !ok || ks == "say" {
			return
		}
		if h.Match == nil {
			h.Match = map[string]string{}
		}
		h.Match[string(ks)] = fmt.Sprint(toGoValue(v))
	})
	return h
}

// sortedLuaFiles returns files with game.lua first, rest alphabetical.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
