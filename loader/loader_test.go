package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/clinicquest/types"
)

// writeGame writes Lua sources into a temp dir and returns it.
func writeGame(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return dir
}

const baseGame = `
Game { title = "T", start = "a" }
SideEffect "xp" { xp = 5 }
Location "a" { neighbours = { "b" } }
Location "b" {}
`

func TestLoad_MinimalGame(t *testing.T) {
	w, err := Load("testdata/minimal")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if w.Game.Title != "Minimal Test Game" {
		t.Errorf("Title = %q, want %q", w.Game.Title, "Minimal Test Game")
	}
	if w.Game.Start != "hall" {
		t.Errorf("Start = %q, want %q", w.Game.Start, "hall")
	}
	hall, ok := w.Locations["hall"]
	if !ok {
		t.Fatal("location 'hall' not found")
	}
	if hall.Description != "A grand hall." {
		t.Errorf("hall description = %q", hall.Description)
	}
	if hall.Name != "hall" {
		t.Errorf("name should default to id, got %q", hall.Name)
	}

	// Defaults.
	rules := w.Rules()
	if rules.MaxHP != DefaultMaxHP || rules.StartHP != DefaultMaxHP || rules.StartStrength != DefaultStrength {
		t.Errorf("unexpected default rules %+v", rules)
	}

	// Mirrored adjacency.
	if !w.IsNeighbour("garden", "hall") {
		t.Error("garden should list hall after mirroring")
	}

	// Offers derived from quest givers.
	if got := w.Characters["butler"].Offers; len(got) != 1 || got[0] != "greet" {
		t.Errorf("butler offers = %v, want [greet]", got)
	}
}

func TestLoad_Clinic(t *testing.T) {
	w, err := Load("../games/clinic")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if w.Game.Title != "Get to the clinic" {
		t.Errorf("Title = %q", w.Game.Title)
	}
	if len(w.Locations) != 3 || len(w.Characters) != 4 || len(w.Items) != 2 || len(w.Quests) != 2 {
		t.Errorf("unexpected table sizes: %d locations, %d characters, %d items, %d quests",
			len(w.Locations), len(w.Characters), len(w.Items), len(w.Quests))
	}

	granny := w.Characters["granny"]
	if granny.Kind != types.KindEnemy || granny.Combat == nil || granny.Combat.HP != 10 {
		t.Errorf("granny = %+v", granny)
	}
	if granny.Dialogue == nil || len(granny.Dialogue.Phrases) != 2 {
		t.Errorf("granny phrases not loaded: %+v", granny.Dialogue)
	}

	sandwich := w.Items["sandwich"]
	if sandwich.Owner != (types.Owner{Kind: types.OwnerCharacter, ID: "granny"}) {
		t.Errorf("sandwich owner = %+v", sandwich.Owner)
	}
	if sandwich.Uses == nil || *sandwich.Uses != 1 {
		t.Errorf("sandwich should default to one use, got %v", sandwich.Uses)
	}

	for _, id := range []string{"therapist_office", "oculist_office"} {
		if !w.IsNeighbour(id, "registry") {
			t.Errorf("%s should lead back to the registry", id)
		}
	}

	if len(w.Handlers) != 2 {
		t.Fatalf("expected 2 handlers, got %d", len(w.Handlers))
	}
	if w.Handlers[0].EventType != "enemy_defeated" || w.Handlers[0].Match["enemy"] != "granny" {
		t.Errorf("handler = %+v", w.Handlers[0])
	}
	if _, ok := w.Handlers[0].Match["say"]; ok {
		t.Error("say must not be part of the match")
	}
}

func TestLoad_ItemUses(t *testing.T) {
	dir := writeGame(t, map[string]string{"game.lua": baseGame + `
Item "badge" { location = "a", unlimited = true }
Item "pills" { location = "a", uses = 3, effect = "xp" }
`})
	w, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if w.Items["badge"].Uses != nil {
		t.Errorf("badge should be unlimited, got %d", *w.Items["badge"].Uses)
	}
	if u := w.Items["pills"].Uses; u == nil || *u != 3 {
		t.Errorf("pills uses = %v, want 3", u)
	}
}

func TestLoad_RewardLinking(t *testing.T) {
	dir := writeGame(t, map[string]string{"game.lua": baseGame + `
Quest "q1" { effect = "xp", reward = "medal" }
Item "medal" {}
Quest "q2" { effect = "xp" }
Item "cup" { reward_of = "q2" }
`})
	w, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := w.Items["medal"].Owner; got != (types.Owner{Kind: types.OwnerQuest, ID: "q1"}) {
		t.Errorf("medal owner = %+v", got)
	}
	if got := w.Quests["q2"].RewardItem; got != "cup" {
		t.Errorf("q2 reward = %q, want cup", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"no game", `Location "a" {}`, "no Game{}"},
		{"unknown field", baseGame + `NPC "n" { location = "a", mood = "grumpy" }`, "unknown field(s) mood"},
		{"two owners", baseGame + `NPC "n" { location = "a" }
Item "i" { location = "a", holder = "n" }`, "exactly one owner"},
		{"uses and unlimited", baseGame + `Item "i" { location = "a", uses = 2, unlimited = true }`, "both uses and unlimited"},
		{"duplicate", baseGame + `Location "a" {}`, `duplicate location "a"`},
		{"missing start", `Game { title = "T", start = "nowhere" } Location "a" {}`, "start location"},
		{"dangling effect", baseGame + `Item "i" { location = "a", effect = "magic" }`, "magic"},
		{"quest cycle", baseGame + `Quest "x" { effect = "xp", requires = { quests = { "y" } } }
Quest "y" { effect = "xp", requires = { quests = { "x" } } }`, "cycle"},
		{"lua error", `Game {`, "executing game.lua"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeGame(t, map[string]string{"game.lua": tt.src})
			_, err := Load(dir)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got: %v", tt.want, err)
			}
		})
	}
}

func TestLoad_ValidationErrorUnwraps(t *testing.T) {
	dir := writeGame(t, map[string]string{"game.lua": baseGame + `Item "i" { location = "cellar" }`})
	_, err := Load(dir)

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	if !errors.Is(err, types.ErrDanglingReference) {
		t.Errorf("expected ErrDanglingReference in %v", err)
	}
}

func TestLoad_NoLuaFiles(t *testing.T) {
	_, err := Load(t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "no .lua files") {
		t.Errorf("expected 'no .lua files' error, got %v", err)
	}
}

func TestLoad_FileOrder(t *testing.T) {
	dir := writeGame(t, map[string]string{
		"game.lua":  `Game { title = "T", start = "a" } SideEffect "xp" { xp = 1 }`,
		"a_loc.lua": `Location "a" { neighbours = { "b" } }`,
		"b_loc.lua": `Location "b" {}`,
	})
	if _, err := Load(dir); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
}

func TestSandbox(t *testing.T) {
	for _, fn := range []string{"dofile", "loadfile", "load", "require"} {
		t.Run(fn, func(t *testing.T) {
			dir := writeGame(t, map[string]string{"game.lua": baseGame + fn + `("x")`})
			if _, err := Load(dir); err == nil {
				t.Errorf("calling %s should fail in the sandbox", fn)
			}
		})
	}
	dir := writeGame(t, map[string]string{"game.lua": baseGame + `math.randomseed(1)`})
	if _, err := Load(dir); err == nil {
		t.Error("math.randomseed should be removed")
	}
}

func TestSortedLuaFiles(t *testing.T) {
	got := sortedLuaFiles([]string{"zeta.lua", "game.lua", "alpha.lua"})
	want := []string{"game.lua", "alpha.lua", "zeta.lua"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", got, want)
	}
}
