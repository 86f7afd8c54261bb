package world_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/nathoo/clinicquest/engine/world"
	"github.com/nathoo/clinicquest/engine/world/worldtest"
	"github.com/nathoo/clinicquest/types"
)

func TestCheck_Clinic(t *testing.T) {
	if err := worldtest.Clinic().Check(); err != nil {
		t.Fatalf("expected consistent world, got: %v", err)
	}
}

func TestCheck_Problems(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(w *world.World)
		want     string
		dangling bool
	}{
		{
			name: "asymmetric adjacency",
			mutate: func(w *world.World) {
				loc := w.Locations[worldtest.Therapist]
				loc.Neighbours = append(loc.Neighbours, worldtest.Oculist)
				w.Locations[worldtest.Therapist] = loc
			},
			want: "not symmetric",
		},
		{
			name: "self neighbour",
			mutate: func(w *world.World) {
				loc := w.Locations[worldtest.Oculist]
				loc.Neighbours = append(loc.Neighbours, worldtest.Oculist)
				w.Locations[worldtest.Oculist] = loc
			},
			want: "itself",
		},
		{
			name: "missing start",
			mutate: func(w *world.World) {
				w.Game.Start = "parking"
			},
			want:     "start location",
			dangling: true,
		},
		{
			name: "item without owner",
			mutate: func(w *world.World) {
				it := w.Items[worldtest.Donut]
				it.Owner = types.Owner{}
				w.Items[worldtest.Donut] = it
			},
			want: "exactly one owner",
		},
		{
			name: "item with unknown effect",
			mutate: func(w *world.World) {
				it := w.Items[worldtest.Donut]
				it.EffectID = "sugar_rush"
				w.Items[worldtest.Donut] = it
			},
			want:     "sugar_rush",
			dangling: true,
		},
		{
			name: "quest without effect",
			mutate: func(w *world.World) {
				q := w.Quests[worldtest.GoTherapist]
				q.EffectID = ""
				w.Quests[worldtest.GoTherapist] = q
			},
			want: "no reward effect",
		},
		{
			name: "quest cycle",
			mutate: func(w *world.World) {
				a := w.Quests[worldtest.GoTherapist]
				a.Requires.Quests = []string{worldtest.TalkToNurse}
				w.Quests[worldtest.GoTherapist] = a
				b := w.Quests[worldtest.TalkToNurse]
				b.Requires.Quests = []string{worldtest.GoTherapist}
				w.Quests[worldtest.TalkToNurse] = b
			},
			want: "cycle",
		},
		{
			name: "enemy hp above max",
			mutate: func(w *world.World) {
				g := w.Characters[worldtest.Granny]
				g.Combat = &types.CombatStats{HP: 50, Strength: 10}
				w.Characters[worldtest.Granny] = g
			},
			want: "hp 50",
		},
		{
			name: "quest requires enemy that is an npc",
			mutate: func(w *world.World) {
				q := w.Quests[worldtest.TalkToNurse]
				q.Requires.Enemies = []string{worldtest.Nurse}
				w.Quests[worldtest.TalkToNurse] = q
			},
			want: "which is a npc",
		},
		{
			name: "offer without matching giver",
			mutate: func(w *world.World) {
				c := w.Characters[worldtest.OculistDoc]
				c.Offers = []string{worldtest.TalkToNurse}
				w.Characters[worldtest.OculistDoc] = c
			},
			want: "given by",
		},
		{
			name: "duplicate id across tables",
			mutate: func(w *world.World) {
				w.Effects[worldtest.Registry] = types.SideEffect{ID: worldtest.Registry}
			},
			want: "used by both",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := worldtest.Clinic()
			tt.mutate(w)
			err := w.Check()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got: %v", tt.want, err)
			}
			if tt.dangling && !errors.Is(err, types.ErrDanglingReference) {
				t.Errorf("expected ErrDanglingReference in %v", err)
			}
		})
	}
}
