// Package worldtest provides the clinic world as an in-code fixture for
// package tests.
package worldtest

import (
	"github.com/nathoo/clinicquest/engine/world"
	"github.com/nathoo/clinicquest/types"
)

// IDs of the fixture entities.
const (
	MainQuestXP  = "main_quest_xp"
	SideQuestXP  = "side_quest_xp"
	StrengthUp   = "strength_up"
	HPUp         = "hp_up"
	RegistryMood = "registry_mood"

	Registry  = "registry"
	Therapist = "therapist_office"
	Oculist   = "oculist_office"

	Nurse        = "nurse"
	TherapistDoc = "therapist"
	OculistDoc   = "oculist"
	Granny       = "granny"

	Donut    = "donut"
	Sandwich = "sandwich"

	TalkToNurse = "talk_to_nurse"
	GoTherapist = "go_to_therapist"
)

// Clinic returns a fresh copy of the clinic world.
func Clinic() *world.World {
	w := world.New(types.GameDef{
		Title:   "Get to the clinic",
		Author:  "test",
		Version: "0.1",
		Start:   Registry,
		Intro:   "You need a medical certificate.",
		Rules:   types.Rules{MaxHP: 10, StartHP: 10, StartStrength: 10},
	})

	for _, se := range []types.SideEffect{
		{ID: MainQuestXP, Name: "Main quest xp", XPChange: 100},
		{ID: SideQuestXP, Name: "Side quest xp", XPChange: 50},
		{ID: StrengthUp, Name: "+5 strength", StrengthChange: 5},
		{ID: HPUp, Name: "+5 hp", HPChange: 5},
		{ID: RegistryMood, Name: "Registry atmosphere", HPChange: -1, StrengthChange: -1},
	} {
		w.Effects[se.ID] = se
	}

	w.Locations[Registry] = types.Location{
		ID: Registry, Name: "Registry", Description: "Your first trial.",
		EffectID: RegistryMood, Neighbours: []string{Therapist, Oculist},
	}
	w.Locations[Therapist] = types.Location{
		ID: Therapist, Name: "Therapist's office", Description: "The beginning of beginnings.",
		Neighbours: []string{Registry},
	}
	w.Locations[Oculist] = types.Location{
		ID: Oculist, Name: "Oculist's office", Description: "They check your eyesight here.",
		Neighbours: []string{Registry},
	}

	w.Characters[Nurse] = types.Character{
		ID: Nurse, Name: "Nurse Irishka", Kind: types.KindNPC, XP: 50, Location: Registry,
		Dialogue: &types.Dialogue{StartPhrase: "What do you have?", EndPhrase: "Next!"},
		Offers:   []string{GoTherapist},
	}
	w.Characters[TherapistDoc] = types.Character{
		ID: TherapistDoc, Name: "Therapist Fedor", Kind: types.KindNPC, XP: 100, Location: Therapist,
		Dialogue: &types.Dialogue{StartPhrase: "Hello, come in.", EndPhrase: "Here is your list of doctors!"},
	}
	w.Characters[OculistDoc] = types.Character{
		ID: OculistDoc, Name: "Oculist Arsyusha", Kind: types.KindNPC, XP: 150, Location: Oculist,
		Dialogue: &types.Dialogue{StartPhrase: "Hello, come in?", EndPhrase: "Buy glasses!"},
	}
	w.Characters[Granny] = types.Character{
		ID: Granny, Name: "Some granny", Kind: types.KindEnemy, Location: Registry,
		Dialogue: &types.Dialogue{
			StartPhrase: "Are you cutting the line?",
			EndPhrase:   "Kids these days!",
			Phrases:     []string{"Fool!", "Idiot!"},
		},
		Combat: &types.CombatStats{HP: 10, Strength: 10},
	}

	one := 1
	w.Items[Donut] = types.Item{
		ID: Donut, Name: "Donut", Description: "It's a donut!", EffectID: StrengthUp,
		Uses: &one, Owner: types.Owner{Kind: types.OwnerLocation, ID: Therapist},
	}
	uses := 1
	w.Items[Sandwich] = types.Item{
		ID: Sandwich, Name: "Sandwich", Description: "It's a sandwich!", EffectID: HPUp,
		Uses: &uses, Owner: types.Owner{Kind: types.OwnerCharacter, ID: Granny},
	}

	w.Quests[TalkToNurse] = types.Quest{
		ID: TalkToNurse, Name: "Talk to the nurse at the registry",
		EffectID: MainQuestXP, Requires: types.Requirements{Enemies: []string{Granny}},
	}
	w.Quests[GoTherapist] = types.Quest{
		ID: GoTherapist, Name: "Go to the therapist", EffectID: MainQuestXP,
		GiverID: Nurse, Requires: types.Requirements{NPCs: []string{TherapistDoc}},
	}
	return w
}
