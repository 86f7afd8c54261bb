package parser

import (
	"testing"

	"github.com/nathoo/clinicquest/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  types.Intent
	}{
		// Empty / whitespace
		{
			name:  "empty string",
			input: "",
			want:  types.Intent{},
		},
		{
			name:  "whitespace only",
			input: "   ",
			want:  types.Intent{},
		},

		// Basic verbs
		{
			name:  "look",
			input: "look",
			want:  types.Intent{Verb: "look"},
		},
		{
			name:  "where am i",
			input: "where am I",
			want:  types.Intent{Verb: "look"},
		},
		{
			name:  "whereami",
			input: "whereami",
			want:  types.Intent{Verb: "look"},
		},
		{
			name:  "i → inventory",
			input: "i",
			want:  types.Intent{Verb: "inventory"},
		},
		{
			name:  "j → quests",
			input: "j",
			want:  types.Intent{Verb: "quests"},
		},

		// Movement
		{
			name:  "go with multi-word location",
			input: "go therapist's office",
			want:  types.Intent{Verb: "go", Object: "therapist's office"},
		},
		{
			name:  "go to strips preposition",
			input: "go to the registry",
			want:  types.Intent{Verb: "go", Object: "registry"},
		},
		{
			name:  "russian go",
			input: "иди в регистратура",
			want:  types.Intent{Verb: "go", Object: "регистратура"},
		},

		// Items
		{
			name:  "get donut → take donut",
			input: "get the donut",
			want:  types.Intent{Verb: "take", Object: "donut"},
		},
		{
			name:  "pick up",
			input: "pick up sandwich",
			want:  types.Intent{Verb: "take", Object: "sandwich"},
		},
		{
			name:  "eat → use",
			input: "eat donut",
			want:  types.Intent{Verb: "use", Object: "donut"},
		},
		{
			name:  "use on target",
			input: "use sandwich on granny",
			want:  types.Intent{Verb: "use", Object: "sandwich", Target: "granny"},
		},

		// Characters
		{
			name:  "talk to",
			input: "talk to nurse",
			want:  types.Intent{Verb: "talk", Object: "nurse"},
		},
		{
			name:  "hit → attack",
			input: "hit granny",
			want:  types.Intent{Verb: "attack", Object: "granny"},
		},
		{
			name:  "examine alias",
			input: "x granny",
			want:  types.Intent{Verb: "examine", Object: "granny"},
		},
		{
			name:  "look at",
			input: "look at nurse",
			want:  types.Intent{Verb: "examine", Object: "nurse"},
		},

		// Quests keep prepositions in names
		{
			name:  "turn in",
			input: "turn in go to the therapist",
			want:  types.Intent{Verb: "turnin", Object: "go to therapist"},
		},
		{
			name:  "accept quest",
			input: "accept quest go to the therapist",
			want:  types.Intent{Verb: "accept", Object: "go to therapist"},
		},
		{
			name:  "сдать",
			input: "сдать квест",
			want:  types.Intent{Verb: "turnin", Object: "квест"},
		},

		// Case
		{
			name:  "uppercase normalised",
			input: "TALK TO Nurse",
			want:  types.Intent{Verb: "talk", Object: "nurse"},
		},
		{
			name:  "unknown verb passes through",
			input: "dance wildly",
			want:  types.Intent{Verb: "dance", Object: "wildly"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}
