package dialogue

import (
	"testing"

	"github.com/nathoo/clinicquest/types"
)

func nurse() types.Character {
	return types.Character{
		ID:       "nurse",
		Name:     "Nurse",
		Kind:     types.KindNPC,
		Dialogue: &types.Dialogue{StartPhrase: "What do you have?", EndPhrase: "Next!"},
	}
}

func TestGreetingFarewell(t *testing.T) {
	if got := Greeting(nurse()); got != `Nurse: "What do you have?"` {
		t.Errorf("unexpected greeting %q", got)
	}
	if got := Farewell(nurse()); got != `Nurse: "Next!"` {
		t.Errorf("unexpected farewell %q", got)
	}
}

func TestGreeting_Silent(t *testing.T) {
	c := types.Character{Name: "Cleaner"}
	if got := Greeting(c); got != "Cleaner has nothing to say." {
		t.Errorf("unexpected greeting %q", got)
	}
	if got := Farewell(c); got != "" {
		t.Errorf("expected no farewell, got %q", got)
	}
}

func TestTaunt(t *testing.T) {
	granny := types.Character{
		Name:     "Granny",
		Dialogue: &types.Dialogue{Phrases: []string{"Fool!", "Idiot!"}},
	}
	tests := []struct {
		pick int
		want string
	}{
		{0, `Granny: "Fool!"`},
		{1, `Granny: "Idiot!"`},
	}
	for _, tt := range tests {
		got := Taunt(granny, func(n int) int {
			if n != 2 {
				t.Errorf("expected n=2, got %d", n)
			}
			return tt.pick
		})
		if got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}

	if got := Taunt(types.Character{Name: "Rat"}, nil); got != "Rat grunts." {
		t.Errorf("unexpected taunt %q", got)
	}
}

func TestConversation(t *testing.T) {
	lines := Conversation(nurse(), []string{"Go to the therapist"})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %v", lines)
	}
	if lines[1] != "New quests: Go to the therapist." {
		t.Errorf("unexpected quest line %q", lines[1])
	}

	lines = Conversation(nurse(), nil)
	if len(lines) != 2 {
		t.Errorf("expected greeting and farewell only, got %v", lines)
	}
}
