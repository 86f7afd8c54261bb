package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/nathoo/clinicquest/engine"
	"github.com/nathoo/clinicquest/engine/store"
	"github.com/nathoo/clinicquest/engine/world/worldtest"
)

func newTestEngine() *engine.Engine {
	return engine.New(worldtest.Clinic(), store.NewMemStore(), zap.NewNop(), engine.WithSeed(1))
}

func newTestCLI(t *testing.T, input string) (*CLI, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	c := &CLI{
		Engine:     newTestEngine(),
		PlayerID:   "p1",
		PlayerName: "Vasya",
		In:         strings.NewReader(input),
		Out:        &out,
		SaveDir:    t.TempDir(),
	}
	return c, &out
}

func run(t *testing.T, c *CLI) {
	t.Helper()
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCLI_IntroAndStartingLocation(t *testing.T) {
	c, out := newTestCLI(t, "/quit\n")
	run(t, c)

	output := out.String()
	if !strings.Contains(output, "You need a medical certificate.") {
		t.Error("expected intro text in output")
	}
	if !strings.Contains(output, "Registry. Your first trial.") {
		t.Error("expected starting location description in output")
	}
}

func TestCLI_ReturningPlayerSkipsIntro(t *testing.T) {
	c, out := newTestCLI(t, "/quit\n")
	if _, _, err := c.Engine.Start(context.Background(), c.PlayerID, c.PlayerName); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	run(t, c)

	output := out.String()
	if strings.Contains(output, "You need a medical certificate.") {
		t.Error("returning player should not see the intro")
	}
	if !strings.Contains(output, "Registry. Your first trial.") {
		t.Error("expected current location in output")
	}
}

func TestCLI_Navigation(t *testing.T) {
	c, out := newTestCLI(t, "go to therapist office\n/quit\n")
	run(t, c)

	if !strings.Contains(out.String(), "The beginning of beginnings.") {
		t.Error("expected therapist's office description after moving")
	}
}

func TestCLI_RejectedAction(t *testing.T) {
	c, out := newTestCLI(t, "use donut\n/quit\n")
	run(t, c)

	output := out.String()
	if !strings.Contains(output, `You don't see "donut" here.`) {
		t.Errorf("expected rejection message, got:\n%s", output)
	}
	if strings.Contains(output, "[Error:") {
		t.Error("rejected actions should not surface as errors")
	}
}

func TestCLI_HelpCommand(t *testing.T) {
	c, out := newTestCLI(t, "/help\n/quit\n")
	run(t, c)

	output := out.String()
	for _, want := range []string{"/save", "/load", "/quit", "attack <enemy>", "turn in <quest>"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in help output", want)
		}
	}
}

func TestCLI_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	// Play a bit and save.
	var out bytes.Buffer
	c := &CLI{
		Engine:     newTestEngine(),
		PlayerID:   "p1",
		PlayerName: "Vasya",
		In:         strings.NewReader("go to therapist office\n/save test\n/quit\n"),
		Out:        &out,
		SaveDir:    dir,
	}
	run(t, c)

	if !strings.Contains(out.String(), "Game saved to test.") {
		t.Error("expected save confirmation")
	}

	// Start fresh and load.
	var out2 bytes.Buffer
	c2 := &CLI{
		Engine:     newTestEngine(),
		PlayerID:   "p2",
		PlayerName: "Petya",
		In:         strings.NewReader("/load test\n/state\n/quit\n"),
		Out:        &out2,
		SaveDir:    dir,
	}
	run(t, c2)

	loadOutput := out2.String()
	if !strings.Contains(loadOutput, "Game loaded from test") {
		t.Error("expected load confirmation")
	}
	after := loadOutput[strings.Index(loadOutput, "Game loaded from test"):]
	if !strings.Contains(after, "The beginning of beginnings.") {
		t.Error("expected therapist's office description after loading save")
	}
	if !strings.Contains(after, "Location: therapist_office") {
		t.Error("expected loaded location in state dump")
	}
}

func TestCLI_UnknownMetaCommand(t *testing.T) {
	c, out := newTestCLI(t, "/bogus\n/quit\n")
	run(t, c)

	if !strings.Contains(out.String(), "Unknown command") {
		t.Error("expected unknown command message")
	}
}

func TestCLI_TraceToggle(t *testing.T) {
	c, out := newTestCLI(t, "/trace\nattack granny\n/trace\n/quit\n")
	run(t, c)

	output := out.String()
	if !strings.Contains(output, "Trace output enabled") {
		t.Error("expected trace enabled message")
	}
	if !strings.Contains(output, "[trace]   enemy_hit") {
		t.Errorf("expected enemy_hit trace line, got:\n%s", output)
	}
	if !strings.Contains(output, "Trace output disabled") {
		t.Error("expected trace disabled message")
	}
}

func TestCLI_StateCommand(t *testing.T) {
	c, out := newTestCLI(t, "/state\n/quit\n")
	run(t, c)

	output := out.String()
	if !strings.Contains(output, "Location: registry") {
		t.Error("expected location in state output")
	}
	if !strings.Contains(output, "HP: 9  Strength: 9  XP: 0") {
		t.Errorf("expected stats in state output, got:\n%s", output)
	}
	if !strings.Contains(output, "Turn:") {
		t.Error("expected turn count in state output")
	}
}

func TestCLI_CommentsAndEmptyLinesSkipped(t *testing.T) {
	c, out := newTestCLI(t, "\n# walk around\n\n/quit\n")
	run(t, c)

	output := out.String()
	if strings.Contains(output, "walk around") {
		t.Error("comment lines should not be echoed or executed")
	}
	if strings.Contains(output, "I don't understand") {
		t.Error("empty lines should be silently skipped")
	}
}

func TestCLI_LoadNonexistent(t *testing.T) {
	c, out := newTestCLI(t, "/load nonexistent\n/quit\n")
	run(t, c)

	if !strings.Contains(out.String(), "Load failed") {
		t.Error("expected load failure message")
	}
}

func TestCLI_Again_RepeatsLastCommand(t *testing.T) {
	for _, again := range []string{"again", "g"} {
		t.Run(again, func(t *testing.T) {
			c, out := newTestCLI(t, "look\n"+again+"\n/quit\n")
			run(t, c)

			// Intro view, explicit look and the repeat.
			count := strings.Count(out.String(), "Registry. Your first trial.")
			if count < 3 {
				t.Errorf("expected location description at least 3 times, got %d", count)
			}
		})
	}
}

func TestCLI_Again_NothingToRepeat(t *testing.T) {
	c, out := newTestCLI(t, "again\n/quit\n")
	run(t, c)

	if !strings.Contains(out.String(), "Nothing to repeat") {
		t.Error("expected 'Nothing to repeat' when no prior command")
	}
}
