// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for a single clinicquest player.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nathoo/clinicquest/engine"
	"github.com/nathoo/clinicquest/engine/save"
	"github.com/nathoo/clinicquest/engine/state"
	"github.com/nathoo/clinicquest/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine     *engine.Engine
	PlayerID   string
	PlayerName string
	In         io.Reader
	Out        io.Writer
	SaveDir    string
	Trace      bool
	EchoInput  bool   // echo each input line after the prompt (for script playback)
	lastCmd    string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine, playerID, playerName string) *CLI {
	home, _ := os.UserHomeDir()
	saveDir := filepath.Join(home, ".clinicquest", "saves")
	return &CLI{
		Engine:     eng,
		PlayerID:   playerID,
		PlayerName: playerName,
		In:         os.Stdin,
		Out:        os.Stdout,
		SaveDir:    saveDir,
	}
}

// Run starts the game loop. A new player gets the intro; a returning one
// sees the current location. It then loops: prompt, input, dispatch,
// output, until input ends or the player quits.
func (c *CLI) Run(ctx context.Context) error {
	if err := c.begin(ctx); err != nil {
		return err
	}

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(ctx, input) {
				return nil // /quit
			}
			continue
		}

		// "again" / "g" repeats the last game command.
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		result, err := c.Engine.Step(ctx, c.PlayerID, input)
		if err != nil {
			c.printSystem(fmt.Sprintf("Error: %v", err))
			continue
		}
		c.printResult(result)

		if c.Trace {
			c.printTrace(result)
		}
	}
	return scanner.Err()
}

func (c *CLI) begin(ctx context.Context) error {
	_, err := c.Engine.Protagonist(ctx, c.PlayerID)
	if errors.Is(err, types.ErrNotFound) {
		_, res, err := c.Engine.Start(ctx, c.PlayerID, c.PlayerName)
		if err != nil {
			return fmt.Errorf("starting game: %w", err)
		}
		c.printResult(res)
		return nil
	}
	if err != nil {
		return err
	}
	return c.look(ctx)
}

func (c *CLI) look(ctx context.Context) error {
	result, err := c.Engine.Step(ctx, c.PlayerID, "look")
	if err != nil {
		return err
	}
	c.printResult(result)
	return nil
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(ctx, arg)

	case "/load":
		c.cmdLoad(ctx, arg)

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState(ctx)

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave(ctx context.Context, name string) {
	if name == "" {
		name = "quicksave"
	}

	p, err := c.Engine.Protagonist(ctx, c.PlayerID)
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	data, err := save.Save(p, c.Engine.World())
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	path := filepath.Join(c.SaveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	c.printSystem(fmt.Sprintf("Game saved to %s.", name))
}

func (c *CLI) cmdLoad(ctx context.Context, name string) {
	if name == "" {
		name = "quicksave"
	}

	p, err := LoadFile(filepath.Join(c.SaveDir, name+".json"), c.Engine)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	if err := c.Engine.Replace(ctx, c.PlayerID, p); err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Game loaded from %s (turn %d).", name, p.TurnCount))

	// Show current location after loading.
	if err := c.look(ctx); err != nil {
		c.printSystem(fmt.Sprintf("Error: %v", err))
	}
}

// LoadFile reads a save file and rebuilds the protagonist it holds.
func LoadFile(path string, eng *engine.Engine) (*types.Protagonist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sd, err := save.Load(data)
	if err != nil {
		return nil, err
	}
	return save.Restore(sd, eng.World())
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]  Save game (default: quicksave)",
		"  /load [name]  Load game (default: quicksave)",
		"  /quit         Exit game",
		"  /help         Show this help",
		"  /state        Debug: dump current state",
		"  /trace        Toggle event trace output",
		"",
		"Game commands:",
		"  look (l)                   Describe where you are",
		"  examine <thing> (x)        Look closely at something",
		"  go <place>                 Walk to a neighbouring place",
		"  talk <npc>                 Talk to someone and take their quests",
		"  attack <enemy> (hit)       Strike an enemy with your strength",
		"  take <item> (get)          Pick something up",
		"  use <item> [on <enemy>]    Use an item on yourself or an enemy",
		"  quests (j)                 List your quests",
		"  accept <quest>             Take a quest from someone here",
		"  turn in <quest>            Hand in a completed quest",
		"  inventory (i)              Check what you're carrying",
		"  stats                      Show hp, strength and xp",
		"  wait (z)                   Let time pass",
		"  again (g)                  Repeat your last command",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState(ctx context.Context) {
	p, err := c.Engine.Protagonist(ctx, c.PlayerID)
	if err != nil {
		c.printSystem(fmt.Sprintf("Error: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Turn: %d", p.TurnCount))
	c.printSystem(fmt.Sprintf("Location: %s", p.Location))
	c.printSystem(fmt.Sprintf("HP: %d  Strength: %d  XP: %d", state.HP(p), state.Strength(p), p.XP))
	var held []string
	for _, h := range state.HeldItems(p) {
		held = append(held, h.ItemID)
	}
	c.printSystem(fmt.Sprintf("Inventory: %v", held))
	if len(p.Quests) > 0 {
		c.printSystem(fmt.Sprintf("Quests: %v", p.Quests))
	}
	if len(p.Applied) > 0 {
		c.printSystem(fmt.Sprintf("Effects: %v", p.Applied))
	}
	if len(p.Defeated) > 0 {
		c.printSystem(fmt.Sprintf("Defeated: %v", p.Defeated))
	}
}

func (c *CLI) printTrace(result types.Result) {
	if len(result.Events) == 0 {
		return
	}
	c.printSystem(fmt.Sprintf("[trace] Events: %d", len(result.Events)))
	for _, e := range result.Events {
		keys := make([]string, 0, len(e.Data))
		for k := range e.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var parts []string
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Data[k]))
		}
		c.printSystem(fmt.Sprintf("[trace]   %s %s", e.Type, strings.Join(parts, " ")))
	}
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
