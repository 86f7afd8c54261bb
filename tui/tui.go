package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/clinicquest/cli"
	"github.com/nathoo/clinicquest/engine"
	"github.com/nathoo/clinicquest/engine/save"
	"github.com/nathoo/clinicquest/engine/state"
	"github.com/nathoo/clinicquest/types"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for system messages
}

// Model is the Bubble Tea model for the clinic TUI.
type Model struct {
	ctx        context.Context
	engine     *engine.Engine
	playerID   string
	playerName string

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated narrative lines (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
	lastCmd  string
	saveDir  string
}

// gameOutputMsg carries output from the engine into the Update loop.
type gameOutputMsg struct {
	input    string   // echoed player input (empty for intro)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
}

// New creates a TUI model wired to the given engine and protagonist.
func New(ctx context.Context, eng *engine.Engine, playerID, playerName string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	home, _ := os.UserHomeDir()
	return Model{
		ctx:        ctx,
		engine:     eng,
		playerID:   playerID,
		playerName: playerName,
		input:      ti,
		history:    NewHistory(100),
		saveDir:    filepath.Join(home, ".clinicquest", "saves"),
	}
}

// Run starts the Bubble Tea program.
func Run(ctx context.Context, eng *engine.Engine, playerID, playerName string) error {
	m := New(ctx, eng, playerID, playerName)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces the title and first view.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		game := m.engine.World().Game
		lines := []string{game.Title + " v" + game.Version + " by " + game.Author, ""}
		out, err := m.begin()
		if err != nil {
			return gameOutputMsg{lines: []string{fmt.Sprintf("Error: %v", err)}, isSystem: true}
		}
		return gameOutputMsg{lines: append(lines, out...)}
	}
}

// begin starts a new protagonist or describes where a returning one stands.
func (m Model) begin() ([]string, error) {
	_, err := m.engine.Protagonist(m.ctx, m.playerID)
	if errors.Is(err, types.ErrNotFound) {
		_, res, err := m.engine.Start(m.ctx, m.playerID, m.playerName)
		if err != nil {
			return nil, err
		}
		return res.Output, nil
	}
	if err != nil {
		return nil, err
	}
	res, err := m.engine.Step(m.ctx, m.playerID, "look")
	if err != nil {
		return nil, err
	}
	return res.Output, nil
}

// Update handles messages (key presses, window resize, game output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Older(m.input.Value()); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if m.history.Walking() {
				next, _ := m.history.Newer()
				m.input.SetValue(next)
				m.input.CursorEnd()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}
		// Editing a recalled line starts a fresh walk on the next Up.
		m.history.Reset()

	case gameOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Record(input)

	// Handle "again" / "g".
	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendOutput(gameOutputMsg{
				input: input, lines: []string{"Nothing to repeat."}, isSystem: true,
			})
			return m, nil
		}
		input = m.lastCmd
	} else {
		m.lastCmd = input
	}

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(gameOutputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	// Game command.
	result, err := m.engine.Step(m.ctx, m.playerID, input)
	if err != nil {
		m = m.appendOutput(gameOutputMsg{input: input, lines: []string{fmt.Sprintf("Error: %v", err)}, isSystem: true})
		return m, nil
	}
	output := result.Output
	if m.trace {
		output = append(output, formatTrace(result)...)
	}
	m = m.appendOutput(gameOutputMsg{input: input, lines: output})
	return m, nil
}

// appendOutput adds lines to the narrative and refreshes the viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindYouSee:
		return styledYouSee(line)
	case kindExits:
		return styleExits.Render(line)
	case kindDialogue:
		return styleDialogue.Render(line)
	case kindCombat:
		return styleCombat.Render(line)
	case kindQuest:
		return styleQuest.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleRoomDesc.Render(line)
	}
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries. Width is counted in runes so Cyrillic content wraps correctly.
func wordWrap(text string, width int) string {
	if width <= 0 || len([]rune(text)) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := len([]rune(word))

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/save":
		return m.cmdSave(arg), false

	case "/load":
		return m.cmdLoad(arg), false

	case "/help":
		return m.cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdSave(name string) []string {
	if name == "" {
		name = "quicksave"
	}

	p, err := m.engine.Protagonist(m.ctx, m.playerID)
	if err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	data, err := save.Save(p, m.engine.World())
	if err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}

	if err := os.MkdirAll(m.saveDir, 0o755); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}

	path := filepath.Join(m.saveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}

	return []string{fmt.Sprintf("Game saved to %s.", name)}
}

func (m *Model) cmdLoad(name string) []string {
	if name == "" {
		name = "quicksave"
	}

	p, err := cli.LoadFile(filepath.Join(m.saveDir, name+".json"), m.engine)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	if err := m.engine.Replace(m.ctx, m.playerID, p); err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}

	output := []string{fmt.Sprintf("Game loaded from %s (turn %d).", name, p.TurnCount)}
	result, err := m.engine.Step(m.ctx, m.playerID, "look")
	if err != nil {
		return append(output, fmt.Sprintf("Error: %v", err))
	}
	return append(output, result.Output...)
}

func (m *Model) cmdHelp() []string {
	return []string{
		"System:",
		"  /save [name]  Save game (default: quicksave)",
		"  /load [name]  Load game (default: quicksave)",
		"  /quit         Exit game",
		"  /help         Show this help",
		"  /state        Debug: dump current state",
		"  /trace        Toggle event trace output",
		"",
		"Game commands:",
		"  look (l)                  Describe where you are",
		"  examine <thing> (x)       Look closely at something",
		"  go <place>                Walk to a neighbouring place",
		"  talk <npc>                Talk to someone",
		"  attack <enemy> (hit)      Strike an enemy",
		"  take <item> (get)         Pick something up",
		"  use <item> [on <enemy>]   Use an item",
		"  quests (j)                List your quests",
		"  accept <quest>            Take a quest from someone here",
		"  turn in <quest>           Hand in a completed quest",
		"  inventory (i)             Check what you're carrying",
		"  stats                     Show hp, strength and xp",
		"  again (g)                 Repeat your last command",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	}
}

func (m *Model) cmdState() []string {
	p, err := m.engine.Protagonist(m.ctx, m.playerID)
	if err != nil {
		return []string{fmt.Sprintf("Error: %v", err)}
	}
	var held []string
	for _, h := range state.HeldItems(p) {
		held = append(held, h.ItemID)
	}
	output := []string{
		fmt.Sprintf("Turn: %d", p.TurnCount),
		fmt.Sprintf("Location: %s", p.Location),
		fmt.Sprintf("HP: %d  Strength: %d  XP: %d", state.HP(p), state.Strength(p), p.XP),
		fmt.Sprintf("Inventory: %v", held),
	}
	if len(p.Quests) > 0 {
		output = append(output, fmt.Sprintf("Quests: %v", p.Quests))
	}
	if len(p.Applied) > 0 {
		output = append(output, fmt.Sprintf("Effects: %v", p.Applied))
	}
	return output
}

func formatTrace(result types.Result) []string {
	if len(result.Events) == 0 {
		return nil
	}
	lines := []string{fmt.Sprintf("[trace] Events: %d", len(result.Events))}
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
		lines = append(lines, fmt.Sprintf("[trace]   %s %s", e.Type, strings.Join(parts, " ")))
	}
	return lines
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
