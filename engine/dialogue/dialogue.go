// Package dialogue produces the lines characters speak.
package dialogue

import (
	"fmt"
	"strings"

	"github.com/nathoo/clinicquest/types"
)

// Greeting returns the character's opening line.
func Greeting(c types.Character) string {
	if c.Dialogue == nil || c.Dialogue.StartPhrase == "" {
		return fmt.Sprintf("%s has nothing to say.", c.Name)
	}
	return quote(c, c.Dialogue.StartPhrase)
}

// Farewell returns the character's closing line, or "" when it has none.
func Farewell(c types.Character) string {
	if c.Dialogue == nil || c.Dialogue.EndPhrase == "" {
		return ""
	}
	return quote(c, c.Dialogue.EndPhrase)
}

// Taunt returns a combat phrase chosen by pick, which must return an index
// in [0, n). Characters without phrases grunt.
func Taunt(c types.Character, pick func(n int) int) string {
	if c.Dialogue == nil || len(c.Dialogue.Phrases) == 0 {
		return fmt.Sprintf("%s grunts.", c.Name)
	}
	return quote(c, c.Dialogue.Phrases[pick(len(c.Dialogue.Phrases))])
}

// Conversation renders a talk with an NPC: greeting, the quests it hands
// out, and the farewell.
func Conversation(npc types.Character, granted []string) []string {
	lines := []string{Greeting(npc)}
	if len(granted) > 0 {
		lines = append(lines, "New quests: "+strings.Join(granted, ", ")+".")
	}
	if bye := Farewell(npc); bye != "" {
		lines = append(lines, bye)
	}
	return lines
}

func quote(c types.Character, phrase string) string {
	return fmt.Sprintf("%s: \"%s\"", c.Name, phrase)
}
