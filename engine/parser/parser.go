// Package parser converts command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strings"

	"github.com/nathoo/clinicquest/types"
)

var verbAliases = map[string]string{
	// Look around
	"l":           "look",
	"whereami":    "look",
	"where":       "look",
	"осмотреться": "look",
	"где":         "look",

	// Examine
	"x":       "examine",
	"inspect": "examine",
	"check":   "examine",
	"study":   "examine",

	// Movement
	"walk":   "go",
	"run":    "go",
	"move":   "go",
	"head":   "go",
	"enter":  "go",
	"travel": "go",
	"иди":    "go",
	"идти":   "go",

	// Take
	"get":    "take",
	"grab":   "take",
	"взять":  "take",
	"возьми": "take",

	// Use
	"eat":          "use",
	"drink":        "use",
	"apply":        "use",
	"consume":      "use",
	"throw":        "use",
	"съесть":       "use",
	"использовать": "use",

	// Attack
	"hit":       "attack",
	"fight":     "attack",
	"strike":    "attack",
	"kill":      "attack",
	"punch":     "attack",
	"kick":      "attack",
	"ударить":   "attack",
	"атаковать": "attack",

	// Talk
	"ask":        "talk",
	"speak":      "talk",
	"chat":       "talk",
	"greet":      "talk",
	"говорить":   "talk",
	"поговорить": "talk",

	// Quests
	"journal": "quests",
	"j":       "quests",
	"q":       "quests",
	"квесты":  "quests",
	"принять": "accept",
	"handin":  "turnin",
	"сдать":   "turnin",

	// Miscellaneous
	"inv":       "inventory",
	"i":         "inventory",
	"инвентарь": "inventory",
	"status":    "stats",
	"score":     "stats",
	"me":        "stats",
	"z":         "wait",
}

// verbs whose whole remainder is a single name, never split on prepositions.
var wholeObjectVerbs = map[string]bool{
	"accept": true,
	"turnin": true,
	"go":     true,
}

var prepositions = map[string]bool{
	"on": true, "at": true, "to": true,
	"with": true, "against": true,
	"на": true, "в": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Parse converts a raw command string into an Intent.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	// Handle multi-word verb phrases before general parsing.
	words = expandMultiWordVerbs(words)

	// Apply verb aliases.
	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest := stripArticles(words[1:])

	if wholeObjectVerbs[verb] {
		return types.Intent{Verb: verb, Object: strings.Join(rest, " ")}
	}

	// Use the first preposition as a delimiter between object and target.
	object, target := splitOnPreposition(rest)

	return types.Intent{
		Verb:   verb,
		Object: object,
		Target: target,
	}
}

// expandMultiWordVerbs handles "look at", "pick up", "talk to" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "look":
		if words[1] == "at" {
			return append([]string{"examine"}, words[2:]...)
		}
		if words[1] == "around" {
			return append([]string{"look"}, words[2:]...)
		}
	case "pick":
		if words[1] == "up" {
			return append([]string{"take"}, words[2:]...)
		}
	case "talk", "speak", "chat":
		if words[1] == "to" || words[1] == "with" {
			return append([]string{"talk"}, words[2:]...)
		}
	case "go", "walk", "run", "head", "иди":
		if words[1] == "to" || words[1] == "в" || words[1] == "на" {
			return append([]string{"go"}, words[2:]...)
		}
	case "turn", "hand":
		if words[1] == "in" {
			return append([]string{"turnin"}, words[2:]...)
		}
	case "accept", "take", "start":
		if words[1] == "quest" {
			return append([]string{"accept"}, words[2:]...)
		}
	case "where":
		if len(words) >= 3 && words[1] == "am" && words[2] == "i" {
			return append([]string{"look"}, words[3:]...)
		}
	}

	return words
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

// splitOnPreposition splits words on the first preposition.
// Words before the preposition become the object, words after become the target.
// If no preposition is found, all words become the object.
func splitOnPreposition(words []string) (object, target string) {
	for i, w := range words {
		if prepositions[w] {
			object = strings.Join(words[:i], " ")
			target = strings.Join(words[i+1:], " ")
			return object, target
		}
	}
	return strings.Join(words, " "), ""
}

