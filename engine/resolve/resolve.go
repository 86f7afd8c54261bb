// Package resolve maps names typed by the player to entity IDs, looking
// only at what the protagonist can currently see or holds.
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/nathoo/clinicquest/engine/world"
	"github.com/nathoo/clinicquest/types"
)

// AmbiguityError indicates multiple entities matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Name, names)
}

// NotFoundError indicates no entity matched a name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("you don't see %q here", e.Name)
}

type candidate struct {
	id   string
	name string
}

// Character resolves a character at the protagonist's location, including
// defeated enemies.
func Character(w *world.World, p *types.Protagonist, name string) (string, error) {
	chars, err := w.LocationCharacters(p.Location)
	if err != nil {
		return "", err
	}
	cands := make([]candidate, 0, len(chars))
	for _, c := range chars {
		cands = append(cands, candidate{c.ID, c.Name})
	}
	return resolveName(name, cands)
}

// Item resolves a held item or one lying at the protagonist's location,
// including drops of enemies defeated here.
func Item(w *world.World, p *types.Protagonist, name string) (string, error) {
	seen := map[string]bool{}
	var cands []candidate
	add := func(it types.Item) {
		if !seen[it.ID] {
			seen[it.ID] = true
			cands = append(cands, candidate{it.ID, it.Name})
		}
	}
	for id := range p.Held {
		if it, ok := w.Items[id]; ok {
			add(it)
		}
	}
	items, err := w.LocationItems(p.Location)
	if err != nil {
		return "", err
	}
	for _, it := range items {
		add(it)
	}
	chars, err := w.LocationCharacters(p.Location)
	if err != nil {
		return "", err
	}
	for _, c := range chars {
		if !p.Defeated[c.ID] {
			continue
		}
		drops, err := w.CharacterItems(c.ID)
		if err != nil {
			return "", err
		}
		for _, it := range drops {
			add(it)
		}
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].id < cands[j].id })
	return resolveName(name, cands)
}

// Location resolves the current location or one of its neighbours.
func Location(w *world.World, p *types.Protagonist, name string) (string, error) {
	cur, err := w.Location(p.Location)
	if err != nil {
		return "", err
	}
	ns, err := w.Neighbours(p.Location)
	if err != nil {
		return "", err
	}
	cands := []candidate{{cur.ID, cur.Name}}
	for _, n := range ns {
		cands = append(cands, candidate{n.ID, n.Name})
	}
	return resolveName(name, cands)
}

// Quest resolves a quest the protagonist has recorded or one offered by
// an NPC at the current location.
func Quest(w *world.World, p *types.Protagonist, name string) (string, error) {
	seen := map[string]bool{}
	var cands []candidate
	for id := range p.Quests {
		seen[id] = true
		cands = append(cands, candidate{id, w.Name(id)})
	}
	chars, err := w.LocationCharacters(p.Location)
	if err != nil {
		return "", err
	}
	for _, c := range chars {
		for _, id := range c.Offers {
			if !seen[id] {
				seen[id] = true
				cands = append(cands, candidate{id, w.Name(id)})
			}
		}
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].id < cands[j].id })
	return resolveName(name, cands)
}

// resolveName picks the single candidate matching name. Exact matches win
// over partial ones; a close misspelling is accepted only when nothing else
// matches.
func resolveName(name string, cands []candidate) (string, error) {
	query := normalize(name)
	var exact, partial []string
	for _, c := range cands {
		switch matchName(c, query) {
		case matchExact:
			exact = append(exact, c.id)
		case matchPartial:
			partial = append(partial, c.id)
		}
	}
	matches := exact
	if len(matches) == 0 {
		matches = partial
	}
	if len(matches) == 0 {
		matches = fuzzy(query, cands)
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{Name: name}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguityError{Name: name, Candidates: matches}
	}
}

const (
	matchNone = iota
	matchPartial
	matchExact
)

// matchName compares a normalised query against an entity's ID and name.
// Supports exact match, underscore-normalised ID match, and a partial match
// on a run of words in the name.
func matchName(c candidate, query string) int {
	if query == "" {
		return matchNone
	}
	idLower := strings.ToLower(c.id)
	if idLower == query || strings.ReplaceAll(query, " ", "_") == idLower {
		return matchExact
	}
	nameNorm := normalize(c.name)
	if nameNorm == query {
		return matchExact
	}
	if strings.Contains(" "+nameNorm+" ", " "+query+" ") {
		return matchPartial
	}
	for _, word := range strings.Fields(nameNorm) {
		if strings.HasPrefix(word, query) && len([]rune(query)) >= 3 {
			return matchPartial
		}
	}
	return matchNone
}

// fuzzyThreshold is the minimum Jaro-Winkler similarity for a misspelt name.
const fuzzyThreshold = 0.88

// fuzzy returns the candidates scoring best against query, if any reaches
// fuzzyThreshold. Short queries never match fuzzily.
func fuzzy(query string, cands []candidate) []string {
	if len([]rune(query)) < 4 {
		return nil
	}
	best := 0.0
	var ids []string
	for _, c := range cands {
		score := similarity(query, c)
		switch {
		case score < fuzzyThreshold || score < best:
		case score > best:
			best = score
			ids = []string{c.id}
		default:
			ids = append(ids, c.id)
		}
	}
	return ids
}

// similarity scores query against the candidate's ID and full name. A
// single-word query is also compared to each long word of the name.
func similarity(query string, c candidate) float64 {
	nameNorm := normalize(c.name)
	score := matchr.JaroWinkler(query, nameNorm, false)
	if s := matchr.JaroWinkler(query, strings.ReplaceAll(strings.ToLower(c.id), "_", " "), false); s > score {
		score = s
	}
	if strings.Contains(query, " ") {
		return score
	}
	for _, word := range strings.Fields(nameNorm) {
		if len([]rune(word)) < 4 {
			continue
		}
		if s := matchr.JaroWinkler(query, word, false); s > score {
			score = s
		}
	}
	return score
}

var articles = map[string]bool{"the": true, "a": true, "an": true}

func normalize(s string) string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(s)) {
		if !articles[w] {
			words = append(words, w)
		}
	}
	return strings.Join(words, " ")
}
