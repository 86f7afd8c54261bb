package loader

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/nathoo/clinicquest/engine/world"
	"github.com/nathoo/clinicquest/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string

	causes []error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Unwrap exposes the underlying world check errors, so callers can test
// for types.ErrDanglingReference.
func (e *ValidationError) Unwrap() []error {
	return e.causes
}

// validate runs the world consistency check on top of the build problems
// and logs warnings for content that loads but cannot be reached in play.
func validate(w *world.World, problems []string, log *zap.Logger) error {
	ve := &ValidationError{Errors: append([]string(nil), problems...)}

	if w.Game.Title == "" {
		ve.Errors = append(ve.Errors, "Game.title is required")
	}
	if w.Game.Start == "" {
		ve.Errors = append(ve.Errors, "Game.start is required")
	}

	if err := w.Check(); err != nil {
		var joined interface{ Unwrap() []error }
		if errors.As(err, &joined) {
			ve.causes = joined.Unwrap()
		} else {
			ve.causes = []error{err}
		}
		for _, c := range ve.causes {
			ve.Errors = append(ve.Errors, c.Error())
		}
	}

	ve.Warnings = warnings(w)
	for _, msg := range ve.Warnings {
		log.Warn("content warning", zap.String("title", w.Game.Title), zap.String("warning", msg))
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// warnings reports locations unreachable from the start and characters
// without dialogue.
func warnings(w *world.World) []string {
	var out []string

	reached := map[string]bool{}
	if _, ok := w.Locations[w.Game.Start]; ok {
		queue := []string{w.Game.Start}
		reached[w.Game.Start] = true
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			for _, n := range w.Locations[id].Neighbours {
				if _, ok := w.Locations[n]; ok && !reached[n] {
					reached[n] = true
					queue = append(queue, n)
				}
			}
		}
		for _, id := range sortedIDs(w.Locations) {
			if !reached[id] {
				out = append(out, fmt.Sprintf("location %q is unreachable from %q", id, w.Game.Start))
			}
		}
	}

	for _, id := range sortedIDs(w.Characters) {
		c := w.Characters[id]
		if c.Kind == types.KindNPC && c.Dialogue == nil {
			out = append(out, fmt.Sprintf("npc %q has no dialogue", id))
		}
	}
	sort.Strings(out)
	return out
}
