// Package events implements single-pass event handler dispatch.
// Handlers narrate events; they never mutate state or emit new events.
package events

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/clinicquest/types"
)

// Dispatch runs handlers against the emitted events and returns the
// narration lines of every handler that matches, in event order.
func Dispatch(events []types.Event, handlers []types.EventHandler) []string {
	var out []string
	for _, event := range events {
		for _, h := range handlers {
			if !Matches(h, event) {
				continue
			}
			if text := Interpolate(h.Say, event.Data); text != "" {
				out = append(out, text)
			}
		}
	}
	return out
}

// Matches reports whether a handler fires for an event. Every Match entry
// must equal the string form of the event's data value.
func Matches(h types.EventHandler, event types.Event) bool {
	if h.EventType != event.Type {
		return false
	}
	for key, want := range h.Match {
		got, ok := event.Data[key]
		if !ok || fmt.Sprint(got) != want {
			return false
		}
	}
	return true
}

// Interpolate replaces {key} placeholders with event data values.
func Interpolate(text string, data map[string]any) string {
	if !strings.Contains(text, "{") || len(data) == 0 {
		return text
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(data[k]))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
