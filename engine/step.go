package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nathoo/clinicquest/engine/navigate"
	"github.com/nathoo/clinicquest/engine/parser"
	"github.com/nathoo/clinicquest/engine/quest"
	"github.com/nathoo/clinicquest/engine/resolve"
	"github.com/nathoo/clinicquest/engine/state"
	"github.com/nathoo/clinicquest/types"
)

// Step processes one typed command for a protagonist. Rejected actions
// are reported in the result's output; the returned error is reserved for
// storage and world consistency failures.
func (e *Engine) Step(ctx context.Context, id, input string) (types.Result, error) {
	p, err := e.store.Get(ctx, id)
	if err != nil {
		return types.Result{}, err
	}
	if state.IsOut(p) {
		return say(describeError(types.ErrGameOver)), nil
	}

	intent := parser.Parse(input)
	if intent.Verb == "" {
		return say("What do you want to do?"), nil
	}

	res, err := e.dispatch(ctx, p, intent)
	if err != nil {
		if IsUserError(err) || isResolveError(err) {
			return say(describeError(err)), nil
		}
		return types.Result{}, err
	}
	return res, nil
}

func (e *Engine) dispatch(ctx context.Context, p *types.Protagonist, intent types.Intent) (types.Result, error) {
	w := e.world
	switch intent.Verb {
	case "look":
		view, err := navigate.WhereAmI(w, p)
		if err != nil {
			return types.Result{}, err
		}
		return types.Result{Output: e.describeView(view)}, nil

	case "examine":
		if intent.Object == "" {
			return say("Examine what?"), nil
		}
		return e.examine(p, intent.Object)

	case "go":
		if intent.Object == "" {
			return say("Go where?"), nil
		}
		loc, err := resolve.Location(w, p, intent.Object)
		if err != nil {
			return types.Result{}, err
		}
		return e.Go(ctx, p.ID, loc)

	case "talk":
		if intent.Object == "" {
			return say("Talk to whom?"), nil
		}
		npc, err := resolve.Character(w, p, intent.Object)
		if err != nil {
			return types.Result{}, err
		}
		return e.TalkTo(ctx, p.ID, npc)

	case "attack":
		if intent.Object == "" {
			return say("Attack whom?"), nil
		}
		enemy, err := resolve.Character(w, p, intent.Object)
		if err != nil {
			return types.Result{}, err
		}
		return e.Attack(ctx, p.ID, enemy, strikeAmount(p))

	case "take":
		if intent.Object == "" {
			return say("Take what?"), nil
		}
		item, err := resolve.Item(w, p, intent.Object)
		if err != nil {
			return types.Result{}, err
		}
		return e.Take(ctx, p.ID, item)

	case "use":
		if intent.Object == "" {
			return say("Use what?"), nil
		}
		item, err := resolve.Item(w, p, intent.Object)
		if err != nil {
			return types.Result{}, err
		}
		target := ""
		if t := intent.Target; t != "" && t != "me" && t != "myself" && t != "self" {
			if target, err = resolve.Character(w, p, t); err != nil {
				return types.Result{}, err
			}
		}
		return e.UseItem(ctx, p.ID, item, target)

	case "accept":
		if intent.Object == "" {
			return say("Accept which quest?"), nil
		}
		q, err := resolve.Quest(w, p, intent.Object)
		if err != nil {
			return types.Result{}, err
		}
		return e.AcceptQuest(ctx, p.ID, q)

	case "turnin":
		if intent.Object == "" {
			return say("Hand in which quest?"), nil
		}
		q, err := resolve.Quest(w, p, intent.Object)
		if err != nil {
			return types.Result{}, err
		}
		return e.TurnInQuest(ctx, p.ID, q)

	case "inventory":
		held := state.HeldItems(p)
		if len(held) == 0 {
			return say("You are carrying nothing."), nil
		}
		var names []string
		for _, h := range held {
			name := w.Name(h.ItemID)
			if h.UsesLeft != nil && *h.UsesLeft <= 0 {
				name += " (used)"
			}
			names = append(names, name)
		}
		return say("You are carrying: " + strings.Join(names, ", ") + "."), nil

	case "quests":
		views := quest.Views(w, p)
		if len(views) == 0 {
			return say("You have no quests."), nil
		}
		out := make([]string, 0, len(views))
		for _, v := range views {
			out = append(out, fmt.Sprintf("%s [%s]", v.Name, strings.ReplaceAll(v.Status.String(), "_", " ")))
		}
		return types.Result{Output: out}, nil

	case "stats":
		return say(e.describeStats(p)), nil

	case "wait":
		return say("Time passes."), nil

	default:
		return say("I don't understand that."), nil
	}
}

// examine describes a visible character, item or location.
func (e *Engine) examine(p *types.Protagonist, name string) (types.Result, error) {
	w := e.world
	if id, err := resolve.Character(w, p, name); err == nil {
		c := w.Characters[id]
		out := []string{describeOr(c.Description, c.Name)}
		if c.Kind == types.KindEnemy {
			if state.IsDefeated(p, id) {
				out = append(out, "Beaten.")
			} else if enemy, err := state.Enemy(w, p, id); err == nil && enemy.Combat != nil {
				out = append(out, fmt.Sprintf("hp %d, strength %d.", enemy.Combat.HP, enemy.Combat.Strength))
			}
		}
		return types.Result{Output: out}, nil
	}
	if id, err := resolve.Item(w, p, name); err == nil {
		it := w.Items[id]
		out := []string{describeOr(it.Description, it.Name)}
		if se, ok, _ := w.ItemEffect(id); ok {
			if d := describeEffect(se); d != "" {
				out = append(out, d)
			}
		}
		return types.Result{Output: out}, nil
	}
	id, err := resolve.Location(w, p, name)
	if err != nil {
		return types.Result{}, err
	}
	loc := w.Locations[id]
	return say(describeOr(loc.Description, loc.Name)), nil
}

func describeOr(desc, name string) string {
	if desc != "" {
		return desc
	}
	return fmt.Sprintf("You see nothing special about %s.", name)
}

func isResolveError(err error) bool {
	var nf *resolve.NotFoundError
	var amb *resolve.AmbiguityError
	return errors.As(err, &nf) || errors.As(err, &amb)
}

func say(lines ...string) types.Result {
	return types.Result{Output: lines}
}
