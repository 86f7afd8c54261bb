// Package engine wires the world, the protagonist store and the rule
// packages into player actions. Every action runs inside one store
// transaction: the protagonist is mutated on a private copy, quests are
// refreshed, events are narrated, and the copy is committed only when the
// action succeeds.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nathoo/clinicquest/engine/dialogue"
	"github.com/nathoo/clinicquest/engine/events"
	"github.com/nathoo/clinicquest/engine/inventory"
	"github.com/nathoo/clinicquest/engine/navigate"
	"github.com/nathoo/clinicquest/engine/quest"
	"github.com/nathoo/clinicquest/engine/state"
	"github.com/nathoo/clinicquest/engine/store"
	"github.com/nathoo/clinicquest/engine/world"
	"github.com/nathoo/clinicquest/types"
)

// Engine runs player actions against a shared world.
type Engine struct {
	world *world.World
	store store.Store
	log   *zap.Logger
	seed  int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed fixes the RNG seed given to new protagonists. Zero means a
// time-based seed.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// New creates an engine. A nil logger disables logging.
func New(w *world.World, st store.Store, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{world: w, store: st, log: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// World returns the static world the engine plays in.
func (e *Engine) World() *world.World {
	return e.world
}

// NewGame creates a protagonist with a fresh ID.
func (e *Engine) NewGame(ctx context.Context, name string) (*types.Protagonist, types.Result, error) {
	return e.Start(ctx, uuid.NewString(), name)
}

// Start creates a protagonist with the given ID at the start location,
// applies the start location's ambient effect and grants the quests no
// NPC offers.
func (e *Engine) Start(ctx context.Context, id, name string) (*types.Protagonist, types.Result, error) {
	p := state.NewProtagonist(e.world, id, name)
	p.RNGSeed = e.seed
	if p.RNGSeed == 0 {
		p.RNGSeed = time.Now().UnixNano()
	}

	evts, err := navigate.Enter(e.world, p)
	if err != nil {
		return nil, types.Result{}, e.fail("start", id, err)
	}
	evts = append(evts, quest.GrantStarting(e.world, p)...)

	if err := e.store.Create(ctx, p); err != nil {
		return nil, types.Result{}, e.fail("start", id, err)
	}
	e.log.Info("protagonist created",
		zap.String("protagonist", id),
		zap.String("name", name),
		zap.String("location", p.Location))

	var out []string
	if e.world.Game.Intro != "" {
		out = append(out, e.world.Game.Intro)
	}
	view, err := navigate.WhereAmI(e.world, p)
	if err != nil {
		return nil, types.Result{}, e.fail("start", id, err)
	}
	out = append(out, e.describeView(view)...)
	out = append(out, events.Dispatch(evts, e.world.Handlers)...)
	return p, types.Result{Events: evts, Output: out}, nil
}

// Protagonist returns a copy of the protagonist's current state.
func (e *Engine) Protagonist(ctx context.Context, id string) (*types.Protagonist, error) {
	return e.store.Get(ctx, id)
}

// Replace overwrites a protagonist with a snapshot, e.g. a loaded save.
func (e *Engine) Replace(ctx context.Context, id string, snapshot *types.Protagonist) error {
	err := e.store.Update(ctx, id, func(p *types.Protagonist) error {
		*p = *state.Clone(snapshot)
		p.ID = id
		state.Ensure(p)
		return nil
	})
	if err != nil {
		return e.fail("replace", id, err)
	}
	return nil
}

// WhereAmI describes the protagonist's surroundings.
func (e *Engine) WhereAmI(ctx context.Context, id string) (types.View, error) {
	p, err := e.store.Get(ctx, id)
	if err != nil {
		return types.View{}, err
	}
	view, err := navigate.WhereAmI(e.world, p)
	if err != nil {
		return types.View{}, e.fail("whereami", id, err)
	}
	return view, nil
}

// Go moves the protagonist to an adjacent location.
func (e *Engine) Go(ctx context.Context, id, locationID string) (types.Result, error) {
	return e.act(ctx, id, "go", func(p *types.Protagonist, _ *RNG) ([]types.Event, []string, error) {
		evts, err := navigate.Go(e.world, p, locationID)
		if err != nil {
			return nil, nil, err
		}
		view, err := navigate.WhereAmI(e.world, p)
		if err != nil {
			return nil, nil, err
		}
		return evts, e.describeView(view), nil
	})
}

// TalkTo talks to an NPC at the protagonist's location.
func (e *Engine) TalkTo(ctx context.Context, id, npcID string) (types.Result, error) {
	return e.act(ctx, id, "talk_to", func(p *types.Protagonist, _ *RNG) ([]types.Event, []string, error) {
		granted, evts, err := quest.TalkTo(e.world, p, npcID)
		if err != nil {
			return nil, nil, err
		}
		names := make([]string, 0, len(granted))
		for _, qid := range granted {
			names = append(names, e.world.Name(qid))
		}
		return evts, dialogue.Conversation(e.world.Characters[npcID], names), nil
	})
}

// Attack hits an enemy at the protagonist's location for amount damage.
func (e *Engine) Attack(ctx context.Context, id, enemyID string, amount int) (types.Result, error) {
	return e.act(ctx, id, "attack", func(p *types.Protagonist, rng *RNG) ([]types.Event, []string, error) {
		return attack(e.world, p, enemyID, amount, rng)
	})
}

// UseItem uses a held item on the protagonist (targetID "") or on an enemy
// at the protagonist's location.
func (e *Engine) UseItem(ctx context.Context, id, itemID, targetID string) (types.Result, error) {
	return e.act(ctx, id, "use_item", func(p *types.Protagonist, _ *RNG) ([]types.Event, []string, error) {
		evts, err := inventory.Use(e.world, p, itemID, targetID)
		if err != nil {
			return nil, nil, err
		}
		out := []string{fmt.Sprintf("You use the %s.", e.world.Name(itemID))}
		if targetID != "" && targetID != p.ID {
			out[0] = fmt.Sprintf("You use the %s on %s.", e.world.Name(itemID), e.world.Name(targetID))
		}
		if se, ok, _ := e.world.ItemEffect(itemID); ok {
			if d := describeEffect(se); d != "" {
				out = append(out, d)
			}
		}
		for _, ev := range evts {
			if ev.Type == "enemy_defeated" {
				out = append(out, fmt.Sprintf("%s is defeated.", e.world.Name(targetID)))
			}
		}
		return evts, out, nil
	})
}

// Take picks up an item at the protagonist's location.
func (e *Engine) Take(ctx context.Context, id, itemID string) (types.Result, error) {
	return e.act(ctx, id, "take", func(p *types.Protagonist, _ *RNG) ([]types.Event, []string, error) {
		evts, err := inventory.Take(e.world, p, itemID)
		if err != nil {
			return nil, nil, err
		}
		return evts, []string{fmt.Sprintf("You take the %s.", e.world.Name(itemID))}, nil
	})
}

// AcceptQuest accepts a single quest.
func (e *Engine) AcceptQuest(ctx context.Context, id, questID string) (types.Result, error) {
	return e.act(ctx, id, "accept_quest", func(p *types.Protagonist, _ *RNG) ([]types.Event, []string, error) {
		evts, err := quest.Accept(e.world, p, questID)
		if err != nil {
			return nil, nil, err
		}
		if len(evts) == 0 {
			return nil, []string{fmt.Sprintf("You already have %q.", e.world.Name(questID))}, nil
		}
		return evts, []string{fmt.Sprintf("Quest accepted: %s.", e.world.Name(questID))}, nil
	})
}

// TurnInQuest hands in a completed quest and collects its reward.
func (e *Engine) TurnInQuest(ctx context.Context, id, questID string) (types.Result, error) {
	return e.act(ctx, id, "turn_in_quest", func(p *types.Protagonist, _ *RNG) ([]types.Event, []string, error) {
		evts, err := quest.TurnIn(e.world, p, questID)
		if err != nil {
			return nil, nil, err
		}
		out := []string{fmt.Sprintf("Quest handed in: %s.", e.world.Name(questID))}
		if se, err := e.world.QuestEffect(questID); err == nil {
			if d := describeEffect(se); d != "" {
				out = append(out, d)
			}
		}
		for _, ev := range evts {
			if ev.Type == "item_taken" {
				out = append(out, fmt.Sprintf("You receive the %s.", ev.Data["name"]))
			}
		}
		return evts, out, nil
	})
}

// Inventory lists held items in acquisition order.
func (e *Engine) Inventory(ctx context.Context, id string) ([]types.ItemView, error) {
	p, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	held := state.HeldItems(p)
	out := make([]types.ItemView, 0, len(held))
	for _, h := range held {
		out = append(out, types.ItemView{ID: h.ItemID, Name: e.world.Name(h.ItemID), UsesLeft: h.UsesLeft})
	}
	return out, nil
}

// Quests lists the protagonist's recorded quests.
func (e *Engine) Quests(ctx context.Context, id string) ([]types.QuestView, error) {
	p, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return quest.Views(e.world, p), nil
}

type actionFunc func(p *types.Protagonist, rng *RNG) ([]types.Event, []string, error)

// act runs one action in a store transaction. The action's own error
// aborts the transaction; otherwise quests are refreshed, events are
// narrated and the turn is counted.
func (e *Engine) act(ctx context.Context, id, name string, fn actionFunc) (types.Result, error) {
	var res types.Result
	err := e.store.Update(ctx, id, func(p *types.Protagonist) error {
		if state.IsOut(p) {
			return types.ErrGameOver
		}
		rng := RestoreRNG(p.RNGSeed, p.RNGPosition)
		evts, out, err := fn(p, rng)
		if err != nil {
			return err
		}
		completed := quest.Refresh(e.world, p)
		for _, ev := range completed {
			out = append(out, fmt.Sprintf("Quest completed: %v.", ev.Data["name"]))
		}
		evts = append(evts, completed...)
		if state.IsOut(p) {
			evts = append(evts, types.Event{Type: "protagonist_defeated", Data: map[string]any{"protagonist": p.ID}})
			out = append(out, "You collapse. Game over.")
		}
		p.TurnCount++
		p.RNGPosition = rng.Position()

		res.Events = evts
		res.Output = append(out, events.Dispatch(evts, e.world.Handlers)...)
		return nil
	})
	if err != nil {
		return types.Result{}, e.fail(name, id, err)
	}
	e.log.Debug("action",
		zap.String("action", name),
		zap.String("protagonist", id),
		zap.Int("events", len(res.Events)))
	return res, nil
}

// fail logs an action failure at a level matching its cause and returns it.
func (e *Engine) fail(action, id string, err error) error {
	fields := []zap.Field{zap.String("action", action), zap.String("protagonist", id), zap.Error(err)}
	switch {
	case errors.Is(err, types.ErrDanglingReference):
		e.log.Error("world consistency failure", fields...)
	case IsUserError(err):
		e.log.Debug("action rejected", fields...)
	default:
		e.log.Error("action failed", fields...)
	}
	return err
}

// IsUserError reports whether err rejects a player action without
// indicating a fault.
func IsUserError(err error) bool {
	for _, target := range []error{
		types.ErrNotFound,
		types.ErrAlreadyUsed,
		types.ErrAlreadyDefeated,
		types.ErrQuestNotReady,
		types.ErrNotNeighbour,
		types.ErrNoEffect,
		types.ErrNotHere,
		types.ErrNotHeld,
		types.ErrGameOver,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
