package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nathoo/clinicquest/engine"
	"github.com/nathoo/clinicquest/engine/state"
	"github.com/nathoo/clinicquest/engine/store"
	"github.com/nathoo/clinicquest/engine/world/worldtest"
	"github.com/nathoo/clinicquest/types"
)

// setupStore creates a Store on a private in-memory database.
func setupStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err, "setupStore: Open")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	s, err := New(db, worldtest.Clinic(), zap.NewNop())
	require.NoError(t, err, "setupStore: New")
	return s
}

func fullProtagonist() *types.Protagonist {
	w := worldtest.Clinic()
	p := state.NewProtagonist(w, "p1", "Vasya")
	p.Location = worldtest.Therapist
	p.Combat.HP = 0
	p.Combat.Strength = 15
	p.XP = 150
	p.Met[worldtest.Nurse] = true
	p.Applied[worldtest.StrengthUp] = 2
	p.AppliedHP[worldtest.StrengthUp] = 0
	p.Quests[worldtest.TalkToNurse] = types.QuestHanded
	p.Quests[worldtest.GoTherapist] = types.QuestInProgress
	state.Give(p, w.Items[worldtest.Sandwich])
	state.Give(p, w.Items[worldtest.Donut])
	granny, _ := state.Enemy(w, p, worldtest.Granny)
	granny.Combat.HP = 0
	state.Defeat(p, granny)
	p.TurnCount = 12
	p.RNGSeed = 42
	p.RNGPosition = 5
	return p
}

func TestStore_RoundTrip(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	p := fullProtagonist()

	require.NoError(t, s.Create(ctx, p))
	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestStore_CreateDuplicate(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, fullProtagonist()))
	err := s.Create(ctx, fullProtagonist())
	assert.ErrorIs(t, err, store.ErrDuplicateID)
}

func TestStore_GetMissing(t *testing.T) {
	s := setupStore(t)
	_, err := s.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, types.ErrNotFound)

	err = s.Update(context.Background(), "ghost", func(*types.Protagonist) error { return nil })
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestStore_UpdateCommits(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, fullProtagonist()))

	err := s.Update(ctx, "p1", func(p *types.Protagonist) error {
		p.XP += 10
		delete(p.Held, worldtest.Donut)
		p.Quests[worldtest.GoTherapist] = types.QuestCompleted
		return nil
	})
	require.NoError(t, err)

	got, err := s.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 160, got.XP)
	assert.NotContains(t, got.Held, worldtest.Donut)
	assert.Contains(t, got.Held, worldtest.Sandwich)
	assert.Equal(t, types.QuestCompleted, got.Quests[worldtest.GoTherapist])
}

func TestStore_UpdateRollsBack(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, fullProtagonist()))
	before, err := s.Get(ctx, "p1")
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.Update(ctx, "p1", func(p *types.Protagonist) error {
		p.XP = 9999
		p.Location = worldtest.Registry
		return boom
	})
	assert.Same(t, boom, err)

	after, err := s.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, fullProtagonist()))

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Update(ctx, "p1", func(p *types.Protagonist) error {
				p.TurnCount++
				return nil
			}))
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 12+n, got.TurnCount)
}

func TestStore_List(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	w := worldtest.Clinic()
	for _, id := range []string{"b", "a", "c"} {
		require.NoError(t, s.Create(ctx, state.NewProtagonist(w, id, id)))
	}
	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestStore_Engine(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	e := engine.New(worldtest.Clinic(), s, zap.NewNop(), engine.WithSeed(3))

	_, _, err := e.Start(ctx, "p1", "Vasya")
	require.NoError(t, err)
	_, err = e.Attack(ctx, "p1", worldtest.Granny, 4)
	require.NoError(t, err)

	p, err := s.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 6, p.Encounters[worldtest.Granny].Combat.HP)
	assert.Equal(t, int64(1), p.RNGPosition)

	_, err = e.Attack(ctx, "p1", worldtest.Granny, 6)
	require.NoError(t, err)
	_, err = e.Attack(ctx, "p1", worldtest.Granny, 6)
	assert.ErrorIs(t, err, types.ErrAlreadyDefeated)

	quests, err := e.Quests(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, quests, 1)
	assert.Equal(t, types.QuestCompleted, quests[0].Status)
}
