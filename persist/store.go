// Package persist is a gorm-backed protagonist store. Each Update runs in
// one database transaction: the protagonist is loaded, mutated on the Go
// side and written back only when the mutation succeeds.
package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nathoo/clinicquest/engine/state"
	"github.com/nathoo/clinicquest/engine/store"
	"github.com/nathoo/clinicquest/engine/world"
	"github.com/nathoo/clinicquest/types"
)

// Compile-time assertion that Store satisfies the store.Store interface.
var _ store.Store = (*Store)(nil)

// Open creates a GORM *DB backed by SQLite. SQLite allows one writer at a
// time, so the pool is limited to a single connection.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("persist: open %s: %w", dsn, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Store keeps protagonists in SQL tables. Enemy encounter copies are
// rebuilt from the world templates on load.
type Store struct {
	db     *gorm.DB
	world  *world.World
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a Store on db, migrating the schema.
func New(db *gorm.DB, w *world.World, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("persist: migrate: %w", err)
	}
	return &Store{db: db, world: w, logger: logger, locks: map[string]*sync.Mutex{}}, nil
}

// Create implements store.Store.
func (s *Store) Create(ctx context.Context, p *types.Protagonist) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&ProtagonistRow{}).Where("id = ?", p.ID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%q: %w", p.ID, store.ErrDuplicateID)
		}
		return s.write(tx, p, true)
	})
	if err != nil && !errors.Is(err, store.ErrDuplicateID) {
		s.logger.Error("create protagonist", zap.String("protagonist", p.ID), zap.Error(err))
	}
	return err
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, id string) (*types.Protagonist, error) {
	return s.read(s.db.WithContext(ctx), id)
}

// Update implements store.Store.
func (s *Store) Update(ctx context.Context, id string, fn store.UpdateFunc) error {
	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	var fnErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.read(tx, id)
		if err != nil {
			return err
		}
		if fnErr = fn(p); fnErr != nil {
			return fnErr
		}
		p.ID = id
		return s.write(tx, p, false)
	})
	if err != nil && !errors.Is(err, fnErr) && !errors.Is(err, types.ErrNotFound) {
		s.logger.Error("update protagonist", zap.String("protagonist", id), zap.Error(err))
	}
	return err
}

// List implements store.Store.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&ProtagonistRow{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

func (s *Store) lock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *Store) read(tx *gorm.DB, id string) (*types.Protagonist, error) {
	var row ProtagonistRow
	if err := tx.Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("protagonist %q: %w", id, types.ErrNotFound)
		}
		return nil, err
	}

	p := state.NewProtagonist(s.world, row.ID, row.Name)
	p.Location = row.Location
	p.Ambient = row.Ambient
	p.Combat.HP = row.HP
	p.Combat.Strength = row.Strength
	p.XP = row.XP
	p.TurnCount = row.TurnCount
	p.RNGSeed = row.RNGSeed
	p.RNGPosition = row.RNGPosition

	var quests []QuestRow
	if err := tx.Where("protagonist_id = ?", id).Find(&quests).Error; err != nil {
		return nil, err
	}
	for _, q := range quests {
		p.Quests[q.QuestID] = types.QuestStatus(q.Status)
	}

	var held []HeldRow
	if err := tx.Where("protagonist_id = ?", id).Order("position").Find(&held).Error; err != nil {
		return nil, err
	}
	for _, h := range held {
		p.Held[h.ItemID] = types.HeldItem{ItemID: h.ItemID, UsesLeft: h.UsesLeft, Order: h.Position}
	}

	var met []MetRow
	if err := tx.Where("protagonist_id = ?", id).Find(&met).Error; err != nil {
		return nil, err
	}
	for _, m := range met {
		p.Met[m.NPCID] = true
	}

	var applied []AppliedRow
	if err := tx.Where("protagonist_id = ?", id).Find(&applied).Error; err != nil {
		return nil, err
	}
	for _, a := range applied {
		p.Applied[a.EffectID] = a.Count
		p.AppliedHP[a.EffectID] = a.HPDelta
	}

	var enemies []EncounterRow
	if err := tx.Where("protagonist_id = ?", id).Find(&enemies).Error; err != nil {
		return nil, err
	}
	for _, e := range enemies {
		if e.Defeated {
			p.Defeated[e.EnemyID] = true
		}
		if !e.Engaged {
			continue
		}
		enemy, err := state.Enemy(s.world, p, e.EnemyID)
		if err != nil {
			return nil, fmt.Errorf("protagonist %q encounter: %w", id, types.ErrDanglingReference)
		}
		enemy.Combat = &types.CombatStats{HP: e.HP, Strength: e.Strength}
		p.Encounters[e.EnemyID] = enemy
	}
	return p, nil
}

func (s *Store) write(tx *gorm.DB, p *types.Protagonist, create bool) error {
	row := ProtagonistRow{
		ID:          p.ID,
		Name:        p.Name,
		Location:    p.Location,
		Ambient:     p.Ambient,
		HP:          state.HP(p),
		Strength:    state.Strength(p),
		XP:          p.XP,
		TurnCount:   p.TurnCount,
		RNGSeed:     p.RNGSeed,
		RNGPosition: p.RNGPosition,
	}
	if create {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Model(&ProtagonistRow{ID: p.ID}).Select("*").Omit("created_at").Updates(&row).Error; err != nil {
			return err
		}
		for _, m := range childModels {
			if err := tx.Where("protagonist_id = ?", p.ID).Delete(m).Error; err != nil {
				return err
			}
		}
	}

	var quests []QuestRow
	for id, st := range p.Quests {
		quests = append(quests, QuestRow{ProtagonistID: p.ID, QuestID: id, Status: int(st)})
	}
	var held []HeldRow
	for id, h := range p.Held {
		held = append(held, HeldRow{ProtagonistID: p.ID, ItemID: id, UsesLeft: h.UsesLeft, Position: h.Order})
	}
	var met []MetRow
	for id, ok := range p.Met {
		if ok {
			met = append(met, MetRow{ProtagonistID: p.ID, NPCID: id})
		}
	}
	var applied []AppliedRow
	for id, n := range p.Applied {
		if n > 0 {
			applied = append(applied, AppliedRow{ProtagonistID: p.ID, EffectID: id, Count: n, HPDelta: p.AppliedHP[id]})
		}
	}
	enemies := map[string]*EncounterRow{}
	for id, e := range p.Encounters {
		r := &EncounterRow{ProtagonistID: p.ID, EnemyID: id, Engaged: true}
		if e.Combat != nil {
			r.HP, r.Strength = e.Combat.HP, e.Combat.Strength
		}
		enemies[id] = r
	}
	for id, ok := range p.Defeated {
		if !ok {
			continue
		}
		if r, found := enemies[id]; found {
			r.Defeated = true
			continue
		}
		enemies[id] = &EncounterRow{ProtagonistID: p.ID, EnemyID: id, Defeated: true}
	}
	var encounterRows []EncounterRow
	for _, r := range enemies {
		encounterRows = append(encounterRows, *r)
	}

	if err := createAll(tx, quests); err != nil {
		return err
	}
	if err := createAll(tx, held); err != nil {
		return err
	}
	if err := createAll(tx, met); err != nil {
		return err
	}
	if err := createAll(tx, applied); err != nil {
		return err
	}
	return createAll(tx, encounterRows)
}

// createAll inserts rows in one statement, skipping empty slices.
func createAll[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}
