package persist

import (
	"time"

	"gorm.io/gorm"
)

// ProtagonistRow is the protagonist's own stats.
type ProtagonistRow struct {
	ID          string `gorm:"primaryKey;size:64"`
	Name        string `gorm:"size:128;not null"`
	Location    string `gorm:"size:64;not null"`
	Ambient     string `gorm:"size:64"`
	HP          int
	Strength    int
	XP          int
	TurnCount   int
	RNGSeed     int64
	RNGPosition int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ProtagonistRow) TableName() string { return "protagonists" }

// QuestRow is a protagonist's status for one quest.
type QuestRow struct {
	ProtagonistID string `gorm:"primaryKey;size:64"`
	QuestID       string `gorm:"primaryKey;size:64"`
	Status        int    `gorm:"not null"`
}

func (QuestRow) TableName() string { return "protagonist_quests" }

// HeldRow is a held item. A NULL uses_left means unlimited uses.
type HeldRow struct {
	ProtagonistID string `gorm:"primaryKey;size:64"`
	ItemID        string `gorm:"primaryKey;size:64"`
	UsesLeft      *int
	Position      int `gorm:"not null"`
}

func (HeldRow) TableName() string { return "protagonist_items" }

// MetRow records an NPC the protagonist has talked to.
type MetRow struct {
	ProtagonistID string `gorm:"primaryKey;size:64"`
	NPCID         string `gorm:"primaryKey;size:64;column:npc_id"`
}

func (MetRow) TableName() string { return "met_npcs" }

// EncounterRow is a per-protagonist enemy copy. Defeated marks enemies
// that count as beaten even after their hp is restored.
type EncounterRow struct {
	ProtagonistID string `gorm:"primaryKey;size:64"`
	EnemyID       string `gorm:"primaryKey;size:64"`
	Engaged       bool
	Defeated      bool
	HP            int
	Strength      int
}

func (EncounterRow) TableName() string { return "protagonist_enemies" }

// AppliedRow counts outstanding applications of a side-effect and the hp
// they actually changed.
type AppliedRow struct {
	ProtagonistID string `gorm:"primaryKey;size:64"`
	EffectID      string `gorm:"primaryKey;size:64"`
	Count         int    `gorm:"not null"`
	HPDelta       int    `gorm:"not null;default:0"`
}

func (AppliedRow) TableName() string { return "applied_effects" }

// childModels are the per-protagonist tables replaced on every commit.
var childModels = []any{&QuestRow{}, &HeldRow{}, &MetRow{}, &EncounterRow{}, &AppliedRow{}}

// AutoMigrate creates or updates all persist tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(append([]any{&ProtagonistRow{}}, childModels...)...)
}
