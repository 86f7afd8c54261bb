// Package types defines the shared data structures for the clinicquest engine.
// World content types are immutable after loading; Protagonist is the only
// record mutated during play.
package types

// Intent is the parsed representation of a player command.
type Intent struct {
	Verb   string
	Object string // optional
	Target string // optional
}

// Event is emitted by an action after its mutation is prepared.
type Event struct {
	Type string
	Data map[string]any
}

// Result is the output of a single player action.
type Result struct {
	Events []Event
	Output []string
}

// Kind tags a Character record.
type Kind string

const (
	KindNPC         Kind = "npc"
	KindEnemy       Kind = "enemy"
	KindProtagonist Kind = "protagonist"
)

// SideEffect is a named bundle of stat deltas. It is shared by reference
// between items, quests and locations.
type SideEffect struct {
	ID             string
	Name           string
	Description    string
	HPChange       int
	XPChange       int
	StrengthChange int
}

// OwnerKind names the container an item belongs to.
type OwnerKind string

const (
	OwnerLocation  OwnerKind = "location"
	OwnerCharacter OwnerKind = "character"
	OwnerQuest     OwnerKind = "quest"
)

// Owner is the single container of an item.
type Owner struct {
	Kind OwnerKind
	ID   string
}

// Item is a world item template.
type Item struct {
	ID          string
	Name        string
	Description string
	Value       int
	EffectID    string // "" when the item has no side-effect
	Uses        *int   // nil = unlimited
	Owner       Owner
}

// Dialogue holds the phrases a character speaks.
type Dialogue struct {
	StartPhrase string
	EndPhrase   string
	Phrases     []string // combat taunts (enemies)
}

// CombatStats is the hp/strength part of a character.
type CombatStats struct {
	HP       int
	Strength int
}

// Character is an NPC, Enemy or Protagonist. Optional parts are composed
// in depending on Kind: enemies and the protagonist carry Combat, NPCs
// carry Offers.
type Character struct {
	ID          string
	Name        string
	Description string
	Kind        Kind
	XP          int
	Location    string
	Dialogue    *Dialogue
	Combat      *CombatStats
	Offers      []string // quest IDs
}

// Requirements lists what must hold before a quest completes.
type Requirements struct {
	NPCs    []string // must be met
	Enemies []string // must be defeated
	Quests  []string // must be handed
	Items   []string // must be held
}

// Quest is a quest template. Its status lives on the protagonist.
type Quest struct {
	ID          string
	Name        string
	Description string
	EffectID    string // reward side-effect (required)
	RewardItem  string // optional
	GiverID     string // offering NPC, "" for quests granted at start
	Requires    Requirements
}

// Location is a place in the world.
type Location struct {
	ID          string
	Name        string
	Description string
	EffectID    string   // ambient side-effect, "" for none
	Neighbours  []string // symmetric
}

// Rules holds world-wide numeric settings.
type Rules struct {
	MaxHP         int
	StartHP       int
	StartStrength int
	StartXP       int
}

// GameDef holds game metadata from the content files.
type GameDef struct {
	Title   string
	Author  string
	Version string
	Start   string // starting location ID
	Intro   string
	Rules   Rules
}

// EventHandler narrates an event. Match entries must equal the event's
// data values for the handler to fire.
type EventHandler struct {
	EventType string
	Match     map[string]string
	Say       string
}

// QuestStatus is the per-protagonist status of a quest.
type QuestStatus int

const (
	QuestNotStarted QuestStatus = iota
	QuestInProgress
	QuestCompleted
	QuestHanded
)

func (s QuestStatus) String() string {
	switch s {
	case QuestNotStarted:
		return "not_started"
	case QuestInProgress:
		return "in_progress"
	case QuestCompleted:
		return "completed"
	case QuestHanded:
		return "handed"
	default:
		return "unknown"
	}
}

// HeldItem is an item in the protagonist's possession.
type HeldItem struct {
	ItemID   string
	UsesLeft *int // nil = unlimited
	Order    int  // acquisition order, for stable listings
}

// Protagonist is the player character and its progression state.
type Protagonist struct {
	Character

	Ambient     string                 // side-effect applied on entering Location
	Met         map[string]bool        // NPC IDs
	Defeated    map[string]bool        // enemy IDs, grows only
	Applied     map[string]int         // side-effect ID → outstanding applications
	AppliedHP   map[string]int         // side-effect ID → hp actually changed by those applications
	Quests      map[string]QuestStatus // missing = not started
	Held        map[string]HeldItem
	Encounters  map[string]Character // per-protagonist copies of engaged enemies
	TurnCount   int
	RNGSeed     int64
	RNGPosition int64
}

// CharacterView is a visible occupant of a location.
type CharacterView struct {
	ID   string
	Name string
	Kind Kind
	HP   int // enemies only
}

// ItemView is a visible or held item.
type ItemView struct {
	ID       string
	Name     string
	UsesLeft *int
}

// View is what the protagonist sees at the current location.
type View struct {
	Location   Location
	Characters []CharacterView
	Items      []ItemView // lying in the location
	Drops      []ItemView // dropped by defeated enemies here
	Neighbours []Location
}

// QuestView is a quest as seen by one protagonist.
type QuestView struct {
	ID     string
	Name   string
	Status QuestStatus
}
