package types

import "errors"

// User-triggerable errors. The action is rejected and nothing is committed.
var (
	ErrAlreadyUsed     = errors.New("item already used")
	ErrAlreadyDefeated = errors.New("enemy already defeated")
	ErrQuestNotReady   = errors.New("quest not ready to turn in")
	ErrNotNeighbour    = errors.New("location is not a neighbour")
	ErrNoEffect        = errors.New("item has no effect")
	ErrNotHere         = errors.New("not at this location")
	ErrNotHeld         = errors.New("item not held")
	ErrGameOver        = errors.New("protagonist is out of the game")
)

// ErrNotFound is returned when an entity ID is unknown.
var ErrNotFound = errors.New("entity not found")

// ErrDanglingReference signals a broken relationship in the world graph.
// It indicates a seeding or mutation bug and is never a user error.
var ErrDanglingReference = errors.New("dangling reference")
