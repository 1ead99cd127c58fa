package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/wricardo/mcp-training/foodchain/game/engine"
)

var (
	ErrSaveNotFound = errors.New("save not found")
	ErrInvalidSlot  = errors.New("invalid save slot")
)

var slotPattern = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

// SavePersistence stores encoded games under named slots
type SavePersistence interface {
	// Save writes the game to slot, replacing any previous save there
	Save(ctx context.Context, slot string, state *engine.GameState, tm *engine.TurnManager) (*SaveInfo, error)

	// Load decodes the game stored in slot
	Load(ctx context.Context, slot string) (*engine.GameState, *engine.TurnManager, error)

	// Delete removes a slot
	Delete(ctx context.Context, slot string) error

	// List returns every readable slot, most recently saved first
	List(ctx context.Context) ([]*SaveInfo, error)

	// Exists checks whether a slot holds a save
	Exists(ctx context.Context, slot string) bool

	// Close releases the backend
	Close() error
}

// SaveInfo describes one stored game without loading it into an engine
type SaveInfo struct {
	Slot        string          `json:"slot"`
	Era         engine.Era      `json:"era"`
	GridSize    engine.GridSize `json:"grid_size"`
	Round       int             `json:"round"`
	TotalRounds int             `json:"total_rounds"`
	Turn        engine.Role     `json:"turn"`
	GameOver    bool            `json:"game_over"`
	SavedAt     time.Time       `json:"saved_at"`
}

// ValidateSlot checks a slot name against [a-z0-9_-]{1,64}
func ValidateSlot(slot string) error {
	if !slotPattern.MatchString(slot) {
		return fmt.Errorf("%w: %q (use 1-64 of a-z, 0-9, '_' or '-')", ErrInvalidSlot, slot)
	}
	return nil
}

func newSaveInfo(slot string, state *engine.GameState, tm *engine.TurnManager, savedAt time.Time) *SaveInfo {
	return &SaveInfo{
		Slot:        slot,
		Era:         state.Era(),
		GridSize:    state.GridSize(),
		Round:       tm.Round(),
		TotalRounds: tm.TotalRounds(),
		Turn:        tm.CurrentTurn(),
		GameOver:    tm.IsGameOver(),
		SavedAt:     savedAt,
	}
}
