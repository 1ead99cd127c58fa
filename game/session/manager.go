package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/wricardo/mcp-training/foodchain/game/engine"
)

// Manager handles save slot lifecycle on top of a persistence backend
type Manager struct {
	persistence SavePersistence
	mu          sync.Mutex
}

// NewManager creates a new save slot manager
func NewManager(persistence SavePersistence) *Manager {
	return &Manager{persistence: persistence}
}

// Save stores the game under slot. An empty slot gets a generated name.
func (m *Manager) Save(ctx context.Context, slot string, state *engine.GameState, tm *engine.TurnManager) (*SaveInfo, error) {
	slot = strings.TrimSpace(slot)
	if slot == "" {
		slot = m.generateSlotName()
	}
	if err := ValidateSlot(slot); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	info, err := m.persistence.Save(ctx, slot, state, tm)
	if err != nil {
		return nil, fmt.Errorf("failed to save slot %s: %w", slot, err)
	}
	return info, nil
}

// Load returns the game stored in slot
func (m *Manager) Load(ctx context.Context, slot string) (*engine.GameState, *engine.TurnManager, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persistence.Load(ctx, strings.TrimSpace(slot))
}

// Delete removes a slot
func (m *Manager) Delete(ctx context.Context, slot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persistence.Delete(ctx, strings.TrimSpace(slot))
}

// List returns all saves, newest first
func (m *Manager) List(ctx context.Context) ([]*SaveInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	infos, err := m.persistence.List(ctx)
	if err != nil {
		return nil, err
	}
	if infos == nil {
		infos = []*SaveInfo{}
	}
	return infos, nil
}

// Exists checks whether slot holds a save
func (m *Manager) Exists(ctx context.Context, slot string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persistence.Exists(ctx, strings.TrimSpace(slot))
}

// Close releases the backend
func (m *Manager) Close() error {
	return m.persistence.Close()
}

// generateSlotName returns save-<first 8 hex digits of a random UUID>
func (m *Manager) generateSlotName() string {
	return "save-" + uuid.NewString()[:8]
}
