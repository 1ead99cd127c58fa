package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/foodchain/game/engine"
	"github.com/wricardo/mcp-training/foodchain/game/savefile"
)

func newTestGame(t *testing.T, era engine.Era, seed uint64) *engine.GameEngine {
	t.Helper()
	e := engine.NewEngine(
		engine.WithChainSource(engine.StaticChains{{Apex: "Lion", Predator: "Hyena", Prey: "Zebra", Food: "Grass"}}),
		engine.WithRand(engine.NewSeededRand(seed)),
	)
	if _, err := e.StartGame(engine.GameConfig{Era: era, GridSize: engine.Small, TotalRounds: 8}); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	return e
}

type backendFactory struct {
	name string
	open func(t *testing.T) SavePersistence
}

var backends = []backendFactory{
	{"file", func(t *testing.T) SavePersistence {
		p, err := NewFilePersistence(filepath.Join(t.TempDir(), "saves"))
		if err != nil {
			t.Fatalf("NewFilePersistence failed: %v", err)
		}
		return p
	}},
	{"sqlite", func(t *testing.T) SavePersistence {
		p, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "foodchain.db"))
		if err != nil {
			t.Fatalf("OpenSQLite failed: %v", err)
		}
		t.Cleanup(func() { p.Close() })
		return p
	}},
}

func TestPersistence_SaveLoad(t *testing.T) {
	ctx := context.Background()
	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			p := backend.open(t)
			game := newTestGame(t, engine.Present, 1)
			game.Move(engine.Prey, game.State().Prey().Position())

			info, err := p.Save(ctx, "slot-1", game.State(), game.Turns())
			if err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			if info.Slot != "slot-1" || info.Era != engine.Present || info.GridSize != engine.Small ||
				info.Turn != engine.Predator || info.Round != 1 || info.TotalRounds != 8 {
				t.Errorf("Unexpected info %+v", info)
			}
			if !p.Exists(ctx, "slot-1") {
				t.Error("Slot should exist after save")
			}

			state, tm, err := p.Load(ctx, "slot-1")
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if tm.CurrentTurn() != engine.Predator {
				t.Errorf("Expected predator turn, got %s", tm.CurrentTurn())
			}
			if state.Prey().Position() != game.State().Prey().Position() {
				t.Errorf("Prey position mismatch")
			}
		})
	}
}

func TestPersistence_Overwrite(t *testing.T) {
	ctx := context.Background()
	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			p := backend.open(t)
			first := newTestGame(t, engine.Past, 1)
			second := newTestGame(t, engine.Future, 2)

			if _, err := p.Save(ctx, "same", first.State(), first.Turns()); err != nil {
				t.Fatalf("first Save failed: %v", err)
			}
			if _, err := p.Save(ctx, "same", second.State(), second.Turns()); err != nil {
				t.Fatalf("second Save failed: %v", err)
			}
			state, _, err := p.Load(ctx, "same")
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if state.Era() != engine.Future {
				t.Errorf("Expected overwritten era FUTURE, got %s", state.Era())
			}
			infos, err := p.List(ctx)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(infos) != 1 {
				t.Errorf("Expected 1 save, got %d", len(infos))
			}
		})
	}
}

func TestPersistence_NotFoundAndDelete(t *testing.T) {
	ctx := context.Background()
	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			p := backend.open(t)

			if _, _, err := p.Load(ctx, "nope"); !errors.Is(err, ErrSaveNotFound) {
				t.Errorf("Load: expected ErrSaveNotFound, got %v", err)
			}
			if err := p.Delete(ctx, "nope"); !errors.Is(err, ErrSaveNotFound) {
				t.Errorf("Delete: expected ErrSaveNotFound, got %v", err)
			}

			game := newTestGame(t, engine.Past, 3)
			if _, err := p.Save(ctx, "keep", game.State(), game.Turns()); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			if err := p.Delete(ctx, "keep"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if p.Exists(ctx, "keep") {
				t.Error("Slot should be gone after delete")
			}
		})
	}
}

func TestPersistence_InvalidSlot(t *testing.T) {
	ctx := context.Background()
	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			p := backend.open(t)
			game := newTestGame(t, engine.Past, 4)
			for _, slot := range []string{"", "Has-Upper", "../escape", "with space", strings.Repeat("a", 65)} {
				if _, err := p.Save(ctx, slot, game.State(), game.Turns()); !errors.Is(err, ErrInvalidSlot) {
					t.Errorf("Save(%q): expected ErrInvalidSlot, got %v", slot, err)
				}
			}
		})
	}
}

func TestFilePersistence_CorruptedSave(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	p, err := NewFilePersistence(dir)
	if err != nil {
		t.Fatalf("NewFilePersistence failed: %v", err)
	}
	game := newTestGame(t, engine.Past, 5)
	if _, err := p.Save(ctx, "good", game.State(), game.Turns()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.sav"), []byte("ERA=PAST\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644)

	if _, _, err := p.Load(ctx, "bad"); !errors.Is(err, savefile.ErrInvalidFormat) {
		t.Errorf("Expected ErrInvalidFormat, got %v", err)
	}

	infos, err := p.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != 1 || infos[0].Slot != "good" {
		t.Errorf("Expected only the good save, got %+v", infos)
	}
}
