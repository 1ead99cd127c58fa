package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/foodchain/game/engine"
	"github.com/wricardo/mcp-training/foodchain/game/savefile"
)

// SaveExt is the file extension of save slots on disk
const SaveExt = ".sav"

// FilePersistence implements SavePersistence with one text file per slot
type FilePersistence struct {
	savesDir string
}

// NewFilePersistence creates a new file-based save store
func NewFilePersistence(savesDir string) (*FilePersistence, error) {
	// Create saves directory if it doesn't exist
	if err := os.MkdirAll(savesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create saves directory: %w", err)
	}
	return &FilePersistence{savesDir: savesDir}, nil
}

// Save writes the game to <dir>/<slot>.sav
func (fp *FilePersistence) Save(ctx context.Context, slot string, state *engine.GameState, tm *engine.TurnManager) (*SaveInfo, error) {
	if err := ValidateSlot(slot); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := fp.getFilePath(slot)
	if err := savefile.WriteFile(path, state, tm); err != nil {
		return nil, err
	}
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat save file: %w", err)
	}
	return newSaveInfo(slot, state, tm, st.ModTime().UTC()), nil
}

// Load decodes <dir>/<slot>.sav
func (fp *FilePersistence) Load(ctx context.Context, slot string) (*engine.GameState, *engine.TurnManager, error) {
	if err := ValidateSlot(slot); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	state, tm, err := savefile.ReadFile(fp.getFilePath(slot))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrSaveNotFound, slot)
		}
		return nil, nil, err
	}
	return state, tm, nil
}

// Delete removes a save file
func (fp *FilePersistence) Delete(ctx context.Context, slot string) error {
	if err := ValidateSlot(slot); err != nil {
		return err
	}
	if !fp.Exists(ctx, slot) {
		return fmt.Errorf("%w: %s", ErrSaveNotFound, slot)
	}
	if err := os.Remove(fp.getFilePath(slot)); err != nil {
		return fmt.Errorf("failed to remove save file: %w", err)
	}
	return nil
}

// List returns all readable saves, newest first. Unreadable files are skipped with a warning.
func (fp *FilePersistence) List(ctx context.Context) ([]*SaveInfo, error) {
	entries, err := os.ReadDir(fp.savesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read saves directory: %w", err)
	}

	var infos []*SaveInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), SaveExt) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		slot := strings.TrimSuffix(entry.Name(), SaveExt)
		if ValidateSlot(slot) != nil {
			continue
		}
		path := fp.getFilePath(slot)
		state, tm, err := savefile.ReadFile(path)
		if err != nil {
			log.Printf("Warning: skipping unreadable save %s: %v", entry.Name(), err)
			continue
		}
		st, err := os.Stat(path)
		if err != nil {
			continue
		}
		infos = append(infos, newSaveInfo(slot, state, tm, st.ModTime().UTC()))
	}

	sort.SliceStable(infos, func(i, j int) bool { return infos[i].SavedAt.After(infos[j].SavedAt) })
	return infos, nil
}

// Exists checks if a save file exists
func (fp *FilePersistence) Exists(ctx context.Context, slot string) bool {
	if ValidateSlot(slot) != nil {
		return false
	}
	_, err := os.Stat(fp.getFilePath(slot))
	return err == nil
}

// Close is a no-op for files
func (fp *FilePersistence) Close() error { return nil }

// getFilePath returns the full file path for a slot
func (fp *FilePersistence) getFilePath(slot string) string {
	return filepath.Join(fp.savesDir, slot+SaveExt)
}
