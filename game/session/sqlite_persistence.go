package session

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/foodchain/game/engine"
	"github.com/wricardo/mcp-training/foodchain/game/savefile"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SQLitePersistence implements SavePersistence on a single SQLite database.
// The save text is stored verbatim next to a few summary columns.
type SQLitePersistence struct {
	db  *sql.DB
	now func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// OpenSQLite opens (or creates) the database at path and applies the schema
func OpenSQLite(path string) (*SQLitePersistence, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	for _, stmt := range strings.Split(schemaSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return &SQLitePersistence{db: db, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *SQLitePersistence) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save upserts the slot
func (s *SQLitePersistence) Save(ctx context.Context, slot string, state *engine.GameState, tm *engine.TurnManager) (*SaveInfo, error) {
	if err := ValidateSlot(slot); err != nil {
		return nil, err
	}
	body, err := savefile.Marshal(state, tm)
	if err != nil {
		return nil, err
	}
	info := newSaveInfo(slot, state, tm, fromMillis(toMillis(s.now())))

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saves (slot, era, grid_size, round, total_rounds, turn, game_over, body, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET
		   era = excluded.era,
		   grid_size = excluded.grid_size,
		   round = excluded.round,
		   total_rounds = excluded.total_rounds,
		   turn = excluded.turn,
		   game_over = excluded.game_over,
		   body = excluded.body,
		   saved_at = excluded.saved_at`,
		info.Slot,
		string(info.Era),
		string(info.GridSize),
		info.Round,
		info.TotalRounds,
		string(info.Turn),
		info.GameOver,
		string(body),
		toMillis(info.SavedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("save slot %s: %w", slot, err)
	}
	return info, nil
}

// Load decodes the stored save text of a slot
func (s *SQLitePersistence) Load(ctx context.Context, slot string) (*engine.GameState, *engine.TurnManager, error) {
	if err := ValidateSlot(slot); err != nil {
		return nil, nil, err
	}
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM saves WHERE slot = ?`, slot).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: %s", ErrSaveNotFound, slot)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load slot %s: %w", slot, err)
	}
	return savefile.Unmarshal([]byte(body))
}

// Delete removes a slot
func (s *SQLitePersistence) Delete(ctx context.Context, slot string) error {
	if err := ValidateSlot(slot); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE slot = ?`, slot)
	if err != nil {
		return fmt.Errorf("delete slot %s: %w", slot, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete slot %s: %w", slot, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSaveNotFound, slot)
	}
	return nil
}

// List returns every slot, newest first
func (s *SQLitePersistence) List(ctx context.Context) ([]*SaveInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slot, era, grid_size, round, total_rounds, turn, game_over, saved_at
		 FROM saves ORDER BY saved_at DESC, slot ASC`)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	defer rows.Close()

	var infos []*SaveInfo
	for rows.Next() {
		var (
			info            SaveInfo
			era, grid, turn string
			savedAt         int64
		)
		if err := rows.Scan(&info.Slot, &era, &grid, &info.Round, &info.TotalRounds, &turn, &info.GameOver, &savedAt); err != nil {
			return nil, fmt.Errorf("scan save row: %w", err)
		}
		info.Era = engine.Era(era)
		info.GridSize = engine.GridSize(grid)
		info.Turn = engine.Role(turn)
		info.SavedAt = fromMillis(savedAt)
		infos = append(infos, &info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	return infos, nil
}

// Exists checks whether a slot has a row
func (s *SQLitePersistence) Exists(ctx context.Context, slot string) bool {
	if ValidateSlot(slot) != nil {
		return false
	}
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM saves WHERE slot = ?`, slot).Scan(&one)
	return err == nil
}
