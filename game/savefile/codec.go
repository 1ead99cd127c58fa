package savefile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wricardo/mcp-training/foodchain/game/engine"
)

// ErrInvalidFormat matches every error caused by corrupted save content
var ErrInvalidFormat = errors.New("invalid save format")

// FormatError describes why save content could not be decoded
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid save format: %s: %v", e.Reason, e.Err)
	}
	return "invalid save format: " + e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrInvalidFormat) match any FormatError
func (e *FormatError) Is(target error) bool { return target == ErrInvalidFormat }

func formatErr(format string, args ...any) error {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}

// Header keys
const (
	KeyEra         = "ERA"
	KeyGridSize    = "GRIDSIZE"
	KeyTotalRounds = "TOTALROUNDS"
	KeyTurn        = "TURN"
	KeyRound       = "ROUND"
	KeyGameOver    = "GAMEOVER"
)

// FoodTag is the entity tag of the food line; animal lines use their role
const FoodTag = "FOOD"

// Encode writes the game in the line-based save format
func Encode(w io.Writer, state *engine.GameState, tm *engine.TurnManager) error {
	if state == nil || tm == nil || state.Prey() == nil {
		return fmt.Errorf("nothing to save: no game loaded")
	}
	grid, err := engine.GridSizeFromSize(state.Board().Size())
	if err != nil {
		return err
	}
	for _, name := range []string{state.Apex().Name(), state.Predator().Name(), state.Prey().Name(), state.Food().Name()} {
		if err := ValidateName(name); err != nil {
			return err
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s=%s\n", KeyEra, state.Era())
	fmt.Fprintf(bw, "%s=%s\n", KeyGridSize, grid)
	fmt.Fprintf(bw, "%s=%d\n", KeyTotalRounds, tm.TotalRounds())
	fmt.Fprintf(bw, "%s=%s\n", KeyTurn, tm.CurrentTurn())
	fmt.Fprintf(bw, "%s=%d\n", KeyRound, tm.Round())
	if tm.IsGameOver() {
		fmt.Fprintf(bw, "%s=true\n", KeyGameOver)
	}
	for _, a := range []*engine.Animal{state.Apex(), state.Predator(), state.Prey()} {
		p := a.Position()
		fmt.Fprintf(bw, "%s,name=%s,score=%d,cooldown=%d,row=%d,col=%d\n",
			a.Role(), a.Name(), a.Score(), a.Cooldown(), p.Row, p.Col)
	}
	f := state.Food()
	fmt.Fprintf(bw, "%s,name=%s,row=%d,col=%d\n", FoodTag, f.Name(), f.Position().Row, f.Position().Col)
	return bw.Flush()
}

// Marshal returns the encoded save text
func Marshal(state *engine.GameState, tm *engine.TurnManager) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, state, tm); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ValidateName rejects display names the line format cannot carry
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty entity name", engine.ErrInvalidConfig)
	}
	if name != strings.TrimSpace(name) || strings.ContainsAny(name, ",=\r\n") {
		return fmt.Errorf("%w: entity name %q cannot be saved", engine.ErrInvalidConfig, name)
	}
	return nil
}

// Decode parses save text into a fresh state and turn manager. Every field
// is validated before anything is built, so nothing is returned on failure.
func Decode(r io.Reader) (*engine.GameState, *engine.TurnManager, error) {
	header := make(map[string]string)
	entities := make(map[string]map[string]string)

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.Contains(line, "=") && !strings.Contains(line, ",") {
			k, v, _ := strings.Cut(line, "=")
			k = strings.TrimSpace(k)
			if _, dup := header[k]; dup {
				return nil, nil, formatErr("line %d: duplicate header key %s", lineNo, k)
			}
			header[k] = strings.TrimSpace(v)
			continue
		}
		tag, fields, err := parseEntityLine(line)
		if err != nil {
			return nil, nil, formatErr("line %d: %v", lineNo, err)
		}
		if _, dup := entities[tag]; dup {
			return nil, nil, formatErr("line %d: duplicate %s entity", lineNo, tag)
		}
		entities[tag] = fields
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read save: %w", err)
	}

	era, err := parseHeader(header, KeyEra, exactEra)
	if err != nil {
		return nil, nil, err
	}
	grid, err := parseHeader(header, KeyGridSize, exactGridSize)
	if err != nil {
		return nil, nil, err
	}
	totalRounds, err := parseHeader(header, KeyTotalRounds, strconv.Atoi)
	if err != nil {
		return nil, nil, err
	}
	turn, err := parseHeader(header, KeyTurn, exactRole)
	if err != nil {
		return nil, nil, err
	}
	round, err := parseHeader(header, KeyRound, strconv.Atoi)
	if err != nil {
		return nil, nil, err
	}
	gameOver := false
	if v, ok := header[KeyGameOver]; ok {
		if gameOver, err = strconv.ParseBool(v); err != nil {
			return nil, nil, formatErr("invalid %s %q", KeyGameOver, v)
		}
	}

	animals := make(map[engine.Role]*engine.Animal, 3)
	for _, role := range engine.TurnOrder {
		fields, ok := entities[string(role)]
		if !ok {
			return nil, nil, formatErr("missing %s entity", role)
		}
		a, err := buildAnimal(role, fields)
		if err != nil {
			return nil, nil, err
		}
		animals[role] = a
	}
	foodFields, ok := entities[FoodTag]
	if !ok {
		return nil, nil, formatErr("missing %s entity", FoodTag)
	}
	food, err := buildFood(foodFields)
	if err != nil {
		return nil, nil, err
	}
	for tag := range entities {
		if !engine.Role(tag).Valid() && tag != FoodTag {
			return nil, nil, formatErr("unknown entity tag %q", tag)
		}
	}

	board, err := engine.NewBoard(grid.Size())
	if err != nil {
		return nil, nil, &FormatError{Reason: "bad grid size", Err: err}
	}
	state, err := engine.NewGameState(era, board, totalRounds)
	if err != nil {
		return nil, nil, &FormatError{Reason: "bad header", Err: err}
	}
	if err := state.InitEntities(animals[engine.Prey], animals[engine.Predator], animals[engine.Apex], food); err != nil {
		return nil, nil, &FormatError{Reason: "bad entity placement", Err: err}
	}
	tm, err := engine.RestoreTurnManager(totalRounds, turn, round, gameOver)
	if err != nil {
		return nil, nil, &FormatError{Reason: "bad turn state", Err: err}
	}
	return state, tm, nil
}

// Unmarshal decodes save text held in memory
func Unmarshal(data []byte) (*engine.GameState, *engine.TurnManager, error) {
	return Decode(bytes.NewReader(data))
}

// WriteFile saves the game to path, creating parent directories.
// The file is written to a temporary sibling first and renamed into place.
func WriteFile(path string, state *engine.GameState, tm *engine.TurnManager) error {
	data, err := Marshal(state, tm)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create save directory: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write save file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write save file: %w", err)
	}
	return nil
}

// ReadFile loads a save from path. A missing file yields an error matching
// os.ErrNotExist, never ErrInvalidFormat.
func ReadFile(path string) (*engine.GameState, *engine.TurnManager, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return Decode(f)
}

func parseEntityLine(line string) (string, map[string]string, error) {
	parts := strings.Split(line, ",")
	tag := strings.TrimSpace(parts[0])
	if tag == "" || strings.Contains(tag, "=") {
		return "", nil, fmt.Errorf("malformed entity line %q", line)
	}
	fields := make(map[string]string, len(parts)-1)
	for _, part := range parts[1:] {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			return "", nil, fmt.Errorf("malformed field %q in %s line", part, tag)
		}
		k = strings.TrimSpace(k)
		if _, dup := fields[k]; dup {
			return "", nil, fmt.Errorf("duplicate field %q in %s line", k, tag)
		}
		fields[k] = strings.TrimSpace(v)
	}
	return tag, fields, nil
}

// Saves spell enum values exactly as Encode writes them; unlike the
// engine's Parse helpers these do not fold case.

func exactEra(s string) (engine.Era, error) {
	if e := engine.Era(s); e.Valid() {
		return e, nil
	}
	return "", fmt.Errorf("unknown era %q", s)
}

func exactGridSize(s string) (engine.GridSize, error) {
	if g := engine.GridSize(s); g.Size() != 0 {
		return g, nil
	}
	return "", fmt.Errorf("unknown grid size %q", s)
}

func exactRole(s string) (engine.Role, error) {
	if r := engine.Role(s); r.Valid() {
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func parseHeader[T any](header map[string]string, key string, parse func(string) (T, error)) (T, error) {
	var zero T
	v, ok := header[key]
	if !ok || v == "" {
		return zero, formatErr("missing header key %s", key)
	}
	out, err := parse(v)
	if err != nil {
		return zero, formatErr("invalid %s %q", key, v)
	}
	return out, nil
}

func requireField(fields map[string]string, tag, key string) (string, error) {
	v, ok := fields[key]
	if !ok || v == "" {
		return "", formatErr("missing %s.%s", tag, key)
	}
	return v, nil
}

func requireInt(fields map[string]string, tag, key string) (int, error) {
	v, err := requireField(fields, tag, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, formatErr("invalid integer for %s.%s: %q", tag, key, v)
	}
	return n, nil
}

func buildAnimal(role engine.Role, fields map[string]string) (*engine.Animal, error) {
	tag := string(role)
	name, err := requireField(fields, tag, "name")
	if err != nil {
		return nil, err
	}
	var nums [4]int
	for i, key := range []string{"score", "cooldown", "row", "col"} {
		if nums[i], err = requireInt(fields, tag, key); err != nil {
			return nil, err
		}
	}
	a, err := engine.RestoreAnimal(name, role, engine.Pos(nums[2], nums[3]), nums[0], nums[1])
	if err != nil {
		return nil, &FormatError{Reason: "bad " + tag + " entity", Err: err}
	}
	return a, nil
}

func buildFood(fields map[string]string) (*engine.Food, error) {
	name, err := requireField(fields, FoodTag, "name")
	if err != nil {
		return nil, err
	}
	row, err := requireInt(fields, FoodTag, "row")
	if err != nil {
		return nil, err
	}
	col, err := requireInt(fields, FoodTag, "col")
	if err != nil {
		return nil, err
	}
	return engine.NewFood(name, engine.Pos(row, col)), nil
}
