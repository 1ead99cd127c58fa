package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidConfig = errors.New("invalid game configuration")
	ErrOutOfRange    = errors.New("position out of range")
)

// Role identifies one of the three animals of a food chain
type Role string

const (
	Prey     Role = "PREY"
	Predator Role = "PREDATOR"
	Apex     Role = "APEX"
)

// TurnOrder is the fixed order in which roles act within a round
var TurnOrder = [3]Role{Prey, Predator, Apex}

// Valid reports whether r is one of the three known roles
func (r Role) Valid() bool {
	return r == Prey || r == Predator || r == Apex
}

// Cell returns the board tag used for an animal of this role
func (r Role) Cell() CellTag {
	return CellTag(r)
}

// ParseRole parses a role name case-insensitively
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Era selects the ability geometry and cooldown tables for a game
type Era string

const (
	Past    Era = "PAST"
	Present Era = "PRESENT"
	Future  Era = "FUTURE"
)

// Eras lists every era in display order
var Eras = []Era{Past, Present, Future}

// Valid reports whether e is a known era
func (e Era) Valid() bool {
	return e == Past || e == Present || e == Future
}

// ParseEra parses an era name case-insensitively
func ParseEra(s string) (Era, error) {
	e := Era(strings.ToUpper(strings.TrimSpace(s)))
	if !e.Valid() {
		return "", fmt.Errorf("unknown era %q", s)
	}
	return e, nil
}

// CellTag is the content of a single board cell
type CellTag string

const (
	Empty        CellTag = "EMPTY"
	PreyCell     CellTag = "PREY"
	PredatorCell CellTag = "PREDATOR"
	ApexCell     CellTag = "APEX"
	FoodCell     CellTag = "FOOD"
)

// Symbol returns a single-character rendering of the tag
func (c CellTag) Symbol() byte {
	switch c {
	case PreyCell:
		return 'Y'
	case PredatorCell:
		return 'P'
	case ApexCell:
		return 'A'
	case FoodCell:
		return 'F'
	default:
		return '.'
	}
}

// MoveKind classifies a requested move
type MoveKind string

const (
	MoveNone    MoveKind = "NONE"
	MoveWalk    MoveKind = "WALK"
	MoveAbility MoveKind = "ABILITY"
	MoveSkip    MoveKind = "SKIP"
)

// GridSize is the named board size stored in saves
type GridSize string

const (
	Small  GridSize = "SMALL"
	Medium GridSize = "MEDIUM"
	Large  GridSize = "LARGE"
)

// GridSizes lists the supported sizes from smallest to largest
var GridSizes = []GridSize{Small, Medium, Large}

// Size returns the side length of the square board, or 0 for an unknown tag
func (g GridSize) Size() int {
	switch g {
	case Small:
		return 10
	case Medium:
		return 15
	case Large:
		return 20
	}
	return 0
}

// GridSizeFromSize maps a side length back to its tag
func GridSizeFromSize(n int) (GridSize, error) {
	for _, g := range GridSizes {
		if g.Size() == n {
			return g, nil
		}
	}
	return "", fmt.Errorf("%w: unsupported grid size %d", ErrInvalidConfig, n)
}

// ParseGridSize parses a grid size tag case-insensitively
func ParseGridSize(s string) (GridSize, error) {
	g := GridSize(strings.ToUpper(strings.TrimSpace(s)))
	if g.Size() == 0 {
		return "", fmt.Errorf("unknown grid size %q", s)
	}
	return g, nil
}

// FoodChain holds the display names of one animal triplet and its food.
// Names are cosmetic; the rules only look at roles.
type FoodChain struct {
	Apex     string `json:"apex"`
	Predator string `json:"predator"`
	Prey     string `json:"prey"`
	Food     string `json:"food"`
}

// NameFor returns the display name of the given role
func (fc FoodChain) NameFor(r Role) string {
	switch r {
	case Apex:
		return fc.Apex
	case Predator:
		return fc.Predator
	default:
		return fc.Prey
	}
}

func (fc FoodChain) String() string {
	return fc.Apex + ", " + fc.Predator + ", " + fc.Prey + ", " + fc.Food
}

// GameConfig is the set of choices made when starting a game
type GameConfig struct {
	Era         Era      `json:"era"`
	GridSize    GridSize `json:"grid_size"`
	TotalRounds int      `json:"total_rounds"`
}

// Validate checks a configuration before any state is built from it
func (c GameConfig) Validate() error {
	if !c.Era.Valid() {
		return fmt.Errorf("%w: unknown era %q", ErrInvalidConfig, c.Era)
	}
	if c.GridSize.Size() == 0 {
		return fmt.Errorf("%w: unknown grid size %q", ErrInvalidConfig, c.GridSize)
	}
	if c.TotalRounds <= 0 {
		return fmt.Errorf("%w: total rounds must be > 0, got %d", ErrInvalidConfig, c.TotalRounds)
	}
	return nil
}
