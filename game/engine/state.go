package engine

import "fmt"

// GameState aggregates the board and the four pieces of one game.
// The four pieces always occupy four distinct in-bounds cells and the
// board mirrors their positions exactly.
type GameState struct {
	era         Era
	board       *Board
	totalRounds int
	round       int

	prey     *Animal
	predator *Animal
	apex     *Animal
	food     *Food
}

// NewGameState creates a state with no pieces placed yet
func NewGameState(era Era, board *Board, totalRounds int) (*GameState, error) {
	if !era.Valid() {
		return nil, fmt.Errorf("%w: unknown era %q", ErrInvalidConfig, era)
	}
	if board == nil {
		return nil, fmt.Errorf("%w: board cannot be nil", ErrInvalidConfig)
	}
	if totalRounds <= 0 {
		return nil, fmt.Errorf("%w: total rounds must be > 0, got %d", ErrInvalidConfig, totalRounds)
	}
	return &GameState{era: era, board: board, totalRounds: totalRounds, round: 1}, nil
}

// InitEntities places the four pieces, rejecting nil, mis-roled,
// out-of-bounds or overlapping placements. Nothing is written on failure.
func (s *GameState) InitEntities(prey, predator, apex *Animal, food *Food) error {
	if prey == nil || predator == nil || apex == nil || food == nil {
		return fmt.Errorf("%w: nil entity", ErrInvalidConfig)
	}
	for want, a := range map[Role]*Animal{Prey: prey, Predator: predator, Apex: apex} {
		if a.Role() != want {
			return fmt.Errorf("%w: %s slot holds a %s", ErrInvalidConfig, want, a.Role())
		}
	}

	positions := []Position{prey.Position(), predator.Position(), apex.Position(), food.Position()}
	seen := make(map[Position]bool, len(positions))
	for _, p := range positions {
		if !s.board.InBounds(p) {
			return fmt.Errorf("%w: entity out of bounds at %s", ErrInvalidConfig, p)
		}
		if seen[p] {
			return fmt.Errorf("%w: overlapping entities at %s", ErrInvalidConfig, p)
		}
		seen[p] = true
	}
	for _, p := range positions {
		if s.board.at(p) != Empty {
			return fmt.Errorf("%w: cell %s already occupied", ErrInvalidConfig, p)
		}
	}

	s.prey, s.predator, s.apex, s.food = prey, predator, apex, food
	s.board.put(prey.Position(), PreyCell)
	s.board.put(predator.Position(), PredatorCell)
	s.board.put(apex.Position(), ApexCell)
	s.board.put(food.Position(), FoodCell)
	return nil
}

func (s *GameState) Era() Era           { return s.era }
func (s *GameState) Board() *Board      { return s.board }
func (s *GameState) TotalRounds() int   { return s.totalRounds }
func (s *GameState) Round() int         { return s.round }
func (s *GameState) Prey() *Animal      { return s.prey }
func (s *GameState) Predator() *Animal  { return s.predator }
func (s *GameState) Apex() *Animal      { return s.apex }
func (s *GameState) Food() *Food        { return s.food }
func (s *GameState) ready() bool        { return s.prey != nil }
func (s *GameState) setRound(round int) { s.round = round }

// Animal returns the animal playing the given role
func (s *GameState) Animal(r Role) *Animal {
	switch r {
	case Prey:
		return s.prey
	case Predator:
		return s.predator
	case Apex:
		return s.apex
	}
	return nil
}

// GridSize returns the named size of the board, if it has one
func (s *GameState) GridSize() GridSize {
	g, _ := GridSizeFromSize(s.board.Size())
	return g
}

// stateBackup captures everything a move can change
type stateBackup struct {
	board   *Board
	animals [3]Animal
	food    Food
}

func (s *GameState) backup() stateBackup {
	return stateBackup{
		board:   s.board.clone(),
		animals: [3]Animal{*s.prey, *s.predator, *s.apex},
		food:    *s.food,
	}
}

func (s *GameState) restore(b stateBackup) {
	s.board.grid = b.board.grid
	*s.prey, *s.predator, *s.apex = b.animals[0], b.animals[1], b.animals[2]
	*s.food = b.food
}

// AnimalView is the read-only JSON view of an animal
type AnimalView struct {
	Name     string   `json:"name"`
	Role     Role     `json:"role"`
	Position Position `json:"position"`
	Score    int      `json:"score"`
	Cooldown int      `json:"cooldown"`
}

// FoodView is the read-only JSON view of the food token
type FoodView struct {
	Name     string   `json:"name"`
	Position Position `json:"position"`
}

// Snapshot is a detached copy of a game suitable for serialization to clients
type Snapshot struct {
	Era         Era        `json:"era"`
	GridSize    GridSize   `json:"grid_size"`
	Size        int        `json:"size"`
	Round       int        `json:"round"`
	TotalRounds int        `json:"total_rounds"`
	Turn        Role       `json:"turn"`
	GameOver    bool       `json:"game_over"`
	Prey        AnimalView `json:"prey"`
	Predator    AnimalView `json:"predator"`
	Apex        AnimalView `json:"apex"`
	Food        FoodView   `json:"food"`
	Rows        []string   `json:"rows"`
}

func viewOf(a *Animal) AnimalView {
	return AnimalView{Name: a.name, Role: a.role, Position: a.pos, Score: a.score, Cooldown: a.cooldown}
}
