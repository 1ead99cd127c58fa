package engine

import "fmt"

// Animal is one of the three scoring pieces on the board.
// Only the rule engine mutates an Animal once it is placed.
type Animal struct {
	name     string
	role     Role
	pos      Position
	score    int
	cooldown int
}

// NewAnimal creates an animal with zero score and no cooldown
func NewAnimal(name string, role Role, pos Position) *Animal {
	return &Animal{name: name, role: role, pos: pos}
}

// RestoreAnimal rebuilds an animal with a known score and cooldown, e.g. from a save
func RestoreAnimal(name string, role Role, pos Position, score, cooldown int) (*Animal, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidConfig, role)
	}
	if cooldown < 0 {
		return nil, fmt.Errorf("%w: %s cooldown must be >= 0, got %d", ErrInvalidConfig, role, cooldown)
	}
	return &Animal{name: name, role: role, pos: pos, score: score, cooldown: cooldown}, nil
}

func (a *Animal) Name() string       { return a.name }
func (a *Animal) Role() Role         { return a.role }
func (a *Animal) Position() Position { return a.pos }
func (a *Animal) Score() int         { return a.score }
func (a *Animal) Cooldown() int      { return a.cooldown }

// AbilityReady reports whether the animal may use a distance >= 2 move
func (a *Animal) AbilityReady() bool {
	return a.cooldown == 0
}

func (a *Animal) moveTo(p Position) { a.pos = p }
func (a *Animal) addScore(n int)    { a.score += n }

// setCooldown clamps negative values to 0
func (a *Animal) setCooldown(n int) {
	if n < 0 {
		n = 0
	}
	a.cooldown = n
}

func (a *Animal) tick() {
	if a.cooldown > 0 {
		a.cooldown--
	}
}

// Food is the token the prey eats. It only moves when respawned.
type Food struct {
	name string
	pos  Position
}

// NewFood creates a food token at pos
func NewFood(name string, pos Position) *Food {
	return &Food{name: name, pos: pos}
}

func (f *Food) Name() string       { return f.name }
func (f *Food) Position() Position { return f.pos }

func (f *Food) moveTo(p Position) { f.pos = p }
