package engine

import (
	"fmt"
	"math/rand/v2"
)

// Rand is the random source used for placement, food-chain choice and respawns.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// NewSeededRand returns a deterministic source for the given seed
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// ChainSource provides the pool of food chains available in an era
type ChainSource interface {
	Chains(era Era) ([]FoodChain, error)
}

// StaticChains serves the same pool for every era
type StaticChains []FoodChain

// Chains returns the static pool
func (s StaticChains) Chains(Era) ([]FoodChain, error) {
	return s, nil
}

// PickChain chooses one chain uniformly at random
func PickChain(chains []FoodChain, rng Rand) (FoodChain, error) {
	if len(chains) == 0 {
		return FoodChain{}, fmt.Errorf("%w: no food chains available", ErrInvalidConfig)
	}
	return chains[rng.IntN(len(chains))], nil
}

// NewRandomState builds a fresh board for cfg and places prey, predator,
// apex and food on four distinct random empty cells, in that order.
func NewRandomState(cfg GameConfig, chain FoodChain, rng Rand) (*GameState, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	board, err := NewBoard(cfg.GridSize.Size())
	if err != nil {
		return nil, err
	}
	state, err := NewGameState(cfg.Era, board, cfg.TotalRounds)
	if err != nil {
		return nil, err
	}

	cells := board.EmptyCells()
	if len(cells) < 4 {
		return nil, fmt.Errorf("%w: board too small for four pieces", ErrInvalidConfig)
	}
	picked := make([]Position, 0, 4)
	for i := 0; i < 4; i++ {
		j := rng.IntN(len(cells))
		picked = append(picked, cells[j])
		cells[j] = cells[len(cells)-1]
		cells = cells[:len(cells)-1]
	}

	err = state.InitEntities(
		NewAnimal(chain.Prey, Prey, picked[0]),
		NewAnimal(chain.Predator, Predator, picked[1]),
		NewAnimal(chain.Apex, Apex, picked[2]),
		NewFood(chain.Food, picked[3]),
	)
	if err != nil {
		return nil, err
	}
	return state, nil
}
