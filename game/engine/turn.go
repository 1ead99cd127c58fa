package engine

import "fmt"

// TurnManager cycles Prey -> Predator -> Apex, counting rounds until the limit
type TurnManager struct {
	index       int
	round       int
	totalRounds int
	gameOver    bool
}

// NewTurnManager starts at Prey's turn in round 1
func NewTurnManager(totalRounds int) (*TurnManager, error) {
	if totalRounds <= 0 {
		return nil, fmt.Errorf("%w: total rounds must be > 0, got %d", ErrInvalidConfig, totalRounds)
	}
	return &TurnManager{round: 1, totalRounds: totalRounds}, nil
}

// RestoreTurnManager rebuilds a turn manager at a given turn and round
func RestoreTurnManager(totalRounds int, turn Role, round int, gameOver bool) (*TurnManager, error) {
	tm, err := NewTurnManager(totalRounds)
	if err != nil {
		return nil, err
	}
	if round <= 0 || round > totalRounds {
		return nil, fmt.Errorf("%w: round must be in [1,%d], got %d", ErrInvalidConfig, totalRounds, round)
	}
	idx := turnIndex(turn)
	if idx < 0 {
		return nil, fmt.Errorf("%w: invalid turn %q", ErrInvalidConfig, turn)
	}
	// a finished game always stops on Prey's turn of the last round
	if gameOver && (round != totalRounds || idx != 0) {
		return nil, fmt.Errorf("%w: game over requires %s in round %d, got %s in round %d",
			ErrInvalidConfig, TurnOrder[0], totalRounds, turn, round)
	}
	tm.index = idx
	tm.round = round
	tm.gameOver = gameOver
	return tm, nil
}

// EndTurn advances to the next role and reports whether a round ended.
// Once the game is over it does nothing and returns false.
func (tm *TurnManager) EndTurn() bool {
	if tm.gameOver {
		return false
	}
	if tm.index < len(TurnOrder)-1 {
		tm.index++
		return false
	}
	tm.index = 0
	if tm.round >= tm.totalRounds {
		tm.gameOver = true
		return true
	}
	tm.round++
	return true
}

func (tm *TurnManager) CurrentTurn() Role { return TurnOrder[tm.index] }
func (tm *TurnManager) Round() int        { return tm.round }
func (tm *TurnManager) TotalRounds() int  { return tm.totalRounds }
func (tm *TurnManager) IsGameOver() bool  { return tm.gameOver }

func turnIndex(r Role) int {
	for i, role := range TurnOrder {
		if role == r {
			return i
		}
	}
	return -1
}
