package bot

import (
	"github.com/wricardo/mcp-training/foodchain/game/engine"
)

// Roster maps every role to its bot; roles listed as human are left out
type Roster map[engine.Role]*Bot

// NewRoster builds default bots for every role not in humans
func NewRoster(humans ...engine.Role) Roster {
	r := make(Roster, len(engine.TurnOrder))
	for _, role := range engine.TurnOrder {
		r[role] = New(role)
	}
	for _, h := range humans {
		delete(r, h)
	}
	return r
}

// Controls reports whether a bot plays role
func (r Roster) Controls(role engine.Role) bool {
	_, ok := r[role]
	return ok
}

// PlayUntilHuman plays bot turns until a human is to move, the game ends, or
// maxTurns turns were played (maxTurns <= 0 means no limit).
func (r Roster) PlayUntilHuman(e engine.Engine, maxTurns int) []Turn {
	var turns []Turn
	for !e.IsGameOver() {
		if maxTurns > 0 && len(turns) >= maxTurns {
			break
		}
		b, ok := r[e.CurrentTurn()]
		if !ok {
			break
		}
		turn, ok := b.PlayTurn(e)
		turns = append(turns, turn)
		if !ok {
			break
		}
	}
	return turns
}
