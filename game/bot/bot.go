package bot

import (
	"github.com/wricardo/mcp-training/foodchain/game/engine"
)

// captureBonus outweighs any distance term so an available capture is always taken
const captureBonus = 1000

// ScoreFunc rates one legal destination for role; higher is better
type ScoreFunc func(s *engine.GameState, role engine.Role, m engine.LegalMove) int

// Turn describes one move a bot played
type Turn struct {
	Role    engine.Role     `json:"role"`
	From    engine.Position `json:"from"`
	To      engine.Position `json:"to"`
	Kind    engine.MoveKind `json:"kind"`
	Dash    bool            `json:"dash,omitempty"`
	Success bool            `json:"success"`
}

// Bot picks the best scoring legal move for one role
type Bot struct {
	Role  engine.Role
	Score ScoreFunc
}

// New returns the default bot for role
func New(role engine.Role) *Bot {
	switch role {
	case engine.Apex:
		return &Bot{Role: role, Score: ApexScore}
	case engine.Prey:
		return &Bot{Role: role, Score: PreyScore}
	default:
		return &Bot{Role: engine.Predator, Score: PredatorScore}
	}
}

// Choose returns the destination the bot wants. Candidates are visited in
// row-major order and only a strictly better score replaces the current
// best, so ties go to the first cell. With no candidate the bot stays put.
func (b *Bot) Choose(e engine.Engine) engine.LegalMove {
	self := e.State().Animal(b.Role).Position()
	best := engine.LegalMove{To: self, Kind: engine.MoveSkip}
	bestScore := 0
	found := false
	for _, m := range e.LegalMoves(b.Role) {
		score := b.Score(e.State(), b.Role, m)
		if !found || score > bestScore {
			best, bestScore, found = m, score, true
		}
	}
	return best
}

// PlayTurn chooses and plays one move. It does nothing unless it is the
// bot's turn in a running game.
func (b *Bot) PlayTurn(e engine.Engine) (Turn, bool) {
	if e.State() == nil || e.IsGameOver() || e.CurrentTurn() != b.Role {
		return Turn{}, false
	}
	from := e.State().Animal(b.Role).Position()
	m := b.Choose(e)
	ok := e.Move(b.Role, m.To)
	if !ok && m.To != from {
		// fall back to a skip so the turn still advances
		m = engine.LegalMove{To: from, Kind: engine.MoveSkip}
		ok = e.Move(b.Role, from)
	}
	return Turn{Role: b.Role, From: from, To: m.To, Kind: m.Kind, Dash: m.Dash, Success: ok}, ok
}

// ApexScore chases the closer of prey and predator
func ApexScore(s *engine.GameState, _ engine.Role, m engine.LegalMove) int {
	dPrey := m.To.Chebyshev(s.Prey().Position())
	dPred := m.To.Chebyshev(s.Predator().Position())
	score := -min(dPrey, dPred)
	if dPrey == 0 || dPred == 0 {
		score += captureBonus
	}
	return score
}

// PreyScore heads for food while keeping away from both hunters
func PreyScore(s *engine.GameState, _ engine.Role, m engine.LegalMove) int {
	dFood := m.To.Chebyshev(s.Food().Position())
	dPred := m.To.Chebyshev(s.Predator().Position())
	dApex := m.To.Chebyshev(s.Apex().Position())

	score := 200 - 20*dFood + 6*dPred + 4*dApex
	if dPred <= 1 {
		score -= 200
	}
	if dApex <= 1 {
		score -= 200
	}
	if dFood == 0 {
		score += captureBonus
	}
	return score
}

// PredatorScore closes in on the prey
func PredatorScore(s *engine.GameState, _ engine.Role, m engine.LegalMove) int {
	d := m.To.Chebyshev(s.Prey().Position())
	score := -d
	if d == 0 {
		score += captureBonus
	}
	return score
}
