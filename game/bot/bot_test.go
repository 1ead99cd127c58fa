package bot

import (
	"fmt"
	"testing"

	"github.com/wricardo/mcp-training/foodchain/game/engine"
	"github.com/wricardo/mcp-training/foodchain/game/savefile"
)

type placement struct {
	era                        engine.Era
	turn                       engine.Role
	prey, predator, apex, food engine.Position
}

// loadGame builds a small board from explicit positions
func loadGame(t *testing.T, p placement) *engine.GameEngine {
	t.Helper()
	text := fmt.Sprintf(`ERA=%s
GRIDSIZE=SMALL
TOTALROUNDS=10
TURN=%s
ROUND=1
APEX,name=Lion,score=0,cooldown=0,row=%d,col=%d
PREDATOR,name=Wolf,score=0,cooldown=0,row=%d,col=%d
PREY,name=Rabbit,score=0,cooldown=0,row=%d,col=%d
FOOD,name=Carrot,row=%d,col=%d
`, p.era, p.turn,
		p.apex.Row, p.apex.Col,
		p.predator.Row, p.predator.Col,
		p.prey.Row, p.prey.Col,
		p.food.Row, p.food.Col)

	state, tm, err := savefile.Unmarshal([]byte(text))
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	e := engine.NewEngine(engine.WithRand(engine.NewSeededRand(1)))
	if err := e.LoadFrom(state, tm); err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	return e
}

func TestBot_TakesCaptures(t *testing.T) {
	tests := []struct {
		name   string
		role   engine.Role
		layout placement
		want   engine.Position
	}{
		{
			name: "predator eats adjacent prey",
			role: engine.Predator,
			layout: placement{era: engine.Past, turn: engine.Predator,
				prey: engine.Pos(4, 5), predator: engine.Pos(4, 4), apex: engine.Pos(0, 0), food: engine.Pos(9, 9)},
			want: engine.Pos(4, 5),
		},
		{
			name: "prey eats adjacent food",
			role: engine.Prey,
			layout: placement{era: engine.Past, turn: engine.Prey,
				prey: engine.Pos(5, 5), predator: engine.Pos(0, 0), apex: engine.Pos(9, 9), food: engine.Pos(5, 6)},
			want: engine.Pos(5, 6),
		},
		{
			name: "apex leaps onto prey",
			role: engine.Apex,
			layout: placement{era: engine.Past, turn: engine.Apex,
				prey: engine.Pos(2, 4), predator: engine.Pos(9, 9), apex: engine.Pos(2, 2), food: engine.Pos(0, 9)},
			want: engine.Pos(2, 4),
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			e := loadGame(t, test.layout)
			turn, ok := New(test.role).PlayTurn(e)
			if !ok || !turn.Success {
				t.Fatalf("PlayTurn failed: %+v", turn)
			}
			if turn.To != test.want {
				t.Errorf("Expected move to %v, got %v", test.want, turn.To)
			}
			if score := e.State().Animal(test.role).Score(); score <= 0 {
				t.Errorf("Expected a positive score after the capture, got %d", score)
			}
		})
	}
}

func TestPreyScore_KeepsAwayFromHunters(t *testing.T) {
	e := loadGame(t, placement{era: engine.Past, turn: engine.Prey,
		prey: engine.Pos(5, 5), predator: engine.Pos(5, 3), apex: engine.Pos(3, 6), food: engine.Pos(9, 0)})

	m := New(engine.Prey).Choose(e)
	if d := m.To.Chebyshev(engine.Pos(5, 3)); d <= 1 {
		t.Errorf("Prey moved next to the predator: %v", m.To)
	}
	if d := m.To.Chebyshev(engine.Pos(3, 6)); d <= 1 {
		t.Errorf("Prey moved next to the apex: %v", m.To)
	}
}

func TestPredatorScore_ClosesDistance(t *testing.T) {
	e := loadGame(t, placement{era: engine.Future, turn: engine.Predator,
		prey: engine.Pos(9, 9), predator: engine.Pos(0, 0), apex: engine.Pos(0, 9), food: engine.Pos(9, 0)})

	m := New(engine.Predator).Choose(e)
	// diagonal ability is the fastest way toward the far corner
	if m.To != engine.Pos(2, 2) {
		t.Errorf("Expected (2,2), got %v", m.To)
	}
}

func TestChoose_TiesGoToFirstCell(t *testing.T) {
	// both hunters are equally far so several cells share the best apex score
	e := loadGame(t, placement{era: engine.Past, turn: engine.Apex,
		prey: engine.Pos(5, 9), predator: engine.Pos(9, 5), apex: engine.Pos(5, 5), food: engine.Pos(0, 0)})

	b := New(engine.Apex)
	m := b.Choose(e)
	best := b.Score(e.State(), engine.Apex, m)
	for _, other := range e.LegalMoves(engine.Apex) {
		s := b.Score(e.State(), engine.Apex, other)
		if s > best {
			t.Fatalf("Move %v scores %d, better than chosen %v (%d)", other.To, s, m.To, best)
		}
		if s == best {
			if other.To != m.To {
				t.Errorf("Expected the first best cell %v, got %v", other.To, m.To)
			}
			break
		}
	}
}

func TestPlayTurn_NotBotsTurn(t *testing.T) {
	e := loadGame(t, placement{era: engine.Past, turn: engine.Prey,
		prey: engine.Pos(5, 5), predator: engine.Pos(0, 0), apex: engine.Pos(9, 9), food: engine.Pos(5, 6)})

	if _, ok := New(engine.Predator).PlayTurn(e); ok {
		t.Error("Predator bot should not move on the prey's turn")
	}
	if e.CurrentTurn() != engine.Prey {
		t.Errorf("Turn should not change, got %s", e.CurrentTurn())
	}
}

func TestRoster_PlayUntilHuman(t *testing.T) {
	newGame := func(t *testing.T, rounds int) *engine.GameEngine {
		e := engine.NewEngine(
			engine.WithChainSource(engine.StaticChains{{Apex: "Lion", Predator: "Wolf", Prey: "Rabbit", Food: "Carrot"}}),
			engine.WithRand(engine.NewSeededRand(42)),
		)
		if _, err := e.StartGame(engine.GameConfig{Era: engine.Present, GridSize: engine.Medium, TotalRounds: rounds}); err != nil {
			t.Fatalf("StartGame failed: %v", err)
		}
		return e
	}

	t.Run("all bots finish the game", func(t *testing.T) {
		e := newGame(t, 6)
		turns := NewRoster().PlayUntilHuman(e, 0)
		if !e.IsGameOver() {
			t.Fatal("Expected the game to be over")
		}
		if len(turns) != 6*len(engine.TurnOrder) {
			t.Errorf("Expected %d turns, got %d", 6*len(engine.TurnOrder), len(turns))
		}
		for i, turn := range turns {
			if !turn.Success {
				t.Errorf("Turn %d failed: %+v", i, turn)
			}
		}
	})

	t.Run("stops at the human role", func(t *testing.T) {
		e := newGame(t, 6)
		roster := NewRoster(engine.Predator)
		if roster.Controls(engine.Predator) {
			t.Fatal("Predator should be human controlled")
		}
		turns := roster.PlayUntilHuman(e, 0)
		if len(turns) != 1 || turns[0].Role != engine.Prey {
			t.Fatalf("Expected one prey turn, got %+v", turns)
		}
		if e.CurrentTurn() != engine.Predator {
			t.Errorf("Expected predator to move next, got %s", e.CurrentTurn())
		}
	})

	t.Run("respects the turn limit", func(t *testing.T) {
		e := newGame(t, 6)
		if turns := NewRoster().PlayUntilHuman(e, 4); len(turns) != 4 {
			t.Errorf("Expected 4 turns, got %d", len(turns))
		}
	})
}
