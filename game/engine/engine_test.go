package engine

import (
	"errors"
	"strings"
	"testing"
)

var testChain = FoodChain{Apex: "Lion", Predator: "Wolf", Prey: "Rabbit", Food: "Carrot"}

// fixedRand always picks the same index, clamped to n-1
type fixedRand int

func (f fixedRand) IntN(n int) int {
	if int(f) >= n {
		return n - 1
	}
	return int(f)
}

type layout struct {
	era      Era
	rounds   int
	turn     Role
	prey     Position
	predator Position
	apex     Position
	food     Position
}

// newLayoutEngine builds a 10x10 game with pieces at fixed cells
func newLayoutEngine(t *testing.T, l layout, opts ...Option) *GameEngine {
	t.Helper()
	if l.rounds == 0 {
		l.rounds = 10
	}
	if l.turn == "" {
		l.turn = Prey
	}
	board, err := NewBoard(Small.Size())
	if err != nil {
		t.Fatalf("NewBoard failed: %v", err)
	}
	state, err := NewGameState(l.era, board, l.rounds)
	if err != nil {
		t.Fatalf("NewGameState failed: %v", err)
	}
	err = state.InitEntities(
		NewAnimal(testChain.Prey, Prey, l.prey),
		NewAnimal(testChain.Predator, Predator, l.predator),
		NewAnimal(testChain.Apex, Apex, l.apex),
		NewFood(testChain.Food, l.food),
	)
	if err != nil {
		t.Fatalf("InitEntities failed: %v", err)
	}
	tm, err := RestoreTurnManager(l.rounds, l.turn, 1, false)
	if err != nil {
		t.Fatalf("RestoreTurnManager failed: %v", err)
	}
	e := NewEngine(append([]Option{WithRand(fixedRand(0))}, opts...)...)
	if err := e.LoadFrom(state, tm); err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	return e
}

// assertConsistent checks that the board mirrors the four pieces exactly
func assertConsistent(t *testing.T, e *GameEngine) {
	t.Helper()
	s := e.State()
	want := map[Position]CellTag{
		s.Prey().Position():     PreyCell,
		s.Predator().Position(): PredatorCell,
		s.Apex().Position():     ApexCell,
		s.Food().Position():     FoodCell,
	}
	if len(want) != 4 {
		t.Fatalf("Pieces overlap: %v", want)
	}
	size := s.Board().Size()
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			p := Pos(r, c)
			got, _ := s.Board().Get(p)
			exp, ok := want[p]
			if !ok {
				exp = Empty
			}
			if got != exp {
				t.Fatalf("Cell %s: expected %s, got %s", p, exp, got)
			}
		}
	}
}

func TestStartGame(t *testing.T) {
	var events []Event
	e := NewEngine(
		WithChainSource(StaticChains{testChain}),
		WithRand(NewSeededRand(7)),
		WithEventSink(SinkFunc(func(ev Event) { events = append(events, ev) })),
	)

	state, err := e.StartGame(GameConfig{Era: Past, GridSize: Medium, TotalRounds: 12})
	if err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	if state.Board().Size() != 15 {
		t.Errorf("Expected 15x15 board, got %d", state.Board().Size())
	}
	if e.CurrentTurn() != Prey || e.IsGameOver() {
		t.Errorf("Unexpected start: turn=%s over=%v", e.CurrentTurn(), e.IsGameOver())
	}
	if e.Chain() != testChain {
		t.Errorf("Unexpected chain %v", e.Chain())
	}
	if state.Prey().Name() != "Rabbit" || state.Food().Name() != "Carrot" {
		t.Errorf("Names not taken from chain: %s, %s", state.Prey().Name(), state.Food().Name())
	}
	assertConsistent(t, e)

	if len(events) != 2 || events[0].Kind != EventGameStart || events[1].Kind != EventRoundBegin {
		t.Fatalf("Expected GAME START and ROUND BEGIN, got %v", events)
	}
	if !strings.Contains(events[0].String(), "chain=Lion, Wolf, Rabbit, Carrot") {
		t.Errorf("Unexpected start line %q", events[0].String())
	}
}

func TestStartGame_Errors(t *testing.T) {
	tests := []struct {
		name string
		eng  *GameEngine
		cfg  GameConfig
	}{
		{"no chain source", NewEngine(), GameConfig{Era: Past, GridSize: Small, TotalRounds: 5}},
		{"empty chain pool", NewEngine(WithChainSource(StaticChains{})), GameConfig{Era: Past, GridSize: Small, TotalRounds: 5}},
		{"zero rounds", NewEngine(WithChainSource(StaticChains{testChain})), GameConfig{Era: Past, GridSize: Small, TotalRounds: 0}},
		{"bad era", NewEngine(WithChainSource(StaticChains{testChain})), GameConfig{Era: "JURASSIC", GridSize: Small, TotalRounds: 5}},
		{"bad size", NewEngine(WithChainSource(StaticChains{testChain})), GameConfig{Era: Past, GridSize: "HUGE", TotalRounds: 5}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := test.eng.StartGame(test.cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
			if test.eng.State() != nil {
				t.Error("State should stay nil after a failed start")
			}
		})
	}
}

func TestEngine_NoGame(t *testing.T) {
	e := NewEngine()
	if e.Move(Prey, Pos(0, 0)) {
		t.Error("Move should fail without a game")
	}
	if e.Classify(Prey, Pos(0, 0)) != MoveNone {
		t.Error("Classify should be NONE without a game")
	}
	if !e.IsGameOver() {
		t.Error("IsGameOver should be true without a game")
	}
	if e.Snapshot() != nil {
		t.Error("Snapshot should be nil without a game")
	}
	if e.LegalMoves(Prey) != nil {
		t.Error("LegalMoves should be nil without a game")
	}
}

func TestClassify(t *testing.T) {
	e := newLayoutEngine(t, layout{
		era:      Past,
		prey:     Pos(5, 5),
		predator: Pos(5, 6),
		apex:     Pos(4, 4),
		food:     Pos(6, 6),
	})

	tests := []struct {
		name string
		role Role
		to   Position
		want MoveKind
	}{
		{"wrong turn", Apex, Pos(3, 3), MoveNone},
		{"skip", Prey, Pos(5, 5), MoveSkip},
		{"walk empty", Prey, Pos(6, 5), MoveWalk},
		{"walk onto food", Prey, Pos(6, 6), MoveWalk},
		{"walk onto predator", Prey, Pos(5, 6), MoveNone},
		{"walk onto apex", Prey, Pos(4, 4), MoveNone},
		{"ability distance 2", Prey, Pos(7, 6), MoveAbility},
		{"ability distance 3", Prey, Pos(8, 5), MoveNone},
		{"out of bounds", Prey, Pos(-1, 5), MoveNone},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := e.Classify(test.role, test.to); got != test.want {
				t.Errorf("expected %s, got %s", test.want, got)
			}
		})
	}
}

func TestClassify_FuturePreyCannotJumpOntoFood(t *testing.T) {
	e := newLayoutEngine(t, layout{
		era:      Future,
		prey:     Pos(2, 2),
		predator: Pos(9, 9),
		apex:     Pos(9, 0),
		food:     Pos(5, 5),
	})

	if got := e.Classify(Prey, Pos(5, 5)); got != MoveNone {
		t.Errorf("Ability onto food: expected NONE, got %s", got)
	}
	if got := e.Classify(Prey, Pos(5, 2)); got != MoveAbility {
		t.Errorf("Ability onto empty cell: expected ABILITY, got %s", got)
	}
}

func TestExecute_PreyEatsFood(t *testing.T) {
	e := newLayoutEngine(t, layout{
		era:      Past,
		prey:     Pos(5, 5),
		predator: Pos(9, 9),
		apex:     Pos(9, 0),
		food:     Pos(5, 6),
	})

	if !e.Move(Prey, Pos(5, 6)) {
		t.Fatal("Expected prey to eat food")
	}
	s := e.State()
	if s.Prey().Score() != PreyEatsFoodPoints {
		t.Errorf("Expected prey score %d, got %d", PreyEatsFoodPoints, s.Prey().Score())
	}
	if s.Food().Position() != Pos(0, 0) {
		t.Errorf("Expected food to respawn at first empty cell (0,0), got %s", s.Food().Position())
	}
	if e.CurrentTurn() != Predator {
		t.Errorf("Expected predator's turn, got %s", e.CurrentTurn())
	}
	assertConsistent(t, e)
}

func TestExecute_PredatorEatsPrey(t *testing.T) {
	e := newLayoutEngine(t, layout{
		era:      Past,
		turn:     Predator,
		prey:     Pos(3, 3),
		predator: Pos(3, 4),
		apex:     Pos(8, 8),
		food:     Pos(0, 0),
	})
	emptyBefore := make(map[Position]bool)
	for _, p := range e.State().Board().EmptyCells() {
		emptyBefore[p] = true
	}

	if !e.Move(Predator, Pos(3, 3)) {
		t.Fatal("Expected predator to eat prey")
	}
	s := e.State()
	if s.Predator().Score() != PredatorEatsPreyPoints {
		t.Errorf("Expected predator score %d, got %d", PredatorEatsPreyPoints, s.Predator().Score())
	}
	if s.Prey().Score() != EatenPenalty {
		t.Errorf("Expected prey score %d, got %d", EatenPenalty, s.Prey().Score())
	}
	if s.Predator().Position() != Pos(3, 3) {
		t.Errorf("Predator should be at (3,3), got %s", s.Predator().Position())
	}
	if !emptyBefore[s.Prey().Position()] {
		t.Errorf("Prey respawned onto %s which was not empty before", s.Prey().Position())
	}
	if got, _ := s.Board().Get(Pos(3, 4)); got != Empty {
		t.Errorf("Vacated cell should be empty, got %s", got)
	}
	assertConsistent(t, e)
}

// indexAfterMove returns the row-major index from would have among the empty
// cells once the mover has left it, i.e. the pick that lands on the vacated cell
func indexAfterMove(e *GameEngine, from Position) int {
	idx := 0
	for _, p := range e.State().Board().EmptyCells() {
		if p.Row > from.Row || (p.Row == from.Row && p.Col > from.Col) {
			break
		}
		idx++
	}
	return idx
}

func TestExecute_RespawnSkipsVacatedCell(t *testing.T) {
	tests := []struct {
		name   string
		l      layout
		mover  Role
		to     Position
		victim func(*GameState) Position
	}{
		{
			name:   "prey eaten by predator",
			l:      layout{era: Past, turn: Predator, prey: Pos(3, 3), predator: Pos(3, 4), apex: Pos(8, 8), food: Pos(0, 0)},
			mover:  Predator,
			to:     Pos(3, 3),
			victim: func(s *GameState) Position { return s.Prey().Position() },
		},
		{
			name:   "predator eaten by apex",
			l:      layout{era: Past, turn: Apex, prey: Pos(0, 9), predator: Pos(6, 5), apex: Pos(6, 6), food: Pos(0, 0)},
			mover:  Apex,
			to:     Pos(6, 5),
			victim: func(s *GameState) Position { return s.Predator().Position() },
		},
		{
			name:   "food eaten by prey",
			l:      layout{era: Past, prey: Pos(5, 5), predator: Pos(9, 9), apex: Pos(9, 0), food: Pos(5, 6)},
			mover:  Prey,
			to:     Pos(5, 6),
			victim: func(s *GameState) Position { return s.Food().Position() },
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			preview := newLayoutEngine(t, test.l)
			from := preview.State().Animal(test.mover).Position()
			pick := indexAfterMove(preview, from)

			e := newLayoutEngine(t, test.l, WithRand(fixedRand(pick)))
			emptyBefore := make(map[Position]bool)
			for _, p := range e.State().Board().EmptyCells() {
				emptyBefore[p] = true
			}

			if !e.Move(test.mover, test.to) {
				t.Fatalf("Expected %s to move to %s", test.mover, test.to)
			}
			got := test.victim(e.State())
			if got == from {
				t.Errorf("Respawned onto the vacated cell %s", from)
			}
			if !emptyBefore[got] {
				t.Errorf("Respawned onto %s which was not empty before the move", got)
			}
			if cell, _ := e.State().Board().Get(from); cell != Empty {
				t.Errorf("Vacated cell %s should be empty, got %s", from, cell)
			}
			assertConsistent(t, e)
		})
	}
}

func TestExecute_ApexEatsPredator(t *testing.T) {
	e := newLayoutEngine(t, layout{
		era:      Present,
		turn:     Apex,
		prey:     Pos(0, 9),
		predator: Pos(5, 8),
		apex:     Pos(5, 5),
		food:     Pos(0, 0),
	})

	if got := e.Classify(Apex, Pos(5, 8)); got != MoveAbility {
		t.Fatalf("Expected ABILITY, got %s", got)
	}
	if !e.Move(Apex, Pos(5, 8)) {
		t.Fatal("Expected apex to eat predator")
	}
	s := e.State()
	if s.Apex().Score() != ApexEatsPoints || s.Predator().Score() != EatenPenalty {
		t.Errorf("Unexpected scores apex=%d predator=%d", s.Apex().Score(), s.Predator().Score())
	}
	// apex acted last, so the round ended and the fresh cooldown survives the tick
	if s.Apex().Cooldown() != AbilityCooldown(Present, Apex) {
		t.Errorf("Expected apex cooldown %d, got %d", AbilityCooldown(Present, Apex), s.Apex().Cooldown())
	}
	if e.Turns().Round() != 2 || e.CurrentTurn() != Prey {
		t.Errorf("Expected round 2 prey turn, got round %d %s", e.Turns().Round(), e.CurrentTurn())
	}
	assertConsistent(t, e)
}

func TestAbilityCooldown_TicksAndBlocks(t *testing.T) {
	e := newLayoutEngine(t, layout{
		era:      Past,
		prey:     Pos(5, 5),
		predator: Pos(0, 9),
		apex:     Pos(9, 0),
		food:     Pos(0, 0),
	})

	if !e.Move(Prey, Pos(7, 5)) {
		t.Fatal("Expected prey ability move")
	}
	prey := e.State().Prey()
	if prey.Cooldown() != 2 {
		t.Fatalf("Expected cooldown 2, got %d", prey.Cooldown())
	}
	e.Move(Predator, Pos(0, 9))
	e.Move(Apex, Pos(9, 0))
	if prey.Cooldown() != 1 {
		t.Fatalf("Expected cooldown 1 after round end, got %d", prey.Cooldown())
	}

	if e.CanMove(Prey, Pos(5, 5)) {
		t.Error("Ability should be refused while on cooldown")
	}
	if !e.CanMove(Prey, Pos(6, 5)) {
		t.Error("Walk should still be allowed while on cooldown")
	}

	e.Move(Prey, Pos(7, 5))
	e.Move(Predator, Pos(0, 9))
	e.Move(Apex, Pos(9, 0))
	if prey.Cooldown() != 0 {
		t.Errorf("Cooldown should reach 0, got %d", prey.Cooldown())
	}
	e.Move(Prey, Pos(7, 5))
	e.Move(Predator, Pos(0, 9))
	e.Move(Apex, Pos(9, 0))
	if prey.Cooldown() != 0 {
		t.Errorf("Cooldown should never go negative, got %d", prey.Cooldown())
	}
}

func TestDash_Present(t *testing.T) {
	var events []Event
	e := newLayoutEngine(t, layout{
		era:      Present,
		turn:     Predator,
		prey:     Pos(0, 9),
		predator: Pos(5, 5),
		apex:     Pos(5, 6),
		food:     Pos(0, 0),
	}, WithEventSink(SinkFunc(func(ev Event) { events = append(events, ev) })))
	events = nil

	mid, ok := e.dashMid(Predator, Pos(5, 7))
	if !ok || mid != Pos(4, 6) {
		t.Fatalf("Expected dash through (4,6), got %s ok=%v", mid, ok)
	}

	moves := e.LegalMoves(Predator)
	found := false
	for _, m := range moves {
		if m.To == Pos(5, 7) {
			found = m.Dash
		}
	}
	if !found {
		t.Error("LegalMoves should list (5,7) as a dash")
	}

	if !e.Move(Predator, Pos(5, 7)) {
		t.Fatal("Expected dash to succeed")
	}
	if got := e.State().Predator().Position(); got != Pos(5, 7) {
		t.Errorf("Predator should end at (5,7), got %s", got)
	}
	if e.CurrentTurn() != Apex {
		t.Errorf("Dash should end the turn once, got turn %s", e.CurrentTurn())
	}
	assertConsistent(t, e)

	if len(events) == 0 || events[0].Kind != EventDash {
		t.Fatalf("Expected DASH event first, got %v", events)
	}
	moveCount := 0
	for _, ev := range events {
		if ev.Kind == EventMove {
			moveCount++
		}
	}
	if moveCount != 2 {
		t.Errorf("Expected two MOVE events for the dash legs, got %d", moveCount)
	}
}

func TestDash_RequiresAdjacentApex(t *testing.T) {
	e := newLayoutEngine(t, layout{
		era:      Present,
		turn:     Predator,
		prey:     Pos(0, 9),
		predator: Pos(5, 5),
		apex:     Pos(9, 0),
		food:     Pos(0, 0),
	})

	if e.Move(Predator, Pos(5, 7)) {
		t.Error("Distance-2 predator move without an adjacent apex must fail")
	}
	if e.State().Predator().Position() != Pos(5, 5) || e.CurrentTurn() != Predator {
		t.Error("Failed move must not change state")
	}
}

func TestDash_WrongTurnLeavesStateUntouched(t *testing.T) {
	e := newLayoutEngine(t, layout{
		era:      Present,
		turn:     Prey,
		prey:     Pos(0, 9),
		predator: Pos(5, 5),
		apex:     Pos(5, 6),
		food:     Pos(0, 0),
	})
	before := e.State().Board().Rows()

	if e.Move(Predator, Pos(5, 7)) {
		t.Fatal("Dash out of turn must fail")
	}
	after := e.State().Board().Rows()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("Board changed on row %d: %q -> %q", i, before[i], after[i])
		}
	}
}

func TestGameEndsAfterTotalRounds(t *testing.T) {
	var last Event
	e := NewEngine(
		WithChainSource(StaticChains{testChain}),
		WithRand(NewSeededRand(3)),
		WithEventSink(SinkFunc(func(ev Event) { last = ev })),
	)
	if _, err := e.StartGame(GameConfig{Era: Future, GridSize: Small, TotalRounds: 10}); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	moves := 0
	for !e.IsGameOver() {
		role := e.CurrentTurn()
		moved := false
		for _, m := range e.LegalMoves(role) {
			if m.Kind == MoveWalk && !m.Dash {
				moved = e.Move(role, m.To)
				break
			}
		}
		if !moved {
			t.Fatalf("No walk available for %s at move %d", role, moves)
		}
		moves++
		assertConsistent(t, e)
		if moves > 30 {
			t.Fatal("Game did not end after 30 moves")
		}
	}

	if moves != 30 {
		t.Errorf("Expected 30 moves, got %d", moves)
	}
	if e.Turns().Round() != 10 || e.State().Round() != 10 {
		t.Errorf("Expected round 10, got %d/%d", e.Turns().Round(), e.State().Round())
	}
	if last.Kind != EventGameOver {
		t.Errorf("Expected GAME OVER to be the last event, got %s", last.Kind)
	}
	if e.Move(Prey, e.State().Prey().Position()) {
		t.Error("Moves must be refused after game over")
	}
}

func TestWinner(t *testing.T) {
	tests := []struct {
		name                string
		prey, predator, apx int
		winners             []Role
		text                string
	}{
		{"prey and predator tie", 3, 3, 1, []Role{Prey, Predator}, "PREY & PREDATOR wins | scores: prey=3 predator=3 apex=1"},
		{"apex alone", 0, -1, 2, []Role{Apex}, "APEX wins | scores: prey=0 predator=-1 apex=2"},
		{"all tied", 0, 0, 0, []Role{Prey, Predator, Apex}, "PREY & PREDATOR & APEX wins | scores: prey=0 predator=0 apex=0"},
		{"negative max", -2, -1, -3, []Role{Predator}, "PREDATOR wins | scores: prey=-2 predator=-1 apex=-3"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			e := newLayoutEngine(t, layout{era: Past, prey: Pos(0, 0), predator: Pos(0, 1), apex: Pos(0, 2), food: Pos(0, 3)})
			s := e.State()
			s.Prey().addScore(test.prey)
			s.Predator().addScore(test.predator)
			s.Apex().addScore(test.apx)

			res := e.Winner()
			if len(res.Winners) != len(test.winners) {
				t.Fatalf("Expected winners %v, got %v", test.winners, res.Winners)
			}
			for i := range test.winners {
				if res.Winners[i] != test.winners[i] {
					t.Errorf("Expected winners %v, got %v", test.winners, res.Winners)
				}
			}
			if got := e.WinnerText(); got != test.text {
				t.Errorf("Expected %q, got %q", test.text, got)
			}
		})
	}
}

func TestSnapshot(t *testing.T) {
	e := newLayoutEngine(t, layout{era: Past, prey: Pos(1, 1), predator: Pos(2, 2), apex: Pos(3, 3), food: Pos(4, 4)})

	snap := e.Snapshot()
	if snap.GridSize != Small || snap.Size != 10 {
		t.Errorf("Unexpected size %s/%d", snap.GridSize, snap.Size)
	}
	if snap.Prey.Position != Pos(1, 1) || snap.Food.Name != "Carrot" {
		t.Errorf("Unexpected pieces %+v %+v", snap.Prey, snap.Food)
	}
	if snap.Rows[3][3] != 'A' {
		t.Errorf("Expected apex symbol at (3,3), got %q", snap.Rows[3][3])
	}

	// snapshots are detached from the live game
	e.Move(Prey, Pos(1, 2))
	if snap.Prey.Position != Pos(1, 1) {
		t.Error("Snapshot changed after a move")
	}
}

func TestEventString(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{Event{Kind: EventRoundBegin, Round: 3}, "ROUND BEGIN round=3"},
		{Event{Kind: EventMove, Role: Prey, From: Pos(1, 1), To: Pos(1, 2), Target: FoodCell}, "MOVE role=PREY from=(1,1) to=(1,2) target=FOOD"},
		{Event{Kind: EventScore, Role: Prey, Value: -1}, "SCORE role=PREY delta=-1"},
		{Event{Kind: EventScore, Role: Apex, Value: 1}, "SCORE role=APEX delta=+1"},
		{Event{Kind: EventCooldown, Role: Apex, Value: 3}, "COOLDOWN role=APEX set=3"},
		{Event{Kind: EventSkip, Role: Predator}, "SKIP TURN role=PREDATOR"},
		{Event{Kind: EventRoundEnd}, "ROUND END"},
	}

	for _, test := range tests {
		if got := test.ev.String(); got != test.want {
			t.Errorf("Expected %q, got %q", test.want, got)
		}
	}
}
