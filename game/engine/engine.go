package engine

import (
	"fmt"
	"strings"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Lifecycle
	StartGame(cfg GameConfig) (*GameState, error)
	LoadFrom(state *GameState, tm *TurnManager) error
	State() *GameState
	Turns() *TurnManager
	Chain() FoodChain

	// Moves
	Classify(role Role, to Position) MoveKind
	CanMove(role Role, to Position) bool
	Move(role Role, to Position) bool
	Execute(role Role, to Position, endTurn bool) bool
	LegalMoves(role Role) []LegalMove

	// Progress
	CurrentTurn() Role
	IsGameOver() bool
	Winner() Result
	WinnerText() string
	Snapshot() *Snapshot
}

// LegalMove is one destination the mover may currently choose
type LegalMove struct {
	To   Position `json:"to"`
	Kind MoveKind `json:"kind"`
	// Dash marks a Present-era Predator two-step move through an intermediate cell
	Dash bool `json:"dash,omitempty"`
}

// Result holds the winner set and every role's score
type Result struct {
	Winners []Role       `json:"winners"`
	Scores  map[Role]int `json:"scores"`
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state  *GameState
	tm     *TurnManager
	chain  FoodChain
	rng    Rand
	sink   EventSink
	chains ChainSource
	now    func() time.Time

	buffering bool
	pending   []Event
}

// Option configures a GameEngine
type Option func(*GameEngine)

// WithRand sets the random source used for setup and respawns
func WithRand(r Rand) Option {
	return func(e *GameEngine) {
		if r != nil {
			e.rng = r
		}
	}
}

// WithEventSink sets where game events are reported
func WithEventSink(s EventSink) Option {
	return func(e *GameEngine) {
		if s != nil {
			e.sink = s
		}
	}
}

// WithChainSource sets the provider of per-era food chains
func WithChainSource(src ChainSource) Option {
	return func(e *GameEngine) { e.chains = src }
}

// WithClock overrides the event timestamp source
func WithClock(now func() time.Time) Option {
	return func(e *GameEngine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine with no game in progress
func NewEngine(opts ...Option) *GameEngine {
	e := &GameEngine{
		rng:  globalRand{},
		sink: nopSink{},
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartGame replaces any current game with a freshly placed one
func (e *GameEngine) StartGame(cfg GameConfig) (*GameState, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if e.chains == nil {
		return nil, fmt.Errorf("%w: no food chain source configured", ErrInvalidConfig)
	}
	pool, err := e.chains.Chains(cfg.Era)
	if err != nil {
		return nil, fmt.Errorf("failed to load food chains for %s: %w", cfg.Era, err)
	}
	chain, err := PickChain(pool, e.rng)
	if err != nil {
		return nil, err
	}
	state, err := NewRandomState(cfg, chain, e.rng)
	if err != nil {
		return nil, err
	}
	tm, err := NewTurnManager(cfg.TotalRounds)
	if err != nil {
		return nil, err
	}

	e.state, e.tm, e.chain = state, tm, chain
	e.emit(Event{Kind: EventGameStart, Detail: fmt.Sprintf("era=%s chain=%s", cfg.Era, chain)})
	e.emit(Event{Kind: EventRoundBegin})
	return state, nil
}

// LoadFrom splices in a restored state and turn manager
func (e *GameEngine) LoadFrom(state *GameState, tm *TurnManager) error {
	if state == nil || tm == nil {
		return fmt.Errorf("%w: state and turn manager are required", ErrInvalidConfig)
	}
	if !state.ready() {
		return fmt.Errorf("%w: state has no entities", ErrInvalidConfig)
	}
	if state.TotalRounds() != tm.TotalRounds() {
		return fmt.Errorf("%w: total rounds mismatch (%d vs %d)", ErrInvalidConfig, state.TotalRounds(), tm.TotalRounds())
	}
	state.setRound(tm.Round())
	e.state, e.tm = state, tm
	e.chain = FoodChain{
		Apex:     state.apex.name,
		Predator: state.predator.name,
		Prey:     state.prey.name,
		Food:     state.food.name,
	}
	e.emit(Event{Kind: EventGameLoaded, Role: tm.CurrentTurn()})
	return nil
}

func (e *GameEngine) started() bool { return e.state != nil && e.tm != nil }

func (e *GameEngine) State() *GameState   { return e.state }
func (e *GameEngine) Turns() *TurnManager { return e.tm }
func (e *GameEngine) Chain() FoodChain    { return e.chain }

// CurrentTurn returns the role to move, or "" when no game is loaded
func (e *GameEngine) CurrentTurn() Role {
	if !e.started() {
		return ""
	}
	return e.tm.CurrentTurn()
}

// IsGameOver reports true when no game is loaded
func (e *GameEngine) IsGameOver() bool {
	return !e.started() || e.tm.IsGameOver()
}

// Classify reports which kind of move reaching to would be, without mutating anything
func (e *GameEngine) Classify(role Role, to Position) MoveKind {
	if !e.started() || e.tm.IsGameOver() || role != e.tm.CurrentTurn() {
		return MoveNone
	}
	mover := e.state.Animal(role)
	from := mover.Position()
	if to == from {
		return MoveSkip
	}
	board := e.state.board
	if !board.InBounds(to) {
		return MoveNone
	}
	target := board.at(to)

	if from.Chebyshev(to) == 1 {
		if CanEnter(role, target) {
			return MoveWalk
		}
		return MoveNone
	}

	if mover.Cooldown() > 0 {
		return MoveNone
	}
	era := e.state.era
	if !AbilityGeometryOK(era, role, from, to, e.state.apex.Position()) {
		return MoveNone
	}
	if era == Future && role == Prey && target == FoodCell {
		return MoveNone
	}
	if !CanEnter(role, target) {
		return MoveNone
	}
	return MoveAbility
}

// CanMove reports whether Classify would allow the move
func (e *GameEngine) CanMove(role Role, to Position) bool {
	return e.Classify(role, to) != MoveNone
}

// Move performs a full turn for role, trying the Present-era Predator dash first
func (e *GameEngine) Move(role Role, to Position) bool {
	if !e.started() {
		return false
	}
	if mid, ok := e.dashMid(role, to); ok {
		return e.dash(mid, to)
	}
	return e.Execute(role, to, true)
}

// dashMid finds the intermediate cell of a Predator dash toward to, if any
func (e *GameEngine) dashMid(role Role, to Position) (Position, bool) {
	if role != Predator || e.state.era != Present {
		return Position{}, false
	}
	from := e.state.predator.Position()
	if from.Chebyshev(to) != 2 || !from.Adjacent(e.state.apex.Position()) {
		return Position{}, false
	}
	board := e.state.board
	if !board.InBounds(to) || !CanEnter(Predator, board.at(to)) {
		return Position{}, false
	}
	for _, off := range neighbours {
		mid := from.Add(off.dr, off.dc)
		if !board.InBounds(mid) || !CanEnter(Predator, board.at(mid)) {
			continue
		}
		if mid.Adjacent(to) {
			return mid, true
		}
	}
	return Position{}, false
}

// dash moves the Predator through mid to to as one turn.
// If either leg fails the state is rolled back and no events are reported.
func (e *GameEngine) dash(mid, to Position) bool {
	if e.tm.IsGameOver() || e.tm.CurrentTurn() != Predator {
		return false
	}
	if !e.state.predator.Position().Adjacent(e.state.apex.Position()) {
		return false
	}

	from := e.state.predator.Position()
	saved := e.state.backup()
	savedTurns := *e.tm
	e.buffering = true
	defer func() {
		e.buffering = false
		e.pending = nil
	}()

	if !e.Execute(Predator, mid, false) || !e.Execute(Predator, to, true) {
		e.state.restore(saved)
		*e.tm = savedTurns
		e.state.setRound(e.tm.Round())
		return false
	}

	events := e.pending
	e.buffering = false
	e.sink.Record(e.stamp(Event{Kind: EventDash, Round: savedTurns.Round(), Role: Predator, From: from, To: to}))
	for _, ev := range events {
		e.sink.Record(ev)
	}
	return true
}

// Execute classifies and applies one move. With endTurn false the turn is
// not advanced, which is how the first leg of a dash is taken.
func (e *GameEngine) Execute(role Role, to Position, endTurn bool) bool {
	kind := e.Classify(role, to)
	switch kind {
	case MoveNone:
		return false
	case MoveSkip:
		e.emit(Event{Kind: EventSkip, Role: role})
		if endTurn {
			e.finishTurn(role, kind)
		}
		return true
	}

	board := e.state.board
	mover := e.state.Animal(role)
	from := mover.Position()
	target := board.at(to)

	board.put(from, Empty)
	mover.moveTo(to)
	board.put(to, role.Cell())
	e.emit(Event{Kind: EventMove, Role: role, From: from, To: to, Target: target})

	switch {
	case target == Empty:
	case role == Prey && target == FoodCell:
		mover.addScore(PreyEatsFoodPoints)
		e.emit(Event{Kind: EventScore, Role: role, Value: PreyEatsFoodPoints})
		e.respawnFood(from)
	case role == Predator && target == PreyCell:
		e.capture(mover, e.state.prey, PredatorEatsPreyPoints, from)
	case role == Apex && target == PreyCell:
		e.capture(mover, e.state.prey, ApexEatsPoints, from)
	case role == Apex && target == PredatorCell:
		e.capture(mover, e.state.predator, ApexEatsPoints, from)
	}

	if endTurn {
		e.finishTurn(role, kind)
	}
	return true
}

// capture scores a meal and respawns the victim anywhere but vacated
func (e *GameEngine) capture(eater, victim *Animal, points int, vacated Position) {
	eater.addScore(points)
	victim.addScore(EatenPenalty)
	e.emit(Event{Kind: EventScore, Role: eater.Role(), Value: points})
	e.emit(Event{Kind: EventScore, Role: victim.Role(), Value: EatenPenalty})
	e.respawnAnimal(victim, vacated)
}

// finishTurn advances the turn manager, ticks cooldowns on round end and
// then applies the ability cooldown so it survives the tick.
func (e *GameEngine) finishTurn(role Role, kind MoveKind) {
	roundEnded := e.tm.EndTurn()
	if roundEnded {
		e.state.prey.tick()
		e.state.predator.tick()
		e.state.apex.tick()
	}
	if kind == MoveAbility {
		if cd := AbilityCooldown(e.state.era, role); cd > 0 {
			e.state.Animal(role).setCooldown(cd)
			e.emit(Event{Kind: EventCooldown, Role: role, Value: cd})
		}
	}
	e.state.setRound(e.tm.Round())
	if roundEnded {
		e.emit(Event{Kind: EventRoundEnd})
		if !e.tm.IsGameOver() {
			e.emit(Event{Kind: EventRoundBegin})
		}
	}
	if e.tm.IsGameOver() {
		e.emit(Event{Kind: EventGameOver, Detail: e.WinnerText()})
	}
}

// randomEmptyCell picks uniformly among cells that were empty before the
// current move, so the cell the mover just left is never a candidate.
func (e *GameEngine) randomEmptyCell(vacated Position) Position {
	cells := e.state.board.EmptyCells()
	for i, p := range cells {
		if p == vacated {
			cells = append(cells[:i], cells[i+1:]...)
			break
		}
	}
	if len(cells) == 0 {
		// a board of at least 10x10 always has room for four pieces
		panic("engine: no empty cell to respawn into")
	}
	return cells[e.rng.IntN(len(cells))]
}

func (e *GameEngine) respawnFood(vacated Position) {
	p := e.randomEmptyCell(vacated)
	e.state.food.moveTo(p)
	e.state.board.put(p, FoodCell)
}

func (e *GameEngine) respawnAnimal(a *Animal, vacated Position) {
	p := e.randomEmptyCell(vacated)
	a.moveTo(p)
	e.state.board.put(p, a.Role().Cell())
}

// LegalMoves lists every destination role may choose right now, in row-major
// order. The mover's own cell appears as a skip. Present-era Predator dash
// targets are included with Dash set.
func (e *GameEngine) LegalMoves(role Role) []LegalMove {
	if !e.started() || e.tm.IsGameOver() || e.tm.CurrentTurn() != role {
		return nil
	}
	var moves []LegalMove
	size := e.state.board.Size()
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			to := Pos(r, c)
			if _, dash := e.dashMid(role, to); dash {
				moves = append(moves, LegalMove{To: to, Kind: MoveWalk, Dash: true})
				continue
			}
			if kind := e.Classify(role, to); kind != MoveNone {
				moves = append(moves, LegalMove{To: to, Kind: kind})
			}
		}
	}
	return moves
}

// Winner returns every role tied at the top score
func (e *GameEngine) Winner() Result {
	if e.state == nil || !e.state.ready() {
		return Result{Scores: map[Role]int{}}
	}
	scores := map[Role]int{
		Prey:     e.state.prey.Score(),
		Predator: e.state.predator.Score(),
		Apex:     e.state.apex.Score(),
	}
	best := scores[Prey]
	for _, s := range scores {
		if s > best {
			best = s
		}
	}
	var winners []Role
	for _, r := range TurnOrder {
		if scores[r] == best {
			winners = append(winners, r)
		}
	}
	return Result{Winners: winners, Scores: scores}
}

// WinnerText renders the result as "PREY & PREDATOR wins | scores: prey=3 predator=3 apex=1"
func (e *GameEngine) WinnerText() string {
	res := e.Winner()
	if len(res.Winners) == 0 {
		return "no game in progress"
	}
	names := make([]string, len(res.Winners))
	for i, r := range res.Winners {
		names[i] = string(r)
	}
	return fmt.Sprintf("%s wins | scores: prey=%d predator=%d apex=%d",
		strings.Join(names, " & "), res.Scores[Prey], res.Scores[Predator], res.Scores[Apex])
}

// Snapshot returns a detached copy of the game, or nil when none is loaded
func (e *GameEngine) Snapshot() *Snapshot {
	if !e.started() {
		return nil
	}
	s := e.state
	return &Snapshot{
		Era:         s.era,
		GridSize:    s.GridSize(),
		Size:        s.board.Size(),
		Round:       e.tm.Round(),
		TotalRounds: e.tm.TotalRounds(),
		Turn:        e.tm.CurrentTurn(),
		GameOver:    e.tm.IsGameOver(),
		Prey:        viewOf(s.prey),
		Predator:    viewOf(s.predator),
		Apex:        viewOf(s.apex),
		Food:        FoodView{Name: s.food.name, Position: s.food.pos},
		Rows:        s.board.Rows(),
	}
}

func (e *GameEngine) stamp(ev Event) Event {
	if ev.Round == 0 && e.tm != nil {
		ev.Round = e.tm.Round()
	}
	ev.Time = e.now()
	return ev
}

func (e *GameEngine) emit(ev Event) {
	ev = e.stamp(ev)
	if e.buffering {
		e.pending = append(e.pending, ev)
		return
	}
	e.sink.Record(ev)
}
