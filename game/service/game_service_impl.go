package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/mcp-training/foodchain/game/bot"
	"github.com/wricardo/mcp-training/foodchain/game/config"
	"github.com/wricardo/mcp-training/foodchain/game/engine"
	"github.com/wricardo/mcp-training/foodchain/game/eventlog"
	"github.com/wricardo/mcp-training/foodchain/game/savefile"
	"github.com/wricardo/mcp-training/foodchain/game/session"
)

var ErrNoActiveGame = errors.New("no active game")

// Defaults applied to an empty NewGameRequest
const (
	DefaultEra         = engine.Past
	DefaultGridSize    = engine.Small
	DefaultTotalRounds = 20
	MaxTotalRounds     = 1000
)

// Options wires the service to its collaborators
type Options struct {
	Eras    EraSource
	Saves   *session.Manager
	History *eventlog.Recorder // nil creates a recorder with the default capacity
	Sink    engine.EventSink   // extra sink, e.g. the event log file
	Seed    uint64             // default seed for games that do not set one; 0 means random
	Now     func() time.Time
}

// activeGame is the game currently owned by the service
type activeGame struct {
	id        string
	engine    *engine.GameEngine
	roster    bot.Roster
	humans    []engine.Role
	autoPlay  bool
	createdAt time.Time
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	eras    EraSource
	saves   *session.Manager
	history *eventlog.Recorder
	sink    engine.EventSink
	seed    uint64
	now     func() time.Time

	// capture collects the events of the call in progress
	capture []engine.Event

	game *activeGame
	mu   sync.Mutex
}

// NewGameService creates a new game service instance
func NewGameService(opts Options) GameService {
	s := &gameServiceImpl{
		eras:    opts.Eras,
		saves:   opts.Saves,
		history: opts.History,
		sink:    opts.Sink,
		seed:    opts.Seed,
		now:     opts.Now,
	}
	if s.history == nil {
		s.history = eventlog.NewRecorder(eventlog.DefaultCapacity)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *gameServiceImpl) newEngine(seed uint64) *engine.GameEngine {
	sinks := eventlog.Multi{s.history, engine.SinkFunc(func(ev engine.Event) {
		s.capture = append(s.capture, ev)
	})}
	if s.sink != nil {
		sinks = append(sinks, s.sink)
	}
	opts := []engine.Option{engine.WithEventSink(sinks), engine.WithClock(s.now)}
	if s.eras != nil {
		opts = append(opts, engine.WithChainSource(s.eras))
	}
	if seed == 0 {
		seed = s.seed
	}
	if seed != 0 {
		opts = append(opts, engine.WithRand(engine.NewSeededRand(seed)))
	}
	return engine.NewEngine(opts...)
}

// parseHumans maps role names to roles, defaulting to the predator seat
func parseHumans(names []string) ([]engine.Role, error) {
	if names == nil {
		return []engine.Role{engine.Predator}, nil
	}
	seen := make(map[engine.Role]bool)
	humans := make([]engine.Role, 0, len(names))
	for _, name := range names {
		role, err := engine.ParseRole(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", engine.ErrInvalidConfig, err)
		}
		if !seen[role] {
			seen[role] = true
			humans = append(humans, role)
		}
	}
	return humans, nil
}

// gameConfig applies defaults and limits to a request
func gameConfig(req NewGameRequest) (engine.GameConfig, error) {
	cfg := engine.GameConfig{Era: DefaultEra, GridSize: DefaultGridSize, TotalRounds: DefaultTotalRounds}
	if req.Era != "" {
		era, err := engine.ParseEra(req.Era)
		if err != nil {
			return cfg, fmt.Errorf("%w: %v", engine.ErrInvalidConfig, err)
		}
		cfg.Era = era
	}
	if req.GridSize != "" {
		size, err := engine.ParseGridSize(req.GridSize)
		if err != nil {
			return cfg, fmt.Errorf("%w: %v", engine.ErrInvalidConfig, err)
		}
		cfg.GridSize = size
	}
	if req.TotalRounds != 0 {
		cfg.TotalRounds = req.TotalRounds
	}
	if cfg.TotalRounds < 1 || cfg.TotalRounds > MaxTotalRounds {
		return cfg, fmt.Errorf("%w: total rounds must be between 1 and %d, got %d",
			engine.ErrInvalidConfig, MaxTotalRounds, cfg.TotalRounds)
	}
	return cfg, nil
}

// NewGame replaces the active game with a fresh one
func (s *gameServiceImpl) NewGame(ctx context.Context, req NewGameRequest) (*GameInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := gameConfig(req)
	if err != nil {
		return nil, err
	}
	humans, err := parseHumans(req.Humans)
	if err != nil {
		return nil, err
	}

	eng := s.newEngine(req.Seed)
	undo := s.resetHistory()
	if _, err := eng.StartGame(cfg); err != nil {
		undo()
		return nil, fmt.Errorf("failed to start game: %w", err)
	}

	s.game = &activeGame{
		id:        uuid.NewString(),
		engine:    eng,
		roster:    bot.NewRoster(humans...),
		humans:    humans,
		autoPlay:  req.AutoPlay,
		createdAt: s.now(),
	}
	return s.infoAfterAutoPlay(), nil
}

// adopt installs a restored game, keeping the seats of the previous one
func (s *gameServiceImpl) adopt(state *engine.GameState, tm *engine.TurnManager) (*GameInfo, error) {
	humans := []engine.Role{engine.Predator}
	autoPlay := false
	if s.game != nil {
		humans, autoPlay = s.game.humans, s.game.autoPlay
	}

	eng := s.newEngine(0)
	undo := s.resetHistory()
	if err := eng.LoadFrom(state, tm); err != nil {
		undo()
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	s.game = &activeGame{
		id:        uuid.NewString(),
		engine:    eng,
		roster:    bot.NewRoster(humans...),
		humans:    humans,
		autoPlay:  autoPlay,
		createdAt: s.now(),
	}
	return s.infoAfterAutoPlay(), nil
}

// resetHistory clears the event history for a new game. The returned func
// puts the previous history back when the new game fails to start.
func (s *gameServiceImpl) resetHistory() (undo func()) {
	events, dropped := s.history.Events(), s.history.Dropped()
	s.history.Reset()
	s.capture = nil
	return func() {
		s.history.Restore(events, dropped)
		s.capture = nil
	}
}

func (s *gameServiceImpl) infoAfterAutoPlay() *GameInfo {
	var turns []bot.Turn
	if s.game.autoPlay {
		turns = s.game.roster.PlayUntilHuman(s.game.engine, 0)
	}
	info := s.info()
	info.BotTurns = turns
	return info
}

func (s *gameServiceImpl) info() *GameInfo {
	g := s.game
	return &GameInfo{
		ID:        g.id,
		Chain:     g.engine.Chain(),
		Humans:    g.humans,
		AutoPlay:  g.autoPlay,
		CreatedAt: g.createdAt,
		State:     g.engine.Snapshot(),
		Winner:    s.winner(),
	}
}

// winner is only reported once the game is over
func (s *gameServiceImpl) winner() *WinnerInfo {
	if !s.game.engine.IsGameOver() {
		return nil
	}
	return s.standing()
}

func (s *gameServiceImpl) standing() *WinnerInfo {
	eng := s.game.engine
	res := eng.Winner()
	return &WinnerInfo{
		Winners:  res.Winners,
		Scores:   res.Scores,
		Text:     eng.WinnerText(),
		GameOver: eng.IsGameOver(),
	}
}

func (s *gameServiceImpl) active() (*activeGame, error) {
	if s.game == nil {
		return nil, ErrNoActiveGame
	}
	return s.game, nil
}

// GetGame returns the active game
func (s *gameServiceImpl) GetGame(ctx context.Context) (*GameInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.active(); err != nil {
		return nil, err
	}
	return s.info(), nil
}

// Move plays one turn for role. A refused move is reported with Success
// false rather than an error.
func (s *gameServiceImpl) Move(ctx context.Context, role engine.Role, to engine.Position) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.active()
	if err != nil {
		return nil, err
	}
	eng := g.engine

	result := &MoveResult{GameID: g.id, Kind: moveKind(eng, role, to)}
	switch {
	case eng.IsGameOver():
		result.Message = "game is over"
	case eng.CurrentTurn() != role:
		result.Message = fmt.Sprintf("it is %s's turn", eng.CurrentTurn())
	default:
		s.capture = nil
		result.Success = eng.Move(role, to)
		if result.Success {
			result.Events = s.capture
			result.Message = fmt.Sprintf("%s moved to %s", role, to)
			if g.autoPlay {
				s.capture = nil
				result.BotTurns = g.roster.PlayUntilHuman(eng, 0)
				result.Events = append(result.Events, s.capture...)
			}
		} else {
			result.Message = fmt.Sprintf("%s cannot move to %s", role, to)
		}
		s.capture = nil
	}

	result.State = eng.Snapshot()
	result.GameOver = eng.IsGameOver()
	result.Winner = s.winner()
	return result, nil
}

// moveKind is Classify, except that a dash target reports as a walk
func moveKind(eng *engine.GameEngine, role engine.Role, to engine.Position) engine.MoveKind {
	for _, m := range eng.LegalMoves(role) {
		if m.To == to {
			return m.Kind
		}
	}
	return engine.MoveNone
}

// Classify reports the kind of a prospective move without playing it
func (s *gameServiceImpl) Classify(ctx context.Context, role engine.Role, to engine.Position) (engine.MoveKind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.active()
	if err != nil {
		return engine.MoveNone, err
	}
	return g.engine.Classify(role, to), nil
}

// LegalMoves lists the destinations role may choose now
func (s *gameServiceImpl) LegalMoves(ctx context.Context, role engine.Role) ([]engine.LegalMove, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.active()
	if err != nil {
		return nil, err
	}
	moves := g.engine.LegalMoves(role)
	if moves == nil {
		moves = []engine.LegalMove{}
	}
	return moves, nil
}

// PlayBots plays bot turns until a human is to move or the game ends
func (s *gameServiceImpl) PlayBots(ctx context.Context) (*BotsResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.active()
	if err != nil {
		return nil, err
	}
	s.capture = nil
	turns := g.roster.PlayUntilHuman(g.engine, 0)
	events := s.capture
	s.capture = nil
	if turns == nil {
		turns = []bot.Turn{}
	}
	return &BotsResult{
		GameID:   g.id,
		Turns:    turns,
		Events:   events,
		State:    g.engine.Snapshot(),
		GameOver: g.engine.IsGameOver(),
		Winner:   s.winner(),
	}, nil
}

// Winner returns the current standing, final once the game is over
func (s *gameServiceImpl) Winner(ctx context.Context) (*WinnerInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.active(); err != nil {
		return nil, err
	}
	return s.standing(), nil
}

// SaveGame stores the active game in slot
func (s *gameServiceImpl) SaveGame(ctx context.Context, slot string) (*session.SaveInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.active()
	if err != nil {
		return nil, err
	}
	if s.saves == nil {
		return nil, errors.New("saving is not configured")
	}
	return s.saves.Save(ctx, slot, g.engine.State(), g.engine.Turns())
}

// LoadGame replaces the active game with the one stored in slot
func (s *gameServiceImpl) LoadGame(ctx context.Context, slot string) (*GameInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saves == nil {
		return nil, errors.New("saving is not configured")
	}
	state, tm, err := s.saves.Load(ctx, slot)
	if err != nil {
		return nil, err
	}
	return s.adopt(state, tm)
}

// ListSaves returns all save slots, newest first
func (s *gameServiceImpl) ListSaves(ctx context.Context) ([]*session.SaveInfo, error) {
	if s.saves == nil {
		return []*session.SaveInfo{}, nil
	}
	return s.saves.List(ctx)
}

// DeleteSave removes a save slot
func (s *gameServiceImpl) DeleteSave(ctx context.Context, slot string) error {
	if s.saves == nil {
		return session.ErrSaveNotFound
	}
	return s.saves.Delete(ctx, slot)
}

// Export encodes the active game in the save format
func (s *gameServiceImpl) Export(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.active()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := savefile.Encode(&buf, g.engine.State(), g.engine.Turns()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Import replaces the active game with one in the save format
func (s *gameServiceImpl) Import(ctx context.Context, data []byte) (*GameInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, tm, err := savefile.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return s.adopt(state, tm)
}

// GetHistory retrieves the paginated event history of the active game
func (s *gameServiceImpl) GetHistory(ctx context.Context, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	if _, err := s.active(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	history := s.history.Events()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var events []engine.Event
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			events = append(events, history[i])
		}
	} else if start < total {
		events = history[start:end]
	}

	if events == nil {
		events = []engine.Event{}
	}

	return &HistoryResponse{
		Events:      events,
		TotalEvents: total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListEras reports the food chains available in each era
func (s *gameServiceImpl) ListEras(ctx context.Context) ([]config.EraInfo, error) {
	if s.eras == nil {
		return []config.EraInfo{}, nil
	}
	return s.eras.ListEras(), nil
}
