package service

import (
	"time"

	"github.com/wricardo/mcp-training/foodchain/game/bot"
	"github.com/wricardo/mcp-training/foodchain/game/engine"
)

// NewGameRequest describes a game to start. Zero values take the defaults.
type NewGameRequest struct {
	Era         string   `json:"era"`
	GridSize    string   `json:"grid_size"`
	TotalRounds int      `json:"total_rounds"`
	Humans      []string `json:"humans"`    // roles played by people; nil means PREDATOR only
	AutoPlay    bool     `json:"auto_play"` // run bot turns after every human move
	Seed        uint64   `json:"seed,omitempty"`
}

// GameInfo provides information about the active game
type GameInfo struct {
	ID        string           `json:"id"`
	Chain     engine.FoodChain `json:"chain"`
	Humans    []engine.Role    `json:"humans"`
	AutoPlay  bool             `json:"auto_play"`
	CreatedAt time.Time        `json:"created_at"`
	State     *engine.Snapshot `json:"state"`
	BotTurns  []bot.Turn       `json:"bot_turns,omitempty"`
	Winner    *WinnerInfo      `json:"winner,omitempty"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	GameID   string           `json:"game_id"`
	Success  bool             `json:"success"`
	Kind     engine.MoveKind  `json:"kind"`
	Message  string           `json:"message"`
	State    *engine.Snapshot `json:"state"`
	Events   []engine.Event   `json:"events,omitempty"`
	BotTurns []bot.Turn       `json:"bot_turns,omitempty"`
	GameOver bool             `json:"game_over"`
	Winner   *WinnerInfo      `json:"winner,omitempty"`
}

// BotsResult contains the bot turns played by one PlayBots call
type BotsResult struct {
	GameID   string           `json:"game_id"`
	Turns    []bot.Turn       `json:"turns"`
	Events   []engine.Event   `json:"events,omitempty"`
	State    *engine.Snapshot `json:"state"`
	GameOver bool             `json:"game_over"`
	Winner   *WinnerInfo      `json:"winner,omitempty"`
}

// WinnerInfo is the final (or current) standing
type WinnerInfo struct {
	Winners  []engine.Role       `json:"winners"`
	Scores   map[engine.Role]int `json:"scores"`
	Text     string              `json:"text"`
	GameOver bool                `json:"game_over"`
}

// HistoryOptions configures event history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated event history
type HistoryResponse struct {
	Events      []engine.Event `json:"events"`
	TotalEvents int            `json:"total_events"`
	Page        int            `json:"page"`
	PageSize    int            `json:"page_size"`
	TotalPages  int            `json:"total_pages"`
	HasNext     bool           `json:"has_next"`
	HasPrevious bool           `json:"has_previous"`
}
