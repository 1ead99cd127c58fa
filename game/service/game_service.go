package service

import (
	"context"

	"github.com/wricardo/mcp-training/foodchain/game/config"
	"github.com/wricardo/mcp-training/foodchain/game/engine"
	"github.com/wricardo/mcp-training/foodchain/game/session"
)

// GameService defines all game-related operations
type GameService interface {
	// Game lifecycle
	NewGame(ctx context.Context, req NewGameRequest) (*GameInfo, error)
	GetGame(ctx context.Context) (*GameInfo, error)

	// Moves
	Move(ctx context.Context, role engine.Role, to engine.Position) (*MoveResult, error)
	Classify(ctx context.Context, role engine.Role, to engine.Position) (engine.MoveKind, error)
	LegalMoves(ctx context.Context, role engine.Role) ([]engine.LegalMove, error)
	PlayBots(ctx context.Context) (*BotsResult, error)
	Winner(ctx context.Context) (*WinnerInfo, error)

	// Persistence
	SaveGame(ctx context.Context, slot string) (*session.SaveInfo, error)
	LoadGame(ctx context.Context, slot string) (*GameInfo, error)
	ListSaves(ctx context.Context) ([]*session.SaveInfo, error)
	DeleteSave(ctx context.Context, slot string) error
	Export(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, data []byte) (*GameInfo, error)

	// History and data
	GetHistory(ctx context.Context, opts HistoryOptions) (*HistoryResponse, error)
	ListEras(ctx context.Context) ([]config.EraInfo, error)
}

// EraSource supplies food chains to new games and describes the available eras
type EraSource interface {
	engine.ChainSource
	ListEras() []config.EraInfo
}
