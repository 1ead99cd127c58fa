// Package service provides the business logic layer for the FoodChain game.
//
// The service package implements:
//   - The single active game (one GameState and TurnManager pair)
//   - Human and bot seats, with optional automatic bot play
//   - Save slots, text export and import
//   - Paginated event history
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game
// operations. EraSource supplies the food chains new games are drawn from;
// config.Manager satisfies it.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP)
// and the game engine. It owns the engine instance, so there is no global
// game: every caller that needs a game goes through one GameService. All
// operations are serialized by a mutex.
//
// Usage:
//
//	eras, _ := config.NewManager("data")
//	persistence, _ := session.NewFilePersistence("saves")
//	gameService := service.NewGameService(service.Options{
//		Eras:  eras,
//		Saves: session.NewManager(persistence),
//	})
//
//	info, err := gameService.NewGame(ctx, service.NewGameRequest{Era: "PAST", AutoPlay: true})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Move the human predator one cell right
//	pos := info.State.Predator.Position
//	result, err := gameService.Move(ctx, engine.Predator, pos.Add(0, 1))
//
// Seats:
//
// Roles not listed as human are played by game/bot. With AutoPlay the
// service runs bot turns after starting, loading and every human move until
// a human is to move or the game ends; otherwise PlayBots advances them.
package service
