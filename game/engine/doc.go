// Package engine provides the core rules of the FoodChain board game.
//
// The engine package implements the game mechanics including:
//   - A square board holding Prey, Predator, Apex and a Food token
//   - Turn and round progression (Prey, then Predator, then Apex)
//   - Era-specific ability moves with cooldowns, and the Present-era Predator dash
//   - Captures, scoring and random respawn of consumed pieces
//   - Winner computation across tied scores
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState owns the board and the four pieces,
// TurnManager owns whose turn it is and the round counter. Both are created
// together by StartGame or restored together and spliced in with LoadFrom.
//
// Usage:
//
//	eng := engine.NewEngine(
//		engine.WithChainSource(chains),
//		engine.WithRand(engine.NewSeededRand(42)),
//		engine.WithEventSink(log),
//	)
//	if _, err := eng.StartGame(engine.GameConfig{
//		Era:         engine.Present,
//		GridSize:    engine.Small,
//		TotalRounds: 20,
//	}); err != nil {
//		log.Fatal(err)
//	}
//
//	ok := eng.Move(engine.Prey, engine.Pos(3, 4))
//	fmt.Println(eng.WinnerText())
//
// Game Rules:
//
// A move of Chebyshev distance 1 is a walk and is governed only by the
// consumption matrix (CanEnter). Longer moves are abilities: they must
// match the era/role geometry table (AbilityGeometryOK) and are refused
// while the mover's cooldown is above zero. Moving onto your own cell skips
// the turn. Prey eating Food scores 3, Predator eating Prey scores 3, Apex
// eating either scores 1, and an eaten animal loses 1 point. The game ends
// after the Apex acts in the final round.
//
// Invalid moves are not errors: Move and Execute return false. Construction
// problems wrap ErrInvalidConfig and board access outside the grid wraps
// ErrOutOfRange.
package engine
