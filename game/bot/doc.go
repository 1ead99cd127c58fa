// Package bot provides automated players for the FoodChain game.
//
// A Bot only uses the engine's public move API (LegalMoves and Move). It
// rates every legal destination with a ScoreFunc and plays the best one:
//
//   - Apex moves toward the closer of prey and predator and always takes a capture
//   - Prey moves toward food, keeps distance from both hunters and avoids cells next to them
//   - Predator moves toward the prey and always takes a capture
//
// Ties go to the first destination in row-major order. A Roster holds the
// bots of a game and plays their turns until a human-controlled role is to
// move:
//
//	roster := bot.NewRoster(engine.Predator)
//	turns := roster.PlayUntilHuman(eng, 0)
package bot
