// Package api provides HTTP REST API handlers for the FoodChain game.
//
// The api package implements:
//   - RESTful endpoints for the active game
//   - Save slot endpoints
//   - Era data listing
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Game:
//   - POST /api/game - Start a new game
//   - GET /api/game - Get the active game
//   - POST /api/game/move - Move a role to a cell
//   - GET /api/game/classify?role=&row=&col= - Classify a prospective move
//   - GET /api/game/moves?role= - List legal moves
//   - POST /api/game/bots - Play bot turns until a human is to move
//   - GET /api/game/winner - Current standing
//   - GET /api/game/history?page=&limit=&order= - Event history
//   - GET /api/game/export - Download the game in the save format
//   - POST /api/game/import - Replace the game with a text/plain save
//
// Save slots:
//   - GET /api/saves - List saves
//   - POST /api/saves - Save the active game ({"slot": "name"}, empty generates one)
//   - POST /api/saves/{slot}/load - Load a save
//   - DELETE /api/saves/{slot} - Delete a save
//
// Other:
//   - GET /api/eras - Food chains of each era
//   - GET /ws?game=<id> - Snapshot updates
//   - GET /healthz - Health check
//
// Request/Response Format:
//
// Endpoints accept and return JSON except export and import, which use the
// plain-text save format. A new game request looks like:
//
//	{
//	  "era": "PRESENT",
//	  "grid_size": "MEDIUM",
//	  "total_rounds": 20,
//	  "humans": ["PREDATOR"],
//	  "auto_play": true
//	}
//
// and a move request like {"role": "PREDATOR", "row": 4, "col": 6}. A
// refused move is not an error: the response has "success": false.
//
// Error Handling:
//
// Errors are returned as {"error": "message"} with a status code:
// 404 when there is no active game or save slot, 422 for content that is
// not a valid save, 400 for invalid configuration or slot names.
package api
