// Package mcp provides a Model Context Protocol tool server for FoodChain.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for game operations
//   - Text rendering of boards, moves and results
//
// Every tool is a thin proxy: it calls the REST API at the client's base URL
// and formats the JSON reply as text for the agent. The server therefore
// works the same against the in-process API or an external server.
//
// MCP Tools:
//
//   - new_game: Start a game (era, grid size, rounds, human seats, auto play)
//   - game_state: Get the board, scores, cooldowns and whose turn it is
//   - legal_moves: List every target a role may move to, with its kind
//   - classify_move: Report the kind of a move without playing it
//   - move: Move the animal whose turn it is
//   - play_bots: Let the bots play until a human seat is up
//   - winner: Get the winners and final scores
//   - event_history: Page through recorded game events
//   - save_game, load_game, list_saves: Manage save slots
//   - list_eras: List the food chains available in each era
//   - game_rules: Describe the rules of the game
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer()) for local MCP clients
//   - HTTP: single JSON-RPC messages posted to /mcp via HandleMessage
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
