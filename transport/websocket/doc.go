// Package websocket pushes FoodChain game snapshots to local UI clients.
//
// The websocket package implements:
//   - Game-aware WebSocket connections
//   - Snapshot broadcasting after every state change
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a read and a
// write goroutine; the hub's maps are only touched by its Run loop.
//
// Message Protocol:
//
// Messages are JSON-encoded Message values:
//
//	{"game_id": "...", "event": "state_update", "state": {...snapshot...}}
//
// Clients pick a game with ?game=<id>. Without one they follow every game,
// which is what a UI wants when the active game is replaced.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	hub.BroadcastState(info.ID, info.State)
package websocket
