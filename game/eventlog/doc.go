// Package eventlog provides sinks for the events the game engine emits.
//
// FileLog writes one timestamped line per event, matching the classic
// game log ("2024-05-01T10:00:00Z MOVE role=PREY from=(1,1) to=(1,2) target=FOOD").
// Recorder keeps a bounded in-memory history for the history endpoint, and
// Multi fans an event out to several sinks. All sinks are safe for
// concurrent use.
package eventlog
