// Package session provides save slot management for the FoodChain game.
//
// The session package implements:
//   - Named save slots holding one encoded game each
//   - A file backend writing <slot>.sav text files
//   - A SQLite backend storing the same text in a saves table
//   - Slot name validation and generation
//
// Core Types:
//
// SavePersistence is the storage contract. FilePersistence and
// SQLitePersistence implement it; Manager wraps either one, serializes
// access and generates a name when the caller leaves the slot empty.
// SaveInfo summarizes a save (era, size, round, turn) without loading it
// into an engine.
//
// Slot Names:
//
// Slots are 1 to 64 characters of a-z, 0-9, '_' and '-'. Generated names
// look like "save-1a2b3c4d".
//
// Usage:
//
//	store, err := session.NewFilePersistence("saves")
//	if err != nil {
//		log.Fatal(err)
//	}
//	saves := session.NewManager(store)
//
//	info, err := saves.Save(ctx, "before-boss", eng.State(), eng.Turns())
//	state, tm, err := saves.Load(ctx, info.Slot)
//	err = eng.LoadFrom(state, tm)
//
// Errors:
//
// A missing slot is ErrSaveNotFound. Corrupted content surfaces as
// savefile.ErrInvalidFormat so callers can tell the two apart.
package session
