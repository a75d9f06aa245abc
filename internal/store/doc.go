// Package store persists recipes for the reference API server.
//
// The [Store] interface has two implementations: [Bolt], an embedded
// key-value store keyed by insertion sequence, and [SQLite], a pure Go
// SQLite database whose schema is managed by the embedded migrations in
// migrations/. Use [Open] to pick one by [Backend] name:
//
//	db, err := store.Open(store.BackendBolt, cfg.DatabasePath())
//	recipes, err := db.List()
//
// Both keep recipes in the order they were created; Replace does not move
// a record.
package store
