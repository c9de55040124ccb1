// Package database owns the SQLite file behind the traffic history
// store: one row per query handled by a simulated instrument.
//
// The schema ships embedded in the binary and is applied by the
// migration runner on startup, so a fresh deployment needs nothing
// beyond a writable data directory. WAL mode keeps history listings
// responsive while the recorder is writing, and a single pooled
// connection serialises access the way SQLite's one-writer model
// wants.
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
