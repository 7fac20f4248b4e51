package db

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ForUpdate adds a SELECT ... FOR UPDATE clause on Postgres. SQLite (the test
// harness) serializes writers at the file level and rejects the clause, so the
// query passes through unchanged there.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// ForUpdateSkipLocked locks the selected rows and skips rows other
// transactions already hold, so concurrent publisher replicas drain the
// outbox without blocking on each other. Same SQLite passthrough as
// ForUpdate.
func ForUpdateSkipLocked(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
	}
	return tx
}
