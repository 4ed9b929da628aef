// Package postgres implements the repository interfaces against PostgreSQL
// using database/sql and lib/pq.
package postgres

import "database/sql"

// Repo aggregates the per-table repositories behind a single value that
// satisfies registry.Repository and tracking.EventStore.
type Repo struct {
	*SentMessageRepo
	*OpenEventRepo
	*UserRepo
}

// New creates the aggregate repository over one connection pool.
func New(db *sql.DB) *Repo {
	return &Repo{
		SentMessageRepo: NewSentMessageRepo(db),
		OpenEventRepo:   NewOpenEventRepo(db),
		UserRepo:        NewUserRepo(db),
	}
}
