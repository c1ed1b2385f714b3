// Package health reports whether the service and its database are usable.
package health

import (
	"context"
	"database/sql"
	"time"

	"docarchive/internal/shared/storage/db"
)

// Status is the health payload.
type Status struct {
	OK       bool   `json:"ok"`
	Database string `json:"database"`
}

// Service encapsulates health-related checks.
type Service struct {
	DB      *sql.DB
	Timeout time.Duration
}

// NewService constructs a health service. database may be nil when documents
// are kept in memory.
func NewService(database *sql.DB) *Service {
	return &Service{DB: database, Timeout: 2 * time.Second}
}

// Status pings the database when one is configured.
func (s *Service) Status(ctx context.Context) Status {
	if s.DB == nil {
		return Status{OK: true, Database: "memory"}
	}
	if err := db.Ping(ctx, s.DB, s.Timeout); err != nil {
		return Status{OK: false, Database: "unreachable"}
	}
	return Status{OK: true, Database: "up"}
}
