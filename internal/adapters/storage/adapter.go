package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const defaultProbeTimeout = 2 * time.Second

// QueryRower is satisfied by *sql.DB and *bun.DB.
type QueryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Probe reports whether the database answers queries. The health endpoint
// uses it.
type Probe struct {
	db      QueryRower
	timeout time.Duration
}

// NewProbe wraps db. A nil db yields a probe that always fails.
func NewProbe(db QueryRower) *Probe {
	return &Probe{db: db, timeout: defaultProbeTimeout}
}

// Check runs a trivial query bounded by the probe timeout.
func (p *Probe) Check(ctx context.Context) error {
	if p == nil || p.db == nil {
		return errors.New("storage: database not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var one int
	if err := p.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("storage: ping failed: %w", err)
	}
	if one != 1 {
		return fmt.Errorf("storage: unexpected ping result %d", one)
	}
	return nil
}
