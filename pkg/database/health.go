package database

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

// poolExhaustionStatus is reported when every pooled connection is checked
// out: pings still succeed, but a request arriving right now would block on
// a free connection, per the "unavailable" distinction spec's catalogs need
// from plain connectivity.
const poolExhaustionStatus = "degraded"

// HealthStatus reports database connectivity, connection pool pressure, and
// which schema_version the pattern/concept catalogs are running against.
type HealthStatus struct {
	Status          string        `json:"status"`
	ResponseTime    time.Duration `json:"response_time_ms"`
	SchemaVersion   string        `json:"schema_version,omitempty"`
	OpenConnections int           `json:"open_connections"`
	InUse           int           `json:"in_use"`
	Idle            int           `json:"idle"`
	WaitCount       int64         `json:"wait_count"`
	WaitDuration    time.Duration `json:"wait_duration_ms"`
	MaxOpenConns    int           `json:"max_open_conns"`
}

// Health pings db, reads the pool's connection stats, and best-effort reads
// the metadata table's schema_version so /healthz can surface which
// migration the catalogs are actually running against. A schema_version
// lookup failure is logged and otherwise ignored: it never turns a
// reachable database into an unhealthy report.
func Health(ctx context.Context, db *sql.DB) (*HealthStatus, error) {
	start := time.Now()

	if err := db.PingContext(ctx); err != nil {
		return &HealthStatus{
			Status:       "unhealthy",
			ResponseTime: time.Since(start),
		}, err
	}

	stats := db.Stats()

	status := "healthy"
	if stats.MaxOpenConnections > 0 && stats.InUse >= stats.MaxOpenConnections {
		status = poolExhaustionStatus
	}

	return &HealthStatus{
		Status:          status,
		ResponseTime:    time.Since(start),
		SchemaVersion:   schemaVersion(ctx, db),
		OpenConnections: stats.OpenConnections,
		InUse:           stats.InUse,
		Idle:            stats.Idle,
		WaitCount:       stats.WaitCount,
		WaitDuration:    stats.WaitDuration,
		MaxOpenConns:    stats.MaxOpenConnections,
	}, nil
}

func schemaVersion(ctx context.Context, db *sql.DB) string {
	var version string
	err := db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = 'schema_version'`).Scan(&version)
	if err != nil {
		slog.Warn("failed to read schema_version from metadata table", "error", err)
		return ""
	}
	return version
}
