package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats is the connection pool snapshot reported by /health.
type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
}

// Health is the body of the health endpoint.
type Health struct {
	Status        string     `json:"status"`
	Error         string     `json:"error,omitempty"`
	SchemaVersion int        `json:"schema_version"`
	Pool          *PoolStats `json:"pool,omitempty"`
}

func poolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
	}
}

// schemaVersion returns the highest applied migration, or 0 when the
// migrations table does not exist yet.
func schemaVersion(ctx context.Context, pool *pgxpool.Pool) int {
	var v int
	err := pool.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v)
	if err != nil {
		return 0
	}
	return v
}

func buildHealth(stats *PoolStats, version int, pingErr error) (int, Health) {
	h := Health{Status: "healthy", SchemaVersion: version, Pool: stats}
	if pingErr != nil {
		h.Status = "unhealthy"
		h.Error = pingErr.Error()
		return http.StatusServiceUnavailable, h
	}
	if version == 0 {
		h.Status = "unmigrated"
	}
	return http.StatusOK, h
}

// HealthHandler pings the database and reports pool statistics together
// with the applied schema version.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		err := pool.Ping(ctx)
		version := 0
		if err == nil {
			version = schemaVersion(ctx, pool)
		}
		code, body := buildHealth(poolStats(pool), version, err)
		return c.JSON(code, body)
	}
}
