package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const healthCheckTimeout = 3 * time.Second

type healthCheck struct {
	name string
	ping func(context.Context) error
}

// HealthHandler serves /health, pinging postgres and, when configured, redis.
type HealthHandler struct {
	checks []healthCheck
}

func NewHealthHandler(pool *pgxpool.Pool, redisClient *redis.Client) *HealthHandler {
	h := &HealthHandler{
		checks: []healthCheck{
			{name: "database", ping: pool.Ping},
		},
	}
	if redisClient != nil {
		h.checks = append(h.checks, healthCheck{
			name: "redis",
			ping: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}
	return h
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	results := make(map[string]string, len(h.checks))
	healthy := true
	for _, c := range h.checks {
		start := time.Now()
		if err := c.ping(ctx); err != nil {
			results[c.name] = "down: " + err.Error()
			healthy = false
			continue
		}
		results[c.name] = "ok in " + time.Since(start).Round(time.Millisecond).String()
	}

	status := http.StatusOK
	body := map[string]interface{}{"status": "ok", "checks": results}
	if !healthy {
		status = http.StatusServiceUnavailable
		body["status"] = "unhealthy"
	}
	writeJSON(w, status, body)
}
