package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/tariqmansouri/vendora-backend/api/responses"
	"github.com/tariqmansouri/vendora-backend/pkg/config"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Healthz reports process liveness plus the state of the two backing stores.
// A failing dependency flips the overall status to degraded; the response is
// still a 200.
func Healthz(cfg *config.Config, database, cache pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := "ok"
		checks := map[string]string{}

		checks["database"] = pingStatus(ctx, database)
		checks["redis"] = pingStatus(ctx, cache)
		for _, state := range checks {
			if state == "unavailable" {
				status = "degraded"
			}
		}

		w.Header().Set("X-Vendora-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]any{
			"status": status,
			"checks": checks,
		})
	}
}

func pingStatus(ctx context.Context, p pinger) string {
	if p == nil {
		return "skipped"
	}
	if err := p.Ping(ctx); err != nil {
		return "unavailable"
	}
	return "ok"
}
