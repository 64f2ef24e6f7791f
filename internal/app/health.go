package app

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

// HealthResponse reports the state of each configured backend.
type HealthResponse struct {
	Message  string            `json:"message"`
	Services map[string]string `json:"services,omitempty"`
}

func (a *App) health(r *router.Request) (any, error) {
	ctx := r.Context()
	services := map[string]string{}
	healthy := true

	check := func(name string, fn func(context.Context) error) {
		if err := fn(ctx); err != nil {
			services[name] = "down"
			healthy = false
			return
		}
		services[name] = "up"
	}

	if a.dbConn != nil {
		check("database", a.dbConn.Ping)
	}
	if a.cacheConn != nil {
		check("redis", func(ctx context.Context) error { return a.cacheConn.Ping(ctx).Err() })
	}

	if !healthy {
		return nil, goerror.NewServer(errUnhealthy)
	}

	return HealthResponse{Message: "OK", Services: services}, nil
}
