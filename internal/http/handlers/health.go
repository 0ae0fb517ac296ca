package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// HealthCheck probes a dependency such as the database or session store.
type HealthCheck func(ctx context.Context) error

const healthTimeout = 2 * time.Second

// Health reports "ok" when every registered check passes and 503 with the
// failing dependencies otherwise.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	names := make([]string, 0, len(a.Checks))
	for name := range a.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	failing := map[string]string{}
	for _, name := range names {
		if err := a.Checks[name](ctx); err != nil {
			a.log(r).Warn().Err(err).Str("check", name).Msg("health check failed")
			failing[name] = err.Error()
		}
	}
	if len(failing) > 0 {
		a.json(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "failing": failing})
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
