// Package httpapi exposes the scheduler core to producers over HTTP
// (SPEC_FULL §4): submit/cancel/status/stats endpoints, metrics, and
// health checks, built the way the teacher wires its own inference API —
// chi for routing, zerolog for structured logs, prometheus for metrics.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"schedulerd/internal/scheduler"
	"schedulerd/pkg/types"
)

// Service is the subset of *scheduler.Scheduler the HTTP layer depends
// on, narrowed so handlers can be tested against a fake.
type Service interface {
	Submit(class types.Class, priority types.Priority, payload any, completion scheduler.CompletionFunc) (types.TaskID, error)
	Cancel(id types.TaskID) error
	Status(id types.TaskID) (types.TaskInfo, error)
	StatsSnapshot() types.StatsSnapshot
	Running() bool
}

type submitRequest struct {
	Class    types.Class    `json:"class"`
	Priority types.Priority `json:"priority"`
	Payload  any            `json:"payload"`
}

type submitResponse struct {
	TaskID types.TaskID `json:"task_id"`
}

// NewMux builds the producer-facing HTTP handler for svc.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}

	r.Post("/v1/tasks", func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		lvl := requestLogLevel(r)
		start := time.Now()
		id, err := svc.Submit(req.Class, req.Priority, req.Payload, nil)
		if err != nil {
			logAtLevel(lvl, "task submit failed", map[string]any{
				"class": req.Class, "priority": req.Priority, "error": err.Error(),
			})
			writeJSONError(w, statusForSchedulerError(err), err.Error())
			return
		}
		logAtLevel(lvl, "task submitted", map[string]any{
			"task_id": id, "class": req.Class, "priority": req.Priority, "dur": time.Since(start).String(),
		})

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(submitResponse{TaskID: id})
	})

	r.Get("/v1/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := parseTaskID(chi.URLParam(r, "id"))
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		info, err := svc.Status(id)
		if err != nil {
			writeJSONError(w, statusForSchedulerError(err), err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(info)
	})

	r.Delete("/v1/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := parseTaskID(chi.URLParam(r, "id"))
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := svc.Cancel(id); err != nil {
			writeJSONError(w, statusForSchedulerError(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/v1/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(svc.StatsSnapshot())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Running() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
	})

	r.Mount("/metrics", metricsHandler())
	MountSwagger(r)

	return r
}

func parseTaskID(s string) (types.TaskID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return types.TaskID(n), nil
}
