package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bher20/eratecharge/internal/api/swagger"
	"github.com/bher20/eratecharge/internal/auth"
	"github.com/bher20/eratecharge/internal/billing"
	"github.com/bher20/eratecharge/internal/logging"
	"github.com/bher20/eratecharge/internal/metrics"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Billing *billing.Service
	Auth    *auth.Service
}

// NewMux constructs the HTTP mux, wiring in the billing service, auth,
// metrics, docs and health endpoints.
func NewMux(d Deps) *http.ServeMux {
	h := &chargeHandler{svc: d.Billing, log: logging.Named("api")}

	protect := func(act string, next http.HandlerFunc) http.Handler {
		if d.Auth == nil {
			return next
		}
		return d.Auth.Middleware(d.Auth.RequirePermission(auth.ObjCharges, act, next))
	}

	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("live"))
	})
	mux.HandleFunc("/readyz", h.ready)

	mux.Handle("/api/v1/charges", instrument("/api/v1/charges", methodSwitch(map[string]http.Handler{
		http.MethodPost: protect(auth.ActCreate, h.create),
		http.MethodGet:  protect(auth.ActRead, h.list),
	})))
	mux.Handle("/api/v1/charges/", instrument("/api/v1/charges/{id}", methodSwitch(map[string]http.Handler{
		http.MethodGet: protect(auth.ActRead, h.get),
	})))

	mux.Handle("/swagger/", http.StripPrefix("/swagger", swagger.Handler()))

	return mux
}

// methodSwitch dispatches on the request method and answers 405 otherwise.
func methodSwitch(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next, ok := handlers[r.Method]
		if !ok {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

// instrument records request count, duration and error responses under a
// fixed path label.
func instrument(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

		metrics.RequestsTotal.WithLabelValues(path, r.Method).Inc()
		defer func() {
			metrics.RequestDurationSeconds.WithLabelValues(path).Observe(time.Since(start).Seconds())
			if rec.code >= 400 {
				metrics.RequestErrorsTotal.WithLabelValues(path, strconv.Itoa(rec.code)).Inc()
			}
		}()

		next.ServeHTTP(rec, r)
	})
}

// errorResponse is the JSON body of every API error.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, log *zap.Logger, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("encode response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, log *zap.Logger, code int, msg string) {
	writeJSON(w, log, code, errorResponse{Error: msg})
}
