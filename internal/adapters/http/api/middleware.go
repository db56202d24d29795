package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/okian/fightmatch/pkg/metrics"
)

const defaultRequestTimeout = 30 * time.Second

// NewRouter returns a chi router carrying the common middleware stack.
func NewRouter(opts ...RouterOption) *chi.Mux {
	cfg := routerConfig{timeout: defaultRequestTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.timeout))
	if len(cfg.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
			ExposedHeaders: []string{middleware.RequestIDHeader},
			MaxAge:         300,
		}))
	}
	r.Use(Metrics)
	return r
}

// Metrics records one request per route pattern. Unmatched paths are
// grouped under "unmatched" to keep label cardinality bounded.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		endpoint := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				endpoint = p
			}
		}
		metrics.RecordHTTPRequest(endpoint, r.Method, strconv.Itoa(status), float64(time.Since(start).Milliseconds()))
		if status >= http.StatusInternalServerError {
			metrics.RecordErrorByComponent("http", strconv.Itoa(status))
		}
	})
}
