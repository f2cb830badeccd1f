// Package api exposes the lookup service over HTTP+JSON.
package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sells-group/accident-risk/internal/lookup"
)

// ServiceName and Version are reported by the index route.
const (
	ServiceName = "Accident Prone Area Prediction API"
	Version     = "1.0.0"
)

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	// RateLimit is requests per second per client IP; 0 disables limiting.
	RateLimit float64
	RateBurst int
}

// Endpoints lists the public routes and what they do.
var Endpoints = map[string]string{
	"POST /api/check_location":     "Check if a barangay is accident-prone",
	"GET /api/safety_tips":         "Get safety tips",
	"POST /api/alternative_routes": "Get alternative routes",
	"GET /api/statistics":          "Get overall statistics",
	"GET /api/barangay_list":       "Get list of all barangays",
	"GET /api/municipalities":      "Get list of municipalities",
	"GET /api/barangays":           "Get barangays by municipality",
	"GET /api/health":              "Health check",
}

type handler struct {
	svc     *lookup.Service
	metrics *Metrics
}

// NewRouter wires the lookup routes, CORS, access logging, panic recovery,
// optional rate limiting and the /metrics endpoint.
func NewRouter(svc *lookup.Service, m *Metrics, opts Options) http.Handler {
	h := &handler{svc: svc, metrics: m}

	if m != nil {
		m.LocationsLoaded.Set(float64(svc.Health().LocationsLoaded))
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(m))
	r.Use(recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		r.Use(newIPRateLimiter(opts.RateLimit, burst).middleware(m))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/", h.index)
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/check_location", h.checkLocation)
		r.Get("/safety_tips", h.safetyTips)
		r.Post("/alternative_routes", h.alternativeRoutes)
		r.Get("/statistics", h.statistics)
		r.Get("/barangay_list", h.barangayList)
		r.Get("/municipalities", h.municipalities)
		r.Get("/barangays", h.barangays)
		r.Get("/health", h.health)
	})

	return r
}

func (h *handler) index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":   ServiceName,
		"version":   Version,
		"endpoints": Endpoints,
	})
}

type checkLocationRequest struct {
	Barangay string `json:"barangay"`
	Station  string `json:"station"`
}

func (h *handler) checkLocation(w http.ResponseWriter, r *http.Request) {
	var req checkLocationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.CheckLocation(req.Barangay, req.Station)
	if err != nil {
		writeLookupError(w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.Lookups.WithLabelValues(string(res.RiskLevel)).Inc()
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) safetyTips(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.SafetyTips(r.URL.Query().Get("risk_level")))
}

type alternativeRoutesRequest struct {
	CurrentBarangay string `json:"current_barangay"`
}

func (h *handler) alternativeRoutes(w http.ResponseWriter, r *http.Request) {
	var req alternativeRoutesRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, h.svc.AlternativeRoutes(req.CurrentBarangay))
}

func (h *handler) statistics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Statistics())
}

func (h *handler) barangayList(w http.ResponseWriter, r *http.Request) {
	proneOnly := strings.EqualFold(r.URL.Query().Get("accident_prone_only"), "true")
	writeJSON(w, http.StatusOK, h.svc.Barangays(proneOnly))
}

func (h *handler) municipalities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Municipalities())
}

func (h *handler) barangays(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.BarangaysForMunicipality(r.URL.Query().Get("municipality"))
	if err != nil {
		writeLookupError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Health())
}
