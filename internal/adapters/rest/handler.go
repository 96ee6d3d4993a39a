// Package rest exposes the dashboard over HTTP: server-rendered views with
// charts, and a JSON API carrying the same data.
package rest

import (
	"net/http"

	"github.com/ewilliams-labs/soundclusters/internal/core/services"
)

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc     *services.Dashboard
	router  *http.ServeMux
	handler http.Handler
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(svc *services.Dashboard) *Handler {
	h := &Handler{
		svc:    svc,
		router: http.NewServeMux(),
	}

	h.routes()
	h.handler = withRequestLogging(h.router)

	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	h.router.HandleFunc("GET /health", h.HealthCheck)

	// HTML views
	h.router.HandleFunc("GET /{$}", h.Index)
	h.router.HandleFunc("GET /views/{view}", h.View)
	h.router.HandleFunc("POST /views/predict", h.PredictForm)

	// JSON API
	h.router.HandleFunc("GET /api/views", h.ListViews)
	h.router.HandleFunc("GET /api/overview", h.GetOverview)
	h.router.HandleFunc("GET /api/evaluation", h.GetEvaluation)
	h.router.HandleFunc("GET /api/projection", h.GetProjection)
	h.router.HandleFunc("GET /api/features", h.ListFeatures)
	h.router.HandleFunc("GET /api/features/{feature}/distribution", h.GetDistribution)
	h.router.HandleFunc("GET /api/moods", h.ListMoods)
	h.router.HandleFunc("GET /api/moods/{mood}/recommendation", h.GetRecommendation)
	h.router.HandleFunc("POST /api/moods/interpret", h.InterpretMood)
	h.router.HandleFunc("GET /api/tracks/{id}", h.GetTrack)
	h.router.HandleFunc("POST /api/predictions", h.CreatePrediction)
	h.router.HandleFunc("POST /api/predictions/spotify", h.CreateSpotifyPrediction)
	h.router.HandleFunc("GET /api/insights", h.GetInsights)
}

type healthResponse struct {
	Status      string `json:"status"`
	Tracks      int    `json:"tracks"`
	Fingerprint string `json:"fingerprint"`
	Cached      int    `json:"cached"`
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	art := h.svc.Artifacts()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Tracks:      art.Dataset.Len(),
		Fingerprint: art.Fingerprint,
		Cached:      h.svc.Cached(),
	})
}
