package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ewilliams-labs/soundclusters/internal/core/domain"
	"github.com/ewilliams-labs/soundclusters/internal/core/ports"
)

type viewItem struct {
	Slug  string `json:"slug"`
	Label string `json:"label"`
}

// ListViews handles GET /api/views
func (h *Handler) ListViews(w http.ResponseWriter, r *http.Request) {
	out := make([]viewItem, 0, len(domain.Views))
	for _, v := range domain.Views {
		out = append(out, viewItem{Slug: v.Slug(), Label: v.Label()})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetOverview handles GET /api/overview
func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.svc.Overview(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// GetEvaluation handles GET /api/evaluation
func (h *Handler) GetEvaluation(w http.ResponseWriter, r *http.Request) {
	ev, err := h.svc.Evaluate(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// GetProjection handles GET /api/projection
func (h *Handler) GetProjection(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Project(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type featureItem struct {
	Name  domain.FeatureName `json:"name"`
	Label string             `json:"label"`
	domain.Range
}

// ListFeatures handles GET /api/features. The order is the model's column order.
func (h *Handler) ListFeatures(w http.ResponseWriter, r *http.Request) {
	out := make([]featureItem, 0, domain.FeatureCount)
	for _, f := range domain.FeatureNames {
		out = append(out, featureItem{Name: f, Label: f.Label(), Range: domain.FeatureBounds[f]})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetDistribution handles GET /api/features/{feature}/distribution
func (h *Handler) GetDistribution(w http.ResponseWriter, r *http.Request) {
	dist, err := h.svc.Distribution(r.Context(), r.PathValue("feature"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dist)
}

type moodItem struct {
	Mood    domain.Mood `json:"mood"`
	Label   string      `json:"label"`
	Cluster int         `json:"cluster"`
}

// ListMoods handles GET /api/moods
func (h *Handler) ListMoods(w http.ResponseWriter, r *http.Request) {
	out := make([]moodItem, 0, len(domain.Moods))
	for _, m := range domain.Moods {
		c, _ := m.Cluster()
		out = append(out, moodItem{Mood: m, Label: m.Label(), Cluster: c})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetRecommendation handles GET /api/moods/{mood}/recommendation
func (h *Handler) GetRecommendation(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Recommend(r.Context(), r.PathValue("mood"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type interpretMoodRequest struct {
	Message string `json:"message"`
}

// InterpretMood handles POST /api/moods/interpret
func (h *Handler) InterpretMood(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeErrorWithCode(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", errCodeUnsupportedContent)
		return
	}

	var req interpretMoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	rec, err := h.svc.InterpretMood(r.Context(), req.Message)
	if err != nil {
		// The path names no mood here, so an unusable answer is not a 404.
		if errors.Is(err, domain.ErrUnknownMood) {
			writeErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), errCodeMoodUnresolved)
			return
		}
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// GetTrack handles GET /api/tracks/{id}
func (h *Handler) GetTrack(w http.ResponseWriter, r *http.Request) {
	track, err := h.svc.Track(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, track)
}

type predictionRequest struct {
	Features json.RawMessage `json:"features"`
}

type predictionResponse struct {
	Cluster     int          `json:"cluster"`
	Description string       `json:"description,omitempty"`
	Track       domain.Track `json:"track"`
}

func newPredictionResponse(p domain.Prediction) predictionResponse {
	return predictionResponse{
		Cluster:     p.Cluster,
		Description: domain.DescribeCluster(p.Cluster),
		Track:       p.Track,
	}
}

// CreatePrediction handles POST /api/predictions. Features are either an
// ordered array of ten numbers or an object keyed by feature name.
func (h *Handler) CreatePrediction(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeErrorWithCode(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", errCodeUnsupportedContent)
		return
	}

	var req predictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	features, err := decodeFeatures(req.Features)
	if err != nil {
		writeErrorWithCode(w, http.StatusBadRequest, err.Error(), errCodeInvalidInput)
		return
	}

	prediction, err := h.svc.PredictFeatures(r.Context(), features)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPredictionResponse(prediction))
}

var errNotNumbers = errors.New("features must be an array or an object of numbers")

func decodeFeatures(raw json.RawMessage) (domain.AudioFeatures, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return domain.AudioFeatures{}, errors.New("features are required")
	}

	if raw[0] == '[' {
		var vector []float64
		if err := json.Unmarshal(raw, &vector); err != nil {
			return domain.AudioFeatures{}, errors.New("features must be numbers")
		}
		return domain.FeaturesFromVector(vector)
	}

	// Walk the object token by token; a map would silently keep the last of
	// two keys naming the same feature.
	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return domain.AudioFeatures{}, errNotNumbers
	}
	vector := make([]float64, domain.FeatureCount)
	var filled [domain.FeatureCount]bool
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return domain.AudioFeatures{}, errNotNumbers
		}
		key, _ := tok.(string)
		name, err := domain.ParseFeature(key)
		if err != nil {
			return domain.AudioFeatures{}, err
		}
		i := name.Index()
		if filled[i] {
			return domain.AudioFeatures{}, fmt.Errorf("%w: duplicate %s (as %q)", domain.ErrShapeMismatch, name, key)
		}
		var v *float64
		if err := dec.Decode(&v); err != nil || v == nil {
			return domain.AudioFeatures{}, errNotNumbers
		}
		vector[i] = *v
		filled[i] = true
	}
	for i, ok := range filled {
		if !ok {
			return domain.AudioFeatures{}, fmt.Errorf("%w: missing %s", domain.ErrShapeMismatch, domain.FeatureNames[i])
		}
	}
	return domain.FeaturesFromVector(vector)
}

// CreateSpotifyPrediction handles POST /api/predictions/spotify
func (h *Handler) CreateSpotifyPrediction(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeErrorWithCode(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", errCodeUnsupportedContent)
		return
	}

	var lookup ports.TrackLookup
	if err := json.NewDecoder(r.Body).Decode(&lookup); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	prediction, err := h.svc.PredictSpotifyTrack(r.Context(), lookup)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPredictionResponse(prediction))
}

// GetInsights handles GET /api/insights
func (h *Handler) GetInsights(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.svc.Insights(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}
