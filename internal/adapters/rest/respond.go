package rest

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ewilliams-labs/soundclusters/internal/core/domain"
	"github.com/ewilliams-labs/soundclusters/internal/core/ports"
)

const (
	errCodeInvalidInput       = "INVALID_INPUT"
	errCodeNotFound           = "NOT_FOUND"
	errCodeNoConfidentMatch   = "NO_CONFIDENT_MATCH"
	errCodeMetricUndefined    = "METRIC_UNDEFINED"
	errCodeMoodUnresolved     = "MOOD_UNRESOLVED"
	errCodeNotConfigured      = "NOT_CONFIGURED"
	errCodeUpstream           = "UPSTREAM_UNAVAILABLE"
	errCodeInternal           = "INTERNAL"
	errCodeUnsupportedContent = "UNSUPPORTED_MEDIA_TYPE"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("rest: failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeErrorWithCode(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// statusFor maps a service error onto an HTTP status and error code.
func statusFor(err error) (int, string) {
	var matchErr ports.NoConfidentMatchError
	switch {
	case errors.As(err, &matchErr):
		return http.StatusUnprocessableEntity, errCodeNoConfidentMatch
	case errors.Is(err, domain.ErrInsufficientClusters), errors.Is(err, domain.ErrInsufficientRows):
		return http.StatusUnprocessableEntity, errCodeMetricUndefined
	case errors.Is(err, domain.ErrUnknownView),
		errors.Is(err, domain.ErrUnknownFeature),
		errors.Is(err, domain.ErrUnknownMood),
		errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errCodeNotFound
	case errors.Is(err, domain.ErrShapeMismatch),
		errors.Is(err, domain.ErrOutOfRange),
		errors.Is(err, ports.ErrInvalidLookup):
		return http.StatusBadRequest, errCodeInvalidInput
	case errors.Is(err, domain.ErrNotConfigured):
		return http.StatusNotImplemented, errCodeNotConfigured
	case errors.Is(err, ports.ErrFeaturesUnavailable):
		return http.StatusBadGateway, errCodeUpstream
	default:
		return http.StatusInternalServerError, errCodeInternal
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"path":       r.URL.Path,
			"request_id": requestIDFrom(r.Context()),
		}).WithError(err).Error("rest: request failed")
	}
	writeErrorWithCode(w, status, err.Error(), code)
}

func isJSONContentType(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
