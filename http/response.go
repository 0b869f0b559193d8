package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/bucketfs"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ObjectResponse describes a written object.
type ObjectResponse struct {
	Key       string `json:"key"`
	ETag      string `json:"etag,omitempty"`
	VersionID string `json:"version_id,omitempty"`
}

// URLResponse carries a generated URL or query string.
type URLResponse struct {
	URL string `json:"url"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes the response matching err and logs it with the request ID.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "request error",
		"request_id", RequestIDFromContext(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)

	switch {
	case errors.Is(err, bucketfs.ErrNotModified):
		w.WriteHeader(http.StatusNotModified)
	case errors.Is(err, bucketfs.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "Object not found")
	case errors.Is(err, bucketfs.ErrBucketNotFound):
		WriteError(w, http.StatusNotFound, "bucket_not_found", "Bucket not found")
	case errors.Is(err, bucketfs.ErrObjectAlreadyExists):
		WriteError(w, http.StatusConflict, "already_exists", "Object already exists")
	case errors.Is(err, bucketfs.ErrPreconditionFailed):
		WriteError(w, http.StatusPreconditionFailed, "precondition_failed", "Precondition failed")
	case errors.Is(err, bucketfs.ErrRangeNotSatisfiable):
		WriteError(w, http.StatusRequestedRangeNotSatisfiable, "invalid_range", "Range not satisfiable")
	case errors.Is(err, bucketfs.ErrMissingCDNDomain):
		WriteError(w, http.StatusBadRequest, "missing_cdn_domain", "CDN requested without a domain")
	case errors.Is(err, bucketfs.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, bucketfs.ErrUnauthorized):
		WriteError(w, http.StatusForbidden, "unauthorized", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
