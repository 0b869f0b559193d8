package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request ID in requests and responses.
const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// RequestVerifier checks the signature of a request for an object key.
type RequestVerifier interface {
	Verify(key string, query url.Values) error
}

// RequestIDMiddleware tags each request with an ID, reusing a well-formed
// incoming X-Request-Id and generating a UUID otherwise.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the request ID, or "" outside a request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// AuthMiddleware rejects requests whose signed query does not verify for the
// requested object key. A nil verifier allows every request.
func AuthMiddleware(verifier RequestVerifier) func(http.Handler) http.Handler {
	if verifier == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := verifier.Verify(objectKey(r), r.URL.Query()); err != nil {
				HandleError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// objectKey returns the object key addressed by r, without route prefixes.
func objectKey(r *http.Request) string {
	if key := chi.URLParam(r, "*"); key != "" {
		return key
	}
	return strings.TrimPrefix(r.URL.Path, "/")
}
