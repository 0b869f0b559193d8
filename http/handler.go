package http

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/sagarc03/bucketfs"
)

// Service is the storage the handler serves. *bucketfs.Filesystem implements it.
type Service interface {
	Write(ctx context.Context, filename string, data io.Reader, opts bucketfs.WriteOptions) (*bucketfs.Result, error)
	Read(ctx context.Context, filename string, opts bucketfs.ReadOptions) (*bucketfs.Result, error)
	Delete(ctx context.Context, filename string, opts bucketfs.DeleteOptions) (*bucketfs.Result, error)
	URL(path string, opts bucketfs.URLOptions) (string, error)
	SignURL(path string, opts bucketfs.SignOptions) (string, error)
}

var _ Service = (*bucketfs.Filesystem)(nil)

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	ReadVerifier  RequestVerifier
	WriteVerifier RequestVerifier
	CORS          CORSConfig
	// MaxUploadSize limits PUT bodies in bytes. Zero means no limit.
	MaxUploadSize int64
	// Middlewares wrap every route, after request IDs are assigned.
	Middlewares []func(http.Handler) http.Handler
}

// Handler provides HTTP handlers for object storage operations.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	return &Handler{
		config:  *config,
		service: service,
	}
}

// Router returns an http.Handler with all routes configured.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(h.config.Middlewares...)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.NotFound(routeNotFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(h.config.ReadVerifier))
		r.Get("/_url/*", h.handleURL)
		r.Get("/*", h.handleGet)
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(h.config.WriteVerifier))
		r.Get("/_sign/*", h.handleSign)
		r.Put("/*", h.handlePut)
		r.Delete("/*", h.handleDelete)
	})

	return r
}

// validKey returns the object key of r, writing a 400 when it is unusable.
func validKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := objectKey(r)
	if !bucketfs.IsValidPath(key) {
		WriteError(w, http.StatusBadRequest, "invalid_path", "Invalid path")
		return "", false
	}
	return key, true
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	key, ok := validKey(w, r)
	if !ok {
		return
	}

	opts := bucketfs.ReadOptions{
		Range:       r.Header.Get("Range"),
		IfMatch:     r.Header.Get("If-Match"),
		IfNoneMatch: r.Header.Get("If-None-Match"),
		VersionID:   r.URL.Query().Get("versionId"),
	}

	res, err := h.service.Read(r.Context(), key, opts)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	if res.Body != nil {
		defer func() { _ = res.Body.Close() }()
	}

	header := w.Header()
	if res.ETag != "" {
		header.Set("ETag", res.ETag)
	}
	if res.ContentType != "" {
		header.Set("Content-Type", res.ContentType)
	}
	if !res.LastModified.IsZero() {
		header.Set("Last-Modified", res.LastModified.UTC().Format(http.TimeFormat))
	}
	if res.ContentLength > 0 {
		header.Set("Content-Length", strconv.FormatInt(res.ContentLength, 10))
	}

	status := http.StatusOK
	if res.ContentRange != "" {
		header.Set("Content-Range", res.ContentRange)
		status = http.StatusPartialContent
	}
	w.WriteHeader(status)

	if res.Body != nil {
		_, _ = io.Copy(w, res.Body)
	}
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	key, ok := validKey(w, r)
	if !ok {
		return
	}

	opts := bucketfs.WriteOptions{
		PutOptions: bucketfs.PutOptions{
			ACL:                r.Header.Get("x-amz-acl"),
			ContentType:        r.Header.Get("Content-Type"),
			CacheControl:       r.Header.Get("Cache-Control"),
			ContentDisposition: r.Header.Get("Content-Disposition"),
			StorageClass:       r.Header.Get("x-amz-storage-class"),
			Metadata:           metadataFromHeader(r.Header),
		},
	}
	if r.ContentLength > 0 {
		opts.ContentLength = r.ContentLength
	}
	if r.Header.Get("If-None-Match") == "*" {
		opts.Overwrite = bucketfs.Ptr(false)
	}
	if v := r.URL.Query().Get("auto_create_bucket"); v != "" {
		autoCreate, err := strconv.ParseBool(v)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid_input", "auto_create_bucket must be a boolean")
			return
		}
		opts.AutoCreateBucket = &autoCreate
	}

	var body io.Reader = r.Body
	if h.config.MaxUploadSize > 0 {
		if r.ContentLength > h.config.MaxUploadSize {
			WriteError(w, http.StatusRequestEntityTooLarge, "too_large", "Upload exceeds maximum size")
			return
		}
		body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize)
	}

	res, err := h.service.Write(r.Context(), key, body, opts)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, ObjectResponse{
		Key:       key,
		ETag:      res.ETag,
		VersionID: res.VersionID,
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	key, ok := validKey(w, r)
	if !ok {
		return
	}

	opts := bucketfs.DeleteOptions{VersionID: r.URL.Query().Get("versionId")}
	if _, err := h.service.Delete(r.Context(), key, opts); err != nil {
		HandleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleURL(w http.ResponseWriter, r *http.Request) {
	key, ok := validKey(w, r)
	if !ok {
		return
	}

	opts, err := urlOptionsFromQuery(r)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	u, err := h.service.URL(key, opts)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, URLResponse{URL: u})
}

func (h *Handler) handleSign(w http.ResponseWriter, r *http.Request) {
	key, ok := validKey(w, r)
	if !ok {
		return
	}

	urlOpts, err := urlOptionsFromQuery(r)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	opts := bucketfs.SignOptions{URLOptions: urlOpts}

	query := r.URL.Query()
	if v := query.Get("timeout"); v != "" {
		opts.Timeout = bucketfs.Ptr(bucketfs.ParseTimeout(v))
	}
	if v := query.Get("signature_only"); v != "" {
		if opts.SignatureOnly, err = strconv.ParseBool(v); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid_input", "signature_only must be a boolean")
			return
		}
	}

	u, err := h.service.SignURL(key, opts)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, URLResponse{URL: u})
}

// urlOptionsFromQuery reads protocol, cdn and cdn_domain. A present but
// empty protocol selects a protocol-relative URL.
func urlOptionsFromQuery(r *http.Request) (bucketfs.URLOptions, error) {
	var opts bucketfs.URLOptions
	query := r.URL.Query()

	if query.Has("protocol") {
		opts.Protocol = bucketfs.Ptr(query.Get("protocol"))
	}
	if query.Has("cdn_domain") {
		opts.CDNDomain = bucketfs.Ptr(query.Get("cdn_domain"))
	}
	if v := query.Get("cdn"); v != "" {
		useCDN, err := strconv.ParseBool(v)
		if err != nil {
			return opts, bucketfs.ErrInvalidInput
		}
		opts.UseCDN = &useCDN
	}
	return opts, nil
}

const metaHeaderPrefix = "x-amz-meta-"

func metadataFromHeader(header http.Header) map[string]string {
	var meta map[string]string
	for name, values := range header {
		lower := strings.ToLower(name)
		if !strings.HasPrefix(lower, metaHeaderPrefix) || len(values) == 0 {
			continue
		}
		if meta == nil {
			meta = make(map[string]string)
		}
		meta[strings.TrimPrefix(lower, metaHeaderPrefix)] = values[0]
	}
	return meta
}
