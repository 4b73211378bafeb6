package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/hbnb"
	"github.com/aretw0/hbnb/api"
	"github.com/aretw0/hbnb/internal/console"
	"github.com/aretw0/hbnb/internal/logging"
	"github.com/aretw0/hbnb/pkg/models"
	"github.com/aretw0/hbnb/pkg/observability"
	"github.com/aretw0/hbnb/pkg/storage"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 5 * time.Second

// Store is the object store served over HTTP.
type Store interface {
	console.Store
	Keys() []string
}

// Server exposes the store as a REST API plus a console endpoint.
type Server struct {
	store    Store
	registry *models.Registry
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics records console commands and serves them on /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger configures the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// APIDocument parses the embedded OpenAPI description.
func APIDocument() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(api.OpenAPI)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

// NewHandler creates a new HTTP handler for the store.
func NewHandler(store Store, registry *models.Registry, opts ...Option) http.Handler {
	s := &Server{
		store:    store,
		registry: registry,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(api.OpenAPI)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.GetStatus)
		r.Get("/stats", s.GetStats)
		r.Post("/console", s.RunConsole)

		r.Route("/{class}", func(r chi.Router) {
			r.Use(s.requireClass)
			r.Get("/", s.ListObjects)
			r.Post("/", s.CreateObject)
			r.Get("/{id}", s.GetObject)
			r.Put("/{id}", s.UpdateObject)
			r.Delete("/{id}", s.DeleteObject)
		})
	})

	return r
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>HBNB API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetStatus handles GET /api/v1/status.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": strings.TrimSpace(hbnb.Version),
	})
}

// GetStats handles GET /api/v1/stats.
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := make(map[string]int)
	for _, name := range s.registry.Names() {
		stats[name] = s.store.Count(name)
	}
	writeJSON(w, http.StatusOK, stats)
}

// ListObjects handles GET /api/v1/{class}.
func (s *Server) ListObjects(w http.ResponseWriter, r *http.Request) {
	objs := s.store.All(chi.URLParam(r, "class"))
	res := make([]map[string]any, len(objs))
	for i, obj := range objs {
		res[i] = obj.ToMap()
	}
	writeJSON(w, http.StatusOK, res)
}

// GetObject handles GET /api/v1/{class}/{id}.
func (s *Server) GetObject(w http.ResponseWriter, r *http.Request) {
	obj, ok := s.store.Get(objectKey(r))
	if !ok {
		writeError(w, http.StatusNotFound, console.MsgNoInstance)
		return
	}
	writeJSON(w, http.StatusOK, obj.ToMap())
}

// CreateObject handles POST /api/v1/{class}. The optional body sets attributes.
func (s *Server) CreateObject(w http.ResponseWriter, r *http.Request) {
	attrs, err := decodeAttributes(r, false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	obj, err := s.registry.New(chi.URLParam(r, "class"))
	if err != nil {
		writeError(w, http.StatusNotFound, console.MsgClassUnknown)
		return
	}
	for name, value := range attrs {
		obj.Set(name, value)
	}
	s.store.New(obj)
	if err := s.store.Save(r.Context()); err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, obj.ToMap())
}

// UpdateObject handles PUT /api/v1/{class}/{id}. Values keep their JSON types.
func (s *Server) UpdateObject(w http.ResponseWriter, r *http.Request) {
	attrs, err := decodeAttributes(r, true)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := objectKey(r)
	if err := s.store.Update(key, attrs, true); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, console.MsgNoInstance)
			return
		}
		s.internalError(w, err)
		return
	}
	if err := s.store.Save(r.Context()); err != nil {
		s.internalError(w, err)
		return
	}

	obj, _ := s.store.Get(key)
	writeJSON(w, http.StatusOK, obj.ToMap())
}

// DeleteObject handles DELETE /api/v1/{class}/{id}.
func (s *Server) DeleteObject(w http.ResponseWriter, r *http.Request) {
	if !s.store.Delete(objectKey(r)) {
		writeError(w, http.StatusNotFound, console.MsgNoInstance)
		return
	}
	if err := s.store.Save(r.Context()); err != nil {
		s.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type consoleRequest struct {
	Line string `json:"line"`
}

type consoleResponse struct {
	Output string `json:"output"`
	Stop   bool   `json:"stop"`
}

// RunConsole handles POST /api/v1/console by executing one line in a fresh console.
func (s *Server) RunConsole(w http.ResponseWriter, r *http.Request) {
	var body consoleRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var out bytes.Buffer
	opts := []console.Option{
		console.WithOutput(&out),
		console.WithInput(strings.NewReader("")),
		console.WithPrompt(""),
		console.WithLogger(s.logger),
	}
	if s.metrics != nil {
		opts = append(opts, console.WithRecorder(s.metrics))
	}

	stop, err := console.New(s.store, s.registry, opts...).Exec(r.Context(), body.Line)
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, consoleResponse{Output: out.String(), Stop: stop})
}

func (s *Server) requireClass(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.registry.Has(chi.URLParam(r, "class")) {
			writeError(w, http.StatusNotFound, console.MsgClassUnknown)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Error("Request failed", "err", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

// -- Helpers --

func objectKey(r *http.Request) string {
	return models.Key(chi.URLParam(r, "class"), chi.URLParam(r, "id"))
}

// decodeAttributes reads a JSON object body. Numbers become int or float64.
func decodeAttributes(r *http.Request, required bool) (map[string]any, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var attrs map[string]any
	if err := dec.Decode(&attrs); err != nil {
		if !required && errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, errors.New("body must be a JSON object")
	}
	if required && len(attrs) == 0 {
		return nil, errors.New(console.MsgAttrMissing)
	}
	return models.Normalize(attrs).(map[string]any), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Printf("encode error: %v\n", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Serve runs handler on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
