// Package http exposes the engine over a JSON REST surface: schema
// persistence, flow rendering for a set of answers and registration
// intake. Requests are validated against the embedded OpenAPI document
// before they reach a handler.
package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/acopio/formflow"
	"github.com/acopio/formflow/internal/logging"
	"github.com/acopio/formflow/pkg/domain"
)

//go:embed openapi.yaml
var openapiSpec []byte

// Engine is the surface of the formflow engine the server depends on.
type Engine interface {
	PersistSchema(ctx context.Context, formID string, doc *domain.Document) (string, error)
	LoadSchema(ctx context.Context, formID string) (*domain.Document, error)
	Collect(ctx context.Context, formID string) (*formflow.Session, error)
}

// Server routes REST traffic to an Engine.
type Server struct {
	engine  Engine
	logger  *slog.Logger
	metrics *metrics
	spec    routers.Router
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler builds the HTTP handler for the engine. Metrics are
// registered on a private registry so multiple handlers can coexist in
// one process.
func NewHandler(engine Engine, opts ...Option) (http.Handler, error) {
	server := &Server{engine: engine}
	for _, opt := range opts {
		opt(server)
	}
	if server.logger == nil {
		server.logger = logging.NewNop()
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		return nil, fmt.Errorf("loading api spec: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid api spec: %w", err)
	}
	server.spec, err = gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("building api router: %w", err)
	}

	registry := prometheus.NewRegistry()
	server.metrics = newMetrics(registry)

	r := chi.NewRouter()
	r.Use(server.instrument)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(server.validate)
		r.Post("/forms/{formID}/schema", server.persistSchema)
		r.Get("/forms/{formID}/schema", server.getSchema)
		r.Get("/forms/{formID}/flow", server.renderFlow)
		r.Post("/registrations", server.submitRegistration)
	})

	return enableCORS(r), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// validate checks the request against the OpenAPI contract. Routes the
// contract does not know fall through to the mux untouched.
func (s *Server) validate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, pathParams, err := s.spec.FindRoute(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			s.logger.Warn("request rejected by contract", "path", r.URL.Path, "err", err)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) persistSchema(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")

	var doc domain.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := doc.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.engine.PersistSchema(r.Context(), formID, &doc)
	if err != nil {
		s.logger.Error("schema persist failed", "form", formID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to persist schema")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) getSchema(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")

	doc, err := s.engine.LoadSchema(r.Context(), formID)
	if err != nil {
		if errors.Is(err, domain.ErrSchemaNotFound) {
			writeError(w, http.StatusNotFound, "no schema for form "+formID)
			return
		}
		s.logger.Error("schema load failed", "form", formID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load schema")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// renderFlow derives the visible path for the answers given as query
// parameters. The reserved "failed" parameter marks instructions whose
// execution failed so their unhappy branches activate.
func (s *Server) renderFlow(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")

	session, err := s.engine.Collect(r.Context(), formID)
	if err != nil {
		if errors.Is(err, domain.ErrSchemaNotFound) {
			writeError(w, http.StatusNotFound, "no schema for form "+formID)
			return
		}
		s.logger.Error("session start failed", "form", formID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	for name, values := range r.URL.Query() {
		if name == "failed" {
			for _, id := range values {
				session.MarkFailed(id)
			}
			continue
		}
		if len(values) > 0 {
			session.SetValue(r.Context(), name, values[0])
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"visible": session.VisibleSet(),
		"answers": session.Answers(),
	})
}

type registrationRequest struct {
	FormID  string            `json:"form_id"`
	Answers map[string]string `json:"answers"`
	Failed  []string          `json:"failed,omitempty"`
}

func (s *Server) submitRegistration(w http.ResponseWriter, r *http.Request) {
	var body registrationRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.engine.Collect(r.Context(), body.FormID)
	if err != nil {
		if errors.Is(err, domain.ErrSchemaNotFound) {
			writeError(w, http.StatusNotFound, "no schema for form "+body.FormID)
			return
		}
		s.logger.Error("session start failed", "form", body.FormID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	for name, value := range body.Answers {
		session.SetValue(r.Context(), name, value)
	}
	for _, id := range body.Failed {
		session.MarkFailed(id)
	}

	id, err := session.Submit(r.Context())
	if err != nil {
		var verr *formflow.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": verr.Fields})
			return
		}
		s.logger.Error("registration submit failed", "form", body.FormID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to submit registration")
		return
	}

	s.metrics.registrations.Inc()
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
