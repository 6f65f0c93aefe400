package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/twentyfive"
	"github.com/aretw0/twentyfive/api"
	"github.com/aretw0/twentyfive/internal/logging"
	"github.com/aretw0/twentyfive/pkg/domain"
	"github.com/aretw0/twentyfive/pkg/servicer"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// Service is the list service exposed over HTTP.
type Service interface {
	CreateList(ctx context.Context, instanceID string, kind domain.Kind) error
	ListItems(ctx context.Context, instanceID string, kind domain.Kind) (domain.ListResponse, error)
	AddItem(ctx context.Context, instanceID string, kind domain.Kind, item string) error
	MoveItem(ctx context.Context, instanceID string, kind domain.Kind, item string, targetIndex int) error
	DeleteItem(ctx context.Context, instanceID string, kind domain.Kind, item string) error
	Instances(ctx context.Context) ([]string, error)
}

var _ Service = (*servicer.Servicer)(nil)

// Server serves the list API.
type Server struct {
	Service Service
	Streams *StreamManager
	Logger  *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithStreams shares a StreamManager, typically one whose Hooks are registered
// on the servicer.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates a new HTTP handler for the service.
func NewHandler(svc Service, opts ...Option) (http.Handler, error) {
	server := &Server{
		Service: svc,
		Streams: NewStreamManager(),
		Logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}

	validate, err := newValidator(api.Spec, server.Logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(escapedRouting, validate)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(api.Spec)
	})
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/instances", server.ListInstances)
	r.Route("/instances/{instance}", func(r chi.Router) {
		r.Get("/events", server.SubscribeEvents)
		r.Put("/{kind}", server.CreateList)
		r.Get("/{kind}", server.ListItems)
		r.Post("/{kind}", server.AddItem)
		r.Post("/{kind}/move", server.MoveItem)
		r.Delete("/{kind}/{item}", server.DeleteItem)
	})

	return enableCORS(r), nil
}

// escapedRouting makes chi match on the escaped path, so every path parameter
// reaches bindPath still escaped and is decoded exactly once.
func escapedRouting(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.URL.RawPath = r.URL.EscapedPath()
		next.ServeHTTP(w, r)
	})
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

// StatusOf maps a service error to an HTTP status code.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInstanceNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrListFull):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidIndex),
		errors.Is(err, domain.ErrEmptyItem),
		errors.Is(err, domain.ErrUnknownKind),
		errors.Is(err, servicer.ErrBadRequest),
		errors.Is(err, servicer.ErrItemTooLarge),
		errors.Is(err, servicer.ErrInvalidUTF8),
		errors.Is(err, servicer.ErrInvalidItem):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error(op+" failed", "error", err)
	} else {
		s.Logger.Debug(op+" rejected", "error", err, "status", status)
	}
	http.Error(w, err.Error(), status)
}

// pathParams binds the instance and kind path parameters.
func pathParams(r *http.Request) (string, domain.Kind, error) {
	var instance, kind string
	if err := bindPath(r, "instance", &instance); err != nil {
		return "", "", err
	}
	if err := bindPath(r, "kind", &kind); err != nil {
		return "", "", err
	}
	k, err := domain.ParseKind(kind)
	if err != nil {
		return "", "", err
	}
	return instance, k, nil
}

func bindPath(r *http.Request, name string, dest *string) error {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return fmt.Errorf("%w: invalid format for parameter %s: %v", servicer.ErrBadRequest, name, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}

func decodeBody(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", servicer.ErrBadRequest, err)
	}
	return nil
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := loadSpec(api.Spec); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}

	writeJSON(w, map[string]string{
		"app":         "twentyfive-http",
		"version":     strings.TrimSpace(twentyfive.Version),
		"api_version": apiVersion,
	})
}

// ListInstances handles the GET /instances request.
func (s *Server) ListInstances(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Service.Instances(r.Context())
	if err != nil {
		s.fail(w, "ListInstances", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, map[string][]string{"instances": ids})
}

// CreateList handles the PUT /instances/{instance}/{kind} request.
func (s *Server) CreateList(w http.ResponseWriter, r *http.Request) {
	instance, kind, err := pathParams(r)
	if err != nil {
		s.fail(w, "CreateList", err)
		return
	}
	if err := s.Service.CreateList(r.Context(), instance, kind); err != nil {
		s.fail(w, "CreateList", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListItems handles the GET /instances/{instance}/{kind} request.
func (s *Server) ListItems(w http.ResponseWriter, r *http.Request) {
	instance, kind, err := pathParams(r)
	if err != nil {
		s.fail(w, "ListItems", err)
		return
	}
	resp, err := s.Service.ListItems(r.Context(), instance, kind)
	if err != nil {
		s.fail(w, "ListItems", err)
		return
	}
	if resp.Items == nil {
		resp.Items = []string{}
	}
	writeJSON(w, resp)
}

// AddItem handles the POST /instances/{instance}/{kind} request.
func (s *Server) AddItem(w http.ResponseWriter, r *http.Request) {
	instance, kind, err := pathParams(r)
	if err != nil {
		s.fail(w, "AddItem", err)
		return
	}
	var body domain.AddRequest
	if err := decodeBody(r, &body); err != nil {
		s.fail(w, "AddItem", err)
		return
	}
	if err := s.Service.AddItem(r.Context(), instance, kind, body.Item); err != nil {
		s.fail(w, "AddItem", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveItem handles the POST /instances/{instance}/{kind}/move request.
func (s *Server) MoveItem(w http.ResponseWriter, r *http.Request) {
	instance, kind, err := pathParams(r)
	if err != nil {
		s.fail(w, "MoveItem", err)
		return
	}
	var body domain.MoveRequest
	if err := decodeBody(r, &body); err != nil {
		s.fail(w, "MoveItem", err)
		return
	}
	if err := s.Service.MoveItem(r.Context(), instance, kind, body.Item, body.TargetIndex); err != nil {
		s.fail(w, "MoveItem", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteItem handles the DELETE /instances/{instance}/{kind}/{item} request.
func (s *Server) DeleteItem(w http.ResponseWriter, r *http.Request) {
	instance, kind, err := pathParams(r)
	if err != nil {
		s.fail(w, "DeleteItem", err)
		return
	}
	var item string
	if err := bindPath(r, "item", &item); err != nil {
		s.fail(w, "DeleteItem", err)
		return
	}
	if err := s.Service.DeleteItem(r.Context(), instance, kind, item); err != nil {
		s.fail(w, "DeleteItem", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
