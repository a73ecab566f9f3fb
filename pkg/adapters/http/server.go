package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/reachflow/funnel"
	"github.com/reachflow/funnel/internal/logging"
	"github.com/reachflow/funnel/pkg/booking"
	"github.com/reachflow/funnel/pkg/domain"
	"github.com/reachflow/funnel/pkg/persistence"
	"github.com/reachflow/funnel/pkg/ports"
	"github.com/reachflow/funnel/pkg/registry"
	"github.com/reachflow/funnel/pkg/runner"
)

const maxBodyBytes = 64 << 10

// Error messages of the inbound submission endpoint. The landing pages match on them.
const (
	msgInvalidBody   = "Invalid request body"
	msgFailedToSave  = "Failed to save"
	msgMisconfigured = "Server misconfigured"
	msgInFlight      = "Submission already in progress"
)

// Server exposes the submission endpoint and the stateless wizard API.
type Server struct {
	submitter ports.Submitter
	journal   ports.Journal
	recorder  *persistence.Recorder
	booking   *booking.Listener
	hooks     domain.LifecycleHooks
	metrics   http.Handler
	origins   []string
	logger    *slog.Logger
	engines   *registry.Registry
}

// Option configures a Server.
type Option func(*Server)

// WithJournal records every resolved submission in j.
func WithJournal(j ports.Journal) Option {
	return func(s *Server) {
		s.journal = j
	}
}

// WithBooking mounts POST /booking/events.
func WithBooking(l *booking.Listener) Option {
	return func(s *Server) {
		s.booking = l
	}
}

// WithLifecycleHooks is passed to every wizard engine.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Server) {
		s.hooks = hooks
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithAllowedOrigins restricts CORS to the given origins. Empty or "*" allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a server. submitter receives every Lead Record, from POST /api/submit
// and from wizard submissions alike (usually a guard around a gateway).
func NewServer(loader ports.FunnelLoader, submitter ports.Submitter, opts ...Option) *Server {
	s := &Server{
		submitter: submitter,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.journal != nil && s.submitter != nil {
		s.recorder = persistence.NewRecorder(s.submitter, s.journal, persistence.WithLogger(s.logger))
	}
	s.engines = registry.New(loader, s.engineOptions)
	return s
}

func (s *Server) engineOptions(id string) []funnel.Option {
	var sub ports.Submitter = s.submitter
	if s.recorder != nil {
		sub = s.recorder.ForFunnel(id)
	}
	return []funnel.Option{
		funnel.WithSubmitter(sub),
		funnel.WithLifecycleHooks(s.hooks),
		funnel.WithLogger(s.logger),
	}
}

// NewHandler is a shortcut for NewServer(...).Handler().
func NewHandler(loader ports.FunnelLoader, submitter ports.Submitter, opts ...Option) http.Handler {
	return NewServer(loader, submitter, opts...).Handler()
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/api/submit", s.SubmitLead)

	r.Route("/funnels", func(r chi.Router) {
		r.Get("/", s.ListFunnels)
		r.Get("/{id}", s.GetFunnel)
		r.Post("/{id}/start", s.Start)
		r.Post("/{id}/navigate", s.Navigate)
	})

	if s.booking != nil {
		r.Post("/booking/events", s.BookingEvent)
	}
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)

	return enableCORS(s.origins, r)
}

func enableCORS(origins []string, next http.Handler) http.Handler {
	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(o, "/")] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case allowAll:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SubmitLead handles POST /api/submit.
func (s *Server) SubmitLead(w http.ResponseWriter, r *http.Request) {
	lead, err := decodeLead(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		slog.Warn("SubmitLead: invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	var sub ports.Submitter = s.submitter
	if s.recorder != nil {
		sub = s.recorder
	}
	if sub == nil {
		s.logger.Error("SubmitLead: no submitter configured")
		writeError(w, http.StatusInternalServerError, msgMisconfigured)
		return
	}

	funnelID := lead[persistence.SourceField]
	if s.hooks.OnSubmit != nil {
		s.hooks.OnSubmit(r.Context(), &domain.SubmissionEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventSubmit, FunnelID: funnelID},
			Fields:    len(lead),
		})
	}
	start := time.Now()
	result, err := sub.Submit(r.Context(), lead)
	if s.hooks.OnResult != nil {
		s.hooks.OnResult(r.Context(), &domain.SubmissionEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventResult, FunnelID: funnelID},
			Fields:    len(lead),
			Result:    &result,
			Duration:  time.Since(start),
			Err:       err,
		})
	}

	switch {
	case errors.Is(err, domain.ErrMisconfigured):
		writeError(w, http.StatusInternalServerError, msgMisconfigured)
	case errors.Is(err, domain.ErrSubmissionInFlight):
		writeError(w, http.StatusConflict, msgInFlight)
	case err != nil || !result.Succeeded():
		s.logger.Warn("SubmitLead: backend refused the lead", "reason", result.Reason, "status", result.StatusCode, "err", err)
		writeError(w, http.StatusInternalServerError, msgFailedToSave)
	default:
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// decodeLead accepts a single flat JSON object. Scalars are stringified, null becomes empty.
func decodeLead(body io.Reader) (domain.LeadRecord, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after object")
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.New("payload is not an object")
	}

	fields := make(map[string]string, len(obj))
	for k, v := range obj {
		switch val := v.(type) {
		case nil:
			fields[k] = ""
		case string:
			fields[k] = val
		case json.Number:
			fields[k] = val.String()
		case bool:
			fields[k] = strconv.FormatBool(val)
		default:
			return nil, errors.New("field " + strconv.Quote(k) + " is not a scalar")
		}
	}

	clean, err := runner.SanitizeLead(fields)
	if err != nil {
		return nil, err
	}
	return domain.LeadRecord(clean), nil
}

// ListFunnels handles GET /funnels.
func (s *Server) ListFunnels(w http.ResponseWriter, r *http.Request) {
	ids, err := s.engines.List(r.Context())
	if err != nil {
		slog.Error("ListFunnels failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list funnels")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"funnels": ids})
}

// GetFunnel handles GET /funnels/{id}.
func (s *Server) GetFunnel(w http.ResponseWriter, r *http.Request) {
	eng, err := s.engine(r)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eng.Inspect())
}

// StateResponse is returned by the wizard endpoints.
type StateResponse struct {
	State *domain.State `json:"state"`
	View  domain.View   `json:"view"`
}

// Start handles POST /funnels/{id}/start.
func (s *Server) Start(w http.ResponseWriter, r *http.Request) {
	eng, err := s.engine(r)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	state := eng.Start(r.Context())
	s.respondState(w, r, eng, state)
}

// NavigateRequest carries the client-held state and the transition to apply.
type NavigateRequest struct {
	State  *domain.State `json:"state"`
	Action funnel.Action `json:"action"`
}

// Navigate handles POST /funnels/{id}/navigate.
func (s *Server) Navigate(w http.ResponseWriter, r *http.Request) {
	var body NavigateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		slog.Warn("Navigate: invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	eng, err := s.engine(r)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	action := body.Action
	var serr error
	if action.Option, serr = runner.SanitizeInput(action.Option); serr == nil {
		action.Value, serr = runner.SanitizeInput(action.Value)
	}
	if serr != nil {
		writeError(w, http.StatusBadRequest, serr.Error())
		return
	}

	next, err := eng.Apply(r.Context(), body.State, action)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.respondState(w, r, eng, next)
}

func (s *Server) respondState(w http.ResponseWriter, r *http.Request, eng *funnel.Engine, state *domain.State) {
	view, err := eng.Render(r.Context(), state)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StateResponse{State: state, View: view})
}

// BookingEvent handles POST /booking/events, relayed from the scheduler embed.
func (s *Server) BookingEvent(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	redirect, ok := s.booking.HandleRaw(data)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"redirect": redirect})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"app":     "funnel-http",
		"version": strings.TrimSpace(funnel.Version),
	}
	if ids, err := s.engines.List(r.Context()); err == nil {
		resp["funnels"] = len(ids)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) engine(r *http.Request) (*funnel.Engine, error) {
	return s.engines.Engine(r.Context(), chi.URLParam(r, "id"))
}

// writeDomainError maps engine errors to HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrFunnelNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, funnel.ErrUnknownAction):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrSubmissionInFlight), errors.Is(err, domain.ErrCompleted):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrNotReady),
		errors.Is(err, domain.ErrWrongStepKind),
		errors.Is(err, domain.ErrUnknownOption),
		errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, domain.ErrNotFinalStep):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}
