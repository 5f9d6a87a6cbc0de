package chi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"github.com/opencrvs/crvs-search/internal/codec/searchparams"
	"github.com/opencrvs/crvs-search/internal/domain/event"
	"github.com/opencrvs/crvs-search/internal/domain/event/field"
	"github.com/opencrvs/crvs-search/internal/metrics"
	correctionuc "github.com/opencrvs/crvs-search/internal/usecase/correction"
	documentuc "github.com/opencrvs/crvs-search/internal/usecase/document"
	healthuc "github.com/opencrvs/crvs-search/internal/usecase/health"
	searchuc "github.com/opencrvs/crvs-search/internal/usecase/search"
	"github.com/opencrvs/crvs-search/internal/usecase/searchfield"
)

// Server serves the search, correction and document API over chi.
type Server struct {
	search        *searchuc.Service
	corrections   *correctionuc.Service
	documents     *documentuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. documents is nil when no database
// is configured; document routes then answer 501.
func NewServer(
	search *searchuc.Service,
	corrections *correctionuc.Service,
	documents *documentuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		search:        search,
		corrections:   corrections,
		documents:     documents,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Get("/events", s.ListEvents)
	r.Route("/events/{event}", func(r chi.Router) {
		r.Get("/search-fields", s.SearchFields)
		r.Get("/search/advanced", s.AdvancedSearchQuery)
		r.Post("/search/advanced", s.AdvancedSearch)
		r.Post("/corrections/diff", s.CorrectionDiff)
	})
	r.Get("/search/quick", s.QuickSearch)
	r.Post("/search-params/serialize", s.SerializeParams)
	r.Post("/search-params/deserialize", s.DeserializeParams)

	r.Route("/documents", func(r chi.Router) {
		r.Use(s.requireDocuments)
		r.Get("/", s.ListDocuments)
		r.Put("/{id}", s.PutDocument)
		r.Get("/{id}", s.GetDocument)
		r.Delete("/{id}", s.DeleteDocument)
		r.Post("/{id}/actions", s.AppendAction)
		r.Post("/{id}/corrections/preview", s.PreviewCorrection)
		r.Post("/{id}/corrections", s.RequestCorrection)
	})
}

// --- responses ---

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type eventSummary struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
}

type listEventsResponse struct {
	Events []eventSummary `json:"events"`
}

type searchFieldsResponse struct {
	Event    string                `json:"event"`
	Sections []searchfield.Section `json:"sections"`
}

type serializeResponse struct {
	Query string `json:"query"`
}

type diffRequest struct {
	Previous   event.State `json:"previous"`
	Current    event.State `json:"current"`
	Annotation event.State `json:"annotation"`
}

type formRequest struct {
	Form       event.State `json:"form"`
	Annotation event.State `json:"annotation"`
	CreatedBy  string      `json:"createdBy"`
}

// --- health / metrics ---

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
		s.logger.Warn("health check failed",
			zap.String("status", string(report.Status)),
			zap.Strings("probes", report.Failed()))
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics.Handler().ServeHTTP(w, r)
}

// --- events / search ---

// ListEvents handles GET /events.
func (s *Server) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.search.Events(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	resp := listEventsResponse{Events: make([]eventSummary, len(events))}
	for i, ec := range events {
		resp.Events[i] = eventSummary{ID: ec.ID, Label: ec.Label}
	}
	writeJSON(w, http.StatusOK, resp)
}

// SearchFields handles GET /events/{event}/search-fields.
func (s *Server) SearchFields(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathParam(w, r, "event")
	if !ok {
		return
	}
	sections, err := s.search.Sections(r.Context(), eventID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchFieldsResponse{Event: eventID, Sections: sections})
}

// AdvancedSearch handles POST /events/{event}/search/advanced.
func (s *Server) AdvancedSearch(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathParam(w, r, "event")
	if !ok {
		return
	}
	var state event.State
	if !decodeBody(w, r, &state) {
		return
	}
	s.advanced(w, r, eventID, state)
}

// AdvancedSearchQuery handles GET /events/{event}/search/advanced with
// serialized search params in the query string.
func (s *Server) AdvancedSearchQuery(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathParam(w, r, "event")
	if !ok {
		return
	}
	s.advanced(w, r, eventID, toState(searchparams.Deserialize(r.URL.RawQuery)))
}

func (s *Server) advanced(w http.ResponseWriter, r *http.Request, eventID string, state event.State) {
	res, err := s.search.Advanced(r.Context(), eventID, state)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// QuickSearch handles GET /search/quick. Terms come from repeated terms
// params or, failing that, from the values of all params.
func (s *Server) QuickSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	var terms []string
	if err := runtime.BindQueryParameter("form", true, false, "terms", params, &terms); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid terms parameter")
		return
	}
	if len(terms) == 0 {
		flat := make(map[string]string, len(params))
		for k, v := range params {
			if len(v) > 0 {
				flat[k] = v[0]
			}
		}
		terms = searchuc.QuickSearchTerms(flat)
	}

	q, err := s.search.Quick(r.Context(), terms)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// SerializeParams handles POST /search-params/serialize.
func (s *Server) SerializeParams(w http.ResponseWriter, r *http.Request) {
	var state map[string]any
	if !decodeBody(w, r, &state) {
		return
	}
	writeJSON(w, http.StatusOK, serializeResponse{Query: searchparams.Serialize(state)})
}

// DeserializeParams handles POST /search-params/deserialize.
func (s *Server) DeserializeParams(w http.ResponseWriter, r *http.Request) {
	var req serializeResponse
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, searchparams.Deserialize(req.Query))
}

// --- corrections ---

// CorrectionDiff handles POST /events/{event}/corrections/diff.
func (s *Server) CorrectionDiff(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathParam(w, r, "event")
	if !ok {
		return
	}
	var req diffRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.corrections.Diff(r.Context(), eventID, req.Previous, req.Current, req.Annotation)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// --- helpers ---

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

// pathParam binds a required simple-style path parameter.
func pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil || v == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid path parameter "+name)
		return "", false
	}
	return v, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func toState(m map[string]any) event.State {
	state := make(event.State, len(m))
	for k, v := range m {
		state[field.ID(k)] = v
	}
	return state
}
