package chi

import (
	"net/http"
	"time"

	"github.com/opencrvs/crvs-search/internal/domain/event"
)

// DocumentResponse is the wire form of an event document.
type DocumentResponse struct {
	ID        string         `json:"id"`
	EventType string         `json:"eventType"`
	Status    event.Status   `json:"status"`
	State     event.State    `json:"state"`
	Actions   []event.Action `json:"actions"`
	UpdatedAt time.Time      `json:"updatedAt"`
	// PendingCorrection is the id of an unresolved correction request.
	PendingCorrection string `json:"pendingCorrection,omitempty"`
}

type putDocumentRequest struct {
	EventType string         `json:"eventType"`
	Actions   []event.Action `json:"actions"`
}

type listDocumentsResponse struct {
	IDs []string `json:"ids"`
}

// requireDocuments answers 501 on document routes when no store is configured.
func (s *Server) requireDocuments(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.documents == nil {
			writeError(w, http.StatusNotImplemented, CodeNotImplemented, "document storage is not configured")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PutDocument handles PUT /documents/{id}.
func (s *Server) PutDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	var req putDocumentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.EventType == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "eventType is required")
		return
	}

	doc, created, err := s.documents.Put(r.Context(), id, req.EventType, req.Actions)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, documentToResponse(doc))
}

// GetDocument handles GET /documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	doc, err := s.documents.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToResponse(doc))
}

// ListDocuments handles GET /documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	ids, err := s.documents.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, listDocumentsResponse{IDs: ids})
}

// DeleteDocument handles DELETE /documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	if err := s.documents.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AppendAction handles POST /documents/{id}/actions.
func (s *Server) AppendAction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	var action event.Action
	if !decodeBody(w, r, &action) {
		return
	}
	doc, err := s.documents.AppendAction(r.Context(), id, action)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToResponse(doc))
}

// PreviewCorrection handles POST /documents/{id}/corrections/preview.
func (s *Server) PreviewCorrection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	var req formRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.corrections.Preview(r.Context(), id, req.Form, req.Annotation)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// RequestCorrection handles POST /documents/{id}/corrections.
func (s *Server) RequestCorrection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	var req formRequest
	if !decodeBody(w, r, &req) {
		return
	}
	action, err := s.corrections.Request(r.Context(), id, req.Form, req.Annotation, req.CreatedBy)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.Header().Set("Location", "/documents/"+id)
	writeJSON(w, http.StatusCreated, action)
}

func documentToResponse(doc event.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:        doc.ID(),
		EventType: doc.EventType(),
		Status:    doc.Status(),
		State:     doc.CurrentState(),
		Actions:   doc.Actions(),
		UpdatedAt: updatedAt(doc),
	}
	if resp.State == nil {
		resp.State = event.State{}
	}
	if pending, ok := doc.PendingCorrection(); ok {
		resp.PendingCorrection = pending.ID
	}
	return resp
}

// updatedAt is the timestamp of the latest action, zero for an empty log.
func updatedAt(doc event.Document) time.Time {
	actions := doc.Actions()
	if len(actions) == 0 {
		return time.Time{}
	}
	return actions[len(actions)-1].CreatedAt
}
