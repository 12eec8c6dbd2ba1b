package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vortex/ooxml-redline/internal/rlerrors"
	"github.com/vortex/ooxml-redline/internal/service"
	"github.com/vortex/ooxml-redline/pkg/response"
)

// RedlineHandler exposes the engine's three operations over HTTP.
type RedlineHandler struct {
	svc service.RedlineService
}

// NewRedlineHandler creates a handler backed by the given service.
func NewRedlineHandler(svc service.RedlineService) *RedlineHandler {
	return &RedlineHandler{svc: svc}
}

// ApplyRedline handles POST /api/v1/redline.
func (h *RedlineHandler) ApplyRedline(w http.ResponseWriter, r *http.Request) {
	var req service.RedlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.ApplyRedline(req)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

// Ingest handles POST /api/v1/ingest.
func (h *RedlineHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req service.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.Ingest(req)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

// InjectComments handles POST /api/v1/comments.
func (h *RedlineHandler) InjectComments(w http.ResponseWriter, r *http.Request) {
	var req service.CommentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.InjectComments(req)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

// writeEngineError maps the engine's typed error taxonomy (spec.md §7)
// onto HTTP status codes: malformed input is a 400, a valid request the
// engine cannot satisfy is a 422, anything else is a 500.
func writeEngineError(w http.ResponseWriter, err error) {
	var invalidXML *rlerrors.InvalidXML
	var noParagraphs *rlerrors.NoParagraphs
	var outOfRange *rlerrors.OutOfRangeParagraph
	var duplicateID *rlerrors.DuplicateCommentID

	switch {
	case errors.As(err, &invalidXML), errors.As(err, &noParagraphs), errors.As(err, &outOfRange), errors.As(err, &duplicateID):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.As(err, new(*rlerrors.TextNotFound)), errors.As(err, new(*rlerrors.UnsupportedNativeFallback)):
		response.Error(w, http.StatusUnprocessableEntity, err.Error())
	default:
		response.Error(w, http.StatusInternalServerError, err.Error())
	}
}
