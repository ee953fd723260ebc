// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// MatchingHandler handles matching refresh and result requests.
type MatchingHandler struct {
	deps Dependencies
}

// NewMatchingHandler creates a new matching handler.
func NewMatchingHandler(deps Dependencies) *MatchingHandler {
	return &MatchingHandler{deps: deps}
}

// refreshRequest mirrors the POST /matching/refresh body.
type refreshRequest struct {
	UserID string `json:"user_id"`
	Sync   bool   `json:"sync,omitempty"`
}

type refreshResponse struct {
	Status string `json:"status"`
	UserID string `json:"user_id"`
}

// HandleRefresh handles POST /matching/refresh requests. By default the
// refresh is scheduled asynchronously; sync=true runs it inline.
func (h *MatchingHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "api.matching_refresh"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	if req.Sync {
		if err := h.deps.RefreshMatches(r.Context(), req.UserID); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, refreshResponse{Status: "refreshed", UserID: req.UserID})
		return
	}

	if err := h.deps.ScheduleRefresh(r.Context(), req.UserID, "api_refresh"); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, refreshResponse{Status: "scheduled", UserID: req.UserID})
}

// HandleResults handles GET /matching/results?user_id=X requests.
func (h *MatchingHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	const op = "api.matching_results"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	matches, err := h.deps.CachedMatches(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}
