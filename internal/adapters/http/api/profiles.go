// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/neplaunch/matchd/internal/domain/model"
)

// ProfilesHandler handles ingestion routes that populate the candidate
// pools.
type ProfilesHandler struct {
	deps Dependencies
}

// NewProfilesHandler creates a new profiles handler.
func NewProfilesHandler(deps Dependencies) *ProfilesHandler {
	return &ProfilesHandler{deps: deps}
}

type ackResponse struct {
	Status string `json:"status"`
}

// HandlePutUser handles PUT /users requests.
func (h *ProfilesHandler) HandlePutUser(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_user"
	var u model.User
	if !decodePut(w, r, op, &u) {
		return
	}
	if strings.TrimSpace(u.ID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing id")))
		return
	}
	if err := h.deps.PutUser(r.Context(), u); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "stored"})
}

// HandlePutTalent handles PUT /profiles/talent requests.
func (h *ProfilesHandler) HandlePutTalent(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_talent_profile"
	var p model.TalentProfile
	if !decodePut(w, r, op, &p) {
		return
	}
	if strings.TrimSpace(p.UserID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing user_id")))
		return
	}
	if err := h.deps.PutTalentProfile(r.Context(), p); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "stored"})
}

// HandlePutInvestor handles PUT /profiles/investor requests.
func (h *ProfilesHandler) HandlePutInvestor(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_investor_profile"
	var p model.InvestorProfile
	if !decodePut(w, r, op, &p) {
		return
	}
	if strings.TrimSpace(p.UserID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing user_id")))
		return
	}
	if err := h.deps.PutInvestorProfile(r.Context(), p); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "stored"})
}

// HandlePutStartup handles PUT /startups requests.
func (h *ProfilesHandler) HandlePutStartup(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_startup"
	var st model.Startup
	if !decodePut(w, r, op, &st) {
		return
	}
	if strings.TrimSpace(st.ID) == "" || strings.TrimSpace(st.FounderID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing id or founder_id")))
		return
	}
	if err := h.deps.PutStartup(r.Context(), st); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "stored"})
}

// HandlePutRequirement handles PUT /requirements requests.
func (h *ProfilesHandler) HandlePutRequirement(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_requirement"
	var req model.Requirement
	if !decodePut(w, r, op, &req) {
		return
	}
	if strings.TrimSpace(req.ID) == "" || strings.TrimSpace(req.StartupID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing id or startup_id")))
		return
	}
	if err := h.deps.PutRequirement(r.Context(), req); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "stored"})
}

// decodePut enforces the PUT method and decodes the JSON body. A false
// return means the response has already been written.
func decodePut(w http.ResponseWriter, r *http.Request, op string, v any) bool {
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return false
	}
	return true
}
