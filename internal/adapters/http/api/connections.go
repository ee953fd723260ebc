// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// ConnectionsHandler handles connection request routes.
type ConnectionsHandler struct {
	deps Dependencies
}

// NewConnectionsHandler creates a new connections handler.
func NewConnectionsHandler(deps Dependencies) *ConnectionsHandler {
	return &ConnectionsHandler{deps: deps}
}

// connectRequest mirrors the POST /connections body.
type connectRequest struct {
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	MatchID    string `json:"match_id,omitempty"`
	Message    string `json:"message,omitempty"`
}

func (c connectRequest) validate() error {
	switch {
	case strings.TrimSpace(c.FromUserID) == "":
		return errors.New("missing from_user_id")
	case strings.TrimSpace(c.ToUserID) == "":
		return errors.New("missing to_user_id")
	}
	return nil
}

// resolveRequest mirrors the POST /connections/{id}/accept|decline body.
type resolveRequest struct {
	UserID string `json:"user_id"`
}

// HandleConnections handles POST and GET on /connections.
func (h *ConnectionsHandler) HandleConnections(w http.ResponseWriter, r *http.Request) {
	const op = "api.connections"
	switch r.Method {
	case http.MethodPost:
		var req connectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		conn, err := h.deps.Connect(r.Context(), req.FromUserID, req.ToUserID, req.MatchID, req.Message)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, conn)

	case http.MethodGet:
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		conns, err := h.deps.Connections(r.Context(), userID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, conns)

	default:
		http.NotFound(w, r)
	}
}

// HandleResolve handles POST /connections/{id}/accept and
// POST /connections/{id}/decline.
func (h *ConnectionsHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	const op = "api.connections_resolve"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	// Path is /connections/{id}/accept or /connections/{id}/decline.
	rest := strings.TrimPrefix(r.URL.Path, "/connections/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	id, action := parts[0], parts[1]

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	switch action {
	case "accept":
		conn, err := h.deps.AcceptConnection(r.Context(), id, req.UserID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, conn)
	case "decline":
		conn, err := h.deps.DeclineConnection(r.Context(), id, req.UserID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, conn)
	default:
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
	}
}
