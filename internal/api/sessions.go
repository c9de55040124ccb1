package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// sessionInfo is the JSON shape for an open session.
type sessionInfo struct {
	Handle   string `json:"handle"`
	Resource string `json:"resource"`
	Device   string `json:"device"`
}

// openSessionRequest is the JSON body for opening a session.
type openSessionRequest struct {
	Resource string `json:"resource"`
}

// handleListSessions returns all open sessions.
func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	sessions := s.manager.Sessions()
	out := make([]sessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sessionInfo{
			Handle:   sess.Handle(),
			Resource: sess.Resource(),
			Device:   sess.Device().Name(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

// handleOpenSession opens a session on a resource and returns its handle.
func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Resource == "" {
		writeBadRequest(w, "resource is required")
		return
	}

	sess, err := s.manager.Open(req.Resource)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionInfo{
		Handle:   sess.Handle(),
		Resource: sess.Resource(),
		Device:   sess.Device().Name(),
	})
}

// handleGetSession returns details for one open session.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.Get(chi.URLParam(r, "handle"))
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionInfo{
		Handle:   sess.Handle(),
		Resource: sess.Resource(),
		Device:   sess.Device().Name(),
	})
}

// handleCloseSession closes an open session.
func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Close(chi.URLParam(r, "handle")); err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"closed": true})
}

// handleSessionQuery dispatches a query on an open session.
func (s *Server) handleSessionQuery(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.Get(chi.URLParam(r, "handle"))
	if err != nil {
		s.writeSessionError(w, err)
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Query == "" {
		writeBadRequest(w, "query is required")
		return
	}

	response, replied, err := sess.Query(req.Query)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, queryResponse{
		Query:    req.Query,
		Response: response,
		Replied:  replied,
	})
}

// handleSessionHistory returns recorded exchanges for a session handle,
// newest first.
func (s *Server) handleSessionHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeNotFound(w, "history is disabled")
		return
	}

	handle := chi.URLParam(r, "handle")
	entries, err := s.history.ListBySession(r.Context(), handle, limitParam(r))
	if err != nil {
		s.logger.Error("list history", "error", err, "handle", handle)
		writeInternalError(w, "failed to list history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"handle":  handle,
		"entries": entries,
	})
}
