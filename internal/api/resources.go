package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/instrument-sim/internal/session"
	"github.com/nerrad567/instrument-sim/internal/simulation"
)

// resourceInfo is the JSON shape for a resource listing entry.
type resourceInfo struct {
	Resource string `json:"resource"`
	Device   string `json:"device"`
	Open     bool   `json:"open"`
	Handle   string `json:"handle,omitempty"`
}

// resourceDetail extends resourceInfo with definition details.
type resourceDetail struct {
	resourceInfo
	Delimiter  string   `json:"delimiter"`
	Properties []string `json:"properties"`
}

// propertyState is the JSON shape for one device property value.
type propertyState struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// queryRequest is the JSON body for query dispatch.
type queryRequest struct {
	Query string `json:"query"`
}

// queryResponse is the JSON shape for a dispatched query result.
type queryResponse struct {
	Query    string `json:"query"`
	Response string `json:"response"`
	Replied  bool   `json:"replied"`
}

// resourceParam extracts and unescapes the {resource} URL parameter.
func resourceParam(r *http.Request) string {
	raw := chi.URLParam(r, "resource")
	if unescaped, err := url.PathUnescape(raw); err == nil {
		return unescaped
	}
	return raw
}

// limitParam parses the optional ?limit query parameter.
func limitParam(r *http.Request) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

func (s *Server) resourceInfoFor(name string) (resourceInfo, error) {
	def, err := s.set.Definition(name)
	if err != nil {
		return resourceInfo{}, err
	}
	info := resourceInfo{Resource: name, Device: def.Name()}
	if sess, ok := s.manager.Lookup(name); ok {
		info.Open = true
		info.Handle = sess.Handle()
	}
	return info, nil
}

// handleListResources returns every resource defined in the loaded set.
func (s *Server) handleListResources(w http.ResponseWriter, _ *http.Request) {
	names := s.set.Resources()
	out := make([]resourceInfo, 0, len(names))
	for _, name := range names {
		info, err := s.resourceInfoFor(name)
		if err != nil {
			continue
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, map[string]any{"resources": out})
}

// handleGetResource returns the definition details for one resource.
func (s *Server) handleGetResource(w http.ResponseWriter, r *http.Request) {
	name := resourceParam(r)
	def, err := s.set.Definition(name)
	if err != nil {
		writeNotFound(w, "unknown resource")
		return
	}

	info, _ := s.resourceInfoFor(name)
	writeJSON(w, http.StatusOK, resourceDetail{
		resourceInfo: info,
		Delimiter:    def.Delimiter(),
		Properties:   def.PropertyNames(),
	})
}

// deviceFor resolves the device backing a resource: the live device
// when a session holds the resource, otherwise a fresh one at its
// definition defaults.
func (s *Server) deviceFor(name string) (*simulation.Device, bool) {
	if sess, ok := s.manager.Lookup(name); ok {
		return sess.Device(), true
	}
	dev, err := s.set.NewDevice(name)
	if err != nil {
		return nil, false
	}
	return dev, true
}

// handleResourceState returns the current property values of a resource.
//
// When a session holds the resource, the live device state is reported;
// otherwise the definition defaults are shown.
func (s *Server) handleResourceState(w http.ResponseWriter, r *http.Request) {
	name := resourceParam(r)

	dev, ok := s.deviceFor(name)
	if !ok {
		writeNotFound(w, "unknown resource")
		return
	}

	var snapshot []propertyState
	for _, p := range dev.Snapshot() {
		snapshot = append(snapshot, propertyState{Name: p.Name, Value: p.Value})
	}

	if snapshot == nil {
		snapshot = []propertyState{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"resource":   name,
		"properties": snapshot,
	})
}

// handleResourcePropertyState returns the current value of one named
// property, read from the live device when a session holds the
// resource.
func (s *Server) handleResourcePropertyState(w http.ResponseWriter, r *http.Request) {
	name := resourceParam(r)
	property := chi.URLParam(r, "property")

	dev, ok := s.deviceFor(name)
	if !ok {
		writeNotFound(w, "unknown resource")
		return
	}

	value, ok := dev.PropertyValue(property)
	if !ok {
		writeNotFound(w, "unknown property")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"resource": name,
		"property": propertyState{Name: property, Value: value},
	})
}

// handleResourceQuery dispatches a single query to a resource.
//
// When a session already holds the resource the query runs against the
// live session, so register state and error queues carry over. Otherwise
// a throwaway session is opened for the one exchange.
func (s *Server) handleResourceQuery(w http.ResponseWriter, r *http.Request) {
	name := resourceParam(r)

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Query == "" {
		writeBadRequest(w, "query is required")
		return
	}

	sess, held := s.manager.Lookup(name)
	if !held {
		var err error
		sess, err = s.manager.Open(name)
		if err != nil {
			s.writeSessionError(w, err)
			return
		}
		defer sess.Close()
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

// handleResourceHistory returns recorded exchanges for a resource,
// newest first.
func (s *Server) handleResourceHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeNotFound(w, "history is disabled")
		return
	}

	name := resourceParam(r)
	if _, err := s.set.Definition(name); err != nil {
		writeNotFound(w, "unknown resource")
		return
	}

	entries, err := s.history.ListByResource(r.Context(), name, limitParam(r))
	if err != nil {
		s.logger.Error("list history", "error", err, "resource", name)
		writeInternalError(w, "failed to list history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"resource": name,
		"entries":  entries,
	})
}

// writeSessionError maps session errors to HTTP responses.
func (s *Server) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrResourceNotFound):
		writeNotFound(w, "unknown resource")
	case errors.Is(err, session.ErrResourceBusy):
		writeConflict(w, "resource is held by another session")
	case errors.Is(err, session.ErrUnknownHandle):
		writeNotFound(w, "unknown session handle")
	case errors.Is(err, session.ErrSessionClosed):
		writeConflict(w, "session is closed")
	default:
		s.logger.Error("session operation failed", "error", err)
		writeInternalError(w, "session operation failed")
	}
}
