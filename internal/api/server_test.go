package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nerrad567/instrument-sim/internal/definition"
	"github.com/nerrad567/instrument-sim/internal/infrastructure/config"
	"github.com/nerrad567/instrument-sim/internal/infrastructure/logging"
	"github.com/nerrad567/instrument-sim/internal/session"
)

// newTestServer builds a server over the bundled definitions without a
// listener; tests drive the router directly.
func newTestServer(t *testing.T) (*Server, *session.Manager) {
	t.Helper()

	set, err := definition.NewLoader().LoadBundled("default.yaml")
	if err != nil {
		t.Fatalf("LoadBundled() error = %v", err)
	}
	manager := session.NewManager(set)

	srv, err := New(Deps{
		Config:  config.Default().API,
		Logger:  logging.New(config.LoggingConfig{Level: "error", Format: "text"}, "test"),
		Set:     set,
		Manager: manager,
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv, manager
}

// doJSON performs a request against the router and decodes the JSON reply.
func doJSON(t *testing.T, srv *Server, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reqBody)
	rec := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rec, req)

	if out != nil && rec.Code < http.StatusMultipleChoices {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec
}

func TestNewValidation(t *testing.T) {
	set, err := definition.NewLoader().LoadBundled("default.yaml")
	if err != nil {
		t.Fatalf("LoadBundled() error = %v", err)
	}
	logger := logging.New(config.LoggingConfig{Level: "error"}, "test")

	if _, err := New(Deps{Set: set, Manager: session.NewManager(set)}); err == nil {
		t.Error("New() without logger: expected error")
	}
	if _, err := New(Deps{Logger: logger, Manager: session.NewManager(set)}); err == nil {
		t.Error("New() without set: expected error")
	}
	if _, err := New(Deps{Logger: logger, Set: set}); err == nil {
		t.Error("New() without manager: expected error")
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	var resp map[string]any
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/health", nil, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp["status"] != "ok" {
		t.Errorf("status field = %v, want ok", resp["status"])
	}
}

func TestListResources(t *testing.T) {
	srv, _ := newTestServer(t)

	var resp struct {
		Resources []resourceInfo `json:"resources"`
	}
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/resources", nil, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(resp.Resources) != 5 {
		t.Fatalf("resource count = %d, want 5", len(resp.Resources))
	}
	for _, info := range resp.Resources {
		if info.Open {
			t.Errorf("resource %q reported open with no sessions", info.Resource)
		}
		if info.Device == "" {
			t.Errorf("resource %q has empty device name", info.Resource)
		}
	}
}

func TestGetResource(t *testing.T) {
	srv, _ := newTestServer(t)

	var detail resourceDetail
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/resources/ASRL1::INSTR", nil, &detail)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if detail.Resource != "ASRL1::INSTR" {
		t.Errorf("resource = %q", detail.Resource)
	}
	if detail.Delimiter != ";" {
		t.Errorf("delimiter = %q, want ;", detail.Delimiter)
	}
	if len(detail.Properties) == 0 {
		t.Error("expected properties in definition detail")
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/resources/GPIB9::99::INSTR", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown resource status = %d, want 404", rec.Code)
	}
}

func TestResourceStateDefaults(t *testing.T) {
	srv, _ := newTestServer(t)

	var resp struct {
		Properties []propertyState `json:"properties"`
	}
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/resources/ASRL1::INSTR/state", nil, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	values := make(map[string]string, len(resp.Properties))
	for _, p := range resp.Properties {
		values[p.Name] = p.Value
	}
	if values["frequency"] != "100.0" {
		t.Errorf("frequency default = %q, want 100.0", values["frequency"])
	}
}

func TestResourcePropertyState(t *testing.T) {
	srv, manager := newTestServer(t)

	var resp struct {
		Property propertyState `json:"property"`
	}
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/resources/ASRL1::INSTR/state/frequency", nil, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp.Property.Value != "100.0" {
		t.Errorf("frequency default = %q, want 100.0", resp.Property.Value)
	}

	// A held session's live value takes precedence over the default.
	sess, err := manager.Open("ASRL1::INSTR")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer sess.Close()
	if _, _, err := sess.Query("!FREQ 42.0"); err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/resources/ASRL1::INSTR/state/frequency", nil, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp.Property.Value != "42.0" {
		t.Errorf("live frequency = %q, want 42.0", resp.Property.Value)
	}

	if rec := doJSON(t, srv, http.MethodGet, "/api/v1/resources/ASRL1::INSTR/state/nonsense", nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown property status = %d, want 404", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodGet, "/api/v1/resources/GPIB9::99::INSTR/state/frequency", nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown resource status = %d, want 404", rec.Code)
	}
}

func TestResourceQueryEphemeral(t *testing.T) {
	srv, manager := newTestServer(t)

	var resp queryResponse
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/resources/ASRL1::INSTR/query",
		queryRequest{Query: "?IDN"}, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !resp.Replied || resp.Response != "LSG Serial #1234" {
		t.Errorf("response = %+v", resp)
	}

	// The throwaway session must be released afterwards.
	if n := len(manager.Sessions()); n != 0 {
		t.Errorf("open sessions after ephemeral query = %d, want 0", n)
	}
}

func TestResourceQueryUsesHeldSession(t *testing.T) {
	srv, manager := newTestServer(t)

	sess, err := manager.Open("ASRL1::INSTR")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer sess.Close()

	// Mutate state through the held session, then read it back via the API.
	if _, _, err := sess.Query("!FREQ 250.5"); err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	var resp queryResponse
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/resources/ASRL1::INSTR/query",
		queryRequest{Query: "?FREQ"}, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp.Response != "250.50" {
		t.Errorf("response = %q, want 250.50", resp.Response)
	}
}

func TestResourceQueryValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/resources/ASRL1::INSTR/query",
		queryRequest{}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty query status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/resources/GPIB9::99::INSTR/query",
		queryRequest{Query: "?IDN"}, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown resource status = %d, want 404", rec.Code)
	}
}

func TestSessionLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	// Open
	var opened sessionInfo
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/sessions",
		openSessionRequest{Resource: "ASRL1::INSTR"}, &opened)
	if rec.Code != http.StatusCreated {
		t.Fatalf("open status = %d, want 201", rec.Code)
	}
	if opened.Handle == "" {
		t.Fatal("open returned empty handle")
	}

	// Second open on the same resource conflicts.
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/sessions",
		openSessionRequest{Resource: "ASRL1::INSTR"}, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("double open status = %d, want 409", rec.Code)
	}

	// Query against the handle.
	var resp queryResponse
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+opened.Handle+"/query",
		queryRequest{Query: "?IDN"}, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("query status = %d, want 200", rec.Code)
	}
	if resp.Response != "LSG Serial #1234" {
		t.Errorf("response = %q", resp.Response)
	}

	// List shows the session.
	var listed struct {
		Sessions []sessionInfo `json:"sessions"`
	}
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/sessions", nil, &listed)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	if len(listed.Sessions) != 1 || listed.Sessions[0].Handle != opened.Handle {
		t.Errorf("sessions = %+v", listed.Sessions)
	}

	// Close.
	rec = doJSON(t, srv, http.MethodDelete, "/api/v1/sessions/"+opened.Handle, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("close status = %d, want 200", rec.Code)
	}

	// Closed handle is gone.
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/sessions/"+opened.Handle, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get closed session status = %d, want 404", rec.Code)
	}
}

func TestHistoryDisabled(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/resources/ASRL1::INSTR/history", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("history status = %d, want 404 when disabled", rec.Code)
	}
}
