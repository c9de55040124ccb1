package session

import (
	"bytes"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/instrument-sim/internal/resource"
	"github.com/nerrad567/instrument-sim/internal/simulation"
)

// Session is one open resource: a live device instance plus the byte
// buffers that adapt it to a write/read transport.
//
// All methods are safe for concurrent use; a mutex keeps each
// write-handle-read sequence atomic with respect to the device state
// it touches.
type Session struct {
	handle   string
	name     resource.Name
	raw      string
	dev      *simulation.Device
	eom      simulation.EOMPair
	manager  *Manager
	observer Observer

	mu     sync.Mutex
	closed bool
	inBuf  []byte
	outBuf []byte
}

// Handle returns the session's uuid handle.
func (s *Session) Handle() string { return s.handle }

// Resource returns the resource name the session was opened with.
func (s *Session) Resource() string { return s.raw }

// Device returns the live device instance. Callers that bypass
// Write/Read, such as a direct query API, use it with the
// understanding that device methods take the device's own lock.
func (s *Session) Device() *simulation.Device { return s.dev }

// Write consumes bytes from the caller. Input accumulates until the
// query terminator for the session's resource class arrives; each
// complete message is stripped of the terminator, split on the device
// delimiter and handed to the device query by query. Replies are
// appended to the read buffer with the response terminator attached.
//
// The byte count returned always equals len(p): partial messages stay
// buffered for the next call.
func (s *Session) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrSessionClosed
	}

	s.inBuf = append(s.inBuf, p...)

	term := []byte(s.eom.Query)
	for {
		idx := bytes.Index(s.inBuf, term)
		if idx < 0 || len(term) == 0 {
			break
		}
		message := string(s.inBuf[:idx])
		s.inBuf = s.inBuf[idx+len(term):]
		s.dispatch(message)
	}

	return len(p), nil
}

// dispatch resolves one terminator-stripped message. Multi-queries
// separated by the device delimiter are handled left to right, each
// producing its own reply.
func (s *Session) dispatch(message string) {
	for _, query := range strings.Split(message, s.dev.Delimiter()) {
		start := time.Now()
		resp := s.dev.Handle(query)
		took := time.Since(start)

		if resp.Sent() {
			s.outBuf = append(s.outBuf, resp.String()...)
			s.outBuf = append(s.outBuf, s.eom.Response...)
		}

		if s.observer != nil {
			s.observer.Observe(Exchange{
				Handle:   s.handle,
				Resource: s.raw,
				Device:   s.dev.Name(),
				Query:    query,
				Response: resp.String(),
				Replied:  resp.Sent(),
				At:       start,
				Took:     took,
			})
		}
	}
}

// Read drains up to max bytes from the response buffer. Responses
// larger than max arrive over several calls without loss or
// duplication. Reading with nothing buffered asserts the device's
// query-error flag and returns ErrNoData.
func (s *Session) Read(max int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}

	if len(s.outBuf) == 0 {
		s.dev.RaiseError(simulation.ErrorKindQuery)
		return nil, ErrNoData
	}

	n := max
	if n > len(s.outBuf) {
		n = len(s.outBuf)
	}
	chunk := make([]byte, n)
	copy(chunk, s.outBuf)
	s.outBuf = s.outBuf[n:]
	return chunk, nil
}

// Query is the combined form used by the in-process APIs: it feeds a
// single already-decoded query to the device and returns the reply
// without touching the byte buffers.
func (s *Session) Query(query string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false, ErrSessionClosed
	}

	start := time.Now()
	resp := s.dev.Handle(query)
	took := time.Since(start)

	if s.observer != nil {
		s.observer.Observe(Exchange{
			Handle:   s.handle,
			Resource: s.raw,
			Device:   s.dev.Name(),
			Query:    query,
			Response: resp.String(),
			Replied:  resp.Sent(),
			At:       start,
			Took:     took,
		})
	}
	return resp.String(), resp.Sent(), nil
}

// Close releases the session and its device state. The resource
// becomes openable again; a fresh open starts from the definition
// defaults. Closing twice is harmless.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.inBuf = nil
	s.outBuf = nil
	s.mu.Unlock()

	s.manager.release(s)
	return nil
}
