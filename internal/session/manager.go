package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/nerrad567/instrument-sim/internal/definition"
	"github.com/nerrad567/instrument-sim/internal/resource"
)

// Logger defines the logging interface used by the Manager. It
// matches the device logging interface so one logger serves both.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Manager owns the loaded resource bindings and the live sessions
// opened against them.
type Manager struct {
	set      *definition.Set
	logger   Logger
	observer Observer

	mu       sync.Mutex
	byHandle map[string]*Session
	byRes    map[string]*Session
}

// NewManager wraps a loaded definition set.
func NewManager(set *definition.Set) *Manager {
	return &Manager{
		set:      set,
		byHandle: make(map[string]*Session),
		byRes:    make(map[string]*Session),
	}
}

// SetLogger sets the logger for the manager and the devices it
// spawns.
func (m *Manager) SetLogger(logger Logger) {
	m.logger = logger
}

// SetObserver installs the exchange observer handed to new sessions.
// It must be called before the first Open.
func (m *Manager) SetObserver(o Observer) {
	m.observer = o
}

func (m *Manager) log() Logger {
	if m.logger == nil {
		return noopLogger{}
	}
	return m.logger
}

// Resources lists the resource names the manager can open.
func (m *Manager) Resources() []string {
	return m.set.Resources()
}

// Open spawns a fresh device for a bound resource and returns the
// session holding it. The resource name must parse and must be bound;
// a resource already held by a live session fails with
// ErrResourceBusy.
func (m *Manager) Open(resourceName string) (*Session, error) {
	name, err := resource.Parse(resourceName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceNotFound, err)
	}

	dev, err := m.set.NewDevice(resourceName)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrResourceNotFound, resourceName)
	}
	if m.logger != nil {
		dev.SetLogger(m.logger)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, held := m.byRes[resourceName]; held {
		return nil, fmt.Errorf("%w: %q", ErrResourceBusy, resourceName)
	}

	s := &Session{
		handle:   uuid.NewString(),
		name:     name,
		raw:      resourceName,
		dev:      dev,
		eom:      dev.EOM(name.Interface, name.Class),
		manager:  m,
		observer: m.observer,
	}
	m.byHandle[s.handle] = s
	m.byRes[resourceName] = s

	m.log().Info("session opened",
		"handle", s.handle,
		"resource", resourceName,
		"device", dev.Name(),
	)
	return s, nil
}

// Lookup returns the open session holding a resource, if any.
func (m *Manager) Lookup(resourceName string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byRes[resourceName]
	return s, ok
}

// Get looks up a live session by handle.
func (m *Manager) Get(handle string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byHandle[handle]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHandle, handle)
	}
	return s, nil
}

// Close closes a live session by handle.
func (m *Manager) Close(handle string) error {
	s, err := m.Get(handle)
	if err != nil {
		return err
	}
	return s.Close()
}

// Sessions returns the live sessions in no particular order.
func (m *Manager) Sessions() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, 0, len(m.byHandle))
	for _, s := range m.byHandle {
		out = append(out, s)
	}
	return out
}

// CloseAll closes every live session, for shutdown.
func (m *Manager) CloseAll() {
	for _, s := range m.Sessions() {
		_ = s.Close()
	}
}

// release drops a closed session from the indexes.
func (m *Manager) release(s *Session) {
	m.mu.Lock()
	delete(m.byHandle, s.handle)
	delete(m.byRes, s.raw)
	m.mu.Unlock()

	m.log().Info("session closed", "handle", s.handle, "resource", s.raw)
}
