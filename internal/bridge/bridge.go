package bridge

import (
	"errors"
	"sync"

	"github.com/nerrad567/instrument-sim/internal/infrastructure/mqtt"
	"github.com/nerrad567/instrument-sim/internal/session"
)

// ErrNotStarted is returned when the bridge is used before Start.
var ErrNotStarted = errors.New("bridge: not started")

// Bridge dispatches MQTT queries to simulated instruments and publishes
// their replies. One session is held per resource, opened on demand.
type Bridge struct {
	mqtt    MQTTClient
	manager *session.Manager
	topics  mqtt.Topics
	qos     byte

	// sessions holds bridge-owned sessions keyed by resource name.
	sessions  map[string]*session.Session
	sessionMu sync.Mutex

	started bool
	stateMu sync.Mutex

	logger   Logger
	loggerMu sync.RWMutex
}

// MQTTClient is the interface for MQTT operations.
// This allows mocking in tests; *mqtt.Client satisfies it.
type MQTTClient interface {
	// Publish sends a message to a topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error

	// Unsubscribe removes a subscription.
	Unsubscribe(topic string) error

	// IsConnected returns true if connected to the broker.
	IsConnected() bool
}

// Logger is the optional structured logger interface.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options holds configuration for creating a bridge.
type Options struct {
	// Client is the MQTT client implementation.
	Client MQTTClient

	// Manager owns the instrument sessions.
	Manager *session.Manager

	// Topics builds the query/response topic names.
	Topics mqtt.Topics

	// QoS is the quality of service level for publishes and the
	// query subscription.
	QoS byte

	// Logger is optional; nil disables bridge logging.
	Logger Logger
}

// New creates a bridge. Call Start to begin dispatching.
func New(opts Options) (*Bridge, error) {
	if opts.Client == nil {
		return nil, errors.New("bridge: MQTT client is required")
	}
	if opts.Manager == nil {
		return nil, errors.New("bridge: session manager is required")
	}
	return &Bridge{
		mqtt:     opts.Client,
		manager:  opts.Manager,
		topics:   opts.Topics,
		qos:      opts.QoS,
		sessions: make(map[string]*session.Session),
		logger:   opts.Logger,
	}, nil
}

// Start subscribes to the query topic tree. Safe to call once.
func (b *Bridge) Start() error {
	b.stateMu.Lock()
	defer b.stateMu.Unlock()
	if b.started {
		return nil
	}

	filter := b.topics.AllQueries()
	if err := b.mqtt.Subscribe(filter, b.qos, b.handleQuery); err != nil {
		return err
	}
	b.started = true
	b.logInfo("bridge started", "filter", filter)
	return nil
}

// Stop unsubscribes from the query tree and closes all bridge-owned
// sessions. Instrument state is discarded; a later Start begins fresh.
func (b *Bridge) Stop() {
	b.stateMu.Lock()
	if !b.started {
		b.stateMu.Unlock()
		return
	}
	b.started = false
	b.stateMu.Unlock()

	if err := b.mqtt.Unsubscribe(b.topics.AllQueries()); err != nil {
		b.logError("unsubscribe from queries", err)
	}

	b.sessionMu.Lock()
	for resource, sess := range b.sessions {
		if err := sess.Close(); err != nil {
			b.logError("close session", err)
		}
		delete(b.sessions, resource)
	}
	b.sessionMu.Unlock()

	b.logInfo("bridge stopped")
}

// handleQuery dispatches one inbound query message.
func (b *Bridge) handleQuery(topic string, payload []byte) error {
	resource, ok := b.topics.ResourceFromQuery(topic)
	if !ok {
		b.logDebug("ignoring message on non-query topic", "topic", topic)
		return nil
	}

	query := string(payload)
	sess, err := b.sessionFor(resource)
	if err != nil {
		b.publishError(resource, err)
		return err
	}

	response, replied, err := sess.Query(query)
	if errors.Is(err, session.ErrSessionClosed) {
		// Session was closed out from under us (e.g. via the API).
		// Drop the stale handle and retry once on a fresh one.
		b.dropSession(resource, sess)
		if sess, err = b.sessionFor(resource); err == nil {
			response, replied, err = sess.Query(query)
		}
	}
	if err != nil {
		b.publishError(resource, err)
		return err
	}

	b.logDebug("query dispatched",
		"resource", resource,
		"query", query,
		"replied", replied)

	if !replied {
		return nil
	}
	return b.mqtt.Publish(b.topics.Response(resource), []byte(response), b.qos, false)
}

// sessionFor returns the bridge-owned session for a resource, opening
// one on first use.
func (b *Bridge) sessionFor(resource string) (*session.Session, error) {
	b.sessionMu.Lock()
	defer b.sessionMu.Unlock()

	if sess, ok := b.sessions[resource]; ok {
		return sess, nil
	}
	sess, err := b.manager.Open(resource)
	if err != nil {
		return nil, err
	}
	b.sessions[resource] = sess
	b.logInfo("session opened", "resource", resource, "handle", sess.Handle())
	return sess, nil
}

// dropSession removes a stale session if it is still the tracked one.
func (b *Bridge) dropSession(resource string, stale *session.Session) {
	b.sessionMu.Lock()
	if b.sessions[resource] == stale {
		delete(b.sessions, resource)
	}
	b.sessionMu.Unlock()
}

// publishError reports a dispatch failure on the error topic.
func (b *Bridge) publishError(resource string, dispatchErr error) {
	b.logError("query dispatch failed", dispatchErr)
	topic := b.topics.Errors(resource)
	if err := b.mqtt.Publish(topic, []byte(dispatchErr.Error()), b.qos, false); err != nil {
		b.logError("publish error message", err)
	}
}

// SessionCount returns the number of bridge-owned sessions.
func (b *Bridge) SessionCount() int {
	b.sessionMu.Lock()
	defer b.sessionMu.Unlock()
	return len(b.sessions)
}

// SetLogger sets the logger for the bridge.
func (b *Bridge) SetLogger(logger Logger) {
	b.loggerMu.Lock()
	b.logger = logger
	b.loggerMu.Unlock()
}

func (b *Bridge) log() Logger {
	b.loggerMu.RLock()
	defer b.loggerMu.RUnlock()
	return b.logger
}

func (b *Bridge) logInfo(msg string, keysAndValues ...any) {
	if logger := b.log(); logger != nil {
		logger.Info(msg, keysAndValues...)
	}
}

func (b *Bridge) logError(msg string, err error) {
	if logger := b.log(); logger != nil {
		logger.Error(msg, "error", err)
	}
}

func (b *Bridge) logDebug(msg string, keysAndValues ...any) {
	if logger := b.log(); logger != nil {
		logger.Debug(msg, keysAndValues...)
	}
}
