package history

import (
	"context"
	"time"

	"github.com/nerrad567/instrument-sim/internal/session"
)

const (
	recorderQueueSize = 256
	recordTimeout     = 5 * time.Second
)

// Logger defines the logging interface used by the Recorder.
type Logger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Recorder adapts the repository to the session observer interface.
// Observe never blocks: exchanges queue on a channel drained by Run.
type Recorder struct {
	repo   *Repository
	queue  chan session.Exchange
	logger Logger
}

// NewRecorder wraps a repository.
func NewRecorder(repo *Repository) *Recorder {
	return &Recorder{
		repo:  repo,
		queue: make(chan session.Exchange, recorderQueueSize),
	}
}

// SetLogger sets the logger for the recorder.
func (r *Recorder) SetLogger(logger Logger) {
	r.logger = logger
}

func (r *Recorder) log() Logger {
	if r.logger == nil {
		return noopLogger{}
	}
	return r.logger
}

// Observe implements session.Observer. A full queue drops the
// exchange rather than stalling the session.
func (r *Recorder) Observe(ex session.Exchange) {
	select {
	case r.queue <- ex:
	default:
		r.log().Warn("traffic history queue full, dropping exchange",
			"resource", ex.Resource,
			"query", ex.Query,
		)
	}
}

// Run drains the queue into the repository until the context is
// cancelled. Entries already queued at cancellation are flushed.
func (r *Recorder) Run(ctx context.Context) {
	for {
		select {
		case ex := <-r.queue:
			r.store(ex)
		case <-ctx.Done():
			for {
				select {
				case ex := <-r.queue:
					r.store(ex)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) store(ex session.Exchange) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	err := r.repo.Record(ctx, Entry{
		SessionHandle: ex.Handle,
		Resource:      ex.Resource,
		Device:        ex.Device,
		Query:         ex.Query,
		Response:      ex.Response,
		Replied:       ex.Replied,
		Took:          ex.Took,
	})
	if err != nil {
		r.log().Error("recording traffic entry", "error", err, "resource", ex.Resource)
	}
}
