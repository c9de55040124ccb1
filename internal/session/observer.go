package session

import "time"

// Exchange describes one handled query and its outcome.
type Exchange struct {
	Handle   string
	Resource string
	Device   string
	Query    string
	Response string
	// Replied is false when the device stayed silent.
	Replied bool
	At      time.Time
	// Took is the time the device spent resolving the query.
	Took time.Duration
}

// Observer receives every exchange a session handles. Implementations
// must not block: they run on the caller's write path.
type Observer interface {
	Observe(ex Exchange)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ex Exchange)

// Observe implements Observer.
func (f ObserverFunc) Observe(ex Exchange) { f(ex) }
