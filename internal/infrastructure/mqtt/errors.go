package mqtt

import "errors"

// Sentinel errors for the query bus client, checked by callers with
// errors.Is.
var (
	// ErrNotConnected rejects publishes and subscribes while the
	// broker link is down. Paho's reconnect logic restores the link
	// and the client's subscriptions in the background.
	ErrNotConnected = errors.New("mqtt: client not connected")

	// ErrConnectionFailed wraps the cause when Connect cannot reach
	// the broker within its timeout.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrPublishFailed wraps publish-side failures, including
	// oversized payloads and broker timeouts.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrSubscribeFailed wraps subscribe-side failures, including a
	// nil message handler.
	ErrSubscribeFailed = errors.New("mqtt: subscribe failed")

	// ErrUnsubscribeFailed wraps unsubscribe-side failures.
	ErrUnsubscribeFailed = errors.New("mqtt: unsubscribe failed")

	// ErrInvalidQoS rejects QoS levels outside 0..2 before they
	// reach the broker.
	ErrInvalidQoS = errors.New("mqtt: invalid QoS level (must be 0, 1, or 2)")

	// ErrInvalidTopic rejects empty topics. Topic shapes themselves
	// come from Topics, so emptiness is the only local check.
	ErrInvalidTopic = errors.New("mqtt: topic cannot be empty")
)
