package mqtt

import (
	"fmt"
)

// maxPayloadSize caps outbound messages at 1MB. Instrument responses
// are tiny, so anything near this limit is a bug upstream, and the
// cap keeps a runaway response from hitting broker limits.
const maxPayloadSize = 1 << 20

// Publish sends one message to the broker and waits for the
// configured timeout. The bridge uses it for response and error
// payloads:
//
//	topic := client.Topics().Response("ASRL1::INSTR")
//	err := client.Publish(topic, []byte("100.00"), 1, false)
//
// retained should stay false for responses; the only retained topic
// the simulator maintains is the system status one, which the client
// manages itself.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}
