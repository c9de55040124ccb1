//go:build integration

package mqtt

import (
	"testing"
	"time"

	"github.com/nerrad567/instrument-sim/internal/infrastructure/config"
)

// Integration tests for MQTT reconnection behaviour.
// These tests require a running MQTT broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -v ./internal/infrastructure/mqtt/...

func integrationConfig() config.MQTTConfig {
	cfg := testConfig()
	cfg.Broker.ClientID = "instrsim-integration-test"
	return cfg
}

// TestIntegration_SubscriptionRestoration verifies tracked subscriptions
// survive a simulated reconnect cycle.
func TestIntegration_SubscriptionRestoration(t *testing.T) {
	client, err := Connect(integrationConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	topics := client.Topics()
	subscribed := []string{
		topics.AllQueries(),
		topics.SystemStatus(),
	}
	for _, topic := range subscribed {
		if err := client.Subscribe(topic, 1, func(_ string, _ []byte) error { return nil }); err != nil {
			t.Fatalf("Subscribe(%q) error = %v", topic, err)
		}
	}

	// Simulate the reconnect path: restoration runs off the tracked set.
	client.handleDisconnect(nil)
	client.handleConnect()

	if got := client.SubscriptionCount(); got != len(subscribed) {
		t.Errorf("SubscriptionCount() = %d after reconnect, want %d", got, len(subscribed))
	}
	for _, topic := range subscribed {
		if !client.HasSubscription(topic) {
			t.Errorf("subscription %q lost after reconnect", topic)
		}
	}
}

// TestIntegration_MessageAfterReconnect verifies delivery still works after
// the connect handler has re-run.
func TestIntegration_MessageAfterReconnect(t *testing.T) {
	cfg := integrationConfig()
	cfg.Broker.ClientID = "instrsim-int-redeliver"

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	topics := client.Topics()
	received := make(chan string, 1)

	err = client.Subscribe(topics.AllQueries(), 1, func(topic string, _ []byte) error {
		select {
		case received <- topic:
		default:
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	client.handleConnect()

	want := topics.Query("ASRL1::INSTR")
	if err := client.Publish(want, []byte("?IDN"), 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case topic := <-received:
		if topic != want {
			t.Errorf("topic = %q, want %q", topic, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message after reconnect")
	}
}
