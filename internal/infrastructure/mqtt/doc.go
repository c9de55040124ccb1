// Package mqtt provides MQTT client connectivity for the simulator.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The simulator exposes its instruments over an MQTT request/response
// bus: clients publish a query to {prefix}/query/{resource} and the
// bridge publishes the instrument's reply to {prefix}/response/{resource}.
// This lets test harnesses drive simulated instruments without a VISA
// stack on their side.
//
//	Test Harness ↔ MQTT Broker ↔ Simulator Bridge
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to all inbound queries
//	topics := client.Topics()
//	err = client.Subscribe(topics.AllQueries(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish a response
//	client.Publish(topics.Response("ASRL1::INSTR"), []byte("100.00"), 1, false)
package mqtt
