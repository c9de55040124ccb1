// Package influxdb provides InfluxDB connectivity for the instrument
// simulator.
//
// It wraps the official influxdb-client-go v2 library with local
// patterns for connection management, metric writing, and health
// monitoring.
//
// # Purpose
//
// This package handles time-series data storage for:
//   - Query/response traffic per simulated resource
//   - Session open/close counts
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "lab",
//	    Bucket: "instrsim",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Write traffic metrics
//	client.WriteExchangeMetric("ASRL1::INSTR", "signal generator", true, took)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a
// callback. Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size,
// flush_interval). This reduces network overhead for high-frequency
// traffic.
package influxdb
