// Package config loads the simulator's YAML configuration and fills
// in defaults for anything the file leaves out.
//
// A single Config covers every component: which definition files to
// load, the history database, the MQTT query bus, the HTTP API, and
// telemetry. Loading happens once at startup; environment variables
// of the form INSTRSIM_* override individual fields afterwards, which
// is the intended route for broker passwords and InfluxDB tokens.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//	srv, err := api.New(api.Deps{Config: cfg.API, ...})
package config
