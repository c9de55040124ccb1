// Package logging builds the simulator's structured logger on top of
// log/slog.
//
// Every entry carries the service name and version; components add
// their own identity with With. The handler format, level, and
// destination come from the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// JSON is the production default; text reads better when running the
// simulator by hand.
package logging
