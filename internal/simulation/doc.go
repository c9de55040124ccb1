// Package simulation implements the device simulation engine.
//
// A Definition is the immutable, compiled form of one simulated
// instrument: its dialogues, properties, channel expansions, status
// registers, error queues, end-of-message pairs and error
// configuration. A Device is one live instance of a Definition with
// its own mutable state (property values, register bits, queued
// errors). Many Devices can share a single Definition; each owns an
// independent value arena, so two resources bound to the same
// instrument type never observe each other's state.
//
// # Message resolution
//
// Device.Handle resolves an incoming query in a fixed order:
//
//  1. Dialogues (fixed query/response pairs, including random
//     directives)
//  2. Property getters
//  3. Status register reads
//  4. Error queue reads
//  5. Property setters (prefix/pattern match with a value payload)
//
// Channel-expanded entries participate at each stage in declaration
// order. An unmatched query raises a command error: the device asserts
// the command_error flag on any bound registers, appends to any error
// queues, and replies with the configured command-error response. A
// device without an error configuration stays silent instead; minimal
// definitions rely on that permissive behaviour.
//
// # Thread safety
//
// A Device serialises Handle calls with an internal mutex so the
// state mutation and status-register side effects of one query are
// atomic with respect to concurrent callers. Definitions are
// immutable after Compile and safe to share.
package simulation
