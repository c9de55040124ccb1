// Package session exposes the open/write/read/close surface of the
// simulated instruments.
//
// A Manager owns the compiled resource bindings. Opening a resource
// spawns a fresh device instance and returns a Session identified by
// a uuid handle; the device state lives for exactly as long as the
// session and is discarded on close. Opens are exclusive: a resource
// already held by a live session fails with ErrResourceBusy until
// that session closes.
//
// Sessions speak bytes. Write buffers until the device's query
// terminator arrives, strips it, splits the message on the device
// delimiter and hands each query to the device; replies accumulate in
// a read buffer with the response terminator appended. Read drains
// that buffer in caller-sized chunks.
package session
