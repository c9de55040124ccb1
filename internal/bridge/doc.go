// Package bridge exposes simulated instruments over MQTT.
//
// The bridge subscribes to the query topic tree and dispatches each
// inbound payload to the matching instrument session, publishing the
// instrument's reply on the response topic:
//
//	{prefix}/query/{resource}    → bridge → instrument
//	{prefix}/response/{resource} ← bridge ← instrument
//	{prefix}/error/{resource}    ← bridge (dispatch failures)
//
// Sessions are opened lazily on the first query for a resource and held
// open for the lifetime of the bridge, so register state and error
// queues persist across queries the way they would on a real bench.
// Commands that produce no reply (per the instrument definition)
// publish nothing.
//
// Thread Safety: all methods are safe for concurrent use. Inbound
// messages arrive on paho's handler goroutines; per-resource session
// state is guarded by the session itself.
package bridge
