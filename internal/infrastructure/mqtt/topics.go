package mqtt

import "strings"

// Topics provides builders for the simulator's MQTT topic names under a
// configurable prefix. Using these helpers keeps topic naming consistent
// across the bridge and anything that talks to it.
//
// All topics use the flat scheme: {prefix}/{category}/{resource}
//
//	topics := mqtt.Topics{Prefix: "instrsim"}
//	queryTopic := topics.Query("ASRL1::INSTR")
//	// Returns: "instrsim/query/ASRL1::INSTR"
//
// VISA resource names contain "::", which is legal inside an MQTT topic
// segment, so resources are embedded verbatim.
type Topics struct {
	// Prefix is the leading topic segment, e.g. "instrsim".
	Prefix string
}

// Query returns the inbound query topic for a resource.
//
// Example: instrsim/query/ASRL1::INSTR
func (t Topics) Query(resource string) string {
	return t.Prefix + "/query/" + resource
}

// Response returns the response topic for a resource.
//
// Example: instrsim/response/ASRL1::INSTR
func (t Topics) Response(resource string) string {
	return t.Prefix + "/response/" + resource
}

// Errors returns the error topic for a resource, used when a query could
// not be dispatched at all (unknown resource, session failure).
//
// Example: instrsim/error/ASRL1::INSTR
func (t Topics) Errors(resource string) string {
	return t.Prefix + "/error/" + resource
}

// SystemStatus returns the retained status topic used for the LWT and
// online announcements.
//
// Example: instrsim/system/status
func (t Topics) SystemStatus() string {
	return t.Prefix + "/system/status"
}

// AllQueries returns a pattern matching every inbound query topic.
//
// Pattern: instrsim/query/#
//
// The multi-level wildcard is deliberate: resource names contain "::"
// but never "/", so the suffix after query/ is always a single segment.
func (t Topics) AllQueries() string {
	return t.Prefix + "/query/#"
}

// ResourceFromQuery extracts the resource name from an inbound query
// topic. Returns false when the topic does not match the query scheme.
func (t Topics) ResourceFromQuery(topic string) (string, bool) {
	prefix := t.Prefix + "/query/"
	if !strings.HasPrefix(topic, prefix) {
		return "", false
	}
	resource := topic[len(prefix):]
	if resource == "" {
		return "", false
	}
	return resource, true
}
