package simulation

// Response is an outgoing message, or the deliberate absence of one.
//
// Definition files distinguish "reply with the empty string" from "do
// not reply at all": a dialogue without an r key, or with an explicit
// null, produces no reply. The zero Response is NoResponse.
type Response struct {
	text string
	send bool
}

// NoResponse is the absence of a reply.
var NoResponse = Response{}

// Text builds a Response carrying the given message.
func Text(s string) Response {
	return Response{text: s, send: true}
}

// Sent reports whether a reply should be written to the caller.
func (r Response) Sent() bool { return r.send }

// String returns the message text; empty for NoResponse.
func (r Response) String() string { return r.text }
