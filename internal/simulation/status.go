package simulation

import "strconv"

// Error kind names shared between devices and their definitions.
const (
	// ErrorKindCommand is raised for malformed or unmatched queries and
	// for setter payloads that violate the property value spec.
	ErrorKindCommand = "command_error"

	// ErrorKindQuery is raised when a read is attempted with no
	// response available.
	ErrorKindQuery = "query_error"
)

// registerDef is the immutable description of one status register:
// the query that reads it and the bit weight of each error kind it
// accumulates.
type registerDef struct {
	query       string
	weights     map[string]uint64
	clearOnRead bool
}

// queueDef is the immutable description of one error queue: the query
// that pops it, the message recorded per error kind, and the response
// returned when the queue is empty.
type queueDef struct {
	query    string
	messages map[string]Response
	empty    Response
}

// assertFlag sets the bits for an error kind in a device's register
// state. Unknown kinds are a silent no-op per register; the device
// logs them once at the Handle level.
func (d *Device) assertFlag(kind string) (known bool) {
	for i, reg := range d.def.registers {
		if w, ok := reg.weights[kind]; ok {
			d.registers[i] |= w
			known = true
		}
	}
	return known
}

// readRegister renders the current register value as its decimal
// string form and applies the clear-on-read policy.
func (d *Device) readRegister(i int) Response {
	value := d.registers[i]
	if d.def.registers[i].clearOnRead {
		d.registers[i] = 0
	}
	return Text(strconv.FormatUint(value, 10))
}

// pushQueues appends the message for an error kind to every error
// queue that records it.
func (d *Device) pushQueues(kind string) {
	for i, q := range d.def.queues {
		if msg, ok := q.messages[kind]; ok {
			d.queues[i] = append(d.queues[i], msg)
		}
	}
}

// popQueue returns the oldest queued error, or the queue's empty
// response when nothing is pending.
func (d *Device) popQueue(i int) Response {
	if len(d.queues[i]) == 0 {
		return d.def.queues[i].empty
	}
	head := d.queues[i][0]
	d.queues[i] = d.queues[i][1:]
	return head
}
