package simulation

import (
	"math/rand/v2"
	"sync"
)

// Logger defines the logging interface used by a Device.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Device is one live instance of a Definition.
//
// It owns the mutable state of a simulated instrument: the property
// value arena, status register bits and pending error queues. The
// shared Definition is never written through a Device, so any number
// of instances can be created from one definition.
//
// All public methods are thread-safe.
type Device struct {
	def *Definition

	mu        sync.Mutex
	values    []string   // property value arena, indexed like def.props
	registers []uint64   // status register values, indexed like def.registers
	queues    [][]Response

	rng    *rand.Rand
	logger Logger
}

// NewDevice instantiates fresh device state from the definition.
// Every property starts at its default value; registers and queues
// start empty.
func (d *Definition) NewDevice() *Device {
	values := make([]string, len(d.props))
	for i, p := range d.props {
		values[i] = p.dflt
	}

	return &Device{
		def:       d,
		values:    values,
		registers: make([]uint64, len(d.registers)),
		queues:    make([][]Response, len(d.queues)),
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the device.
func (d *Device) SetLogger(logger Logger) {
	d.logger = logger
}

// Name returns the device name from the definition document.
func (d *Device) Name() string { return d.def.name }

// Delimiter returns the multi-query message delimiter.
func (d *Device) Delimiter() string { return d.def.delimiter }

// EOM returns the end-of-message pair for an interface type and
// resource class. When the definition carries no entry for the pair,
// it falls back to a line feed in both directions and logs a warning,
// matching the permissive behaviour expected of minimal definitions.
func (d *Device) EOM(iface, class string) EOMPair {
	if pair, ok := d.def.EOM(iface, class); ok {
		return pair
	}
	d.logger.Warn("no eom for resource class, using LF",
		"device", d.def.name, "interface", iface, "class", class)
	return EOMPair{Query: "\n", Response: "\n"}
}

// Handle resolves an incoming query to a response, updating property
// state, status registers and error queues as a side effect.
//
// Resolution order: dialogues, getters, status registers, error
// queues, setters. An unmatched query raises a command error; for
// devices without an error configuration that degrades to silence.
func (d *Device) Handle(query string) Response {
	d.mu.Lock()
	defer d.mu.Unlock()

	if resp, ok := d.matchDialogues(query); ok {
		return resp
	}
	if resp, ok := d.matchGetters(query); ok {
		return resp
	}
	if resp, ok := d.matchRegisters(query); ok {
		return resp
	}
	if resp, ok := d.matchQueues(query); ok {
		return resp
	}
	if resp, ok := d.matchSetters(query); ok {
		return resp
	}

	d.logger.Debug("unmatched query", "device", d.def.name, "query", query)
	return d.raiseError(ErrorKindCommand)
}

// RaiseError asserts an error kind outside of query resolution. The
// transport layer uses it to report query errors when a read is
// attempted with no response pending.
func (d *Device) RaiseError(kind string) Response {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.raiseError(kind)
}

// raiseError asserts register flags, feeds error queues and returns
// the configured device-level response for the kind. Callers must
// hold d.mu.
func (d *Device) raiseError(kind string) Response {
	known := d.assertFlag(kind)
	if !known && len(d.def.registers) > 0 {
		d.logger.Warn("error kind not declared in any status register",
			"device", d.def.name, "kind", kind)
	}
	d.pushQueues(kind)

	if resp, ok := d.def.errorResponses[kind]; ok {
		return resp
	}
	return NoResponse
}

// matchDialogues tries the fixed query/response pairs, including
// random directives.
func (d *Device) matchDialogues(query string) (Response, bool) {
	for i := range d.def.dialogues {
		entry := &d.def.dialogues[i]
		if entry.query != query {
			continue
		}
		if entry.random != nil {
			return entry.random.generate(d.rng), true
		}
		d.logger.Debug("matched dialogue", "device", d.def.name, "query", query)
		return entry.response, true
	}
	return NoResponse, false
}

// matchGetters tries property getter queries.
func (d *Device) matchGetters(query string) (Response, bool) {
	for i := range d.def.getters {
		g := &d.def.getters[i]
		if g.query != query {
			continue
		}
		d.logger.Debug("matched getter",
			"device", d.def.name, "property", d.def.props[g.prop].name)
		return Text(g.format.Format(d.values[g.prop])), true
	}
	return NoResponse, false
}

// matchRegisters tries status register read queries.
func (d *Device) matchRegisters(query string) (Response, bool) {
	for i := range d.def.registers {
		if d.def.registers[i].query == query {
			return d.readRegister(i), true
		}
	}
	return NoResponse, false
}

// matchQueues tries error queue read queries.
func (d *Device) matchQueues(query string) (Response, bool) {
	for i := range d.def.queues {
		if d.def.queues[i].query == query {
			return d.popQueue(i), true
		}
	}
	return NoResponse, false
}

// matchSetters tries property setter patterns. A query whose payload
// fails structural parsing falls through to the next setter; a query
// that parses but violates the value spec raises a command error and
// leaves the stored value unchanged.
func (d *Device) matchSetters(query string) (Response, bool) {
	for i := range d.def.setters {
		s := &d.def.setters[i]
		payload, err := s.pattern.Parse(query)
		if err != nil {
			continue
		}

		prop := &d.def.props[s.prop]
		canonical, err := prop.spec.Validate(payload)
		if err != nil {
			d.logger.Debug("setter payload rejected",
				"device", d.def.name, "property", prop.name, "error", err)
			resp := d.raiseError(ErrorKindCommand)
			if s.hasErr {
				resp = s.errResp
			}
			return resp, true
		}

		d.values[s.prop] = canonical
		d.logger.Debug("matched setter",
			"device", d.def.name, "property", prop.name, "value", canonical)
		return s.response, true
	}
	return NoResponse, false
}

// PropertyValue returns the current value of a named property.
func (d *Device) PropertyValue(name string) (string, bool) {
	idx, ok := d.def.propIndex[name]
	if !ok {
		return "", false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.values[idx], true
}

// PropertySnapshot is a point-in-time view of one property.
type PropertySnapshot struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Snapshot returns the current value of every property in declaration
// order. Used by the HTTP API for state inspection.
func (d *Device) Snapshot() []PropertySnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	snap := make([]PropertySnapshot, len(d.def.props))
	for i, p := range d.def.props {
		snap[i] = PropertySnapshot{Name: p.name, Value: d.values[i]}
	}
	return snap
}
