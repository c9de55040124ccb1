package simulation

import "fmt"

// DefaultDelimiter separates multiple queries carried in one message
// when a device does not declare its own delimiter.
const DefaultDelimiter = ";"

// EOMPair is the end-of-message terminator pair for one resource
// class: the terminator stripped from incoming queries and the one
// appended to outgoing responses.
type EOMPair struct {
	Query    string
	Response string
}

// eomKey addresses an EOMPair by interface type and resource class,
// e.g. ("ASRL", "INSTR").
type eomKey struct {
	iface string
	class string
}

// dialogueEntry is one fixed query/response pair, or a random
// directive bound to a query.
type dialogueEntry struct {
	query    string
	response Response
	random   *RandomDirective
}

// getterEntry binds a getter query to a property arena slot and the
// format used to render its value.
type getterEntry struct {
	query  string
	prop   int
	format *FormatSpec
}

// setterEntry binds a setter pattern to a property arena slot. The
// pattern's replacement field extracts the value payload.
type setterEntry struct {
	prop     int
	pattern  *FormatSpec
	response Response
	errResp  Response
	hasErr   bool
}

// propertyDef is the immutable part of a property: its name, default
// value and value spec. The current value lives in the Device arena
// at the same index.
type propertyDef struct {
	name string
	dflt string
	spec *ValueSpec
}

// GetterSpec declares a property getter dialogue: the exact query and
// the response format spec used to render the stored value.
type GetterSpec struct {
	Query    string
	Response string
}

// SetterSpec declares a property setter dialogue: the query template
// whose replacement field carries the value, the success response and
// an optional specific error response.
type SetterSpec struct {
	Query    string
	Response Response
	Error    Response
	HasError bool
}

// Definition is the immutable, compiled description of one simulated
// instrument. Definitions are built once at load time and shared
// read-only between every Device instantiated from them.
type Definition struct {
	name      string
	delimiter string

	dialogues []dialogueEntry
	getters   []getterEntry
	setters   []setterEntry
	registers []registerDef
	queues    []queueDef

	props     []propertyDef
	propIndex map[string]int

	eoms map[eomKey]EOMPair

	errorResponses map[string]Response
	hasErrorConfig bool
}

// NewDefinition creates an empty definition for a named device.
// An empty delimiter selects DefaultDelimiter.
func NewDefinition(name, delimiter string) *Definition {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	return &Definition{
		name:           name,
		delimiter:      delimiter,
		propIndex:      make(map[string]int),
		eoms:           make(map[eomKey]EOMPair),
		errorResponses: make(map[string]Response),
	}
}

// Name returns the device name from the definition document.
func (d *Definition) Name() string { return d.name }

// Delimiter returns the multi-query message delimiter.
func (d *Definition) Delimiter() string { return d.delimiter }

// AddDialogue appends a fixed query/response pair. Entries are
// consulted in declaration order, before any property matching.
func (d *Definition) AddDialogue(query string, response Response) {
	d.dialogues = append(d.dialogues, dialogueEntry{query: query, response: response})
}

// AddRandomDialogue appends a query answered by a random directive.
func (d *Definition) AddRandomDialogue(query string, rd *RandomDirective) {
	d.dialogues = append(d.dialogues, dialogueEntry{query: query, random: rd})
}

// AddProperty registers a named piece of instrument state with its
// getter and setter dialogues.
//
// The default value is mandatory and must satisfy the value spec. A
// property declaring neither getter nor setter is rejected with
// ErrInertProperty, duplicates with ErrDuplicateProperty.
func (d *Definition) AddProperty(name, defaultValue string, getter *GetterSpec, setter *SetterSpec, spec *ValueSpec) error {
	if getter == nil && setter == nil {
		return fmt.Errorf("%w: %q", ErrInertProperty, name)
	}
	if _, exists := d.propIndex[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateProperty, name)
	}

	canonical, err := spec.Validate(defaultValue)
	if err != nil {
		return fmt.Errorf("default for property %q: %w", name, err)
	}

	idx := len(d.props)
	d.props = append(d.props, propertyDef{name: name, dflt: canonical, spec: spec})
	d.propIndex[name] = idx

	if getter != nil {
		format, err := CompileFormat(getter.Response)
		if err != nil {
			return fmt.Errorf("getter for property %q: %w", name, err)
		}
		d.getters = append(d.getters, getterEntry{query: getter.Query, prop: idx, format: format})
	}

	if setter != nil {
		pattern, err := CompileFormat(setter.Query)
		if err != nil {
			return fmt.Errorf("setter for property %q: %w", name, err)
		}
		if pattern.literal {
			return fmt.Errorf("setter for property %q: %w: query %q has no value field",
				name, ErrCoderSyntax, setter.Query)
		}
		d.setters = append(d.setters, setterEntry{
			prop:     idx,
			pattern:  pattern,
			response: setter.Response,
			errResp:  setter.Error,
			hasErr:   setter.HasError,
		})
	}

	return nil
}

// AddStatusRegister binds a register-read query to a set of error
// kind weights. clearOnRead resets the register after each read;
// the default is to accumulate across reads.
func (d *Definition) AddStatusRegister(query string, weights map[string]uint64, clearOnRead bool) {
	d.registers = append(d.registers, registerDef{
		query:       query,
		weights:     weights,
		clearOnRead: clearOnRead,
	})
	d.hasErrorConfig = true
}

// AddErrorQueue binds a queue-read query to per-kind error messages
// and an empty-queue response.
func (d *Definition) AddErrorQueue(query string, messages map[string]Response, empty Response) {
	d.queues = append(d.queues, queueDef{query: query, messages: messages, empty: empty})
	d.hasErrorConfig = true
}

// SetErrorResponse installs the device-level response for an error
// kind (ErrorKindCommand, ErrorKindQuery). Installing any error
// response marks the device as error-configured; unmatched queries
// then produce the command-error response instead of silence.
func (d *Definition) SetErrorResponse(kind string, response Response) {
	d.errorResponses[kind] = response
	d.hasErrorConfig = true
}

// AddEOM records the end-of-message pair for an interface type and
// resource class, e.g. ("ASRL", "INSTR").
func (d *Definition) AddEOM(iface, class string, pair EOMPair) {
	d.eoms[eomKey{iface: iface, class: class}] = pair
}

// EOM looks up the end-of-message pair for an interface type and
// resource class.
func (d *Definition) EOM(iface, class string) (EOMPair, bool) {
	pair, ok := d.eoms[eomKey{iface: iface, class: class}]
	return pair, ok
}

// PropertyNames returns the property names in declaration order,
// including channel-expanded instances.
func (d *Definition) PropertyNames() []string {
	names := make([]string, len(d.props))
	for i, p := range d.props {
		names[i] = p.name
	}
	return names
}
