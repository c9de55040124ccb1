package definition

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nerrad567/instrument-sim/internal/simulation"
)

// Keys of status register and error queue mappings that do not name
// error kinds.
const (
	keyQuery       = "q"
	keyDefault     = "default"
	keyStrict      = "strict"
	keyClearOnRead = "clear_on_read"
)

// compileDevice turns a merged device spec into an immutable
// simulation definition.
func compileDevice(name string, spec *deviceSpec) (*simulation.Definition, error) {
	def := simulation.NewDefinition(name, spec.Delimiter)

	if err := compileErrorConfig(def, spec.Error); err != nil {
		return nil, fmt.Errorf("device %q: %w", name, err)
	}

	for class, pair := range spec.EOM {
		iface, resClass, err := splitResourceClass(class)
		if err != nil {
			return nil, fmt.Errorf("device %q: %w", name, err)
		}
		def.AddEOM(iface, resClass, simulation.EOMPair{
			Query:    unescape(pair.Q),
			Response: unescape(pair.R),
		})
	}

	for _, dia := range spec.Dialogues {
		if err := compileDialogue(def, dia); err != nil {
			return nil, fmt.Errorf("device %q: malformed dialogue %q: %w", name, dia.Q, err)
		}
	}

	for _, item := range spec.Properties.items {
		if err := compileProperty(def, item.name, item.spec); err != nil {
			return nil, fmt.Errorf("device %q: malformed property %q: %w", name, item.name, err)
		}
	}

	for _, item := range spec.Channels.items {
		if err := compileChannelGroup(def, item.name, item.spec); err != nil {
			return nil, fmt.Errorf("device %q: malformed channel group %q: %w", name, item.name, err)
		}
	}

	return def, nil
}

// compileErrorConfig installs error responses, status registers and
// error queues.
func compileErrorConfig(def *simulation.Definition, spec *errorSpec) error {
	if spec == nil {
		return nil
	}

	def.SetErrorResponse(simulation.ErrorKindCommand, optionalResponse(spec.Response.CommandError))
	def.SetErrorResponse(simulation.ErrorKindQuery, optionalResponse(spec.Response.QueryError))

	for _, reg := range spec.StatusRegister {
		query, ok := reg[keyQuery]
		if !ok {
			return fmt.Errorf("%w: status register without a query", ErrFormat)
		}

		clearOnRead := false
		weights := make(map[string]uint64)
		for key, value := range reg {
			switch key {
			case keyQuery:
			case keyClearOnRead:
				clearOnRead = strings.EqualFold(value, "true")
			default:
				weight, err := strconv.ParseUint(value, 10, 64)
				if err != nil {
					return fmt.Errorf("%w: status register weight %q=%q is not an integer",
						ErrFormat, key, value)
				}
				weights[key] = weight
			}
		}
		def.AddStatusRegister(unescape(query), weights, clearOnRead)
	}

	for _, queue := range spec.ErrorQueue {
		query, ok := queue[keyQuery]
		if !ok {
			return fmt.Errorf("%w: error queue without a query", ErrFormat)
		}
		dflt, ok := queue[keyDefault]
		if !ok {
			return fmt.Errorf("%w: error queue without a default response", ErrFormat)
		}

		messages := make(map[string]simulation.Response)
		for key, value := range queue {
			switch key {
			case keyQuery, keyDefault, keyStrict:
			default:
				messages[key] = simulation.Text(unescape(value))
			}
		}
		def.AddErrorQueue(unescape(query), messages, simulation.Text(unescape(dflt)))
	}

	return nil
}

// compileDialogue adds one dialogue entry, fixed or random.
func compileDialogue(def *simulation.Definition, dia dialogueSpec) error {
	if dia.Q == "" {
		return fmt.Errorf("%w: dialogue without a query", ErrFormat)
	}
	query := trim(unescape(dia.Q))

	if dia.Random != nil {
		rd, err := simulation.NewRandomDirective(
			dia.Random.Min, dia.Random.Max, dia.Random.Count,
			dia.Random.Format, dia.Random.Sep,
		)
		if err != nil {
			return err
		}
		def.AddRandomDialogue(query, rd)
		return nil
	}

	def.AddDialogue(query, optionalResponse(dia.R))
	return nil
}

// compileProperty adds one property with its getter, setter and value
// spec.
func compileProperty(def *simulation.Definition, name string, spec propertySpec) error {
	getter, setter, vs, err := buildProperty(spec)
	if err != nil {
		return err
	}
	return def.AddProperty(name, spec.Default, getter, setter, vs)
}

// compileChannelGroup expands a channel group across its identifiers.
func compileChannelGroup(def *simulation.Definition, name string, spec channelSpec) error {
	ids := spec.IDs
	if len(ids) == 0 && spec.Range != nil {
		expanded, err := simulation.ChannelSpan(spec.Range.Start, spec.Range.End)
		if err != nil {
			return err
		}
		ids = expanded
	}

	dialogues := make([]simulation.ChannelDialogue, 0, len(spec.Dialogues))
	for _, dia := range spec.Dialogues {
		if dia.Q == "" {
			return fmt.Errorf("%w: dialogue without a query", ErrFormat)
		}
		dialogues = append(dialogues, simulation.ChannelDialogue{
			Query:    trim(unescape(dia.Q)),
			Response: optionalResponse(dia.R),
		})
	}

	props := make([]simulation.ChannelProperty, 0, len(spec.Properties.items))
	for _, item := range spec.Properties.items {
		getter, setter, vs, err := buildProperty(item.spec)
		if err != nil {
			return fmt.Errorf("property %q: %w", item.name, err)
		}
		props = append(props, simulation.ChannelProperty{
			Name:    item.name,
			Default: item.spec.Default,
			Getter:  getter,
			Setter:  setter,
			Spec:    vs,
		})
	}

	return def.AddChannelGroup(name, ids, dialogues, props)
}

// buildProperty converts the YAML property shape into simulation
// getter/setter specs and a value spec.
func buildProperty(spec propertySpec) (*simulation.GetterSpec, *simulation.SetterSpec, *simulation.ValueSpec, error) {
	var getter *simulation.GetterSpec
	if spec.Getter != nil {
		getter = &simulation.GetterSpec{
			Query:    trim(unescape(spec.Getter.Q)),
			Response: trim(unescape(spec.Getter.R)),
		}
	}

	var setter *simulation.SetterSpec
	if spec.Setter != nil {
		setter = &simulation.SetterSpec{
			Query:    trim(unescape(spec.Setter.Q)),
			Response: optionalResponse(spec.Setter.R),
		}
		if spec.Setter.E != nil {
			setter.Error = simulation.Text(trim(unescape(*spec.Setter.E)))
			setter.HasError = true
		}
	}

	var vs *simulation.ValueSpec
	if spec.Specs != nil {
		built, err := simulation.NewValueSpec(
			simulation.ValueType(spec.Specs.Type),
			spec.Specs.Min, spec.Specs.Max, spec.Specs.Valid,
		)
		if err != nil {
			return nil, nil, nil, err
		}
		vs = built
	}

	return getter, setter, vs, nil
}

// optionalResponse maps a missing or null document value to
// NoResponse.
func optionalResponse(s *string) simulation.Response {
	if s == nil {
		return simulation.NoResponse
	}
	return simulation.Text(trim(unescape(*s)))
}

// splitResourceClass splits an eom key like "ASRL INSTR" into its
// interface type and resource class.
func splitResourceClass(key string) (iface, class string, err error) {
	parts := strings.Fields(key)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: eom key %q, expected \"<interface> <class>\"", ErrFormat, key)
	}
	return parts[0], parts[1], nil
}

// trim strips the surrounding spaces definition strings often carry.
func trim(s string) string {
	return strings.Trim(s, " ")
}
