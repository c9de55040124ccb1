package definition

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// document is the root of one YAML definition document.
type document struct {
	Spec      string                  `yaml:"spec"`
	Devices   map[string]*deviceSpec  `yaml:"devices"`
	Resources map[string]resourceSpec `yaml:"resources"`
}

// deviceSpec mirrors one device entry of the document.
type deviceSpec struct {
	Delimiter  string             `yaml:"delimiter"`
	EOM        map[string]eomSpec `yaml:"eom"`
	Error      *errorSpec         `yaml:"error"`
	Dialogues  []dialogueSpec     `yaml:"dialogues"`
	Properties propertyMap        `yaml:"properties"`
	Channels   channelMap         `yaml:"channels"`
	Bases      []baseRef          `yaml:"bases"`
}

// eomSpec is the end-of-message pair for one resource class.
type eomSpec struct {
	Q string `yaml:"q"`
	R string `yaml:"r"`
}

// errorSpec is the device error configuration.
type errorSpec struct {
	Response       errorResponseSpec   `yaml:"response"`
	StatusRegister []map[string]string `yaml:"status_register"`
	ErrorQueue     []map[string]string `yaml:"error_queue"`
}

// errorResponseSpec holds the device-level error responses. A nil
// pointer means "no reply" for that kind.
type errorResponseSpec struct {
	CommandError *string `yaml:"command_error"`
	QueryError   *string `yaml:"query_error"`
}

// dialogueSpec is one dialogue entry: a fixed response, no response,
// or a random directive.
type dialogueSpec struct {
	Q      string      `yaml:"q"`
	R      *string     `yaml:"r"`
	Random *randomSpec `yaml:"random"`
}

// randomSpec configures a random directive response.
type randomSpec struct {
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Count  int     `yaml:"count"`
	Format string  `yaml:"format"`
	Sep    string  `yaml:"sep"`
}

// propertySpec mirrors one property entry.
type propertySpec struct {
	Default string      `yaml:"default"`
	Getter  *getterSpec `yaml:"getter"`
	Setter  *setterSpec `yaml:"setter"`
	Specs   *specsSpec  `yaml:"specs"`
}

type getterSpec struct {
	Q string `yaml:"q"`
	R string `yaml:"r"`
}

type setterSpec struct {
	Q string  `yaml:"q"`
	R *string `yaml:"r"`
	E *string `yaml:"e"`
}

// specsSpec mirrors the property value constraints.
type specsSpec struct {
	Type  string   `yaml:"type"`
	Min   *float64 `yaml:"min"`
	Max   *float64 `yaml:"max"`
	Valid []string `yaml:"valid"`
}

// channelSpec mirrors one channel group entry.
type channelSpec struct {
	IDs        []string       `yaml:"ids"`
	Range      *channelRange  `yaml:"range"`
	Dialogues  []dialogueSpec `yaml:"dialogues"`
	Properties propertyMap    `yaml:"properties"`
}

type channelRange struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// baseRef references a device whose definition fills the gaps of the
// referring device.
type baseRef struct {
	Device   string `yaml:"device"`
	Filename string `yaml:"filename"`
	Bundled  bool   `yaml:"bundled"`
}

// resourceSpec binds a resource name to a device, optionally defined
// in another document.
type resourceSpec struct {
	Device   string `yaml:"device"`
	Filename string `yaml:"filename"`
	Bundled  bool   `yaml:"bundled"`
}

// namedProperty pairs a property name with its spec, preserving the
// document's declaration order.
type namedProperty struct {
	name string
	spec propertySpec
}

// propertyMap decodes a YAML properties mapping while preserving key
// order. Plain Go maps would lose it, and declaration order encodes
// setter match priority.
type propertyMap struct {
	items []namedProperty
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *propertyMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("properties must be a mapping, got %s", nodeKind(node))
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var name string
		if err := node.Content[i].Decode(&name); err != nil {
			return fmt.Errorf("property name: %w", err)
		}
		var spec propertySpec
		if err := node.Content[i+1].Decode(&spec); err != nil {
			return fmt.Errorf("property %q: %w", name, err)
		}
		m.items = append(m.items, namedProperty{name: name, spec: spec})
	}
	return nil
}

// has reports whether a property name is declared.
func (m *propertyMap) has(name string) bool {
	for _, item := range m.items {
		if item.name == name {
			return true
		}
	}
	return false
}

// namedChannel pairs a channel group name with its spec.
type namedChannel struct {
	name string
	spec channelSpec
}

// channelMap decodes a YAML channels mapping while preserving key
// order.
type channelMap struct {
	items []namedChannel
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *channelMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("channels must be a mapping, got %s", nodeKind(node))
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var name string
		if err := node.Content[i].Decode(&name); err != nil {
			return fmt.Errorf("channel group name: %w", err)
		}
		var spec channelSpec
		if err := node.Content[i+1].Decode(&spec); err != nil {
			return fmt.Errorf("channel group %q: %w", name, err)
		}
		m.items = append(m.items, namedChannel{name: name, spec: spec})
	}
	return nil
}

// has reports whether a channel group name is declared.
func (m *channelMap) has(name string) bool {
	for _, item := range m.items {
		if item.name == name {
			return true
		}
	}
	return false
}

// nodeKind names a YAML node kind for error messages.
func nodeKind(node *yaml.Node) string {
	switch node.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}

// unescape decodes the literal carriage-return and line-feed escape
// sequences used by definition strings. The document format predates
// YAML block scalars, so terminators are written as "\r" and "\n"
// inside plain scalars.
func unescape(s string) string {
	s = strings.ReplaceAll(s, `\r`, "\r")
	return strings.ReplaceAll(s, `\n`, "\n")
}
