// Package definition loads YAML instrument definition documents and
// compiles them into simulation definitions.
//
// A document declares devices (dialogues, properties, channels, error
// configuration, end-of-message pairs) and resources binding VISA
// resource names to those devices. Documents carry a "spec" version
// tag and may reference devices defined in other documents, either on
// disk relative to the referring document or bundled into the binary.
//
// # Loading
//
//	loader := definition.NewLoader()
//	set, err := loader.Load("instruments.yaml")
//	dev, err := set.NewDevice("ASRL1::INSTR")
//
// The returned Set is immutable: it holds one compiled
// simulation.Definition per device and the resource bindings. Every
// NewDevice call produces a fresh, independently mutable device
// state, so two opens of the same resource never share state.
//
// All loader failures are fatal for the document; a partially valid
// document registers nothing.
package definition
