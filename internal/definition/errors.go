package definition

import "errors"

// Domain errors for the definition package.
var (
	// ErrFormat is returned when a document is structurally invalid:
	// not YAML, missing required keys, malformed dialogues or
	// properties.
	ErrFormat = errors.New("definition: malformed document")

	// ErrSpecVersion is returned when a document carries a missing,
	// unparseable or incompatible spec version tag.
	ErrSpecVersion = errors.New("definition: unsupported spec version")

	// ErrUnknownDevice is returned when a resource binding references a
	// device name that no loaded document defines.
	ErrUnknownDevice = errors.New("definition: unknown device")

	// ErrDuplicateResource is returned when two bindings claim the same
	// resource identifier.
	ErrDuplicateResource = errors.New("definition: duplicate resource")

	// ErrFileNotFound is returned when a referenced document cannot be
	// resolved, on disk or in the bundled set.
	ErrFileNotFound = errors.New("definition: file not found")

	// ErrUnknownResource is returned by Set.NewDevice for a resource
	// identifier with no binding.
	ErrUnknownResource = errors.New("definition: unknown resource")

	// ErrBundledEscape is returned when a bundled document references a
	// filesystem document; bundled files may only reference other
	// bundled files.
	ErrBundledEscape = errors.New("definition: bundled documents can only reference bundled documents")
)
