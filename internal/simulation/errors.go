package simulation

import "errors"

// Domain errors for the simulation package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, simulation.ErrValueOutOfRange) {
//	    // handle range violation
//	}
var (
	// ErrCoderSyntax is returned when a format specification cannot be
	// compiled (unbalanced braces, unsupported verb, multiple fields).
	ErrCoderSyntax = errors.New("simulation: invalid format specification")

	// ErrCoderMismatch is returned when text presented for parsing does
	// not match the compiled format specification.
	ErrCoderMismatch = errors.New("simulation: text does not match format")

	// ErrValueType is returned when a value cannot be coerced to the
	// declared property type.
	ErrValueType = errors.New("simulation: value has wrong type")

	// ErrValueOutOfRange is returned when a value violates the declared
	// min/max bounds of a property.
	ErrValueOutOfRange = errors.New("simulation: value out of range")

	// ErrValueNotValid is returned when a value is not a member of the
	// declared enumeration of valid values.
	ErrValueNotValid = errors.New("simulation: value not in valid set")

	// ErrInvalidSpecs is returned when a property value specification is
	// malformed (unknown type, bounds on a string property).
	ErrInvalidSpecs = errors.New("simulation: invalid value specification")

	// ErrInertProperty is returned when a property declares neither a
	// getter nor a setter dialogue.
	ErrInertProperty = errors.New("simulation: property has no getter or setter")

	// ErrDuplicateProperty is returned when two properties share a name
	// within one device.
	ErrDuplicateProperty = errors.New("simulation: duplicate property name")

	// ErrInvalidDirective is returned when a random directive violates
	// its invariants (min > max, count < 1).
	ErrInvalidDirective = errors.New("simulation: invalid random directive")

	// ErrInvalidChannelGroup is returned when a channel group declares
	// no identifiers or a bad numeric span.
	ErrInvalidChannelGroup = errors.New("simulation: invalid channel group")
)
