package simulation

import (
	"fmt"
	"strconv"
)

// ValueType is the declared primitive type of a property value.
type ValueType string

// ValueType constants.
const (
	TypeFloat  ValueType = "float"
	TypeInt    ValueType = "int"
	TypeString ValueType = "str"
)

// ValueSpec constrains the values a property may hold.
//
// A spec declares a primitive type plus optional inclusive bounds and
// an optional enumeration of valid values. Bounds only apply to
// numeric types. The zero spec (type str, no constraints) accepts any
// string, which is the default for properties that declare no specs
// in their definition.
type ValueSpec struct {
	Type ValueType

	// Min and Max are inclusive numeric bounds; nil means unbounded.
	Min *float64
	Max *float64

	// Valid is the enumeration of admissible values in canonical
	// string form. Empty means any value of the declared type.
	Valid []string
}

// NewValueSpec builds a spec and checks its internal consistency.
//
// Returns ErrInvalidSpecs for an unknown type, bounds on a string
// property, or an inverted min/max pair.
func NewValueSpec(typ ValueType, minVal, maxVal *float64, valid []string) (*ValueSpec, error) {
	switch typ {
	case TypeFloat, TypeInt, TypeString:
	case "":
		typ = TypeString
	default:
		return nil, fmt.Errorf("%w: unknown type %q, valid types are 'int', 'float', 'str'", ErrInvalidSpecs, typ)
	}

	if typ == TypeString && (minVal != nil || maxVal != nil) {
		return nil, fmt.Errorf("%w: min/max bounds require a numeric type", ErrInvalidSpecs)
	}
	if minVal != nil && maxVal != nil && *minVal > *maxVal {
		return nil, fmt.Errorf("%w: min %v is greater than max %v", ErrInvalidSpecs, *minVal, *maxVal)
	}

	return &ValueSpec{Type: typ, Min: minVal, Max: maxVal, Valid: valid}, nil
}

// Validate checks a raw value against the spec and returns its
// canonical string form.
//
// The canonical form preserves the caller's text for strings and
// numbers alike; validation only proves the text lexes as the declared
// type and satisfies the constraints. Returns ErrValueType,
// ErrValueOutOfRange or ErrValueNotValid on violation.
func (s *ValueSpec) Validate(raw string) (string, error) {
	if s == nil {
		return raw, nil
	}

	switch s.Type {
	case TypeInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return "", fmt.Errorf("%w: %q is not an int", ErrValueType, raw)
		}
		if err := s.checkBounds(float64(n), raw); err != nil {
			return "", err
		}
	case TypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return "", fmt.Errorf("%w: %q is not a float", ErrValueType, raw)
		}
		if err := s.checkBounds(f, raw); err != nil {
			return "", err
		}
	default:
		// Strings carry no bounds; only the valid set applies.
	}

	if len(s.Valid) > 0 && !s.member(raw) {
		return "", fmt.Errorf("%w: %q is not one of %v", ErrValueNotValid, raw, s.Valid)
	}

	return raw, nil
}

// checkBounds validates numeric bounds, both inclusive.
func (s *ValueSpec) checkBounds(v float64, raw string) error {
	if s.Min != nil && v < *s.Min {
		return fmt.Errorf("%w: %s is less than the minimum %v", ErrValueOutOfRange, raw, *s.Min)
	}
	if s.Max != nil && v > *s.Max {
		return fmt.Errorf("%w: %s is more than the maximum %v", ErrValueOutOfRange, raw, *s.Max)
	}
	return nil
}

// member reports whether raw belongs to the valid enumeration,
// comparing numerically for numeric types so "5" and "5.0" match a
// float property.
func (s *ValueSpec) member(raw string) bool {
	if s.Type == TypeFloat || s.Type == TypeInt {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return false
		}
		for _, cand := range s.Valid {
			c, err := strconv.ParseFloat(cand, 64)
			if err == nil && c == v {
				return true
			}
		}
		return false
	}

	for _, cand := range s.Valid {
		if cand == raw {
			return true
		}
	}
	return false
}
