package resource

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidName reports a resource name string that does not follow
// the expected "<interface><board>::...::<class>" shape.
var ErrInvalidName = errors.New("resource: invalid resource name")

// Interface types understood by the parser.
const (
	InterfaceASRL  = "ASRL"
	InterfaceGPIB  = "GPIB"
	InterfaceUSB   = "USB"
	InterfaceTCPIP = "TCPIP"
)

// Resource classes understood by the parser.
const (
	ClassInstr  = "INSTR"
	ClassSocket = "SOCKET"
	ClassRaw    = "RAW"
)

// Name is a parsed resource name.
type Name struct {
	// Interface is the upper-cased interface type, e.g. "ASRL".
	Interface string
	// Board is the board index following the interface type. Empty
	// when the name omits it; "0" is not implied.
	Board string
	// Class is the upper-cased resource class, e.g. "INSTR". Names
	// that omit the class default to "INSTR".
	Class string
	// Address holds the segments between the interface and the class:
	// the primary address for GPIB, host and port for TCPIP, vendor
	// and product identifiers for USB.
	Address []string
}

// String renders the canonical form of the name.
func (n Name) String() string {
	parts := make([]string, 0, len(n.Address)+2)
	parts = append(parts, n.Interface+n.Board)
	parts = append(parts, n.Address...)
	parts = append(parts, n.Class)
	return strings.Join(parts, "::")
}

// Parse splits a resource name string into its parts.
//
// Interface type and resource class comparisons are case-insensitive;
// address segments are preserved as written. A trailing class segment
// is optional and defaults to INSTR. TCPIP SOCKET names must carry a
// host and a port.
func Parse(s string) (Name, error) {
	if strings.TrimSpace(s) == "" {
		return Name{}, fmt.Errorf("%w: empty string", ErrInvalidName)
	}

	segments := strings.Split(s, "::")
	for _, seg := range segments {
		if seg == "" {
			return Name{}, fmt.Errorf("%w: %q has an empty segment", ErrInvalidName, s)
		}
	}

	iface, board, err := splitHeader(segments[0])
	if err != nil {
		return Name{}, fmt.Errorf("%w: %q: %v", ErrInvalidName, s, err)
	}

	rest := segments[1:]
	class := ClassInstr
	if len(rest) > 0 {
		if c, ok := matchClass(rest[len(rest)-1]); ok {
			class = c
			rest = rest[:len(rest)-1]
		}
	}

	name := Name{
		Interface: iface,
		Board:     board,
		Class:     class,
		Address:   append([]string(nil), rest...),
	}
	if err := name.validate(); err != nil {
		return Name{}, fmt.Errorf("%w: %q: %v", ErrInvalidName, s, err)
	}
	return name, nil
}

// validate checks segment counts against the interface and class.
func (n Name) validate() error {
	switch n.Interface {
	case InterfaceASRL:
		if n.Class != ClassInstr {
			return fmt.Errorf("class %s is not valid for ASRL", n.Class)
		}
		if len(n.Address) != 0 {
			return errors.New("ASRL names carry no address segments")
		}
	case InterfaceGPIB:
		if n.Class != ClassInstr {
			return fmt.Errorf("class %s is not valid for GPIB", n.Class)
		}
		if len(n.Address) > 2 {
			return errors.New("too many GPIB address segments")
		}
	case InterfaceUSB:
		if n.Class != ClassInstr && n.Class != ClassRaw {
			return fmt.Errorf("class %s is not valid for USB", n.Class)
		}
	case InterfaceTCPIP:
		switch n.Class {
		case ClassInstr:
			if len(n.Address) < 1 {
				return errors.New("TCPIP INSTR names need a host")
			}
		case ClassSocket:
			if len(n.Address) != 2 {
				return errors.New("TCPIP SOCKET names need a host and a port")
			}
		default:
			return fmt.Errorf("class %s is not valid for TCPIP", n.Class)
		}
	default:
		return fmt.Errorf("unknown interface type %q", n.Interface)
	}
	return nil
}

// splitHeader separates "ASRL1" into interface type and board index.
func splitHeader(header string) (iface, board string, err error) {
	split := len(header)
	for i, r := range header {
		if r >= '0' && r <= '9' {
			split = i
			break
		}
	}
	iface = strings.ToUpper(header[:split])
	board = header[split:]

	switch iface {
	case InterfaceASRL, InterfaceGPIB, InterfaceUSB, InterfaceTCPIP:
		return iface, board, nil
	default:
		return "", "", fmt.Errorf("unknown interface type %q", header)
	}
}

// matchClass reports whether a segment is a resource class.
func matchClass(segment string) (string, bool) {
	switch strings.ToUpper(segment) {
	case ClassInstr:
		return ClassInstr, true
	case ClassSocket:
		return ClassSocket, true
	case ClassRaw:
		return ClassRaw, true
	default:
		return "", false
	}
}
