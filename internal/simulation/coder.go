package simulation

import (
	"fmt"
	"strconv"
	"strings"
)

// Format specification verbs.
const (
	verbString = 's' // string passthrough
	verbInt    = 'd' // base-10 integer
	verbFloat  = 'f' // fixed-point float
	verbAuto   = 0   // bare {} - string passthrough
)

// FormatSpec is a compiled template-substitution format specification.
//
// The specification language is a narrow subset of Python format
// strings, which is what instrument definition files use: literal text
// surrounding at most one replacement field.
//
//	"OK"          literal response, no field
//	"{}"          string passthrough
//	"{:s}"        string passthrough
//	"{:d}"        base-10 integer
//	"{:f}"        fixed-point float, six decimals
//	"{:.2f}"      fixed-point float, two decimals
//	"!FREQ {:.2f}"  literal prefix plus a float field
//
// A compiled FormatSpec renders values with Format and recovers them
// with Parse; the two directions agree for every value representable
// under the specification.
type FormatSpec struct {
	raw    string
	prefix string
	suffix string
	verb   byte
	prec   int // decimal places for verbFloat, -1 when unspecified

	// literal is true when the specification contains no replacement
	// field at all; Format ignores the value and Parse only accepts
	// the exact literal text.
	literal bool
}

// CompileFormat compiles a format specification string.
//
// Returns ErrCoderSyntax if the specification contains more than one
// replacement field, an unterminated field, or an unsupported verb.
func CompileFormat(spec string) (*FormatSpec, error) {
	open := strings.IndexByte(spec, '{')
	if open < 0 {
		if strings.IndexByte(spec, '}') >= 0 {
			return nil, fmt.Errorf("%w: unmatched '}' in %q", ErrCoderSyntax, spec)
		}
		return &FormatSpec{raw: spec, prefix: spec, literal: true}, nil
	}

	end := strings.IndexByte(spec[open:], '}')
	if end < 0 {
		return nil, fmt.Errorf("%w: unterminated field in %q", ErrCoderSyntax, spec)
	}
	end += open

	rest := spec[end+1:]
	if strings.IndexByte(rest, '{') >= 0 {
		return nil, fmt.Errorf("%w: multiple fields in %q", ErrCoderSyntax, spec)
	}

	fs := &FormatSpec{
		raw:    spec,
		prefix: spec[:open],
		suffix: rest,
		prec:   -1,
	}

	field := spec[open+1 : end]
	if field == "" {
		fs.verb = verbAuto
		return fs, nil
	}
	if field[0] != ':' {
		// Named fields ("{ch_id}") must be substituted before compiling.
		return nil, fmt.Errorf("%w: unsupported field %q in %q", ErrCoderSyntax, field, spec)
	}

	conv := field[1:]
	switch {
	case conv == "s":
		fs.verb = verbString
	case conv == "d":
		fs.verb = verbInt
	case conv == "f":
		fs.verb = verbFloat
	case strings.HasPrefix(conv, ".") && strings.HasSuffix(conv, "f"):
		prec, err := strconv.Atoi(conv[1 : len(conv)-1])
		if err != nil || prec < 0 {
			return nil, fmt.Errorf("%w: bad precision in %q", ErrCoderSyntax, spec)
		}
		fs.verb = verbFloat
		fs.prec = prec
	default:
		return nil, fmt.Errorf("%w: unsupported conversion %q in %q", ErrCoderSyntax, conv, spec)
	}

	return fs, nil
}

// String returns the original specification text.
func (fs *FormatSpec) String() string { return fs.raw }

// Format renders a value using the specification.
//
// The value is supplied in its canonical string form (the form stored
// by a Property). Numeric verbs re-render the value at the declared
// precision; string verbs pass it through unchanged. Values that do
// not lex as the declared type fall back to passthrough rather than
// failing: formatting is on the response path and must not drop the
// reply.
func (fs *FormatSpec) Format(value string) string {
	if fs.literal {
		return fs.prefix
	}

	var body string
	switch fs.verb {
	case verbInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			body = value
			break
		}
		body = strconv.FormatInt(n, 10)
	case verbFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			body = value
			break
		}
		prec := fs.prec
		if prec < 0 {
			prec = 6 // matches the fixed-point default of the definition format
		}
		body = strconv.FormatFloat(f, 'f', prec, 64)
	default:
		body = value
	}

	return fs.prefix + body + fs.suffix
}

// FormatFloat renders a float64 directly, bypassing the canonical
// string form. Used by random directives which synthesise values
// rather than reading stored state.
func (fs *FormatSpec) FormatFloat(v float64) string {
	prec := fs.prec
	if fs.verb != verbFloat {
		return fs.Format(strconv.FormatFloat(v, 'g', -1, 64))
	}
	if prec < 0 {
		prec = 6
	}
	return fs.prefix + strconv.FormatFloat(v, 'f', prec, 64) + fs.suffix
}

// Parse extracts a value from text, interpreting the specification as
// a pattern: the literal prefix and suffix must be present and the
// payload between them must lex as the declared verb.
//
// Returns ErrCoderMismatch when the text does not match. The returned
// value is the payload text itself, which keeps Parse the exact
// inverse of Format for representable values.
func (fs *FormatSpec) Parse(text string) (string, error) {
	if fs.literal {
		if text != fs.prefix {
			return "", fmt.Errorf("%w: expected %q", ErrCoderMismatch, fs.prefix)
		}
		return "", nil
	}

	if !strings.HasPrefix(text, fs.prefix) {
		return "", fmt.Errorf("%w: missing prefix %q", ErrCoderMismatch, fs.prefix)
	}
	body := text[len(fs.prefix):]
	if !strings.HasSuffix(body, fs.suffix) {
		return "", fmt.Errorf("%w: missing suffix %q", ErrCoderMismatch, fs.suffix)
	}
	body = body[:len(body)-len(fs.suffix)]

	switch fs.verb {
	case verbInt:
		if _, err := strconv.ParseInt(strings.TrimSpace(body), 10, 64); err != nil {
			return "", fmt.Errorf("%w: %q is not an integer", ErrCoderMismatch, body)
		}
	case verbFloat:
		if _, err := strconv.ParseFloat(strings.TrimSpace(body), 64); err != nil {
			return "", fmt.Errorf("%w: %q is not a float", ErrCoderMismatch, body)
		}
	default:
		if body == "" {
			return "", fmt.Errorf("%w: empty payload", ErrCoderMismatch)
		}
	}

	return strings.TrimSpace(body), nil
}
