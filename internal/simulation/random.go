package simulation

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// defaultRandomSeparator delimits the samples of a random directive
// when the definition does not override it.
const defaultRandomSeparator = ","

// RandomDirective synthesises a response instead of reading stored
// state: each invocation samples count values uniformly from
// [Min, Max], formats them with the bound coder and joins them with
// the separator. Samples are fresh per call and never stored.
type RandomDirective struct {
	Min   float64
	Max   float64
	Count int
	Sep   string

	format *FormatSpec
}

// NewRandomDirective builds a directive and checks its invariants.
//
// The format spec defaults to "{:f}" when empty. Returns
// ErrInvalidDirective when min > max or count < 1, and ErrCoderSyntax
// for a bad format spec.
func NewRandomDirective(minVal, maxVal float64, count int, format, sep string) (*RandomDirective, error) {
	if minVal > maxVal {
		return nil, fmt.Errorf("%w: min %v is greater than max %v", ErrInvalidDirective, minVal, maxVal)
	}
	if count < 1 {
		return nil, fmt.Errorf("%w: count must be at least 1, got %d", ErrInvalidDirective, count)
	}

	if format == "" {
		format = "{:f}"
	}
	fs, err := CompileFormat(format)
	if err != nil {
		return nil, err
	}
	if fs.literal {
		return nil, fmt.Errorf("%w: format %q has no replacement field", ErrInvalidDirective, format)
	}
	if sep == "" {
		sep = defaultRandomSeparator
	}

	return &RandomDirective{Min: minVal, Max: maxVal, Count: count, Sep: sep, format: fs}, nil
}

// generate produces one response worth of samples.
func (rd *RandomDirective) generate(rng *rand.Rand) Response {
	parts := make([]string, rd.Count)
	for i := range parts {
		v := rd.Min + rng.Float64()*(rd.Max-rd.Min)
		parts[i] = rd.format.FormatFloat(v)
	}
	return Text(strings.Join(parts, rd.Sep))
}
