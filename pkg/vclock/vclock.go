// Package vclock implements the fixed-width vector clock attached to every stored object.
//
// A clock has one counter per replica slot. Its text form is the counters joined by
// underscores, e.g. "0_1_0", which is also the form persisted next to each blob.
package vclock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const separator = "_"

var ErrMalformedClock = errors.New("malformed vector clock")

// Ordering is the result of comparing two clocks under the causal partial order.
type Ordering int

const (
	Equal Ordering = iota
	Less
	Greater
	Concurrent
)

func (o Ordering) String() string {
	switch o {
	case Equal:
		return "equal"
	case Less:
		return "less"
	case Greater:
		return "greater"
	default:
		return "concurrent"
	}
}

// VectorClock is a fixed-length counter vector.
type VectorClock []uint64

// New returns an all-zero clock of the given width.
func New(width int) VectorClock {
	if width < 0 {
		width = 0
	}
	return make(VectorClock, width)
}

// Parse decodes the text form and requires exactly width fields.
func Parse(s string, width int) (VectorClock, error) {
	fields := strings.Split(strings.TrimSpace(s), separator)
	if len(fields) != width {
		return nil, fmt.Errorf("%w: %q has %d fields, want %d", ErrMalformedClock, s, len(fields), width)
	}

	vc := New(width)
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: field %d of %q: %v", ErrMalformedClock, i, s, err)
		}
		vc[i] = v
	}
	return vc, nil
}

// IncrementAt records a new version produced at slot i. An out-of-range slot is a programming error.
func (vc VectorClock) IncrementAt(i int) {
	if i < 0 || i >= len(vc) {
		panic(fmt.Sprintf("vclock: slot %d out of range for width %d", i, len(vc)))
	}
	vc[i]++
}

// String renders the clock in its persisted form.
func (vc VectorClock) String() string {
	parts := make([]string, len(vc))
	for i, v := range vc {
		parts[i] = strconv.FormatUint(v, 10)
	}
	return strings.Join(parts, separator)
}

// Copy returns an independent copy.
func (vc VectorClock) Copy() VectorClock {
	out := make(VectorClock, len(vc))
	copy(out, vc)
	return out
}

// IsZero reports whether no slot has ever been incremented.
func (vc VectorClock) IsZero() bool {
	for _, v := range vc {
		if v != 0 {
			return false
		}
	}
	return true
}

// Compare orders vc against other. Every slot is inspected before deciding, so clocks that
// advanced on different slots come back Concurrent. Missing slots count as zero.
func (vc VectorClock) Compare(other VectorClock) Ordering {
	width := len(vc)
	if len(other) > width {
		width = len(other)
	}

	less, greater := false, false
	for i := 0; i < width; i++ {
		a, b := vc.at(i), other.at(i)
		switch {
		case a < b:
			less = true
		case a > b:
			greater = true
		}
	}

	switch {
	case less && greater:
		return Concurrent
	case less:
		return Less
	case greater:
		return Greater
	default:
		return Equal
	}
}

// Dominates reports whether vc is strictly newer than other.
func (vc VectorClock) Dominates(other VectorClock) bool {
	return vc.Compare(other) == Greater
}

func (vc VectorClock) at(i int) uint64 {
	if i < len(vc) {
		return vc[i]
	}
	return 0
}
