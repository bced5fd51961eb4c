package vclock

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RoundTrip(t *testing.T) {
	clocks := []VectorClock{
		New(3),
		{1, 0, 0},
		{7, 12, 3},
		{0},
		{18446744073709551615, 1},
	}

	for _, c := range clocks {
		parsed, err := Parse(c.String(), len(c))
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "0_1_0", VectorClock{0, 1, 0}.String())
	assert.Equal(t, "0_0_0", New(3).String())
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
	}{
		{name: "too few fields", input: "1_2", width: 3},
		{name: "too many fields", input: "1_2_3_4", width: 3},
		{name: "non numeric", input: "1_x_3", width: 3},
		{name: "negative", input: "1_-2_3", width: 3},
		{name: "empty", input: "", width: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input, tt.width)
			assert.True(t, errors.Is(err, ErrMalformedClock), "got %v", err)
		})
	}
}

func TestIncrementAt(t *testing.T) {
	vc := New(3)
	vc.IncrementAt(0)
	vc.IncrementAt(0)
	vc.IncrementAt(2)
	assert.Equal(t, VectorClock{2, 0, 1}, vc)

	assert.Panics(t, func() { vc.IncrementAt(3) })
	assert.Panics(t, func() { vc.IncrementAt(-1) })
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b VectorClock
		want Ordering
	}{
		{name: "identical", a: VectorClock{1, 2, 3}, b: VectorClock{1, 2, 3}, want: Equal},
		{name: "zero vs zero", a: New(3), b: New(3), want: Equal},
		{name: "dominated", a: VectorClock{1, 0, 0}, b: VectorClock{2, 0, 0}, want: Less},
		{name: "dominates", a: VectorClock{2, 1, 0}, b: VectorClock{1, 1, 0}, want: Greater},
		{name: "disjoint slots", a: VectorClock{1, 0, 0}, b: VectorClock{0, 1, 0}, want: Concurrent},
		{name: "crossing", a: VectorClock{2, 0, 1}, b: VectorClock{1, 3, 1}, want: Concurrent},
		{name: "later slot only", a: VectorClock{0, 0, 1}, b: VectorClock{5, 0, 0}, want: Concurrent},
		{name: "short clock padded", a: VectorClock{1}, b: VectorClock{1, 1}, want: Less},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Compare(tt.b))
		})
	}
}

func TestCompare_Mirror(t *testing.T) {
	pairs := [][2]VectorClock{
		{{1, 0, 0}, {2, 0, 0}},
		{{0, 1, 0}, {1, 0, 0}},
		{{3, 3, 3}, {3, 3, 3}},
		{{0, 0, 0}, {0, 0, 4}},
	}
	mirror := map[Ordering]Ordering{Equal: Equal, Less: Greater, Greater: Less, Concurrent: Concurrent}

	for _, p := range pairs {
		assert.Equal(t, mirror[p[0].Compare(p[1])], p[1].Compare(p[0]))
		assert.Equal(t, Equal, p[0].Compare(p[0]))
	}
}

func TestCopyAndIsZero(t *testing.T) {
	vc := New(2)
	assert.True(t, vc.IsZero())

	cp := vc.Copy()
	cp.IncrementAt(1)
	assert.True(t, vc.IsZero())
	assert.False(t, cp.IsZero())
	assert.True(t, cp.Dominates(vc))
}
