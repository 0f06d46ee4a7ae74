package capped_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/yapiolibs/neopixelring/internal/capped"
)

var TestConstructedValueIsTrimmed = []struct {
	Modulus int
	Given   int
	Expect  int
}{
	{16, 0, 0},
	{16, 15, 15},
	{16, 16, 0},
	{16, 17, 1},
	{16, -1, 15},
	{24, -25, 23},
	{24, 100, 4},
	{1, 7, 0},
	{0, 7, 0},
}

var TestSignedOffsetWraps = []struct {
	Modulus int
	Start   int
	Delta   int
	Add     int
	Sub     int
}{
	{24, 0, 1, 1, 23},
	{24, 23, 1, 0, 22},
	{24, 0, -1, 23, 1},
	{24, 5, -7, 22, 12},
	{24, 5, 30, 11, 23},
	{16, 3, -16, 3, 3},
	{16, 15, 2, 1, 13},
}

func TestNew(t *testing.T) {
	for k, v := range TestConstructedValueIsTrimmed {
		t.Run("Given"+strconv.Itoa(k), func(t *testing.T) {
			assert.Equal(t, v.Expect, New(v.Modulus, v.Given).Int())
		})
	}
}

func TestAddSub(t *testing.T) {
	for k, v := range TestSignedOffsetWraps {
		t.Run("Given"+strconv.Itoa(k), func(t *testing.T) {
			n := New(v.Modulus, v.Start)
			assert.Equal(t, v.Add, n.Add(v.Delta).Int(), "add")
			assert.Equal(t, v.Sub, n.Sub(v.Delta).Int(), "sub")
		})
	}
}

func TestIncDecWrap(t *testing.T) {
	n := New(24, 23)
	assert.Equal(t, 0, n.Inc().Int())
	assert.Equal(t, 23, New(24, 0).Dec().Int())
	assert.Equal(t, 23, n.Int(), "receiver is not mutated")
}

func TestValueAlwaysInRange(t *testing.T) {
	for _, m := range []int{1, 2, 3, 16, 24, 60} {
		for v := -3 * m; v <= 3*m; v++ {
			n := New(m, v)
			for d := -2 * m; d <= 2*m; d++ {
				for _, r := range []Number{n, n.Add(d), n.Sub(d)} {
					if r.Int() < 0 || r.Int() >= m {
						t.Fatalf("m=%d v=%d d=%d: %d out of range", m, v, d, r.Int())
					}
				}
			}
		}
	}
}

func TestAddSubRoundTrip(t *testing.T) {
	for _, m := range []int{1, 2, 16, 24, 60} {
		for v := 0; v < m; v++ {
			n := New(m, v)
			for d := -(m - 1); d < m; d++ {
				if !n.Add(d).Sub(d).Equal(n) {
					t.Fatalf("m=%d v=%d d=%d: round trip gave %d", m, v, d, n.Add(d).Sub(d).Int())
				}
			}
		}
	}
}

func TestNumberArithmetic(t *testing.T) {
	a := New(24, 20)
	b := New(24, 6)
	assert.Equal(t, 2, a.AddNumber(b).Int())
	assert.Equal(t, 14, a.SubNumber(b).Int())
	assert.Equal(t, 10, b.SubNumber(a).Int())
	assert.True(t, a.Equal(New(24, 44)))
	assert.Equal(t, 24, a.Modulus())
}
