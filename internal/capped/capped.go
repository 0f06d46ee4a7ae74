package capped

// Number is an integer kept in [0, modulus) with wraparound arithmetic.
// It is a value type; every operation returns a new Number.
type Number struct {
	value   int
	modulus int
}

// New trims v into [0, modulus). Negative values wrap from the top.
// A modulus below 1 is treated as 1.
func New(modulus, v int) Number {
	if modulus < 1 {
		modulus = 1
	}
	return Number{value: wrap(v, modulus), modulus: modulus}
}

func wrap(v, m int) int {
	return (v%m + m) % m
}

func (n Number) Int() int     { return n.value }
func (n Number) Modulus() int { return n.mod() }

// mod guards the zero Number, which behaves as modulus 1.
func (n Number) mod() int {
	if n.modulus < 1 {
		return 1
	}
	return n.modulus
}

func (n Number) Inc() Number { return n.Add(1) }
func (n Number) Dec() Number { return n.Sub(1) }

// Add applies a signed offset. A negative delta subtracts.
func (n Number) Add(delta int) Number {
	m := n.mod()
	return Number{value: wrap(n.value+delta%m, m), modulus: m}
}

// Sub applies a signed offset in the opposite direction of Add.
func (n Number) Sub(delta int) Number {
	m := n.mod()
	return Number{value: wrap(n.value-delta%m, m), modulus: m}
}

func (n Number) AddNumber(o Number) Number { return n.Add(o.value) }
func (n Number) SubNumber(o Number) Number { return n.Sub(o.value) }

// Equal compares values only.
func (n Number) Equal(o Number) bool { return n.value == o.value }
