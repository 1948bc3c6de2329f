package value

import (
	"math"
	"strconv"
	"strings"
)

// Number is an integer or a floating point number. The two representations
// are kept distinct so that integers are never displayed or serialized as
// floats; comparisons happen in float64 space.
type Number struct {
	i       int64
	f       float64
	isFloat bool
}

// IntNumber returns an integer Number.
func IntNumber(i int64) Number {
	return Number{i: i}
}

// FloatNumber returns a floating point Number.
func FloatNumber(f float64) Number {
	return Number{f: f, isFloat: true}
}

// ParseNumber parses s as an integer when it has no fraction or exponent and
// as a float otherwise.
func ParseNumber(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{}, newError(ErrorInvalidNumber, "empty number")
	}
	if !strings.ContainsAny(s, ".eEnN") {
		i, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return IntNumber(i), nil
		}
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return Number{}, wrapError(ErrorNumberOutOfRange, err, "integer %q out of range", s)
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number{}, wrapError(ErrorInvalidNumber, err, "cannot parse %q as number", s)
	}
	return FloatNumber(f), nil
}

// IsInt reports whether the number has integer identity.
func (n Number) IsInt() bool {
	return !n.isFloat
}

// IsFloat reports whether the number is a float.
func (n Number) IsFloat() bool {
	return n.isFloat
}

// Int returns the integer and true for integers; floats are not truncated.
func (n Number) Int() (int64, bool) {
	if n.isFloat {
		return 0, false
	}
	return n.i, true
}

// Float64 returns the number promoted to float64.
func (n Number) Float64() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

// IsZero reports whether the number equals zero.
func (n Number) IsZero() bool {
	if n.isFloat {
		return n.f == 0
	}
	return n.i == 0
}

// Sign returns -1, 0 or +1. NaN reports 0.
func (n Number) Sign() int {
	f := n.Float64()
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	default:
		return 0
	}
}

// String formats integers in decimal and floats in their shortest form.
func (n Number) String() string {
	if !n.isFloat {
		return strconv.FormatInt(n.i, 10)
	}
	if math.IsInf(n.f, 1) {
		return "Infinity"
	}
	if math.IsInf(n.f, -1) {
		return "-Infinity"
	}
	return strconv.FormatFloat(n.f, 'f', -1, 64)
}

// literal formats the number so that floats always carry a fraction or an
// exponent and parse back as floats.
func (n Number) literal() (string, error) {
	if !n.isFloat {
		return strconv.FormatInt(n.i, 10), nil
	}
	if math.IsNaN(n.f) || math.IsInf(n.f, 0) {
		return "", newError(ErrorSerialization, "cannot encode non-finite number %v", n.f)
	}
	s := strconv.FormatFloat(n.f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s, nil
}

// Equal compares in float64 space, so 2 equals 2.0.
func (n Number) Equal(m Number) bool {
	if !n.isFloat && !m.isFloat {
		return n.i == m.i
	}
	return n.Float64() == m.Float64()
}

// Compare orders two numbers. It reports false when either side is NaN.
func (n Number) Compare(m Number) (int, bool) {
	if !n.isFloat && !m.isFloat {
		switch {
		case n.i < m.i:
			return -1, true
		case n.i > m.i:
			return 1, true
		}
		return 0, true
	}
	a, b := n.Float64(), m.Float64()
	switch {
	case math.IsNaN(a) || math.IsNaN(b):
		return 0, false
	case a < b:
		return -1, true
	case a > b:
		return 1, true
	}
	return 0, true
}

// Add returns n+m. Integer overflow is reported instead of wrapping.
func (n Number) Add(m Number) (Number, error) {
	if !n.isFloat && !m.isFloat {
		r := n.i + m.i
		if (n.i > 0 && m.i > 0 && r < 0) || (n.i < 0 && m.i < 0 && r >= 0) {
			return Number{}, newError(ErrorNumberOutOfRange, "integer overflow in %d + %d", n.i, m.i)
		}
		return IntNumber(r), nil
	}
	return FloatNumber(n.Float64() + m.Float64()), nil
}

// Sub returns n-m.
func (n Number) Sub(m Number) (Number, error) {
	if !n.isFloat && !m.isFloat {
		if m.i == math.MinInt64 {
			if n.i >= 0 {
				return Number{}, newError(ErrorNumberOutOfRange, "integer overflow in %d - %d", n.i, m.i)
			}
			return IntNumber(n.i - m.i), nil
		}
		return n.Add(IntNumber(-m.i))
	}
	return FloatNumber(n.Float64() - m.Float64()), nil
}

// Mul returns n*m.
func (n Number) Mul(m Number) (Number, error) {
	if !n.isFloat && !m.isFloat {
		if n.i == 0 || m.i == 0 {
			return IntNumber(0), nil
		}
		r := n.i * m.i
		if r/m.i != n.i || (n.i == -1 && m.i == math.MinInt64) || (m.i == -1 && n.i == math.MinInt64) {
			return Number{}, newError(ErrorNumberOutOfRange, "integer overflow in %d * %d", n.i, m.i)
		}
		return IntNumber(r), nil
	}
	return FloatNumber(n.Float64() * m.Float64()), nil
}

// Div returns n/m. Two integers that divide evenly stay an integer.
func (n Number) Div(m Number) (Number, error) {
	if m.IsZero() {
		return Number{}, newError(ErrorDivisionByZero, "division of %s by zero", n)
	}
	if !n.isFloat && !m.isFloat {
		if m.i == -1 && n.i == math.MinInt64 {
			return Number{}, newError(ErrorNumberOutOfRange, "integer overflow in %d / %d", n.i, m.i)
		}
		if n.i%m.i == 0 {
			return IntNumber(n.i / m.i), nil
		}
	}
	return FloatNumber(n.Float64() / m.Float64()), nil
}

// Mod returns the remainder of n/m with the sign of n.
func (n Number) Mod(m Number) (Number, error) {
	if m.IsZero() {
		return Number{}, newError(ErrorDivisionByZero, "modulo of %s by zero", n)
	}
	if !n.isFloat && !m.isFloat {
		if m.i == -1 {
			return IntNumber(0), nil
		}
		return IntNumber(n.i % m.i), nil
	}
	return FloatNumber(math.Mod(n.Float64(), m.Float64())), nil
}

// Neg returns -n.
func (n Number) Neg() (Number, error) {
	if !n.isFloat {
		if n.i == math.MinInt64 {
			return Number{}, newError(ErrorNumberOutOfRange, "integer overflow negating %d", n.i)
		}
		return IntNumber(-n.i), nil
	}
	return FloatNumber(-n.f), nil
}
