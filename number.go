package streamquery

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/constraints"
)

// Kind is the numeric width of a Number.
// Kinds are ordered by promotion: combining two Numbers yields a Number of the greater Kind.
type Kind uint8

const (
	// KindInvalid is the Kind of the zero Number.
	KindInvalid Kind = iota
	// KindInt is a 32-bit integer. 8 and 16 bit integers are promoted to it.
	KindInt
	// KindLong is a 64-bit integer.
	KindLong
	// KindFloat is a 32-bit floating point number.
	KindFloat
	// KindBigInt is an arbitrary precision integer.
	KindBigInt
	// KindBigDecimal is an arbitrary precision decimal.
	KindBigDecimal
	// KindDouble is a 64-bit floating point number, and the fallback for unrecognized types.
	KindDouble
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindBigInt:
		return "bigint"
	case KindBigDecimal:
		return "bigdecimal"
	case KindDouble:
		return "double"
	default:
		return "invalid"
	}
}

// Real is the set of native numeric types that can be turned into a Number.
type Real interface {
	constraints.Integer | constraints.Float
}

// Number is a numeric value of one of a closed set of widths.
// The zero Number is invalid.
type Number struct {
	kind Kind
	i    int64
	f    float64
	b    *big.Int
	d    decimal.Decimal
}

// Int returns a 32-bit integer Number.
func Int(v int32) Number {
	return Number{kind: KindInt, i: int64(v)}
}

// Long returns a 64-bit integer Number.
func Long(v int64) Number {
	return Number{kind: KindLong, i: v}
}

// Float returns a 32-bit floating point Number.
func Float(v float32) Number {
	return Number{kind: KindFloat, f: float64(v)}
}

// Double returns a 64-bit floating point Number.
func Double(v float64) Number {
	return Number{kind: KindDouble, f: v}
}

// BigInt returns an arbitrary precision integer Number holding a copy of v.
// A nil v yields an invalid Number.
func BigInt(v *big.Int) Number {
	if v == nil {
		return Number{}
	}

	return Number{kind: KindBigInt, b: new(big.Int).Set(v)}
}

// BigDecimal returns an arbitrary precision decimal Number.
func BigDecimal(v decimal.Decimal) Number {
	return Number{kind: KindBigDecimal, d: v}
}

// Of returns v as a Number of the Kind matching its type.
// Integers up to 16 bits become KindInt, 32-bit unsigned and 64-bit integers become KindLong,
// unsigned values above the 64-bit signed range become KindBigInt.
// Types not recognized, such as named numeric types, become KindDouble.
func Of[N Real](v N) Number {
	switch x := any(v).(type) {
	case int8:
		return Int(int32(x))
	case int16:
		return Int(int32(x))
	case int32:
		return Int(x)
	case uint8:
		return Int(int32(x))
	case uint16:
		return Int(int32(x))
	case uint32:
		return Long(int64(x))
	case int:
		return Long(int64(x))
	case int64:
		return Long(x)
	case uint:
		return unsigned(uint64(x))
	case uint64:
		return unsigned(x)
	case uintptr:
		return unsigned(uint64(x))
	case float32:
		return Float(x)
	default:
		return Double(float64(v))
	}
}

func unsigned(v uint64) Number {
	if v <= math.MaxInt64 {
		return Long(int64(v))
	}

	return BigInt(new(big.Int).SetUint64(v))
}

// AsNumber returns a function that turns native numbers into Numbers, for use as a projection in aggregates.
func AsNumber[N Real]() Function[N, Number] {
	return Of[N]
}

// ParseNumber parses s as a Number of the given Kind.
// Leading and trailing white space is ignored.
func ParseNumber(s string, kind Kind) (Number, error) {
	s = strings.TrimSpace(s)

	switch kind {
	case KindInt:
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return Number{}, errors.Wrapf(err, "parse %q as %s", s, kind)
		}

		return Int(int32(v)), nil

	case KindLong:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Number{}, errors.Wrapf(err, "parse %q as %s", s, kind)
		}

		return Long(v), nil

	case KindFloat:
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return Number{}, errors.Wrapf(err, "parse %q as %s", s, kind)
		}

		return Float(float32(v)), nil

	case KindBigInt:
		v, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return Number{}, errors.Newf("parse %q as %s: invalid syntax", s, kind)
		}

		return Number{kind: KindBigInt, b: v}, nil

	case KindBigDecimal:
		v, err := decimal.NewFromString(s)
		if err != nil {
			return Number{}, errors.Wrapf(err, "parse %q as %s", s, kind)
		}

		return BigDecimal(v), nil

	case KindDouble:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Number{}, errors.Wrapf(err, "parse %q as %s", s, kind)
		}

		return Double(v), nil

	default:
		return Number{}, errors.Newf("parse %q: %s kind", s, kind)
	}
}

// ParsedAs returns a function that parses strings as Numbers of the given Kind, for use as a projection in aggregates.
// Strings that cannot be parsed yield an invalid Number, which aggregates report as ErrInvalidNumber.
func ParsedAs(kind Kind) Function[string, Number] {
	return func(s string) Number {
		n, err := ParseNumber(s, kind)
		if err != nil {
			return Number{}
		}

		return n
	}
}

// Kind returns the numeric width of n.
func (n Number) Kind() Kind {
	return n.kind
}

// IsValid returns true if n is not the zero Number.
func (n Number) IsValid() bool {
	return n.kind != KindInvalid
}

// Int64 returns n as a 64-bit integer, truncating fractions.
func (n Number) Int64() int64 {
	switch n.kind {
	case KindInt, KindLong:
		return n.i
	case KindFloat, KindDouble:
		return int64(n.f)
	case KindBigInt:
		return n.b.Int64()
	case KindBigDecimal:
		return n.d.IntPart()
	default:
		return 0
	}
}

// Float64 returns n as a 64-bit floating point number.
func (n Number) Float64() float64 {
	switch n.kind {
	case KindInt, KindLong:
		return float64(n.i)
	case KindFloat, KindDouble:
		return n.f
	case KindBigInt:
		f, _ := new(big.Float).SetInt(n.b).Float64()
		return f
	case KindBigDecimal:
		f, _ := n.d.Float64()
		return f
	default:
		return 0
	}
}

// BigInt returns n as an arbitrary precision integer, truncating fractions.
// Infinite and NaN values yield zero.
func (n Number) BigInt() *big.Int {
	switch n.kind {
	case KindInt, KindLong:
		return big.NewInt(n.i)
	case KindFloat, KindDouble:
		if math.IsNaN(n.f) || math.IsInf(n.f, 0) {
			return new(big.Int)
		}

		i, _ := big.NewFloat(n.f).Int(nil)

		return i
	case KindBigInt:
		return new(big.Int).Set(n.b)
	case KindBigDecimal:
		return n.d.BigInt()
	default:
		return new(big.Int)
	}
}

// Decimal returns n as an arbitrary precision decimal.
// Infinite and NaN values yield zero.
func (n Number) Decimal() decimal.Decimal {
	switch n.kind {
	case KindInt, KindLong:
		return decimal.NewFromInt(n.i)
	case KindFloat:
		if math.IsNaN(n.f) || math.IsInf(n.f, 0) {
			return decimal.Zero
		}

		return decimal.NewFromFloat32(float32(n.f))
	case KindDouble:
		if math.IsNaN(n.f) || math.IsInf(n.f, 0) {
			return decimal.Zero
		}

		return decimal.NewFromFloat(n.f)
	case KindBigInt:
		return decimal.NewFromBigInt(n.b, 0)
	case KindBigDecimal:
		return n.d
	default:
		return decimal.Zero
	}
}

// String implements fmt.Stringer.
func (n Number) String() string {
	switch n.kind {
	case KindInt, KindLong:
		return strconv.FormatInt(n.i, 10)
	case KindFloat:
		return strconv.FormatFloat(n.f, 'g', -1, 32)
	case KindDouble:
		return strconv.FormatFloat(n.f, 'g', -1, 64)
	case KindBigInt:
		return n.b.String()
	case KindBigDecimal:
		return n.d.String()
	default:
		return "<invalid>"
	}
}

// as converts n to the given Kind.
func (n Number) as(kind Kind) Number {
	if n.kind == kind {
		return n
	}

	switch kind {
	case KindInt:
		return Int(int32(n.Int64()))
	case KindLong:
		return Long(n.Int64())
	case KindFloat:
		return Float(float32(n.Float64()))
	case KindBigInt:
		return Number{kind: KindBigInt, b: n.BigInt()}
	case KindBigDecimal:
		return BigDecimal(n.Decimal())
	case KindDouble:
		return Double(n.Float64())
	default:
		return Number{}
	}
}

// promote converts a and b to the greater of their Kinds.
func promote(a Number, b Number) (Number, Number, Kind) {
	kind := a.kind
	if b.kind > kind {
		kind = b.kind
	}

	return a.as(kind), b.as(kind), kind
}

// Add returns n + o, in the greater of their Kinds.
// Integer kinds wrap around on overflow. If either operand is invalid, the result is invalid.
func (n Number) Add(o Number) Number {
	if !n.IsValid() || !o.IsValid() {
		return Number{}
	}

	x, y, kind := promote(n, o)

	switch kind {
	case KindInt:
		return Int(int32(x.i) + int32(y.i))
	case KindLong:
		return Long(x.i + y.i)
	case KindFloat:
		return Float(float32(x.f) + float32(y.f))
	case KindBigInt:
		return Number{kind: KindBigInt, b: new(big.Int).Add(x.b, y.b)}
	case KindBigDecimal:
		return BigDecimal(x.d.Add(y.d))
	default:
		return Double(x.f + y.f)
	}
}

// Div returns n / divisor, in n's Kind. Integer kinds truncate toward zero.
func (n Number) Div(divisor int64) (Number, error) {
	if divisor == 0 {
		return Number{}, errors.New("division by zero")
	}

	switch n.kind {
	case KindInt:
		return Int(int32(n.i / divisor)), nil
	case KindLong:
		return Long(n.i / divisor), nil
	case KindFloat:
		return Float(float32(n.f) / float32(divisor)), nil
	case KindBigInt:
		return Number{kind: KindBigInt, b: new(big.Int).Quo(n.b, big.NewInt(divisor))}, nil
	case KindBigDecimal:
		return BigDecimal(n.d.Div(decimal.NewFromInt(divisor))), nil
	case KindDouble:
		return Double(n.f / float64(divisor)), nil
	default:
		return Number{}, ErrInvalidNumber
	}
}

// Cmp compares n and o in the greater of their Kinds, and returns -1, 0 or +1.
// It returns ErrNotComparable if either operand is invalid.
func (n Number) Cmp(o Number) (int, error) {
	if !n.IsValid() || !o.IsValid() {
		return 0, ErrNotComparable
	}

	x, y, kind := promote(n, o)

	switch kind {
	case KindInt, KindLong:
		return compareOrdered(x.i, y.i), nil
	case KindBigInt:
		return x.b.Cmp(y.b), nil
	case KindBigDecimal:
		return x.d.Cmp(y.d), nil
	default:
		return compareOrdered(x.f, y.f), nil
	}
}

func compareOrdered[C constraints.Ordered](a C, b C) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
