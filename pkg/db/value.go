package db

import (
	"math"
	"strconv"
	"time"

	"github.com/pingcap/errors"
)

// ValueKind enumerates the source representations a database cell can take.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindInt64
	KindUint64
	KindFloat64
	KindBytes
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt64:
		return "int64"
	case KindUint64:
		return "uint64"
	case KindFloat64:
		return "float64"
	case KindBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// Value is a tagged union holding one database cell. Typed accessors walk a
// fixed, priority-ordered list of acceptable source representations and fail
// when none is compatible.
type Value struct {
	kind ValueKind
	i    int64
	u    uint64
	f    float64
	b    []byte
}

func NullValue() Value             { return Value{kind: KindNull} }
func Int64Value(v int64) Value     { return Value{kind: KindInt64, i: v} }
func Uint64Value(v uint64) Value   { return Value{kind: KindUint64, u: v} }
func Float64Value(v float64) Value { return Value{kind: KindFloat64, f: v} }
func BytesValue(v []byte) Value    { return Value{kind: KindBytes, b: v} }
func StringValue(v string) Value   { return Value{kind: KindBytes, b: []byte(v)} }

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNull() bool    { return v.kind == KindNull }

// Raw returns the underlying Go value: nil, int64, uint64, float64 or []byte.
func (v Value) Raw() interface{} {
	switch v.kind {
	case KindInt64:
		return v.i
	case KindUint64:
		return v.u
	case KindFloat64:
		return v.f
	case KindBytes:
		return v.b
	default:
		return nil
	}
}

func conversionError(from ValueKind, to string) error {
	return errors.Annotatef(ErrTypeConversion, "cannot convert %s to %s", from, to)
}

// AsBool accepts a signed or unsigned integer (nonzero means true), or a byte
// payload parsed as a decimal integer.
func (v Value) AsBool() (bool, error) {
	switch v.kind {
	case KindInt64:
		return v.i != 0, nil
	case KindUint64:
		return v.u != 0, nil
	case KindBytes:
		n, err := strconv.ParseInt(string(v.b), 10, 64)
		if err != nil {
			return false, conversionError(v.kind, "bool")
		}
		return n != 0, nil
	default:
		return false, conversionError(v.kind, "bool")
	}
}

// AsInt64 accepts a signed integer, an unsigned integer within range, or a
// byte payload parsed as a decimal integer.
func (v Value) AsInt64() (int64, error) {
	switch v.kind {
	case KindInt64:
		return v.i, nil
	case KindUint64:
		if v.u > math.MaxInt64 {
			return 0, conversionError(v.kind, "int64")
		}
		return int64(v.u), nil
	case KindBytes:
		n, err := strconv.ParseInt(string(v.b), 10, 64)
		if err != nil {
			return 0, conversionError(v.kind, "int64")
		}
		return n, nil
	default:
		return 0, conversionError(v.kind, "int64")
	}
}

func (v Value) asIntWidth(bits int, to string) (int64, error) {
	n, err := v.AsInt64()
	if err != nil {
		return 0, conversionError(v.kind, to)
	}
	min := int64(-1) << uint(bits-1)
	max := int64(1)<<uint(bits-1) - 1
	if n < min || n > max {
		return 0, conversionError(v.kind, to)
	}
	return n, nil
}

func (v Value) AsInt8() (int8, error) {
	n, err := v.asIntWidth(8, "int8")
	return int8(n), err
}

func (v Value) AsInt16() (int16, error) {
	n, err := v.asIntWidth(16, "int16")
	return int16(n), err
}

func (v Value) AsInt32() (int32, error) {
	n, err := v.asIntWidth(32, "int32")
	return int32(n), err
}

// AsUint64 accepts an unsigned integer, a non-negative signed integer, or a
// byte payload parsed as a decimal unsigned integer.
func (v Value) AsUint64() (uint64, error) {
	switch v.kind {
	case KindUint64:
		return v.u, nil
	case KindInt64:
		if v.i < 0 {
			return 0, conversionError(v.kind, "uint64")
		}
		return uint64(v.i), nil
	case KindBytes:
		n, err := strconv.ParseUint(string(v.b), 10, 64)
		if err != nil {
			return 0, conversionError(v.kind, "uint64")
		}
		return n, nil
	default:
		return 0, conversionError(v.kind, "uint64")
	}
}

// AsFloat64 accepts a float, a signed or unsigned integer, or a byte payload
// parsed as a decimal floating point literal.
func (v Value) AsFloat64() (float64, error) {
	switch v.kind {
	case KindFloat64:
		return v.f, nil
	case KindInt64:
		return float64(v.i), nil
	case KindUint64:
		return float64(v.u), nil
	case KindBytes:
		f, err := strconv.ParseFloat(string(v.b), 64)
		if err != nil {
			return 0, conversionError(v.kind, "float64")
		}
		return f, nil
	default:
		return 0, conversionError(v.kind, "float64")
	}
}

func (v Value) AsFloat32() (float32, error) {
	f, err := v.AsFloat64()
	if err != nil {
		return 0, conversionError(v.kind, "float32")
	}
	// a finite float64 beyond float32 range would narrow to ±Inf
	if !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
		return 0, conversionError(v.kind, "float32")
	}
	return float32(f), nil
}

// AsBytes accepts only a byte payload.
func (v Value) AsBytes() ([]byte, error) {
	if v.kind != KindBytes {
		return nil, conversionError(v.kind, "bytes")
	}
	return v.b, nil
}

// AsString decodes a byte payload as text, assuming byte payload columns are
// text-encoded. Numeric representations are formatted.
func (v Value) AsString() (string, error) {
	switch v.kind {
	case KindBytes:
		return string(v.b), nil
	case KindInt64:
		return strconv.FormatInt(v.i, 10), nil
	case KindUint64:
		return strconv.FormatUint(v.u, 10), nil
	case KindFloat64:
		return strconv.FormatFloat(v.f, 'g', -1, 64), nil
	default:
		return "", conversionError(v.kind, "string")
	}
}

var (
	dateLayouts     = []string{"2006-01-02"}
	timeLayouts     = []string{"15:04:05.999999", "15:04:05"}
	dateTimeLayouts = []string{
		"2006-01-02 15:04:05.999999",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
)

func (v Value) asTemporal(layouts []string, to string) (time.Time, error) {
	if v.kind != KindBytes {
		return time.Time{}, conversionError(v.kind, to)
	}
	s := string(v.b)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, conversionError(v.kind, to)
}

// AsDate parses a byte payload as a date literal.
func (v Value) AsDate() (time.Time, error) {
	return v.asTemporal(dateLayouts, "date")
}

// AsTime parses a byte payload as a time-of-day literal.
func (v Value) AsTime() (time.Time, error) {
	return v.asTemporal(timeLayouts, "time")
}

// AsDateTime parses a byte payload as a datetime literal; a bare date literal
// is accepted with a zero time-of-day.
func (v Value) AsDateTime() (time.Time, error) {
	return v.asTemporal(dateTimeLayouts, "datetime")
}
