package nuodb

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

// valueKind discriminates the Value tagged union. Value is a closed sum
// type rather than an interface so the codec's encode/decode is a single
// switch with no allocation for the scalar cases — replacing the source's
// isinstance-chain dispatch (original_source/pynuodb/encodedsession.py) with
// explicit conversions from driver.Value into one of these variants.
type valueKind int

const (
	kindNull valueKind = iota
	kindBool
	kindInt
	kindScaledInt // decimal: u128 holds the unscaled magnitude, scale is its exponent
	kindDouble
	kindString
	kindBytes
	kindBlob
	kindClob
	kindUUID
	kindDate
	kindTime
	kindTimestamp
)

// Value is the internal representation of one SQL value crossing the wire
// in either direction: a parameter bound into a prepared statement, or a
// column fetched from a result set row.
type Value struct {
	kind valueKind

	b     bool
	i64   int64
	u128  int128
	scale int8
	f64   float64
	str   string
	bytes []byte
	id    uuid.UUID
	t     time.Time
	lob   *LobHandle
}

// LobHandle identifies a server-side BLOB/CLOB stream too large to inline,
// retrieved in chunks via GetLobChunk.
type LobHandle struct {
	ID     int64
	Length int64
}

// NullValue is the NULL Value.
func NullValue() Value { return Value{kind: kindNull} }

// IsNull reports whether v is NULL.
func (v Value) IsNull() bool { return v.kind == kindNull }

func BoolValue(b bool) Value { return Value{kind: kindBool, b: b} }

func IntValue(i int64) Value { return Value{kind: kindInt, i64: i} }

// DecimalValue constructs an exact decimal equal to unscaled * 10^-scale.
func DecimalValue(unscaled int128, scale int8) Value {
	return Value{kind: kindScaledInt, u128: unscaled, scale: scale}
}

func DoubleValue(f float64) Value { return Value{kind: kindDouble, f64: f} }

func StringValue(s string) Value { return Value{kind: kindString, str: s} }

func BytesValue(b []byte) Value { return Value{kind: kindBytes, bytes: b} }

func BlobValue(b []byte) Value { return Value{kind: kindBlob, bytes: b} }

func ClobValue(s string) Value { return Value{kind: kindClob, str: s} }

func UUIDValue(id uuid.UUID) Value { return Value{kind: kindUUID, id: id} }

// DateValue holds a day count since epoch (scale 0, per the scaled-date tag
// range) as a UTC time.Time at midnight.
func DateValue(t time.Time) Value { return Value{kind: kindDate, t: t, scale: 0} }

// TimeValue holds subsecond units since midnight; scale is the power-of-ten
// denominator (e.g. scale 3 = milliseconds, scale 9 = nanoseconds).
func TimeValue(t time.Time, scale int8) Value { return Value{kind: kindTime, t: t, scale: scale} }

// TimestampValue holds subsecond units since epoch in t's own location;
// callers that need a specific zone should call t.In(loc) first.
func TimestampValue(t time.Time, scale int8) Value {
	return Value{kind: kindTimestamp, t: t, scale: scale}
}

// Kind/accessor helpers used by codec.go and by Go-value conversion.

func (v Value) asInt64() (int64, bool) {
	switch v.kind {
	case kindInt:
		return v.i64, true
	case kindScaledInt:
		return scaledToInt64(v.u128, v.scale)
	}
	return 0, false
}

func scaledToInt64(u int128, scale int8) (int64, bool) {
	b := u.toBig()
	for i := int8(0); i < scale; i++ {
		b.Quo(b, bigTen)
	}
	if !b.IsInt64() {
		return 0, false
	}
	return b.Int64(), true
}

// toDriverValue converts a decoded Value into the closest database/sql
// driver.Value representation a Rows implementation can hand back to
// callers without losing precision for the common cases.
func (v Value) toDriverValue() (driver.Value, error) {
	switch v.kind {
	case kindNull:
		return nil, nil
	case kindBool:
		return v.b, nil
	case kindInt:
		return v.i64, nil
	case kindScaledInt:
		return Decimal{Unscaled: v.u128, Scale: v.scale}, nil
	case kindDouble:
		return v.f64, nil
	case kindString, kindClob:
		return v.str, nil
	case kindBytes, kindBlob:
		return v.bytes, nil
	case kindUUID:
		return v.id.String(), nil
	case kindDate, kindTime, kindTimestamp:
		return v.t, nil
	default:
		return nil, newError(DataError, "unsupported value kind %d", v.kind)
	}
}

// valueFromDriverValue converts a caller-supplied driver.Value (already
// normalized by DefaultParameterConverter) into the Value the codec knows
// how to encode.
func valueFromDriverValue(dv driver.Value) (Value, error) {
	switch x := dv.(type) {
	case nil:
		return NullValue(), nil
	case bool:
		return BoolValue(x), nil
	case int64:
		return IntValue(x), nil
	case float64:
		return DoubleValue(x), nil
	case string:
		return StringValue(x), nil
	case []byte:
		return BytesValue(x), nil
	case time.Time:
		return TimestampValue(x, 9), nil
	case Decimal:
		return DecimalValue(x.Unscaled, x.Scale), nil
	case uuid.UUID:
		return UUIDValue(x), nil
	default:
		return Value{}, newError(InterfaceError, "unsupported parameter type %T", dv)
	}
}

// Decimal is an exact decimal value equal to Unscaled * 10^-Scale, backed
// by a 128-bit two's-complement integer rather than a fixed int64 so large
// NUMERIC/DECIMAL columns never silently truncate.
type Decimal struct {
	Unscaled int128
	Scale    int8
}

func (d Decimal) String() string {
	return decimalString(d.Unscaled, d.Scale)
}

// Value implements driver.Valuer so a Decimal passed as a query argument is
// stringified by driver.DefaultParameterConverter before it ever reaches
// valueFromDriverValue, rather than tripping database/sql's driver.IsValue
// check on an unrecognized struct type.
func (d Decimal) Value() (driver.Value, error) {
	return d.String(), nil
}
