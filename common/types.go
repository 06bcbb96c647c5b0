package common

import (
	"encoding/json"
	"math"
	"time"
)

// Type identifies the value type of a column. The set is closed: every
// piece of per-type logic in this module is an exhaustive switch over
// these constants, with an Assert in the default branch.
type Type int8

const (
	// DefaultType marks an uninitialized Value. It is never a valid
	// column type.
	DefaultType Type = iota
	BooleanType
	LongType
	DoubleType
	StringType
	TimestampType
	JSONType
)

func (t Type) String() string {
	switch t {
	case BooleanType:
		return "boolean"
	case LongType:
		return "long"
	case DoubleType:
		return "double"
	case StringType:
		return "string"
	case TimestampType:
		return "timestamp"
	case JSONType:
		return "json"
	}
	return "unknown"
}

// Value represents a single typed cell of a record.
//
// It is a tagged union over the closed Type set with an explicit NULL
// flag. Numeric payloads (boolean, long, double bits, timestamp
// seconds) share the num field; text and raw JSON documents share the
// str field. Values are immutable once constructed and safe to copy by
// value.
type Value struct {
	t    Type
	null bool
	num  int64
	nsec int32
	str  string
}

// NewBooleanValue creates a new boolean Value.
func NewBooleanValue(v bool) Value {
	var num int64
	if v {
		num = 1
	}
	return Value{t: BooleanType, num: num}
}

// NewLongValue creates a new 64-bit integer Value.
func NewLongValue(v int64) Value {
	return Value{t: LongType, num: v}
}

// NewDoubleValue creates a new floating-point Value. The payload is
// stored as raw IEEE-754 bits, so NaN and signed zero round-trip
// bit-identically.
func NewDoubleValue(v float64) Value {
	return Value{t: DoubleType, num: int64(math.Float64bits(v))}
}

// NewStringValue creates a new text Value.
func NewStringValue(v string) Value {
	return Value{t: StringType, str: v}
}

// NewTimestampValue creates a new timestamp Value. Only the unix
// second and nanosecond components are retained; location is not part
// of the value and accessors report UTC.
func NewTimestampValue(v time.Time) Value {
	return Value{t: TimestampType, num: v.Unix(), nsec: int32(v.Nanosecond())}
}

// NewJSONValue creates a new semi-structured Value holding a raw JSON
// document. The document must be valid JSON.
func NewJSONValue(doc json.RawMessage) Value {
	Assert(json.Valid(doc), "invalid JSON document")
	return Value{t: JSONType, str: string(doc)}
}

// NewNull creates a NULL Value of the given type.
func NewNull(t Type) Value {
	Assert(t != DefaultType, "NULL value must carry a concrete type")
	return Value{t: t, null: true}
}

// IsNil returns true if the Value is uninitialized. This is NOT to be
// confused with NULL values, which carry a concrete type.
func (v Value) IsNil() bool {
	return v.t == DefaultType
}

// Type returns the type of the Value.
func (v Value) Type() Type {
	return v.t
}

// IsNull returns true if the Value is NULL.
func (v Value) IsNull() bool {
	return v.null
}

// BooleanValue returns the underlying (non-NULL) boolean.
func (v Value) BooleanValue() bool {
	Assert(v.t == BooleanType, "type mismatch in BooleanValue")
	Assert(!v.null, "accessing value of NULL boolean")
	return v.num != 0
}

// LongValue returns the underlying (non-NULL) integer.
func (v Value) LongValue() int64 {
	Assert(v.t == LongType, "type mismatch in LongValue")
	Assert(!v.null, "accessing value of NULL long")
	return v.num
}

// DoubleValue returns the underlying (non-NULL) float.
func (v Value) DoubleValue() float64 {
	Assert(v.t == DoubleType, "type mismatch in DoubleValue")
	Assert(!v.null, "accessing value of NULL double")
	return math.Float64frombits(uint64(v.num))
}

// StringValue returns the underlying (non-NULL) string.
func (v Value) StringValue() string {
	Assert(v.t == StringType, "type mismatch in StringValue")
	Assert(!v.null, "accessing value of NULL string")
	return v.str
}

// TimestampValue returns the underlying (non-NULL) timestamp in UTC.
func (v Value) TimestampValue() time.Time {
	Assert(v.t == TimestampType, "type mismatch in TimestampValue")
	Assert(!v.null, "accessing value of NULL timestamp")
	return time.Unix(v.num, int64(v.nsec)).UTC()
}

// JSONValue returns the underlying (non-NULL) raw JSON document.
func (v Value) JSONValue() json.RawMessage {
	Assert(v.t == JSONType, "type mismatch in JSONValue")
	Assert(!v.null, "accessing value of NULL json")
	return json.RawMessage(v.str)
}
