package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ValuesMap associates one or more values with a type, e.g. a PRICE entry
// carrying a single float.
type ValuesMap struct {
	Type   ValueType `json:"type"`
	Values []Value   `json:"values"`
}

// ValueType is an enumerated or private string describing the nature of the
// values, bounded to 1..128 characters.
type ValueType string

// Well-known value types used by event payloads.
const (
	ValueTypeSimple        ValueType = "SIMPLE"
	ValueTypePrice         ValueType = "PRICE"
	ValueTypeChargeStateSetpoint ValueType = "CHARGE_STATE_SETPOINT"
	ValueTypeDispatchSetpoint    ValueType = "DISPATCH_SETPOINT"
	ValueTypeDispatchSetpointRelative ValueType = "DISPATCH_SETPOINT_RELATIVE"
	ValueTypeControlSetpoint     ValueType = "CONTROL_SETPOINT"
	ValueTypeExportPrice         ValueType = "EXPORT_PRICE"
	ValueTypeGHG                 ValueType = "GHG"
	ValueTypeCurve               ValueType = "CURVE"
	ValueTypeOLS                 ValueType = "OLS"
	ValueTypeImportCapacitySubscription ValueType = "IMPORT_CAPACITY_SUBSCRIPTION"
	ValueTypeImportCapacityReservation  ValueType = "IMPORT_CAPACITY_RESERVATION"
)

func (v ValueType) Validate() error {
	if len(v) < 1 || len(v) > 128 {
		return fmt.Errorf("value type must be between 1 and 128 characters, got %d", len(v))
	}
	return nil
}

// Value is one data point: an integer, a number, a boolean, a point, or a
// string. It is encoded without a tag; decoding tries each shape in turn.
type Value struct {
	kind    valueKind
	integer int64
	number  float64
	boolean bool
	point   Point
	str     string
}

type valueKind uint8

const (
	valueInteger valueKind = iota
	valueNumber
	valueBoolean
	valuePoint
	valueString
)

// IntValue builds an integer value.
func IntValue(i int64) Value { return Value{kind: valueInteger, integer: i} }

// NumberValue builds a floating-point value.
func NumberValue(f float64) Value { return Value{kind: valueNumber, number: f} }

// BoolValue builds a boolean value.
func BoolValue(b bool) Value { return Value{kind: valueBoolean, boolean: b} }

// PointValue builds a 2D point value.
func PointValue(x, y float32) Value { return Value{kind: valuePoint, point: Point{X: x, Y: y}} }

// StringValue builds a string value.
func StringValue(s string) Value { return Value{kind: valueString, str: s} }

// AsInt returns the integer payload, if this value holds one.
func (v Value) AsInt() (int64, bool) { return v.integer, v.kind == valueInteger }

// AsNumber returns the numeric payload. Integers are widened.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case valueNumber:
		return v.number, true
	case valueInteger:
		return float64(v.integer), true
	}
	return 0, false
}

// AsBool returns the boolean payload, if this value holds one.
func (v Value) AsBool() (bool, bool) { return v.boolean, v.kind == valueBoolean }

// AsPoint returns the point payload, if this value holds one.
func (v Value) AsPoint() (Point, bool) { return v.point, v.kind == valuePoint }

// AsString returns the string payload, if this value holds one.
func (v Value) AsString() (string, bool) { return v.str, v.kind == valueString }

// IsNumeric reports whether the value is an integer or a number.
func (v Value) IsNumeric() bool { return v.kind == valueInteger || v.kind == valueNumber }

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case valueInteger:
		return json.Marshal(v.integer)
	case valueNumber:
		return json.Marshal(v.number)
	case valueBoolean:
		return json.Marshal(v.boolean)
	case valuePoint:
		return json.Marshal(v.point)
	case valueString:
		return json.Marshal(v.str)
	}
	return nil, fmt.Errorf("unknown value kind %d", v.kind)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			*v = IntValue(i)
			return nil
		}
		f, err := t.Float64()
		if err != nil {
			return err
		}
		*v = NumberValue(f)
		return nil
	case bool:
		*v = BoolValue(t)
		return nil
	case string:
		*v = StringValue(t)
		return nil
	case map[string]any:
		var p Point
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*v = Value{kind: valuePoint, point: p}
		return nil
	}
	return fmt.Errorf("value must be an integer, number, boolean, point, or string")
}

// Point is a pair of floats, typically a point on a 2-dimensional grid.
type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}
