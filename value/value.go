// Package value implements the engine's tagged scalar type.
package value

import (
	"fmt"
	"math"
	"strconv"
)

// Kind identifies which variant a Value holds. The numeric values are
// stable and double as the constant-pool wire tag for the variants
// that are serializable (see chunk.ConstantPool).
type Kind uint8

const (
	Integer      Kind = 1
	Double       Kind = 4
	String       Kind = 5
	Boolean      Kind = 6
	InstanceKind Kind = 7
	Null         Kind = 8
)

func (k Kind) String() string {
	switch k {
	case Integer:
		return "Integer"
	case Double:
		return "Double"
	case String:
		return "String"
	case Boolean:
		return "Boolean"
	case InstanceKind:
		return "Instance"
	case Null:
		return "Null"
	default:
		return "Unknown"
	}
}

// Instance is a mapping from field name to Value, used for property
// access (Get/Set expressions). It is reference-typed: a Value that
// wraps an *Instance shares the same underlying map as any other copy
// of that Value, so mutating a field through one copy is observable
// through all of them. This is what makes SetProperty's mutation
// observable to a later read of the same variable (see DESIGN.md,
// Open Question 2).
type Instance struct {
	fields map[string]Value
}

// NewInstance returns an empty Instance.
func NewInstance() *Instance {
	return &Instance{fields: make(map[string]Value)}
}

// Get returns the named field, or Null and false if absent.
func (i *Instance) Get(name string) (Value, bool) {
	v, ok := i.fields[name]
	if !ok {
		return NullValue, false
	}
	return v, true
}

// Set assigns the named field.
func (i *Instance) Set(name string, v Value) {
	i.fields[name] = v
}

// Value is a closed tagged union over Integer/Double/String/Boolean/
// Instance/Null.
type Value struct {
	kind Kind
	i    int32
	d    float64
	s    string
	b    bool
	inst *Instance
}

// Null-kind value, safe for reuse and as a zero value.
var NullValue = Value{kind: Null}

// NewInt builds an Integer value.
func NewInt(i int32) Value { return Value{kind: Integer, i: i} }

// NewDouble builds a Double value.
func NewDouble(d float64) Value { return Value{kind: Double, d: d} }

// NewString builds a String value.
func NewString(s string) Value { return Value{kind: String, s: s} }

// NewBool builds a Boolean value.
func NewBool(b bool) Value { return Value{kind: Boolean, b: b} }

// NewInstanceValue wraps an *Instance as a Value.
func NewInstanceValue(inst *Instance) Value { return Value{kind: InstanceKind, inst: inst} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNumber() bool   { return v.kind == Integer || v.kind == Double }
func (v Value) IsInteger() bool  { return v.kind == Integer }
func (v Value) IsDouble() bool   { return v.kind == Double }
func (v Value) IsString() bool   { return v.kind == String }
func (v Value) IsBoolean() bool  { return v.kind == Boolean }
func (v Value) IsNull() bool     { return v.kind == Null }
func (v Value) IsInstance() bool { return v.kind == InstanceKind }

// Truthy implements the truthiness projection from spec.md §3:
// Null is false, Boolean is itself, String is non-empty, everything
// else is true.
func (v Value) Truthy() bool {
	switch v.kind {
	case Null:
		return false
	case Boolean:
		return v.b
	case String:
		return v.s != ""
	default:
		return true
	}
}

// AsInteger truncates a Double, returns an Integer unchanged, and
// returns 0 for any other variant.
func (v Value) AsInteger() int32 {
	switch v.kind {
	case Integer:
		return v.i
	case Double:
		return int32(v.d)
	default:
		return 0
	}
}

// AsDouble widens an Integer, returns a Double unchanged, and returns
// 0 for any other variant.
func (v Value) AsDouble() float64 {
	switch v.kind {
	case Integer:
		return float64(v.i)
	case Double:
		return v.d
	default:
		return 0
	}
}

// AsString returns the empty string for non-strings.
func (v Value) AsString() string {
	if v.kind == String {
		return v.s
	}
	return ""
}

// AsBool returns false for non-booleans.
func (v Value) AsBool() bool {
	if v.kind == Boolean {
		return v.b
	}
	return false
}

// AsInstance returns the underlying *Instance, or nil if v is not an
// Instance.
func (v Value) AsInstance() *Instance {
	if v.kind == InstanceKind {
		return v.inst
	}
	return nil
}

// Equal is structural equality: it never coerces across variants,
// matching spec.md's "==" / "!=" semantics.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case Integer:
		return v.i == other.i
	case Double:
		return v.d == other.d
	case String:
		return v.s == other.s
	case Boolean:
		return v.b == other.b
	case Null:
		return true
	case InstanceKind:
		return v.inst == other.inst
	default:
		return false
	}
}

// String renders the textual form used for "+" string concatenation
// and for the canonical constant-pool dedup key. Doubles with no
// fractional part always render with a trailing ".0" so that 9.0
// round-trips textually rather than rendering as "9" (spec.md §3).
func (v Value) String() string {
	switch v.kind {
	case Integer:
		return strconv.FormatInt(int64(v.i), 10)
	case Double:
		return formatDouble(v.d)
	case String:
		return v.s
	case Boolean:
		if v.b {
			return "true"
		}
		return "false"
	case Null:
		return "null"
	case InstanceKind:
		return "<instance>"
	default:
		return ""
	}
}

func formatDouble(d float64) string {
	if math.IsInf(d, 1) {
		return "inf"
	}
	if math.IsInf(d, -1) {
		return "-inf"
	}
	if math.IsNaN(d) {
		return "NaN"
	}
	s := strconv.FormatFloat(d, 'g', -1, 64)
	// FormatFloat with 'g' never emits a trailing ".0" for whole
	// numbers (e.g. 9.0 -> "9"); pad it back in ourselves.
	hasDotOrExp := false
	for _, r := range s {
		if r == '.' || r == 'e' || r == 'E' {
			hasDotOrExp = true
			break
		}
	}
	if !hasDotOrExp {
		s += ".0"
	}
	return s
}

// GoString supports %#v / debugger-friendly printing.
func (v Value) GoString() string {
	return fmt.Sprintf("value.Value{Kind:%s, %s}", v.kind, v.String())
}
