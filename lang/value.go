package lang

import (
	"strconv"
)

// Type is the declared type of a variable and the tag of a [Value].
type Type uint8

const (
	TypeInvalid Type = iota
	TypeNumber
	TypeBoolean
	TypeText
)

// String returns the type keyword naming t.
func (t Type) String() string {
	switch t {
	case TypeNumber:
		return KindNumberType.String()
	case TypeBoolean:
		return KindBooleanType.String()
	case TypeText:
		return KindTextType.String()
	default:
		return "invalid"
	}
}

// Value is a tagged union of the three primitive types.
// The zero Value has type [TypeInvalid].
type Value struct {
	typ  Type
	num  int64
	text string
	flag bool
}

// Number returns a Value of type [TypeNumber].
func Number(n int64) Value { return Value{typ: TypeNumber, num: n} }

// Boolean returns a Value of type [TypeBoolean].
func Boolean(b bool) Value { return Value{typ: TypeBoolean, flag: b} }

// Text returns a Value of type [TypeText].
func Text(s string) Value { return Value{typ: TypeText, text: s} }

// Type returns the tag of v.
func (v Value) Type() Type { return v.typ }

// AsNumber returns the integer held by v and whether v is a Number.
func (v Value) AsNumber() (int64, bool) { return v.num, v.typ == TypeNumber }

// AsBoolean returns the flag held by v and whether v is a Boolean.
func (v Value) AsBoolean() (bool, bool) { return v.flag, v.typ == TypeBoolean }

// AsText returns the string held by v and whether v is Text.
func (v Value) AsText() (string, bool) { return v.text, v.typ == TypeText }

// String renders v the way EXIBIR writes it: numbers in decimal, booleans as
// true or false, and text verbatim.
func (v Value) String() string {
	switch v.typ {
	case TypeNumber:
		return strconv.FormatInt(v.num, 10)
	case TypeBoolean:
		return strconv.FormatBool(v.flag)
	case TypeText:
		return v.text
	default:
		return "<invalid>"
	}
}

// Equal reports whether v and w have the same tag and content.
func (v Value) Equal(w Value) bool { return v == w }

// Native returns v as an int64, bool or string.
func (v Value) Native() any {
	switch v.typ {
	case TypeNumber:
		return v.num
	case TypeBoolean:
		return v.flag
	case TypeText:
		return v.text
	default:
		return nil
	}
}
