package render

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Operator is a comparison accepted by iff.
type Operator int

// Supported operators.
const (
	OpEq Operator = iota
	OpGt
	OpLt
	OpNeq
	OpContains
)

var operatorTokens = map[string]Operator{
	"==":       OpEq,
	">":        OpGt,
	"<":        OpLt,
	"!=":       OpNeq,
	"contains": OpContains,
}

// String returns the template token for op.
func (op Operator) String() string {
	switch op {
	case OpEq:
		return "=="
	case OpGt:
		return ">"
	case OpLt:
		return "<"
	case OpNeq:
		return "!="
	case OpContains:
		return "contains"
	default:
		return fmt.Sprintf("Operator(%d)", int(op))
	}
}

// UnknownOperatorError is returned for a token that is not an Operator.
type UnknownOperatorError struct {
	Token string
}

func (e *UnknownOperatorError) Error() string {
	return "unknown operator " + e.Token
}

// ParseOperator maps a template token to an Operator.
func ParseOperator(token string) (Operator, error) {
	op, ok := operatorTokens[token]
	if !ok {
		return 0, &UnknownOperatorError{Token: token}
	}
	return op, nil
}

// Compare evaluates a <token> b with loose template semantics: numbers and
// numeric strings compare by value, other strings lexically, and contains
// is false whenever either operand is falsy.
func Compare(a any, token string, b any) (bool, error) {
	op, err := ParseOperator(token)
	if err != nil {
		return false, err
	}
	switch op {
	case OpEq:
		return looseEqual(a, b), nil
	case OpNeq:
		return !looseEqual(a, b), nil
	case OpGt:
		c, ok := order(a, b)
		return ok && c > 0, nil
	case OpLt:
		c, ok := order(a, b)
		return ok && c < 0, nil
	case OpContains:
		if !Truthy(a) || !Truthy(b) {
			return false, nil
		}
		return contains(a, b), nil
	}
	return false, &UnknownOperatorError{Token: token}
}

// Truthy reports whether v counts as true in a template condition. nil,
// false, zero numbers, NaN and the empty string are false; everything else,
// including empty collections, is true.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x != ""
	}
	if f, ok := number(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

// coerce converts numbers, numeric strings and booleans to float64.
func coerce(v any) (float64, bool) {
	if f, ok := number(v); ok {
		return f, true
	}
	switch x := v.(type) {
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	as, aStr := a.(string)
	bs, bStr := b.(string)
	if aStr && bStr {
		return as == bs
	}
	if af, ok := coerce(a); ok {
		if bf, ok := coerce(b); ok {
			return af == bf
		}
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// strictEqual never converts between strings, booleans and numbers.
// Numbers of different Go kinds compare by value.
func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if af, ok := number(a); ok {
		bf, ok := number(b)
		return ok && af == bf
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

func order(a, b any) (int, bool) {
	as, aStr := a.(string)
	bs, bStr := b.(string)
	if aStr && bStr {
		return strings.Compare(as, bs), true
	}
	af, ok := coerce(a)
	if !ok {
		return 0, false
	}
	bf, ok := coerce(b)
	if !ok || math.IsNaN(af) || math.IsNaN(bf) {
		return 0, false
	}
	switch {
	case af > bf:
		return 1, true
	case af < bf:
		return -1, true
	}
	return 0, true
}

func contains(haystack, needle any) bool {
	if s, ok := haystack.(string); ok {
		return strings.Contains(s, fmt.Sprint(needle))
	}
	rv := reflect.ValueOf(haystack)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if strictEqual(rv.Index(i).Interface(), needle) {
				return true
			}
		}
	case reflect.Map:
		for _, key := range rv.MapKeys() {
			if strictEqual(key.Interface(), needle) {
				return true
			}
		}
	}
	return false
}
