package scene

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Attribute values are one of
//
//   - nil (declared, no default)
//   - bool, int64, float64, string
//   - Asset
//   - Tuple, for fixed arity values such as float3
//   - []any, for array typed attributes
//   - map[string]any, for dictionaries
//
// Token arrays are []any of strings.

// Asset is an asset path value, written @path@ in text layers.
type Asset string

// Tuple is a fixed arity value such as a vector or color.
type Tuple []any

// CloneValue deep-copies v.
func CloneValue(v any) any {
	switch x := v.(type) {
	case Tuple:
		res := make(Tuple, len(x))
		for i := range x {
			res[i] = CloneValue(x[i])
		}
		return res
	case []any:
		res := make([]any, len(x))
		for i := range x {
			res[i] = CloneValue(x[i])
		}
		return res
	case []string:
		return slices.Clone(x)
	case map[string]any:
		return CloneMap(x)
	default:
		return v
	}
}

// CloneMap deep-copies a dictionary. It returns nil for nil.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	res := make(map[string]any, len(m))
	for k, v := range m {
		res[k] = CloneValue(v)
	}
	return res
}

// Strings returns the elements of a token or string array. ok is false if v
// is not such an array.
func Strings(v any) (res []string, ok bool) {
	switch x := v.(type) {
	case []string:
		return slices.Clone(x), true
	case []any:
		res = make([]string, 0, len(x))
		for _, e := range x {
			s, isStr := e.(string)
			if !isStr {
				return nil, false
			}
			res = append(res, s)
		}
		return res, true
	}
	return nil, false
}

// FromStrings builds a token array value.
func FromStrings(ss []string) []any {
	res := make([]any, len(ss))
	for i, s := range ss {
		res[i] = s
	}
	return res
}

// Normalize converts values decoded from generic codecs (yaml, json) into
// the value set above: integer widths collapse to int64, string slices and
// nested maps are rewritten recursively.
func Normalize(v any) (any, error) {
	switch x := v.(type) {
	case nil, bool, int64, float64, string, Asset:
		return v, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint64:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint:
		return int64(x), nil
	case float32:
		return float64(x), nil
	case []string:
		return FromStrings(x), nil
	case Tuple:
		res := make(Tuple, len(x))
		for i := range x {
			e, err := Normalize(x[i])
			if err != nil {
				return nil, err
			}
			res[i] = e
		}
		return res, nil
	case []any:
		res := make([]any, len(x))
		for i := range x {
			e, err := Normalize(x[i])
			if err != nil {
				return nil, err
			}
			res[i] = e
		}
		return res, nil
	case map[string]any:
		res := make(map[string]any, len(x))
		for _, k := range slices.Sorted(maps.Keys(x)) {
			e, err := Normalize(x[k])
			if err != nil {
				return nil, err
			}
			res[k] = e
		}
		return res, nil
	}
	return nil, fmt.Errorf("unsupported value type %T", v)
}

// Coerce converts v to the value types implied by the scene value type name
// typ: numbers become floats for floating point types, 0 and 1 become bools,
// strings become assets, and lists become tuples for vector and matrix types.
func Coerce(typ string, v any) any {
	base, isArray := strings.CutSuffix(typ, "[]")
	if isTupleType(base) {
		nested := strings.HasPrefix(base, "matrix")
		if xs, ok := v.([]any); ok && isArray {
			res := make([]any, len(xs))
			for i := range xs {
				res[i] = toTuple(xs[i], nested)
			}
			v = res
		} else if !isArray {
			v = toTuple(v, nested)
		}
	}
	switch {
	case base == "bool":
		return mapLeaves(v, func(x any) any {
			if i, ok := x.(int64); ok {
				return i != 0
			}
			return x
		})
	case isFloatType(base):
		return mapLeaves(v, func(x any) any {
			if i, ok := x.(int64); ok {
				return float64(i)
			}
			return x
		})
	case base == "asset":
		return mapLeaves(v, func(x any) any {
			if s, ok := x.(string); ok {
				return Asset(s)
			}
			return x
		})
	}
	return v
}

func toTuple(v any, nested bool) any {
	xs, ok := v.([]any)
	if !ok {
		return v
	}
	res := make(Tuple, len(xs))
	for i := range xs {
		if nested {
			res[i] = toTuple(xs[i], false)
		} else {
			res[i] = xs[i]
		}
	}
	return res
}

func mapLeaves(v any, f func(any) any) any {
	switch x := v.(type) {
	case Tuple:
		res := make(Tuple, len(x))
		for i := range x {
			res[i] = mapLeaves(x[i], f)
		}
		return res
	case []any:
		res := make([]any, len(x))
		for i := range x {
			res[i] = mapLeaves(x[i], f)
		}
		return res
	}
	return f(v)
}

var floatPrefixes = []string{
	"float", "double", "half", "color", "point", "normal", "vector",
	"texCoord", "quat", "matrix", "frame", "timecode",
}

func isFloatType(base string) bool {
	for _, pre := range floatPrefixes {
		if strings.HasPrefix(base, pre) {
			return true
		}
	}
	return false
}

func isTupleType(base string) bool {
	if strings.HasPrefix(base, "quat") {
		return true
	}
	i := strings.IndexAny(base, "234")
	if i <= 0 || (base[i-1] >= '0' && base[i-1] <= '9') {
		return false
	}
	return i == len(base)-1 || i == len(base)-2
}
