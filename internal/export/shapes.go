package export

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/neurlang/clapmel/clap"
	"github.com/neurlang/clapmel/internal/model"
)

// Describe renders the shapes inside a nested value. Rectangular slices
// print as [d0, d1, ...], maps print one "key: shape" line per key, ragged
// slices print one line per element. Nested lines are indented by depth.
func Describe(v any) string {
	return describe(v, 0)
}

func describe(v any, depth int) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case *clap.BatchFeature:
		if x == nil {
			return "<nil>"
		}
		return describe(x.AsMap(), depth)
	case model.Output:
		return formatShape(x.Shape)
	}

	rv := reflect.ValueOf(v)
	sep := "\n" + strings.Repeat("\t", depth+1)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if shape, ok := rectangular(rv); ok {
			return formatShape(shape)
		}
		lines := make([]string, rv.Len())
		for i := range lines {
			lines[i] = describe(rv.Index(i).Interface(), depth+1)
		}
		return strings.Join(lines, sep)
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		values := make(map[string]reflect.Value, rv.Len())
		for _, k := range rv.MapKeys() {
			name := fmt.Sprint(k.Interface())
			keys = append(keys, name)
			values[name] = rv.MapIndex(k)
		}
		sort.Strings(keys)
		lines := make([]string, len(keys))
		for i, k := range keys {
			lines[i] = k + ": " + describe(values[k].Interface(), depth+1)
		}
		return strings.Join(lines, sep)
	default:
		return fmt.Sprint(v)
	}
}

// rectangular reports the shape of rv if every nested slice at each depth
// has the same length.
func rectangular(rv reflect.Value) ([]int64, bool) {
	shape := []int64{int64(rv.Len())}
	if rv.Len() == 0 {
		return shape, true
	}
	first := rv.Index(0)
	if first.Kind() == reflect.Interface {
		first = first.Elem()
	}
	if first.Kind() != reflect.Slice && first.Kind() != reflect.Array {
		return shape, true
	}

	var inner []int64
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i)
		if elem.Kind() == reflect.Interface {
			elem = elem.Elem()
		}
		if elem.Kind() != reflect.Slice && elem.Kind() != reflect.Array {
			return nil, false
		}
		sub, ok := rectangular(elem)
		if !ok {
			return nil, false
		}
		if i == 0 {
			inner = sub
		} else if !reflect.DeepEqual(inner, sub) {
			return nil, false
		}
	}
	return append(shape, inner...), true
}

func formatShape(shape []int64) string {
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = fmt.Sprint(d)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
