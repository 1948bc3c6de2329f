package template

import (
	"fmt"
	"sort"
	"strings"

	"mercator-hq/nebula/pkg/value"
)

func arrayFunctions() []Function {
	return []Function{
		FuncOf("join", signature(stringType,
			required("items", arrayType), optional("separator", stringType, value.String(","))),
			func(args []value.Value) (value.Value, error) {
				items, _ := args[0].AsArray()
				parts := make([]string, len(items))
				for i, item := range items {
					parts[i] = item.String()
				}
				return value.String(strings.Join(parts, stringOrEmpty(args[1]))), nil
			}),

		FuncOf("first", signature(anyType, required("items", seqType)), func(args []value.Value) (value.Value, error) {
			return element(args[0], 0), nil
		}),
		FuncOf("last", signature(anyType, required("items", seqType)), func(args []value.Value) (value.Value, error) {
			return element(args[0], -1), nil
		}),

		FuncOf("pluck", signature(arrayType, required("items", arrayType), required("key", stringType)),
			func(args []value.Value) (value.Value, error) {
				items, _ := args[0].AsArray()
				key, _ := args[1].AsString()
				out := make([]value.Value, len(items))
				for i, item := range items {
					if v, ok := item.Get(value.KeySegment(key)); ok {
						out[i] = v
					}
				}
				return value.Array(out...), nil
			}),

		FuncOf("sort", signature(arrayType, required("items", arrayType)), func(args []value.Value) (value.Value, error) {
			items, _ := args[0].AsArray()
			sorted := make([]value.Value, len(items))
			copy(sorted, items)

			var cmpErr error
			sort.SliceStable(sorted, func(i, j int) bool {
				c, ok := value.Compare(sorted[i], sorted[j])
				if !ok && cmpErr == nil {
					cmpErr = &TypeError{Op: "sort", Message: fmt.Sprintf("cannot order %s and %s", sorted[i].Kind(), sorted[j].Kind())}
				}
				return c < 0
			})
			if cmpErr != nil {
				return value.Value{}, cmpErr
			}
			return value.Array(sorted...), nil
		}),

		FuncOf("reverse", signature(seqType, required("items", seqType)), func(args []value.Value) (value.Value, error) {
			if s, ok := args[0].AsString(); ok {
				runes := []rune(s)
				for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
					runes[i], runes[j] = runes[j], runes[i]
				}
				return value.String(string(runes)), nil
			}
			items, _ := args[0].AsArray()
			out := make([]value.Value, len(items))
			for i, item := range items {
				out[len(items)-1-i] = item
			}
			return value.Array(out...), nil
		}),

		FuncOf("unique", signature(arrayType, required("items", arrayType)), func(args []value.Value) (value.Value, error) {
			items, _ := args[0].AsArray()
			var out []value.Value
		next:
			for _, item := range items {
				for _, seen := range out {
					if value.Equal(seen, item) {
						continue next
					}
				}
				out = append(out, item)
			}
			return value.Array(out...), nil
		}),

		FuncOf("slice", signature(arrayType,
			required("items", arrayType), required("start", numberType), optional("end", numberType, value.Null())),
			func(args []value.Value) (value.Value, error) {
				items, _ := args[0].AsArray()
				start, end, err := bounds(args[1], args[2], len(items))
				if err != nil {
					return value.Value{}, err
				}
				return value.Array(items[start:end]...), nil
			}),
	}
}

// element returns the item at i of an array or string, or null when out of
// range. Negative i counts from the end.
func element(v value.Value, i int) value.Value {
	if s, ok := v.AsString(); ok {
		runes := []rune(s)
		if i < 0 {
			i += len(runes)
		}
		if i < 0 || i >= len(runes) {
			return value.Null()
		}
		return value.String(string(runes[i]))
	}
	if item, ok := v.Get(value.IndexSegment(i)); ok {
		return item
	}
	return value.Null()
}
