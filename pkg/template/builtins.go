package template

import (
	"fmt"

	"mercator-hq/nebula/pkg/value"
)

var (
	anyType    TypeSet
	stringType = Types(value.KindString)
	numberType = Types(value.KindNumber)
	boolType   = Types(value.KindBoolean)
	arrayType  = Types(value.KindArray)
	seqType    = Types(value.KindString, value.KindArray)
	sizedType  = Types(value.KindString, value.KindArray, value.KindObject, value.KindGroup, value.KindBinary)
	dateType   = Types(value.KindDateTime, value.KindString, value.KindNumber)
	numOrArray = Types(value.KindNumber, value.KindArray)
)

func required(name string, t TypeSet) Param {
	return Param{Name: name, Type: t, Required: true}
}

func optional(name string, t TypeSet, def value.Value) Param {
	return Param{Name: name, Type: t, Default: def}
}

func signature(ret TypeSet, params ...Param) Signature {
	return Signature{Params: params, Return: ret}
}

// builtins returns the standard function library.
func builtins() []Function {
	var fns []Function
	fns = append(fns, stringFunctions()...)
	fns = append(fns, arrayFunctions()...)
	fns = append(fns, mathFunctions()...)
	fns = append(fns, generalFunctions()...)
	fns = append(fns, dateFunctions()...)
	return fns
}

// intArg reads an integral number argument.
func intArg(v value.Value, name string) (int, error) {
	if v.IsNull() {
		return 0, fmt.Errorf("%s is required", name)
	}
	i, ok := v.AsInt()
	if !ok {
		f, isNum := v.AsFloat()
		if !isNum || f != float64(int64(f)) {
			return 0, fmt.Errorf("%s must be an integer, got %s", name, v)
		}
		i = int64(f)
	}
	return int(i), nil
}

// bounds resolves slice-style start/end arguments against size. Negative
// positions count from the end; a null end means size.
func bounds(startArg, endArg value.Value, size int) (int, int, error) {
	start, err := intArg(startArg, "start")
	if err != nil {
		return 0, 0, err
	}
	if start < 0 {
		start += size
	}
	if start < 0 || start > size {
		return 0, 0, &IndexError{Index: start, Size: size}
	}

	end := size
	if !endArg.IsNull() {
		if end, err = intArg(endArg, "end"); err != nil {
			return 0, 0, err
		}
		if end < 0 {
			end += size
		}
		end = min(max(end, start), size)
	}
	return start, end, nil
}

// stringOrEmpty returns the string of an optional argument.
func stringOrEmpty(v value.Value) string {
	s, _ := v.AsString()
	return s
}
