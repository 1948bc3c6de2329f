package template

import (
	"errors"
	"fmt"
	"math"

	"mercator-hq/nebula/pkg/value"
)

func mathFunctions() []Function {
	arith := func(name string, op func(a, b value.Number) (value.Number, error)) Function {
		return FuncOf(name, signature(numberType, required("a", numberType), required("b", numberType)),
			func(args []value.Value) (value.Value, error) {
				a, _ := args[0].AsNumber()
				b, _ := args[1].AsNumber()
				n, err := op(a, b)
				if err != nil {
					return value.Value{}, &MathError{Op: name, Err: err}
				}
				return value.NumberOf(n), nil
			})
	}
	unary := func(name string, intOp func(int64) (int64, error), floatOp func(float64) float64) Function {
		return FuncOf(name, signature(numberType, required("value", numberType)), func(args []value.Value) (value.Value, error) {
			if i, ok := args[0].AsInt(); ok {
				r, err := intOp(i)
				if err != nil {
					return value.Value{}, &MathError{Op: name, Err: err}
				}
				return value.Int(r), nil
			}
			f, _ := args[0].AsFloat()
			return integral(floatOp(f)), nil
		})
	}
	identity := func(i int64) (int64, error) { return i, nil }

	return []Function{
		arith("add", value.Number.Add),
		arith("subtract", value.Number.Sub),
		arith("multiply", value.Number.Mul),
		arith("divide", value.Number.Div),

		FuncOf("round", signature(numberType, required("value", numberType), optional("places", numberType, value.Int(0))),
			func(args []value.Value) (value.Value, error) {
				places, err := intArg(args[1], "places")
				if err != nil {
					return value.Value{}, err
				}
				if i, ok := args[0].AsInt(); ok && places >= 0 {
					return value.Int(i), nil
				}
				f, _ := args[0].AsFloat()
				if places == 0 {
					return integral(math.Round(f)), nil
				}
				scale := math.Pow(10, float64(places))
				return value.Float(math.Round(f*scale) / scale), nil
			}),
		unary("floor", identity, math.Floor),
		unary("ceil", identity, math.Ceil),
		FuncOf("abs", signature(numberType, required("value", numberType)), func(args []value.Value) (value.Value, error) {
			if i, ok := args[0].AsInt(); ok {
				if i == math.MinInt64 {
					return value.Value{}, &MathError{Op: "abs", Err: errors.New("integer overflow")}
				}
				if i < 0 {
					i = -i
				}
				return value.Int(i), nil
			}
			f, _ := args[0].AsFloat()
			return value.Float(math.Abs(f)), nil
		}),

		extremum("min", -1),
		extremum("max", 1),

		FuncOf("sum", signature(numberType, required("items", arrayType)), func(args []value.Value) (value.Value, error) {
			items, _ := args[0].AsArray()
			total := value.IntNumber(0)
			for i, item := range items {
				n, ok := item.AsNumber()
				if !ok {
					return value.Value{}, &TypeError{Op: "sum", Message: fmt.Sprintf("item %d is %s, not a number", i, item.Kind())}
				}
				var err error
				if total, err = total.Add(n); err != nil {
					return value.Value{}, &MathError{Op: "sum", Err: err}
				}
			}
			return value.NumberOf(total), nil
		}),
	}
}

// extremum builds min and max. They take numbers as separate arguments or
// a single array of numbers.
func extremum(name string, want int) Function {
	sig := Signature{
		Params:   []Param{required("value", numOrArray)},
		Variadic: &Param{Name: "values", Type: numberType},
		Return:   numberType,
	}
	return FuncOf(name, sig, func(args []value.Value) (value.Value, error) {
		candidates := args
		if items, ok := args[0].AsArray(); ok {
			if len(args) > 1 {
				return value.Value{}, errors.New("pass either one array or several numbers")
			}
			candidates = items
		}
		if len(candidates) == 0 {
			return value.Null(), nil
		}

		best := candidates[0]
		for _, c := range candidates {
			if !c.IsNumber() {
				return value.Value{}, &TypeError{Op: name, Message: fmt.Sprintf("%s is not a number", c.Kind())}
			}
			if cmp, _ := value.Compare(c, best); cmp == want {
				best = c
			}
		}
		return best, nil
	})
}

// integral returns f as an int when it is a whole number that fits.
func integral(f float64) value.Value {
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return value.Int(int64(f))
	}
	return value.Float(f)
}
