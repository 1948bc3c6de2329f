package template

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"mercator-hq/nebula/pkg/value"
)

// currencySymbols covers the codes that render with a symbol. Other codes
// are written as a prefix, e.g. "CHF 12.00".
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
	"KRW": "₩",
}

func generalFunctions() []Function {
	return []Function{
		FuncOf("default", signature(anyType, required("value", anyType), required("fallback", anyType)),
			func(args []value.Value) (value.Value, error) {
				if blank(args[0]) {
					return args[1], nil
				}
				return args[0], nil
			}),

		FuncOf("coalesce", Signature{
			Params:   []Param{required("value", anyType)},
			Variadic: &Param{Name: "values", Type: anyType},
		}, func(args []value.Value) (value.Value, error) {
			for _, arg := range args {
				if !arg.IsNull() {
					return arg, nil
				}
			}
			return value.Null(), nil
		}),

		FuncOf("toString", signature(stringType, required("value", anyType)), func(args []value.Value) (value.Value, error) {
			return value.String(args[0].String()), nil
		}),

		FuncOf("toNumber", signature(numberType, required("value", anyType)), func(args []value.Value) (value.Value, error) {
			return toNumber(args[0])
		}),

		FuncOf("toJSON", signature(stringType, required("value", anyType)), func(args []value.Value) (value.Value, error) {
			b, err := value.ToJSON(args[0])
			if err != nil {
				return value.Value{}, err
			}
			return value.String(string(b)), nil
		}),

		FuncOf("fromJSON", signature(anyType, required("value", stringType)), func(args []value.Value) (value.Value, error) {
			s, _ := args[0].AsString()
			return value.ParseJSON([]byte(s))
		}),

		FuncOf("type", signature(stringType, required("value", anyType)), func(args []value.Value) (value.Value, error) {
			return value.String(args[0].TypeName()), nil
		}),

		FuncOf("isEmpty", signature(boolType, required("value", anyType)), func(args []value.Value) (value.Value, error) {
			return value.Bool(args[0].IsEmpty()), nil
		}),

		FuncOf("currency", signature(stringType,
			required("amount", numberType),
			optional("code", stringType, value.String("USD")),
			optional("places", numberType, value.Int(2))),
			func(args []value.Value) (value.Value, error) {
				amount, _ := args[0].AsFloat()
				code := strings.ToUpper(stringOrEmpty(args[1]))
				places, err := intArg(args[2], "places")
				if err != nil {
					return value.Value{}, err
				}
				if places < 0 || places > 10 {
					return value.Value{}, fmt.Errorf("places must be between 0 and 10, got %d", places)
				}
				return value.String(formatCurrency(amount, code, places)), nil
			}),
	}
}

// blank is the emptiness test used by default(): null, or an empty string,
// array or object. Zero and false are values, not blanks.
func blank(v value.Value) bool {
	switch v.Kind() {
	case value.KindNull:
		return true
	case value.KindString, value.KindArray, value.KindObject, value.KindGroup:
		n, _ := v.Len()
		return n == 0
	}
	return false
}

func toNumber(v value.Value) (value.Value, error) {
	switch v.Kind() {
	case value.KindNumber:
		return v, nil
	case value.KindBoolean:
		if b, _ := v.AsBool(); b {
			return value.Int(1), nil
		}
		return value.Int(0), nil
	case value.KindString:
		s, _ := v.AsString()
		n, err := value.ParseNumber(strings.TrimSpace(s))
		if err != nil {
			return value.Value{}, err
		}
		return value.NumberOf(n), nil
	}
	return value.Value{}, &TypeError{Op: "toNumber", Message: fmt.Sprintf("cannot convert %s to a number", v.Kind())}
}

func formatCurrency(amount float64, code string, places int) string {
	if code == "" {
		code = "USD"
	}
	p := message.NewPrinter(language.English)
	digits := p.Sprintf(fmt.Sprintf("%%.%df", places), math.Abs(amount))

	sign := ""
	if amount < 0 {
		sign = "-"
	}
	if sym, ok := currencySymbols[code]; ok {
		return sign + sym + digits
	}
	return sign + code + " " + digits
}
