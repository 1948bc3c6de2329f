package template

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mercator-hq/nebula/pkg/value"
)

func stringFunctions() []Function {
	str := func(name string, fn func(string) string) Function {
		return FuncOf(name, signature(stringType, required("value", stringType)), func(args []value.Value) (value.Value, error) {
			s, _ := args[0].AsString()
			return value.String(fn(s)), nil
		})
	}
	affix := func(name string, fn func(s, affix string) bool) Function {
		return FuncOf(name, signature(boolType, required("value", stringType), required("affix", stringType)), func(args []value.Value) (value.Value, error) {
			s, _ := args[0].AsString()
			a, _ := args[1].AsString()
			return value.Bool(fn(s, a)), nil
		})
	}

	return []Function{
		str("uppercase", strings.ToUpper),
		str("lowercase", strings.ToLower),
		str("trim", strings.TrimSpace),
		str("title", func(s string) string {
			// A Caser keeps state between calls.
			return cases.Title(language.Und).String(s)
		}),
		str("capitalize", capitalize),

		FuncOf("replace", signature(stringType,
			required("value", stringType), required("old", stringType), required("new", stringType)),
			func(args []value.Value) (value.Value, error) {
				s, _ := args[0].AsString()
				old, _ := args[1].AsString()
				repl, _ := args[2].AsString()
				return value.String(strings.ReplaceAll(s, old, repl)), nil
			}),

		FuncOf("split", signature(arrayType,
			required("value", stringType), optional("separator", stringType, value.String(","))),
			func(args []value.Value) (value.Value, error) {
				s, _ := args[0].AsString()
				sep := stringOrEmpty(args[1])
				if s == "" {
					return value.Array(), nil
				}
				parts := strings.Split(s, sep)
				items := make([]value.Value, len(parts))
				for i, p := range parts {
					items[i] = value.String(p)
				}
				return value.Array(items...), nil
			}),

		FuncOf("substring", signature(stringType,
			required("value", stringType), required("start", numberType), optional("end", numberType, value.Null())),
			func(args []value.Value) (value.Value, error) {
				s, _ := args[0].AsString()
				runes := []rune(s)
				start, end, err := bounds(args[1], args[2], len(runes))
				if err != nil {
					return value.Value{}, err
				}
				return value.String(string(runes[start:end])), nil
			}),

		FuncOf("truncate", signature(stringType,
			required("value", stringType), required("length", numberType), optional("suffix", stringType, value.String("..."))),
			func(args []value.Value) (value.Value, error) {
				s, _ := args[0].AsString()
				n, err := intArg(args[1], "length")
				if err != nil {
					return value.Value{}, err
				}
				if n < 0 {
					return value.Value{}, errors.New("length must not be negative")
				}
				runes := []rune(s)
				if len(runes) <= n {
					return args[0], nil
				}
				return value.String(string(runes[:n]) + stringOrEmpty(args[2])), nil
			}),

		FuncOf("length", signature(numberType, required("value", sizedType)),
			func(args []value.Value) (value.Value, error) {
				n, _ := args[0].Len()
				return value.Int(int64(n)), nil
			}),

		FuncOf("contains", signature(boolType, required("value", seqType), required("search", anyType)),
			func(args []value.Value) (value.Value, error) {
				if items, ok := args[0].AsArray(); ok {
					for _, item := range items {
						if value.Equal(item, args[1]) {
							return value.Bool(true), nil
						}
					}
					return value.Bool(false), nil
				}
				s, _ := args[0].AsString()
				return value.Bool(strings.Contains(s, args[1].String())), nil
			}),

		affix("startsWith", strings.HasPrefix),
		affix("endsWith", strings.HasSuffix),

		FuncOf("padLeft", padSignature(), pad(true)),
		FuncOf("padRight", padSignature(), pad(false)),
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func padSignature() Signature {
	return signature(stringType,
		required("value", stringType), required("length", numberType), optional("char", stringType, value.String(" ")))
}

func pad(left bool) func(args []value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		s, _ := args[0].AsString()
		n, err := intArg(args[1], "length")
		if err != nil {
			return value.Value{}, err
		}
		fill := stringOrEmpty(args[2])
		if fill == "" {
			return value.Value{}, errors.New("pad character must not be empty")
		}

		missing := n - utf8.RuneCountInString(s)
		if missing <= 0 {
			return args[0], nil
		}
		padding := strings.Repeat(fill, missing)
		padding = string([]rune(padding)[:missing])
		if left {
			return value.String(padding + s), nil
		}
		return value.String(s + padding), nil
	}
}
