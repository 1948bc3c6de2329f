package template

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"mercator-hq/nebula/pkg/value"
)

// strftime maps %-directives to Go layout fragments.
var strftime = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'e': "_2",
	'j': "002",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'p': "PM",
	'b': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'Z': "MST",
	'z': "-0700",
	'F': "2006-01-02",
	'T': "15:04:05",
	'%': "%",
}

func dateFunctions() []Function {
	return []Function{
		FuncOf("formatDate", signature(stringType,
			required("date", dateType), optional("layout", stringType, value.String(time.DateOnly))),
			func(args []value.Value) (value.Value, error) {
				t, err := toTime(args[0])
				if err != nil {
					return value.Value{}, err
				}
				layout, err := goLayout(stringOrEmpty(args[1]))
				if err != nil {
					return value.Value{}, err
				}
				return value.String(t.Format(layout)), nil
			}),

		FuncOf("now", signature(Types(value.KindDateTime)), func([]value.Value) (value.Value, error) {
			return value.Timestamp(time.Now().UTC()), nil
		}),

		FuncOf("uuid", signature(stringType), func([]value.Value) (value.Value, error) {
			return value.String(uuid.NewString()), nil
		}),
	}
}

// toTime reads a datetime value, an RFC 3339 or YYYY-MM-DD string, or unix
// seconds.
func toTime(v value.Value) (time.Time, error) {
	switch v.Kind() {
	case value.KindDateTime:
		d, _ := v.AsDateTime()
		return d.Time(), nil
	case value.KindString:
		s, _ := v.AsString()
		d, err := value.ParseDateTime(s)
		if err != nil {
			return time.Time{}, err
		}
		return d.Time(), nil
	case value.KindNumber:
		f, _ := v.AsFloat()
		sec := int64(f)
		return time.Unix(sec, int64((f-float64(sec))*1e9)).UTC(), nil
	}
	return time.Time{}, &TypeError{Op: "formatDate", Message: fmt.Sprintf("cannot read %s as a date", v.Kind())}
}

// goLayout accepts Go reference layouts as is and translates strftime
// layouts, recognised by a '%'.
func goLayout(layout string) (string, error) {
	if layout == "" {
		return "", errors.New("layout must not be empty")
	}
	if !strings.Contains(layout, "%") {
		return layout, nil
	}

	var sb strings.Builder
	for i := 0; i < len(layout); i++ {
		if layout[i] != '%' {
			sb.WriteByte(layout[i])
			continue
		}
		if i+1 == len(layout) {
			return "", errors.New("layout ends with a bare '%'")
		}
		i++
		frag, ok := strftime[layout[i]]
		if !ok {
			return "", fmt.Errorf("unsupported directive %%%c", layout[i])
		}
		sb.WriteString(frag)
	}
	return sb.String(), nil
}
