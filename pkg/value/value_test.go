package value

import (
	"errors"
	"testing"
	"time"
)

func sampleObject() *Object {
	return NewObject().
		Set("name", String("Alice")).
		Set("age", Int(30)).
		Set("tags", Array(String("a"), String("b")))
}

// TestValue_IsEmpty tests emptiness for every kind
func TestValue_IsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  bool
	}{
		{"null", Null(), true},
		{"zero value", Value{}, true},
		{"empty string", String(""), true},
		{"string", String("x"), false},
		{"zero int", Int(0), true},
		{"zero float", Float(0), true},
		{"int", Int(-3), false},
		{"false", Bool(false), true},
		{"true", Bool(true), false},
		{"empty binary", Binary(nil), true},
		{"binary", Binary([]byte{1}), false},
		{"empty array", Array(), true},
		{"array", Array(Null()), false},
		{"empty object", ObjectOf(nil), true},
		{"object", ObjectOf(sampleObject()), false},
		{"empty group", GroupOf(nil), true},
		{"zero duration", MustDuration(0), true},
		{"duration", MustDuration(time.Second), false},
		{"datetime", Timestamp(time.Time{}), false},
		{"mode", ModeOf("", ""), false},
		{"expression", Expression(""), false},
		{"regex", MustRegex(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestValue_TypeName tests kind names
func TestValue_TypeName(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{Null(), "null"},
		{String("a"), "string"},
		{Float(1.5), "number"},
		{Bool(true), "boolean"},
		{Binary([]byte("x")), "binary"},
		{Array(), "array"},
		{ObjectOf(nil), "object"},
		{GroupOf(nil), "group"},
		{DateTimeOf(NewDate(2024, 1, 2)), "datetime"},
		{MustDuration(time.Minute), "duration"},
		{ModeOf("text", "x"), "mode"},
		{Expression("{{ $input }}"), "expression"},
		{MustRegex("^a$"), "regex"},
	}

	for _, tt := range tests {
		if got := tt.value.TypeName(); got != tt.want {
			t.Errorf("TypeName() = %q, want %q", got, tt.want)
		}
	}
}

// TestEqual tests structural equality
func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"int equals float", Int(2), Float(2.0), true},
		{"int differs", Int(2), Int(3), false},
		{"string vs number", String("2"), Int(2), false},
		{"bool vs number", Bool(true), Int(1), false},
		{"null vs null", Null(), Value{}, true},
		{"null vs empty string", Null(), String(""), false},
		{"arrays", Array(Int(1), String("x")), Array(Float(1), String("x")), true},
		{"arrays differ in length", Array(Int(1)), Array(Int(1), Int(2)), false},
		{"objects ignore order",
			ObjectOf(NewObject().Set("a", Int(1)).Set("b", Int(2))),
			ObjectOf(NewObject().Set("b", Int(2)).Set("a", Int(1))), true},
		{"object vs group", ObjectOf(sampleObject()), GroupOf(sampleObject()), false},
		{"date vs timestamp at midnight",
			DateTimeOf(NewDate(2024, 5, 1)),
			Timestamp(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)), false},
		{"regex by pattern", MustRegex("a+"), MustRegex("a+"), true},
		{"modes", ModeOf("list", "x"), ModeOf("list", "x"), true},
		{"modes differ", ModeOf("list", "x"), ModeOf("text", "x"), false},
		{"expression vs string", Expression("x"), String("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// TestCompare tests ordering across kinds
func TestCompare(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Value
		want   int
		wantOK bool
	}{
		{"int < float", Int(1), Float(1.5), -1, true},
		{"float > int", Float(2.5), Int(2), 1, true},
		{"equal numbers", Int(3), Float(3), 0, true},
		{"strings", String("apple"), String("banana"), -1, true},
		{"durations", MustDuration(time.Second), MustDuration(time.Millisecond), 1, true},
		{"dates", DateTimeOf(NewDate(2024, 1, 1)), DateTimeOf(NewDate(2023, 1, 1)), 1, true},
		{"date vs time", DateTimeOf(NewDate(2024, 1, 1)), DateTimeOf(NewTimeOfDay(1, 0, 0, 0)), 0, false},
		{"string vs number", String("1"), Int(1), 0, false},
		{"booleans", Bool(false), Bool(true), 0, false},
		{"arrays", Array(), Array(), 0, false},
		{"null", Null(), Null(), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Compare(tt.a, tt.b)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Compare() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

// TestValue_String tests display formatting
func TestValue_String(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"string", String("hi"), "hi"},
		{"int", Int(42), "42"},
		{"integral float", Float(2), "2"},
		{"float", Float(1.25), "1.25"},
		{"bool", Bool(true), "true"},
		{"null", Null(), "null"},
		{"binary", Binary([]byte("hi")), "aGk="},
		{"date", DateTimeOf(NewDate(2024, 3, 9)), "2024-03-09"},
		{"time", DateTimeOf(NewTimeOfDay(7, 5, 3, 0)), "07:05:03"},
		{"timestamp", Timestamp(time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)), "2024-03-09T10:00:00Z"},
		{"duration", MustDuration(90 * time.Second), "1m30s"},
		{"mode", ModeOf("list", "b"), "list:b"},
		{"array", Array(Int(1), String("x"), Float(2)), `[1,"x",2.0]`},
		{"object keeps order", ObjectOf(NewObject().Set("z", Int(1)).Set("a", Bool(false))), `{"z":1,"a":false}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestValue_IsTruthy tests truthiness used by template conditionals
func TestValue_IsTruthy(t *testing.T) {
	truthy := []Value{String("x"), Int(1), Float(-0.5), Bool(true), Array(Null()), DateTimeOf(NewDate(2000, 1, 1)), ModeOf("a", "")}
	falsy := []Value{Null(), String(""), Int(0), Bool(false), Array(), ObjectOf(nil)}

	for _, v := range truthy {
		if !v.IsTruthy() {
			t.Errorf("%s %v should be truthy", v.Kind(), v)
		}
	}
	for _, v := range falsy {
		if v.IsTruthy() {
			t.Errorf("%s %v should be falsy", v.Kind(), v)
		}
	}
}

// TestDurationOf_Negative tests that negative spans are rejected
func TestDurationOf_Negative(t *testing.T) {
	_, err := DurationOf(-time.Second)
	if !IsKind(err, ErrorInvalidDuration) {
		t.Fatalf("DurationOf(-1s) error = %v, want invalid_duration", err)
	}
	if !errors.Is(err, ErrValue) {
		t.Error("error should match ErrValue")
	}
}

// TestDurationOf_Precision tests that only whole milliseconds are accepted
func TestDurationOf_Precision(t *testing.T) {
	tests := []struct {
		d       time.Duration
		wantErr bool
	}{
		{0, false},
		{time.Millisecond, false},
		{1500 * time.Millisecond, false},
		{999 * time.Microsecond, true},
		{1500 * time.Microsecond, true},
		{time.Nanosecond, true},
	}
	for _, tt := range tests {
		_, err := DurationOf(tt.d)
		if tt.wantErr != (err != nil) {
			t.Errorf("DurationOf(%v) error = %v, wantErr %v", tt.d, err, tt.wantErr)
		}
		if tt.wantErr && !IsKind(err, ErrorInvalidDuration) {
			t.Errorf("DurationOf(%v) error kind = %v, want invalid_duration", tt.d, err)
		}
	}

	if _, err := FromNative(999 * time.Microsecond); !IsKind(err, ErrorInvalidDuration) {
		t.Errorf("FromNative(999µs) error = %v, want invalid_duration", err)
	}
}

// TestRegexOf_Invalid tests pattern compilation failure
func TestRegexOf_Invalid(t *testing.T) {
	_, err := RegexOf("(unclosed")
	if !IsKind(err, ErrorInvalidRegex) {
		t.Fatalf("RegexOf() error = %v, want invalid_regex", err)
	}
}

// TestRegex_Lookahead tests that lookarounds are supported
func TestRegex_Lookahead(t *testing.T) {
	re, err := CompileRegex(`^(?=.*\d)[a-z\d]+$`, 0)
	if err != nil {
		t.Fatalf("CompileRegex() error = %v", err)
	}
	if ok, _ := re.MatchString("abc1"); !ok {
		t.Error("expected abc1 to match")
	}
	if ok, _ := re.MatchString("abc"); ok {
		t.Error("expected abc not to match")
	}
	if re.Timeout() != DefaultRegexTimeout {
		t.Errorf("Timeout() = %v, want %v", re.Timeout(), DefaultRegexTimeout)
	}
}

// TestRegex_EndAnchor tests that $ does not match before a final newline
func TestRegex_EndAnchor(t *testing.T) {
	re, err := CompileRegex(`^[a-z0-9]+(?:-[a-z0-9]+)*$`, 0)
	if err != nil {
		t.Fatalf("CompileRegex() error = %v", err)
	}
	tests := []struct {
		in   string
		want bool
	}{
		{"my-slug", true},
		{"my-slug\n", false},
		{"my-slug\r\n", false},
		{"my\nslug", false},
	}
	for _, tt := range tests {
		if ok, err := re.MatchString(tt.in); err != nil || ok != tt.want {
			t.Errorf("MatchString(%q) = %v, %v, want %v", tt.in, ok, err, tt.want)
		}
	}
}

// TestObject_Order tests insertion order and re-set semantics
func TestObject_Order(t *testing.T) {
	o := NewObject().Set("b", Int(1)).Set("a", Int(2)).Set("c", Int(3))
	o.Set("b", Int(10))
	o.Delete("a")

	keys := o.Keys()
	want := []string{"b", "c"}
	if len(keys) != len(want) {
		t.Fatalf("Keys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
	if v, _ := o.Get("b"); !Equal(v, Int(10)) {
		t.Errorf("Get(b) = %v, want 10", v)
	}
}

// TestObject_ZeroAndNil tests the zero object, nil receivers and Clone
func TestObject_ZeroAndNil(t *testing.T) {
	var nilObj *Object
	if nilObj.Len() != 0 || nilObj.Keys() != nil || nilObj.Has("a") {
		t.Error("nil object should be empty")
	}
	nilObj.Delete("a")
	nilObj.Range(func(string, Value) bool {
		t.Error("Range on nil object called fn")
		return true
	})

	var zero Object
	zero.Set("x", Int(1)).Set("y", Int(2))
	if keys := zero.Keys(); len(keys) != 2 || keys[0] != "x" || keys[1] != "y" {
		t.Errorf("Keys() = %v, want [x y]", keys)
	}

	clone := zero.Clone().Set("z", Int(3))
	if zero.Len() != 2 || clone.Len() != 3 {
		t.Errorf("Clone shares storage: original %d, clone %d", zero.Len(), clone.Len())
	}

	seen := 0
	clone.Range(func(string, Value) bool {
		seen++
		return seen < 2
	})
	if seen != 2 {
		t.Errorf("Range visited %d entries after stop, want 2", seen)
	}
}

// TestNumber_Arithmetic tests integer identity and overflow handling
func TestNumber_Arithmetic(t *testing.T) {
	sum, err := IntNumber(2).Add(IntNumber(3))
	if err != nil || !sum.IsInt() || sum.String() != "5" {
		t.Errorf("2+3 = %v (%v), want int 5", sum, err)
	}

	q, err := IntNumber(7).Div(IntNumber(2))
	if err != nil || !q.IsFloat() || q.String() != "3.5" {
		t.Errorf("7/2 = %v (%v), want float 3.5", q, err)
	}

	q, err = IntNumber(8).Div(IntNumber(2))
	if err != nil || !q.IsInt() || q.String() != "4" {
		t.Errorf("8/2 = %v (%v), want int 4", q, err)
	}

	if _, err := IntNumber(1).Div(FloatNumber(0)); !IsKind(err, ErrorDivisionByZero) {
		t.Errorf("1/0 error = %v, want division_by_zero", err)
	}

	if _, err := IntNumber(1<<62).Mul(IntNumber(4)); !IsKind(err, ErrorNumberOutOfRange) {
		t.Errorf("overflow error = %v, want number_out_of_range", err)
	}

	m, err := FloatNumber(5.5).Mod(IntNumber(2))
	if err != nil || m.Float64() != 1.5 {
		t.Errorf("5.5%%2 = %v (%v), want 1.5", m, err)
	}
}

// TestParseNumber tests integer and float detection
func TestParseNumber(t *testing.T) {
	tests := []struct {
		in      string
		wantInt bool
		want    string
		wantErr bool
	}{
		{"42", true, "42", false},
		{" -7 ", true, "-7", false},
		{"4.25", false, "4.25", false},
		{"1e3", false, "1000", false},
		{"abc", false, "", true},
		{"", false, "", true},
	}

	for _, tt := range tests {
		n, err := ParseNumber(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseNumber(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			continue
		}
		if n.IsInt() != tt.wantInt || n.String() != tt.want {
			t.Errorf("ParseNumber(%q) = %v (int=%v), want %s (int=%v)", tt.in, n, n.IsInt(), tt.want, tt.wantInt)
		}
	}
}

// TestParseDateTime tests the three sub-kinds
func TestParseDateTime(t *testing.T) {
	tests := []struct {
		in       string
		wantKind DateTimeKind
		want     string
		wantErr  bool
	}{
		{"2024-02-29", DateTimeDate, "2024-02-29", false},
		{"23:59:01", DateTimeTime, "23:59:01", false},
		{"08:00:00.5", DateTimeTime, "08:00:00.5", false},
		{"2024-02-29T10:11:12+02:00", DateTimeFull, "2024-02-29T10:11:12+02:00", false},
		{"2024-02-30", "", "", true},
		{"25:00:00", "", "", true},
		{"2024-01-01T25:00:00Z", "", "", true},
	}

	for _, tt := range tests {
		dt, err := ParseDateTime(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDateTime(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			continue
		}
		if dt.Kind() != tt.wantKind || dt.String() != tt.want {
			t.Errorf("ParseDateTime(%q) = %s (%s), want %s (%s)", tt.in, dt, dt.Kind(), tt.want, tt.wantKind)
		}
	}
}
