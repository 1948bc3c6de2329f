package template

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestBuiltins(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		// string
		{"{{ 'Hello' | uppercase }}", "HELLO"},
		{"{{ 'Hello' | lowercase }}", "hello"},
		{"{{ '  pad  ' | trim }}", "pad"},
		{"{{ 'hello world' | title }}", "Hello World"},
		{"{{ 'hello world' | capitalize }}", "Hello world"},
		{"{{ 'a-b-c' | replace('-', '+') }}", "a+b+c"},
		{"{{ 'a,b,c' | split | length }}", "3"},
		{"{{ 'a b' | split(' ') | join('|') }}", "a|b"},
		{"{{ 'hello' | substring(1, 3) }}", "el"},
		{"{{ 'hello' | substring(-3) }}", "llo"},
		{"{{ 'héllo' | length }}", "5"},
		{"{{ 'hello world' | truncate(5) }}", "hello..."},
		{"{{ 'hi' | truncate(5) }}", "hi"},
		{"{{ 'abc' | contains('b') }}", "true"},
		{"{{ $input.items | contains('a') }}", "true"},
		{"{{ 'abc' | startsWith('ab') }}", "true"},
		{"{{ 'abc' | endsWith('ab') }}", "false"},
		{"{{ '7' | padLeft(3, '0') }}", "007"},
		{"{{ 'ab' | padRight(4, '.') }}", "ab.."},

		// array
		{"{{ $input.items | join(', ') }}", "b, a, b"},
		{"{{ $input.nums | first }}", "3"},
		{"{{ $input.nums | last }}", "2"},
		{"{{ 'xyz' | first }}", "x"},
		{"{{ $input.users | pluck('name') | join('/') }}", "x/y"},
		{"{{ $input.items | sort | join }}", "a,b,b"},
		{"{{ $input.nums | reverse | join }}", "2,1,3"},
		{"{{ 'abc' | reverse }}", "cba"},
		{"{{ $input.items | unique | join }}", "b,a"},
		{"{{ $input.nums | slice(1) | join }}", "1,2"},
		{"{{ $input.nums | slice(-2, -1) | join }}", "1"},

		// math
		{"{{ add(2, 3) }}", "5"},
		{"{{ subtract(2, 3) }}", "-1"},
		{"{{ multiply(2, 2.5) }}", "5"},
		{"{{ divide(7, 2) }}", "3.5"},
		{"{{ round(2.567, 2) }}", "2.57"},
		{"{{ round(2.5) }}", "3"},
		{"{{ floor(2.7) }}", "2"},
		{"{{ ceil(2.1) }}", "3"},
		{"{{ abs(-4) }}", "4"},
		{"{{ min(3, 1, 2) }}", "1"},
		{"{{ max($input.nums) }}", "3"},
		{"{{ sum($input.nums) }}", "6"},

		// general
		{"{{ default(null, 'x') }}", "x"},
		{"{{ default(0, 'x') }}", "0"},
		{"{{ coalesce(null, null, 'z') }}", "z"},
		{"{{ toString(5) + 'x' }}", "5x"},
		{"{{ toNumber(' 42 ') + 1 }}", "43"},
		{"{{ toNumber(true) }}", "1"},
		{"{{ $input.nums | toJSON }}", "[3,1,2]"},
		{"{{ fromJSON('[1,2]') | length }}", "2"},
		{"{{ type('x') }}", "string"},
		{"{{ type($input.users) }}", "array"},
		{"{{ isEmpty('') }}", "true"},
		{"{{ isEmpty(0) }}", "true"},
		{"{{ currency(5, 'CHF') }}", "CHF 5.00"},
		{"{{ currency(-3, 'EUR', 0) }}", "-€3"},

		// date
		{"{{ formatDate('2024-03-05') }}", "2024-03-05"},
		{"{{ formatDate('2024-03-05', '%d/%m/%Y') }}", "05/03/2024"},
		{"{{ formatDate('2024-03-05T10:20:30Z', '15:04') }}", "10:20"},
		{"{{ formatDate(0, '%Y') }}", "1970"},
		{"{{ type(now()) }}", "datetime"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := renderString(t, tt.src, sampleContext())
			if err != nil {
				t.Fatalf("Render() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuiltins_Currency(t *testing.T) {
	got, err := renderString(t, "{{ $input.price | currency }}", sampleContext())
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if !strings.HasPrefix(got, "$") || !strings.Contains(got, "234.50") {
		t.Errorf("currency = %q, want $1,234.50", got)
	}
}

func TestBuiltins_UUID(t *testing.T) {
	got, err := renderString(t, "{{ uuid() }}", sampleContext())
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if _, err := uuid.Parse(got); err != nil {
		t.Errorf("uuid() = %q is not a UUID: %v", got, err)
	}
}

func TestBuiltins_Now(t *testing.T) {
	before := time.Now().UTC().Add(-time.Second)
	v, err := MustParse("{{ now() }}").Evaluate(sampleContext(), NewRegistryWithBuiltins())
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	d, ok := v.AsDateTime()
	if !ok {
		t.Fatalf("now() = %s, want datetime", v.Kind())
	}
	if d.Time().Before(before) {
		t.Errorf("now() = %v, before %v", d.Time(), before)
	}
}

func TestGoLayout(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2006-01-02", "2006-01-02", false},
		{"%Y-%m-%d %H:%M:%S", "2006-01-02 15:04:05", false},
		{"%B %e, %Y", "January _2, 2006", false},
		{"100%%", "100%", false},
		{"%Q", "", true},
		{"%", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := goLayout(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("goLayout(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("goLayout(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
