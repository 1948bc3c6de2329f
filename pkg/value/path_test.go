package value

import (
	"testing"
	"time"
)

// TestParsePath tests dotted, indexed and quoted paths
func TestParsePath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantLen int
		wantErr bool
	}{
		{"user.name", "user.name", 2, false},
		{"items[0].price", "items[0].price", 3, false},
		{"data['first name']", "data.first name", 2, false},
		{"[2]", "[2]", 1, false},
		{"items[x]", "", 0, true},
		{"items[0", "", 0, true},
	}

	for _, tt := range tests {
		segs, err := ParsePath(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePath(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			continue
		}
		if len(segs) != tt.wantLen || FormatPath(segs) != tt.want {
			t.Errorf("ParsePath(%q) = %s (%d segments), want %s (%d)", tt.in, FormatPath(segs), len(segs), tt.want, tt.wantLen)
		}
	}
}

// TestLookup tests navigation and its failure kinds
func TestLookup(t *testing.T) {
	root := ObjectOf(NewObject().
		Set("user", ObjectOf(NewObject().Set("name", String("Alice")))).
		Set("items", Array(Int(10), Int(20), Int(30))))

	tests := []struct {
		path     string
		want     Value
		wantKind ErrorKind
	}{
		{"user.name", String("Alice"), ""},
		{"items[1]", Int(20), ""},
		{"items[-1]", Int(30), ""},
		{"user.email", Value{}, ErrorKeyNotFound},
		{"items[5]", Value{}, ErrorIndexOutOfBounds},
		{"user.name.first", Value{}, ErrorTypeConversion},
	}

	for _, tt := range tests {
		segs, err := ParsePath(tt.path)
		if err != nil {
			t.Fatalf("ParsePath(%q) error = %v", tt.path, err)
		}
		got, err := Lookup(root, segs)
		if tt.wantKind != "" {
			if !IsKind(err, tt.wantKind) {
				t.Errorf("Lookup(%q) error = %v, want %s", tt.path, err, tt.wantKind)
			}
			continue
		}
		if err != nil || !Equal(got, tt.want) {
			t.Errorf("Lookup(%q) = %v, %v; want %v", tt.path, got, err, tt.want)
		}
	}
}

// TestDecode tests decoding into structs through mapstructure
func TestDecode(t *testing.T) {
	type target struct {
		URL     string        `mapstructure:"url"`
		Retries int           `mapstructure:"retries"`
		Timeout time.Duration `mapstructure:"timeout"`
		Tags    []string      `mapstructure:"tags"`
	}

	v := ObjectOf(NewObject().
		Set("url", String("https://example.com")).
		Set("retries", Int(3)).
		Set("timeout", String("1500ms")).
		Set("tags", Array(String("a"), String("b"))))

	var got target
	if err := Decode(v, &got); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.URL != "https://example.com" || got.Retries != 3 || got.Timeout != 1500*time.Millisecond || len(got.Tags) != 2 {
		t.Errorf("Decode() = %+v", got)
	}

	bad := ObjectOf(NewObject().Set("retries", String("many")))
	if err := Decode(bad, &got); !IsKind(err, ErrorTypeConversion) {
		t.Errorf("Decode(bad) error = %v, want type_conversion", err)
	}
}
