package validation

import (
	"errors"
	"testing"
	"time"

	"mercator-hq/nebula/pkg/value"
)

// TestValidateRecord tests multi-field reporting in schema order
func TestValidateRecord(t *testing.T) {
	schema := NewSchema("signup").
		Field("email", Email()).
		Field("age", Between(value.Int(18), value.Int(130))).
		Field("name", Required()).
		Field("confirm", EqualsField("password"))

	values := value.NewObject().
		Set("email", value.String("bad")).
		Set("age", value.Int(12)).
		Set("name", value.String("Al")).
		Set("password", value.String("x")).
		Set("confirm", value.String("x"))

	report := NewEvaluator(nil, nil).ValidateRecord(schema, values)

	if report.Valid() {
		t.Fatal("Valid() = true, want false")
	}
	if report.Checked != 4 || report.Schema != "signup" {
		t.Errorf("Checked = %d, Schema = %q", report.Checked, report.Schema)
	}

	errs := report.Errors()
	if len(errs) != 2 {
		t.Fatalf("len(Errors()) = %d, want 2: %v", len(errs), report.Err())
	}
	if errs[0].Field != "email" || errs[0].Code != CodePatternMismatch {
		t.Errorf("errs[0] = %s/%s", errs[0].Field, errs[0].Code)
	}
	if errs[1].Field != "age" || errs[1].Code != CodeNotInRange {
		t.Errorf("errs[1] = %s/%s", errs[1].Field, errs[1].Code)
	}
	if len(report.UserErrors()) != 2 || len(report.SystemErrors()) != 0 {
		t.Errorf("user = %d, system = %d", len(report.UserErrors()), len(report.SystemErrors()))
	}
	if len(report.FieldErrors("age")) != 1 {
		t.Errorf("FieldErrors(age) = %v", report.FieldErrors("age"))
	}
	if err := report.Err(); !errors.Is(err, ErrUserInput) {
		t.Errorf("Err() = %v, want user input error", err)
	}

	if got := schema.Fields(); len(got) != 4 {
		t.Errorf("Fields() = %v", got)
	}
}

// TestValidateRecord_Valid tests a passing record
func TestValidateRecord_Valid(t *testing.T) {
	schema := NewSchema("").Field("id", UUID())
	values := value.NewObject().Set("id", value.String("550e8400-e29b-41d4-a716-446655440000"))

	report := NewEvaluator(nil, nil).ValidateRecord(schema, values)
	if !report.Valid() || report.Err() != nil {
		t.Errorf("report = %v", report.Err())
	}

	if r := NewEvaluator(nil, nil).ValidateRecord(nil, values); !r.Valid() {
		t.Error("nil schema should be valid")
	}
}

// TestContext tests snapshot access and copy-on-write helpers
func TestContext(t *testing.T) {
	values := value.NewObject().Set("a", value.Int(1)).Set("b", value.String("x"))
	ctx := NewContext(values, "a")

	if got := ctx.CurrentValue(); !value.Equal(got, value.Int(1)) {
		t.Errorf("CurrentValue() = %v", got)
	}

	other := ctx.WithField("b")
	if other.Field() != "b" || ctx.Field() != "a" {
		t.Errorf("WithField() mutated receiver: %q, %q", ctx.Field(), other.Field())
	}

	tagged := ctx.WithMetadata("locale", "fr")
	if _, ok := ctx.Metadata("locale"); ok {
		t.Error("WithMetadata() mutated receiver")
	}
	if v, _ := tagged.Metadata("locale"); v != "fr" {
		t.Errorf("Metadata(locale) = %q", v)
	}

	if got := NewContext(nil, "missing").CurrentValue(); !got.IsNull() {
		t.Errorf("CurrentValue() on empty context = %v", got)
	}
}

// TestRegexCache tests LRU eviction and counters
func TestRegexCache(t *testing.T) {
	c := NewRegexCache(2, time.Second)

	for _, p := range []string{"a", "b", "a", "c"} {
		if _, err := c.Get(p); err != nil {
			t.Fatalf("Get(%q) error = %v", p, err)
		}
	}

	stats := c.Stats()
	if stats.Entries != 2 || stats.Hits != 1 || stats.Misses != 3 || stats.Evictions != 1 {
		t.Errorf("Stats() = %+v", stats)
	}

	// b was least recently used.
	before := c.Stats().Misses
	if _, err := c.Get("a"); err != nil {
		t.Fatal(err)
	}
	if c.Stats().Misses != before {
		t.Error("a should still be cached")
	}

	if _, err := c.Get("("); err == nil {
		t.Error("Get(\"(\") error = nil")
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, invalid patterns must not be cached", c.Size())
	}
}

// TestRegistry tests registration rules
func TestRegistry(t *testing.T) {
	r := NewDefaultRegistry()
	if names := r.Names(); len(names) != 2 || names[0] != "cron" || names[1] != "uuid" {
		t.Errorf("Names() = %v", names)
	}

	err := r.Register(NewFuncValidator("cron", func(value.Value, *Context) error { return nil }))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("duplicate Register() error = %v", err)
	}
	if err := r.Register(NewFuncValidator("", nil)); err == nil {
		t.Error("Register() without a name should fail")
	}
}

// TestConfig_Validate tests configuration checks
func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
	if err := DefaultConfig().WithRegexTimeout(0).Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("zero timeout error = %v", err)
	}
	if err := DefaultConfig().WithRegexCacheSize(-1).Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("negative cache size error = %v", err)
	}
}
