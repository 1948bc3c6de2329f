package errors

import (
	stderrors "errors"
	"strings"
	"testing"

	"mercator-hq/nebula/pkg/template/ast"
)

// TestErrorList tests accumulation and sentinel matching
func TestErrorList(t *testing.T) {
	el := NewErrorList()
	if el.ToError() != nil {
		t.Fatal("ToError() on empty list should be nil")
	}

	el.AddError(ErrorTypeSyntax, "unterminated '{{'", ast.Position{Line: 1, Column: 7})
	el.AddErrorWithSuggestion(ErrorTypeSemantic, "unknown data source '$inptu'", ast.Position{Line: 2, Column: 4}, "Did you mean '$input'?")

	err := el.ToError()
	if !stderrors.Is(err, ErrParse) {
		t.Error("errors.Is(ErrParse) = false")
	}
	var target *Error
	if !stderrors.As(err, &target) || target.Type != ErrorTypeSyntax {
		t.Errorf("errors.As() = %v", target)
	}
	if el.Count() != 2 || !el.HasErrorType(ErrorTypeSemantic) || len(el.ByType(ErrorTypeSyntax)) != 1 {
		t.Errorf("Count() = %d", el.Count())
	}
	if !strings.HasPrefix(err.Error(), "Found 2 error(s)") {
		t.Errorf("Error() = %q", err.Error())
	}
}

// TestExtractContext tests the excerpt and column marker
func TestExtractContext(t *testing.T) {
	source := "line one\nHello {{ $inptu }}\nline three"
	got := ExtractContext(source, ast.Position{Line: 2, Column: 10}, 1)

	want := "   1 | line one\n" +
		"-> 2 | Hello {{ $inptu }}\n" +
		"     |          ^\n" +
		"   3 | line three\n"
	if got != want {
		t.Errorf("ExtractContext() =\n%s\nwant\n%s", got, want)
	}

	if got := ExtractContext(source, ast.Position{}, 1); got != "" {
		t.Errorf("ExtractContext(invalid) = %q", got)
	}
}

// TestSuggestName tests edit distance suggestions
func TestSuggestName(t *testing.T) {
	tests := []struct {
		unknown    string
		candidates []string
		want       string
	}{
		{"uppercse", []string{"lowercase", "uppercase", "trim"}, "Did you mean 'uppercase'?"},
		{"Trim", []string{"trim"}, "Did you mean 'trim'?"},
		{"frobnicate", []string{"trim", "join"}, ""},
		{"x", nil, ""},
	}

	for _, tt := range tests {
		if got := SuggestName(tt.unknown, tt.candidates); got != tt.want {
			t.Errorf("SuggestName(%q) = %q, want %q", tt.unknown, got, tt.want)
		}
	}

	if got := SuggestDataSource("inptu", ast.SourceNames); got != "Did you mean '$input'?" {
		t.Errorf("SuggestDataSource() = %q", got)
	}
}

// TestLevenshteinDistance tests the distance function
func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"héllo", "hello", 1},
	}
	for _, tt := range tests {
		if got := levenshteinDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
