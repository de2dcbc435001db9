package errors

import (
	"encoding/json"
	stderrors "errors"
	"strings"
	"testing"
)

func TestNewFromRegistry(t *testing.T) {
	d := New("R001")
	if d.Code != "R001" {
		t.Errorf("code = %q", d.Code)
	}
	if d.Category != CategoryPattern {
		t.Errorf("category = %q", d.Category)
	}
	if d.Severity != SeverityError {
		t.Errorf("severity = %q", d.Severity)
	}
	if d.Message == "" || d.Detail == "" || d.DocURL == "" {
		t.Error("registered fields not populated")
	}
}

func TestNewUnknownCode(t *testing.T) {
	d := New("Z999")
	if d.Code != "Z999" {
		t.Errorf("code = %q", d.Code)
	}
	if d.Message != "Unknown diagnostic" {
		t.Errorf("message = %q", d.Message)
	}
}

func TestErrorString(t *testing.T) {
	d := New("R002")
	if got := d.Error(); !strings.HasPrefix(got, "R002: ") {
		t.Errorf("Error() = %q", got)
	}

	uncoded := Newf(CategoryCLI, "cannot open %s", "routekit.routes")
	if got := uncoded.Error(); got != "cannot open routekit.routes" {
		t.Errorf("Error() = %q", got)
	}
}

func TestUnwrap(t *testing.T) {
	inner := stderrors.New("underlying")
	d := FromError(inner, "X001")
	if !stderrors.Is(d, inner) {
		t.Error("errors.Is lost the wrapped error")
	}
}

func TestFormatCaret(t *testing.T) {
	DisableColors()
	defer EnableColors()

	out := New("R002").WithPattern("/docs/*/edit", 7).Format()
	lines := strings.Split(out, "\n")

	var patternLine, caretLine string
	for i, line := range lines {
		if strings.Contains(line, "/docs/*/edit") && i+1 < len(lines) {
			patternLine = line
			caretLine = lines[i+1]
			break
		}
	}
	if patternLine == "" {
		t.Fatalf("pattern missing from output:\n%s", out)
	}
	if strings.Index(caretLine, "^") != strings.Index(patternLine, "*") {
		t.Errorf("caret misaligned:\n%s\n%s", patternLine, caretLine)
	}
}

func TestFormatSections(t *testing.T) {
	DisableColors()
	defer EnableColors()

	out := New("R003").
		WithPattern("/users/:id/posts/:id", 0).
		WithSuggestion("Rename one of the parameters").
		WithExample("/users/:userId/posts/:postId").
		Format()

	for _, want := range []string{"ERROR R003", "Hint:", "Example:", "Learn more:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWarningSeverity(t *testing.T) {
	DisableColors()
	defer EnableColors()

	d := New("R101")
	if d.Severity != SeverityWarning {
		t.Fatalf("severity = %q, want warning", d.Severity)
	}
	if !strings.Contains(d.Format(), "WARNING") {
		t.Error("formatted warning missing WARNING label")
	}

	if got := New("R001").AsWarning().Severity; got != SeverityWarning {
		t.Errorf("AsWarning severity = %q", got)
	}
}

func TestFormatCompact(t *testing.T) {
	got := New("R001").WithPattern("users/:id", 1).FormatCompact()
	want := "users/:id: R001: Pattern must start with a slash"
	if got != want {
		t.Errorf("FormatCompact = %q, want %q", got, want)
	}
}

func TestFormatJSONIsValid(t *testing.T) {
	out := New("R102").WithPattern("/users/:id", 0).WithSuggestion("Remove it").FormatJSON()

	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if decoded["code"] != "R102" {
		t.Errorf("code = %v", decoded["code"])
	}
	if decoded["severity"] != "warning" {
		t.Errorf("severity = %v", decoded["severity"])
	}
}
