package errors

import (
	"strings"
	"testing"
)

func TestAppend(t *testing.T) {
	var errs Errors
	errs = errs.Append(nil, New("first"), nil, New("second"))
	if len(errs) != 2 {
		t.Fatalf("appended %d errors, want 2", len(errs))
	}
	if errs[0].Error() != "first" || errs[1].Error() != "second" {
		t.Errorf("unexpected errors %v", errs)
	}
}

func TestReturn(t *testing.T) {
	var errs Errors
	if err := errs.Return(); err != nil {
		t.Errorf("empty list returned %v, want nil", err)
	}
	errs = errs.Append(New("oops"))
	if err := errs.Return(); err == nil {
		t.Error("non-empty list returned nil")
	}
}

func TestUnion(t *testing.T) {
	if err := Union(nil, nil); err != nil {
		t.Errorf("union of nils returned %v, want nil", err)
	}

	inner := Errors{New("a"), New("b")}
	err := Union(nil, inner, New("c"))
	errs, ok := err.(Errors)
	if !ok {
		t.Fatalf("union returned %T, want Errors", err)
	}
	if len(errs) != 3 {
		t.Fatalf("union holds %d errors, want 3", len(errs))
	}
	msg := errs.Error()
	for _, want := range []string{"a", "b", "c"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestErrorsMessage(t *testing.T) {
	if msg := (Errors{}).Error(); msg != "no errors" {
		t.Errorf("empty message %q", msg)
	}
	if msg := (Errors{New("only")}).Error(); msg != "only" {
		t.Errorf("single message %q", msg)
	}
	msg := Errors{New("one"), New("two")}.Error()
	if !strings.HasPrefix(msg, "multiple errors:") ||
		!strings.Contains(msg, "\n\tone") || !strings.Contains(msg, "\n\ttwo") {
		t.Errorf("multiple message %q", msg)
	}
}
