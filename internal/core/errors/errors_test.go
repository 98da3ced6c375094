package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeValidationError, "marker must not be empty")
		if err.Error() != "[VALIDATION_ERROR] marker must not be empty" {
			t.Errorf("unexpected message %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("permission denied")
		err := Wrap(original, CodeIO, "read source file")
		expected := "[IO_ERROR] read source file: permission denied"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
		if !errors.Is(err, original) {
			t.Error("expected wrapped error to unwrap to the original")
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeParse, "syntax error")
		if !IsCode(err, CodeParse) {
			t.Error("expected IsCode to return true for CodeParse")
		}
		if IsCode(err, CodeIO) {
			t.Error("expected IsCode to return false for CodeIO")
		}
	})

	t.Run("IsCodeNested", func(t *testing.T) {
		inner := WrapPath(errors.New("gone"), CodeIO, "read source file", "src/lib.rs")
		outer := Wrap(inner, CodeResolution, "resolve counterpart")
		if !IsCode(outer, CodeResolution) || !IsCode(outer, CodeIO) {
			t.Error("expected both codes to be visible through the chain")
		}
		if IsCode(outer, CodeParse) {
			t.Error("did not expect CodeParse")
		}
		if got := PathOf(outer); got != "src/lib.rs" {
			t.Errorf("expected path src/lib.rs, got %q", got)
		}
	})

	t.Run("AddContextPlainError", func(t *testing.T) {
		err := AddContext(fmt.Errorf("boom"), CtxOperation, "walk")
		if !IsCode(err, CodeInternal) {
			t.Error("expected plain errors to be wrapped as CodeInternal")
		}
	})
}
