package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataFor(t *testing.T) {
	if got := MetadataFor(CodeInsufficientFunds).HTTPStatus; got != http.StatusUnprocessableEntity {
		t.Fatalf("insufficient funds status = %d", got)
	}
	if got := MetadataFor(CodeSignatureInvalid).HTTPStatus; got != http.StatusBadRequest {
		t.Fatalf("signature status = %d", got)
	}
	if got := MetadataFor(Code("bogus")).HTTPStatus; got != http.StatusInternalServerError {
		t.Fatalf("unknown code should fall back to internal, got %d", got)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("db down")
	err := Wrap(CodeDependency, cause, "load donation")

	if !stdErrors.Is(err, cause) {
		t.Fatal("wrapped error should unwrap to cause")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("code = %s", err.Code())
	}
}

func TestAsFindsTypedError(t *testing.T) {
	inner := New(CodeBudgetExceeded, "milestones over goal").WithDetails(map[string]int{"goal": 100})
	wrapped := fmt.Errorf("submit campaign: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeBudgetExceeded {
		t.Fatalf("code = %s", typed.Code())
	}
	if typed.Details() == nil {
		t.Fatal("details lost through wrapping")
	}
}

func TestDumpChain(t *testing.T) {
	err := Wrap(CodeStateConflict, stdErrors.New("already approved"), "transition")
	d := Dump(err)
	if d.Code != CodeStateConflict {
		t.Fatalf("dump code = %s", d.Code)
	}
	if len(d.Chain) < 2 {
		t.Fatalf("expected full chain, got %v", d.Chain)
	}
}
