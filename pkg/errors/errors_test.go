package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeIdempotency, status: http.StatusConflict, publicMsg: "idempotency key reused", detailsOK: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "rate limit exceeded"},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestNewAndWithDetails(t *testing.T) {
	err := New(CodeValidation, "title is required")
	if err.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", err.Code())
	}
	if err.Message() != "title is required" {
		t.Fatalf("unexpected message %q", err.Message())
	}
	if err.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	err.WithDetails(map[string]any{"field": "title"})
	details, ok := err.Details().(map[string]any)
	if !ok || details["field"] != "title" {
		t.Fatalf("details should be preserved, got %#v", err.Details())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("duplicate key")
	wrapped := Wrap(CodeConflict, cause, "create swap item")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}

	// Wrap with a nil cause behaves like New.
	fromNil := Wrap(CodeInternal, nil, "no cause")
	if fromNil.Unwrap() != nil {
		t.Fatalf("expected no cause, got %v", fromNil.Unwrap())
	}
}

func TestAsWalksChain(t *testing.T) {
	typed := New(CodeStateConflict, "item not available")
	outer := Wrap(CodeDependency, typed, "accept request")

	// As returns the outermost typed error, not the inner one.
	if got := As(outer); got == nil || got.Code() != CodeDependency {
		t.Fatalf("expected dependency code from outermost error, got %v", got)
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
	if As(stdErrors.New("plain")) != nil {
		t.Fatalf("plain errors should not convert")
	}
}

func TestNilReceiverSafety(t *testing.T) {
	var err *Error
	if err.Code() != CodeInternal {
		t.Fatalf("nil error should report internal code")
	}
	if err.Message() != "" || err.Details() != nil || err.Error() != "" {
		t.Fatalf("nil error accessors should be zero-valued")
	}
	if err.WithDetails("x") != nil {
		t.Fatalf("WithDetails on nil should stay nil")
	}
}
