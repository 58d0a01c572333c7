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
		{code: CodeUpstreamValidation, status: http.StatusUnprocessableEntity, publicMsg: "request rejected by marketplace", detailsOK: true},
		{code: CodeUpstream, status: http.StatusBadGateway, publicMsg: "marketplace unavailable", retryable: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
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

func TestWrapPreservesChain(t *testing.T) {
	base := stdErrors.New("connection refused")
	err := Wrap(CodeUpstream, base, "fetch products")

	if !stdErrors.Is(err, base) {
		t.Fatal("expected wrapped error to match base via errors.Is")
	}
	if typed := As(err); typed == nil || typed.Code() != CodeUpstream {
		t.Fatalf("unexpected typed error: %v", typed)
	}
}

func TestDumpIncludesUpstreamFields(t *testing.T) {
	upErr := &UpstreamError{Status: 503, Body: `{"message":"maintenance"}`}
	err := Wrap(CodeUpstream, upErr, "fetch settings")

	d := Dump(err)
	if d.UpstreamStatus != 503 {
		t.Fatalf("expected upstream status 503, got %d", d.UpstreamStatus)
	}
	if d.UpstreamBody == "" {
		t.Fatal("expected upstream body to be captured")
	}
	if len(d.Chain) < 2 {
		t.Fatalf("expected full chain, got %v", d.Chain)
	}
}
