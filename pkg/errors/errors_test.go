package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
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
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
		{code: CodeNetwork, status: http.StatusBadGateway, publicMsg: "notification service unreachable", retryable: true},
		{code: CodeParse, status: http.StatusBadGateway, publicMsg: "malformed notification response", retryable: true},
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

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]any{"field": "foo"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("connection refused")
	wrapped := Wrap(CodeNetwork, cause, "fetch unread count")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Error() != "NETWORK_ERROR: fetch unread count: connection refused" {
		t.Fatalf("unexpected error string %q", wrapped.Error())
	}
}

func TestCodeHelpers(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeParse, "bad body"))
	if !IsCode(err, CodeParse) {
		t.Fatalf("expected parse code through wrapping")
	}
	if IsCode(err, CodeNetwork) {
		t.Fatalf("unexpected network code")
	}
	if CodeOf(stdErrors.New("plain")) != CodeInternal {
		t.Fatalf("untyped errors should report internal")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestDumpCollectsChainAndPostgresDetails(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "notifications_pkey", TableName: "notifications"}
	err := Wrap(CodeDependency, pgErr, "create notification")

	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %s", dump.Code)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected 2 chain entries, got %d", len(dump.Chain))
	}
	if dump.PGCode != "23505" || dump.PGTable != "notifications" {
		t.Fatalf("unexpected pg details %+v", dump)
	}
	if Dump(nil).TopMessage != "" {
		t.Fatalf("expected empty dump for nil")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(fmt.Errorf("tick: %w", New(CodeNetwork, "timeout"))) {
		t.Fatalf("network errors should be retryable")
	}
	if IsRetryable(New(CodeValidation, "bad id")) {
		t.Fatalf("validation errors should not be retryable")
	}
	if IsRetryable(stdErrors.New("plain")) {
		t.Fatalf("untyped errors should not be retryable")
	}
	if got := Newf(CodeNotFound, "notification %s not found", "42").Message(); got != "notification 42 not found" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestDumpCollectsSQLiteCodes(t *testing.T) {
	liteErr := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}
	dump := Dump(Wrap(CodeDependency, liteErr, "create notification"))
	if dump.SQLiteCode != "19/1555" {
		t.Fatalf("unexpected sqlite code %q", dump.SQLiteCode)
	}
	if dump.PGCode != "" {
		t.Fatalf("sqlite errors should not fill pg fields: %+v", dump)
	}
}
