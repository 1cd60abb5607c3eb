package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/petrescue/admin-notifier/pkg/adminapi"
	pkgerrors "github.com/petrescue/admin-notifier/pkg/errors"
	"github.com/petrescue/admin-notifier/pkg/logger"
)

// encodeFailureBody is written when a payload cannot be marshalled.
const encodeFailureBody = `{"error":{"code":"INTERNAL_ERROR","message":"internal server error"}}`

// WriteJSON writes payload as-is; the admin notification endpoints return bare
// objects rather than an envelope.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		status, body = http.StatusInternalServerError, []byte(encodeFailureBody)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// WriteError maps err onto its HTTP status and the {"error": {...}} envelope
// the notification client understands. Only client-facing codes keep their
// own message; everything else uses the public message for its code.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	apiErr := adminapi.APIError{Code: string(typed.Code()), Message: meta.PublicMessage}
	if exposesMessage(typed.Code()) && typed.Message() != "" {
		apiErr.Message = typed.Message()
	}
	if meta.DetailsAllowed {
		apiErr.Details = typed.Details()
	}

	if logg != nil {
		logRejection(ctx, logg, err, meta.HTTPStatus)
	}
	WriteJSON(w, meta.HTTPStatus, adminapi.ErrorEnvelope{Error: apiErr})
}

func exposesMessage(code pkgerrors.Code) bool {
	switch code {
	case pkgerrors.CodeValidation, pkgerrors.CodeForbidden, pkgerrors.CodeUnauthorized, pkgerrors.CodeNotFound:
		return true
	default:
		return false
	}
}

func logRejection(ctx context.Context, logg *logger.Logger, err error, status int) {
	dump := pkgerrors.Dump(err)
	fields := map[string]any{
		"status":      status,
		"error_chain": dump.Chain,
	}
	if dump.PGCode != "" {
		fields["pg_code"] = dump.PGCode
		fields["pg_constraint"] = dump.PGConstraint
		fields["pg_table"] = dump.PGTable
		fields["pg_detail"] = dump.PGDetail
	}
	if dump.SQLiteCode != "" {
		fields["sqlite_code"] = dump.SQLiteCode
	}
	ctx = logg.WithFields(ctx, fields)

	if status >= http.StatusInternalServerError {
		logg.Error(ctx, "request.error", err)
		return
	}
	logg.WarnErr(ctx, "request.rejected", err)
}
