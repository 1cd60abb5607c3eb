package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/petrescue/admin-notifier/pkg/errors"
)

type sampleBody struct {
	Kind  string `json:"kind" validate:"required,oneof=lost found"`
	Count int    `json:"count" validate:"min=1"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"kind":"lost","count":2}`))
	var body sampleBody
	require.NoError(t, DecodeJSONBody(req, &body))
	assert.Equal(t, sampleBody{Kind: "lost", Count: 2}, body)
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"kind":"adopted","count":0}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be one of: lost found", details["kind"])
	assert.Equal(t, "must be at least 1", details["count"])
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"kind":"lost","count":1,"extra":true}`))
	var body sampleBody
	assert.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &body), pkgerrors.CodeValidation))
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=5", nil)
	v, err := ParseQueryInt(req, "limit", 20, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	v, err = ParseQueryInt(httptest.NewRequest(http.MethodGet, "/", nil), "limit", 20, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 20, v)

	_, err = ParseQueryInt(httptest.NewRequest(http.MethodGet, "/?limit=abc", nil), "limit", 20, 1, 100)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = ParseQueryInt(httptest.NewRequest(http.MethodGet, "/?limit=101", nil), "limit", 20, 1, 100)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

type reportBody struct {
	Type string `json:"notification_type" validate:"required,notification_type"`
}

func TestDecodeJSONBodyNotificationTypeTag(t *testing.T) {
	var body reportBody
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"notification_type":"found_report"}`))
	require.NoError(t, DecodeJSONBody(req, &body))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"notification_type":"adoption"}`))
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be lost_report or found_report", details["notification_type"])
}

func TestDecodeJSONBodyRejectsEmptyAndTrailingInput(t *testing.T) {
	var body reportBody
	err := DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("")), &body)
	require.Error(t, err)
	assert.Equal(t, "request body required", pkgerrors.As(err).Message())

	err = DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"notification_type":"lost_report"} {}`)), &body)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
