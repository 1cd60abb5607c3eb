package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrescue/admin-notifier/pkg/adminapi"
	"github.com/petrescue/admin-notifier/pkg/logger"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestCSRFIssuesCookieOnSafeRequest(t *testing.T) {
	h := CSRF(logger.Nop())(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/notifications/", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, adminapi.CSRFCookieName, cookies[0].Name)
	assert.Len(t, cookies[0].Value, 32)
}

func TestCSRFKeepsExistingCookie(t *testing.T) {
	h := CSRF(logger.Nop())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: adminapi.CSRFCookieName, Value: "existing"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Result().Cookies())
}

func TestCSRFChecksUnsafeRequests(t *testing.T) {
	cases := []struct {
		name   string
		cookie string
		header string
		want   int
	}{
		{name: "matching", cookie: "tok", header: "tok", want: http.StatusNoContent},
		{name: "missing header", cookie: "tok", want: http.StatusForbidden},
		{name: "missing cookie", header: "tok", want: http.StatusForbidden},
		{name: "mismatch", cookie: "tok", header: "other", want: http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := CSRF(logger.Nop())(okHandler())
			req := httptest.NewRequest(http.MethodPost, "/api/admin/notifications/mark-all-read/", nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: adminapi.CSRFCookieName, Value: tc.cookie})
			}
			if tc.header != "" {
				req.Header.Set(adminapi.CSRFHeader, tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusForbidden {
				assert.Contains(t, rec.Body.String(), `"code":"FORBIDDEN"`)
			}
		})
	}
}

func TestRequestIDEchoesOrMints(t *testing.T) {
	h := RequestID(logger.Nop())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestRecovererWritesInternalError(t *testing.T) {
	h := Recoverer(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"INTERNAL_ERROR"`)
}
