package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/petrescue/admin-notifier/api/responses"
	"github.com/petrescue/admin-notifier/pkg/adminapi"
	pkgerrors "github.com/petrescue/admin-notifier/pkg/errors"
	"github.com/petrescue/admin-notifier/pkg/logger"
)

// CSRF implements the double-submit cookie check the admin site uses: safe
// requests receive a csrftoken cookie when they lack one, and unsafe requests
// must echo that cookie in the X-CSRFToken header.
func CSRF(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(adminapi.CSRFCookieName)
			hasCookie := err == nil && cookie.Value != ""

			if isSafeMethod(r.Method) {
				if !hasCookie {
					http.SetCookie(w, &http.Cookie{
						Name:     adminapi.CSRFCookieName,
						Value:    newCSRFToken(),
						Path:     "/",
						SameSite: http.SameSiteLaxMode,
					})
				}
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get(adminapi.CSRFHeader)
			if !hasCookie || header == "" || subtle.ConstantTimeCompare([]byte(header), []byte(cookie.Value)) != 1 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "CSRF token missing or incorrect"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

func newCSRFToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
