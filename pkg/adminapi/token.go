package adminapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
)

const (
	// CSRFCookieName is the session cookie carrying the anti-forgery token.
	CSRFCookieName = "csrftoken"
	// CSRFHeader is the request header the server compares against the cookie.
	CSRFHeader = "X-CSRFToken"
	// SessionCookieName is the authenticated admin session cookie.
	SessionCookieName = "sessionid"
)

var errTokenUnavailable = errors.New("csrf token unavailable")

// TokenSource yields the anti-forgery token attached to every request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed token, typically supplied through configuration.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	token := strings.TrimSpace(string(s))
	if token == "" {
		return "", errTokenUnavailable
	}
	return token, nil
}

// CookieToken reads the csrftoken cookie the server set for baseURL.
type CookieToken struct {
	Jar     http.CookieJar
	BaseURL *url.URL
}

func (c CookieToken) Token(context.Context) (string, error) {
	if c.Jar == nil || c.BaseURL == nil {
		return "", errTokenUnavailable
	}
	for _, cookie := range c.Jar.Cookies(c.BaseURL) {
		if cookie.Name == CSRFCookieName && cookie.Value != "" {
			return cookie.Value, nil
		}
	}
	return "", errTokenUnavailable
}

// NewSessionJar builds a cookie jar pre-seeded with the admin session and,
// when known, the anti-forgery cookie for baseURL.
func NewSessionJar(baseURL, sessionID, csrfToken string) (http.CookieJar, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	var cookies []*http.Cookie
	if sessionID = strings.TrimSpace(sessionID); sessionID != "" {
		cookies = append(cookies, &http.Cookie{Name: SessionCookieName, Value: sessionID, Path: "/"})
	}
	if csrfToken = strings.TrimSpace(csrfToken); csrfToken != "" {
		cookies = append(cookies, &http.Cookie{Name: CSRFCookieName, Value: csrfToken, Path: "/"})
	}
	if len(cookies) > 0 {
		jar.SetCookies(parsed, cookies)
	}
	return jar, nil
}
