package ui

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"
)

// CSRF protection uses the double-submit pattern: the token lives in a
// cookie and every mutating form posts a copy back, either as a hidden
// field or an X-CSRF-Token header. The two must match byte for byte.

const (
	csrfCookieName = "posgate_csrf"
	csrfTokenBytes = 32
)

type csrfContextKey struct{}

// EnsureCSRFToken guarantees a token cookie exists and exposes the
// token to page renderers through the request context.
func (h *Handler) EnsureCSRFToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := readCSRFCookie(r)
		if token == "" {
			token = newCSRFToken()
			http.SetCookie(w, &http.Cookie{
				Name:     csrfCookieName,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				Secure:   h.Production,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), csrfContextKey{}, token)))
	})
}

// RequireCSRF rejects mutating requests whose submitted token does not
// match the cookie.
func (h *Handler) RequireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		want := readCSRFCookie(r)
		if want == "" {
			renderHTML(w, http.StatusForbidden, errorPage("CSRF Check Failed", "Missing CSRF token cookie."))
			return
		}
		got := submittedCSRFToken(r)
		if subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
			renderHTML(w, http.StatusForbidden, errorPage("CSRF Check Failed", "Submitted CSRF token did not match."))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// submittedCSRFToken pulls the caller's token copy from the header or,
// failing that, the posted form.
func submittedCSRFToken(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("X-CSRF-Token")); v != "" {
		return v
	}
	_ = r.ParseForm()
	return strings.TrimSpace(r.Form.Get("csrf_token"))
}

// csrfField renders the hidden input mutating forms carry.
func csrfField(r *http.Request) gomponents.Node {
	token, _ := r.Context().Value(csrfContextKey{}).(string)
	if token == "" {
		token = readCSRFCookie(r)
	}
	return html.Input(
		html.Type("hidden"),
		html.Name("csrf_token"),
		html.Value(token),
	)
}

func readCSRFCookie(r *http.Request) string {
	c, err := r.Cookie(csrfCookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(c.Value)
}

func newCSRFToken() string {
	b := make([]byte, csrfTokenBytes)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
