package ui

import (
	"net/http"
	"strings"
	"time"

	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"

	"posgate/internal/domain"
	"posgate/internal/service/directory"
)

const sessionCookieName = "posgate_session"

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessionPrincipal(r); ok {
		http.Redirect(w, r, "/ui", http.StatusSeeOther)
		return
	}
	renderHTML(w, http.StatusOK, loginPage(r, strings.TrimSpace(r.URL.Query().Get("error"))))
}

// LoginSubmit checks the posted credentials against the directory and
// signs a session token into an HttpOnly cookie. Every failure redirects
// back with the same generic message; the audit log keeps the real reason.
func (h *Handler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/ui/login?error=invalid+form", http.StatusSeeOther)
		return
	}
	username := strings.TrimSpace(r.Form.Get("username"))
	password := r.Form.Get("password")
	if username == "" || password == "" {
		http.Redirect(w, r, "/ui/login?error=username+and+password+are+required", http.StatusSeeOther)
		return
	}

	p, err := h.Directory.Authenticate(r.Context(), username, directory.HashCredential(password))
	if err != nil {
		http.Redirect(w, r, "/ui/login?error=invalid+username+or+password", http.StatusSeeOther)
		return
	}
	token, err := h.Sessions.Issue(p.Username(), h.SessionTTL)
	if err != nil {
		renderHTML(w, http.StatusInternalServerError, errorPage("Sign-in Failed", "Could not create a session. Try again."))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Production,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(h.SessionTTL),
	})
	http.Redirect(w, r, "/ui", http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/ui/login", http.StatusSeeOther)
}

// RequireSession gates the console pages. A missing or stale cookie
// redirects to the login form instead of the API's JSON 401; a valid one
// puts the resolved principal on the request context. Locked and
// deactivated accounts resolve to nothing, so their sessions die on the
// next page load.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := h.sessionPrincipal(r)
		if !ok {
			h.clearSessionCookie(w)
			RedirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(domain.WithPrincipal(r.Context(), p)))
	})
}

func (h *Handler) sessionPrincipal(r *http.Request) (domain.ContextPrincipal, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return domain.ContextPrincipal{}, false
	}
	claims, err := h.Sessions.Validate(r.Context(), strings.TrimSpace(cookie.Value))
	if err != nil || claims.Subject == "" {
		return domain.ContextPrincipal{}, false
	}
	return h.Directory.ContextPrincipal(claims.Subject, "cookie")
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Production,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// RedirectToLogin sends browser traffic to the login form. Anything
// outside /ui is an API caller and gets a bare 401 instead.
func RedirectToLogin(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, "/ui") {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, "/ui/login", http.StatusSeeOther)
}

func loginPage(r *http.Request, errMsg string) gomponents.Node {
	content := []gomponents.Node{
		html.H1(gomponents.Text("posgate")),
		html.P(html.Class("muted"), gomponents.Text("Sign in to the admin console.")),
		html.Form(
			html.Method("post"),
			html.Action("/ui/login"),
			html.Class("login-form"),
			csrfField(r),
			html.Label(gomponents.Text("Username")),
			html.Input(html.Type("text"), html.Name("username"), gomponents.Attr("autocomplete", "username"), html.Required()),
			html.Label(gomponents.Text("Password")),
			html.Input(html.Type("password"), html.Name("password"), gomponents.Attr("autocomplete", "current-password"), html.Required()),
			html.Button(html.Type("submit"), gomponents.Text("Sign In")),
		),
	}
	if errMsg != "" {
		content = append([]gomponents.Node{html.P(html.Class("error"), gomponents.Text(errMsg))}, content...)
	}

	return html.HTML(
		html.Lang("en"),
		pageHead("Sign in", false),
		html.Body(
			html.Class("login-body"),
			html.Main(html.Class("login-wrap"), gomponents.Group(content)),
		),
	)
}
