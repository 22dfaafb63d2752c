package handlers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	authCookieName = "password"
	authCookiePath = "/catalogue"
	authCookieDays = 30
)

// isAuthenticated reports whether the request carries the password hash.
// The hash itself is the session token.
func (h *Handler) isAuthenticated(r *http.Request) bool {
	c, err := r.Cookie(authCookieName)
	if err != nil {
		return false
	}
	if c.Value == "" || h.passHash == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(c.Value)), []byte(h.passHash)) == 1
}

func setAuthCookie(w http.ResponseWriter, value string) {
	lifetime := time.Hour * 24 * authCookieDays
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    value,
		Path:     authCookiePath,
		Expires:  time.Now().Add(lifetime),
		MaxAge:   int(lifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   true,
	})
}

func clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     authCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   true,
	})
}

type loginPage struct {
	Error string
}

// login handles requests to the add page that carry no valid session:
// GET shows the login form, POST checks the submitted password.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.render(w, http.StatusUnauthorized, "login.gohtml", loginPage{})
	case http.MethodPost:
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil || !r.PostForm.Has("password") {
			h.render(w, http.StatusUnauthorized, "login.gohtml", loginPage{Error: "Invalid form"})
			return
		}
		hashed := hashPassword(r.PostForm.Get("password"))
		if subtle.ConstantTimeCompare([]byte(hashed), []byte(h.passHash)) != 1 {
			slog.WarnContext(r.Context(), "login: invalid password", slog.String("remote", r.RemoteAddr))
			h.render(w, http.StatusUnauthorized, "login.gohtml", loginPage{Error: "Invalid password"})
			return
		}
		setAuthCookie(w, hashed)
		h.render(w, http.StatusOK, "refresh.gohtml", nil)
	default:
		h.render(w, http.StatusUnauthorized, "login.gohtml", loginPage{Error: "Invalid request"})
	}
}

func (h *Handler) postLogout(w http.ResponseWriter, r *http.Request) error {
	clearAuthCookie(w)
	http.Redirect(w, r, "/catalogue/add", http.StatusSeeOther)
	return nil
}
