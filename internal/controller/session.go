package controller

import (
	"net/http"
	"time"

	"github.com/callsys/callboard/internal/service/auth"
)

const sessionCookieName = "token"

func (c controller) identityFromCookie(r *http.Request) (auth.Identity, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return auth.Identity{}, auth.ErrInvalidToken
	}

	return c.authService.ParseToken(cookie.Value)
}

func (c controller) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		Secure:   c.secureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (c controller) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   c.secureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
