package wsession

import (
	"net/http"

	"github.com/x-ordo/WPaymentManager-sub005/token"
)

// IssueCookie sets the session cookie on the response. The cookie is the
// sole persistence mechanism for login state: HttpOnly, SameSite=Lax,
// Path=/, Secure per configuration, Max-Age equal to the session lifetime.
//
// IssueCookie does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) IssueCookie(w http.ResponseWriter, tok string) {
	http.SetCookie(w, &http.Cookie{
		Name:     e.config.Session.CookieName,
		Value:    tok,
		Path:     "/",
		MaxAge:   int(e.config.Session.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   e.config.Session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie deletes the session cookie on the response. Used by logout.
//
// ClearCookie does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     e.config.Session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   e.config.Session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenFromRequest extracts the raw session token from the request cookie.
//
// TokenFromRequest may return an error when input validation, dependency calls, or security checks fail.
// TokenFromRequest does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) TokenFromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(e.config.Session.CookieName)
	if err != nil || cookie.Value == "" {
		return "", ErrNoSessionCookie
	}

	return cookie.Value, nil
}

// SessionFromRequest reads the session cookie, verifies the token, and
// returns the identity payload. A missing cookie and an invalid token are
// equally unauthenticated.
//
// SessionFromRequest may return an error when input validation, dependency calls, or security checks fail.
// SessionFromRequest does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SessionFromRequest(r *http.Request) (token.Payload, error) {
	tok, err := e.TokenFromRequest(r)
	if err != nil {
		return nil, err
	}

	return e.VerifyContext(r.Context(), tok)
}
