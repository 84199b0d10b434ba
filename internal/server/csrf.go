package server

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
)

// Double-submit token for the admin form: the same value travels in an
// HttpOnly cookie and a hidden field, and a post is accepted only when both
// match.
const (
	csrfCookieName = "pcg_csrf"
	csrfFieldName  = "csrf_token"
	csrfTokenLen   = 32
)

func generateCSRFToken() (string, error) {
	b := make([]byte, csrfTokenLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// csrfToken returns the token from the request cookie, issuing a new cookie
// when none is present. It must run before the response header is written.
func csrfToken(w http.ResponseWriter, r *http.Request) (string, error) {
	if cookie, err := r.Cookie(csrfCookieName); err == nil && len(cookie.Value) == csrfTokenLen*2 {
		return cookie.Value, nil
	}

	token, err := generateCSRFToken()
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     adminPrefix,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
	return token, nil
}

// validCSRF reports whether the posted token matches the cookie. Call after
// ParseForm.
func validCSRF(r *http.Request) bool {
	cookie, err := r.Cookie(csrfCookieName)
	if err != nil || len(cookie.Value) != csrfTokenLen*2 {
		return false
	}
	posted := r.PostForm.Get(csrfFieldName)
	return subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(posted)) == 1
}
