package handlers

import (
	"errors"
	"net/http"
	"time"
)

// RefreshCookieName is the cookie carrying the opaque refresh token.
const RefreshCookieName = "refresh_token"

var errNoRefreshCookie = errors.New("refresh token cookie missing")

// CookieManager writes and clears the refresh-token cookie. The cookie is
// HttpOnly and Secure with SameSite=None so browser clients on another origin
// can send it; the access token never touches a cookie.
type CookieManager struct {
	ttl    time.Duration
	secure bool
}

func NewCookieManager(ttl time.Duration, secure bool) *CookieManager {
	return &CookieManager{ttl: ttl, secure: secure}
}

func (c *CookieManager) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteNoneMode,
	})
}

func (c *CookieManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteNoneMode,
	})
}

// Read returns the refresh token from the request cookie.
func (c *CookieManager) Read(r *http.Request) (string, error) {
	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil || cookie.Value == "" {
		return "", errNoRefreshCookie
	}
	return TruncateRefreshToken(cookie.Value), nil
}
