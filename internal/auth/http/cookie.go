package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying "Bearer <token>".
const SessionCookieName = "access_token"

// CookieConfig controls the attributes of the session cookie. Its Max-Age always comes
// from the token lifetime reported by login.
type CookieConfig struct {
	Secure bool
	Domain string
}

// setSessionCookie writes the session cookie. http.SetCookie is used instead of
// gin's SetCookie, which would URL-escape the space after the scheme.
func setSessionCookie(c *gin.Context, cfg CookieConfig, token string, maxAge time.Duration) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "Bearer " + token,
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   int(maxAge / time.Second),
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(c *gin.Context, cfg CookieConfig) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   -1,
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionCookieValue returns the raw cookie value, or "" when absent.
func sessionCookieValue(c *gin.Context) string {
	cookie, err := c.Request.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
