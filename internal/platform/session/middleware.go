package session

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

const (
	// CookieName is the cookie carrying the opaque session ID.
	CookieName = "session_id"

	// ContextSessionID is the gin context key holding the current session ID.
	ContextSessionID = "sessionID"

	// ContextUserID is the gin context key holding the authenticated user ID.
	// Absent for guest sessions.
	ContextUserID = "userID"
)

// Middleware returns a Gin middleware that resolves the session cookie.
// Requests without a valid session get a fresh guest session, so every page
// can carry flash messages regardless of authentication state.
func (s *Store) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if id, err := c.Cookie(CookieName); err == nil {
			if sess, err := s.FindByID(ctx, id); err == nil && !sess.IsExpired() {
				c.Set(ContextSessionID, sess.ID)
				if sess.IsAuthenticated() {
					c.Set(ContextUserID, sess.UserID)
				}
				c.Next()
				return
			}
		}

		sess, err := s.Create(ctx, 0, false, 0)
		if err != nil {
			slog.Error("failed to create guest session", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session store unavailable"})
			return
		}

		SetCookie(c, sess.ID, 0)
		c.Set(ContextSessionID, sess.ID)
		c.Next()
	}
}

// AuthRequired returns a Gin middleware that restricts access to
// authenticated users. Anonymous requests are redirected to the login page
// with the original path in the next query parameter.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserID(c); !ok {
			next := url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, "/login?next="+next)
			c.Abort()
			return
		}
		c.Next()
	}
}

// SetCookie writes the session cookie. maxAge 0 yields a browser-session
// cookie; a positive value keeps the login across browser restarts
// (remember me).
func SetCookie(c *gin.Context, id string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, id, maxAge, "/", "", false, true)
}

// ClearCookie removes the session cookie.
func ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
}

// UserID returns the authenticated user ID stored by Middleware, if any.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// ID returns the current session ID stored by Middleware.
func ID(c *gin.Context) string {
	v, ok := c.Get(ContextSessionID)
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}
