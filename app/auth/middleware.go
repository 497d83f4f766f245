package auth

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/rivalmap/rivalmap/app/cfg"
)

// Middleware resolves the session cookie into a User on every request.
// Requests without a valid session proceed as anonymous; route handlers
// decide what authentication unlocks.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(SessionCookie)
		if err != nil || cookie == "" {
			c.Set(userContextKey, User{})
			c.Next()
			return
		}

		user, err := ParseSession(cfg.Get().SessionSecret, cookie)
		if err != nil {
			slog.Debug("Invalid session cookie", "error", err)
			c.Set(userContextKey, User{})
			c.Next()
			return
		}

		c.Set(userContextKey, *user)
		c.Next()
	}
}
