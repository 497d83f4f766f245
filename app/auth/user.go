package auth

import "github.com/gin-gonic/gin"

const userContextKey = "auth.user"

// User is the requester identity resolved by the session middleware.
// Handlers only ever see this shape; the OAuth provider behind it is
// an external collaborator.
type User struct {
	Authenticated   bool
	Username        string
	ProfileImageURL string
}

// CurrentUser returns the identity attached to the request, anonymous if
// the middleware did not resolve a session.
func CurrentUser(c *gin.Context) User {
	if v, ok := c.Get(userContextKey); ok {
		if user, ok := v.(User); ok {
			return user
		}
	}
	return User{}
}
