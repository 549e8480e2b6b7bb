package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"loginportal/internal/session"
)

// RequireSession gates protected routes. Anonymous clients are redirected to
// the login page with the requested destination in "next" so it can be
// resumed after a successful login.
func RequireSession(sessions *session.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := sessions.Current(c)
		if !ok {
			session.SetFlash(c, "warning", "Please login to access that page.")
			next := url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, "/login?next="+next)
			c.Abort()
			return
		}

		logger.Debug("User authenticated", zap.String("username", claims.Username))

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)

		c.Next()
	}
}
