package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nocodecorp/portal-api/internal/models"
	"github.com/nocodecorp/portal-api/internal/service"
	"github.com/nocodecorp/portal-api/internal/session"
)

const (
	sessionContextKey = "session"
	bearerContextKey  = "bearerToken"
)

// SessionMiddleware resolves the bearer token into a live session and
// refreshes its activity timestamp. Serving a request is the activity
// signal that keeps the 30-minute idle window open.
func SessionMiddleware(tokens *service.Tokenizer, sessions session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		sid, _, err := tokens.Parse(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		sess, err := sessions.Get(c.Request.Context(), sid)
		if err != nil {
			log.Printf("❌ [Auth] Session lookup failed - Path: %s, Error: %v", c.Request.URL.Path, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Session lookup failed"})
			c.Abort()
			return
		}
		if sess == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			c.Abort()
			return
		}

		if err := sessions.Touch(c.Request.Context(), sid); err != nil {
			log.Printf("⚠️ [Auth] Failed to touch session - Client: %s, Error: %v", sess.ClientID, err)
		}

		c.Set(sessionContextKey, sess)
		c.Set(bearerContextKey, parts[1])
		c.Next()
	}
}

// RequireSession pulls the session the middleware stored in the context.
func RequireSession(c *gin.Context) (*models.Session, bool) {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No authenticated session"})
		c.Abort()
		return nil, false
	}
	sess, ok := v.(*models.Session)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No authenticated session"})
		c.Abort()
		return nil, false
	}
	return sess, true
}

// BearerToken returns the signed token the request authenticated with.
func BearerToken(c *gin.Context) string {
	v, _ := c.Get(bearerContextKey)
	token, _ := v.(string)
	return token
}
