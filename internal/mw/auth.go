package mw

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dorm-manager-backend/internal/auth"
	"dorm-manager-backend/internal/model"
)

// userKey is the gin context key the authenticated user is stored under.
const userKey = "auth_user"

// CurrentUser returns the authenticated user set by Auth, or nil on an
// unauthenticated request.
func CurrentUser(c *gin.Context) *model.User {
	v, exists := c.Get(userKey)
	if !exists {
		return nil
	}
	return v.(*model.User)
}

// SessionToken extracts the opaque session token from the cookie or a
// Bearer Authorization header. Logout uses the same extraction so both
// token sources are revocable.
func SessionToken(c *gin.Context, cookieName string) string {
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// Auth resolves the session token to a user and loads the user with its
// role from the database on every request, so role edits and
// deactivation take effect immediately. Missing or stale sessions get a
// 401 with a login redirect hint.
func Auth(sessions *auth.Sessions, db *gorm.DB, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c, cookieName)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "redirect": "/login"})
			return
		}

		userID, found := sessions.Lookup(token)
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired", "redirect": "/login"})
			return
		}

		var user model.User
		if err := db.Preload("Role").First(&user, userID).Error; err != nil {
			sessions.Destroy(token)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired", "redirect": "/login"})
			return
		}
		if !user.Active {
			sessions.Destroy(token)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account is deactivated", "redirect": "/login"})
			return
		}

		c.Set(userKey, &user)
		c.Next()
	}
}

// Require gates a route on one capability. The check re-reads the role
// loaded for this request; authorization decisions are never cached
// across requests. Denials are 403 with the missing capability logged.
func Require(capability auth.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "redirect": "/login"})
			return
		}
		if !auth.RoleAllows(user.Role, capability) {
			log.Printf("user %d (role %s) denied capability %s on %s %s",
				user.ID, user.Role.Key, capability, c.Request.Method, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}
