package middleware

import "github.com/gin-gonic/gin"

const (
	userIDKey   = contextKey("userID")
	branchIDKey = contextKey("branchID")
	systemKey   = contextKey("systemCaller")
)

// CallerIdentityMiddleware lifts the acting user and branch from the request
// headers into the Gin context. Identity always arrives explicitly from the
// hosting command layer; the engine keeps no ambient session state.
func CallerIdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set(string(userIDKey), userID)
		}
		if branchID := c.GetHeader("X-Branch-ID"); branchID != "" {
			c.Set(string(branchIDKey), branchID)
		}
		c.Next()
	}
}

// GetUserIDFromContext retrieves the acting user ID from the Gin context.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	val, exists := c.Get(string(userIDKey))
	if !exists {
		return "", false
	}
	userID, ok := val.(string)
	return userID, ok
}

// GetBranchIDFromContext retrieves the acting branch ID from the Gin context.
func GetBranchIDFromContext(c *gin.Context) (string, bool) {
	val, exists := c.Get(string(branchIDKey))
	if !exists {
		return "", false
	}
	branchID, ok := val.(string)
	return branchID, ok
}

// IsSystemCaller reports whether the request carried a valid service token.
func IsSystemCaller(c *gin.Context) bool {
	val, exists := c.Get(string(systemKey))
	if !exists {
		return false
	}
	system, ok := val.(bool)
	return ok && system
}
