package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ServiceTokenMiddleware marks requests carrying a valid HMAC-signed service
// token as system callers. System status is what lets an automated posting
// skip the maker-checker self-approval rule; an ordinary caller without the
// token can never obtain it, so the control is not bypassable from user calls.
//
// The middleware never rejects a request: a missing or invalid token simply
// leaves the caller as a regular user.
func ServiceTokenMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("X-Service-Token")
		if header == "" || secret == "" {
			c.Next()
			return
		}

		tokenString := strings.TrimSpace(header)
		token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			logger := GetLoggerFromCtx(c.Request.Context())
			logger.Warn("Invalid service token presented", "error", err)
			c.Next()
			return
		}

		if claims, ok := token.Claims.(*jwt.RegisteredClaims); ok && claims.Subject != "" {
			c.Set(string(systemKey), true)
			c.Set(string(userIDKey), claims.Subject)
		}
		c.Next()
	}
}
