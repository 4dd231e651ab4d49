package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// memberIDKey is the key used to store the calling member's ID in the Gin context.
const memberIDKey = contextKey("memberID")

// MemberIdentityHeader names the header the upstream gateway uses to
// assert the caller's member identity. Authentication itself happens
// before requests reach this service.
const MemberIdentityHeader = "X-Member-ID"

// MemberIdentityMiddleware requires the gateway-asserted member identity
// header and stores it in the Gin context for handlers. Websocket
// clients cannot set headers from the browser, so the memberID query
// parameter is accepted as a fallback.
func MemberIdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID := c.GetHeader(MemberIdentityHeader)
		if memberID == "" {
			memberID = c.Query("memberID")
		}
		if memberID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing member identity"})
			return
		}
		c.Set(string(memberIDKey), memberID)
		c.Next()
	}
}

// GetMemberIDFromContext retrieves the calling member's ID from the Gin context.
// It returns the member ID and a boolean indicating if it was found.
func GetMemberIDFromContext(c *gin.Context) (string, bool) {
	val, exists := c.Get(string(memberIDKey))
	if !exists {
		return "", false
	}
	memberID, ok := val.(string)
	if !ok {
		return "", false
	}
	return memberID, true
}
