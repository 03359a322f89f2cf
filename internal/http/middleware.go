package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"contact-book-go/internal/config"
)

const userIDKey = "userID"

// Identity resolves the caller from the X-User-Id header. The id is a
// client-supplied trusted value, not a security boundary. A missing or
// malformed header falls back to the configured demo user; with DemoUserID
// set to 0 the fallback is disabled and the request is rejected.
func Identity(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-Id")
		id, err := strconv.ParseUint(raw, 10, 32)
		if raw == "" || err != nil || id == 0 {
			if cfg.DemoUserID == 0 {
				c.AbortWithStatusJSON(401, gin.H{"success": false, "message": "登录已过期，请重新登录"})
				return
			}
			id = uint64(cfg.DemoUserID)
		}
		c.Set(userIDKey, uint(id))
		c.Next()
	}
}

func currentUserID(c *gin.Context) uint {
	return c.MustGet(userIDKey).(uint)
}
