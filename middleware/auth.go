package middleware

import (
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/itzkennedydev/Gruby-Web-sub003/auth"
	"github.com/itzkennedydev/Gruby-Web-sub003/cache"
)

const sessionCacheTTL = 10 * time.Minute

func sessionCacheKey(token string) string {
	sum := sha1.Sum([]byte(token))
	return "auth:session:" + hex.EncodeToString(sum[:])
}

// ValidateToken checks the Bearer session JWT and puts user_id on the
// context. Parsed results are cached so hot callers skip signature checks;
// the cache is only a fast path, a miss or cache error falls through to a
// full parse.
func ValidateToken(sessions cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		if sessions != nil {
			if userID, ok, err := sessions.Get(c.Request.Context(), sessionCacheKey(tokenString)); err == nil && ok {
				c.Set("user_id", userID)
				c.Next()
				return
			}
		}

		userID, err := auth.ParseSessionToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		if sessions != nil {
			_ = sessions.Set(c.Request.Context(), sessionCacheKey(tokenString), userID, sessionCacheTTL)
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
