package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw webhook body.
const SignatureHeader = "X-Gruby-Signature"

// WebhookAuth verifies the provider's webhook signature before any handler
// runs. The body is read here and restored for the handler. On verification
// failure the request is rejected with no side effects.
func WebhookAuth() gin.HandlerFunc {
	secret := os.Getenv("PAYMENT_WEBHOOK_SECRET")
	if secret == "" {
		panic("PAYMENT_WEBHOOK_SECRET is not set")
	}

	return func(c *gin.Context) {
		provided := c.GetHeader(SignatureHeader)
		if provided == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "missing webhook signature"})
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(body)

		providedRaw, err := hex.DecodeString(provided)
		if err != nil || !hmac.Equal(providedRaw, mac.Sum(nil)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid webhook signature"})
			return
		}

		c.Next()
	}
}

// Sign computes the signature for a payload. Shared with tests and any
// internal replay tooling.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
