package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/itzkennedydev/Gruby-Web-sub003/auth"
	"github.com/itzkennedydev/Gruby-Web-sub003/cache"
	"github.com/itzkennedydev/Gruby-Web-sub003/middleware"
)

func authRouter(sessions cache.Cache) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", middleware.ValidateToken(sessions), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})
	return r
}

func TestValidateTokenAcceptsSession(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	token, err := auth.MintSessionToken("user-1", "user-1@example.com")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	r := authRouter(cache.NewMemory())
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
	}

	// Second request rides the session cache.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("cached path failed: %d", w.Code)
	}
}

func TestValidateTokenRejectsMissingAndGarbage(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	r := authRouter(cache.NewMemory())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: expected 401, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", w.Code)
	}
}

func TestValidateAPIKey(t *testing.T) {
	os.Setenv("ADMIN_API_KEY", "admin-key")
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", middleware.ValidateAPIKey, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing key: expected 401, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-API-KEY", "admin-key")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid key: expected 200, got %d", w.Code)
	}
}

func TestRateLimitThrottlesPerCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/limited", func(c *gin.Context) {
		c.Set("user_id", c.GetHeader("X-Test-User"))
		c.Next()
	}, middleware.RateLimit(rate.Limit(1), 2), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	hit := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		req.Header.Set("X-Test-User", user)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if hit("u1") != http.StatusOK || hit("u1") != http.StatusOK {
		t.Fatalf("burst should be allowed")
	}
	if hit("u1") != http.StatusTooManyRequests {
		t.Fatalf("third rapid call should be throttled")
	}
	// A different caller has its own bucket.
	if hit("u2") != http.StatusOK {
		t.Fatalf("second caller should not be throttled")
	}
}

func TestWebhookAuthRoundTrip(t *testing.T) {
	os.Setenv("PAYMENT_WEBHOOK_SECRET", "whsec")
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/hook", middleware.WebhookAuth(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	body := []byte(`{"id":"evt_1","type":"ping"}`)

	req := httptest.NewRequest(http.MethodPost, "/hook", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("missing signature: expected 403, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/hook", bytes.NewReader(body))
	req.Header.Set(middleware.SignatureHeader, middleware.Sign("whsec", body))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid signature: expected 200, got %d %s", w.Code, w.Body.String())
	}
}
