package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodshare/backend/internal/logging"
	"github.com/pageza/foodshare/backend/internal/middleware"
	"github.com/pageza/foodshare/backend/internal/testhelpers"
)

func TestNilRateLimiterAllowsEverything(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := middleware.NewRecipeCreationRateLimiter(nil, 1, logging.Discard())
	assert.Nil(t, limiter)

	router := gin.New()
	router.POST("/recipes", limiter.RateLimitMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/recipes", nil))
		assert.Equal(t, http.StatusCreated, rr.Code)
	}
}

func TestRateLimiterWithRedis(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	limiter := middleware.NewRateLimiter(client, middleware.RateLimitConfig{
		Window:    time.Hour,
		Limit:     2,
		KeyPrefix: "test",
	}, logging.Discard())

	ctx := context.Background()
	for i, want := range []bool{true, true, false} {
		allowed, remaining, reset, err := limiter.IsAllowed(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, want, allowed, "request %d", i+1)
		assert.GreaterOrEqual(t, remaining, 0)
		assert.True(t, reset.After(time.Now()))
	}

	allowed, _, _, err := limiter.IsAllowed(ctx, "43")
	require.NoError(t, err)
	assert.True(t, allowed, "limits are per key")

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/recipes", func(c *gin.Context) {
		c.Set(middleware.UserIDKey, uint(42))
		c.Next()
	}, limiter.RateLimitMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/recipes", nil))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "2", rr.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))
}
