package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodshare/backend/config"
	"github.com/pageza/foodshare/backend/internal/api"
	"github.com/pageza/foodshare/backend/internal/logging"
	"github.com/pageza/foodshare/backend/internal/metrics"
	"github.com/pageza/foodshare/backend/internal/mocks"
	"github.com/pageza/foodshare/backend/internal/models"
	"github.com/pageza/foodshare/backend/internal/service"
	"github.com/pageza/foodshare/backend/internal/testhelpers"
)

const testSecret = "api-test-secret-with-enough-length!"

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
	images *mocks.MockImageStore
}

func setupAPITest(t *testing.T) *testAPI {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupTestDatabase(t)

	images := &mocks.MockImageStore{}
	images.On("Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("http://cdn.example.com/recipes/images/uploaded.png", nil).Maybe()
	images.On("Delete", mock.Anything, mock.Anything).Return(nil).Maybe()

	cfg := &config.Config{
		Env:             config.Test,
		JWTSecret:       testSecret,
		RecipesPageSize: 6,
		UsersPageSize:   10,
		CatalogPageSize: 10,
	}

	router := gin.New()
	api.SetupAPI(router.Group("/api"), api.Dependencies{
		DB:      db,
		Config:  cfg,
		Log:     logging.Discard(),
		Images:  images,
		Metrics: metrics.New(),
	})

	return &testAPI{
		t:      t,
		router: router,
		db:     db,
		auth:   service.NewAuthService(db, testSecret),
		images: images,
	}
}

func (a *testAPI) token(user models.User) string {
	token, err := a.auth.GenerateToken(user.ID)
	require.NoError(a.t, err)
	return token
}

// do sends a request, authenticated as user when user is non-nil
func (a *testAPI) do(method, path string, user *models.User, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+a.token(*user))
	}

	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}
