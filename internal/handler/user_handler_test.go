package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/craft-market/internal/handler"
	"github.com/craft-market/internal/middleware"
	"github.com/craft-market/internal/models"
	"github.com/craft-market/internal/repository"
	"github.com/craft-market/internal/service"
)

func setupUserRouter(users repository.UserRepository, blobs *MockBlobStore) (*gin.Engine, *service.AuthService) {
	authService := service.NewAuthService(users, testJWT)
	userService := service.NewUserService(users, blobs)
	h := handler.NewUserHandler(userService)

	router := gin.New()
	v1 := router.Group("/api/v1")
	h.RegisterRoutes(v1, middleware.AuthMiddleware(authService))
	return router, authService
}

// MockBlobStore is a mock implementation of storage.BlobStore
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func adminToken(t *testing.T, authService *service.AuthService) string {
	t.Helper()
	token, err := authService.IssueToken(&models.User{ID: "admin-1", Name: "Admin", Role: models.RoleAdmin}, false)
	require.NoError(t, err)
	return token
}

func userToken(t *testing.T, authService *service.AuthService) string {
	t.Helper()
	token, err := authService.IssueToken(&models.User{ID: "u1", Name: "Dina", Role: models.RoleUser}, false)
	require.NoError(t, err)
	return token
}

func doRequest(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUsers_MissingToken(t *testing.T) {
	router, _ := setupUserRouter(new(MockUserRepository), new(MockBlobStore))

	w := doRequest(router, http.MethodGet, "/api/v1/users", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestList_RequiresAdminRole(t *testing.T) {
	router, authService := setupUserRouter(new(MockUserRepository), new(MockBlobStore))

	w := doRequest(router, http.MethodGet, "/api/v1/users", userToken(t, authService), nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestList_ExcludesPasswordAndToken(t *testing.T) {
	hash := "bcrypt-hash"
	users := new(MockUserRepository)
	users.On("List", mock.Anything).Return([]models.User{
		{
			ID:       "u1",
			Name:     "Dina",
			Email:    "dina@example.com",
			Password: &hash,
			Address:  models.DefaultAddress,
			Image:    models.DefaultImage,
			Token:    "session-token",
		},
	}, nil)

	router, authService := setupUserRouter(users, new(MockBlobStore))
	w := doRequest(router, http.MethodGet, "/api/v1/users", adminToken(t, authService), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "bcrypt-hash")
	assert.NotContains(t, w.Body.String(), "session-token")
	assert.Contains(t, w.Body.String(), "dina@example.com")
}

func TestGet_NotFound(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetByID", mock.Anything, "missing").Return(nil, repository.ErrUserNotFound)

	router, authService := setupUserRouter(users, new(MockBlobStore))
	w := doRequest(router, http.MethodGet, "/api/v1/users/missing", adminToken(t, authService), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateRole_RejectsUnknownRole(t *testing.T) {
	router, authService := setupUserRouter(new(MockUserRepository), new(MockBlobStore))

	w := doRequest(router, http.MethodPatch, "/api/v1/users/u1/role", adminToken(t, authService), gin.H{
		"role": "superuser",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdatePassword_WrongOldPassword(t *testing.T) {
	hash := hashPtr(t, "old-password")
	users := new(MockUserRepository)
	users.On("GetByID", mock.Anything, "u1").Return(&models.User{
		ID:       "u1",
		Password: hash,
	}, nil)

	router, authService := setupUserRouter(users, new(MockBlobStore))
	w := doRequest(router, http.MethodPatch, "/api/v1/users/u1/password", userToken(t, authService), gin.H{
		"old_password": "not-it",
		"new_password": "new-password",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	message, _ := decodeEnvelope(t, w)
	assert.Equal(t, "old password is incorrect", message)
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdatePassword_NewPasswordOverBcryptLimitRejected(t *testing.T) {
	users := new(MockUserRepository)

	router, authService := setupUserRouter(users, new(MockBlobStore))
	w := doRequest(router, http.MethodPatch, "/api/v1/users/u1/password", userToken(t, authService), gin.H{
		"old_password": "old-password",
		"new_password": strings.Repeat("a", 80),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestDeleteSelf_StaleTokenUnauthorized(t *testing.T) {
	users := new(MockUserRepository)

	router, authService := setupUserRouter(users, new(MockBlobStore))

	// The bearer token is valid for u1, but the stored token belongs to a
	// newer login session
	bearer := userToken(t, authService)
	users.On("GetByID", mock.Anything, "u1").Return(&models.User{
		ID:    "u1",
		Token: "a-different-session-token",
	}, nil)

	w := doRequest(router, http.MethodDelete, "/api/v1/users/u1/self", bearer, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	users.AssertNotCalled(t, "DeleteWithDependents", mock.Anything, mock.Anything)
}

func TestDeleteSelf_Success(t *testing.T) {
	users := new(MockUserRepository)

	router, authService := setupUserRouter(users, new(MockBlobStore))

	bearer := userToken(t, authService)
	users.On("GetByID", mock.Anything, "u1").Return(&models.User{
		ID:    "u1",
		Token: bearer,
		Image: models.DefaultImage,
	}, nil)
	users.On("DeleteWithDependents", mock.Anything, "u1").Return(nil)

	w := doRequest(router, http.MethodDelete, "/api/v1/users/u1/self", bearer, nil)

	require.Equal(t, http.StatusOK, w.Code)
	message, _ := decodeEnvelope(t, w)
	assert.Equal(t, "successfully deleted user u1 with all related data", message)
}
