package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	appErrors "github.com/cremfish/storefront/internal/errors"
	"github.com/cremfish/storefront/internal/models"
	repository "github.com/cremfish/storefront/internal/repositories"
	service "github.com/cremfish/storefront/internal/services"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testJWTKey = []byte("test-signing-key")

func newUserService() (service.UserService, *mockUserRepo, *mockRateLimitRepo) {
	repo := &mockUserRepo{}
	rateLimitRepo := &mockRateLimitRepo{}
	svc := service.NewUserService(repo, rateLimitRepo, testJWTKey, 24*time.Hour)

	return svc, repo, rateLimitRepo
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Returns Signed Token", func(t *testing.T) {
		// Arrange
		svc, repo, _ := newUserService()

		repo.On("GetUserByUsername", ctx, "angler42").Return(nil, sql.ErrNoRows).Once()
		repo.On("CreateUser", ctx, mock.MatchedBy(func(u *models.User) bool {
			// never persist the plaintext password
			return u.Username == "angler42" && u.Password != "hunter22" &&
				bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("hunter22")) == nil
		})).Return(nil).Once()

		// Act
		resp, err := svc.Register(ctx, &models.RegisterRequest{Username: "angler42", Password: "hunter22"})

		// Assert
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Token)
		assert.Positive(t, resp.ExpiresIn)

		claims := &models.Claims{}
		_, err = jwt.ParseWithClaims(resp.Token, claims, func(t *jwt.Token) (any, error) {
			return testJWTKey, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "angler42", claims.Username)
		assert.False(t, claims.Admin)
		repo.AssertExpectations(t)
	})

	t.Run("Failure - Username Taken", func(t *testing.T) {
		// Arrange
		svc, repo, _ := newUserService()

		existing := &models.User{ID: uuid.New(), Username: "angler42"}
		repo.On("GetUserByUsername", ctx, "angler42").Return(existing, nil).Once()

		// Act
		resp, err := svc.Register(ctx, &models.RegisterRequest{Username: "angler42", Password: "hunter22"})

		// Assert
		require.Error(t, err)
		assert.Nil(t, resp)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeDuplicateEntry, appErr.Code)
		repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Duplicate Raced Past The Lookup", func(t *testing.T) {
		// Arrange
		svc, repo, _ := newUserService()

		repo.On("GetUserByUsername", ctx, "angler42").Return(nil, sql.ErrNoRows).Once()
		repo.On("CreateUser", ctx, mock.AnythingOfType("*models.User")).
			Return(repository.ErrDuplicateUsername).Once()

		// Act
		resp, err := svc.Register(ctx, &models.RegisterRequest{Username: "angler42", Password: "hunter22"})

		// Assert
		require.Error(t, err)
		assert.Nil(t, resp)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeDuplicateEntry, appErr.Code)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	hashed, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	storedUser := &models.User{
		ID:       uuid.New(),
		Username: "angler42",
		Password: string(hashed),
		Admin:    true,
	}

	t.Run("Success - Admin Claim Carried", func(t *testing.T) {
		// Arrange
		svc, repo, rateLimitRepo := newUserService()

		rateLimitRepo.On("CheckLoginRateLimit", ctx, "angler42").Return(true, 4, 0, nil).Once()
		repo.On("GetUserByUsername", ctx, "angler42").Return(storedUser, nil).Once()

		// Act
		resp, err := svc.Login(ctx, &models.LoginRequest{Username: "angler42", Password: "hunter22"})

		// Assert
		require.NoError(t, err)
		assert.True(t, resp.Success)

		claims := &models.Claims{}
		_, err = jwt.ParseWithClaims(resp.Token, claims, func(t *jwt.Token) (any, error) {
			return testJWTKey, nil
		})
		require.NoError(t, err)
		assert.True(t, claims.Admin)
		assert.Equal(t, storedUser.ID, claims.UserID)
	})

	t.Run("Failure - Wrong Password", func(t *testing.T) {
		// Arrange
		svc, repo, rateLimitRepo := newUserService()

		rateLimitRepo.On("CheckLoginRateLimit", ctx, "angler42").Return(true, 3, 0, nil).Once()
		repo.On("GetUserByUsername", ctx, "angler42").Return(storedUser, nil).Once()

		// Act
		resp, err := svc.Login(ctx, &models.LoginRequest{Username: "angler42", Password: "wrong"})

		// Assert
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Empty(t, resp.Token)
		assert.Equal(t, 3, resp.RemainingTries)
	})

	t.Run("Failure - Rate Limited", func(t *testing.T) {
		// Arrange
		svc, repo, rateLimitRepo := newUserService()

		rateLimitRepo.On("CheckLoginRateLimit", ctx, "angler42").Return(false, 0, 90, nil).Once()

		// Act
		resp, err := svc.Login(ctx, &models.LoginRequest{Username: "angler42", Password: "hunter22"})

		// Assert
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, 90, resp.RetryAfter)
		repo.AssertNotCalled(t, "GetUserByUsername", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Rate Limit Backend Error", func(t *testing.T) {
		// Arrange
		svc, _, rateLimitRepo := newUserService()

		rateLimitRepo.On("CheckLoginRateLimit", ctx, "angler42").
			Return(false, 0, 0, errors.New("redis down")).Once()

		// Act
		resp, err := svc.Login(ctx, &models.LoginRequest{Username: "angler42", Password: "hunter22"})

		// Assert
		require.Error(t, err)
		assert.Nil(t, resp)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeThirdPartyError, appErr.Code)
	})
}
