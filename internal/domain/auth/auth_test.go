package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"foodreport/internal/pkg/apperr"
	"foodreport/internal/pkg/jwt"
	"foodreport/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockIssuer struct {
	mock.Mock
}

func (m *mockIssuer) GenerateToken(email string) (string, error) {
	args := m.Called(email)
	return args.String(0), args.Error(1)
}

func TestGate(t *testing.T) {
	g := NewGate(" Admin@Example.com ")

	assert.NoError(t, g.Authorize("admin@example.com"))
	assert.NoError(t, g.Authorize("ADMIN@example.com "))
	assert.ErrorIs(t, g.Authorize("other@example.com"), apperr.ErrUnauthorized)
	assert.ErrorIs(t, g.Authorize(""), apperr.ErrUnauthorized)
	assert.ErrorIs(t, NewGate("").Authorize(""), apperr.ErrUnauthorized)
}

func TestLoginIssuesTokenWithEmailClaim(t *testing.T) {
	jwtService := jwt.New("secret", time.Hour)
	svc := NewService(NewGate("admin@example.com"), jwtService, logger.Discard(), nil)

	token, err := svc.Login("Admin@example.com")
	require.NoError(t, err)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Email)
}

func TestLoginRejectsOtherEmailWithoutSigning(t *testing.T) {
	issuer := new(mockIssuer)
	svc := NewService(NewGate("admin@example.com"), issuer, logger.Discard(), nil)

	token, err := svc.Login("someone@example.com")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	assert.Empty(t, token)
	issuer.AssertNotCalled(t, "GenerateToken", mock.Anything)
}

func TestLoginSigningFailure(t *testing.T) {
	issuer := new(mockIssuer)
	issuer.On("GenerateToken", "admin@example.com").Return("", errors.New("no key"))
	svc := NewService(NewGate("admin@example.com"), issuer, logger.Discard(), nil)

	_, err := svc.Login("admin@example.com")
	assert.ErrorContains(t, err, "sign token")
	issuer.AssertExpectations(t)
}

func TestLoginHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtService := jwt.New("secret", time.Hour)
	router := gin.New()
	NewHandler(NewService(NewGate("admin@example.com"), jwtService, logger.Discard(), nil)).
		RegisterRoutes(router.Group("/api"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/login?email=admin@example.com", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Error *string `json:"error"`
		JWT   string  `json:"jwt"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Nil(t, body.Error)
	claims, err := jwtService.ValidateToken(body.JWT)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Email)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/login?email=evil@example.com", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":{"message":"unauthorized email"}}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "jwt")
}
