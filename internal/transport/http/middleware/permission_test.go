package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	jwtinfra "github.com/admin-dashboard-api/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockChecker struct{ mock.Mock }

func (m *mockChecker) HasPermission(ctx context.Context, userID, permission string) (bool, error) {
	args := m.Called(ctx, userID, permission)
	return args.Bool(0), args.Error(1)
}

func reqWithClaims(userID string) *http.Request {
	ctx := WithClaims(context.Background(), &jwtinfra.Claims{UserID: userID})
	return httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
}

func TestRequirePermission_NoClaimsInContext(t *testing.T) {
	checker := new(mockChecker)
	rr := httptest.NewRecorder()
	RequirePermission(checker, "coupons.manage")(http.HandlerFunc(okHandler)).
		ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	checker.AssertNotCalled(t, "HasPermission", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequirePermission_Denied(t *testing.T) {
	checker := new(mockChecker)
	checker.On("HasPermission", mock.Anything, "u1", "coupons.manage").Return(false, nil)

	rr := httptest.NewRecorder()
	RequirePermission(checker, "coupons.manage")(http.HandlerFunc(okHandler)).ServeHTTP(rr, reqWithClaims("u1"))
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{"error":"forbidden"}`, rr.Body.String())
}

func TestRequirePermission_Granted(t *testing.T) {
	checker := new(mockChecker)
	checker.On("HasPermission", mock.Anything, "u1", "coupons.manage").Return(true, nil)

	rr := httptest.NewRecorder()
	RequirePermission(checker, "coupons.manage")(http.HandlerFunc(okHandler)).ServeHTTP(rr, reqWithClaims("u1"))
	assert.Equal(t, http.StatusOK, rr.Code)
	checker.AssertExpectations(t)
}

func TestRequirePermission_LookupFailure(t *testing.T) {
	checker := new(mockChecker)
	checker.On("HasPermission", mock.Anything, "u1", "coupons.manage").Return(false, errors.New("db down"))

	rr := httptest.NewRecorder()
	RequirePermission(checker, "coupons.manage")(http.HandlerFunc(okHandler)).ServeHTTP(rr, reqWithClaims("u1"))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "db down")
}
