package http

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/admin-dashboard-api/internal/config"
	"github.com/admin-dashboard-api/internal/domain"
	jwtinfra "github.com/admin-dashboard-api/internal/infrastructure/jwt"
	"github.com/admin-dashboard-api/internal/infrastructure/postgres"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var codePattern = regexp.MustCompile(`\b[0-9]{6}\b`)

// captureMailer keeps the last body sent to each address.
type captureMailer struct {
	mu   sync.Mutex
	last map[string]string
}

func (m *captureMailer) SendEmail(to, _, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		m.last = map[string]string{}
	}
	m.last[to] = body
	return nil
}

func (m *captureMailer) code(t *testing.T, to string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	c := codePattern.FindString(m.last[to])
	require.NotEmpty(t, c, "no code mailed to %s", to)
	return c
}

type testEnv struct {
	db     *gorm.DB
	mailer *captureMailer
	jwt    *jwtinfra.Provider
	srv    http.Handler
}

func newTestJWTProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")
	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privKey)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))
	pubBytes, err := x509.MarshalPKIXPublicKey(&privKey.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))

	p, err := jwtinfra.NewProvider(&config.Config{
		JWTPrivateKeyPath: privPath,
		JWTPublicKeyPath:  pubPath,
		JWTExpiry:         time.Hour,
	})
	require.NoError(t, err)
	return p
}

func newTestEnv(t *testing.T, withJWT bool) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), postgres.Options())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, postgres.Migrate(db))

	env := &testEnv{db: db, mailer: &captureMailer{}}
	if withJWT {
		env.jwt = newTestJWTProvider(t)
	}
	cfg := &config.Config{
		AppEnv:             "test",
		OTPTTL:             10 * time.Minute,
		ResetTokenTTL:      time.Hour,
		RateLimitPerSecond: 100,
		RateLimitBurst:     100,
		AllowedOrigins:     []string{"*"},
	}
	env.srv = NewRouter(cfg, &Deps{
		UserRepo:    postgres.NewUserRepo(db),
		RoleRepo:    postgres.NewRoleRepo(db),
		OTPRepo:     postgres.NewOTPRepo(db),
		CouponRepo:  postgres.NewCouponRepo(db),
		Health:      postgres.NewHealth(db),
		Mailer:      env.mailer,
		JWTProvider: env.jwt,
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, bearer string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rr := httptest.NewRecorder()
	e.srv.ServeHTTP(rr, req)
	var out map[string]interface{}
	_ = json.Unmarshal(rr.Body.Bytes(), &out)
	return rr, out
}

func (e *testEnv) seedUser(t *testing.T, id, email, roleID string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("original-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, postgres.NewUserRepo(e.db).Put(context.Background(), &domain.User{
		UserID: id, Email: email, PasswordHash: string(hash), RoleID: roleID, Enable: true,
	}))
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t, false)
	env.seedUser(t, "u1", "alice@example.com", "")
	email := map[string]string{"email": "alice@example.com"}

	rr, body := env.do(t, http.MethodPost, "/v1/password-reset/request", email, "")
	require.Equal(t, http.StatusOK, rr.Code)
	_, leaked := body["otp"]
	assert.False(t, leaked)
	first := env.mailer.code(t, "alice@example.com")

	rr, _ = env.do(t, http.MethodPost, "/v1/password-reset/request", email, "")
	require.Equal(t, http.StatusOK, rr.Code)
	second := env.mailer.code(t, "alice@example.com")

	if first != second {
		rr, _ = env.do(t, http.MethodPost, "/v1/password-reset/verify",
			map[string]string{"email": "alice@example.com", "otp": first}, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, "superseded code must not verify")
	}

	rr, body = env.do(t, http.MethodPost, "/v1/password-reset/verify",
		map[string]string{"email": "alice@example.com", "otp": second}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	token, _ := body["token"].(string)
	require.Len(t, token, 64)

	rr, _ = env.do(t, http.MethodPost, "/v1/password-reset/verify",
		map[string]string{"email": "alice@example.com", "otp": second}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code, "code is single use")

	rr, _ = env.do(t, http.MethodPost, "/v1/password-reset/complete",
		map[string]string{"email": "alice@example.com", "token": "wrong", "password": "new-password-1"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = env.do(t, http.MethodPost, "/v1/password-reset/complete",
		map[string]string{"email": "alice@example.com", "token": token, "password": "new-password-1"}, "")
	require.Equal(t, http.StatusOK, rr.Code)

	u, err := postgres.NewUserRepo(env.db).Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("new-password-1")))

	var left int64
	require.NoError(t, env.db.Model(&domain.PasswordResetOTP{}).Count(&left).Error)
	assert.Zero(t, left)

	rr, _ = env.do(t, http.MethodPost, "/v1/password-reset/complete",
		map[string]string{"email": "alice@example.com", "token": token, "password": "new-password-2"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code, "token is single use")
}

func TestPasswordReset_UnknownEmailLooksTheSame(t *testing.T) {
	env := newTestEnv(t, false)
	env.seedUser(t, "u1", "alice@example.com", "")

	known, knownBody := env.do(t, http.MethodPost, "/v1/password-reset/request", map[string]string{"email": "alice@example.com"}, "")
	unknown, unknownBody := env.do(t, http.MethodPost, "/v1/password-reset/request", map[string]string{"email": "ghost@example.com"}, "")

	assert.Equal(t, known.Code, unknown.Code)
	assert.Equal(t, knownBody, unknownBody)

	var n int64
	require.NoError(t, env.db.Model(&domain.PasswordResetOTP{}).Where("email = ?", "ghost@example.com").Count(&n).Error)
	assert.Zero(t, n)
}

func TestCouponAdminAndValidate(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	require.NoError(t, postgres.NewRoleRepo(env.db).Put(ctx, &domain.Role{
		RoleID: "r-mkt", Name: "marketing", Enable: true, Permissions: []string{domain.PermissionManageCoupons},
	}))
	require.NoError(t, postgres.NewRoleRepo(env.db).Put(ctx, &domain.Role{RoleID: "r-sup", Name: "support", Enable: true}))
	env.seedUser(t, "admin", "admin@example.com", "r-mkt")
	env.seedUser(t, "agent", "agent@example.com", "r-sup")

	adminTok, err := env.jwt.Sign("admin", "r-mkt")
	require.NoError(t, err)
	agentTok, err := env.jwt.Sign("agent", "r-sup")
	require.NoError(t, err)

	now := time.Now().UTC()
	input := map[string]interface{}{
		"code":            "save10",
		"type":            "percentage",
		"value":           10,
		"min_order_value": 500,
		"starts_at":       now.Add(-time.Hour).Format(time.RFC3339),
		"expires_at":      now.Add(24 * time.Hour).Format(time.RFC3339),
	}

	rr, _ := env.do(t, http.MethodPost, "/v1/coupons", input, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr, _ = env.do(t, http.MethodPost, "/v1/coupons", input, agentTok)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, _ = env.do(t, http.MethodPost, "/v1/coupons", input, adminTok)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr, _ = env.do(t, http.MethodPost, "/v1/coupons", input, adminTok)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr, body := env.do(t, http.MethodGet, "/v1/coupons/Save10", nil, adminTok)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "SAVE10", body["code"])

	rr, body = env.do(t, http.MethodPost, "/v1/coupons/validate", map[string]interface{}{"code": "save10", "cartTotal": 1000}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, float64(100), body["discountAmount"])
	assert.Equal(t, float64(900), body["newTotal"])

	rr, body = env.do(t, http.MethodPost, "/v1/coupons/validate", map[string]interface{}{"code": "save10", "cartTotal": 400}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, false, body["valid"])
	assert.Contains(t, body["reason"], "500")

	rr, body = env.do(t, http.MethodPost, "/v1/coupons/validate", map[string]interface{}{"code": "nope", "cartTotal": 10}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, false, body["valid"])
}

func TestAdminRoutesDisabledWithoutKeys(t *testing.T) {
	env := newTestEnv(t, false)
	rr, body := env.do(t, http.MethodGet, "/v1/coupons/SAVE10", nil, "anything")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "admin API disabled", body["error"])
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t, false)
	rr, body := env.do(t, http.MethodGet, "/v1/health-check/ping", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pong", body["message"])

	rr, _ = env.do(t, http.MethodGet, "/v1/health-check/ready", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestResetRoutesAreRateLimited(t *testing.T) {
	env := newTestEnv(t, false)
	env.srv = NewRouter(&config.Config{
		OTPTTL:             10 * time.Minute,
		ResetTokenTTL:      time.Hour,
		RateLimitPerSecond: 0.001,
		RateLimitBurst:     1,
		AllowedOrigins:     []string{"*"},
	}, &Deps{
		UserRepo:   postgres.NewUserRepo(env.db),
		RoleRepo:   postgres.NewRoleRepo(env.db),
		OTPRepo:    postgres.NewOTPRepo(env.db),
		CouponRepo: postgres.NewCouponRepo(env.db),
		Mailer:     env.mailer,
	})

	body := map[string]string{"email": "x@example.com"}
	rr, _ := env.do(t, http.MethodPost, "/v1/password-reset/request", body, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	rr, _ = env.do(t, http.MethodPost, "/v1/password-reset/request", body, "")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}
