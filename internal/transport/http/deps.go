package http

import (
	"context"
	"time"

	"github.com/admin-dashboard-api/internal/domain"
	jwtinfra "github.com/admin-dashboard-api/internal/infrastructure/jwt"
	"github.com/admin-dashboard-api/internal/infrastructure/smtp"
	"github.com/admin-dashboard-api/internal/infrastructure/sns"
	"github.com/admin-dashboard-api/internal/transport/http/handler"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// RoleRepository is the minimal interface the router requires from a role store.
type RoleRepository interface {
	Get(ctx context.Context, roleID string) (*domain.Role, error)
}

// OTPRepository is the minimal interface the router requires from a reset code store.
// MarkVerified and Consume must be single conditional writes.
type OTPRepository interface {
	Replace(ctx context.Context, o *domain.PasswordResetOTP) error
	MarkVerified(ctx context.Context, email, code, exchangeToken string, now time.Time) (bool, error)
	FindUnused(ctx context.Context, email, code string) (*domain.PasswordResetOTP, error)
	FindByExchangeToken(ctx context.Context, email, exchangeToken string) (*domain.PasswordResetOTP, error)
	Consume(ctx context.Context, o *domain.PasswordResetOTP) (bool, error)
}

// CouponRepository is the minimal interface the router requires from a coupon store.
type CouponRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	Create(ctx context.Context, c *domain.Coupon) error
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo   UserRepository
	RoleRepo   RoleRepository
	OTPRepo    OTPRepository
	CouponRepo CouponRepository
	// Health is probed by /v1/health-check/ready. Optional.
	Health    handler.Pinger
	Mailer    smtp.Mailer
	SMSSender sns.SMSSender // optional
	// JWTProvider guards the admin routes. Without it they answer 503.
	JWTProvider *jwtinfra.Provider
	// Now overrides the clock in tests.
	Now func() time.Time
}
