package passwordreset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/admin-dashboard-api/internal/domain"
	"github.com/admin-dashboard-api/internal/pkg/id"
	"github.com/admin-dashboard-api/internal/pkg/otpcode"
	pkgtoken "github.com/admin-dashboard-api/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

// GenericIssueMessage is returned for every accepted request, whether or not
// the email belongs to an account.
const GenericIssueMessage = "If an account exists for this email, a reset code has been sent"

// bcrypt ignores input past 72 bytes.
const maxPasswordBytes = 72

type IssueRequest struct {
	Email string
	// RequesterMetadata is stored with the code for auditing (client IP, user agent).
	RequesterMetadata string
}

type IssueResult struct {
	Message   string
	ExpiresIn time.Duration
	// Code is only set when the service was built with RevealCode.
	Code string
}

type Service interface {
	IssueCode(ctx context.Context, req IssueRequest) (*IssueResult, error)
	VerifyCode(ctx context.Context, email, code string) (exchangeToken string, err error)
	CompleteReset(ctx context.Context, email, exchangeToken, newPassword string) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type otpStore interface {
	// Replace removes every record for o.Email and inserts o.
	Replace(ctx context.Context, o *domain.PasswordResetOTP) error
	// MarkVerified flips used and stores the token only when an unused,
	// unexpired record matches; it reports whether a row changed.
	MarkVerified(ctx context.Context, email, code, exchangeToken string, now time.Time) (bool, error)
	FindUnused(ctx context.Context, email, code string) (*domain.PasswordResetOTP, error)
	FindByExchangeToken(ctx context.Context, email, exchangeToken string) (*domain.PasswordResetOTP, error)
	// Consume deletes the record and reports whether this caller removed it.
	Consume(ctx context.Context, o *domain.PasswordResetOTP) (bool, error)
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// ServiceDeps wires the reset flow. SMSSender may be nil.
type ServiceDeps struct {
	OTPRepo     otpStore
	UserRepo    userStore
	Mailer      mailer
	SMSSender   smsSender
	CodeTTL     time.Duration
	ExchangeTTL time.Duration
	RevealCode  bool
	Now         func() time.Time
}

type service struct {
	otps        otpStore
	users       userStore
	mailer      mailer
	sms         smsSender
	codeTTL     time.Duration
	exchangeTTL time.Duration
	revealCode  bool
	now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		otps:        deps.OTPRepo,
		users:       deps.UserRepo,
		mailer:      deps.Mailer,
		sms:         deps.SMSSender,
		codeTTL:     deps.CodeTTL,
		exchangeTTL: deps.ExchangeTTL,
		revealCode:  deps.RevealCode,
		now:         now,
	}
}

func (s *service) IssueCode(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, fmt.Errorf("email required: %w", domain.ErrBadRequest)
	}
	result := &IssueResult{Message: GenericIssueMessage, ExpiresIn: s.codeTTL}

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		slog.Info("password reset requested for unknown email")
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	code, err := otpcode.Generate()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	rec := &domain.PasswordResetOTP{
		ID:                id.New(),
		Email:             email,
		Code:              code,
		ExpiresAt:         now.Add(s.codeTTL),
		CreatedAt:         now,
		RequesterMetadata: req.RequesterMetadata,
	}
	if err := s.otps.Replace(ctx, rec); err != nil {
		return nil, fmt.Errorf("store reset code: %w", err)
	}

	s.deliver(ctx, u, code)

	if s.revealCode {
		result.Code = code
	}
	return result, nil
}

// deliver never fails the request: the code is already stored and the user
// can ask again.
func (s *service) deliver(ctx context.Context, u *domain.User, code string) {
	minutes := int(s.codeTTL.Minutes())
	body := fmt.Sprintf("Your password reset code is %s. It expires in %d minutes.", code, minutes)
	err := s.mailer.SendEmail(u.Email, "Password reset code", body)
	if err == nil {
		return
	}
	slog.Warn("failed to email password reset code", "user_id", u.UserID, "err", err)

	if s.sms == nil || u.Phone == nil || *u.Phone == "" {
		return
	}
	if err := s.sms.SendSMS(ctx, *u.Phone, "Your password reset code: "+code); err != nil {
		slog.Warn("failed to text password reset code", "user_id", u.UserID, "err", err)
	}
}

func (s *service) VerifyCode(ctx context.Context, email, code string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("email required: %w", domain.ErrBadRequest)
	}
	if !otpcode.Valid(code) {
		return "", domain.ErrInvalidCode
	}

	tok, err := pkgtoken.NewExchangeToken()
	if err != nil {
		return "", err
	}
	now := s.now().UTC()
	ok, err := s.otps.MarkVerified(ctx, email, code, tok, now)
	if err != nil {
		return "", fmt.Errorf("mark code verified: %w", err)
	}
	if ok {
		return tok, nil
	}

	// Nothing changed: tell expired apart from unknown or already used.
	rec, err := s.otps.FindUnused(ctx, email, code)
	if errors.Is(err, domain.ErrNotFound) {
		return "", domain.ErrInvalidCode
	}
	if err != nil {
		return "", fmt.Errorf("lookup code: %w", err)
	}
	if rec.Expired(now) {
		return "", domain.ErrExpiredCode
	}
	return "", domain.ErrInvalidCode
}

func (s *service) CompleteReset(ctx context.Context, email, exchangeToken, newPassword string) error {
	if utf8.RuneCountInString(newPassword) < domain.MinPasswordLength {
		return domain.ErrWeakPassword
	}
	if len(newPassword) > maxPasswordBytes {
		return fmt.Errorf("password must be at most %d bytes: %w", maxPasswordBytes, domain.ErrBadRequest)
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email required: %w", domain.ErrBadRequest)
	}
	if exchangeToken == "" {
		return domain.ErrInvalidOrExpiredToken
	}

	rec, err := s.otps.FindByExchangeToken(ctx, email, exchangeToken)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrInvalidOrExpiredToken
	}
	if err != nil {
		return fmt.Errorf("lookup reset token: %w", err)
	}
	if !rec.ExchangeWindowOpen(s.now().UTC(), s.exchangeTTL) {
		return domain.ErrInvalidOrExpiredToken
	}

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrInvalidOrExpiredToken
	}
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	// Consume first so two concurrent completions cannot both succeed.
	consumed, err := s.otps.Consume(ctx, rec)
	if err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}
	if !consumed {
		return domain.ErrInvalidOrExpiredToken
	}
	if err := s.users.UpdatePassword(ctx, u.UserID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	slog.Info("password reset completed", "user_id", u.UserID)
	return nil
}
