package postgres

import (
	"context"
	"time"

	"github.com/admin-dashboard-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OTPRepo stores password reset codes. Every state change is a single
// conditional statement so concurrent requests race on the row, not in Go.
type OTPRepo struct {
	db *gorm.DB
}

func NewOTPRepo(db *gorm.DB) *OTPRepo {
	return &OTPRepo{db: db}
}

// replaceColumns are overwritten when o.Email already holds a code. id is
// included so Consume keyed on the old record loses.
var replaceColumns = []string{
	"id", "code", "expires_at", "used", "verified_at",
	"requester_metadata", "exchange_token", "created_at",
}

// Replace upserts o on the unique email, so concurrent issues for one
// address leave a single row.
func (r *OTPRepo) Replace(ctx context.Context, o *domain.PasswordResetOTP) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns(replaceColumns),
	}).Create(o).Error
}

func (r *OTPRepo) MarkVerified(ctx context.Context, email, code, exchangeToken string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.PasswordResetOTP{}).
		Where("email = ? AND code = ? AND used = ? AND expires_at > ?", email, code, false, now).
		Updates(map[string]interface{}{
			"used":           true,
			"exchange_token": exchangeToken,
			"verified_at":    now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *OTPRepo) FindUnused(ctx context.Context, email, code string) (*domain.PasswordResetOTP, error) {
	var o domain.PasswordResetOTP
	err := r.db.WithContext(ctx).
		Where("email = ? AND code = ? AND used = ?", email, code, false).
		Order("created_at DESC").
		First(&o).Error
	if err != nil {
		return nil, notFound(err, "reset code")
	}
	return &o, nil
}

func (r *OTPRepo) FindByExchangeToken(ctx context.Context, email, exchangeToken string) (*domain.PasswordResetOTP, error) {
	var o domain.PasswordResetOTP
	err := r.db.WithContext(ctx).
		Where("email = ? AND exchange_token = ? AND used = ?", email, exchangeToken, true).
		Order("created_at DESC").
		First(&o).Error
	if err != nil {
		return nil, notFound(err, "reset token")
	}
	return &o, nil
}

func (r *OTPRepo) Consume(ctx context.Context, o *domain.PasswordResetOTP) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", o.ID).Delete(&domain.PasswordResetOTP{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// PurgeExpired removes codes whose exchange window closed before cutoff.
func (r *OTPRepo) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&domain.PasswordResetOTP{})
	return res.RowsAffected, res.Error
}
