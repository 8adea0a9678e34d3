package domain

import "time"

// MinPasswordLength is the shortest password CompleteReset accepts.
const MinPasswordLength = 8

// PasswordResetOTP is one issued reset code. Email is unique, so issuing a
// new code overwrites the previous one.
//
// RequesterMetadata and ExchangeToken are separate columns: the first records
// who asked for the code, the second is minted once the code is verified.
type PasswordResetOTP struct {
	ID                string     `json:"id" gorm:"primaryKey;size:26"`
	Email             string     `json:"email" gorm:"uniqueIndex;not null"`
	Code              string     `json:"-" gorm:"size:6;not null"`
	ExpiresAt         time.Time  `json:"expires_at" gorm:"not null"`
	Used              bool       `json:"used" gorm:"not null;default:false"`
	VerifiedAt        *time.Time `json:"verified_at,omitempty"`
	RequesterMetadata string     `json:"requester_metadata,omitempty" gorm:"size:512"`
	ExchangeToken     *string    `json:"-" gorm:"index;size:128"`
	CreatedAt         time.Time  `json:"created_at" gorm:"not null"`
}

func (PasswordResetOTP) TableName() string { return "password_reset_otps" }

// Expired reports whether the code can no longer be verified at now. A code
// is dead from ExpiresAt on, matching the stores' expires_at > now check.
func (o *PasswordResetOTP) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// ExchangeWindowOpen reports whether a verified record can still be traded for
// a password change. The window is measured from issuance, not verification.
func (o *PasswordResetOTP) ExchangeWindowOpen(now time.Time, window time.Duration) bool {
	return o.Used && !now.After(o.CreatedAt.Add(window))
}

// PasswordResetRequest starts the flow.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyCodeRequest trades a code for an exchange token.
type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// CompleteResetRequest sets the new password.
type CompleteResetRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Token    string `json:"token" validate:"required"`
	Password string `json:"password"`
}
