package redisdb

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strconv"
	"time"

	"github.com/admin-dashboard-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

// otpRetention matches the DynamoDB purge window.
const otpRetention = 24 * time.Hour

// Each email owns one hash. Times are unix millis.
const (
	hID                = "id"
	hEmail             = "email"
	hCode              = "code"
	hExpiresAt         = "expires_at"
	hUsed              = "used"
	hVerifiedAt        = "verified_at"
	hRequesterMetadata = "requester_metadata"
	hExchangeToken     = "exchange_token"
	hCreatedAt         = "created_at"
)

// KEYS[1] reset hash; ARGV code, token, now.
var markVerifiedScript = redis.NewScript(`
if redis.call("HGET", KEYS[1], "used") ~= "0" then
	return 0
end
if redis.call("HGET", KEYS[1], "code") ~= ARGV[1] then
	return 0
end
local exp = tonumber(redis.call("HGET", KEYS[1], "expires_at"))
if not exp or exp <= tonumber(ARGV[3]) then
	return 0
end
redis.call("HSET", KEYS[1], "used", "1", "exchange_token", ARGV[2], "verified_at", ARGV[3])
return 1
`)

// KEYS[1] reset hash; ARGV record id.
var consumeScript = redis.NewScript(`
if redis.call("HGET", KEYS[1], "id") == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// OTPRepo keeps reset codes in Redis hashes that expire a day after issuance.
type OTPRepo struct {
	client *redis.Client
}

func NewOTPRepo(client *redis.Client) *OTPRepo {
	return &OTPRepo{client: client}
}

func otpKey(email string) string {
	return "password_reset:" + email
}

// Replace drops the previous hash for o.Email and writes o in one transaction.
func (r *OTPRepo) Replace(ctx context.Context, o *domain.PasswordResetOTP) error {
	key := otpKey(o.Email)
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key, toFields(o))
		p.PExpireAt(ctx, key, o.CreatedAt.Add(otpRetention))
		return nil
	})
	if err != nil {
		return fmt.Errorf("write reset code: %w", err)
	}
	return nil
}

func (r *OTPRepo) MarkVerified(ctx context.Context, email, code, exchangeToken string, now time.Time) (bool, error) {
	n, err := markVerifiedScript.Run(ctx, r.client, []string{otpKey(email)},
		code, exchangeToken, now.UnixMilli()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *OTPRepo) FindUnused(ctx context.Context, email, code string) (*domain.PasswordResetOTP, error) {
	o, err := r.get(ctx, email)
	if err != nil {
		return nil, err
	}
	if o.Used || subtle.ConstantTimeCompare([]byte(o.Code), []byte(code)) != 1 {
		return nil, fmt.Errorf("reset code not found: %w", domain.ErrNotFound)
	}
	return o, nil
}

func (r *OTPRepo) FindByExchangeToken(ctx context.Context, email, exchangeToken string) (*domain.PasswordResetOTP, error) {
	o, err := r.get(ctx, email)
	if err != nil {
		return nil, err
	}
	if !o.Used || o.ExchangeToken == nil ||
		subtle.ConstantTimeCompare([]byte(*o.ExchangeToken), []byte(exchangeToken)) != 1 {
		return nil, fmt.Errorf("reset token not found: %w", domain.ErrNotFound)
	}
	return o, nil
}

// Consume deletes the hash only while it still holds the record o was read from.
func (r *OTPRepo) Consume(ctx context.Context, o *domain.PasswordResetOTP) (bool, error) {
	n, err := consumeScript.Run(ctx, r.client, []string{otpKey(o.Email)}, o.ID).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *OTPRepo) get(ctx context.Context, email string) (*domain.PasswordResetOTP, error) {
	m, err := r.client.HGetAll(ctx, otpKey(email)).Result()
	if err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("reset code not found: %w", domain.ErrNotFound)
	}
	return fromFields(m)
}

func toFields(o *domain.PasswordResetOTP) map[string]any {
	used := "0"
	if o.Used {
		used = "1"
	}
	f := map[string]any{
		hID:                o.ID,
		hEmail:             o.Email,
		hCode:              o.Code,
		hExpiresAt:         o.ExpiresAt.UnixMilli(),
		hUsed:              used,
		hRequesterMetadata: o.RequesterMetadata,
		hCreatedAt:         o.CreatedAt.UnixMilli(),
	}
	if o.VerifiedAt != nil {
		f[hVerifiedAt] = o.VerifiedAt.UnixMilli()
	}
	if o.ExchangeToken != nil {
		f[hExchangeToken] = *o.ExchangeToken
	}
	return f
}

func fromFields(m map[string]string) (*domain.PasswordResetOTP, error) {
	expires, err := millis(m, hExpiresAt)
	if err != nil {
		return nil, err
	}
	created, err := millis(m, hCreatedAt)
	if err != nil {
		return nil, err
	}
	o := &domain.PasswordResetOTP{
		ID:                m[hID],
		Email:             m[hEmail],
		Code:              m[hCode],
		ExpiresAt:         expires,
		Used:              m[hUsed] == "1",
		RequesterMetadata: m[hRequesterMetadata],
		CreatedAt:         created,
	}
	if _, ok := m[hVerifiedAt]; ok {
		v, err := millis(m, hVerifiedAt)
		if err != nil {
			return nil, err
		}
		o.VerifiedAt = &v
	}
	if tok, ok := m[hExchangeToken]; ok {
		o.ExchangeToken = &tok
	}
	return o, nil
}

func millis(m map[string]string, field string) (time.Time, error) {
	n, err := strconv.ParseInt(m[field], 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode %s: %w", field, err)
	}
	return time.UnixMilli(n).UTC(), nil
}
