package handler

import (
	"encoding/json"
	"net/http"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ResetIssuedEnvelope answers a reset code request. ExpiresIn is in seconds.
type ResetIssuedEnvelope struct {
	Message   string `json:"message"`
	ExpiresIn int    `json:"expiresIn"`
	OTP       string `json:"otp,omitempty"`
}

// ResetVerifiedEnvelope carries the exchange token for the final step.
type ResetVerifiedEnvelope struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// CouponSummary is the public view of an applied coupon.
type CouponSummary struct {
	Code  string      `json:"code"`
	Type  string      `json:"type"`
	Value json.Number `json:"value"`
}

// CouponValidationEnvelope is always sent with 200; Valid tells the outcome.
type CouponValidationEnvelope struct {
	Valid          bool           `json:"valid"`
	Reason         string         `json:"reason,omitempty"`
	DiscountAmount json.Number    `json:"discountAmount,omitempty"`
	NewTotal       json.Number    `json:"newTotal,omitempty"`
	Coupon         *CouponSummary `json:"coupon,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// decodeJSON reads exactly one JSON value from a bounded body. Unknown
// fields are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return false
	}
	return !dec.More()
}

const maxBodyBytes = 1 << 20
