package handler

import (
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/admin-dashboard-api/internal/application/passwordreset"
	"github.com/admin-dashboard-api/internal/domain"
	"github.com/admin-dashboard-api/internal/pkg/validate"
)

const maxMetadataLen = 512

// PasswordResetHandler serves the three steps of the reset flow.
type PasswordResetHandler struct {
	svc passwordreset.Service
}

func NewPasswordResetHandler(svc passwordreset.Service) *PasswordResetHandler {
	return &PasswordResetHandler{svc: svc}
}

func (h *PasswordResetHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordResetRequest
	if !decodeJSON(w, r, &req) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.IssueCode(r.Context(), passwordreset.IssueRequest{
		Email:             req.Email,
		RequesterMetadata: requesterMetadata(r),
	})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ResetIssuedEnvelope{
		Message:   res.Message,
		ExpiresIn: int(res.ExpiresIn.Seconds()),
		OTP:       res.Code,
	})
}

func (h *PasswordResetHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyCodeRequest
	if !decodeJSON(w, r, &req) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tok, err := h.svc.VerifyCode(r.Context(), req.Email, req.OTP)
	if errors.Is(err, domain.ErrInvalidCode) || errors.Is(err, domain.ErrExpiredCode) {
		// One message for unknown, used and expired codes.
		writeError(w, http.StatusBadRequest, "Invalid or expired code")
		return
	}
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ResetVerifiedEnvelope{Message: "Code verified", Token: tok})
}

func (h *PasswordResetHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req domain.CompleteResetRequest
	if !decodeJSON(w, r, &req) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	err := h.svc.CompleteReset(r.Context(), req.Email, req.Token, req.Password)
	if errors.Is(err, domain.ErrInvalidOrExpiredToken) {
		writeError(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Password has been reset"})
}

// requesterMetadata records who asked for a code. RemoteAddr already holds
// the client address once chi's RealIP middleware has run.
func requesterMetadata(r *http.Request) string {
	meta := "ip=" + r.RemoteAddr + " ua=" + r.UserAgent()
	if len(meta) <= maxMetadataLen {
		return meta
	}
	meta = meta[:maxMetadataLen]
	for !utf8.ValidString(meta) {
		meta = meta[:len(meta)-1]
	}
	return meta
}
