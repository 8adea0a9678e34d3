package handler

import (
	"encoding/json"
	"net/http"

	"github.com/admin-dashboard-api/internal/application/coupon"
	"github.com/admin-dashboard-api/internal/domain"
	"github.com/admin-dashboard-api/internal/pkg/money"
	"github.com/admin-dashboard-api/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// CouponHandler serves public coupon checks and the admin coupon screen.
type CouponHandler struct {
	svc coupon.Service
}

func NewCouponHandler(svc coupon.Service) *CouponHandler {
	return &CouponHandler{svc: svc}
}

// Validate answers 200 for every rule outcome; only bad input and store
// failures are HTTP errors.
func (h *CouponHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req domain.ValidateCouponRequest
	if !decodeJSON(w, r, &req) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.Validate(r.Context(), coupon.ValidateRequest{
		Code:      req.Code,
		CartTotal: *req.CartTotal,
		CartItems: req.CartItems,
	})
	if err != nil {
		httpError(w, err)
		return
	}
	if !res.Valid {
		writeJSON(w, http.StatusOK, CouponValidationEnvelope{Valid: false, Reason: res.Reason})
		return
	}
	writeJSON(w, http.StatusOK, CouponValidationEnvelope{
		Valid:          true,
		DiscountAmount: json.Number(money.String(res.DiscountAmount)),
		NewTotal:       json.Number(money.String(res.NewTotal)),
		Coupon: &CouponSummary{
			Code:  res.Coupon.Code,
			Type:  string(res.Coupon.Type),
			Value: json.Number(res.Coupon.Value.String()),
		},
	})
}

func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.CouponInput
	if !decodeJSON(w, r, &in) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.svc.Create(r.Context(), in)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CouponHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
