package http

import (
	"net/http"

	"github.com/admin-dashboard-api/internal/application/access"
	"github.com/admin-dashboard-api/internal/application/coupon"
	"github.com/admin-dashboard-api/internal/application/passwordreset"
	"github.com/admin-dashboard-api/internal/config"
	"github.com/admin-dashboard-api/internal/domain"
	"github.com/admin-dashboard-api/internal/transport/http/handler"
	appmiddleware "github.com/admin-dashboard-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var adminAuth func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		adminAuth = appmiddleware.Auth(deps.JWTProvider)
	} else {
		adminAuth = appmiddleware.Unavailable("admin API disabled")
	}

	resetRL := appmiddleware.NewRateLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst)

	resetSvc := passwordreset.NewService(passwordreset.ServiceDeps{
		OTPRepo:     deps.OTPRepo,
		UserRepo:    deps.UserRepo,
		Mailer:      deps.Mailer,
		SMSSender:   deps.SMSSender,
		CodeTTL:     cfg.OTPTTL,
		ExchangeTTL: cfg.ResetTokenTTL,
		RevealCode:  cfg.RevealOTP(),
		Now:         deps.Now,
	})
	couponSvc := coupon.NewService(deps.CouponRepo, deps.Now)
	accessSvc := access.NewService(deps.UserRepo, deps.RoleRepo)

	healthH := handler.NewHealthHandler(deps.Health)
	resetH := handler.NewPasswordResetHandler(resetSvc)
	couponH := handler.NewCouponHandler(couponSvc)

	r.Route("/v1", func(r chi.Router) {
		// Public routes
		r.Get("/health-check/{action}", healthH.Ping)

		r.Group(func(r chi.Router) {
			r.Use(resetRL.Limit)
			r.Post("/password-reset/request", resetH.Request)
			r.Post("/password-reset/verify", resetH.Verify)
			r.Post("/password-reset/complete", resetH.Complete)
		})

		r.Post("/coupons/validate", couponH.Validate)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(adminAuth)
			r.Use(appmiddleware.RequirePermission(accessSvc, domain.PermissionManageCoupons))

			r.Post("/coupons", couponH.Create)
			r.Get("/coupons/{code}", couponH.Get)
		})
	})

	return r
}
