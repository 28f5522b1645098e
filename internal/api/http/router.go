package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/campaign-service/internal/api/http/handlers"
	"github.com/spec-kit/campaign-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Payments       *handlers.PaymentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/verify-email", cfg.Users.VerifyEmail)
	authGroup.Post("/forgot-password", cfg.Users.ForgotPassword)
	authGroup.Post("/reset-password", cfg.Users.ResetPassword)
	authGroup.Post("/login", cfg.Users.Login)

	protected := authGroup.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/logout", cfg.Users.Logout)
	protected.Get("/me", cfg.Users.Me)
	protected.Post("/password/change", cfg.Users.ChangePassword)

	paymentsGroup := app.Group("/payments")
	// The webhook and redirect callback are called by the gateway, not
	// by an authenticated user.
	paymentsGroup.Post("/webhook", cfg.Payments.Webhook)
	paymentsGroup.Get("/callback", cfg.Payments.Callback)
	paymentsGroup.Post("/initiate", cfg.AuthMiddleware.Handle, cfg.Payments.Initiate)
}
