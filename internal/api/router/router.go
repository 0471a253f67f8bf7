package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tajious/parkify/internal/api/handlers"
	"github.com/tajious/parkify/internal/middleware"
	"github.com/tajious/parkify/internal/models"
)

type Router struct {
	app              *fiber.App
	authHandler      *handlers.AuthHandler
	lessorHandler    *handlers.LessorHandler
	userHandler      *handlers.UserHandler
	complaintHandler *handlers.ComplaintHandler
	uploadHandler    *handlers.UploadHandler
	healthHandler    *handlers.HealthHandler
	authMiddleware   *middleware.AuthMiddleware
	rateLimiter      *middleware.RateLimiter
	rateLimit        middleware.RateLimitConfig
}

type Handlers struct {
	Auth      *handlers.AuthHandler
	Lessor    *handlers.LessorHandler
	User      *handlers.UserHandler
	Complaint *handlers.ComplaintHandler
	Upload    *handlers.UploadHandler
	Health    *handlers.HealthHandler
}

func NewRouter(
	app *fiber.App,
	h Handlers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	rateLimit middleware.RateLimitConfig,
) *Router {
	return &Router{
		app:              app,
		authHandler:      h.Auth,
		lessorHandler:    h.Lessor,
		userHandler:      h.User,
		complaintHandler: h.Complaint,
		uploadHandler:    h.Upload,
		healthHandler:    h.Health,
		authMiddleware:   authMiddleware,
		rateLimiter:      rateLimiter,
		rateLimit:        rateLimit,
	}
}

func (r *Router) limit(name string) fiber.Handler {
	cfg := r.rateLimit
	cfg.Name = name
	return r.rateLimiter.RateLimit(cfg)
}

func (r *Router) SetupRoutes() {
	// Probes
	r.app.Get("/health", r.healthHandler.Liveness)
	r.app.Get("/health/ready", r.healthHandler.Readiness)
	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Public routes. Credential guessing is handled by the lockout guard;
	// the per-IP limit only caps raw request volume.
	loginLimit := r.rateLimiter.RateLimit(middleware.RateLimitConfig{
		Name:    "login",
		Enabled: true,
		Limit:   20,
		Window:  time.Minute,
	})
	api := r.app.Group("/api/v1")
	api.Post("/admin/login", loginLimit, r.authHandler.AdminLogin)
	api.Post("/lessors/login", loginLimit, r.authHandler.LessorLogin)
	api.Post("/users/login", loginLimit, r.authHandler.UserLogin)
	api.Post("/users/register", r.limit("register"), r.userHandler.Register)

	// Protected routes
	authn := r.authMiddleware.Authenticate()

	admin := api.Group("/admin", authn, r.authMiddleware.RequireRole(models.RoleAdmin))
	admin.Get("/me", r.authHandler.AdminMe)

	lessors := api.Group("/lessors/:lessor_id", authn, r.authMiddleware.RequireRole(models.RoleLessor))
	lessors.Get("", r.lessorHandler.GetLessor)
	lessors.Put("", r.lessorHandler.UpdateLessor)
	lessors.Delete("", r.lessorHandler.DeleteLessor)
	lessors.Post("/verify-password", r.lessorHandler.VerifyPassword)

	users := api.Group("/users/me", authn, r.authMiddleware.RequireRole(models.RoleUser))
	users.Get("", r.userHandler.Me)
	users.Put("", r.userHandler.UpdateMe)

	api.Post("/complaints", authn, r.authMiddleware.RequireRole(models.RoleUser), r.limit("complaints"), r.complaintHandler.Submit)
	api.Post("/parking-lots/upload", authn, r.authMiddleware.RequireRole(models.RoleLessor), r.limit("uploads"), r.uploadHandler.UploadParkingLotImage)
}
