package routes

import (
	"time"

	"github.com/Aykachasanli/pascale-backend-server/api/handler"
	"github.com/Aykachasanli/pascale-backend-server/api/middleware"

	"github.com/labstack/echo/v4"
)

type RateLimit struct {
	RPS   float64
	Burst int
}

type Router struct {
	Echo           *echo.Echo
	Auth           *handler.AuthHandler
	Users          *handler.UserHandler
	Products       *handler.ProductHandler
	Health         handler.HealthHandler
	AuthMiddleware middleware.AuthMiddleware
	AuthRate       *middleware.RateLimiter
	LoginRate      *middleware.RateLimiter
}

func NewRouter(
	e *echo.Echo,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	productHandler *handler.ProductHandler,
	health handler.HealthHandler,
	authMiddleware middleware.AuthMiddleware,
	authRate RateLimit,
	loginRate RateLimit,
) *Router {
	return &Router{
		Echo:           e,
		Auth:           authHandler,
		Users:          userHandler,
		Products:       productHandler,
		Health:         health,
		AuthMiddleware: authMiddleware,
		AuthRate:       middleware.NewRateLimiter(authRate.RPS, authRate.Burst, 5*time.Minute),
		LoginRate:      middleware.NewRateLimiter(loginRate.RPS, loginRate.Burst, 10*time.Minute),
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo
	e.GET("/health", r.Health.Check)

	api := e.Group("/api")
	requireAuth := r.AuthMiddleware.RequireAuth
	authRate := r.AuthRate.Middleware()
	loginRate := r.LoginRate.Middleware()

	api.POST("/register", r.Auth.Register, authRate)
	api.POST("/login", r.Auth.Login, loginRate)
	api.POST("/send-otp", r.Auth.SendCode, authRate)
	api.POST("/reset-password-otp", r.Auth.RequestPasswordReset, authRate)
	api.POST("/change-password", r.Auth.ChangePassword, loginRate, r.AuthMiddleware.OptionalAuth)
	api.POST("/deactivate", r.Auth.RequestDeactivation, requireAuth)
	api.POST("/deactivate/confirm", r.Auth.ConfirmDeactivation, requireAuth, loginRate)
	api.POST("/reactivate", r.Auth.RequestReactivation, authRate)
	api.POST("/reactivate/confirm", r.Auth.ConfirmReactivation, loginRate)
	api.POST("/delete-account-otp", r.Auth.RequestAccountDeletion, requireAuth)
	api.DELETE("/account", r.Auth.ConfirmAccountDeletion, requireAuth, loginRate)
	api.POST("/email/change", r.Auth.InitiateEmailChange, requireAuth)
	api.POST("/email/confirm", r.Auth.ConfirmEmailChange, requireAuth, loginRate)

	api.GET("/profile", r.Users.Profile, requireAuth)
	api.PUT("/profile", r.Users.UpdateProfile, requireAuth)
	api.PUT("/profile/image", r.Users.ChangeProfileImage, requireAuth)
	api.GET("/profile/security-log", r.Users.SecurityLog, requireAuth)
	api.PUT("/users/role", r.Users.ChangeRole, requireAuth)
	api.GET("/users", r.Users.ListUsers, requireAuth)
	api.DELETE("/users", r.Users.DeleteUser, requireAuth)

	api.GET("/products", r.Products.List)
	api.GET("/products/:id", r.Products.Get)
	api.POST("/products", r.Products.Create, requireAuth, middleware.RequireRole("admin"))
	api.PUT("/products/:id", r.Products.Update, requireAuth, middleware.RequireRole("admin"))
	api.DELETE("/products/:id", r.Products.Delete, requireAuth, middleware.RequireRole("admin"))
}
