package handler

import (
	"merchant-wallet-service/internal/adapter/http/middleware"
	redisStore "merchant-wallet-service/internal/adapter/storage/redis"
	"merchant-wallet-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc          ports.AuthService
	WalletSvc        ports.WalletService
	PaymentMethodSvc ports.PaymentMethodService
	TokenSvc         ports.TokenService
	RateLimitStore   *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers   []ports.HealthChecker
	Logger           zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	adminOnly := middleware.AdminOnly()
	walletHandler := NewWalletHandler(deps.WalletSvc)
	pmHandler := NewPaymentMethodHandler(deps.PaymentMethodSvc, deps.WalletSvc)

	wallets := v1.Group("/wallets", jwtAuth)
	{
		wallets.GET("/me", rl("wallet_read"), walletHandler.GetMyWallet)
		wallets.GET("/:id", rl("wallet_read"), walletHandler.GetWallet)
		wallets.GET("/:id/balance", rl("wallet_read"), walletHandler.GetBalance)
		wallets.GET("/:id/transactions", rl("wallet_read"), walletHandler.ListTransactions)
		wallets.POST("/:id/transfer", rl("wallet_write"), walletHandler.Transfer)

		// Ledger postings and status changes are back office operations.
		wallets.POST("/:id/transactions", rl("wallet_write"), adminOnly, walletHandler.ProcessTransaction)
		wallets.POST("/:id/suspend", rl("admin"), adminOnly, walletHandler.Suspend)
		wallets.POST("/:id/reactivate", rl("admin"), adminOnly, walletHandler.Reactivate)

		// Payout channels nested under the owning wallet.
		wallets.POST("/:id/payment-methods", rl("payment_methods"), pmHandler.Add)
		wallets.GET("/:id/payment-methods", rl("payment_methods"), pmHandler.List)
		wallets.GET("/:id/payment-methods/default", rl("payment_methods"), pmHandler.GetDefault)
		wallets.POST("/:id/payment-methods/:pmID/default", rl("payment_methods"), pmHandler.SetDefault)
		wallets.POST("/:id/payment-methods/:pmID/deactivate", rl("payment_methods"), pmHandler.Deactivate)
		wallets.POST("/:id/payment-methods/:pmID/verify", rl("admin"), adminOnly, pmHandler.Verify)
	}

	return r
}
