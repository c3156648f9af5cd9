package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stratton-prime/certexam-backend/internal/config"
	"github.com/stratton-prime/certexam-backend/internal/handler"
	"github.com/stratton-prime/certexam-backend/internal/middleware"
	"github.com/stratton-prime/certexam-backend/internal/response"
	"github.com/stratton-prime/certexam-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Examinee *handler.ExamineeHandler
	Admin    *handler.AdminHandler
	WS       *handler.WSHandler
	System   *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	wsLimiter *middleware.RateLimiter,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Examinee Group (JWT) ───────────────────────────────────────
	examinee := router.Group("/api/v1/examinee")
	examinee.Use(middleware.RequireExamineeJWT(authService), middleware.NoStore())
	{
		examinee.GET("/status", handlers.Examinee.GetStatus)
	}

	// ─── 2. Admin Group (Admin JWT, compressed) ────────────────────────
	admin := router.Group("/api/v1/admin")
	admin.Use(middleware.RequireAdminJWT(authService), middleware.NoStore())
	{
		// SSE must stream unbuffered, so it sits outside the brotli group.
		admin.GET("/system/metrics", handlers.System.SystemMetricsSSE)

		compressed := admin.Group("")
		compressed.Use(middleware.Brotli(middleware.DefaultBrotliMinLength))
		{
			compressed.GET("/results", handlers.Admin.ListResults)
			compressed.GET("/results/stats", handlers.Admin.ResultStats)
			compressed.GET("/examinees/status", handlers.Admin.GetExamineeStatus)
			compressed.POST("/sessions/release", handlers.Admin.ReleaseLock)
			compressed.POST("/questions/import", handlers.Admin.ImportQuestions)
			compressed.POST("/tokens/examinee", handlers.Admin.IssueExamineeToken)
		}
	}

	// ─── 3. WebSocket (token in query, rate limited per IP) ────────────
	wsGroup := router.Group("/ws/v1")
	wsGroup.Use(wsLimiter.Middleware(), middleware.RequireExamineeWSAuth(authService))
	{
		wsGroup.GET("/exam/stream", handlers.WS.ExamStream)
	}

	return router
}
