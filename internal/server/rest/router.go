package rest

import (
	"slices"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterConfig carries everything NewRouter needs.
type RouterConfig struct {
	Handler            *Handler
	Gate               Authorizer
	Metrics            *metrics.Metrics
	Logger             logging.Logger
	CORSAllowedOrigins []string
}

// NewRouter builds the gin engine:
//
//	POST /api/auth/signup
//	POST /api/auth/login
//	GET  /api/auth/me      (bearer token required)
//	GET  /health
//	GET  /metrics
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(cfg.Logger))

	if len(cfg.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))
	}

	router.GET("/health", cfg.Handler.Health)
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := router.Group("/api/auth")
	api.POST("/signup", cfg.Handler.Signup)
	api.POST("/login", cfg.Handler.Login)
	api.GET("/me", Authenticate(cfg.Gate, cfg.Metrics), cfg.Handler.Me)

	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	c.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	c.ExposeHeaders = []string{"Retry-After", requestIDHeader}
	c.MaxAge = 12 * time.Hour
	return c
}
