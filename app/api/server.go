package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rivalmap/rivalmap/app/auth"
	"github.com/rivalmap/rivalmap/app/cfg"
	"github.com/rivalmap/rivalmap/app/render"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler) *gin.Engine {
	if !cfg.Get().Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true

	// Middleware
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware for API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	r.Use(auth.Middleware())

	r.SetHTMLTemplate(render.Templates())

	// Routes
	setupRoutes(r, handler)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/", handler.Index)
	r.GET("/new", handler.NewAnalysis)
	r.GET("/analysis/:hostname", handler.GetAnalysis)
	r.GET("/md/:hostname", handler.GetMarkdown)
	r.GET("/og/:hostname", handler.GetOGCard)
	r.GET("/search/:query", handler.Search)

	r.POST("/webhook", handler.Webhook)
	r.POST("/mcp", handler.MCP)

	r.GET("/auth/login", handler.auth.Login)
	r.GET("/auth/callback", handler.auth.Callback)
	r.GET("/auth/logout", handler.auth.Logout)

	r.GET("/admin", handler.Admin)
	r.GET("/dump", handler.Dump)
	r.GET("/health", handler.GetHealth)

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}
