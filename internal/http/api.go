package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"formdraft/internal/auth"
	"formdraft/internal/service"
)

// Options carries the transport level settings of the API.
type Options struct {
	AllowedOrigins []string
	MaxUploadBytes int64
	// UploadsDir and UploadsPrefix, when both set, serve locally stored
	// profile images.
	UploadsDir    string
	UploadsPrefix string
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users    service.UserService
	drafts   service.DraftService
	profiles service.ProfileService
	tokens   *auth.TokenService
	guard    *auth.Guard
	logger   logrus.FieldLogger
	opts     Options
}

func NewHandler(
	users service.UserService,
	drafts service.DraftService,
	profiles service.ProfileService,
	tokens *auth.TokenService,
	logger logrus.FieldLogger,
	opts Options,
) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 5 << 20
	}
	return &Handler{
		users:    users,
		drafts:   drafts,
		profiles: profiles,
		tokens:   tokens,
		guard:    auth.NewGuard(tokens, users),
		logger:   logger,
		opts:     opts,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger), corsMiddleware(h.opts.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})
	if h.opts.UploadsDir != "" && h.opts.UploadsPrefix != "" {
		router.Static(h.opts.UploadsPrefix, h.opts.UploadsDir)
	}

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
		authGroup.GET("/verify", h.authRequired(), h.verify)
		authGroup.POST("/logout", h.logout)
	}

	form := router.Group("/form", h.authRequired())
	{
		form.GET("", h.getForm)
		form.PATCH("/step/:step", h.saveStep)
		form.POST("/step/:step", h.saveStep)
		form.POST("/upload-profile", h.limitBody(h.opts.MaxUploadBytes), h.uploadProfile)
		form.POST("/submit", h.submit)
		form.GET("/status", h.status)
	}
}

func corsMiddleware(allowed []string) gin.HandlerFunc {
	origins := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			continue
		}
		origins[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := origins[origin]; ok {
				// credentialed requests need the concrete origin echoed back
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
				c.Writer.Header().Add("Vary", "Origin")
				c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		// 5xx detail is logged by writeError
		entry.Debug("request")
	}
}

func (h *Handler) limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
