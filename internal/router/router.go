// Package router binds the HTTP surface to a gin engine.
package router

import (
	"context"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/syntheses-api/internal/handler"
	"github.com/noah-isme/syntheses-api/internal/middleware"
	"github.com/noah-isme/syntheses-api/internal/service"
	"github.com/noah-isme/syntheses-api/pkg/config"
	"github.com/noah-isme/syntheses-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/syntheses-api/pkg/middleware/cors"
	"github.com/noah-isme/syntheses-api/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/noah-isme/syntheses-api/pkg/middleware/requestid"
)

type sessionAuthorizer interface {
	Authorize(ctx context.Context, token string) bool
}

// Handlers groups the request handlers the router binds.
type Handlers struct {
	Upload  *handler.UploadHandler
	Records *handler.RecordHandler
	Journal *handler.JournalHandler
	Auth    *handler.AuthHandler
	Contact *handler.ContactHandler
	Export  *handler.ExportHandler
	Metrics *handler.MetricsHandler
}

// Options carries the settings that shape routing.
type Options struct {
	Env                string
	AllowedOrigins     []string
	UploadRoot         string
	UploadURLPrefix    string
	SessionCookie      string
	RateLimit          config.RateLimitConfig
	MaxMultipartMemory int64
}

// New builds the engine with the global middleware chain and every route.
func New(logr *zap.Logger, metrics *service.MetricsService, auth sessionAuthorizer, h Handlers, opts Options) *gin.Engine {
	if opts.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if opts.MaxMultipartMemory > 0 {
		r.MaxMultipartMemory = opts.MaxMultipartMemory
	}
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metrics))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))

	limited := ratelimit.NewPerIP(opts.RateLimit.RPS, opts.RateLimit.Burst).Middleware()
	compressed := gzip.Gzip(gzip.DefaultCompression)
	admin := middleware.AdminSession(auth, opts.SessionCookie)

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	r.POST("/upload", limited, h.Upload.Upload)
	r.POST("/upload-multi", limited, h.Upload.UploadMulti)
	r.GET("/get-files", compressed, h.Records.List)
	r.POST("/vote", h.Records.Vote)
	r.POST("/edit-file", admin, h.Records.Edit)
	r.DELETE("/delete-file/:id", admin, h.Records.Delete)

	r.POST("/admin/login", limited, h.Auth.Login)
	r.POST("/admin/logout", admin, h.Auth.Logout)
	r.GET("/api/check-session", admin, h.Auth.CheckSession)
	r.GET("/admin/export", admin, h.Export.Catalogue)

	r.POST("/add-message", limited, h.Journal.AddMessage)
	r.GET("/get-messages", compressed, h.Journal.ListMessages)
	r.DELETE("/delete-message/:id", admin, h.Journal.DeleteMessage)
	r.GET("/get-logs", admin, compressed, h.Journal.ListLogs)
	r.DELETE("/delete-log/:id", admin, h.Journal.DeleteLog)
	r.DELETE("/delete-all-logs", admin, h.Journal.DeleteAllLogs)

	r.POST("/ask-question", limited, h.Contact.Ask)

	if opts.UploadRoot != "" && opts.UploadURLPrefix != "" {
		r.Static(opts.UploadURLPrefix, opts.UploadRoot)
	}
	if opts.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
