package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"filepond/internal/config"
	"filepond/internal/domain/document"
	"filepond/internal/domain/filepond"
	"filepond/internal/middleware"
	jwtsvc "filepond/internal/pkg/jwt"
	"filepond/internal/pkg/metrics"
	"filepond/internal/pkg/serverid"
	"filepond/internal/pkg/validator"
)

// App is the wired HTTP application.
type App struct {
	Router   *gin.Engine
	Filepond *filepond.Filepond
	Cleanup  *filepond.CleanupService
	JWT      *jwtsvc.Service
}

// Migrate creates the tables the application owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&filepond.Upload{}, &document.Document{})
}

// New wires repositories, services and routes. reg receives the metrics
// collectors and is served on /metrics.
func New(cfg *config.Config, db *gorm.DB, disks filepond.Disks, reg *prometheus.Registry) *App {
	m := metrics.New(reg)
	uploads := filepond.NewRepository(db)

	fp := filepond.New(uploads, disks, validator.NewEngine(), filepond.Config{
		Disk:            cfg.Filepond.Disk,
		TempDir:         cfg.Filepond.TempDir,
		SoftDelete:      cfg.Filepond.SoftDelete,
		ValidationRules: cfg.Filepond.ValidationRules,
	},
		filepond.WithServerIDCodec(serverid.New(cfg.Filepond.ServerIDSecret)),
		filepond.WithMetrics(m),
	)

	j := jwtsvc.New(cfg.JWTSecret, 24*time.Hour)

	r := gin.New()
	r.Use(gin.Logger(), middleware.ErrorLogger(), middleware.CORS(cfg.CORSOrigins...))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler(reg)))

	v1 := r.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(j))
	{
		filepond.RegisterRoutes(protected, filepond.NewHandler(filepond.NewService(fp)),
			cfg.Filepond.ProcessURL, cfg.Filepond.RevertURL)

		documentHandler := document.NewHandler(document.NewService(document.NewRepository(db)), fp)
		document.RegisterRoutes(protected, documentHandler)
	}

	return &App{
		Router:   r,
		Filepond: fp,
		Cleanup:  filepond.NewCleanupService(uploads, disks, m),
		JWT:      j,
	}
}
