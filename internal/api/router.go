package api

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/medidata/dataset-system/internal/api/handler"
	"github.com/medidata/dataset-system/internal/api/middleware"
	"github.com/medidata/dataset-system/internal/core/domain"
	"github.com/medidata/dataset-system/internal/core/service"
	"github.com/medidata/dataset-system/internal/infrastructure/db/postgres"
	redisdb "github.com/medidata/dataset-system/internal/infrastructure/db/redis"
)

// Options carries everything the router needs beyond its storage handles.
type Options struct {
	JWTSecret  string
	TokenTTL   time.Duration
	UploadDir  string
	Dispatcher handler.JobDispatcher
	Logger     zerolog.Logger
}

// uploadBodyLimit caps multipart upload size. Dataset files are small text
// files; anything larger is a mistake.
const uploadBodyLimit = "10M"

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(pool *pgxpool.Pool, rdb *redisclient.Client, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("medidata"))

	// --- Dependencies ---
	authRepo := postgres.NewAuthRepository(pool)
	datasetRepo := postgres.NewDatasetRepository(pool)
	activityRepo := postgres.NewActivityRepository(pool)
	jobStore := redisdb.NewJobStore(rdb)

	activityService := service.NewActivityService(activityRepo, opts.Logger)
	authService := service.NewAuthService(authRepo, opts.JWTSecret, opts.TokenTTL)
	datasetService := service.NewDatasetService(datasetRepo, activityService, opts.Logger)
	analyticsService := service.NewAnalyticsService(activityRepo)

	authHandler := handler.NewAuthHandler(authService, activityService)
	datasetHandler := handler.NewDatasetHandler(datasetService, opts.Dispatcher, jobStore, opts.UploadDir)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)

	auth := middleware.Auth(opts.JWTSecret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/auth/validate", authHandler.Validate)

	// --- Dataset routes (listing is public; everything else needs a token) ---
	e.GET("/datasets", datasetHandler.List)
	e.POST("/datasets/upload", datasetHandler.Upload, auth, adminOnly,
		echomiddleware.BodyLimit(uploadBodyLimit))
	e.GET("/datasets/jobs/:jobId", datasetHandler.JobStatus, auth)
	e.GET("/datasets/:datasetId/entries", datasetHandler.Entries, auth)
	e.DELETE("/datasets/:datasetId", datasetHandler.Delete, auth, adminOnly)

	// --- Analytics routes (admin only) ---
	e.GET("/analytics/user-activity", analyticsHandler.UserActivity, auth, adminOnly)
	e.GET("/analytics/dataset-usage", analyticsHandler.DatasetUsage, auth, adminOnly)

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())

	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(pool, rdb)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	return e
}
