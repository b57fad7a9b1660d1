package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/halit/learnsphere/docs" // Import swagger docs
	appControllers "github.com/halit/learnsphere/internal/app/controllers"
	appMigrations "github.com/halit/learnsphere/internal/app/migrations"
	appRepos "github.com/halit/learnsphere/internal/app/repositories"
	appRoutes "github.com/halit/learnsphere/internal/app/routes"
	appServices "github.com/halit/learnsphere/internal/app/services"
	"github.com/halit/learnsphere/internal/config"
	"github.com/halit/learnsphere/internal/db"
	appMiddleware "github.com/halit/learnsphere/internal/middleware"
	pkgAuth "github.com/halit/learnsphere/internal/pkg/auth"
	"github.com/halit/learnsphere/internal/pkg/email"
	"github.com/halit/learnsphere/internal/pkg/filestorage"
	"github.com/halit/learnsphere/internal/pkg/helpers"
	"github.com/halit/learnsphere/internal/pkg/logger"
	"github.com/halit/learnsphere/internal/pkg/ratelimit"
	"github.com/halit/learnsphere/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService            *appServices.AuthService
	SubscriptionService    *appServices.SubscriptionService
	PaymentService         *appServices.PaymentService
	MaterialService        *appServices.MaterialService
	EngagementService      *appServices.EngagementService
	DepartmentService      *appServices.DepartmentService
	UserService            *appServices.UserService
	MaintenanceService     *appServices.MaintenanceService
	AuthController         *appControllers.AuthController
	MaterialController     *appControllers.MaterialController
	PaymentController      *appControllers.PaymentController
	DepartmentController   *appControllers.DepartmentController
	UserController         *appControllers.UserController
	AuthMiddleware         *appMiddleware.AuthMiddleware
	SubscriptionMiddleware *appMiddleware.SubscriptionMiddleware
	RegistrationLimiter    *ratelimit.Limiter
	Repos                  *appRepos.Repositories
	JWTService             *pkgAuth.JWTService
	FileStorage            *filestorage.LocalStorage
	Mailer                 email.Service
	Dispatcher             *email.Dispatcher
	RedisClient            *redis.Client
	Logger                 zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection established")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations applied")

	// Seed failures are logged but don't block startup
	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes repositories, services, controllers and
// middleware.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.Mailer = email.NewSMTPService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
	}, lgr)
	deps.Dispatcher = email.NewDispatcher(cfg.SMTP.QueueSize, lgr)

	// Registration rate limiting runs on redis; the limiter falls back to a
	// local token bucket when redis is unreachable
	deps.RedisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	deps.RegistrationLimiter = ratelimit.New(deps.RedisClient, ratelimit.PerHour(cfg.RateLimit.RegistrationPerHour))

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.OtpRepository,
		deps.Repos.TokenRepository,
		deps.Repos.DepartmentRepository,
		dbPool,
		deps.JWTService,
		deps.Mailer,
		deps.Dispatcher,
		lgr,
	)
	deps.SubscriptionService = appServices.NewSubscriptionService(deps.Repos.SubscriptionRepository, lgr)
	deps.PaymentService = appServices.NewPaymentService(
		deps.Repos.PaymentRepository,
		deps.Repos.SubscriptionRepository,
		deps.Repos.UserRepository,
		dbPool,
		deps.FileStorage,
		deps.Mailer,
		deps.Dispatcher,
		lgr,
	)
	deps.MaterialService = appServices.NewMaterialService(
		deps.Repos.MaterialRepository,
		deps.Repos.DepartmentRepository,
		deps.FileStorage,
		lgr,
	)
	deps.EngagementService = appServices.NewEngagementService(
		deps.Repos.EngagementRepository,
		deps.Repos.MaterialRepository,
		lgr,
	)
	deps.DepartmentService = appServices.NewDepartmentService(deps.Repos.DepartmentRepository)
	deps.UserService = appServices.NewUserService(
		deps.Repos.UserRepository,
		deps.Repos.PaymentRepository,
		deps.Repos.SubscriptionRepository,
		deps.Repos.MaterialRepository,
		dbPool,
		lgr,
	)

	deps.MaintenanceService = appServices.NewMaintenanceService(
		deps.Repos.OtpRepository,
		deps.Repos.TokenRepository,
		deps.Repos.SubscriptionRepository,
		lgr,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.SubscriptionMiddleware = appMiddleware.NewSubscriptionMiddleware(deps.SubscriptionService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.MaterialController = appControllers.NewMaterialController(deps.MaterialService, deps.EngagementService, lgr)
	deps.PaymentController = appControllers.NewPaymentController(deps.PaymentService, deps.SubscriptionService, lgr)
	deps.DepartmentController = appControllers.NewDepartmentController(deps.DepartmentService, lgr)
	deps.UserController = appControllers.NewUserController(deps.UserService, lgr)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(appMiddleware.RequestLogger(lgr), gin.Recovery())

	// Setup Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json"), ginSwagger.DefaultModelsExpandDepth(1)))

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.MaterialController,
		deps.PaymentController,
		deps.DepartmentController,
		deps.UserController,
		deps.AuthMiddleware,
		deps.SubscriptionMiddleware,
		deps.RegistrationLimiter,
	)

	// Test endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
