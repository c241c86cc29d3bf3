package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/edutech/internal/app/controllers"
	appMigrations "github.com/yigit/edutech/internal/app/migrations"
	appRepos "github.com/yigit/edutech/internal/app/repositories"
	appRoutes "github.com/yigit/edutech/internal/app/routes"
	appServices "github.com/yigit/edutech/internal/app/services"
	"github.com/yigit/edutech/internal/config"
	"github.com/yigit/edutech/internal/db"
	appMiddleware "github.com/yigit/edutech/internal/middleware"
	pkgAuth "github.com/yigit/edutech/internal/pkg/auth"
	"github.com/yigit/edutech/internal/pkg/email"
	"github.com/yigit/edutech/internal/pkg/filestorage"
	"github.com/yigit/edutech/internal/pkg/helpers"
	"github.com/yigit/edutech/internal/pkg/logger"
	"github.com/yigit/edutech/internal/pkg/metrics"
	"github.com/yigit/edutech/internal/seed"
)

// uploadsRoute is where the local storage driver's files are served
const uploadsRoute = "/uploads"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos            *appRepos.Repositories
	Services         *appServices.Services
	AuthController   *appControllers.AuthController
	UserController   *appControllers.UserController
	CourseController *appControllers.CourseController
	AuthMiddleware   *appMiddleware.AuthMiddleware
	JWTService       *pkgAuth.JWTService
	FileStorage      filestorage.FileStorage
	EmailService     email.EmailService
	Metrics          *metrics.Metrics
	Database         appRoutes.Pinger
	Logger           zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.EqualFold(cfg.Logging.Format, "text")

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects to PostgreSQL, applies migrations when enabled and
// seeds the default admin.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if cfg.Database.AutoMigrate {
		if err := RunMigrations(cfg, lgr); err != nil {
			database.Close()
			return nil, err
		}
	}

	if err := seed.CreateDefaultData(ctx, appRepos.NewUserRepository(database.Pool), cfg, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// RunMigrations applies every pending migration
func RunMigrations(cfg *config.Config, lgr zerolog.Logger) error {
	lgr.Info().Msg("Running database migrations...")
	migrator, err := appMigrations.NewMigrator(cfg.GetPostgresConnectionString())
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			lgr.Warn().Err(err).Msg("Failed to close migrator")
		}
	}()

	if err := migrator.Up(); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	return nil
}

// newFileStorage picks the upload backend named by the storage driver
func newFileStorage(ctx context.Context, cfg *config.Config) (filestorage.FileStorage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverS3:
		s3 := cfg.Storage.S3
		return filestorage.NewS3Storage(ctx, filestorage.S3Config{
			Endpoint:  s3.Endpoint,
			AccessKey: s3.AccessKey,
			SecretKey: s3.SecretKey,
			Bucket:    s3.Bucket,
			Region:    s3.Region,
			UseSSL:    s3.UseSSL,
			PublicURL: s3.PublicURL,
		})
	default:
		baseURL := strings.TrimRight(cfg.Server.PublicURL, "/")
		if baseURL == "" {
			baseURL = "http://localhost:" + cfg.Server.Port
		}
		return filestorage.NewLocalStorage(cfg.Storage.LocalPath, baseURL+uploadsRoute)
	}
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, pool db.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, Metrics: metrics.New()}
	if pinger, ok := pool.(appRoutes.Pinger); ok {
		deps.Database = pinger
	}

	storage, err := newFileStorage(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	deps.FileStorage = filestorage.WithMetrics(storage, deps.Metrics)

	deps.EmailService = email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
	}, logger.Component("email"), deps.Metrics)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		TokenExp:    helpers.ParseDuration(cfg.JWT.TokenExpiration, pkgAuth.DefaultTokenTTL),
		TokenIssuer: cfg.JWT.Issuer,
	})

	deps.Repos = appRepos.NewRepositories(pool)
	deps.Services = appServices.NewServices(deps.Repos, deps.JWTService, deps.FileStorage, deps.EmailService)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.Repos.UserRepository, logger.Component("auth-middleware"))

	secure := cfg.Server.CookieSecure
	maxUpload := cfg.MaxUploadBytes()
	deps.AuthController = appControllers.NewAuthController(deps.Services.AuthService, deps.AuthMiddleware, secure, lgr)
	deps.UserController = appControllers.NewUserController(deps.Services.AuthService, deps.Services.UserService, deps.AuthMiddleware, secure, maxUpload, lgr)
	deps.CourseController = appControllers.NewCourseController(deps.Services.CourseService, maxUpload, lgr)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.MaxUploadBytes()
	router.Use(
		appMiddleware.RequestID(),
		appMiddleware.Recovery(lgr),
		appMiddleware.RequestLogger(logger.Component("http")),
		appMiddleware.CORS(cfg.Server.CORSOrigins),
		appMiddleware.Metrics(deps.Metrics),
	)

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.UserController,
		deps.CourseController,
		deps.AuthMiddleware,
		deps.Database,
	)

	if cfg.Storage.Driver == config.StorageDriverLocal {
		router.Static(uploadsRoute, cfg.Storage.LocalPath)
		lgr.Info().Str("path", cfg.Storage.LocalPath).Msg("Static file serving configured for uploads directory")
	}

	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	// Test endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success", "time": time.Now().UTC()})
	})

	return router, nil
}
