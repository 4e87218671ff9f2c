package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Aykachasanli/pascale-backend-server/api/handler"
	apiMiddleware "github.com/Aykachasanli/pascale-backend-server/api/middleware"
	"github.com/Aykachasanli/pascale-backend-server/api/routes"
	"github.com/Aykachasanli/pascale-backend-server/config"
	"github.com/Aykachasanli/pascale-backend-server/internal/repository"
	"github.com/Aykachasanli/pascale-backend-server/internal/service"
	"github.com/Aykachasanli/pascale-backend-server/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

type stores struct {
	users        repository.UserRepository
	products     repository.ProductRepository
	securityLogs repository.SecurityLogRepository
	ping         handler.PingFunc
	close        func(context.Context) error
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	if err := run(logger); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

func run(logger *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if level, err := logrus.ParseLevel(cfg.Server.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.close(context.Background()); err != nil {
			logger.WithError(err).Warn("store close failed")
		}
	}()

	jwtManager := utils.JWTManager{
		Secret:     []byte(cfg.JWT.Secret),
		Issuer:     cfg.JWT.Issuer,
		SessionTTL: cfg.JWT.SessionTTL,
	}

	var media service.MediaStore
	if cfg.MediaEnabled() {
		s3Store, err := service.NewS3MediaStore(ctx, service.S3Options{
			Endpoint:      cfg.Media.Endpoint,
			Region:        cfg.Media.Region,
			AccessKey:     cfg.Media.AccessKey,
			SecretKey:     cfg.Media.SecretKey,
			Bucket:        cfg.Media.Bucket,
			PublicBaseURL: cfg.Media.PublicBaseURL,
		})
		if err != nil {
			return err
		}
		media = s3Store
	} else {
		logger.Warn("S3_BUCKET not set, image uploads are disabled")
	}

	var codeSender service.CodeSender = service.NewResendCodeSender(cfg.Mail.ResendAPIKey, cfg.Mail.From)
	if cfg.Mail.ResendAPIKey == "" {
		if cfg.IsProduction() {
			return errors.New("RESEND_API_KEY is required in production")
		}
		codeSender = service.LogCodeSender{Logger: logger}
	}

	accountService := service.NewAccountService(
		store.users,
		store.securityLogs,
		service.BcryptPasswordHasher{},
		service.JWTSessionIssuer{Manager: &jwtManager},
		service.NewHOTPCodeGenerator(),
		codeSender,
		media,
		service.RealClock{},
		service.AccountConfig{
			SuperAdminEmail: cfg.Account.SuperAdminEmail,
			CodeTTL:         cfg.Account.CodeTTL,
			DeliveryTimeout: cfg.Account.DeliveryTimeout,
		},
		logger,
	)
	productService := service.NewProductService(store.products, media, logger)

	validate := validator.New()
	app := newServer(cfg, logger)
	router := routes.NewRouter(
		app,
		handler.NewAuthHandler(accountService, validate),
		handler.NewUserHandler(accountService, validate, cfg.Media.MaxBytes),
		handler.NewProductHandler(productService, validate, cfg.Media.MaxBytes),
		handler.HealthHandler{Store: store.ping},
		apiMiddleware.AuthMiddleware{JWT: &jwtManager},
		routes.RateLimit{RPS: cfg.RateLimit.AuthRPS, Burst: cfg.RateLimit.AuthBurst},
		routes.RateLimit{RPS: cfg.RateLimit.LoginRPS, Burst: cfg.RateLimit.LoginBurst},
	)
	router.RegisterRoutes()

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		ReadHeaderTimeout: 5 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{"addr": cfg.Server.Addr, "store": cfg.Store.Driver}).Info("server started")
		if err := app.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("http shutdown failed")
	}
	accountService.Wait()
	return nil
}

func newServer(cfg *config.Config, logger *logrus.Logger) *echo.Echo {
	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.HTTPErrorHandler = handler.NewHTTPErrorHandler(logger)

	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.RequestID())
	app.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: cfg.CORS.AllowedOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	app.Use(echoMiddleware.BodyLimit(bodyLimit(cfg.Media.MaxBytes)))
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:    true,
		LogMethod:    true,
		LogURI:       true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogLatency:   true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status":     v.Status,
				"method":     v.Method,
				"uri":        v.URI,
				"ip":         v.RemoteIP,
				"request_id": v.RequestID,
				"latency":    v.Latency.String(),
			})
			if cause := handler.ErrorCause(c); cause != nil {
				entry.WithError(cause).Warn("request")
				return nil
			}
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))
	return app
}

func openStores(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*stores, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		db, err := config.ConnectPostgres(cfg.Store.DatabaseURL, logger.IsLevelEnabled(logrus.DebugLevel))
		if err != nil {
			return nil, err
		}
		return &stores{
			users:        repository.NewUserRepository(db),
			products:     repository.NewProductRepository(db),
			securityLogs: repository.NewSecurityLogRepository(db),
			ping: func(ctx context.Context) error {
				return config.PingPostgres(ctx, db)
			},
			close: func(context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			},
		}, nil
	case config.StoreDriverMongo:
		client, db, err := config.ConnectMongo(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:        repository.NewMongoUserRepository(db),
			products:     repository.NewMongoProductRepository(db),
			securityLogs: repository.NewMongoSecurityLogRepository(db),
			ping: func(ctx context.Context) error {
				return client.Ping(ctx, nil)
			},
			close: client.Disconnect,
		}, nil
	case config.StoreDriverMemory:
		logger.Warn("memory store selected, data is lost on restart")
		return &stores{
			users:        repository.NewMemoryUserRepository(),
			products:     repository.NewMemoryProductRepository(),
			securityLogs: repository.NewMemorySecurityLogRepository(),
			ping:         func(context.Context) error { return nil },
			close:        func(context.Context) error { return nil },
		}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// bodyLimit leaves room for multipart framing around the largest image.
func bodyLimit(maxImageBytes int64) string {
	if maxImageBytes <= 0 {
		maxImageBytes = 5 << 20
	}
	return fmt.Sprintf("%dK", maxImageBytes/1024+64)
}
