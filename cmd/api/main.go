package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tripsify/internal/config"
	"tripsify/internal/database"
	"tripsify/internal/domain"
	"tripsify/internal/middleware"
	"tripsify/internal/modules/appversion"
	"tripsify/internal/modules/auth"
	"tripsify/internal/modules/geo"
	"tripsify/internal/modules/notify"
	"tripsify/internal/modules/tours"
	"tripsify/internal/otp"
	jwtsvc "tripsify/internal/pkg/jwt"
	"tripsify/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg.AppEnv)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	rdb, err := database.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("redis connect failed", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	geoRepo := repository.NewGeoRepository(db)
	tourRepo := repository.NewTourRepository(db)

	codes := otp.NewStore(rdb, cfg.OTPCodeTTL, cfg.OTPResendCooldown, cfg.OTPMaxAttempts)
	dispatcher := newDispatcher(cfg, logger)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)

	hub := notify.NewHub()
	defer hub.Close()

	authService := auth.NewService(userRepo, geoRepo, codes, dispatcher, j, logger).
		WithNotifier(func(userID int64, event string, payload map[string]any) {
			hub.SendToUser(userID, notify.NewEvent(notify.EventType(event), payload))
		})
	authHandler := auth.NewHandler(authService)

	geoHandler := geo.NewHandler(geo.NewService(geoRepo))
	tourHandler := tours.NewHandler(tours.NewService(tourRepo))
	versionHandler := appversion.NewHandler(appversion.VersionInfo{
		MinSupportedBuild: cfg.MinSupportedBuild,
		LatestBuild:       cfg.LatestBuild,
		UpdateURL:         cfg.UpdateURL,
	})
	notifyHandler := notify.NewHandler(hub, logger)

	if isProdLike(cfg.AppEnv) {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)
		geoHandler.RegisterRoutes(v1)
		tourHandler.RegisterRoutes(v1)
		versionHandler.RegisterRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			notifyHandler.RegisterRoutes(protected)
		}
	}

	logger.Info("api listening", zap.String("addr", cfg.HTTPAddr))
	if err := r.Run(cfg.HTTPAddr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(appEnv string) (*zap.Logger, error) {
	if isProdLike(appEnv) {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func isProdLike(env string) bool {
	return env == "prod" || env == "production" || env == "release"
}

// newDispatcher wires one sender per channel: the configured HTTP
// gateway when a URL is set, the log sender otherwise so dev setups
// can read codes off stdout.
func newDispatcher(cfg *config.Config, logger *zap.Logger) *otp.Dispatcher {
	d := otp.NewDispatcher()

	gateways := map[domain.Channel]string{
		domain.ChannelSMS:      cfg.SMSGatewayURL,
		domain.ChannelWhatsApp: cfg.WhatsAppGatewayURL,
		domain.ChannelCall:     cfg.CallGatewayURL,
	}
	for channel, url := range gateways {
		if url != "" {
			d.Register(channel, otp.NewGatewaySender(url, channel))
		} else {
			d.Register(channel, otp.NewLogSender(channel, logger))
		}
	}
	return d
}
