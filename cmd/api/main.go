package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"rentalhub/internal/config"
	"rentalhub/internal/database"
	"rentalhub/internal/middleware"
	"rentalhub/internal/modules/auth"
	"rentalhub/internal/modules/booking"
	"rentalhub/internal/modules/catalog"
	"rentalhub/internal/modules/feed"
	jwtsvc "rentalhub/internal/pkg/jwt"
	"rentalhub/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("db connect: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		logrus.Fatalf("db migrate: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	productRepo := repository.NewProductRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	hub := feed.NewHub()
	feedHandler := feed.NewHandler(hub)

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	catalogService := catalog.NewService(brandRepo, productRepo)
	catalogHandler := catalog.NewHandler(catalogService)

	bookingService := booking.NewService(bookingRepo, productRepo, brandRepo, hub)
	bookingHandler := booking.NewHandler(bookingService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
	}))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.OptionalAuth(j))
	{
		authHandler.RegisterRoutes(v1)
		catalogHandler.RegisterRoutes(v1)
		bookingHandler.RegisterRoutes(v1)
		feedHandler.RegisterRoutes(v1)
	}

	logrus.WithField("addr", cfg.Addr).Info("starting api server")
	if err := r.Run(cfg.Addr); err != nil {
		logrus.Fatal(err)
	}
}
