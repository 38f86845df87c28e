package router

import (
	authsvc "gemlab-backend/internal/application/auth"
	bulksvc "gemlab-backend/internal/application/bulkupload"
	certsvc "gemlab-backend/internal/application/certificates"
	filesvc "gemlab-backend/internal/application/files"
	"gemlab-backend/internal/config"
	"gemlab-backend/internal/infrastructure/database"
	authhandler "gemlab-backend/internal/interfaces/handlers/auth"
	bulkhandler "gemlab-backend/internal/interfaces/handlers/bulkupload"
	certhandler "gemlab-backend/internal/interfaces/handlers/certificates"
	healthhandler "gemlab-backend/internal/interfaces/handlers/health"
	uploadhandler "gemlab-backend/internal/interfaces/handlers/uploads"
	"gemlab-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp builds the Fiber app with all global middleware and routes.
// Only certificate verification and the health endpoints are public; the
// certificate admin surface sits behind the session gate.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	sessionHandler, rdb, err := middleware.Session(middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	})
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.ResponseFormatter())
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	app.Use(func(c *fiber.Ctx) error {
		user := c.Locals("user")
		if user == nil {
			c.Locals("user", nil)
		}
		return c.Next()
	})

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             nil,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/", hh.JSON)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
		if cfg.AdminPassword != "" {
			if err := database.SeedAdmin(db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
				return nil, nil, nil, err
			}
		}
		hh.DB = &gormDBPinger{db: db}
	}

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	var adminFinder authsvc.AdminFinder
	if db != nil {
		adminFinder = &authsvc.GormAdminFinder{DB: db}
	}
	authHandlers := &authhandler.Handlers{
		AdminFinder: adminFinder,
		Rdb:         rdb,
		Config:      sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)

	if db != nil && rdb != nil {
		certService := &certsvc.Service{DB: db}
		certHandlers := &certhandler.Handlers{Service: certService}

		// Public verification route, registered before the gated group.
		app.Get("/api/v1/certificates/verify/:reference_number", certHandlers.Verify)

		bulkService := &bulksvc.Service{Store: certService}
		bulkHandlers := &bulkhandler.Handlers{Service: bulkService}

		fileService := &filesvc.Service{
			Client: &filesvc.HTTPClient{
				BaseURL:   cfg.StorageURL,
				SecretKey: cfg.StorageSecretKey,
			},
			StorageURL: cfg.StorageURL,
		}
		uploadHandlers := &uploadhandler.Handlers{Files: fileService, Store: certService}

		certGroup := app.Group("/api/v1/certificates", middleware.RequireAdmin())
		certGroup.Get("/", certHandlers.List)
		certGroup.Post("/", certHandlers.Create)
		certGroup.Post("/bulk-upload", bulkHandlers.Upload)
		certGroup.Get("/:id", certHandlers.GetByID)
		certGroup.Patch("/:id", certHandlers.Update)
		certGroup.Patch("/:id/status", certHandlers.SetStatus)
		certGroup.Delete("/:id", certHandlers.Delete)
		certGroup.Post("/:id/file", uploadHandlers.UploadCertificateFile)
	}

	return app, db, rdb, nil
}
