package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-stock-tracker/internal/cache"
	"go-stock-tracker/internal/handler"
	"go-stock-tracker/internal/middleware"
	"go-stock-tracker/internal/model"
	"go-stock-tracker/internal/repository"
	"go-stock-tracker/internal/service"
	"go-stock-tracker/internal/ws"
	"go-stock-tracker/pkg/config"
	"go-stock-tracker/pkg/database"
	"go-stock-tracker/pkg/jwt"
	"go-stock-tracker/pkg/storage"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// 1. Load Config
	cfg := config.Load()

	// 2. Setup Database
	db := database.ConnectDB(cfg)
	if err := db.AutoMigrate(&model.Product{}, &model.ProductImage{}, &model.User{}, &model.StockMovement{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 4. Report cache (optional)
	var reportCache cache.Cache = cache.Noop{}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(context.Background(), cfg.RedisURL, cfg.ReportCacheTTL)
		if err != nil {
			log.Printf("Warning: report cache disabled: %v", err)
		} else {
			defer rc.Close()
			reportCache = rc
			log.Println("Report cache connected")
		}
	}

	// 5. Image storage
	store, err := storage.NewLocalStore(cfg.UploadDir, cfg.UploadBaseURL, cfg.MaxUploadBytes)
	if err != nil {
		log.Fatalf("Failed to prepare upload dir: %v", err)
	}

	// 6. Dependency Injection (Wiring Layers)
	tokens := jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	productRepo := repository.NewProductRepo(db)
	movementRepo := repository.NewMovementRepo(db)
	userRepo := repository.NewUserRepo(db)

	productService := service.NewProductService(productRepo, movementRepo, wsHub, reportCache)
	reportService := service.NewReportService(productRepo, movementRepo, reportCache, service.ReportOptions{
		CurrencySymbol: cfg.CurrencySymbol,
		CurrencyCode:   cfg.CurrencyCode,
	})
	authService := service.NewAuthService(userRepo, tokens)
	userService := service.NewUserService(userRepo)
	imageService := service.NewImageService(productRepo, store, wsHub, reportCache, cfg.MaxProductImages)

	if err := authService.EnsureAdmin(cfg.AdminEmail, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Printf("Warning: Failed to seed admin user: %v", err)
	}

	productHandler := handler.NewProductHandler(productService)
	reportHandler := handler.NewReportHandler(reportService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	imageHandler := handler.NewImageHandler(imageService)

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:      "Stock Tracker v1.0",
		ErrorHandler: handler.ErrorHandler,
		BodyLimit:    int(cfg.MaxUploadBytes)*cfg.MaxProductImages + 1<<20,
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	app.Static(cfg.UploadBaseURL, cfg.UploadDir)

	// 8. Routes
	api := app.Group("/api")
	requireAuth := middleware.RequireAuth(tokens, userRepo)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	// ============ AUTH ============
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", authHandler.Logout)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Get("/verify", authHandler.Verify)
	auth.Get("/profile", requireAuth, authHandler.Profile)

	// ============ PRODUCTS ============
	products := api.Group("/products")
	// Public aggregate views
	products.Get("/categories", productHandler.GetCategories)
	products.Get("/brands", productHandler.GetBrands)

	products.Use(requireAuth)
	products.Get("/", productHandler.GetProducts)
	products.Get("/search", productHandler.SearchProducts)
	products.Get("/low-stock", productHandler.GetLowStock)
	products.Get("/out-of-stock", productHandler.GetOutOfStock)
	products.Get("/price-range", productHandler.GetPriceRange)
	products.Get("/statistics", productHandler.GetStatistics)
	products.Get("/:id", productHandler.GetProduct)
	products.Get("/:id/movements", productHandler.GetMovements)
	products.Post("/", adminOnly, productHandler.CreateProduct)
	products.Put("/:id", adminOnly, productHandler.UpdateProduct)
	products.Delete("/:id", adminOnly, productHandler.DeleteProduct)
	products.Patch("/:id/stock", adminOnly, productHandler.AdjustStock)

	// ============ REPORTS ============
	reports := api.Group("/reports", requireAuth)
	reports.Get("/dashboard", reportHandler.GetDashboard)
	reports.Get("/abc-analysis", reportHandler.GetABCAnalysis)
	reports.Get("/category-analysis", reportHandler.GetCategoryAnalysis)
	reports.Get("/supplier-analysis", reportHandler.GetSupplierAnalysis)
	reports.Get("/inventory-movement", reportHandler.GetInventoryMovement)
	reports.Get("/export/excel", reportHandler.Export(service.FormatXLSX))
	reports.Get("/export/csv", reportHandler.Export(service.FormatCSV))
	reports.Get("/export/pdf", reportHandler.Export(service.FormatPDF))

	// ============ IMAGES ============
	upload := api.Group("/upload/product/:id", requireAuth)
	upload.Get("/images", imageHandler.ListImages)
	upload.Post("/image", adminOnly, imageHandler.UploadImage)
	upload.Post("/images", adminOnly, imageHandler.UploadImages)
	upload.Delete("/image/:imageId", adminOnly, imageHandler.DeleteImage)
	upload.Patch("/image/:imageId/primary", adminOnly, imageHandler.SetPrimaryImage)

	// Users
	users := api.Group("/users", requireAuth)
	users.Get("/", adminOnly, userHandler.GetUsers)
	users.Get("/:id", middleware.RequireOwnerOrAdmin("id"), userHandler.GetUser)
	users.Patch("/:id", adminOnly, userHandler.UpdateUser)
	users.Delete("/:id", adminOnly, userHandler.DeleteUser)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 9. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
