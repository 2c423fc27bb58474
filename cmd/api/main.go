package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-inventory-ledger/internal/config"
	"go-inventory-ledger/internal/handler"
	"go-inventory-ledger/internal/middleware"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/service"
	"go-inventory-ledger/internal/ws"
	"go-inventory-ledger/pkg/database"
	"go-inventory-ledger/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

func main() {
	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	policy, err := service.ParseStockPolicy(cfg.StockPolicy)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// 2. Database
	db, err := database.ConnectDB(cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := db.AutoMigrate(
		&model.Privilege{}, &model.Role{}, &model.User{},
		&model.Category{}, &model.Supplier{}, &model.Product{}, &model.Transaction{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// 3. Optional redis for idempotency keys
	var idempotencyKeys middleware.KeyStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Printf("Warning: redis at %s unavailable, idempotency keys disabled: %v", cfg.RedisAddr, err)
			rdb.Close()
		} else {
			idempotencyKeys = rdb
			defer rdb.Close()
		}
		cancel()
	}

	// 4. WebSocket hub
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	wsHub := ws.NewHub()
	go wsHub.Run(hubCtx)

	// 5. Wiring
	productRepo := repository.NewProductRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	tokens := jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	authService := service.NewAuthService(userRepo, roleRepo, tokens)
	seed(authService, privilegeRepo, roleRepo, cfg)

	txService := service.NewTransactionService(service.NewGormUnitOfWork(db), wsHub, service.TransactionServiceConfig{
		Policy:  policy,
		Timeout: cfg.StoreTimeout,
	})
	queryService := service.NewTransactionQueryService(txRepo, cfg.Location, cfg.StoreTimeout)
	productService := service.NewProductService(productRepo, categoryRepo, wsHub)
	dashService := service.NewDashboardService(productRepo, queryService, cfg.Location, cfg.LowStockThreshold)
	userService := service.NewUserService(userRepo, roleRepo, privilegeRepo, queryService)

	authHandler := handler.NewAuthHandler(authService)
	productHandler := handler.NewProductHandler(productService)
	catalogHandler := handler.NewCatalogHandler(service.NewCategoryService(categoryRepo), service.NewSupplierService(supplierRepo))
	txHandler := handler.NewTransactionHandler(txService, queryService)
	dashHandler := handler.NewDashboardHandler(dashService, cfg.Location)
	userHandler := handler.NewUserHandler(userService)

	// 6. Fiber
	app := fiber.New(fiber.Config{
		AppName: "Inventory Ledger v1.0",
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// 7. Routes
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	protected := api.Group("", middleware.RequireAuth(userRepo, tokens))
	idempotent := middleware.Idempotency(idempotencyKeys, cfg.IdempotencyTTL)

	protected.Get("/dashboard/stats", middleware.RequirePrivilege(model.PrivDashboardView), dashHandler.GetDashboardStats)
	protected.Get("/dashboard/monthly", middleware.RequirePrivilege(model.PrivDashboardView), dashHandler.GetMonthlyActivity)

	protected.Get("/products", middleware.RequirePrivilege(model.PrivProductView), productHandler.GetProducts)
	protected.Get("/products/:id", middleware.RequirePrivilege(model.PrivProductView), productHandler.GetProduct)
	protected.Post("/products", middleware.RequirePrivilege(model.PrivProductManage), productHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege(model.PrivProductManage), productHandler.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequirePrivilege(model.PrivProductManage), productHandler.DeleteProduct)

	protected.Get("/categories", middleware.RequirePrivilege(model.PrivProductView), catalogHandler.GetCategories)
	protected.Post("/categories", middleware.RequirePrivilege(model.PrivCategoryManage), catalogHandler.CreateCategory)
	protected.Put("/categories/:id", middleware.RequirePrivilege(model.PrivCategoryManage), catalogHandler.UpdateCategory)
	protected.Delete("/categories/:id", middleware.RequirePrivilege(model.PrivCategoryManage), catalogHandler.DeleteCategory)

	supplierView := middleware.RequireAnyPrivilege(model.PrivSupplierManage, model.PrivTransactionPurchase, model.PrivTransactionReturn)
	protected.Get("/suppliers", supplierView, catalogHandler.GetSuppliers)
	protected.Get("/suppliers/:id", supplierView, catalogHandler.GetSupplier)
	protected.Post("/suppliers", middleware.RequirePrivilege(model.PrivSupplierManage), catalogHandler.CreateSupplier)
	protected.Put("/suppliers/:id", middleware.RequirePrivilege(model.PrivSupplierManage), catalogHandler.UpdateSupplier)
	protected.Delete("/suppliers/:id", middleware.RequirePrivilege(model.PrivSupplierManage), catalogHandler.DeleteSupplier)

	protected.Post("/transactions/purchase", middleware.RequirePrivilege(model.PrivTransactionPurchase), idempotent, txHandler.Purchase)
	protected.Post("/transactions/sell", middleware.RequirePrivilege(model.PrivTransactionSell), idempotent, txHandler.Sell)
	protected.Post("/transactions/return", middleware.RequirePrivilege(model.PrivTransactionReturn), idempotent, txHandler.Return)
	protected.Put("/transactions/:id/status", middleware.RequirePrivilege(model.PrivTransactionUpdateStatus), txHandler.UpdateStatus)
	protected.Get("/transactions", middleware.RequirePrivilege(model.PrivTransactionView), txHandler.List)
	// by-month-year must be registered before :id
	protected.Get("/transactions/by-month-year", middleware.RequirePrivilege(model.PrivTransactionView), txHandler.ByMonthYear)
	protected.Get("/transactions/:id", middleware.RequirePrivilege(model.PrivTransactionView), txHandler.Get)

	users := protected.Group("/users", middleware.RequirePrivilege(model.PrivUserManage))
	users.Get("/", userHandler.GetUsers)
	users.Get("/:id", userHandler.GetUser)
	users.Put("/:id", userHandler.UpdateUser)
	users.Put("/:id/privileges", userHandler.UpdateUserPrivileges)
	users.Delete("/:id", userHandler.DeleteUser)
	users.Get("/:id/transactions", userHandler.GetUserTransactions)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !wsHub.Join(c) {
			return
		}
		defer wsHub.Leave(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	stopHub()

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Println("Server exited")
}

// seed creates default privileges, roles and, when configured, the admin user.
func seed(auth service.AuthService, privileges repository.PrivilegeRepository, roles repository.RoleRepository, cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := service.SeedAccessControl(ctx, privileges, roles); err != nil {
		log.Printf("Warning: Failed to seed roles and privileges: %v", err)
		return
	}
	if cfg.AdminEmail == "" {
		log.Println("ADMIN_EMAIL not set, skipping admin user")
		return
	}
	if err := auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
		return
	}
	log.Printf("Admin user ready: %s", cfg.AdminEmail)
}
