package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-backoffice/internal/handler"
	"go-backoffice/internal/middleware"
	"go-backoffice/internal/model"
	"go-backoffice/internal/repository"
	"go-backoffice/internal/service"
	"go-backoffice/internal/ws"
	"go-backoffice/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Database
	db := database.ConnectDB()
	db.AutoMigrate(
		&model.Project{},
		&model.ProjectMember{},
		&model.Supplier{},
		&model.InventoryItem{},
		&model.InventoryMovement{},
		&model.PurchaseOrder{},
		&model.PurchaseOrderItem{},
	)

	// 3. WebSocket hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 4. Dependency injection
	projectRepo := repository.NewProjectRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	inventoryRepo := repository.NewInventoryRepo(db)
	orderRepo := repository.NewPurchaseOrderRepo(db)

	tenancySvc := service.NewTenancyService(projectRepo)
	ledgerSvc := service.NewLedgerService(tenancySvc, inventoryRepo, db, wsHub)
	orderSvc := service.NewPurchaseOrderService(tenancySvc, ledgerSvc, orderRepo, supplierRepo, inventoryRepo, db, wsHub)
	supplierSvc := service.NewSupplierService(tenancySvc, supplierRepo, orderRepo)
	reorderSvc := service.NewReorderService(tenancySvc, inventoryRepo)
	querySvc := service.NewQueryService(tenancySvc, inventoryRepo, orderRepo)

	projectHandler := handler.NewProjectHandler(tenancySvc)
	invHandler := handler.NewInventoryHandler(ledgerSvc, reorderSvc)
	orderHandler := handler.NewOrderHandler(orderSvc)
	supplierHandler := handler.NewSupplierHandler(supplierSvc)
	queryHandler := handler.NewQueryHandler(querySvc)

	// 5. Fiber
	app := fiber.New(fiber.Config{
		AppName: "Back Office Core v1.0",
	})

	app.Use(logger.New())  // Request logging
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())

	// 6. Routes — all authenticated; per-project authorization happens in
	// the tenancy service on every call.
	api := app.Group("/api/v1", middleware.RequireAuth())

	api.Get("/me/projects", projectHandler.MyProjects)
	api.Post("/projects", projectHandler.CreateProject)

	project := api.Group("/projects/:projectID")

	project.Get("/members", projectHandler.GetMembers)
	project.Post("/members", projectHandler.AddMember)
	project.Put("/members/:userID", projectHandler.UpdateMember)

	project.Get("/items", invHandler.GetItems)
	project.Post("/items", invHandler.CreateItem)
	project.Get("/items/:id", invHandler.GetItem)
	project.Put("/items/:id", invHandler.UpdateItem)
	project.Delete("/items/:id", invHandler.DeleteItem)
	project.Post("/items/:id/movements", invHandler.PostMovement)
	project.Get("/items/:id/movements", invHandler.GetMovements)
	project.Get("/items/:id/balance", invHandler.GetBalance)

	project.Get("/reorder", invHandler.GetReorderSuggestions)
	project.Get("/search", queryHandler.Search)
	project.Get("/movement-summary", queryHandler.GetMovementSummary)

	project.Get("/suppliers", supplierHandler.GetSuppliers)
	project.Post("/suppliers", supplierHandler.CreateSupplier)
	project.Put("/suppliers/:id", supplierHandler.UpdateSupplier)
	project.Delete("/suppliers/:id", supplierHandler.DeleteSupplier)

	project.Get("/orders", orderHandler.GetOrders)
	project.Post("/orders", orderHandler.CreateOrder)
	project.Get("/orders/:id", orderHandler.GetOrder)
	project.Put("/orders/:id", orderHandler.UpdateOrder)
	project.Post("/orders/:id/submit", orderHandler.SubmitOrder)
	project.Post("/orders/:id/mark-ordered", orderHandler.MarkOrdered)
	project.Post("/orders/:id/receive", orderHandler.ReceiveItems)
	project.Post("/orders/:id/cancel", orderHandler.CancelOrder)
	project.Delete("/orders/:id", orderHandler.DeleteOrder)

	// WebSocket event stream
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
			// Keep-alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 7. Graceful shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
