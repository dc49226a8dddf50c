package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/warehouse-pro/internal/application/auth"
	"github.com/tu-usuario/warehouse-pro/internal/application/inventory"
	"github.com/tu-usuario/warehouse-pro/internal/application/usecase"
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC  *usecase.ProductUseCase
	MutationUC *inventory.MutationUseCase
	HistoryUC  *inventory.HistoryUseCase
	ExportUC   *inventory.ExportUseCase
	AuthUC     *auth.AuthUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Solo admin y bodeguero pueden mutar inventario; vendedor solo consulta lo suyo.
	warehouseOnly := RequireRole(entity.RoleAdmin, entity.RoleBodeguero)

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Post("/:id/variants", productHandler.CreateVariant)

	// Stock (protegido)
	stock := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.MutationUC, deps.HistoryUC, deps.ExportUC)
	stock.Post("/in", warehouseOnly, stockHandler.StockIn)
	stock.Post("/out", warehouseOnly, stockHandler.StockOut)
	stock.Get("/movements", warehouseOnly, stockHandler.History)
	stock.Get("/movements/export", warehouseOnly, stockHandler.Export)
	stock.Get("/my-movements", stockHandler.MyMovements)
	stock.Get("/statistics", RequireRole(entity.RoleAdmin), stockHandler.Statistics)

	products.Get("/:id/movements", warehouseOnly, stockHandler.ProductHistory)
}
