package router

import (
	"github.com/sicua/backend/internal/interfaces/http/handler"
)

// StoreHandlers are the handlers behind the store API
type StoreHandlers struct {
	Products   *handler.ProductHandler
	Categories *handler.CategoryHandler
	Sales      *handler.SaleHandler
	Imports    *handler.ImportHandler
	System     *handler.SystemHandler
}

// StoreRoutes builds one DomainGroup per area of the store API
func StoreRoutes(h StoreHandlers) []*DomainGroup {
	products := NewDomainGroup("products", "/products").
		POST("", h.Products.Create).
		GET("", h.Products.List).
		GET("/by-name/:name", h.Products.GetByName).
		GET("/:id", h.Products.GetByID).
		PUT("/:id", h.Products.Update).
		DELETE("/:id", h.Products.Delete)

	categories := NewDomainGroup("categories", "/categories").
		POST("", h.Categories.Create).
		GET("", h.Categories.List).
		GET("/next-number", h.Categories.NextNumber).
		GET("/number/:number", h.Categories.GetByNumber).
		GET("/:id", h.Categories.GetByID).
		PUT("/:id", h.Categories.Update).
		DELETE("/:id", h.Categories.Delete)

	sales := NewDomainGroup("sales", "/sales").
		POST("", h.Sales.Create).
		GET("", h.Sales.List).
		GET("/:id", h.Sales.GetByID).
		GET("/:id/receipt", h.Sales.Receipt).
		POST("/:id/invoice", h.Sales.Invoice)

	imports := NewDomainGroup("imports", "/imports").
		GET("", h.Imports.ListRuns).
		GET("/:id", h.Imports.GetRun)
	imports.Group("product-imports", "/products").
		POST("", h.Imports.ImportFile).
		POST("/rows", h.Imports.ImportRows)

	exports := NewDomainGroup("exports", "/exports").
		GET("/products", h.Imports.ExportProducts)

	system := NewDomainGroup("system", "/system").
		GET("/info", h.System.GetSystemInfo).
		GET("/ping", h.System.Ping)

	return []*DomainGroup{products, categories, sales, imports, exports, system}
}
