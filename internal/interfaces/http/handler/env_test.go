package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	appcatalog "github.com/sicua/backend/internal/application/catalog"
	"github.com/sicua/backend/internal/application/event"
	importapp "github.com/sicua/backend/internal/application/import"
	appsales "github.com/sicua/backend/internal/application/sales"
	"github.com/sicua/backend/internal/infrastructure/cache"
	"github.com/sicua/backend/internal/infrastructure/config"
	"github.com/sicua/backend/internal/infrastructure/persistence"
	"github.com/sicua/backend/internal/interfaces/http/middleware"
	"github.com/sicua/backend/tests/testutil"
	"github.com/stretchr/testify/require"
)

// storeEnv is the whole API on an in-memory sqlite database
type storeEnv struct {
	engine    *gin.Engine
	db        *persistence.Database
	published *testutil.RecordingPublisher
}

func newStoreEnv(t *testing.T) *storeEnv {
	t.Helper()

	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:       persistence.DriverSQLite,
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	published := testutil.NewRecordingPublisher()
	events := event.NewDispatcher(published, nil)

	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	runRepo := persistence.NewGormImportRunRepository(db.DB)

	resolver := appcatalog.NewCategoryResolver(categoryRepo, events, nil)
	productService := appcatalog.NewProductService(productRepo, categoryRepo, events, nil)
	categoryService := appcatalog.NewCategoryService(categoryRepo, productRepo, resolver, events, nil)
	saleService := appsales.NewSaleService(persistence.NewGormTransactionScope(db.DB), saleRepo, events, nil)
	saleService.SetStoreName("Corner Shop")
	idempotency := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idempotency.Close() })
	saleService.SetIdempotencyStore(idempotency)
	importer := importapp.NewProductImportService(productRepo, resolver, events, nil)
	runs := importapp.NewImportRunService(importer, runRepo, nil)
	exports := importapp.NewExportService(productRepo, categoryRepo, nil)

	products := NewProductHandler(productService)
	categories := NewCategoryHandler(categoryService)
	salesHandler := NewSaleHandler(saleService)
	imports := NewImportHandler(runs, exports, ImportLimits{MaxFileSize: 1 << 20, MaxRows: 100})
	system := NewSystemHandler("sicua", "test", "Corner Shop", db)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.GET("/health", system.Health)

	api := engine.Group("/api/v1")
	api.GET("/system/info", system.GetSystemInfo)
	api.GET("/system/ping", system.Ping)

	api.POST("/products", products.Create)
	api.GET("/products", products.List)
	api.GET("/products/by-name/:name", products.GetByName)
	api.GET("/products/:id", products.GetByID)
	api.PUT("/products/:id", products.Update)
	api.DELETE("/products/:id", products.Delete)

	api.POST("/categories", categories.Create)
	api.GET("/categories", categories.List)
	api.GET("/categories/next-number", categories.NextNumber)
	api.GET("/categories/number/:number", categories.GetByNumber)
	api.GET("/categories/:id", categories.GetByID)
	api.PUT("/categories/:id", categories.Update)
	api.DELETE("/categories/:id", categories.Delete)

	api.POST("/sales", salesHandler.Create)
	api.GET("/sales", salesHandler.List)
	api.GET("/sales/:id", salesHandler.GetByID)
	api.GET("/sales/:id/receipt", salesHandler.Receipt)
	api.POST("/sales/:id/invoice", salesHandler.Invoice)

	api.POST("/imports/products", imports.ImportFile)
	api.POST("/imports/products/rows", imports.ImportRows)
	api.GET("/imports", imports.ListRuns)
	api.GET("/imports/:id", imports.GetRun)
	api.GET("/exports/products", imports.ExportProducts)

	return &storeEnv{engine: engine, db: db, published: published}
}

func (e *storeEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

// data decodes the envelope of w and returns its data member as T
func data[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	require.True(t, envelope.Success, w.Body.String())

	var out T
	require.NoError(t, json.Unmarshal(envelope.Data, &out))
	return out
}

func (e *storeEnv) createCategory(t *testing.T, number int, name string) appcatalog.CategoryResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/categories", map[string]any{"number": number, "name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return data[appcatalog.CategoryResponse](t, w)
}

func (e *storeEnv) createProduct(t *testing.T, id, name string, category *int, price string, quantity int) appcatalog.ProductResponse {
	t.Helper()
	body := map[string]any{"id": id, "name": name, "price": price, "quantity": quantity}
	if category != nil {
		body["category_number"] = *category
	}
	w := e.do(t, http.MethodPost, "/api/v1/products", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return data[appcatalog.ProductResponse](t, w)
}
