package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/phenrril/catalog/internal/adapters/repo/postgres"
	"github.com/phenrril/catalog/internal/adapters/sheet"
	"github.com/phenrril/catalog/internal/domain"
	"github.com/phenrril/catalog/internal/generator"
	"github.com/phenrril/catalog/internal/usecase"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&domain.Product{}))

	uc := &usecase.ProductUC{
		Products:  postgres.NewProductRepo(db),
		Generator: generator.New(7).WithClock(func() time.Time { return fixedNow }),
	}
	return New(uc, Options{Logger: zerolog.Nop(), Now: func() time.Time { return fixedNow }})
}

func do(t *testing.T, h http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type pageBody struct {
	Items       []map[string]any `json:"items"`
	Page        int              `json:"page"`
	PageSize    int              `json:"pageSize"`
	TotalCount  int64            `json:"totalCount"`
	TotalPages  int              `json:"totalPages"`
	HasPrevious bool             `json:"hasPrevious"`
	HasNext     bool             `json:"hasNext"`
}

func laptop() map[string]any {
	return map[string]any{
		"name":            "TechCorp Laptop",
		"description":     "Thin and light",
		"category":        "Electronics",
		"brand":           "TechCorp",
		"price":           1299.99,
		"stockQuantity":   5,
		"sku":             "ELE-TEC-10001",
		"releaseDate":     "2024-09-15",
		"customerRating":  4.5,
		"availableColors": "Black, Silver",
	}
}

func TestProductLifecycle(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/Product", laptop())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[ProductResponse](t, rec)
	loc := rec.Header().Get("Location")
	assert.Equal(t, "/api/Product/"+created.ID.String(), loc)
	assert.Equal(t, "$1,299.99", created.FormattedPrice)
	assert.Equal(t, "Available", created.AvailabilityStatus)
	assert.Equal(t, []string{"Black", "Silver"}, created.ColorOptions)
	assert.True(t, created.IsInStock)

	rec = do(t, h, http.MethodGet, loc, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"releaseDate":"2024-09-15"`)

	rec = do(t, h, http.MethodGet, "/api/Product/by-sku/ELE-TEC-10001", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	upd := laptop()
	upd["price"] = 999.5
	upd["stockQuantity"] = 0
	rec = do(t, h, http.MethodPut, loc, upd)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[ProductResponse](t, rec)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 999.5, updated.Price)
	assert.False(t, updated.IsInStock)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodHead, loc, nil).Code)
	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, loc, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodHead, loc, nil).Code)

	rec = do(t, h, http.MethodGet, loc, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decode[ErrorResponse](t, rec)
	assert.Equal(t, codeNotFound, env.Code)
	assert.Equal(t, rec.Header().Get(headerCorrelationID), env.CorrelationID)
	assert.NotEmpty(t, env.CorrelationID)
}

func TestCreateDuplicateSKUIsConflict(t *testing.T) {
	h := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/Product", laptop()).Code)

	rec := do(t, h, http.MethodPost, "/api/Product", laptop())
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, codeConflict, decode[ErrorResponse](t, rec).Code)
}

func TestCreateReportsFieldErrors(t *testing.T) {
	h := newTestServer(t)
	body := laptop()
	delete(body, "name")
	body["stockQuantity"] = -1

	rec := do(t, h, http.MethodPost, "/api/Product", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode[ErrorResponse](t, rec)
	assert.Equal(t, codeValidation, env.Code)
	assert.Contains(t, env.Details, "name")
	assert.Contains(t, env.Details, "stockQuantity")
}

func TestCreateRejectsNonPositivePrice(t *testing.T) {
	h := newTestServer(t)
	body := laptop()
	body["price"] = 0

	rec := do(t, h, http.MethodPost, "/api/Product", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Details, "price")
}

func TestMalformedBodyAndID(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/Product", "{not json")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, codeInvalid, decode[ErrorResponse](t, rec).Code)

	rec = do(t, h, http.MethodGet, "/api/Product/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodHead, "/api/Product/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestSearchRequiresTerm(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/api/Product/search?searchTerm=%20%20", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, codeInvalid, decode[ErrorResponse](t, rec).Code)
}

func TestSearchFindsByAnyTextField(t *testing.T) {
	h := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/Product", laptop()).Code)

	rec := do(t, h, http.MethodGet, "/api/Product/search?searchTerm=silver", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[pageBody](t, rec)
	assert.EqualValues(t, 1, page.TotalCount)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "ELE-TEC-10001", page.Items[0]["sku"])
}

func TestGenerateBoundsAndPageSizeClamp(t *testing.T) {
	h := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/Product/generate/0", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/Product/generate/1001", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/Product/generate/abc", nil).Code)

	rec := do(t, h, http.MethodPost, "/api/Product/generate/120", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[map[string]any](t, rec)
	assert.EqualValues(t, 120, out["count"])
	assert.Equal(t, "Successfully generated 120 products", out["message"])
	assert.Contains(t, out, "elapsedMs")

	rec = do(t, h, http.MethodGet, "/api/Product?pageSize=500", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[pageBody](t, rec)
	assert.Equal(t, 100, page.PageSize)
	assert.Len(t, page.Items, 100)
	assert.EqualValues(t, 120, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasNext)
	assert.False(t, page.HasPrevious)

	rec = do(t, h, http.MethodGet, "/api/Product?page=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/Product?page=9223372036854775807&pageSize=100", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Details, "page")
}

func TestGenerateFromTemplate(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/api/Product/generate/3", map[string]any{
		"name":     "Desk Lamp",
		"category": "Home & Garden",
		"sku":      "LAMP",
		"price":    40,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/Product/category/home%20%26%20garden", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[pageBody](t, rec)
	require.Len(t, page.Items, 3)
	for _, it := range page.Items {
		assert.True(t, strings.HasPrefix(it["sku"].(string), "LAMP-"), it["sku"])
		assert.True(t, strings.HasPrefix(it["name"].(string), "Desk Lamp"), it["name"])
	}
}

func TestGenerateWithBlankTemplateSKU(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/api/Product/generate/2", map[string]any{"sku": "  "})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	page := decode[pageBody](t, do(t, h, http.MethodGet, "/api/Product", nil))
	require.Len(t, page.Items, 2)
	for _, it := range page.Items {
		sku := it["sku"].(string)
		assert.Regexp(t, `^[A-Z0-9]{1,3}-[A-Z0-9]{1,3}-\d{5}$`, sku)
		assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/Product/by-sku/"+sku, nil).Code)
	}
}

func TestBulkCreate(t *testing.T) {
	h := newTestServer(t)

	second := laptop()
	second["sku"] = "ELE-TEC-10002"
	rec := do(t, h, http.MethodPost, "/api/Product/bulk", []map[string]any{laptop(), second})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode[map[string]any](t, rec)
	assert.EqualValues(t, 2, out["count"])
	assert.Equal(t, "Successfully created 2 products", out["message"])

	third := laptop()
	third["sku"] = "ELE-TEC-10003"
	rec = do(t, h, http.MethodPost, "/api/Product/bulk", []map[string]any{third, third})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/Product/bulk", []map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bad := laptop()
	bad["sku"] = ""
	rec = do(t, h, http.MethodPost, "/api/Product/bulk", []map[string]any{third, bad})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Details, "[1].sku")

	page := decode[pageBody](t, do(t, h, http.MethodGet, "/api/Product", nil))
	assert.EqualValues(t, 2, page.TotalCount)
}

func TestFilterEndpoints(t *testing.T) {
	h := newTestServer(t)
	cheap := laptop()
	cheap["sku"] = "ELE-TEC-10002"
	cheap["name"] = "TechCorp Mouse"
	cheap["price"] = 19.99
	cheap["customerRating"] = 3.2
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/Product/bulk", []map[string]any{laptop(), cheap}).Code)

	page := decode[pageBody](t, do(t, h, http.MethodPost, "/api/Product/filter", map[string]any{
		"maxPrice": 100, "sortBy": "price",
	}))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "TechCorp Mouse", page.Items[0]["name"])

	rec := do(t, h, http.MethodPost, "/api/Product/filter", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decode[pageBody](t, rec).TotalCount)

	page = decode[pageBody](t, do(t, h, http.MethodGet, "/api/Product?minPrice=100&color=silver", nil))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "TechCorp Laptop", page.Items[0]["name"])

	rec = do(t, h, http.MethodGet, "/api/Product?minPrice=50&maxPrice=10", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, codeValidation, decode[ErrorResponse](t, rec).Code)

	rec = do(t, h, http.MethodGet, "/api/Product?releaseDateFrom=yesterday", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Details, "releaseDateFrom")

	page = decode[pageBody](t, do(t, h, http.MethodGet, "/api/Product/brand/techcorp?pageSize=1", nil))
	assert.EqualValues(t, 2, page.TotalCount)
	assert.Len(t, page.Items, 1)
	assert.True(t, page.HasNext)

	page = decode[pageBody](t, do(t, h, http.MethodGet, "/api/Product/price-range?maxPrice=20", nil))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "TechCorp Mouse", page.Items[0]["name"])

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/Product/price-range?minPrice=5", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/Product/price-range?minPrice=50&maxPrice=5", nil).Code)

	rec = do(t, h, http.MethodGet, "/api/Product/top-rated", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	top := decode[[]ProductResponse](t, rec)
	require.Len(t, top, 1)
	assert.Equal(t, "TechCorp Laptop", top[0].Name)

	assert.Len(t, decode[[]ProductResponse](t, do(t, h, http.MethodGet, "/api/Product/top-rated?minimumRating=3&count=500", nil)), 2)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/Product/top-rated?count=0", nil).Code)

	assert.Equal(t, []string{"Electronics"}, decode[[]string](t, do(t, h, http.MethodGet, "/api/Product/categories", nil)))
}

func TestExportThenImport(t *testing.T) {
	src := newTestServer(t)
	require.Equal(t, http.StatusOK, do(t, src, http.MethodPost, "/api/Product/generate/15", nil).Code)

	rec := do(t, src, http.MethodGet, "/api/Product/export", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, sheet.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "products-20250301-120000.xlsx")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "products.xlsx")
	require.NoError(t, err)
	_, err = fw.Write(rec.Body.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	dst := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/Product/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	out := httptest.NewRecorder()
	dst.ServeHTTP(out, req)
	require.Equal(t, http.StatusCreated, out.Code, out.Body.String())
	assert.EqualValues(t, 15, decode[map[string]any](t, out)["count"])

	req = httptest.NewRequest(http.MethodPost, "/api/Product/import", strings.NewReader(""))
	out = httptest.NewRecorder()
	dst.ServeHTTP(out, req)
	assert.Equal(t, http.StatusBadRequest, out.Code)
}

func TestCorrelationAndSecurityHeaders(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/Product/search", nil, headerCorrelationID, "abc-123")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "abc-123", rec.Header().Get(headerCorrelationID))
	assert.Equal(t, "abc-123", decode[ErrorResponse](t, rec).CorrelationID)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	rec = do(t, h, http.MethodGet, "/api/Product", nil, headerRequestID, "req-9")
	assert.Equal(t, "req-9", rec.Header().Get(headerCorrelationID))

	rec = do(t, h, http.MethodGet, "/nowhere", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, codeNotFound, decode[ErrorResponse](t, rec).Code)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]any](t, rec)["status"])

	rec = do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
	assert.Contains(t, rec.Body.String(), `endpoint="/health"`)
}

func TestRecoveryWritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestContext(zerolog.Nop()), Recovery())
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decode[ErrorResponse](t, rec)
	assert.Equal(t, codeInternal, env.Code)
	assert.NotEmpty(t, env.CorrelationID)
}

func TestCorsConfig(t *testing.T) {
	assert.True(t, corsConfig(nil).AllowAllOrigins)
	assert.True(t, corsConfig([]string{"https://a.example", "*"}).AllowAllOrigins)

	cfg := corsConfig([]string{" https://a.example/ ", ""})
	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, []string{"https://a.example"}, cfg.AllowOrigins)
}
