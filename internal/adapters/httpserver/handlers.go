package httpserver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/phenrril/catalog/internal/adapters/sheet"
	"github.com/phenrril/catalog/internal/domain"
	"github.com/phenrril/catalog/internal/generator"
)

type SearchRequest struct {
	SearchTerm string `form:"searchTerm"`
	Page       *int   `form:"page"`
	PageSize   *int   `form:"pageSize"`
}

// bindJSON decodes the body into v and runs field validation. With optional
// set, an empty body leaves v untouched.
func (s *Server) bindJSON(c *gin.Context, v any, optional bool) error {
	if err := c.ShouldBindJSON(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return bodyError(err)
	}
	return s.check(v)
}

func (s *Server) check(v any) error {
	err := s.validate.Struct(v)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return &domain.ValidationError{Fields: fieldDetails(fieldErrs)}
	}
	return err
}

func bodyError(err error) error {
	if errors.Is(err, domain.ErrInvalidArgument) {
		return err
	}
	if errors.Is(err, io.EOF) {
		return domain.Invalid("request body is required")
	}
	return domain.Invalid("malformed request body")
}

func queryError(err error) error {
	return domain.Invalid("malformed query string: %v", err)
}

func productID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, domain.Invalid("invalid product id %q", c.Param("id"))
	}
	return id, nil
}

func (s *Server) list(c *gin.Context) {
	var req FilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		fail(c, queryError(err))
		return
	}
	s.listWith(c, req)
}

func (s *Server) filter(c *gin.Context) {
	var req FilterRequest
	if err := s.bindJSON(c, &req, true); err != nil {
		fail(c, err)
		return
	}
	s.listWith(c, req)
}

func (s *Server) listWith(c *gin.Context, req FilterRequest) {
	f, err := req.toDomain()
	if err != nil {
		fail(c, err)
		return
	}
	page, err := s.products.List(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.MapPage(page, toProductListItem))
}

func (s *Server) search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		fail(c, queryError(err))
		return
	}
	pg, size := paging(req.Page, req.PageSize)
	page, err := s.products.Search(c.Request.Context(), req.SearchTerm, pg, size)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.MapPage(page, toProductListItem))
}

func (s *Server) byCategory(c *gin.Context) {
	var req PageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		fail(c, queryError(err))
		return
	}
	pg, size := paging(req.Page, req.PageSize)
	page, err := s.products.ByCategory(c.Request.Context(), c.Param("category"), pg, size)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.MapPage(page, toProductListItem))
}

func (s *Server) byBrand(c *gin.Context) {
	var req PageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		fail(c, queryError(err))
		return
	}
	pg, size := paging(req.Page, req.PageSize)
	page, err := s.products.ByBrand(c.Request.Context(), c.Param("brand"), pg, size)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.MapPage(page, toProductListItem))
}

func (s *Server) byPriceRange(c *gin.Context) {
	raw := c.Query("maxPrice")
	if raw == "" {
		fail(c, domain.Invalid("maxPrice is required"))
		return
	}
	maxPrice, err := decimal.NewFromString(raw)
	if err != nil {
		fail(c, domain.Invalid("maxPrice must be a number"))
		return
	}
	minPrice := decimal.Zero
	if v := c.Query("minPrice"); v != "" {
		if minPrice, err = decimal.NewFromString(v); err != nil {
			fail(c, domain.Invalid("minPrice must be a number"))
			return
		}
	}
	var req PageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		fail(c, queryError(err))
		return
	}
	pg, size := paging(req.Page, req.PageSize)
	page, err := s.products.ByPriceRange(c.Request.Context(), minPrice, maxPrice, pg, size)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.MapPage(page, toProductListItem))
}

func (s *Server) topRated(c *gin.Context) {
	minRating, err := decimal.NewFromString(c.DefaultQuery("minimumRating", "4.0"))
	if err != nil {
		fail(c, domain.Invalid("minimumRating must be a number"))
		return
	}
	count, err := strconv.Atoi(c.DefaultQuery("count", "10"))
	if err != nil {
		fail(c, domain.Invalid("count must be an integer"))
		return
	}
	ps, err := s.products.TopRated(c.Request.Context(), minRating, count)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponses(ps))
}

func (s *Server) categories(c *gin.Context) {
	cats, err := s.products.Categories(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

func (s *Server) get(c *gin.Context) {
	id, err := productID(c)
	if err != nil {
		fail(c, err)
		return
	}
	p, err := s.products.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*p))
}

func (s *Server) bySKU(c *gin.Context) {
	p, err := s.products.GetBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*p))
}

func (s *Server) head(c *gin.Context) {
	id, err := productID(c)
	if err != nil {
		// A malformed id cannot name a stored product.
		c.Status(http.StatusNotFound)
		return
	}
	ok, err := s.products.Exists(c.Request.Context(), id)
	switch {
	case err != nil:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("exists check failed")
		c.Status(http.StatusInternalServerError)
	case ok:
		c.Status(http.StatusOK)
	default:
		c.Status(http.StatusNotFound)
	}
}

func (s *Server) create(c *gin.Context) {
	var req ProductRequest
	if err := s.bindJSON(c, &req, false); err != nil {
		fail(c, err)
		return
	}
	p := req.toDomain()
	if err := s.products.Create(c.Request.Context(), &p); err != nil {
		fail(c, err)
		return
	}
	recordWritten("create", 1)
	c.Header("Location", "/api/Product/"+p.ID.String())
	c.JSON(http.StatusCreated, toProductResponse(p))
}

func (s *Server) update(c *gin.Context) {
	id, err := productID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req ProductRequest
	if err := s.bindJSON(c, &req, false); err != nil {
		fail(c, err)
		return
	}
	p, err := s.products.Update(c.Request.Context(), id, req.toDomain())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*p))
}

func (s *Server) delete(c *gin.Context) {
	id, err := productID(c)
	if err != nil {
		fail(c, err)
		return
	}
	if err := s.products.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) bulk(c *gin.Context) {
	var reqs []ProductRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		fail(c, bodyError(err))
		return
	}
	verr := &domain.ValidationError{}
	ps := make([]domain.Product, 0, len(reqs))
	for i := range reqs {
		var ve *domain.ValidationError
		if errors.As(s.check(&reqs[i]), &ve) {
			for k, v := range ve.Prefix(fmt.Sprintf("[%d].", i)).Fields {
				verr.Add(k, v)
			}
		}
		ps = append(ps, reqs[i].toDomain())
	}
	if err := verr.OrNil(); err != nil {
		fail(c, err)
		return
	}
	n, err := s.products.BulkCreate(c.Request.Context(), ps)
	if err != nil {
		fail(c, err)
		return
	}
	recordWritten("bulk", n)
	c.JSON(http.StatusCreated, gin.H{
		"message": fmt.Sprintf("Successfully created %d products", n),
		"count":   n,
	})
}

func (s *Server) generate(c *gin.Context) {
	count, err := strconv.Atoi(c.Param("count"))
	if err != nil {
		fail(c, domain.Invalid("count must be an integer"))
		return
	}
	var req TemplateRequest
	if err := s.bindJSON(c, &req, true); err != nil {
		fail(c, err)
		return
	}
	var tmpl *generator.Template
	if req != (TemplateRequest{}) {
		tmpl = req.toTemplate()
	}

	start := time.Now()
	n, err := s.products.Generate(c.Request.Context(), count, tmpl)
	if err != nil {
		fail(c, err)
		return
	}
	elapsed := time.Since(start)
	recordWritten("generate", n)
	zerolog.Ctx(c.Request.Context()).Info().
		Int("count", n).
		Dur("elapsed", elapsed).
		Bool("template", tmpl != nil).
		Msg("products generated")
	c.JSON(http.StatusOK, gin.H{
		"message":   fmt.Sprintf("Successfully generated %d products", n),
		"count":     n,
		"elapsedMs": elapsed.Milliseconds(),
	})
}

func (s *Server) export(c *gin.Context) {
	var req FilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		fail(c, queryError(err))
		return
	}
	f, err := req.toDomain()
	if err != nil {
		fail(c, err)
		return
	}
	ps, err := s.products.Export(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	var buf bytes.Buffer
	if err := sheet.WriteProducts(&buf, ps); err != nil {
		fail(c, err)
		return
	}
	name := fmt.Sprintf("products-%s.xlsx", s.opts.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, sheet.ContentType, buf.Bytes())
}

func (s *Server) importSheet(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, domain.Invalid("multipart field \"file\" is required"))
		return
	}
	if fh.Size > s.opts.MaxUploadBytes {
		fail(c, domain.Invalid("file exceeds %d bytes", s.opts.MaxUploadBytes))
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()

	ps, err := sheet.ReadProducts(f)
	if err != nil {
		fail(c, err)
		return
	}
	n, err := s.products.BulkCreate(c.Request.Context(), ps)
	if err != nil {
		fail(c, err)
		return
	}
	recordWritten("import", n)
	c.JSON(http.StatusCreated, gin.H{
		"message": fmt.Sprintf("Successfully imported %d products", n),
		"count":   n,
	})
}

func (s *Server) health(c *gin.Context) {
	now := s.opts.Now().UTC()
	if err := s.products.Healthy(c.Request.Context()); err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "timestamp": now})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": now})
}
