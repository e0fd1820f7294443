package httpserver

import (
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/phenrril/catalog/internal/usecase"
)

const defaultMaxUpload = 10 << 20

type Options struct {
	// AllowedOrigins lists CORS origins; empty or "*" allows any origin.
	AllowedOrigins []string
	Logger         zerolog.Logger
	MaxUploadBytes int64
	Now            func() time.Time
}

type Server struct {
	engine   *gin.Engine
	products *usecase.ProductUC
	validate *validator.Validate
	opts     Options
}

func New(p *usecase.ProductUC, opts Options) http.Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUpload
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Server{engine: gin.New(), products: p, validate: newValidator(), opts: opts}
	s.engine.MaxMultipartMemory = opts.MaxUploadBytes
	s.engine.Use(
		RequestContext(opts.Logger),
		RequestLogger(),
		MetricsMiddleware(),
		Recovery(),
		SecurityHeaders(),
		cors.New(corsConfig(opts.AllowedOrigins)),
	)
	s.engine.NoRoute(func(c *gin.Context) {
		abort(c, http.StatusNotFound, codeNotFound, "The requested resource was not found", nil)
	})
	s.routes()
	return s.engine
}

func (s *Server) routes() {
	s.engine.GET("/health", s.health)
	s.engine.GET("/metrics", PrometheusHandler())

	api := s.engine.Group("/api/Product")
	{
		api.GET("", s.list)
		api.POST("/filter", s.filter)
		api.GET("/search", s.search)
		api.GET("/categories", s.categories)
		api.GET("/category/:category", s.byCategory)
		api.GET("/brand/:brand", s.byBrand)
		api.GET("/price-range", s.byPriceRange)
		api.GET("/top-rated", s.topRated)
		api.GET("/by-sku/:sku", s.bySKU)
		api.GET("/export", s.export)

		api.POST("", s.create)
		api.POST("/bulk", s.bulk)
		api.POST("/generate/:count", s.generate)
		api.POST("/import", s.importSheet)

		api.GET("/:id", s.get)
		api.HEAD("/:id", s.head)
		api.PUT("/:id", s.update)
		api.DELETE("/:id", s.delete)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", headerCorrelationID, headerRequestID},
		ExposeHeaders: []string{headerCorrelationID, "Location", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	var allowed []string
	for _, o := range origins {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		if o == "*" {
			allowed = nil
			break
		}
		if o != "" {
			allowed = append(allowed, o)
		}
	}
	if len(allowed) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowed
	}
	return cfg
}

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
