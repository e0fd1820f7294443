package app

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/phenrril/catalog/internal/adapters/httpserver"
	"github.com/phenrril/catalog/internal/adapters/repo/postgres"
	"github.com/phenrril/catalog/internal/config"
	"github.com/phenrril/catalog/internal/domain"
	"github.com/phenrril/catalog/internal/generator"
	"github.com/phenrril/catalog/internal/usecase"
)

type App struct {
	DB        *gorm.DB
	Config    *config.Config
	Log       zerolog.Logger
	ProductUC *usecase.ProductUC
}

func NewApp(db *gorm.DB, cfg *config.Config, log zerolog.Logger) (*App, error) {
	prodRepo := postgres.NewProductRepo(db)

	app := &App{DB: db, Config: cfg, Log: log}
	app.ProductUC = &usecase.ProductUC{
		Products:  prodRepo,
		Generator: generator.NewRandom(),
	}
	return app, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.ProductUC, httpserver.Options{
		AllowedOrigins: a.Config.AllowedOrigins,
		Logger:         a.Log,
		MaxUploadBytes: a.Config.MaxUploadBytes,
	})
}

// MigrateAndSeed brings the schema up to date and, when SEED_PRODUCTS is set,
// fills an empty catalog with generated products.
func (a *App) MigrateAndSeed(ctx context.Context) error {
	if err := a.DB.WithContext(ctx).AutoMigrate(&domain.Product{}); err != nil {
		return err
	}

	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_products_category_brand ON products (category, brand)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_products_stock_quantity ON products (stock_quantity)").Error

	if a.Config.SeedProducts == 0 {
		return nil
	}
	n, err := a.ProductUC.Seed(ctx, a.Config.SeedProducts)
	if err != nil {
		return err
	}
	if n > 0 {
		a.Log.Info().Int("count", n).Msg("seeded catalog")
	}
	return nil
}
