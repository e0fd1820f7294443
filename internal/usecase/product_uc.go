package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phenrril/catalog/internal/domain"
	"github.com/phenrril/catalog/internal/generator"
)

const (
	MaxGenerateCount = 1000
	MaxSeedCount     = 10000
	MaxTopRated      = 100
	maxExportRows    = 10000
	skuRetryRounds   = 5
)

type ProductUC struct {
	Products  domain.ProductRepo
	Generator *generator.Generator
	Clock     func() time.Time
}

func (uc *ProductUC) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock().UTC()
	}
	return time.Now().UTC()
}

func (uc *ProductUC) List(ctx context.Context, f domain.ProductFilter) (domain.Page[domain.Product], error) {
	q, err := ComposeQuery(f)
	if err != nil {
		return domain.Page[domain.Product]{}, err
	}
	return uc.page(ctx, q)
}

func (uc *ProductUC) page(ctx context.Context, q domain.ProductQuery) (domain.Page[domain.Product], error) {
	items, total, err := uc.Products.Query(ctx, q)
	if err != nil {
		return domain.Page[domain.Product]{}, err
	}
	return domain.NewPage(items, q.Page, q.PageSize, total), nil
}

// Search requires a non-blank term; results are ordered by name.
func (uc *ProductUC) Search(ctx context.Context, term string, page, pageSize int) (domain.Page[domain.Product], error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return domain.Page[domain.Product]{}, domain.Invalid("search term is required")
	}
	return uc.List(ctx, domain.ProductFilter{SearchTerm: term, Page: page, PageSize: pageSize, SortBy: "name"})
}

func (uc *ProductUC) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if id == uuid.Nil {
		return nil, domain.Invalid("product id is required")
	}
	return uc.Products.FindByID(ctx, id)
}

func (uc *ProductUC) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, domain.Invalid("SKU is required")
	}
	return uc.Products.FindBySKU(ctx, sku)
}

func (uc *ProductUC) ByCategory(ctx context.Context, category string, page, pageSize int) (domain.Page[domain.Product], error) {
	if strings.TrimSpace(category) == "" {
		return domain.Page[domain.Product]{}, domain.Invalid("category is required")
	}
	return uc.List(ctx, domain.ProductFilter{Category: category, Page: page, PageSize: pageSize, SortBy: "name"})
}

func (uc *ProductUC) ByBrand(ctx context.Context, brand string, page, pageSize int) (domain.Page[domain.Product], error) {
	if strings.TrimSpace(brand) == "" {
		return domain.Page[domain.Product]{}, domain.Invalid("brand is required")
	}
	return uc.List(ctx, domain.ProductFilter{Brand: brand, Page: page, PageSize: pageSize, SortBy: "name"})
}

func (uc *ProductUC) ByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal, page, pageSize int) (domain.Page[domain.Product], error) {
	if minPrice.IsNegative() {
		return domain.Page[domain.Product]{}, domain.Invalid("minimum price cannot be negative")
	}
	if maxPrice.LessThan(minPrice) {
		return domain.Page[domain.Product]{}, domain.Invalid("maximum price cannot be less than minimum price")
	}
	return uc.List(ctx, domain.ProductFilter{MinPrice: &minPrice, MaxPrice: &maxPrice, Page: page, PageSize: pageSize, SortBy: "price"})
}

// TopRated returns up to count products rated at least minRating, best first.
func (uc *ProductUC) TopRated(ctx context.Context, minRating decimal.Decimal, count int) ([]domain.Product, error) {
	if minRating.LessThan(domain.MinRating) || minRating.GreaterThan(domain.MaxRating) {
		return nil, domain.Invalid("minimum rating must be between 0 and 5")
	}
	if count < 1 {
		return nil, domain.Invalid("count must be greater than 0")
	}
	q := domain.ProductQuery{
		Conditions: []domain.Condition{{Op: domain.OpGTE, Columns: []domain.Column{domain.ColRating}, Value: minRating}},
		Orders:     []domain.Order{{Column: domain.ColRating, Desc: true}, {Column: domain.ColName}},
		Page:       1,
		PageSize:   min(count, MaxTopRated),
	}
	items, _, err := uc.Products.Query(ctx, q)
	return items, err
}

// prepare normalizes a new product and stamps identity and timestamps.
func (uc *ProductUC) prepare(p *domain.Product, now time.Time) {
	p.Normalize()
	p.ID = uuid.New()
	if p.ReleaseDate.IsZero() {
		p.ReleaseDate = domain.DateOf(now)
	}
	p.CreatedAt = now
	p.UpdatedAt = now
}

func (uc *ProductUC) Create(ctx context.Context, p *domain.Product) error {
	uc.prepare(p, uc.now())
	if err := p.Validate(); err != nil {
		return err
	}
	taken, err := uc.Products.ExistsBySKU(ctx, p.SKU)
	if err != nil {
		return err
	}
	if taken {
		return domain.Conflict("product with SKU %q already exists", p.SKU)
	}
	return uc.Products.Add(ctx, p)
}

// Update replaces every mutable field of the product with id.
func (uc *ProductUC) Update(ctx context.Context, id uuid.UUID, in domain.Product) (*domain.Product, error) {
	current, err := uc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Normalize()
	if in.ReleaseDate.IsZero() {
		in.ReleaseDate = current.ReleaseDate
	}
	in.ID = current.ID
	in.CreatedAt = current.CreatedAt
	in.UpdatedAt = advance(current.UpdatedAt, uc.now())
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.SKU != current.SKU {
		taken, err := uc.Products.ExistsBySKU(ctx, in.SKU)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.Conflict("product with SKU %q already exists", in.SKU)
		}
	}
	if err := uc.Products.Update(ctx, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

// advance returns now, or the smallest storable instant after prev when the
// clock has not moved past it.
func advance(prev, now time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Microsecond)
}

func (uc *ProductUC) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return domain.Invalid("product id is required")
	}
	return uc.Products.Remove(ctx, id)
}

func (uc *ProductUC) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return uc.Products.Exists(ctx, id)
}

// BulkCreate validates the whole batch before inserting any of it.
func (uc *ProductUC) BulkCreate(ctx context.Context, ps []domain.Product) (int, error) {
	if len(ps) == 0 {
		return 0, domain.Invalid("product list cannot be empty")
	}
	now := uc.now()
	seen := make(map[string]int, len(ps))
	skus := make([]string, 0, len(ps))
	for i := range ps {
		uc.prepare(&ps[i], now)
		if err := ps[i].Validate(); err != nil {
			return 0, indexed(err, i)
		}
		if j, dup := seen[ps[i].SKU]; dup {
			return 0, domain.Conflict("duplicate SKU %q at positions %d and %d", ps[i].SKU, j, i)
		}
		seen[ps[i].SKU] = i
		skus = append(skus, ps[i].SKU)
	}
	existing, err := uc.Products.ExistingSKUs(ctx, skus)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, domain.Conflict("SKUs already exist: %s", strings.Join(existing, ", "))
	}
	if err := uc.Products.AddBatch(ctx, ps); err != nil {
		return 0, err
	}
	return len(ps), nil
}

// Generate creates count sample products, optionally derived from tmpl.
func (uc *ProductUC) Generate(ctx context.Context, count int, tmpl *generator.Template) (int, error) {
	if count < 1 || count > MaxGenerateCount {
		return 0, domain.Invalid("count must be between 1 and %d", MaxGenerateCount)
	}
	ps, err := uc.generateUnique(ctx, count, tmpl)
	if err != nil {
		return 0, err
	}
	if err := uc.Products.AddBatch(ctx, ps); err != nil {
		return 0, err
	}
	return len(ps), nil
}

// generateUnique regenerates until no SKU collides with a stored one.
func (uc *ProductUC) generateUnique(ctx context.Context, count int, tmpl *generator.Template) ([]domain.Product, error) {
	taken := map[string]struct{}{}
	for round := 0; round < skuRetryRounds; round++ {
		ps := uc.Generator.Generate(count, tmpl, taken)
		skus := make([]string, len(ps))
		for i := range ps {
			ps[i].Normalize()
			if err := ps[i].Validate(); err != nil {
				return nil, indexed(err, i)
			}
			skus[i] = ps[i].SKU
		}
		existing, err := uc.Products.ExistingSKUs(ctx, skus)
		if err != nil {
			return nil, err
		}
		if len(existing) == 0 {
			return ps, nil
		}
		for _, s := range existing {
			taken[s] = struct{}{}
		}
	}
	return nil, domain.Conflict("could not generate %d unique SKUs", count)
}

// indexed prefixes validation field names with the item position.
func indexed(err error, i int) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Prefix(fmt.Sprintf("[%d].", i))
	}
	return err
}

// Seed fills an empty catalog with count generated products. It reports how
// many were inserted; a non-empty catalog is left untouched.
func (uc *ProductUC) Seed(ctx context.Context, count int) (int, error) {
	if count < 1 || count > MaxSeedCount {
		return 0, domain.Invalid("seed count must be between 1 and %d", MaxSeedCount)
	}
	n, err := uc.Products.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	created := 0
	for created < count {
		batch := min(MaxGenerateCount, count-created)
		done, err := uc.Generate(ctx, batch, nil)
		if err != nil {
			return created, err
		}
		created += done
	}
	return created, nil
}

func (uc *ProductUC) Categories(ctx context.Context) ([]string, error) {
	return uc.Products.DistinctCategories(ctx)
}

// Export collects every product matching f, page by page, up to a fixed cap.
func (uc *ProductUC) Export(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	f.Page = 1
	f.PageSize = domain.MaxPageSize
	out := []domain.Product{}
	for len(out) < maxExportRows {
		page, err := uc.List(ctx, f)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Items...)
		if !page.HasNext() {
			break
		}
		f.Page++
	}
	if len(out) > maxExportRows {
		out = out[:maxExportRows]
	}
	return out, nil
}

func (uc *ProductUC) Healthy(ctx context.Context) error {
	return uc.Products.Ping(ctx)
}
