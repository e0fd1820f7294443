package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phenrril/catalog/internal/domain"
)

const batchSize = 200

type ProductRepo struct {
	db    *gorm.DB
	match textMatcher
}

// NewProductRepo picks the text matching strategy from the dialect behind db.
func NewProductRepo(db *gorm.DB) *ProductRepo {
	return &ProductRepo{db: db, match: matcherFor(db.Dialector.Name())}
}

func (r *ProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *ProductRepo) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, "sku = ?", sku).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// Query counts every matching row, then fetches the requested page.
func (r *ProductRepo) Query(ctx context.Context, q domain.ProductQuery) ([]domain.Product, int64, error) {
	var total int64
	if err := r.filtered(ctx, q.Conditions).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	list := []domain.Product{}
	if total == 0 {
		return list, 0, nil
	}
	tx := r.filtered(ctx, q.Conditions)
	for _, o := range q.Orders {
		if o.Column == domain.ColRating {
			// Unrated products sort last in either direction on every backend.
			tx = tx.Order("CASE WHEN " + string(o.Column) + " IS NULL THEN 1 ELSE 0 END")
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: string(o.Column)}, Desc: o.Desc})
	}
	tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: string(domain.ColID)}})
	if err := tx.Offset(q.Offset()).Limit(q.PageSize).Find(&list).Error; err != nil {
		return nil, 0, translate(err)
	}
	return list, total, nil
}

func (r *ProductRepo) filtered(ctx context.Context, conds []domain.Condition) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.Product{})
	for _, c := range conds {
		q = r.where(q, c)
	}
	return q
}

func (r *ProductRepo) where(q *gorm.DB, c domain.Condition) *gorm.DB {
	if len(c.Columns) == 0 {
		return q
	}
	col := string(c.Columns[0])
	switch c.Op {
	case domain.OpEqualFold:
		return q.Where("LOWER("+col+") = LOWER(?)", c.Value)
	case domain.OpContainsFold:
		s, _ := c.Value.(string)
		sql, args := r.match.containsAny(c.Columns, s)
		return q.Where(sql, args...)
	case domain.OpGTE:
		return q.Where(col+" >= ?", c.Value)
	case domain.OpLTE:
		return q.Where(col+" <= ?", c.Value)
	case domain.OpGT:
		return q.Where(col+" > ?", c.Value)
	}
	return q
}

func (r *ProductRepo) Add(ctx context.Context, p *domain.Product) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

// AddBatch inserts every product or none of them.
func (r *ProductRepo) AddBatch(ctx context.Context, ps []domain.Product) error {
	if len(ps) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&ps, batchSize).Error
	}))
}

// Update writes every column except the identity and creation time.
func (r *ProductRepo) Update(ctx context.Context, p *domain.Product) error {
	res := r.db.WithContext(ctx).Model(p).Select("*").Omit("ID", "CreatedAt").Updates(p)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) Remove(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.Product{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}

func (r *ProductRepo) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Where("sku = ?", sku).Count(&n).Error; err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}

func (r *ProductRepo) ExistingSKUs(ctx context.Context, skus []string) ([]string, error) {
	out := []string{}
	if len(skus) == 0 {
		return out, nil
	}
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("sku IN ?", skus).Order("sku asc").Pluck("sku", &out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *ProductRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Count(&n).Error; err != nil {
		return 0, translate(err)
	}
	return n, nil
}

func (r *ProductRepo) DistinctCategories(ctx context.Context) ([]string, error) {
	cats := []string{}
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Distinct("category").Where("category <> ''").Order("category asc").Pluck("category", &cats).Error; err != nil {
		return nil, translate(err)
	}
	return cats, nil
}

func (r *ProductRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
