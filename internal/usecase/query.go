package usecase

import (
	"fmt"
	"strings"

	"github.com/phenrril/catalog/internal/domain"
)

const maxSearchTermLength = 100

// criterion turns one optional filter field into a condition. ok is false
// when the field was not supplied.
type criterion func(f domain.ProductFilter) (c domain.Condition, ok bool)

// criteria is applied in order; each present field adds one conjunct.
var criteria = []criterion{
	func(f domain.ProductFilter) (domain.Condition, bool) {
		term := strings.TrimSpace(f.SearchTerm)
		return domain.Condition{Op: domain.OpContainsFold, Columns: domain.SearchColumns, Value: term}, term != ""
	},
	textEquals(domain.ColCategory, func(f domain.ProductFilter) string { return f.Category }),
	textEquals(domain.ColBrand, func(f domain.ProductFilter) string { return f.Brand }),
	textEquals(domain.ColAvailability, func(f domain.ProductFilter) string { return f.AvailabilityStatus }),
	func(f domain.ProductFilter) (domain.Condition, bool) {
		if f.MinPrice == nil {
			return domain.Condition{}, false
		}
		return domain.Condition{Op: domain.OpGTE, Columns: []domain.Column{domain.ColPrice}, Value: *f.MinPrice}, true
	},
	func(f domain.ProductFilter) (domain.Condition, bool) {
		if f.MaxPrice == nil {
			return domain.Condition{}, false
		}
		return domain.Condition{Op: domain.OpLTE, Columns: []domain.Column{domain.ColPrice}, Value: *f.MaxPrice}, true
	},
	func(f domain.ProductFilter) (domain.Condition, bool) {
		if f.MinRating == nil {
			return domain.Condition{}, false
		}
		return domain.Condition{Op: domain.OpGTE, Columns: []domain.Column{domain.ColRating}, Value: *f.MinRating}, true
	},
	func(f domain.ProductFilter) (domain.Condition, bool) {
		return domain.Condition{Op: domain.OpGT, Columns: []domain.Column{domain.ColStock}, Value: 0}, f.InStockOnly
	},
	textContains(domain.ColColors, func(f domain.ProductFilter) string { return f.Color }),
	textContains(domain.ColSizes, func(f domain.ProductFilter) string { return f.Size }),
	func(f domain.ProductFilter) (domain.Condition, bool) {
		if f.ReleaseDateFrom == nil {
			return domain.Condition{}, false
		}
		return domain.Condition{Op: domain.OpGTE, Columns: []domain.Column{domain.ColReleaseDate}, Value: domain.DateOf(*f.ReleaseDateFrom)}, true
	},
	func(f domain.ProductFilter) (domain.Condition, bool) {
		if f.ReleaseDateTo == nil {
			return domain.Condition{}, false
		}
		return domain.Condition{Op: domain.OpLTE, Columns: []domain.Column{domain.ColReleaseDate}, Value: domain.DateOf(*f.ReleaseDateTo)}, true
	},
}

func textEquals(col domain.Column, get func(domain.ProductFilter) string) criterion {
	return func(f domain.ProductFilter) (domain.Condition, bool) {
		v := strings.TrimSpace(get(f))
		return domain.Condition{Op: domain.OpEqualFold, Columns: []domain.Column{col}, Value: v}, v != ""
	}
}

func textContains(col domain.Column, get func(domain.ProductFilter) string) criterion {
	return func(f domain.ProductFilter) (domain.Condition, bool) {
		v := strings.TrimSpace(get(f))
		return domain.Condition{Op: domain.OpContainsFold, Columns: []domain.Column{col}, Value: v}, v != ""
	}
}

var sortColumns = map[string]domain.Column{
	"name":           domain.ColName,
	"price":          domain.ColPrice,
	"category":       domain.ColCategory,
	"brand":          domain.ColBrand,
	"rating":         domain.ColRating,
	"customerrating": domain.ColRating,
	"releasedate":    domain.ColReleaseDate,
	"stock":          domain.ColStock,
	"stockquantity":  domain.ColStock,
}

// ResolveOrder maps a sort key to a column; unknown keys sort by name.
// Only "desc" (any case) sorts descending.
func ResolveOrder(sortBy, direction string) domain.Order {
	key := strings.ToLower(strings.TrimSpace(sortBy))
	key = strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)
	col, ok := sortColumns[key]
	if !ok {
		col = domain.ColName
	}
	return domain.Order{Column: col, Desc: strings.EqualFold(strings.TrimSpace(direction), "desc")}
}

// ClampPageSize bounds n to [1, MaxPageSize].
func ClampPageSize(n int) int {
	switch {
	case n < 1:
		return 1
	case n > domain.MaxPageSize:
		return domain.MaxPageSize
	}
	return n
}

// ComposeQuery validates f and turns it into a ProductQuery. It performs no I/O.
func ComposeQuery(f domain.ProductFilter) (domain.ProductQuery, error) {
	if err := validateFilter(f); err != nil {
		return domain.ProductQuery{}, err
	}
	q := domain.ProductQuery{
		Orders:   []domain.Order{ResolveOrder(f.SortBy, f.SortDirection)},
		Page:     f.Page,
		PageSize: ClampPageSize(f.PageSize),
	}
	for _, c := range criteria {
		if cond, ok := c(f); ok {
			q.Conditions = append(q.Conditions, cond)
		}
	}
	return q, nil
}

func validateFilter(f domain.ProductFilter) error {
	v := &domain.ValidationError{}
	if f.Page < 1 {
		v.Add("page", "page must be at least 1")
	} else if f.Page > domain.MaxPage {
		v.Add("page", fmt.Sprintf("page cannot exceed %d", domain.MaxPage))
	}
	if len([]rune(strings.TrimSpace(f.SearchTerm))) > maxSearchTermLength {
		v.Add("searchTerm", "search term cannot exceed 100 characters")
	}
	if f.MinPrice != nil && f.MinPrice.IsNegative() {
		v.Add("minPrice", "minimum price cannot be negative")
	}
	if f.MaxPrice != nil && f.MaxPrice.IsNegative() {
		v.Add("maxPrice", "maximum price cannot be negative")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		v.Add("minPrice", "Minimum price cannot be greater than maximum price")
	}
	if f.MinRating != nil && (f.MinRating.LessThan(domain.MinRating) || f.MinRating.GreaterThan(domain.MaxRating)) {
		v.Add("minRating", "minimum rating must be between 0 and 5")
	}
	if f.ReleaseDateFrom != nil && f.ReleaseDateTo != nil && domain.DateOf(*f.ReleaseDateFrom).After(domain.DateOf(*f.ReleaseDateTo)) {
		v.Add("releaseDateFrom", "Release date from cannot be greater than release date to")
	}
	return v.OrNil()
}
