package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps (page-1)*pageSize inside a 32-bit int.
	MaxPage = 10_000_000
)

// ProductFilter is the caller-facing set of optional criteria. Nil pointers
// and blank strings mean "not supplied".
type ProductFilter struct {
	SearchTerm         string
	Category           string
	Brand              string
	AvailabilityStatus string
	Color              string
	Size               string
	MinPrice           *decimal.Decimal
	MaxPrice           *decimal.Decimal
	MinRating          *decimal.Decimal
	InStockOnly        bool
	ReleaseDateFrom    *time.Time
	ReleaseDateTo      *time.Time

	Page          int
	PageSize      int
	SortBy        string
	SortDirection string
}

// Column names a stored product attribute. Values are the storage column names.
type Column string

const (
	ColID           Column = "id"
	ColName         Column = "name"
	ColDescription  Column = "description"
	ColCategory     Column = "category"
	ColBrand        Column = "brand"
	ColSKU          Column = "sku"
	ColAvailability Column = "availability_status"
	ColColors       Column = "available_colors"
	ColSizes        Column = "available_sizes"
	ColPrice        Column = "price"
	ColStock        Column = "stock_quantity"
	ColRating       Column = "customer_rating"
	ColReleaseDate  Column = "release_date"
)

// SearchColumns are the text attributes free-text search looks at.
var SearchColumns = []Column{
	ColName, ColDescription, ColCategory, ColBrand,
	ColSKU, ColAvailability, ColColors, ColSizes,
}

type Operator int

const (
	// OpEqualFold is case-insensitive equality on a single text column.
	OpEqualFold Operator = iota
	// OpContainsFold holds when any of the columns contains Value, ignoring case.
	OpContainsFold
	OpGTE
	OpLTE
	OpGT
)

// Condition is one conjunct of a product query. Value is a string for the
// text operators and a decimal.Decimal, int or time.Time for comparisons.
type Condition struct {
	Op      Operator
	Columns []Column
	Value   any
}

type Order struct {
	Column Column
	Desc   bool
}

// ProductQuery is a fully resolved query: every condition must hold.
type ProductQuery struct {
	Conditions []Condition
	Orders     []Order
	Page       int
	PageSize   int
}

func (q ProductQuery) Offset() int { return (q.Page - 1) * q.PageSize }

// Matches evaluates every condition against p in memory.
func (q ProductQuery) Matches(p Product) bool {
	for _, c := range q.Conditions {
		if !c.Matches(p) {
			return false
		}
	}
	return true
}

func (c Condition) Matches(p Product) bool {
	switch c.Op {
	case OpEqualFold:
		s, _ := c.Value.(string)
		for _, col := range c.Columns {
			if strings.EqualFold(p.text(col), s) {
				return true
			}
		}
		return false
	case OpContainsFold:
		s, _ := c.Value.(string)
		needle := strings.ToLower(s)
		for _, col := range c.Columns {
			if strings.Contains(strings.ToLower(p.text(col)), needle) {
				return true
			}
		}
		return false
	case OpGTE, OpLTE, OpGT:
		for _, col := range c.Columns {
			cmp, ok := p.compare(col, c.Value)
			if !ok {
				continue
			}
			switch {
			case c.Op == OpGTE && cmp >= 0,
				c.Op == OpLTE && cmp <= 0,
				c.Op == OpGT && cmp > 0:
				return true
			}
		}
		return false
	}
	return false
}

func (p Product) text(col Column) string {
	switch col {
	case ColName:
		return p.Name
	case ColDescription:
		return p.Description
	case ColCategory:
		return p.Category
	case ColBrand:
		return p.Brand
	case ColSKU:
		return p.SKU
	case ColAvailability:
		return p.AvailabilityStatus
	case ColColors:
		return p.AvailableColors
	case ColSizes:
		return p.AvailableSizes
	}
	return ""
}

// compare reports the sign of (column value - v). ok is false when the column
// holds no value (a null rating) or the types do not line up.
func (p Product) compare(col Column, v any) (int, bool) {
	switch col {
	case ColPrice:
		d, ok := v.(decimal.Decimal)
		if !ok {
			return 0, false
		}
		return p.Price.Cmp(d), true
	case ColRating:
		d, ok := v.(decimal.Decimal)
		if !ok || !p.CustomerRating.Valid {
			return 0, false
		}
		return p.CustomerRating.Decimal.Cmp(d), true
	case ColStock:
		n, ok := v.(int)
		if !ok {
			return 0, false
		}
		switch {
		case p.StockQuantity < n:
			return -1, true
		case p.StockQuantity > n:
			return 1, true
		}
		return 0, true
	case ColReleaseDate:
		t, ok := v.(time.Time)
		if !ok {
			return 0, false
		}
		return p.ReleaseDate.Compare(t), true
	}
	return 0, false
}
