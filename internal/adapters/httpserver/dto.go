package httpserver

import (
	"bytes"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/phenrril/catalog/internal/domain"
	"github.com/phenrril/catalog/internal/generator"
)

const dateLayout = "2006-01-02"

var pricePrinter = message.NewPrinter(language.AmericanEnglish)

// Date is a calendar day on the wire. It accepts "2006-01-02" or a full
// RFC 3339 timestamp and always renders as "2006-01-02".
type Date struct{ time.Time }

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{dateLayout, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.DateOf(t), nil
		}
	}
	return time.Time{}, domain.Invalid("invalid date %q, expected YYYY-MM-DD", s)
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	t, err := parseDate(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// ProductRequest is the create/update body.
type ProductRequest struct {
	Name               string           `json:"name" validate:"required,max=200"`
	Description        string           `json:"description" validate:"max=2000"`
	Category           string           `json:"category" validate:"max=100"`
	Brand              string           `json:"brand" validate:"max=100"`
	Price              decimal.Decimal  `json:"price"`
	StockQuantity      int              `json:"stockQuantity" validate:"gte=0"`
	SKU                string           `json:"sku" validate:"required,max=100"`
	ReleaseDate        *Date            `json:"releaseDate"`
	AvailabilityStatus string           `json:"availabilityStatus" validate:"max=50"`
	CustomerRating     *decimal.Decimal `json:"customerRating"`
	AvailableColors    string           `json:"availableColors" validate:"max=500"`
	AvailableSizes     string           `json:"availableSizes" validate:"max=500"`
}

func (r ProductRequest) toDomain() domain.Product {
	p := domain.Product{
		Name:               r.Name,
		Description:        r.Description,
		Category:           r.Category,
		Brand:              r.Brand,
		Price:              r.Price,
		StockQuantity:      r.StockQuantity,
		SKU:                r.SKU,
		AvailabilityStatus: r.AvailabilityStatus,
		AvailableColors:    r.AvailableColors,
		AvailableSizes:     r.AvailableSizes,
	}
	if r.ReleaseDate != nil {
		p.ReleaseDate = r.ReleaseDate.Time
	}
	if r.CustomerRating != nil {
		p.CustomerRating = decimal.NewNullDecimal(*r.CustomerRating)
	}
	return p
}

// TemplateRequest is the optional body of the generate endpoint. Omitted
// fields are randomized.
type TemplateRequest struct {
	Name               string           `json:"name" validate:"max=200"`
	Description        string           `json:"description" validate:"max=2000"`
	Category           string           `json:"category" validate:"max=100"`
	Brand              string           `json:"brand" validate:"max=100"`
	Price              *decimal.Decimal `json:"price"`
	StockQuantity      *int             `json:"stockQuantity" validate:"omitempty,gte=0"`
	SKU                string           `json:"sku" validate:"max=90"`
	ReleaseDate        *Date            `json:"releaseDate"`
	AvailabilityStatus string           `json:"availabilityStatus" validate:"max=50"`
	CustomerRating     *decimal.Decimal `json:"customerRating"`
	AvailableColors    string           `json:"availableColors" validate:"max=500"`
	AvailableSizes     string           `json:"availableSizes" validate:"max=500"`
}

func (r TemplateRequest) toTemplate() *generator.Template {
	t := &generator.Template{
		Name:               r.Name,
		Description:        r.Description,
		Category:           r.Category,
		Brand:              r.Brand,
		SKU:                r.SKU,
		AvailabilityStatus: r.AvailabilityStatus,
		AvailableColors:    r.AvailableColors,
		AvailableSizes:     r.AvailableSizes,
		Price:              r.Price,
		StockQuantity:      r.StockQuantity,
		CustomerRating:     r.CustomerRating,
	}
	if r.ReleaseDate != nil {
		rd := r.ReleaseDate.Time
		t.ReleaseDate = &rd
	}
	return t
}

// FilterRequest binds from the query string of GET listings and from the
// JSON body of POST /filter.
type FilterRequest struct {
	SearchTerm         string           `form:"searchTerm" json:"searchTerm"`
	Category           string           `form:"category" json:"category"`
	Brand              string           `form:"brand" json:"brand"`
	AvailabilityStatus string           `form:"availabilityStatus" json:"availabilityStatus"`
	Color              string           `form:"color" json:"color"`
	Size               string           `form:"size" json:"size"`
	MinPrice           *decimal.Decimal `form:"minPrice" json:"minPrice"`
	MaxPrice           *decimal.Decimal `form:"maxPrice" json:"maxPrice"`
	MinRating          *decimal.Decimal `form:"minRating" json:"minRating"`
	InStockOnly        bool             `form:"inStockOnly" json:"inStockOnly"`
	ReleaseDateFrom    string           `form:"releaseDateFrom" json:"releaseDateFrom"`
	ReleaseDateTo      string           `form:"releaseDateTo" json:"releaseDateTo"`
	Page               *int             `form:"page" json:"page"`
	PageSize           *int             `form:"pageSize" json:"pageSize"`
	SortBy             string           `form:"sortBy" json:"sortBy"`
	SortDirection      string           `form:"sortDirection" json:"sortDirection"`
}

func (r FilterRequest) toDomain() (domain.ProductFilter, error) {
	f := domain.ProductFilter{
		SearchTerm:         r.SearchTerm,
		Category:           r.Category,
		Brand:              r.Brand,
		AvailabilityStatus: r.AvailabilityStatus,
		Color:              r.Color,
		Size:               r.Size,
		MinPrice:           r.MinPrice,
		MaxPrice:           r.MaxPrice,
		MinRating:          r.MinRating,
		InStockOnly:        r.InStockOnly,
		SortBy:             r.SortBy,
		SortDirection:      r.SortDirection,
	}
	f.Page, f.PageSize = paging(r.Page, r.PageSize)
	verr := &domain.ValidationError{}
	if r.ReleaseDateFrom != "" {
		t, err := parseDate(r.ReleaseDateFrom)
		if err != nil {
			verr.Add("releaseDateFrom", "release date from must be YYYY-MM-DD")
		}
		f.ReleaseDateFrom = &t
	}
	if r.ReleaseDateTo != "" {
		t, err := parseDate(r.ReleaseDateTo)
		if err != nil {
			verr.Add("releaseDateTo", "release date to must be YYYY-MM-DD")
		}
		f.ReleaseDateTo = &t
	}
	return f, verr.OrNil()
}

// PageRequest is the paging part of the narrower listing endpoints.
type PageRequest struct {
	Page     *int `form:"page"`
	PageSize *int `form:"pageSize"`
}

func paging(page, size *int) (int, int) {
	p, s := domain.DefaultPage, domain.DefaultPageSize
	if page != nil {
		p = *page
	}
	if size != nil {
		s = *size
	}
	return p, s
}

// ProductResponse is the full representation of a product.
type ProductResponse struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Category           string    `json:"category"`
	Brand              string    `json:"brand"`
	Price              float64   `json:"price"`
	FormattedPrice     string    `json:"formattedPrice"`
	StockQuantity      int       `json:"stockQuantity"`
	IsInStock          bool      `json:"isInStock"`
	SKU                string    `json:"sku"`
	ReleaseDate        Date      `json:"releaseDate"`
	AvailabilityStatus string    `json:"availabilityStatus"`
	CustomerRating     *float64  `json:"customerRating"`
	AvailableColors    string    `json:"availableColors"`
	AvailableSizes     string    `json:"availableSizes"`
	ColorOptions       []string  `json:"colorOptions"`
	SizeOptions        []string  `json:"sizeOptions"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// ProductListItem is the compact representation used inside pages.
type ProductListItem struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Category           string    `json:"category"`
	Brand              string    `json:"brand"`
	Price              float64   `json:"price"`
	FormattedPrice     string    `json:"formattedPrice"`
	StockQuantity      int       `json:"stockQuantity"`
	IsInStock          bool      `json:"isInStock"`
	SKU                string    `json:"sku"`
	AvailabilityStatus string    `json:"availabilityStatus"`
	CustomerRating     *float64  `json:"customerRating"`
}

func formatPrice(d decimal.Decimal) string {
	return pricePrinter.Sprintf("$%.2f", d.InexactFloat64())
}

func rating(n decimal.NullDecimal) *float64 {
	if !n.Valid {
		return nil
	}
	f := n.Decimal.InexactFloat64()
	return &f
}

func toProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:                 p.ID,
		Name:               p.Name,
		Description:        p.Description,
		Category:           p.Category,
		Brand:              p.Brand,
		Price:              p.Price.InexactFloat64(),
		FormattedPrice:     formatPrice(p.Price),
		StockQuantity:      p.StockQuantity,
		IsInStock:          p.InStock(),
		SKU:                p.SKU,
		ReleaseDate:        Date{p.ReleaseDate},
		AvailabilityStatus: p.AvailabilityStatus,
		CustomerRating:     rating(p.CustomerRating),
		AvailableColors:    p.AvailableColors,
		AvailableSizes:     p.AvailableSizes,
		ColorOptions:       p.ColorOptions(),
		SizeOptions:        p.SizeOptions(),
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func toProductListItem(p domain.Product) ProductListItem {
	return ProductListItem{
		ID:                 p.ID,
		Name:               p.Name,
		Category:           p.Category,
		Brand:              p.Brand,
		Price:              p.Price.InexactFloat64(),
		FormattedPrice:     formatPrice(p.Price),
		StockQuantity:      p.StockQuantity,
		IsInStock:          p.InStock(),
		SKU:                p.SKU,
		AvailabilityStatus: p.AvailabilityStatus,
		CustomerRating:     rating(p.CustomerRating),
	}
}

func toProductResponses(ps []domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProductResponse(p))
	}
	return out
}
