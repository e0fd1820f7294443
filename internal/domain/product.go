package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MaxNameLength         = 200
	MaxDescriptionLength  = 2000
	MaxCategoryLength     = 100
	MaxBrandLength        = 100
	MaxSKULength          = 100
	MaxAvailabilityLength = 50
	MaxOptionsLength      = 500

	DefaultAvailability = "Available"
)

var (
	MaxPrice  = decimal.RequireFromString("999999.99")
	MinRating = decimal.Zero
	MaxRating = decimal.NewFromInt(5)
)

type Product struct {
	ID                 uuid.UUID           `gorm:"type:uuid;primaryKey"`
	Name               string              `gorm:"size:200;not null;index"`
	Description        string              `gorm:"type:text"`
	Category           string              `gorm:"size:100;index"`
	Brand              string              `gorm:"size:100;index"`
	Price              decimal.Decimal     `gorm:"type:decimal(15,2);not null;index;check:price > 0"`
	StockQuantity      int                 `gorm:"not null;check:stock_quantity >= 0"`
	SKU                string              `gorm:"size:100;not null;uniqueIndex"`
	ReleaseDate        time.Time           `gorm:"type:date;index"`
	AvailabilityStatus string              `gorm:"size:50;not null"`
	CustomerRating     decimal.NullDecimal `gorm:"type:decimal(3,2);check:customer_rating >= 0 AND customer_rating <= 5"`
	AvailableColors    string              `gorm:"size:500"`
	AvailableSizes     string              `gorm:"size:500"`
	CreatedAt          time.Time           `gorm:"autoCreateTime:false"`
	UpdatedAt          time.Time           `gorm:"autoUpdateTime:false"`
}

func (p Product) InStock() bool { return p.StockQuantity > 0 }

// ColorOptions splits AvailableColors on commas, dropping blanks.
func (p Product) ColorOptions() []string { return splitOptions(p.AvailableColors) }

func (p Product) SizeOptions() []string { return splitOptions(p.AvailableSizes) }

func splitOptions(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Normalize trims text fields, applies the availability default and drops
// the time component of the release date.
func (p *Product) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.Category = strings.TrimSpace(p.Category)
	p.Brand = strings.TrimSpace(p.Brand)
	p.SKU = strings.TrimSpace(p.SKU)
	p.AvailabilityStatus = strings.TrimSpace(p.AvailabilityStatus)
	if p.AvailabilityStatus == "" {
		p.AvailabilityStatus = DefaultAvailability
	}
	p.AvailableColors = strings.TrimSpace(p.AvailableColors)
	p.AvailableSizes = strings.TrimSpace(p.AvailableSizes)
	if !p.ReleaseDate.IsZero() {
		p.ReleaseDate = DateOf(p.ReleaseDate)
	}
}

// Validate checks every field rule and reports all violations at once.
func (p Product) Validate() error {
	v := &ValidationError{}
	if strings.TrimSpace(p.Name) == "" {
		v.Add("name", "name is required")
	} else if len([]rune(p.Name)) > MaxNameLength {
		v.Add("name", "name cannot exceed 200 characters")
	}
	if len([]rune(p.Description)) > MaxDescriptionLength {
		v.Add("description", "description cannot exceed 2000 characters")
	}
	if len([]rune(p.Category)) > MaxCategoryLength {
		v.Add("category", "category cannot exceed 100 characters")
	}
	if len([]rune(p.Brand)) > MaxBrandLength {
		v.Add("brand", "brand cannot exceed 100 characters")
	}
	if !p.Price.IsPositive() || p.Price.GreaterThan(MaxPrice) {
		v.Add("price", "price must be between 0.01 and 999999.99")
	}
	if p.StockQuantity < 0 {
		v.Add("stockQuantity", "stock quantity cannot be negative")
	}
	if strings.TrimSpace(p.SKU) == "" {
		v.Add("sku", "SKU is required")
	} else if len([]rune(p.SKU)) > MaxSKULength {
		v.Add("sku", "SKU cannot exceed 100 characters")
	}
	if len([]rune(p.AvailabilityStatus)) > MaxAvailabilityLength {
		v.Add("availabilityStatus", "availability status cannot exceed 50 characters")
	}
	if p.CustomerRating.Valid && (p.CustomerRating.Decimal.LessThan(MinRating) || p.CustomerRating.Decimal.GreaterThan(MaxRating)) {
		v.Add("customerRating", "customer rating must be between 0 and 5")
	}
	if len([]rune(p.AvailableColors)) > MaxOptionsLength {
		v.Add("availableColors", "available colors cannot exceed 500 characters")
	}
	if len([]rune(p.AvailableSizes)) > MaxOptionsLength {
		v.Add("availableSizes", "available sizes cannot exceed 500 characters")
	}
	if !p.CreatedAt.IsZero() && p.UpdatedAt.Before(p.CreatedAt) {
		v.Add("updatedAt", "updatedAt cannot precede createdAt")
	}
	return v.OrNil()
}

// DateOf returns midnight UTC of t's calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
