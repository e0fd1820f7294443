package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProduct() Product {
	return Product{
		Name:               "Apple iPhone",
		Category:           "Electronics",
		Brand:              "Apple",
		Price:              decimal.RequireFromString("999.99"),
		StockQuantity:      5,
		SKU:                "APL-IPH-00001",
		AvailabilityStatus: DefaultAvailability,
		CustomerRating:     decimal.NewNullDecimal(decimal.RequireFromString("4.50")),
		AvailableColors:    "Black, Silver",
	}
}

func TestValidateAcceptsValidProduct(t *testing.T) {
	assert.NoError(t, validProduct().Validate())
}

func TestValidateReportsEveryField(t *testing.T) {
	p := validProduct()
	p.Name = "  "
	p.SKU = ""
	p.Price = decimal.Zero
	p.StockQuantity = -1
	p.CustomerRating = decimal.NewNullDecimal(decimal.NewFromFloat(5.5))
	p.AvailableSizes = strings.Repeat("x", MaxOptionsLength+1)

	err := p.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	for _, f := range []string{"name", "sku", "price", "stockQuantity", "customerRating", "availableSizes"} {
		assert.Contains(t, ve.Fields, f)
	}
}

func TestValidatePriceBounds(t *testing.T) {
	p := validProduct()
	p.Price = decimal.RequireFromString("0.01")
	assert.NoError(t, p.Validate())
	p.Price = MaxPrice
	assert.NoError(t, p.Validate())
	p.Price = decimal.RequireFromString("1000000")
	assert.Error(t, p.Validate())
}

func TestValidateAllowsMissingRating(t *testing.T) {
	p := validProduct()
	p.CustomerRating = decimal.NullDecimal{}
	assert.NoError(t, p.Validate())
}

func TestNormalize(t *testing.T) {
	p := Product{
		Name:        "  Lamp ",
		SKU:         " L-1 ",
		ReleaseDate: time.Date(2024, 3, 9, 17, 45, 0, 0, time.FixedZone("x", 3600)),
	}
	p.Normalize()
	assert.Equal(t, "Lamp", p.Name)
	assert.Equal(t, "L-1", p.SKU)
	assert.Equal(t, DefaultAvailability, p.AvailabilityStatus)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), p.ReleaseDate)
}

func TestOptions(t *testing.T) {
	p := Product{AvailableColors: "Red, Blue,, Green ", AvailableSizes: ""}
	assert.Equal(t, []string{"Red", "Blue", "Green"}, p.ColorOptions())
	assert.Empty(t, p.SizeOptions())
}

func TestConditionMatches(t *testing.T) {
	p := validProduct()
	p.ReleaseDate = time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		cond Condition
		want bool
	}{
		{"equal fold", Condition{Op: OpEqualFold, Columns: []Column{ColCategory}, Value: "electronics"}, true},
		{"equal fold mismatch", Condition{Op: OpEqualFold, Columns: []Column{ColCategory}, Value: "electro"}, false},
		{"contains any", Condition{Op: OpContainsFold, Columns: SearchColumns, Value: "IPHONE"}, true},
		{"contains colors", Condition{Op: OpContainsFold, Columns: []Column{ColColors}, Value: "silv"}, true},
		{"contains none", Condition{Op: OpContainsFold, Columns: SearchColumns, Value: "samsung"}, false},
		{"price gte equal", Condition{Op: OpGTE, Columns: []Column{ColPrice}, Value: decimal.RequireFromString("999.99")}, true},
		{"price lte below", Condition{Op: OpLTE, Columns: []Column{ColPrice}, Value: decimal.NewFromInt(500)}, false},
		{"stock gt zero", Condition{Op: OpGT, Columns: []Column{ColStock}, Value: 0}, true},
		{"rating gte", Condition{Op: OpGTE, Columns: []Column{ColRating}, Value: decimal.NewFromInt(4)}, true},
		{"release date lte", Condition{Op: OpLTE, Columns: []Column{ColReleaseDate}, Value: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)}, true},
		{"wrong value type", Condition{Op: OpGTE, Columns: []Column{ColPrice}, Value: 3}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.cond.Matches(p))
		})
	}
}

func TestNullRatingNeverSatisfiesBound(t *testing.T) {
	p := validProduct()
	p.CustomerRating = decimal.NullDecimal{}
	c := Condition{Op: OpGTE, Columns: []Column{ColRating}, Value: decimal.Zero}
	assert.False(t, c.Matches(p))
}
