// Package sheet reads and writes product workbooks.
package sheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/phenrril/catalog/internal/domain"
)

const (
	SheetName   = "Products"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	dateLayout  = "2006-01-02"
)

var columns = []string{
	"Name", "Description", "Category", "Brand", "Price", "StockQuantity", "SKU",
	"ReleaseDate", "AvailabilityStatus", "CustomerRating", "AvailableColors", "AvailableSizes",
}

// WriteProducts streams ps as a single-sheet workbook with a header row.
func WriteProducts(w io.Writer, ps []domain.Product) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return err
	}
	head := make([]interface{}, len(columns))
	for i, c := range columns {
		head[i] = c
	}
	if err := sw.SetRow("A1", head); err != nil {
		return err
	}
	for i, p := range ps {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		rating := ""
		if p.CustomerRating.Valid {
			rating = p.CustomerRating.Decimal.StringFixed(2)
		}
		release := ""
		if !p.ReleaseDate.IsZero() {
			release = p.ReleaseDate.Format(dateLayout)
		}
		row := []interface{}{
			p.Name, p.Description, p.Category, p.Brand, p.Price.StringFixed(2), p.StockQuantity, p.SKU,
			release, p.AvailabilityStatus, rating, p.AvailableColors, p.AvailableSizes,
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.Write(w)
}

// ReadProducts parses the first sheet of a workbook laid out like the one
// WriteProducts produces. Columns are matched by header name in any order;
// blank rows are skipped.
func ReadProducts(r io.Reader) ([]domain.Product, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.Invalid("unreadable workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.Invalid("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.Invalid("workbook is empty")
	}

	idx := map[string]int{}
	for i, h := range rows[0] {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"name", "price", "sku"} {
		if _, ok := idx[required]; !ok {
			return nil, domain.Invalid("missing column %q", required)
		}
	}

	out := []domain.Product{}
	verr := &domain.ValidationError{}
	for n, row := range rows[1:] {
		get := func(col string) string {
			i, ok := idx[strings.ToLower(col)]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		if isBlank(row) {
			continue
		}
		line := fmt.Sprintf("row %d.", n+2)
		p := domain.Product{
			Name:               get("Name"),
			Description:        get("Description"),
			Category:           get("Category"),
			Brand:              get("Brand"),
			SKU:                get("SKU"),
			AvailabilityStatus: get("AvailabilityStatus"),
			AvailableColors:    get("AvailableColors"),
			AvailableSizes:     get("AvailableSizes"),
		}
		if v := get("Price"); v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				verr.Add(line+"price", "price is not a number")
			}
			p.Price = d
		}
		if v := get("StockQuantity"); v != "" {
			q, err := strconv.Atoi(v)
			if err != nil {
				verr.Add(line+"stockQuantity", "stock quantity is not an integer")
			}
			p.StockQuantity = q
		}
		if v := get("ReleaseDate"); v != "" {
			t, err := time.Parse(dateLayout, v)
			if err != nil {
				verr.Add(line+"releaseDate", "release date must be YYYY-MM-DD")
			}
			p.ReleaseDate = t
		}
		if v := get("CustomerRating"); v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				verr.Add(line+"customerRating", "customer rating is not a number")
			}
			p.CustomerRating = decimal.NewNullDecimal(d)
		}
		out = append(out, p)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
