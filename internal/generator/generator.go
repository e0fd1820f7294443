// Package generator produces realistic sample products for seeding and load
// testing. Nothing it returns is persisted.
package generator

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phenrril/catalog/internal/domain"
)

// Template seeds generated products. Blank strings and nil pointers are
// filled with random values.
type Template struct {
	Name               string
	Description        string
	Category           string
	Brand              string
	SKU                string
	AvailabilityStatus string
	AvailableColors    string
	AvailableSizes     string
	Price              *decimal.Decimal
	StockQuantity      *int
	ReleaseDate        *time.Time
	CustomerRating     *decimal.Decimal
}

type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// New returns a generator with a deterministic PCG source.
func New(seed uint64) *Generator {
	return &Generator{
		rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: time.Now,
	}
}

func NewRandom() *Generator { return New(uint64(time.Now().UnixNano())) }

// WithClock replaces the time source used for timestamps and release dates.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate returns exactly count products whose SKUs are distinct from each
// other and from every SKU in taken.
func (g *Generator) Generate(count int, tmpl *Template, taken map[string]struct{}) []domain.Product {
	g.mu.Lock()
	defer g.mu.Unlock()

	if count <= 0 {
		return []domain.Product{}
	}
	seen := make(map[string]struct{}, len(taken)+count)
	for k := range taken {
		seen[k] = struct{}{}
	}
	now := g.now().UTC()
	out := make([]domain.Product, 0, count)
	variant := 0
	for i := 0; i < count; i++ {
		var p domain.Product
		if tmpl != nil {
			p = g.fromTemplate(*tmpl, i, &variant, seen, now)
		} else {
			p = g.random(seen, now)
		}
		p.ID = uuid.New()
		p.CreatedAt = now
		p.UpdatedAt = now
		out = append(out, p)
	}
	return out
}

func (g *Generator) random(seen map[string]struct{}, now time.Time) domain.Product {
	category := g.pick(categories)
	brand := g.pick(brands)
	name := brand + " " + g.pick(nouns[category])
	return domain.Product{
		Name:               name,
		Description:        g.description(name, brand),
		Category:           category,
		Brand:              brand,
		Price:              g.price(),
		StockQuantity:      g.rnd.IntN(1000),
		SKU:                g.randomSKU(category, brand, seen),
		ReleaseDate:        g.releaseDate(now),
		AvailabilityStatus: g.pick(statuses),
		CustomerRating:     decimal.NewNullDecimal(g.rating()),
		AvailableColors:    g.pickSome(colors, 1+g.rnd.IntN(4)),
		AvailableSizes:     g.pickSome(sizes, 1+g.rnd.IntN(3)),
	}
}

func (g *Generator) fromTemplate(t Template, i int, variant *int, seen map[string]struct{}, now time.Time) domain.Product {
	t.Name = strings.TrimSpace(t.Name)
	t.SKU = strings.TrimSpace(t.SKU)
	t.Description = strings.TrimSpace(t.Description)

	category := orElse(t.Category, func() string { return g.pick(categories) })
	brand := orElse(t.Brand, func() string { return g.pick(brands) })

	var name string
	if t.Name != "" {
		name = truncate(t.Name, domain.MaxNameLength-len(" - Variant 10000")) + fmt.Sprintf(" - Variant %d", i+1)
	} else {
		list, ok := nouns[category]
		if !ok {
			list = nouns["Electronics"]
		}
		name = brand + " " + g.pick(list)
	}

	var sku string
	if t.SKU != "" {
		base := truncate(t.SKU, domain.MaxSKULength-6)
		for {
			*variant++
			sku = fmt.Sprintf("%s-%04d", base, *variant)
			if _, dup := seen[sku]; !dup {
				seen[sku] = struct{}{}
				break
			}
		}
	} else {
		sku = g.randomSKU(category, brand, seen)
	}

	price := g.price()
	if t.Price != nil && t.Price.IsPositive() {
		factor := decimal.NewFromFloat(0.8 + g.rnd.Float64()*0.4)
		price = decimal.Max(t.Price.Mul(factor).Round(2), decimal.New(1, -2))
		price = decimal.Min(price, domain.MaxPrice)
	}

	stock := g.rnd.IntN(1000)
	if t.StockQuantity != nil {
		stock = max(0, *t.StockQuantity+g.rnd.IntN(101)-50)
	}

	release := g.releaseDate(now)
	if t.ReleaseDate != nil {
		release = domain.DateOf(t.ReleaseDate.AddDate(0, 0, g.rnd.IntN(61)-30))
	}

	rating := g.rating()
	if t.CustomerRating != nil {
		jitter := decimal.NewFromFloat(g.rnd.Float64() - 0.5)
		rating = clamp(t.CustomerRating.Add(jitter).Round(2), decimal.NewFromInt(1), domain.MaxRating)
	}

	description := g.description(name, brand)
	if t.Description != "" {
		suffix := fmt.Sprintf(" (Generated variant %d)", i+1)
		description = truncate(t.Description, domain.MaxDescriptionLength-len(suffix)) + suffix
	}

	return domain.Product{
		Name:               name,
		Description:        description,
		Category:           category,
		Brand:              brand,
		Price:              price,
		StockQuantity:      stock,
		SKU:                sku,
		ReleaseDate:        release,
		AvailabilityStatus: orElse(t.AvailabilityStatus, func() string { return g.pick(statuses) }),
		CustomerRating:     decimal.NewNullDecimal(rating),
		AvailableColors:    orElse(t.AvailableColors, func() string { return g.pickSome(colors, 1+g.rnd.IntN(4)) }),
		AvailableSizes:     orElse(t.AvailableSizes, func() string { return g.pickSome(sizes, 1+g.rnd.IntN(3)) }),
	}
}

func (g *Generator) randomSKU(category, brand string, seen map[string]struct{}) string {
	cat, br := skuPrefix(category), skuPrefix(brand)
	for attempt := 0; attempt < 1000; attempt++ {
		sku := fmt.Sprintf("%s-%s-%05d", cat, br, 10000+g.rnd.IntN(90000))
		if _, dup := seen[sku]; !dup {
			seen[sku] = struct{}{}
			return sku
		}
	}
	sku := fmt.Sprintf("%s-%s-%s", cat, br, strings.ToUpper(uuid.NewString()[:8]))
	seen[sku] = struct{}{}
	return sku
}

func (g *Generator) description(name, brand string) string {
	return fmt.Sprintf("%s %s from %s. This product is %s and designed to meet your needs with exceptional quality and performance.",
		g.pick(adjectives), name, brand, g.pick(features))
}

func (g *Generator) price() decimal.Decimal {
	return decimal.NewFromFloat(5 + g.rnd.Float64()*995).Round(2)
}

func (g *Generator) rating() decimal.Decimal {
	return decimal.NewFromFloat(1 + g.rnd.Float64()*4).Round(2)
}

func (g *Generator) releaseDate(now time.Time) time.Time {
	return domain.DateOf(now.AddDate(0, 0, -g.rnd.IntN(365*3)))
}

func (g *Generator) pick(list []string) string { return list[g.rnd.IntN(len(list))] }

func (g *Generator) pickSome(list []string, n int) string {
	perm := g.rnd.Perm(len(list))
	out := make([]string, 0, n)
	for _, idx := range perm[:min(n, len(list))] {
		out = append(out, list[idx])
	}
	return strings.Join(out, ", ")
}

func skuPrefix(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
			if b.Len() >= 3 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "GEN"
	}
	return b.String()
}

func orElse(v string, fallback func() string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	return decimal.Min(decimal.Max(d, lo), hi)
}
