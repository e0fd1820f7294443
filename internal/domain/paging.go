package domain

import (
	"encoding/json"
	"math"
)

// Page is one page of a larger result set. The derived navigation fields are
// computed from TotalCount, Number and Size whenever they are asked for.
type Page[T any] struct {
	Items      []T
	Number     int
	Size       int
	TotalCount int64
}

func NewPage[T any](items []T, number, size int, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Number: number, Size: size, TotalCount: total}
}

func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.TotalCount + int64(p.Size) - 1) / int64(p.Size))
}

func (p Page[T]) HasPrevious() bool { return p.Number > 1 }

func (p Page[T]) HasNext() bool { return p.Number < p.TotalPages() }

// FirstItemOnPage is (Number-1)*Size+1, saturating at math.MaxInt64.
func (p Page[T]) FirstItemOnPage() int64 {
	skipped := int64(p.Number) - 1
	if p.Size > 0 && skipped > (math.MaxInt64-1)/int64(p.Size) {
		return math.MaxInt64
	}
	return skipped*int64(p.Size) + 1
}

// LastItemOnPage is min(Number*Size, TotalCount) without overflowing.
func (p Page[T]) LastItemOnPage() int64 {
	if p.Size > 0 && int64(p.Number) > p.TotalCount/int64(p.Size) {
		return p.TotalCount
	}
	return int64(p.Number) * int64(p.Size)
}

// MapPage converts the items of a page, keeping the paging numbers.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, fn(it))
	}
	return Page[U]{Items: out, Number: p.Number, Size: p.Size, TotalCount: p.TotalCount}
}

func (p Page[T]) MarshalJSON() ([]byte, error) {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	return json.Marshal(struct {
		Items           []T   `json:"items"`
		Page            int   `json:"page"`
		PageSize        int   `json:"pageSize"`
		TotalCount      int64 `json:"totalCount"`
		TotalPages      int   `json:"totalPages"`
		HasPrevious     bool  `json:"hasPrevious"`
		HasNext         bool  `json:"hasNext"`
		FirstItemOnPage int64 `json:"firstItemOnPage"`
		LastItemOnPage  int64 `json:"lastItemOnPage"`
	}{
		Items:           items,
		Page:            p.Number,
		PageSize:        p.Size,
		TotalCount:      p.TotalCount,
		TotalPages:      p.TotalPages(),
		HasPrevious:     p.HasPrevious(),
		HasNext:         p.HasNext(),
		FirstItemOnPage: p.FirstItemOnPage(),
		LastItemOnPage:  p.LastItemOnPage(),
	})
}
