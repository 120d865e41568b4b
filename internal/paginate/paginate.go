// Package paginate slices GORM queries into numbered pages.
package paginate

import (
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// DefaultPerPage is used when a Paginator is configured with a non-positive size.
const DefaultPerPage = 10

// Paginator carries the page size injected from configuration.
type Paginator struct {
	PerPage int
}

// New returns a Paginator with the given page size.
func New(perPage int) Paginator {
	return Paginator{PerPage: perPage}
}

func (p Paginator) size() int {
	if p.PerPage <= 0 {
		return DefaultPerPage
	}
	return p.PerPage
}

// Page is one slice of a paginated collection.
type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	Count    int64
	PerPage  int
}

// HasPrevious reports whether a page exists before this one.
func (p *Page[T]) HasPrevious() bool { return p.Number > 1 }

// HasNext reports whether a page exists after this one.
func (p *Page[T]) HasNext() bool { return p.Number < p.NumPages }

// HasOtherPages reports whether navigation links are needed at all.
func (p *Page[T]) HasOtherPages() bool { return p.HasPrevious() || p.HasNext() }

func (p *Page[T]) PreviousNumber() int { return p.Number - 1 }

func (p *Page[T]) NextNumber() int { return p.Number + 1 }

// StartIndex is the 1-based index of the first item on the page, 0 when empty.
func (p *Page[T]) StartIndex() int64 {
	if p.Count == 0 {
		return 0
	}
	return int64((p.Number-1)*p.PerPage) + 1
}

// PageRange lists all page numbers, for rendering navigation.
func (p *Page[T]) PageRange() []int {
	pages := make([]int, 0, p.NumPages)
	for i := 1; i <= p.NumPages; i++ {
		pages = append(pages, i)
	}
	return pages
}

// ParseNumber 将请求中的页码解析为正整数，缺失或非法时返回 1。
// 0 和负数同样落到第 1 页，不会跳到最后一页。
func ParseNumber(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// NumPages returns how many pages count items occupy; an empty collection still has one page.
func NumPages(count int64, perPage int) int {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if count <= 0 {
		return 1
	}
	return int((count + int64(perPage) - 1) / int64(perPage))
}

// GetPage counts the query, clamps the requested page number into [1, NumPages] and loads
// that page. The query must not carry its own Limit/Offset. scopes (typically Preload calls)
// are applied to the item query only, never to the count.
func GetPage[T any](p Paginator, query *gorm.DB, raw string, scopes ...func(*gorm.DB) *gorm.DB) (*Page[T], error) {
	perPage := p.size()

	// 显式 count(*)：查询自带的 Select 可能含有子查询
	var count int64
	if err := query.Session(&gorm.Session{}).Select("count(*)").Count(&count).Error; err != nil {
		return nil, err
	}

	numPages := NumPages(count, perPage)
	number := ParseNumber(raw)
	if number > numPages {
		number = numPages
	}

	page := &Page[T]{
		Items:    []T{},
		Number:   number,
		NumPages: numPages,
		Count:    count,
		PerPage:  perPage,
	}
	if count == 0 {
		return page, nil
	}

	var items []T
	if err := query.Session(&gorm.Session{}).
		Scopes(scopes...).
		Limit(perPage).
		Offset((number - 1) * perPage).
		Find(&items).Error; err != nil {
		return nil, err
	}
	page.Items = items

	return page, nil
}
