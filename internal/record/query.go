package record

import (
	"fmt"
	"math"
	"strings"
)

// maxOffset bounds (Page-1)*Limit so the skip passed to the stores never overflows.
const maxOffset = math.MaxInt32

// Sort fields accepted by ListQuery.
const (
	SortByCreatedAt = "createdAt"
	SortByTitle     = "title"
	SortByUpdatedAt = "updatedAt"
)

// ListQuery filters and paginates the record listing.
type ListQuery struct {
	Search     string
	CategoryID string
	FolderID   string
	SortBy     string
	Ascending  bool
	Page       int
	Limit      int
}

// Normalize clamps the paging values and falls back to sorting by creation time.
// Pages past the largest representable offset are clamped to it and come back empty.
func (q ListQuery) Normalize(defaultLimit, maxLimit int) ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if maxLimit > 0 && q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if maxPage := maxOffset/q.Limit + 1; q.Page > maxPage {
		q.Page = maxPage
	}
	switch q.SortBy {
	case SortByCreatedAt, SortByTitle, SortByUpdatedAt:
	default:
		q.SortBy = SortByCreatedAt
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Offset returns the number of records skipped before the current page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Pagination describes the page returned by a listing.
type Pagination struct {
	CurrentPage    int   `json:"currentPage"`
	TotalPages     int   `json:"totalPages"`
	TotalRecords   int64 `json:"totalRecords"`
	RecordsPerPage int   `json:"recordsPerPage"`
	HasNextPage    bool  `json:"hasNextPage"`
	HasPrevPage    bool  `json:"hasPrevPage"`
	NextPage       *int  `json:"nextPage"`
	PrevPage       *int  `json:"prevPage"`
}

// NewPagination computes the pagination of a normalized query over total records.
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	p := Pagination{
		CurrentPage:    page,
		TotalPages:     totalPages,
		TotalRecords:   total,
		RecordsPerPage: limit,
		HasNextPage:    page < totalPages,
		HasPrevPage:    page > 1,
	}
	if p.HasNextPage {
		next := page + 1
		p.NextPage = &next
	}
	if p.HasPrevPage {
		prev := page - 1
		p.PrevPage = &prev
	}
	return p
}

// PeriodKind selects which calendar fields a Period matches.
type PeriodKind string

const (
	PeriodDay   PeriodKind = "day"
	PeriodWeek  PeriodKind = "week"
	PeriodMonth PeriodKind = "month"
)

// Period selects records by their derived calendar fields.
type Period struct {
	Kind  PeriodKind
	Year  int
	Month int
	Week  int
	Day   int
}

// Key identifies the period, e.g. "week:2026-3".
func (p Period) Key() string {
	switch p.Kind {
	case PeriodDay:
		return fmt.Sprintf("day:%d-%d-%d", p.Year, p.Month, p.Day)
	case PeriodWeek:
		return fmt.Sprintf("week:%d-%d", p.Year, p.Week)
	default:
		return fmt.Sprintf("month:%d-%d", p.Year, p.Month)
	}
}

// PreviousMonth returns the month period before p.
func (p Period) PreviousMonth() Period {
	if p.Month <= 1 {
		return Period{Kind: PeriodMonth, Year: p.Year - 1, Month: 12}
	}
	return Period{Kind: PeriodMonth, Year: p.Year, Month: p.Month - 1}
}
