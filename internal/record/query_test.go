package record

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(i int) *int {
	return &i
}

func TestListQuery_Normalize(t *testing.T) {
	tests := []struct {
		name  string
		query ListQuery
		want  ListQuery
	}{
		{
			name:  "zero values use defaults",
			query: ListQuery{},
			want:  ListQuery{Page: 1, Limit: 10, SortBy: SortByCreatedAt},
		},
		{
			name:  "limit is clamped to the maximum",
			query: ListQuery{Page: 3, Limit: 500, SortBy: SortByTitle, Ascending: true},
			want:  ListQuery{Page: 3, Limit: 100, SortBy: SortByTitle, Ascending: true},
		},
		{
			name:  "unknown sort field falls back to createdAt",
			query: ListQuery{Page: -2, Limit: -1, SortBy: "content; drop", Search: "  go  "},
			want:  ListQuery{Page: 1, Limit: 10, SortBy: SortByCreatedAt, Search: "go"},
		},
		{
			name:  "page is clamped so the offset cannot overflow",
			query: ListQuery{Page: math.MaxInt, Limit: 100},
			want:  ListQuery{Page: math.MaxInt32/100 + 1, Limit: 100, SortBy: SortByCreatedAt},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.Normalize(10, 100))
		})
	}
}

func TestListQuery_Offset(t *testing.T) {
	assert.Equal(t, 0, ListQuery{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, ListQuery{Page: 3, Limit: 10}.Offset())

	huge := ListQuery{Page: math.MaxInt, Limit: 7}.Normalize(10, 0)
	assert.Positive(t, huge.Offset())
	assert.LessOrEqual(t, huge.Offset(), math.MaxInt32)
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		limit int
		total int64
		want  Pagination
	}{
		{
			name:  "first of several pages",
			page:  1,
			limit: 10,
			total: 25,
			want: Pagination{
				CurrentPage: 1, TotalPages: 3, TotalRecords: 25, RecordsPerPage: 10,
				HasNextPage: true, NextPage: intPtr(2),
			},
		},
		{
			name:  "middle page",
			page:  2,
			limit: 10,
			total: 25,
			want: Pagination{
				CurrentPage: 2, TotalPages: 3, TotalRecords: 25, RecordsPerPage: 10,
				HasNextPage: true, HasPrevPage: true, NextPage: intPtr(3), PrevPage: intPtr(1),
			},
		},
		{
			name:  "last page with an exact multiple",
			page:  2,
			limit: 10,
			total: 20,
			want: Pagination{
				CurrentPage: 2, TotalPages: 2, TotalRecords: 20, RecordsPerPage: 10,
				HasPrevPage: true, PrevPage: intPtr(1),
			},
		},
		{
			name:  "no records",
			page:  1,
			limit: 10,
			total: 0,
			want:  Pagination{CurrentPage: 1, RecordsPerPage: 10},
		},
		{
			name:  "page beyond the end",
			page:  5,
			limit: 10,
			total: 12,
			want: Pagination{
				CurrentPage: 5, TotalPages: 2, TotalRecords: 12, RecordsPerPage: 10,
				HasPrevPage: true, PrevPage: intPtr(4),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPagination(tt.page, tt.limit, tt.total))
		})
	}
}

func TestPeriod(t *testing.T) {
	assert.Equal(t, "day:2026-3-16", Period{Kind: PeriodDay, Year: 2026, Month: 3, Day: 16}.Key())
	assert.Equal(t, "week:2026-12", Period{Kind: PeriodWeek, Year: 2026, Week: 12}.Key())
	assert.Equal(t, "month:2026-3", Period{Kind: PeriodMonth, Year: 2026, Month: 3}.Key())

	assert.Equal(t, Period{Kind: PeriodMonth, Year: 2025, Month: 12}, Period{Kind: PeriodMonth, Year: 2026, Month: 1}.PreviousMonth())
	assert.Equal(t, Period{Kind: PeriodMonth, Year: 2026, Month: 2}, Period{Kind: PeriodMonth, Year: 2026, Month: 3}.PreviousMonth())
}

func TestRecord_Helpers(t *testing.T) {
	r := Record{FolderIDs: []string{"f1"}, Category: &CategoryRef{ID: "c1", Name: "work"}}
	assert.True(t, r.InFolder())
	assert.True(t, r.HasFolder("f1"))
	assert.False(t, r.HasFolder("f2"))
	assert.Equal(t, "work", r.CategoryName())
	assert.Equal(t, "", Record{}.CategoryName())
	assert.False(t, Record{}.InFolder())
}
