package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDigest(t *testing.T) {
	tests := []struct {
		name    string
		period  string
		entries []Entry
		want    Digest
	}{
		{
			name:   "no records",
			period: "weekly",
			want:   Digest{Summary: "No records found for this period."},
		},
		{
			name:   "several records",
			period: "weekly",
			entries: []Entry{
				{Category: "Work", Date: "2026-03-17"},
				{Category: "Health", Date: "2026-03-17"},
				{Category: "Work", Date: "2026-03-16"},
			},
			want: Digest{
				Summary: `Summary for the weekly period: 3 records recorded. Most frequent category: "Work" (2 records). ` +
					`Peak activity occurred on 2026-03-17 with 2 records. ` +
					`Overall, activity shows consistent record creation during this time frame.`,
				Details: &DigestDetails{
					TotalRecords:      3,
					CategoryBreakdown: map[string]int{"Work": 2, "Health": 1},
					PeakDate:          &DateCount{Date: "2026-03-17", Count: 2},
				},
			},
		},
		{
			name:    "single record without category or date",
			period:  "monthly",
			entries: []Entry{{}},
			want: Digest{
				Summary: "Summary for the monthly period: 1 record recorded. " +
					"Peak activity occurred on unknown with 1 record. " +
					"Overall, activity shows consistent record creation during this time frame.",
				Details: &DigestDetails{
					TotalRecords:      1,
					CategoryBreakdown: map[string]int{},
					PeakDate:          &DateCount{Date: UnknownDate, Count: 1},
				},
			},
		},
		{
			name:   "peak date tie goes to the first seen date",
			period: "daily",
			entries: []Entry{
				{Category: "Work", Date: "2026-03-18"},
				{Category: "Health", Date: "2026-03-17"},
			},
			want: Digest{
				Summary: `Summary for the daily period: 2 records recorded. Most frequent category: "Work" (1 records). ` +
					`Peak activity occurred on 2026-03-18 with 1 record. ` +
					`Overall, activity shows consistent record creation during this time frame.`,
				Details: &DigestDetails{
					TotalRecords:      2,
					CategoryBreakdown: map[string]int{"Work": 1, "Health": 1},
					PeakDate:          &DateCount{Date: "2026-03-18", Count: 1},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewDigest(tt.period, tt.entries))
		})
	}
}

func TestEntriesFromRecords(t *testing.T) {
	got := EntriesFromRecords(weekRecords()[:2])
	assert.Equal(t, []Entry{
		{Category: "", Date: "2026-03-21"},
		{Category: "Work", Date: "2026-03-17"},
	}, got)

	assert.Empty(t, EntriesFromRecords(nil))
}
