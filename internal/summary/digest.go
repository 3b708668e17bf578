package summary

import (
	"fmt"
	"strings"

	"github.com/at-ishikawa/notekeeper/internal/record"
)

// UnknownDate is the date key of entries without a date.
const UnknownDate = "unknown"

// NoRecordsSummary is the digest text of an empty period.
const NoRecordsSummary = "No records found for this period."

// Entry is the part of a record the digest reads.
type Entry struct {
	Category string
	// Date is YYYY-MM-DD, or empty when unknown.
	Date string
}

// EntriesFromRecords converts stored records into digest entries.
func EntriesFromRecords(records []record.Record) []Entry {
	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, Entry{Category: r.CategoryName(), Date: r.DateInfo.FullDate})
	}
	return entries
}

// Digest is the plain-text summary of a period with the numbers behind it.
type Digest struct {
	Summary string         `json:"summary"`
	Details *DigestDetails `json:"details,omitempty"`
}

type DigestDetails struct {
	TotalRecords      int            `json:"totalRecords"`
	CategoryBreakdown map[string]int `json:"categoryBreakdown"`
	PeakDate          *DateCount     `json:"peakDate"`
}

// NewDigest builds the digest of the entries recorded during period.
func NewDigest(period string, entries []Entry) Digest {
	if len(entries) == 0 {
		return Digest{Summary: NoRecordsSummary}
	}

	total := len(entries)
	categories := newCounter()
	dates := newCounter()
	for _, e := range entries {
		if e.Category != "" {
			categories.add(e.Category)
		}
		date := e.Date
		if date == "" {
			date = UnknownDate
		}
		dates.add(date)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Summary for the %s period: %d %s recorded.", period, total, plural(total))
	if top, ok := categories.top(); ok {
		fmt.Fprintf(&b, " Most frequent category: \"%s\" (%d records).", top.key, top.count)
	}
	details := &DigestDetails{
		TotalRecords:      total,
		CategoryBreakdown: categories.counts,
	}
	if peak, ok := dates.top(); ok {
		fmt.Fprintf(&b, " Peak activity occurred on %s with %d %s.", peak.key, peak.count, plural(peak.count))
		details.PeakDate = &DateCount{Date: peak.key, Count: peak.count}
	}
	b.WriteString(" Overall, activity shows consistent record creation during this time frame.")

	return Digest{Summary: b.String(), Details: details}
}

func plural(n int) string {
	if n > 1 {
		return "records"
	}
	return "record"
}
