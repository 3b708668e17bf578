package summary

import "github.com/at-ishikawa/notekeeper/internal/record"

// DailySummary describes the records of one calendar date.
type DailySummary struct {
	TotalRecords  int             `json:"totalRecords"`
	Date          string          `json:"date"`
	Day           string          `json:"day"`
	AllCategories []CategoryCount `json:"allCategories"`
	FolderUsage   FolderUsage     `json:"folderUsage"`
	FirstRecord   string          `json:"firstRecord"`
	LatestRecord  string          `json:"latestRecord"`
	Records       []record.Record `json:"records"`
}

// Daily summarizes the records of a day. It returns nil when there are no records.
func Daily(records []record.Record) *DailySummary {
	if len(records) == 0 {
		return nil
	}

	categories := newCounter()
	for _, r := range records {
		if name := r.CategoryName(); name != "" {
			categories.add(name)
		}
	}

	sorted := sortedByCreation(records)
	return &DailySummary{
		TotalRecords:  len(records),
		Date:          sorted[0].DateInfo.FullDate,
		Day:           sorted[0].DateInfo.DayName,
		AllCategories: categories.categories(len(records)),
		FolderUsage:   folderUsage(records),
		FirstRecord:   sorted[0].Title,
		LatestRecord:  sorted[len(sorted)-1].Title,
		Records:       sorted,
	}
}
