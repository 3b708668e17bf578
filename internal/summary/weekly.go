package summary

import (
	"time"

	"github.com/at-ishikawa/notekeeper/internal/record"
)

// WeeklySummary describes the records of one week.
type WeeklySummary struct {
	TotalRecords  int             `json:"totalRecords"`
	WeekNumber    int             `json:"weekNumber"`
	DateRange     string          `json:"dateRange"`
	MostActiveDay string          `json:"mostActiveDay"`
	AllCategories []CategoryCount `json:"allCategories"`
	FolderUsage   FolderUsage     `json:"folderUsage"`
	LatestRecord  string          `json:"latestRecord"`
	RecordsByDay  []DayGroup      `json:"recordsByDay"`
}

var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// Weekly summarizes the records of week. It returns nil when there are no records.
func Weekly(records []record.Record, week int) *WeeklySummary {
	if len(records) == 0 {
		return nil
	}

	days := newCounter()
	categories := newCounter()
	for _, r := range records {
		days.add(weekday(r).String())
		if name := r.CategoryName(); name != "" {
			categories.add(name)
		}
	}

	sorted := sortedByCreation(records)
	return &WeeklySummary{
		TotalRecords:  len(records),
		WeekNumber:    week,
		DateRange:     dateRange(sorted),
		MostActiveDay: mostActiveDay(days),
		AllCategories: categories.categories(len(records)),
		FolderUsage:   folderUsage(records),
		LatestRecord:  sorted[len(sorted)-1].Title,
		RecordsByDay:  groupByWeekday(records),
	}
}

// weekday reads the stored day of week, falling back to the creation time when it is out of range.
func weekday(r record.Record) time.Weekday {
	if d := r.DateInfo.DayOfWeek; d >= int(time.Sunday) && d <= int(time.Saturday) {
		return time.Weekday(d)
	}
	return r.CreatedAt.Weekday()
}

// groupByWeekday merges the records of each weekday, Monday first.
func groupByWeekday(records []record.Record) []DayGroup {
	byDay := make(map[time.Weekday][]record.Record)
	for _, r := range records {
		wd := weekday(r)
		byDay[wd] = append(byDay[wd], r)
	}

	var groups []DayGroup
	for _, wd := range weekdayOrder {
		dayRecords, ok := byDay[wd]
		if !ok {
			continue
		}
		cats := newCounter()
		for _, r := range dayRecords {
			if name := r.CategoryName(); name != "" {
				cats.add(name)
			}
		}
		groups = append(groups, DayGroup{
			Day:        wd.String(),
			Date:       dayRecords[0].DateInfo.FullDate,
			Records:    dayRecords,
			Categories: cats.categories(len(dayRecords)),
		})
	}
	return groups
}
