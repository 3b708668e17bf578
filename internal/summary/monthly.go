package summary

import (
	"sort"

	"github.com/at-ishikawa/notekeeper/internal/record"
)

// WeekCount is the number of records in a week of the year.
type WeekCount struct {
	Week  int `json:"week"`
	Count int `json:"count"`
}

// WeekGroup holds the records of a week, oldest first.
type WeekGroup struct {
	Week    int             `json:"week"`
	Count   int             `json:"count"`
	Records []record.Record `json:"records"`
}

// Growth compares a month with the previous one.
type Growth struct {
	PreviousTotal int `json:"previousTotal"`
	// GrowthRate is the change in percent, nil when the previous month was empty.
	GrowthRate *float64 `json:"growthRate"`
}

// MonthlySummary describes the records of one month.
type MonthlySummary struct {
	TotalRecords    int             `json:"totalRecords"`
	DateRange       string          `json:"dateRange"`
	MostActiveDay   string          `json:"mostActiveDay"`
	AllCategories   []CategoryCount `json:"allCategories"`
	WeeklyBreakdown []WeekCount     `json:"weeklyBreakdown"`
	FolderUsage     FolderUsage     `json:"folderUsage"`
	LatestRecord    string          `json:"latestRecord"`
	RecordsByDate   []DayGroup      `json:"recordsByDate"`
	RecordsByWeek   []WeekGroup     `json:"recordsByWeek"`
	AveragePerDay   float64         `json:"averagePerDay"`
	PeakDate        *DateCount      `json:"peakDate"`
	Growth          *Growth         `json:"growth,omitempty"`
}

// Monthly summarizes the records of a month. It returns nil when there are no records.
func Monthly(records []record.Record) *MonthlySummary {
	if len(records) == 0 {
		return nil
	}

	days := newCounter()
	categories := newCounter()
	dates := newCounter()
	weeks := make(map[int][]record.Record)
	for _, r := range records {
		days.add(r.DateInfo.DayName)
		dates.add(r.DateInfo.FullDate)
		if name := r.CategoryName(); name != "" {
			categories.add(name)
		}
		weeks[r.DateInfo.Week] = append(weeks[r.DateInfo.Week], r)
	}

	byDate := groupByDate(records)
	sort.SliceStable(byDate, func(i, j int) bool {
		return byDate[i].Date < byDate[j].Date
	})

	weekNumbers := make([]int, 0, len(weeks))
	for w := range weeks {
		weekNumbers = append(weekNumbers, w)
	}
	sort.Ints(weekNumbers)
	breakdown := make([]WeekCount, 0, len(weekNumbers))
	byWeek := make([]WeekGroup, 0, len(weekNumbers))
	for _, w := range weekNumbers {
		breakdown = append(breakdown, WeekCount{Week: w, Count: len(weeks[w])})
		byWeek = append(byWeek, WeekGroup{Week: w, Count: len(weeks[w]), Records: sortedByCreation(weeks[w])})
	}

	sorted := sortedByCreation(records)
	s := &MonthlySummary{
		TotalRecords:    len(records),
		DateRange:       dateRange(sorted),
		MostActiveDay:   mostActiveDay(days),
		AllCategories:   categories.categories(len(records)),
		WeeklyBreakdown: breakdown,
		FolderUsage:     folderUsage(records),
		LatestRecord:    sorted[len(sorted)-1].Title,
		RecordsByDate:   byDate,
		RecordsByWeek:   byWeek,
		AveragePerDay:   round1(float64(len(records)) / float64(len(byDate))),
	}
	if top, ok := dates.top(); ok {
		s.PeakDate = &DateCount{Date: top.key, Count: top.count}
	}
	return s
}

// CompareWith sets the growth against a previous month with previousTotal records.
func (s *MonthlySummary) CompareWith(previousTotal int) {
	g := &Growth{PreviousTotal: previousTotal}
	if previousTotal > 0 {
		rate := round1(float64(s.TotalRecords-previousTotal) * 100 / float64(previousTotal))
		g.GrowthRate = &rate
	}
	s.Growth = g
}
