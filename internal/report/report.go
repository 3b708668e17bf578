// Package report renders summaries as markdown, colored terminal text or pdf.
package report

import (
	"fmt"
	"time"

	"github.com/at-ishikawa/notekeeper/internal/record"
	"github.com/at-ishikawa/notekeeper/internal/summary"
)

// Group is a set of records shown under one heading.
type Group struct {
	Heading    string
	Records    []record.Record
	Categories []summary.CategoryCount
}

// Document is the period-independent view of a summary that the renderers read.
type Document struct {
	Title         string
	Empty         bool
	TotalRecords  int
	DateRange     string
	MostActiveDay string
	LatestRecord  string
	FolderUsage   summary.FolderUsage
	Categories    []summary.CategoryCount
	Groups        []Group

	// Monthly only.
	AveragePerDay *float64
	PeakDate      *summary.DateCount
	Weeks         []summary.WeekCount
	Growth        *summary.Growth
}

// WeeklyDocument builds the document of a week. s may be nil for an empty week.
func WeeklyDocument(year, week int, s *summary.WeeklySummary) Document {
	doc := Document{Title: fmt.Sprintf("Week %d, %d", week, year)}
	if s == nil {
		doc.Empty = true
		return doc
	}
	doc.TotalRecords = s.TotalRecords
	doc.DateRange = s.DateRange
	doc.MostActiveDay = s.MostActiveDay
	doc.LatestRecord = s.LatestRecord
	doc.FolderUsage = s.FolderUsage
	doc.Categories = s.AllCategories
	for _, g := range s.RecordsByDay {
		doc.Groups = append(doc.Groups, Group{
			Heading:    fmt.Sprintf("%s (%s)", g.Day, g.Date),
			Records:    g.Records,
			Categories: g.Categories,
		})
	}
	return doc
}

// MonthlyDocument builds the document of a month. s may be nil for an empty month.
func MonthlyDocument(year, month int, s *summary.MonthlySummary) Document {
	doc := Document{Title: fmt.Sprintf("%s %d", time.Month(month), year)}
	if s == nil {
		doc.Empty = true
		return doc
	}
	average := s.AveragePerDay
	doc.TotalRecords = s.TotalRecords
	doc.DateRange = s.DateRange
	doc.MostActiveDay = s.MostActiveDay
	doc.LatestRecord = s.LatestRecord
	doc.FolderUsage = s.FolderUsage
	doc.Categories = s.AllCategories
	doc.AveragePerDay = &average
	doc.PeakDate = s.PeakDate
	doc.Weeks = s.WeeklyBreakdown
	doc.Growth = s.Growth
	for _, g := range s.RecordsByDate {
		doc.Groups = append(doc.Groups, Group{
			Heading:    fmt.Sprintf("%s (%s)", g.Date, g.Day),
			Records:    g.Records,
			Categories: g.Categories,
		})
	}
	return doc
}
