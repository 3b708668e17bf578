// Package summary computes activity summaries over a period's records.
//
// All functions work on an in-memory slice and recompute everything on each
// call. Ties in "most" computations go to the key seen first in the input.
package summary

import (
	"fmt"
	"math"
	"sort"

	"github.com/at-ishikawa/notekeeper/internal/record"
)

// CategoryCount is the number of records in a category and its share of the total.
type CategoryCount struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"` // one decimal
}

// FolderUsage splits the records by whether they belong to any folder.
type FolderUsage struct {
	WithFolder    int `json:"withFolder"`
	WithoutFolder int `json:"withoutFolder"`
}

// DateCount is a calendar date and the number of records created on it.
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DayGroup holds the records of a single calendar date.
type DayGroup struct {
	Day        string          `json:"day"`
	Date       string          `json:"date"`
	Records    []record.Record `json:"records"`
	Categories []CategoryCount `json:"categories"`
}

// counter counts keys while remembering the order they were first seen.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

type entry struct {
	key   string
	count int
}

// sorted returns the entries by count descending, first seen first on ties.
func (c *counter) sorted() []entry {
	entries := make([]entry, 0, len(c.order))
	for _, k := range c.order {
		entries = append(entries, entry{key: k, count: c.counts[k]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].count > entries[j].count
	})
	return entries
}

// top returns the most frequent entry, or false when nothing was counted.
func (c *counter) top() (entry, bool) {
	entries := c.sorted()
	if len(entries) == 0 {
		return entry{}, false
	}
	return entries[0], true
}

func (c *counter) categories(total int) []CategoryCount {
	result := make([]CategoryCount, 0, len(c.order))
	for _, e := range c.sorted() {
		result = append(result, CategoryCount{
			Name:       e.key,
			Count:      e.count,
			Percentage: percentage(e.count, total),
		})
	}
	return result
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(count) * 100 / float64(total))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// sortedByCreation returns a copy of records ordered oldest first.
func sortedByCreation(records []record.Record) []record.Record {
	sorted := make([]record.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	return sorted
}

func dateRange(sorted []record.Record) string {
	return fmt.Sprintf("%s – %s", sorted[0].DateInfo.FullDate, sorted[len(sorted)-1].DateInfo.FullDate)
}

func mostActiveDay(days *counter) string {
	top, ok := days.top()
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%s (%d records)", top.key, top.count)
}

func folderUsage(records []record.Record) FolderUsage {
	var usage FolderUsage
	for _, r := range records {
		if r.InFolder() {
			usage.WithFolder++
		}
	}
	usage.WithoutFolder = len(records) - usage.WithFolder
	return usage
}

// groupByDate groups records by their full date, preserving the input order
// within each group. Groups are returned in the order dates were first seen.
func groupByDate(records []record.Record) []DayGroup {
	index := make(map[string]int)
	var groups []DayGroup
	var cats []*counter
	for _, r := range records {
		date := r.DateInfo.FullDate
		i, ok := index[date]
		if !ok {
			i = len(groups)
			index[date] = i
			groups = append(groups, DayGroup{Day: r.DateInfo.DayName, Date: date})
			cats = append(cats, newCounter())
		}
		groups[i].Records = append(groups[i].Records, r)
		if name := r.CategoryName(); name != "" {
			cats[i].add(name)
		}
	}
	for i := range groups {
		groups[i].Categories = cats[i].categories(len(groups[i].Records))
	}
	return groups
}
