package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// WriteTerminal writes doc as colored text.
func WriteTerminal(w io.Writer, doc Document) error {
	title := color.New(color.Bold, color.FgCyan)
	heading := color.New(color.Bold)
	label := color.New(color.FgHiBlack)
	good := color.New(color.FgGreen)
	bad := color.New(color.FgRed)

	var b strings.Builder
	title.Fprintln(&b, doc.Title)
	if doc.Empty {
		fmt.Fprintln(&b, "No records found for this period.")
		_, err := io.WriteString(w, b.String())
		return err
	}

	field := func(name string, value any) {
		label.Fprintf(&b, "  %-16s", name)
		fmt.Fprintln(&b, value)
	}
	field("Total records", doc.TotalRecords)
	field("Date range", doc.DateRange)
	field("Most active day", doc.MostActiveDay)
	field("Latest record", doc.LatestRecord)
	field("In folders", fmt.Sprintf("%d (%d without)", doc.FolderUsage.WithFolder, doc.FolderUsage.WithoutFolder))
	if doc.AveragePerDay != nil {
		field("Average per day", *doc.AveragePerDay)
	}
	if doc.PeakDate != nil {
		field("Peak date", fmt.Sprintf("%s (%d records)", doc.PeakDate.Date, doc.PeakDate.Count))
	}
	if doc.Growth != nil {
		growth := "n/a"
		if rate := doc.Growth.GrowthRate; rate != nil {
			c := good
			if *rate < 0 {
				c = bad
			}
			growth = c.Sprintf("%+.1f%%", *rate)
		}
		field("Growth", fmt.Sprintf("%s vs %d records", growth, doc.Growth.PreviousTotal))
	}

	if len(doc.Categories) > 0 {
		fmt.Fprintln(&b)
		heading.Fprintln(&b, "Categories")
		for _, c := range doc.Categories {
			fmt.Fprintf(&b, "  %-20s %3d  %5.1f%%\n", c.Name, c.Count, c.Percentage)
		}
	}

	for _, g := range doc.Groups {
		fmt.Fprintln(&b)
		heading.Fprintln(&b, g.Heading)
		for _, r := range g.Records {
			if name := r.CategoryName(); name != "" {
				fmt.Fprintf(&b, "  - %s %s\n", r.Title, label.Sprintf("[%s]", name))
				continue
			}
			fmt.Fprintf(&b, "  - %s\n", r.Title)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
