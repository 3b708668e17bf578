package notes

import (
	"context"
	"fmt"

	"github.com/at-ishikawa/notekeeper/internal/record"
	"github.com/at-ishikawa/notekeeper/internal/summary"
)

// SummaryService computes summaries over the records of a period.
// A nil summary means the period has no records.
type SummaryService struct {
	records *RecordService
}

func NewSummaryService(records *RecordService) *SummaryService {
	return &SummaryService{records: records}
}

func (s *SummaryService) Weekly(ctx context.Context, year, week int) (*summary.WeeklySummary, error) {
	records, err := s.records.ByWeek(ctx, year, week)
	if err != nil {
		return nil, err
	}
	return summary.Weekly(records, week), nil
}

// Monthly summarizes a month and compares it with the previous month.
func (s *SummaryService) Monthly(ctx context.Context, year, month int) (*summary.MonthlySummary, error) {
	records, err := s.records.ByMonth(ctx, year, month)
	if err != nil {
		return nil, err
	}
	result := summary.Monthly(records)
	if result == nil {
		return nil, nil
	}

	prev := record.Period{Kind: record.PeriodMonth, Year: year, Month: month}.PreviousMonth()
	if prev.Year < 1 {
		return result, nil
	}
	previous, err := s.records.ByMonth(ctx, prev.Year, prev.Month)
	if err != nil {
		return nil, fmt.Errorf("ByMonth(%s) > %w", prev.Key(), err)
	}
	result.CompareWith(len(previous))
	return result, nil
}

func (s *SummaryService) Daily(ctx context.Context, year, month, day int) (*summary.DailySummary, error) {
	records, err := s.records.ByDay(ctx, year, month, day)
	if err != nil {
		return nil, err
	}
	return summary.Daily(records), nil
}

// Digest builds the digest of caller-provided entries.
func (s *SummaryService) Digest(period string, entries []summary.Entry) summary.Digest {
	return summary.NewDigest(period, entries)
}
