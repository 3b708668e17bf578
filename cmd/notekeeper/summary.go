package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/at-ishikawa/notekeeper/internal/notes"
	"github.com/at-ishikawa/notekeeper/internal/report"
)

type FormatFlag string

const (
	formatTerminal FormatFlag = "terminal"
	formatMarkdown FormatFlag = "markdown"
	formatPDF      FormatFlag = "pdf"
)

// Set implements pflag.Value.
func (f *FormatFlag) Set(v string) error {
	switch FormatFlag(v) {
	case formatTerminal, formatMarkdown, formatPDF:
		*f = FormatFlag(v)
	default:
		return fmt.Errorf("invalid value %q, valid values are %q, %q or %q", v, formatTerminal, formatMarkdown, formatPDF)
	}
	return nil
}

// String implements pflag.Value.
func (f *FormatFlag) String() string {
	if f == nil {
		return ""
	}
	return string(*f)
}

// Type implements pflag.Value.
func (f *FormatFlag) Type() string {
	return "FormatFlag"
}

var (
	_ pflag.Value = (*FormatFlag)(nil)
)

type summaryOptions struct {
	format       FormatFlag
	output       string
	templatePath string
}

func (opts summaryOptions) validate() error {
	if opts.format == formatPDF && !strings.HasSuffix(opts.output, ".pdf") {
		return fmt.Errorf("--format pdf requires --output with a .pdf extension")
	}
	return nil
}

func newSummaryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show weekly or monthly summaries of the records",
	}
	cmd.AddCommand(newSummaryWeekCommand(), newSummaryMonthCommand())
	return cmd
}

func addSummaryFlags(cmd *cobra.Command, opts *summaryOptions) {
	opts.format = formatTerminal
	cmd.Flags().Var(&opts.format, "format", "Output format: terminal, markdown or pdf")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file path (stdout when empty)")
	cmd.Flags().StringVar(&opts.templatePath, "template", "", "Markdown template path (the embedded template is used when empty)")
}

func newSummaryWeekCommand() *cobra.Command {
	var year, week int
	var opts summaryOptions

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Summarize the records of a week",
		RunE: func(cmd *cobra.Command, args []string) error {
			if year < 1 {
				return fmt.Errorf("--year is required")
			}
			if week < 1 || week > 54 {
				return fmt.Errorf("--week must be between 1 and 54")
			}
			if err := opts.validate(); err != nil {
				return err
			}
			return runSummary(cmd.Context(), cmd.OutOrStdout(), opts, func(ctx context.Context, summaries *notes.SummaryService) (report.Document, error) {
				s, err := summaries.Weekly(ctx, year, week)
				if err != nil {
					return report.Document{}, fmt.Errorf("summaries.Weekly() > %w", err)
				}
				return report.WeeklyDocument(year, week, s), nil
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Year of the week (e.g., 2026)")
	cmd.Flags().IntVar(&week, "week", 0, "Week of the year (1-54, weeks start on Sunday)")
	addSummaryFlags(cmd, &opts)
	return cmd
}

func newSummaryMonthCommand() *cobra.Command {
	var year, month int
	var opts summaryOptions

	cmd := &cobra.Command{
		Use:   "month",
		Short: "Summarize the records of a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			if year < 1 {
				return fmt.Errorf("--year is required")
			}
			if month < 1 || month > 12 {
				return fmt.Errorf("--month must be between 1 and 12")
			}
			if err := opts.validate(); err != nil {
				return err
			}
			return runSummary(cmd.Context(), cmd.OutOrStdout(), opts, func(ctx context.Context, summaries *notes.SummaryService) (report.Document, error) {
				s, err := summaries.Monthly(ctx, year, month)
				if err != nil {
					return report.Document{}, fmt.Errorf("summaries.Monthly() > %w", err)
				}
				return report.MonthlyDocument(year, month, s), nil
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Year (e.g., 2026)")
	cmd.Flags().IntVar(&month, "month", 0, "Month (1-12)")
	addSummaryFlags(cmd, &opts)
	return cmd
}

func runSummary(ctx context.Context, stdout io.Writer, opts summaryOptions, build func(context.Context, *notes.SummaryService) (report.Document, error)) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, stores, err := openStores(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(context.Background()); err != nil {
			cliLogger.Warn("failed to close the database", zap.Error(err))
		}
	}()

	summaries, err := newSummaryService(cfg, stores)
	if err != nil {
		return err
	}
	doc, err := build(ctx, summaries)
	if err != nil {
		return err
	}
	return writeSummary(stdout, doc, opts)
}

// writeSummary renders doc in opts.format to opts.output, or to stdout when no output is set.
func writeSummary(stdout io.Writer, doc report.Document, opts summaryOptions) error {
	var buf bytes.Buffer
	switch opts.format {
	case formatTerminal:
		if err := report.WriteTerminal(&buf, doc); err != nil {
			return fmt.Errorf("report.WriteTerminal() > %w", err)
		}
	case formatMarkdown, formatPDF:
		tmpl, err := report.ParseTemplate(opts.templatePath, cliLogger)
		if err != nil {
			return fmt.Errorf("report.ParseTemplate() > %w", err)
		}
		if err := report.WriteMarkdown(&buf, tmpl, doc); err != nil {
			return fmt.Errorf("report.WriteMarkdown() > %w", err)
		}
	}

	if opts.format == formatPDF {
		if err := report.WritePDF(buf.Bytes(), opts.output); err != nil {
			return fmt.Errorf("report.WritePDF() > %w", err)
		}
		cliLogger.Info("wrote a pdf report", zap.String("path", opts.output))
		return nil
	}
	if opts.output == "" {
		_, err := stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(opts.output, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("os.WriteFile(%s) > %w", opts.output, err)
	}
	cliLogger.Info("wrote a report", zap.String("path", opts.output), zap.String("format", opts.format.String()))
	return nil
}
