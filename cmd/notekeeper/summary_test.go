package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/notekeeper/internal/report"
	"github.com/at-ishikawa/notekeeper/internal/summary"
	"github.com/at-ishikawa/notekeeper/internal/testutil"
)

func TestNewSummaryCommand(t *testing.T) {
	cmd := newSummaryCommand()

	assert.Equal(t, "summary", cmd.Use)
	assert.True(t, cmd.HasSubCommands())

	week := newSummaryWeekCommand()
	assert.Equal(t, "week", week.Use)
	formatFlag := week.Flags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, string(formatTerminal), formatFlag.DefValue)
	assert.NotNil(t, week.Flags().Lookup("output"))
	assert.NotNil(t, week.Flags().Lookup("template"))

	month := newSummaryMonthCommand()
	assert.Equal(t, "month", month.Use)
	assert.Equal(t, "0", month.Flags().Lookup("month").DefValue)
}

func TestSummaryCommands_InvalidFlags(t *testing.T) {
	tests := []struct {
		name    string
		week    bool
		args    []string
		wantErr string
	}{
		{
			name:    "week without year",
			week:    true,
			args:    []string{"--week", "3"},
			wantErr: "--year is required",
		},
		{
			name:    "week out of range",
			week:    true,
			args:    []string{"--year", "2026", "--week", "55"},
			wantErr: "--week must be between 1 and 54",
		},
		{
			name:    "month out of range",
			args:    []string{"--year", "2026", "--month", "13"},
			wantErr: "--month must be between 1 and 12",
		},
		{
			name:    "unknown format",
			args:    []string{"--year", "2026", "--month", "3", "--format", "html"},
			wantErr: `invalid value "html"`,
		},
		{
			name:    "pdf without output",
			week:    true,
			args:    []string{"--year", "2026", "--week", "12", "--format", "pdf"},
			wantErr: "--format pdf requires --output",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newSummaryMonthCommand()
			if tt.week {
				cmd = newSummaryWeekCommand()
			}
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func testDocument() report.Document {
	return report.WeeklyDocument(2026, 12, &summary.WeeklySummary{
		TotalRecords:  1,
		WeekNumber:    12,
		DateRange:     "2026-03-16 to 2026-03-16",
		MostActiveDay: "Monday (1 records)",
		LatestRecord:  "Plan",
	})
}

func TestWriteSummary(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	t.Run("terminal to stdout", func(t *testing.T) {
		var stdout bytes.Buffer
		require.NoError(t, writeSummary(&stdout, testDocument(), summaryOptions{format: formatTerminal}))
		assert.Contains(t, stdout.String(), "Week 12, 2026\n")
		assert.Contains(t, stdout.String(), "Latest record   Plan")
	})

	t.Run("markdown to a file", func(t *testing.T) {
		output := filepath.Join(t.TempDir(), "week.md")
		var stdout bytes.Buffer
		require.NoError(t, writeSummary(&stdout, testDocument(), summaryOptions{format: formatMarkdown, output: output}))
		assert.Empty(t, stdout.String())

		content, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Contains(t, string(content), "# Week 12, 2026")
		assert.Contains(t, string(content), "- Latest record: Plan")
	})

	t.Run("markdown with a custom template", func(t *testing.T) {
		tmpDir := t.TempDir()
		templatePath := filepath.Join(tmpDir, "summary.md.go.tmpl")
		require.NoError(t, os.WriteFile(templatePath, []byte("{{ .Title }}: {{ .TotalRecords }}"), 0644))

		var stdout bytes.Buffer
		require.NoError(t, writeSummary(&stdout, testDocument(), summaryOptions{format: formatMarkdown, templatePath: templatePath}))
		assert.Equal(t, "Week 12, 2026: 1", stdout.String())
	})

	t.Run("pdf", func(t *testing.T) {
		output := filepath.Join(t.TempDir(), "week.pdf")
		require.NoError(t, writeSummary(&bytes.Buffer{}, testDocument(), summaryOptions{format: formatPDF, output: output}))
		_, err := os.Stat(output)
		assert.NoError(t, err, "PDF file should be created")
	})
}

func TestNewSummaryWeekCommand_DatabaseUnavailable(t *testing.T) {
	oldConfigFile := configFile
	configFile = testutil.SetupTestConfig(t, t.TempDir())
	defer func() { configFile = oldConfigFile }()

	cmd := newSummaryWeekCommand()
	cmd.SetArgs([]string{"--year", "2026", "--week", "12"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summaries.Weekly()")
}

func TestFormatFlag_Set(t *testing.T) {
	tests := []struct {
		value   string
		want    FormatFlag
		wantErr bool
	}{
		{value: "terminal", want: formatTerminal},
		{value: "markdown", want: formatMarkdown},
		{value: "pdf", want: formatPDF},
		{value: "html", want: formatTerminal, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			f := formatTerminal
			err := f.Set(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, f)
			assert.Equal(t, "FormatFlag", f.Type())
		})
	}
}
