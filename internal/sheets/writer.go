package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/hourglass/internal/common"
	"github.com/Veraticus/hourglass/internal/model"
)

// Writer writes timesheets to a spreadsheet.
type Writer struct {
	client Client
	logger *slog.Logger
	config Config
}

// NewWriter creates a writer that talks to the Google Sheets API.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	client, err := NewGoogleClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return NewWriterWithClient(client, config, logger), nil
}

// NewWriterWithClient creates a writer over an existing client.
func NewWriterWithClient(client Client, config Config, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{client: client, config: config, logger: logger}
}

// Result describes a completed export.
type Result struct {
	SpreadsheetID string
	Rows          int
	Batches       int
}

// Write replaces the sheet contents with ts.
func (w *Writer) Write(ctx context.Context, ts Timesheet) (*Result, error) {
	w.logger.Info("starting timesheet export",
		"entries", len(ts.Entries),
		"date_range", fmt.Sprintf("%s to %s", ts.Range.Start.Format(model.DateLayout), ts.Range.End.Format(model.DateLayout)))

	retryOpts := common.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var spreadsheetID string
	err := common.WithRetry(ctx, func() error {
		id, err := w.client.EnsureSpreadsheet(ctx, w.config.SpreadsheetID, w.config.SpreadsheetName, w.config.SheetName, w.config.TimeZone)
		spreadsheetID = id
		return err
	}, retryOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	sheetRange := quoteSheet(w.config.SheetName)
	if err := common.WithRetry(ctx, func() error {
		return w.client.Clear(ctx, spreadsheetID, sheetRange)
	}, retryOpts); err != nil {
		return nil, fmt.Errorf("failed to clear sheet: %w", err)
	}

	values := RenderRows(ts)
	batches := 0
	for start := 0; start < len(values); start += w.config.BatchSize {
		end := min(start+w.config.BatchSize, len(values))
		batch := values[start:end]
		rng := fmt.Sprintf("%s!A%d", sheetRange, start+1)

		if err := common.WithRetry(ctx, func() error {
			return w.client.Update(ctx, spreadsheetID, rng, batch)
		}, retryOpts); err != nil {
			return nil, fmt.Errorf("failed to write rows %d-%d: %w", start+1, end, err)
		}
		batches++
	}

	w.logger.Info("timesheet export completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values),
		"batches", batches)

	return &Result{SpreadsheetID: spreadsheetID, Rows: len(values), Batches: batches}, nil
}

// EntryHeader labels the entry table columns.
var EntryHeader = []any{"Date", "Start", "End", "Hours", "Category", "Tasks", "Notes", "Manual"}

// RenderRows lays out the summary block followed by the entry table.
func RenderRows(ts Timesheet) [][]any {
	values := make([][]any, 0, 8+len(ts.Categories)+len(ts.Entries))

	values = append(values,
		[]any{"Timesheet", fmt.Sprintf("%s - %s", ts.Range.Start.Format("Jan 2, 2006"), ts.Range.End.Format("Jan 2, 2006"))},
		[]any{},
		[]any{"Total Hours", Hours(ts.Total)},
		[]any{"Entries", len(ts.Entries)},
		[]any{},
		[]any{"Category", "Hours", "Entries"},
	)
	for _, c := range ts.Categories {
		values = append(values, []any{c.Category, Hours(c.Duration), c.Entries})
	}

	values = append(values, []any{}, EntryHeader)
	for _, e := range ts.Entries {
		manual := "no"
		if e.Manual {
			manual = "yes"
		}
		values = append(values, []any{
			e.Start.Format(model.DateLayout),
			e.Start.Format("15:04"),
			e.End.Format("15:04"),
			Hours(e.Duration),
			e.Category,
			strings.Join(e.Tasks, ", "),
			e.Notes,
			manual,
		})
	}
	return values
}

func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
