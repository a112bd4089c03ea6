// Package export reads and writes time entries as CSV.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/hourglass/internal/model"
)

// ExportHeader is the first line of every exported file.
var ExportHeader = []string{"date", "start", "end", "duration_seconds", "category", "notes", "manual", "tasks"}

// ImportHeader is the required first line of an import file.
var ImportHeader = []string{"category", "start", "end", "notes"}

// ErrBadHeader is returned when an import file does not start with ImportHeader.
var ErrBadHeader = errors.New("unexpected csv header")

// WriteEntries writes completed entries as CSV. Times are rendered in loc;
// running timers are skipped. It returns the number of rows written.
func WriteEntries(w io.Writer, entries []model.TimeEntry, loc *time.Location) (int, error) {
	if loc == nil {
		loc = time.Local
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	rows := 0
	for _, e := range entries {
		if e.EndTime == nil {
			continue
		}
		category := e.CategoryID
		if e.Category != nil {
			category = e.Category.Name
		}
		titles := make([]string, 0, len(e.Tasks))
		for _, t := range e.Tasks {
			titles = append(titles, t.Title)
		}

		start := e.StartTime.In(loc)
		record := []string{
			start.Format(model.DateLayout),
			start.Format(time.RFC3339),
			e.EndTime.In(loc).Format(time.RFC3339),
			strconv.FormatInt(e.Duration, 10),
			category,
			e.Notes,
			strconv.FormatBool(e.IsManual),
			strings.Join(titles, ";"),
		}
		if err := cw.Write(record); err != nil {
			return rows, fmt.Errorf("failed to write entry %s: %w", e.ID, err)
		}
		rows++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return rows, fmt.Errorf("failed to flush csv: %w", err)
	}
	return rows, nil
}

// Row is one parsed import line.
type Row struct {
	Start    time.Time
	End      time.Time
	Category string
	Notes    string
	Line     int
}

// RowError reports a rejected import line.
type RowError struct {
	Err  error
	Line int
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// ReadRows parses an import file. Malformed lines are returned as RowErrors
// and skipped; only an unreadable file or a bad header fails the call.
func ReadRows(r io.Reader) ([]Row, []RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%w: file is empty", ErrBadHeader)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	if !headerMatches(header) {
		return nil, nil, fmt.Errorf("%w: got %q, want %q", ErrBadHeader, strings.Join(header, ","), strings.Join(ImportHeader, ","))
	}

	var (
		rows    []Row
		rejects []RowError
	)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				rejects = append(rejects, RowError{Line: parseErr.StartLine, Err: parseErr.Err})
				continue
			}
			return rows, rejects, fmt.Errorf("failed to read csv: %w", err)
		}

		line, _ := cr.FieldPos(0)
		row, err := parseRow(record)
		if err != nil {
			rejects = append(rejects, RowError{Line: line, Err: err})
			continue
		}
		row.Line = line
		rows = append(rows, row)
	}
	return rows, rejects, nil
}

func headerMatches(header []string) bool {
	if len(header) < len(ImportHeader) {
		return false
	}
	for i, want := range ImportHeader {
		got := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\uFEFF")))
		if got != want {
			return false
		}
	}
	return true
}

func parseRow(record []string) (Row, error) {
	if len(record) < 3 {
		return Row{}, fmt.Errorf("expected at least 3 fields, got %d", len(record))
	}

	category := strings.TrimSpace(record[0])
	if category == "" {
		return Row{}, errors.New("category is required")
	}
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(record[1]))
	if err != nil {
		return Row{}, fmt.Errorf("start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, strings.TrimSpace(record[2]))
	if err != nil {
		return Row{}, fmt.Errorf("end: %w", err)
	}
	if end.Before(start) {
		return Row{}, errors.New("end is before start")
	}

	row := Row{Category: category, Start: start, End: end}
	if len(record) > 3 {
		row.Notes = strings.TrimSpace(record[3])
	}
	return row, nil
}
