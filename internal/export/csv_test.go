package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/hourglass/internal/model"
)

func TestWriteEntries(t *testing.T) {
	start := time.Date(2024, 3, 4, 22, 30, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)
	entries := []model.TimeEntry{
		{
			ID:        "e1",
			StartTime: start,
			EndTime:   &end,
			Duration:  5400,
			Category:  &model.Category{Name: "Work"},
			Notes:     "release, then \"retro\"",
			IsManual:  true,
			Tasks:     []model.Task{{Title: "ship"}, {Title: "notes"}},
		},
		{ID: "running", StartTime: end, Category: &model.Category{Name: "Work"}},
	}

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := WriteEntries(&buf, entries, tokyo)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, ExportHeader, records[0])
	assert.Equal(t, []string{
		"2024-03-05",
		"2024-03-05T07:30:00+09:00",
		"2024-03-05T09:00:00+09:00",
		"5400",
		"Work",
		"release, then \"retro\"",
		"true",
		"ship;notes",
	}, records[1])
}

func TestReadRows(t *testing.T) {
	input := strings.Join([]string{
		"Category,Start,End,Notes",
		"Work,2024-03-04T09:00:00Z,2024-03-04T10:00:00Z,standup",
		"Reading,2024-03-04T20:00:00+01:00,2024-03-04T21:15:00+01:00",
		",2024-03-04T09:00:00Z,2024-03-04T10:00:00Z,no category",
		"Work,yesterday,2024-03-04T10:00:00Z,",
		"Work,2024-03-04T11:00:00Z,2024-03-04T10:00:00Z,backwards",
		"Work,2024-03-04T09:00:00Z",
	}, "\n")

	rows, rejects, err := ReadRows(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "Work", rows[0].Category)
	assert.True(t, rows[0].Start.Equal(time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)))
	assert.True(t, rows[0].End.Equal(time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "standup", rows[0].Notes)
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "Reading", rows[1].Category)
	assert.Equal(t, 75*time.Minute, rows[1].End.Sub(rows[1].Start))
	assert.Empty(t, rows[1].Notes)

	lines := make([]int, 0, len(rejects))
	for _, r := range rejects {
		lines = append(lines, r.Line)
	}
	assert.Equal(t, []int{4, 5, 6, 7}, lines)
	assert.Contains(t, rejects[0].Error(), "line 4: category is required")
}

func TestReadRows_ByteOrderMark(t *testing.T) {
	input := "\uFEFFcategory,start,end,notes\r\n" +
		"Exercise,2024-03-04T07:00:00Z,2024-03-04T07:45:00Z,run\r\n"

	rows, rejects, err := ReadRows(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, rejects)
	require.Len(t, rows, 1)
	assert.Equal(t, "Exercise", rows[0].Category)
	assert.Equal(t, 45*time.Minute, rows[0].End.Sub(rows[0].Start))
	assert.Equal(t, 2, rows[0].Line)
}

func TestReadRows_BadHeader(t *testing.T) {
	tests := map[string]string{
		"empty":         "",
		"wrong columns": "date,start,end\n",
		"too short":     "category,start\n",
		"bom only":      "\uFEFF\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := ReadRows(strings.NewReader(input))
			assert.ErrorIs(t, err, ErrBadHeader)
		})
	}
}
