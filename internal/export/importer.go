package export

import (
	"context"
	"fmt"

	"github.com/Veraticus/hourglass/internal/common"
	"github.com/Veraticus/hourglass/internal/model"
	"github.com/Veraticus/hourglass/internal/tracker"
)

// CategoryLookup resolves a category by name, ignoring case.
type CategoryLookup interface {
	GetCategoryByName(ctx context.Context, userID, name string) (*model.Category, error)
}

// EntryCreator stores a manual entry.
type EntryCreator interface {
	CreateManual(ctx context.Context, userID string, in tracker.ManualInput) (*model.TimeEntry, error)
}

// ImportResult summarizes an import run.
type ImportResult struct {
	Rejected []RowError
	Imported int
}

// Importer turns parsed rows into manual entries for one user.
type Importer struct {
	categories CategoryLookup
	entries    EntryCreator
	// OnRow, when set, is called once per processed row.
	OnRow func()
}

// NewImporter creates an importer.
func NewImporter(categories CategoryLookup, entries EntryCreator) *Importer {
	return &Importer{categories: categories, entries: entries}
}

// Import creates an entry for every row. Rows with an unknown category or
// that fail validation are recorded in the result and skipped.
func (im *Importer) Import(ctx context.Context, userID string, rows []Row) (*ImportResult, error) {
	res := &ImportResult{}
	cache := make(map[string]string)

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		err := im.importRow(ctx, userID, row, cache)
		if im.OnRow != nil {
			im.OnRow()
		}
		if err != nil {
			if common.IsDomainError(err) {
				res.Rejected = append(res.Rejected, RowError{Line: row.Line, Err: err})
				continue
			}
			return res, fmt.Errorf("line %d: %w", row.Line, err)
		}
		res.Imported++
	}

	common.LogInfo(ctx, "imported time entries", common.Fields{
		"user_id":  userID,
		"imported": res.Imported,
		"rejected": len(res.Rejected),
	})
	return res, nil
}

func (im *Importer) importRow(ctx context.Context, userID string, row Row, cache map[string]string) error {
	categoryID, ok := cache[row.Category]
	if !ok {
		cat, err := im.categories.GetCategoryByName(ctx, userID, row.Category)
		if err != nil {
			return fmt.Errorf("category %q: %w", row.Category, err)
		}
		categoryID = cat.ID
		cache[row.Category] = categoryID
	}

	end := row.End
	manual := true
	_, err := im.entries.CreateManual(ctx, userID, tracker.ManualInput{
		CategoryID: categoryID,
		StartTime:  row.Start,
		EndTime:    &end,
		Notes:      row.Notes,
		IsManual:   &manual,
	})
	return err
}
