package transfer

import (
	"context"
	"errors"
	"io"

	"cafefinder/model"
	"cafefinder/validation"
)

// Creator is the part of the record store an import writes to.
type Creator interface {
	Create(ctx context.Context, entry model.CafeEntry) (model.CafeEntry, error)
}

type SkippedRow struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type Report struct {
	Created []model.CafeEntry `json:"created"`
	Skipped []SkippedRow      `json:"skipped"`
}

// Importer adds every valid sheet row to the store. Rows that fail validation
// or collide with an existing name are reported and skipped.
type Importer struct {
	validator *validation.Validator
	store     Creator
}

func NewImporter(v *validation.Validator, store Creator) *Importer {
	return &Importer{validator: v, store: store}
}

// Import stops only on errors that are not about an individual row, such as
// an unreadable file or an unavailable store.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Report, error) {
	rows, err := ReadRows(r)
	if err != nil {
		return Report{}, err
	}

	report := Report{Created: []model.CafeEntry{}, Skipped: []SkippedRow{}}
	for _, row := range rows {
		entry, err := im.validator.ValidateNew(row.Form)
		if err != nil {
			report.Skipped = append(report.Skipped, SkippedRow{Row: row.Number, Error: err.Error()})
			continue
		}
		created, err := im.store.Create(ctx, entry)
		if errors.Is(err, model.ErrDuplicateName) || errors.Is(err, model.ErrMissingField) || errors.Is(err, model.ErrInvalidValue) {
			report.Skipped = append(report.Skipped, SkippedRow{Row: row.Number, Error: err.Error()})
			continue
		}
		if err != nil {
			return report, err
		}
		report.Created = append(report.Created, created)
	}
	return report, nil
}
