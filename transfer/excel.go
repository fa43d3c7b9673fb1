// Package transfer reads and writes the cafe directory as an Excel workbook.
package transfer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"cafefinder/model"
	"cafefinder/validation"

	"github.com/xuri/excelize/v2"
)

const SheetName = "Sheet1"

// ErrInvalidWorkbook marks problems with the uploaded file as a whole.
var ErrInvalidWorkbook = errors.New("invalid workbook")

// Columns is the header row, in column order.
var Columns = []string{
	"name", "map_url", "zipcode", "city",
	"has_sockets", "has_toilet", "has_wifi", "coffee_price",
}

// Row is one data row of an uploaded sheet; Number is the 1-based sheet row.
type Row struct {
	Number int
	Form   validation.NewEntryForm
}

// ReadRows parses the first sheet named Sheet1. Blank rows are skipped; short
// rows are padded so the validator reports the missing field.
func ReadRows(r io.Reader) ([]Row, error) {
	xl, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse Excel file: %v", ErrInvalidWorkbook, err)
	}
	defer xl.Close()

	rows, err := xl.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidWorkbook, SheetName, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: excel must have a header and at least one row of data", ErrInvalidWorkbook)
	}

	var out []Row
	for i, cells := range rows[1:] {
		if isBlank(cells) {
			continue
		}
		padded := make([]string, len(Columns))
		copy(padded, cells)
		out = append(out, Row{
			Number: i + 2,
			Form: validation.NewEntryForm{
				Name:        padded[0],
				MapURL:      padded[1],
				Zipcode:     padded[2],
				City:        padded[3],
				HasSockets:  padded[4],
				HasToilet:   padded[5],
				HasWifi:     padded[6],
				CoffeePrice: padded[7],
			},
		})
	}
	return out, nil
}

// WriteEntries writes entries to w as an .xlsx workbook using the same
// columns ReadRows expects.
func WriteEntries(w io.Writer, entries []model.CafeEntry) error {
	xl := excelize.NewFile()
	defer xl.Close()

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := xl.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			e.Name,
			e.MapURL,
			e.Zipcode,
			e.City,
			validation.FormatFlag(e.HasSockets),
			validation.FormatFlag(e.HasToilet),
			validation.FormatFlag(e.HasWifi),
			string(e.CoffeePrice),
		}
		if err := xl.SetSheetRow(SheetName, cell, &row); err != nil {
			return err
		}
	}

	_, err := xl.WriteTo(w)
	return err
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
