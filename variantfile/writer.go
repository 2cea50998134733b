package variantfile

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/carbocation/pfx"
	"github.com/xuri/excelize/v2"
)

// WriteTable writes the table to path in the format implied by the
// extension: .xlsx as an Excel workbook, .tsv/.tab/.txt tab-delimited text,
// anything else comma-delimited text.
func WriteTable(t *Table, path string) error {
	path = ExpandHome(path)

	switch {
	case hasSuffixFold(path, ".xlsx"):
		return writeXLSX(t, path)
	case hasSuffixFold(path, ".tsv"), hasSuffixFold(path, ".tab"), hasSuffixFold(path, ".txt"):
		return writeDelimited(t, path, '\t')
	}

	return writeDelimited(t, path, ',')
}

func writeDelimited(t *Table, path string, delim rune) error {
	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}
	defer f.Close()

	buf := bufio.NewWriter(f)
	cw := csv.NewWriter(buf)
	cw.Comma = delim

	if err := cw.Write(t.Header); err != nil {
		return pfx.Err(err)
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return pfx.Err(err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return pfx.Err(err)
	}
	if err := buf.Flush(); err != nil {
		return pfx.Err(err)
	}
	if err := f.Close(); err != nil {
		return pfx.Err(err)
	}

	return nil
}

func writeXLSX(t *Table, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	if err := setSheetRow(f, sheet, 1, t.Header); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := setSheetRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return pfx.Err(err)
	}

	return nil
}

func setSheetRow(f *excelize.File, sheet string, rowNum int, row []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return pfx.Err(err)
	}

	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}

	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return pfx.Err(fmt.Errorf("%s row %d: %w", sheet, rowNum, err))
	}

	return nil
}
