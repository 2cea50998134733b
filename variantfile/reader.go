package variantfile

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/csimplestring/go-csv/detector"
	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// ReadTable reads the variant list at path into memory, dispatching on the
// file extension: VCF (.vcf, .vcf.gz), PLINK .bim, Excel (.xls, .xlsx), and
// delimited text for everything else. Delimited and VCF inputs may be
// compressed; the content is sniffed, not the name.
func ReadTable(path string) (*Table, error) {
	switch {
	case hasSuffixFold(path, ".vcf"), hasSuffixFold(path, ".vcf.gz"), hasSuffixFold(path, ".vcf.bgz"):
		return ReadVCF(path)
	case hasSuffixFold(path, ".bim"):
		return ReadBIM(path)
	case hasSuffixFold(path, ".xls"):
		return readXLS(path)
	case hasSuffixFold(path, ".xlsx"):
		return readXLSX(path)
	}

	return readDelimited(path)
}

func hasSuffixFold(path, suffix string) bool {
	return strings.HasSuffix(strings.ToLower(path), suffix)
}

// DetermineDelimiter returns the single most likely rune that would delimit
// the values in the reader, assuming a CSV-like file.
func DetermineDelimiter(r io.Reader) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(r, '"')

	if len(delimiters) > 0 {
		return rune(delimiters[0][0])
	}

	return ','
}

// readDelimited loads a header-bearing delimited text file. A .tsv or .tab
// extension pins the delimiter to a tab; otherwise it is detected from the
// content, so renamed exports still parse.
func readDelimited(path string) (*Table, error) {
	data, err := slurp(path)
	if err != nil {
		return nil, err
	}

	delim := '\t'
	if !hasSuffixFold(path, ".tsv") && !hasSuffixFold(path, ".tab") {
		delim = DetermineDelimiter(bytes.NewReader(data))
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delim
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}
	if len(records) == 0 {
		return nil, pfx.Err(fmt.Errorf("%s: no header row", path))
	}

	return &Table{Path: path, Header: records[0], Rows: records[1:]}, nil
}

func readXLS(path string) (*Table, error) {
	data, err := slurpRaw(path)
	if err != nil {
		return nil, err
	}

	spreadsheet, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}
	if spreadsheet.NumSheets() == 0 {
		return nil, pfx.Err(fmt.Errorf("%s: workbook has no sheets", path))
	}

	sheet := spreadsheet.GetSheet(0)
	if sheet == nil {
		return nil, pfx.Err(fmt.Errorf("%s: first sheet was nil", path))
	}

	out := &Table{Path: path}
	for rowID := 0; rowID <= int(sheet.MaxRow); rowID++ {
		row := sheet.Row(rowID)
		if row == nil {
			continue
		}

		cells := make([]string, 0, row.LastCol()+1)
		for colID := 0; colID <= row.LastCol(); colID++ {
			cells = append(cells, row.Col(colID))
		}

		if rowID == 0 {
			out.Header = cells
			continue
		}
		out.Rows = append(out.Rows, pad(cells, len(out.Header)))
	}

	if len(out.Header) == 0 {
		return nil, pfx.Err(fmt.Errorf("%s: no header row", path))
	}

	return out, nil
}

func readXLSX(path string) (*Table, error) {
	data, err := slurpRaw(path)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: sheet %q: %w", path, sheet, err))
	}
	if len(records) == 0 {
		return nil, pfx.Err(fmt.Errorf("%s: no header row", path))
	}

	out := &Table{Path: path, Header: records[0]}
	for _, row := range records[1:] {
		out.Rows = append(out.Rows, pad(row, len(out.Header)))
	}

	return out, nil
}
