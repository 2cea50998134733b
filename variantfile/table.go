// Package variantfile reads and writes the tabular variant lists that the
// agvd tool consumes and produces: delimited text, Excel, VCF, and PLINK BIM
// files, from local disk or Google Storage, with transparent decompression.
package variantfile

// Table is an in-memory variant list: one header row plus data rows of raw
// strings. Every original column is retained, in input order, so annotations
// can be merged on without losing anything the caller provided.
type Table struct {
	Path   string
	Header []string
	Rows   [][]string
}

// pad extends row with empty strings to width, which spreadsheet readers
// need because they drop trailing empty cells.
func pad(row []string, width int) []string {
	for len(row) < width {
		row = append(row, "")
	}
	return row
}
