package variantfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteTableCSV(t *testing.T) {
	table := &Table{
		Header: []string{"variant_id", "AGVDCUTOFF"},
		Rows:   [][]string{{"rs42", "FAIL"}, {"1:123:A:T", "PASS"}},
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteTable(table, path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	expected := "variant_id,AGVDCUTOFF\nrs42,FAIL\n1:123:A:T,PASS\n"
	if string(data) != expected {
		t.Errorf("got:\n%s\nexpected:\n%s", data, expected)
	}
}

func TestWriteTableTSV(t *testing.T) {
	table := &Table{
		Header: []string{"a", "b"},
		Rows:   [][]string{{"1", "2"}},
	}

	path := filepath.Join(t.TempDir(), "out.tsv")
	if err := WriteTable(table, path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "a\tb\n1\t2\n" {
		t.Errorf("got %q", data)
	}
}

func TestWriteTableXLSXRoundTrip(t *testing.T) {
	table := &Table{
		Header: []string{"variant_id", "African_MAF"},
		Rows:   [][]string{{"rs42", "0.2"}, {"rs43", ""}},
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := WriteTable(table, path); err != nil {
		t.Fatal(err)
	}

	got, err := ReadTable(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Header) != 2 || got.Header[1] != "African_MAF" {
		t.Fatalf("header: %v", got.Header)
	}
	if len(got.Rows) != 2 || got.Rows[0][0] != "rs42" || got.Rows[0][1] != "0.2" {
		t.Fatalf("rows: %v", got.Rows)
	}
	// Trailing empty cells come back padded, not dropped.
	if len(got.Rows[1]) != 2 || got.Rows[1][1] != "" {
		t.Errorf("row padding failed: %v", got.Rows[1])
	}
}

func TestWriteTableUnwritablePath(t *testing.T) {
	table := &Table{Header: []string{"a"}}
	if err := WriteTable(table, filepath.Join(t.TempDir(), "missing", "out.csv")); err == nil {
		t.Error("expected an error for an unwritable path")
	}
}
