package variantfile

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadTableCSV(t *testing.T) {
	path := writeTemp(t, "variants.csv", "variant_id,note\nrs42,first\n1_123_A_T,second\n")

	table, err := ReadTable(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Header) != 2 || table.Header[0] != "variant_id" {
		t.Errorf("header: %v", table.Header)
	}
	if len(table.Rows) != 2 || table.Rows[1][0] != "1_123_A_T" || table.Rows[1][1] != "second" {
		t.Errorf("rows: %v", table.Rows)
	}
}

func TestReadTableTSV(t *testing.T) {
	path := writeTemp(t, "variants.tsv", "variant_id\tnote\nrs42\thello world\n")

	table, err := ReadTable(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 1 || table.Rows[0][1] != "hello world" {
		t.Errorf("rows: %v", table.Rows)
	}
}

// Files with uninformative extensions still parse when the delimiter can be
// detected from the content.
func TestReadTableDetectsDelimiter(t *testing.T) {
	path := writeTemp(t, "export.txt", "variant_id;af;note\nrs42;0.1;x\nrs43;0.2;y\nrs44;0.3;z\n")

	table, err := ReadTable(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Header) != 3 {
		t.Fatalf("detected delimiter wrong, header: %v", table.Header)
	}
	if table.Rows[2][0] != "rs44" {
		t.Errorf("rows: %v", table.Rows)
	}
}

func TestReadTableGzipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "variants.csv.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte("variant_id,note\nrs42,zipped\n")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	table, err := ReadTable(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 1 || table.Rows[0][1] != "zipped" {
		t.Errorf("rows: %v", table.Rows)
	}
}

func TestReadTableRaggedIsError(t *testing.T) {
	path := writeTemp(t, "ragged.csv", "a,b\n1,2\n3\n")
	if _, err := ReadTable(path); err == nil {
		t.Error("expected an error for a ragged file")
	}
}

func TestReadTableEmptyIsError(t *testing.T) {
	path := writeTemp(t, "empty.csv", "")
	if _, err := ReadTable(path); err == nil {
		t.Error("expected an error for an empty file")
	}
}

func TestReadTableMissingFile(t *testing.T) {
	if _, err := ReadTable(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
