package variantfile

import (
	"errors"
	"testing"

	"github.com/h3abionet/agvd/variantid"
)

func TestResolveLayoutInference(t *testing.T) {
	for _, v := range []struct {
		Header   []string
		Combined bool
		ColID    int
	}{
		{[]string{"variant_id", "maf"}, true, 0},
		{[]string{"extra", "SNP"}, true, 1},
		{[]string{"MarkerName", "p_value"}, true, 0},
		// A combined column wins even when positional columns are present.
		{[]string{"chr", "pos", "ref", "alt", "rsid"}, true, 4},
	} {
		layout, err := ResolveLayout(v.Header, ColumnSpec{})
		if err != nil {
			t.Fatalf("ResolveLayout(%v): %v", v.Header, err)
		}
		if layout.Combined != v.Combined || layout.ColID != v.ColID {
			t.Errorf("ResolveLayout(%v) = %+v, expected combined=%v col=%d", v.Header, layout, v.Combined, v.ColID)
		}
	}
}

func TestResolveLayoutPositionalInference(t *testing.T) {
	layout, err := ResolveLayout([]string{"CHR", "BP", "reference", "effect_allele"}, ColumnSpec{})
	if err != nil {
		t.Fatal(err)
	}
	if layout.Combined {
		t.Fatal("expected a positional layout")
	}
	if layout.ColChrom != 0 || layout.ColPos != 1 || layout.ColRef != 2 || layout.ColAlt != 3 {
		t.Errorf("wrong columns: %+v", layout)
	}
}

func TestResolveLayoutExplicit(t *testing.T) {
	header := []string{"my_variants", "chromCol", "where", "from", "to"}

	layout, err := ResolveLayout(header, ColumnSpec{ID: "MY_VARIANTS"})
	if err != nil {
		t.Fatal(err)
	}
	if !layout.Combined || layout.ColID != 0 {
		t.Errorf("explicit combined column not honored: %+v", layout)
	}

	layout, err = ResolveLayout(header, ColumnSpec{Chrom: "chromCol", Pos: "where", Ref: "from", Alt: "to"})
	if err != nil {
		t.Fatal(err)
	}
	if layout.Combined || layout.ColChrom != 1 || layout.ColPos != 2 || layout.ColRef != 3 || layout.ColAlt != 4 {
		t.Errorf("explicit positional columns not honored: %+v", layout)
	}
}

func TestResolveLayoutPartialExplicit(t *testing.T) {
	header := []string{"mychrom", "pos", "ref", "alt"}

	layout, err := ResolveLayout(header, ColumnSpec{Chrom: "mychrom"})
	if err != nil {
		t.Fatal(err)
	}
	if layout.Combined || layout.ColChrom != 0 || layout.ColPos != 1 {
		t.Errorf("mixing explicit and inferred columns failed: %+v", layout)
	}
}

func TestResolveLayoutErrors(t *testing.T) {
	if _, err := ResolveLayout([]string{"a", "b"}, ColumnSpec{}); err == nil {
		t.Error("expected an error for a header with no recognizable columns")
	}
	if _, err := ResolveLayout([]string{"variant_id"}, ColumnSpec{ID: "nope"}); err == nil {
		t.Error("expected an error for an explicit column that is absent")
	}
	if _, err := ResolveLayout([]string{"chr", "pos", "ref"}, ColumnSpec{Chrom: "chr"}); err == nil {
		t.Error("expected an error when a positional column cannot be resolved")
	}
}

func TestLayoutIdentifier(t *testing.T) {
	combined, err := ResolveLayout([]string{"note", "variant_id"}, ColumnSpec{})
	if err != nil {
		t.Fatal(err)
	}
	id, err := combined.Identifier([]string{"x", "chr1_123_A_T"})
	if err != nil {
		t.Fatal(err)
	}
	if id.String() != "1:123:A:T" {
		t.Errorf("combined extraction got %q", id.String())
	}

	if _, err := combined.Identifier([]string{"too-short"}); !errors.Is(err, variantid.ErrUnrecognized) {
		t.Errorf("short row should be unrecognized, got %v", err)
	}

	positional, err := ResolveLayout([]string{"chr", "pos", "ref", "alt"}, ColumnSpec{})
	if err != nil {
		t.Fatal(err)
	}
	id, err = positional.Identifier([]string{"X", "99", "g", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if id.String() != "X:99:G:C" {
		t.Errorf("positional extraction got %q", id.String())
	}
}
