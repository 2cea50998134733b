package variantfile

import (
	"fmt"
	"strings"

	"github.com/carbocation/pfx"

	"github.com/h3abionet/agvd/variantid"
)

// Layout locates the variant identifier within a table: either one combined
// identifier column, or four positional columns.
type Layout struct {
	Combined bool
	ColID    int
	ColChrom int
	ColPos   int
	ColRef   int
	ColAlt   int
}

// ColumnSpec carries the user's explicit column names. Empty fields are
// inferred from the header.
type ColumnSpec struct {
	ID    string
	Chrom string
	Pos   string
	Ref   string
	Alt   string
}

// Header names tried during inference, in priority order, matched
// case-insensitively.
var (
	idColumnNames    = []string{"variant_id", "rsid", "rs_id", "snp", "id", "marker", "markername"}
	chromColumnNames = []string{"chr", "chrom", "chromosome", "#chrom"}
	posColumnNames   = []string{"pos", "position", "bp", "base_pair_location"}
	refColumnNames   = []string{"ref", "reference", "ref_allele", "reference_allele"}
	altColumnNames   = []string{"alt", "alternate", "alt_allele", "alternate_allele", "effect_allele"}
)

// ResolveLayout locates the requested columns in the header, inferring any
// column the user did not name. An explicit combined column wins over
// positional columns; a header that supports neither is an error.
func ResolveLayout(header []string, spec ColumnSpec) (Layout, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	lookup := func(name string) (int, error) {
		i, ok := index[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return 0, pfx.Err(fmt.Errorf("column %q not found in header %v", name, header))
		}
		return i, nil
	}

	if spec.ID != "" {
		col, err := lookup(spec.ID)
		if err != nil {
			return Layout{}, err
		}
		return Layout{Combined: true, ColID: col}, nil
	}

	if spec.Chrom != "" || spec.Pos != "" || spec.Ref != "" || spec.Alt != "" {
		out := Layout{}
		for _, v := range []struct {
			Name       string
			Flag       string
			Candidates []string
			Col        *int
		}{
			{spec.Chrom, "CHR", chromColumnNames, &out.ColChrom},
			{spec.Pos, "POS", posColumnNames, &out.ColPos},
			{spec.Ref, "REF", refColumnNames, &out.ColRef},
			{spec.Alt, "ALT", altColumnNames, &out.ColAlt},
		} {
			if v.Name != "" {
				col, err := lookup(v.Name)
				if err != nil {
					return Layout{}, err
				}
				*v.Col = col
				continue
			}
			col, ok := inferColumn(index, v.Candidates)
			if !ok {
				return Layout{}, pfx.Err(fmt.Errorf("no --%s given and none of %v found in header %v", v.Flag, v.Candidates, header))
			}
			*v.Col = col
		}
		return out, nil
	}

	if col, ok := inferColumn(index, idColumnNames); ok {
		return Layout{Combined: true, ColID: col}, nil
	}

	out := Layout{}
	allFour := true
	for _, v := range []struct {
		Candidates []string
		Col        *int
	}{
		{chromColumnNames, &out.ColChrom},
		{posColumnNames, &out.ColPos},
		{refColumnNames, &out.ColRef},
		{altColumnNames, &out.ColAlt},
	} {
		col, ok := inferColumn(index, v.Candidates)
		if !ok {
			allFour = false
			break
		}
		*v.Col = col
	}
	if allFour {
		return out, nil
	}

	return Layout{}, pfx.Err(fmt.Errorf("cannot locate a variant identifier in header %v: pass --COLUMN, or --CHR/--POS/--REF/--ALT, or rename a column to one of %v", header, idColumnNames))
}

func inferColumn(index map[string]int, candidates []string) (int, bool) {
	for _, name := range candidates {
		if i, ok := index[name]; ok {
			return i, true
		}
	}
	return 0, false
}

// Identifier extracts and normalizes the row's variant identifier.
func (l Layout) Identifier(row []string) (variantid.VariantID, error) {
	if l.Combined {
		if l.ColID >= len(row) {
			return variantid.VariantID{}, fmt.Errorf("row has %d columns but the identifier column is #%d: %w", len(row), l.ColID+1, variantid.ErrUnrecognized)
		}
		return variantid.ParseCached(row[l.ColID])
	}

	for _, col := range []int{l.ColChrom, l.ColPos, l.ColRef, l.ColAlt} {
		if col >= len(row) {
			return variantid.VariantID{}, fmt.Errorf("row has %d columns but a coordinate column is #%d: %w", len(row), col+1, variantid.ErrUnrecognized)
		}
	}

	return variantid.FromParts(row[l.ColChrom], row[l.ColPos], row[l.ColRef], row[l.ColAlt])
}
