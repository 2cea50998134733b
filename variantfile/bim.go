package variantfile

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/carbocation/pfx"

	"github.com/h3abionet/agvd/variantid"
)

// Map columns in a PLINK BIM file to their positions
const (
	bimChromosome int = iota
	bimVariantID
	bimMorgans
	bimCoordinate
	bimAllele1
	bimAllele2
)

// ReadBIM converts a PLINK .bim file (six whitespace-separated columns, no
// header) into a variant table. The synthesized variant_id column carries
// the file's own ID when that is an rs number; otherwise it is built from
// the coordinates with allele2 as REF and allele1 as ALT, the usual PLINK
// convention. Rows with unusable alleles (for example PLINK's "0" for a
// missing allele) keep their raw ID and surface as invalid downstream.
func ReadBIM(path string) (*Table, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	out := &Table{
		Path:   path,
		Header: []string{"variant_id", "chromosome", "position", "allele1", "allele2"},
	}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		cols := strings.Fields(text)
		if len(cols) < bimAllele2+1 {
			return nil, pfx.Err(fmt.Errorf("%s line %d: expected %d columns, got %d", path, line, bimAllele2+1, len(cols)))
		}

		identifier := cols[bimVariantID]
		if id, err := variantid.Parse(identifier); err == nil && id.Kind == variantid.KindRSID {
			identifier = id.String()
		} else if id, err := variantid.FromParts(cols[bimChromosome], cols[bimCoordinate], cols[bimAllele2], cols[bimAllele1]); err == nil {
			identifier = id.String()
		}

		out.Rows = append(out.Rows, []string{
			identifier,
			cols[bimChromosome],
			cols[bimCoordinate],
			cols[bimAllele1],
			cols[bimAllele2],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, pfx.Err(err)
	}

	return out, nil
}
