package variantfile

import (
	"bufio"
	"fmt"
	"log"
	"strconv"

	"github.com/carbocation/pfx"
	"github.com/carbocation/vcfgo"

	"github.com/h3abionet/agvd/variantid"
)

const vcfBufferSize = 4096 * 8

// ReadVCF converts a VCF (plain or compressed) into a single-column variant
// table. Each record becomes one variant_id row: the record's own ID when it
// is an rs number, otherwise CHR:POS:REF:ALT built from the coordinates and
// the first ALT allele.
func ReadVCF(path string) (*Table, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	rdr, err := vcfgo.NewReader(bufio.NewReaderSize(r, vcfBufferSize), true)
	if err != nil && rdr == nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	} else if err != nil {
		log.Println("Imperfect VCF header. Attempting to continue. Invalid features include:")
		log.Println(err)
		rdr.Clear()
	}

	out := &Table{Path: path, Header: []string{"variant_id"}}
	for {
		variant := rdr.Read()
		if variant == nil {
			break
		}

		out.Rows = append(out.Rows, []string{vcfIdentifier(variant)})
	}

	if err := rdr.Error(); err != nil {
		log.Printf("Imperfect VCF records in %s (continuing): %v\n", path, err)
		rdr.Clear()
	}

	return out, nil
}

func vcfIdentifier(v *vcfgo.Variant) string {
	if id, err := variantid.Parse(v.Id()); err == nil && id.Kind == variantid.KindRSID {
		return id.String()
	}

	var alt string
	if alts := v.Alt(); len(alts) > 0 {
		alt = alts[0]
	}

	id, err := variantid.FromParts(v.Chrom(), strconv.FormatUint(v.Pos, 10), v.Ref(), alt)
	if err != nil {
		// Symbolic or missing alleles cannot be queried; leave the raw
		// coordinates visible so the row is reported as invalid.
		return fmt.Sprintf("%s_%d_%s_%s", v.Chrom(), v.Pos, v.Ref(), alt)
	}

	return id.String()
}
