package variantid

import (
	"fmt"

	"github.com/carbocation/pfx"
)

// SplitBatches groups identifiers into consecutive slices of at most size
// elements. The upstream API takes rsIDs and positional IDs in separate input
// lists, so identifiers are first partitioned by Kind; within each kind,
// input order is preserved and concatenating that kind's batches reproduces
// its input sequence. Duplicates are not collapsed.
func SplitBatches(ids []VariantID, size int) ([][]VariantID, error) {
	if size < 1 {
		return nil, pfx.Err(fmt.Errorf("batch size must be at least 1, got %d", size))
	}

	var rsids, positional []VariantID
	for _, id := range ids {
		if id.Kind == KindRSID {
			rsids = append(rsids, id)
		} else {
			positional = append(positional, id)
		}
	}

	out := make([][]VariantID, 0, (len(ids)+size-1)/size)
	for _, kind := range [][]VariantID{rsids, positional} {
		for i := 0; i < len(kind); i += size {
			end := i + size
			if end > len(kind) {
				end = len(kind)
			}
			out = append(out, kind[i:end])
		}
	}

	return out, nil
}
