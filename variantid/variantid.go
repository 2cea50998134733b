// Package variantid normalizes the many spellings of a genomic variant
// identifier (rsID, COSMIC ID, or chrom/pos/ref/alt in assorted separators)
// into one canonical form that is stable enough to use as a query or cache
// key.
package variantid

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind distinguishes database identifiers from positional identifiers.
type Kind int

const (
	KindRSID Kind = iota
	KindPositional
)

func (k Kind) String() string {
	if k == KindRSID {
		return "rsID"
	}
	return "variantID"
}

// ErrUnrecognized indicates an input that matches no accepted identifier
// shape. Callers typically mark the row invalid and continue.
var ErrUnrecognized = errors.New("unrecognized variant identifier")

var (
	rsidRE       = regexp.MustCompile(`^(?i:rs|cosm)\d+$`)
	chrPrefixRE  = regexp.MustCompile(`^(?i:chr)`)
	positionalRE = regexp.MustCompile(`^([0-9A-Za-z]+)[_:>|-](\d+)[_:>|-]([A-Za-z]+)[_:>|-]([A-Za-z]+)$`)
	chromRE      = regexp.MustCompile(`^[0-9A-Za-z]+$`)
	alleleRE     = regexp.MustCompile(`^[A-Za-z]+$`)
)

// VariantID is a parsed identifier. For KindRSID only RsID is set, preserving
// the input byte-for-byte. For KindPositional the four coordinates are set,
// upper-cased, with any leading "chr" removed from Chrom.
type VariantID struct {
	Kind  Kind
	RsID  string
	Chrom string
	Pos   uint64
	Ref   string
	Alt   string
}

// String renders the canonical form: the rsID unchanged, or CHR:POS:REF:ALT.
// Parse(v.String()) reproduces v.
func (v VariantID) String() string {
	if v.Kind == KindRSID {
		return v.RsID
	}
	return fmt.Sprintf("%s:%d:%s:%s", v.Chrom, v.Pos, v.Ref, v.Alt)
}

// WireID renders the form the AGVD API exchanges: the rsID unchanged, or
// CHR_POS_REF_ALT.
func (v VariantID) WireID() string {
	if v.Kind == KindRSID {
		return v.RsID
	}
	return fmt.Sprintf("%s_%d_%s_%s", v.Chrom, v.Pos, v.Ref, v.Alt)
}

// Parse normalizes a raw identifier. Accepted shapes are rs/COSM database
// IDs and chrom/pos/ref/alt joined by any mix of '_', ':', '-', '>', or '|',
// with or without a leading "chr" on the chromosome. Anything else yields an
// error wrapping ErrUnrecognized.
func Parse(raw string) (VariantID, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return VariantID{}, fmt.Errorf("empty input: %w", ErrUnrecognized)
	}

	if rsidRE.MatchString(id) {
		return VariantID{Kind: KindRSID, RsID: id}, nil
	}

	stripped := chrPrefixRE.ReplaceAllString(id, "")
	parts := positionalRE.FindStringSubmatch(stripped)
	if parts == nil {
		return VariantID{}, fmt.Errorf("%q: %w", raw, ErrUnrecognized)
	}

	pos, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return VariantID{}, fmt.Errorf("%q: position %q: %w", raw, parts[2], ErrUnrecognized)
	}

	return VariantID{
		Kind:  KindPositional,
		Chrom: strings.ToUpper(parts[1]),
		Pos:   pos,
		Ref:   strings.ToUpper(parts[3]),
		Alt:   strings.ToUpper(parts[4]),
	}, nil
}

// FromParts normalizes an identifier that arrives as four separate column
// values, as when the input file carries chromosome, position, ref, and alt
// columns rather than one combined identifier.
func FromParts(chrom, pos, ref, alt string) (VariantID, error) {
	chrom = chrPrefixRE.ReplaceAllString(strings.TrimSpace(chrom), "")
	if !chromRE.MatchString(chrom) {
		return VariantID{}, fmt.Errorf("chromosome %q: %w", chrom, ErrUnrecognized)
	}

	p, err := strconv.ParseUint(strings.TrimSpace(pos), 10, 64)
	if err != nil {
		return VariantID{}, fmt.Errorf("position %q: %w", pos, ErrUnrecognized)
	}

	ref = strings.TrimSpace(ref)
	alt = strings.TrimSpace(alt)
	if !alleleRE.MatchString(ref) || !alleleRE.MatchString(alt) {
		return VariantID{}, fmt.Errorf("alleles %q/%q: %w", ref, alt, ErrUnrecognized)
	}

	return VariantID{
		Kind:  KindPositional,
		Chrom: strings.ToUpper(chrom),
		Pos:   p,
		Ref:   strings.ToUpper(ref),
		Alt:   strings.ToUpper(alt),
	}, nil
}
