package variantid

import (
	"errors"
	"testing"
)

func TestParseAcceptedShapes(t *testing.T) {
	for _, v := range []struct {
		Input    string
		Expected string
		Wire     string
		Kind     Kind
	}{
		{"rs116600158", "rs116600158", "rs116600158", KindRSID},
		{"RS123", "RS123", "RS123", KindRSID},
		{"COSM476", "COSM476", "COSM476", KindRSID},
		{"cosm476", "cosm476", "cosm476", KindRSID},
		{"1_123_A_T", "1:123:A:T", "1_123_A_T", KindPositional},
		{"chr1_123_a_t", "1:123:A:T", "1_123_A_T", KindPositional},
		{"CHR22:51229805:G:A", "22:51229805:G:A", "22_51229805_G_A", KindPositional},
		{"chrX-99-g-c", "X:99:G:C", "X_99_G_C", KindPositional},
		{"MT|1438|A|G", "MT:1438:A:G", "MT_1438_A_G", KindPositional},
		{"7>140453136>AC>A", "7:140453136:AC:A", "7_140453136_AC_A", KindPositional},
		{"1_123:A>T", "1:123:A:T", "1_123_A_T", KindPositional},
		{"  rs42  ", "rs42", "rs42", KindRSID},
	} {
		id, err := Parse(v.Input)
		if err != nil {
			t.Fatalf("Parse(%q): unexpected error: %v", v.Input, err)
		}
		if id.Kind != v.Kind {
			t.Errorf("Parse(%q): kind %v, expected %v", v.Input, id.Kind, v.Kind)
		}
		if id.String() != v.Expected {
			t.Errorf("Parse(%q): canonical %q, expected %q", v.Input, id.String(), v.Expected)
		}
		if id.WireID() != v.Wire {
			t.Errorf("Parse(%q): wire %q, expected %q", v.Input, id.WireID(), v.Wire)
		}
	}
}

func TestParseRejectsJunk(t *testing.T) {
	for _, input := range []string{
		"",
		"   ",
		"rs",
		"rsabc",
		"1_123_A",
		"1_123_A_T_G",
		"1_12a3_A_T",
		"1_123_A8_T",
		"chr_123_A_T",
		"1_99999999999999999999_A_T",
		"not a variant",
	} {
		if _, err := Parse(input); !errors.Is(err, ErrUnrecognized) {
			t.Errorf("Parse(%q): expected ErrUnrecognized, got %v", input, err)
		}
	}
}

// The canonical form must be re-parseable to the same identifier, otherwise
// cache keys drift between runs.
func TestParseIdempotent(t *testing.T) {
	for _, input := range []string{"rs116600158", "chr1_123_A_T", "X:99:G:C", "cosm476"} {
		first, err := Parse(input)
		if err != nil {
			t.Fatal(err)
		}
		second, err := Parse(first.String())
		if err != nil {
			t.Fatalf("Parse(%q): %v", first.String(), err)
		}
		if first != second {
			t.Errorf("Parse(%q) = %+v, but reparsing its String() gave %+v", input, first, second)
		}
	}
}

func TestFromParts(t *testing.T) {
	id, err := FromParts("chr7", "140453136", "a", "t")
	if err != nil {
		t.Fatal(err)
	}
	if id.String() != "7:140453136:A:T" {
		t.Errorf("got %q", id.String())
	}

	for _, v := range []struct{ Chrom, Pos, Ref, Alt string }{
		{"", "123", "A", "T"},
		{"1", "abc", "A", "T"},
		{"1", "123", "", "T"},
		{"1", "123", "A", "T8"},
	} {
		if _, err := FromParts(v.Chrom, v.Pos, v.Ref, v.Alt); !errors.Is(err, ErrUnrecognized) {
			t.Errorf("FromParts(%+v): expected ErrUnrecognized, got %v", v, err)
		}
	}
}

func TestParseCached(t *testing.T) {
	for i := 0; i < 3; i++ {
		id, err := ParseCached("rs42")
		if err != nil || id.String() != "rs42" {
			t.Fatalf("ParseCached(rs42) round %d: %v %v", i, id, err)
		}
		if _, err := ParseCached("junk!"); !errors.Is(err, ErrUnrecognized) {
			t.Fatalf("ParseCached(junk!) round %d: expected ErrUnrecognized, got %v", i, err)
		}
	}
}
