package variantid

import "github.com/BenLubar/memoize"

type parseOutcome struct {
	id  VariantID
	err error
}

func parseOne(raw string) parseOutcome {
	id, err := Parse(raw)
	return parseOutcome{id: id, err: err}
}

var memoizedParse = memoize.Memoize(parseOne)

// ParseCached behaves like Parse but caches outcomes, which pays off on
// inputs where the same identifier appears on many rows. The cache is not
// safe for concurrent callers; parse on one goroutine.
func ParseCached(raw string) (VariantID, error) {
	out := memoizedParse.(func(string) parseOutcome)(raw)
	return out.id, out.err
}
