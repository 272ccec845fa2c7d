package resolve

import (
	"logonorm/internal/catalog"
	"logonorm/internal/naming"
	"logonorm/internal/rename"
)

// ReasonExact tags operations produced by an index hit.
const ReasonExact = "exact"

// ExactResult partitions the candidates of one sport.
type ExactResult struct {
	Operations []rename.Operation
	// Settled files already carry their canonical name, or a disambiguated
	// form of it.
	Settled   []string
	Unmatched []string
}

// MatchExact looks every file up in idx by its normalized stem. Whatever
// the file's extension, it is removed before the lookup.
func MatchExact(idx *catalog.Index, sport string, files []string) ExactResult {
	var res ExactResult
	for _, file := range files {
		stem := naming.Stem(file)
		if m, ok := idx.Match(naming.Normalize(stem)); ok {
			if naming.Sanitize(m.Canonical) == stem {
				res.Settled = append(res.Settled, file)
				continue
			}
			res.Operations = append(res.Operations, rename.Operation{
				Source: file,
				Sport:  sport,
				Stem:   m.Canonical,
				Reason: ReasonExact,
			})
			continue
		}
		if settledDisambiguated(idx, stem) {
			res.Settled = append(res.Settled, file)
			continue
		}
		res.Unmatched = append(res.Unmatched, file)
	}
	return res
}

// settledDisambiguated reports whether stem is "<canonical>_N", the shape
// the executor produces when the canonical name was taken.
func settledDisambiguated(idx *catalog.Index, stem string) bool {
	base, _, ok := naming.SplitDisambiguator(stem)
	if !ok {
		return false
	}
	m, ok := idx.Match(naming.Normalize(base))
	return ok && naming.Sanitize(m.Canonical) == base
}
