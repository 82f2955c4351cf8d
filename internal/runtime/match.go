package runtime

import (
	"cmp"
	"slices"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// MatchPath resolves a MultiChoice selection to one of its output paths.
//
// A path matches when every choice it requires is selected (subset match, not
// exact match). Among matches the most specific path wins: larger required
// sets first, then ascending label, then ascending id. The empty-requirement
// path therefore only wins when nothing more specific matches.
func MatchPath(paths []domain.Path, selections domain.SelectionSet) (domain.Path, bool) {
	var candidates []domain.Path
	for _, p := range paths {
		if selections.ContainsAll(p.Requires) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return domain.Path{}, false
	}

	return slices.MinFunc(candidates, comparePaths), true
}

// comparePaths orders paths from most to least preferred.
func comparePaths(a, b domain.Path) int {
	if c := cmp.Compare(b.Specificity(), a.Specificity()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Label, b.Label); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
