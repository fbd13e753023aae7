package directory

import (
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"brightroots/internal/models"
)

// categoryIndex maps a lowercased category to the positions of the
// providers carrying it.
type categoryIndex map[string]*roaring.Bitmap

func buildCategoryIndex(providers []RankedProvider) categoryIndex {
	idx := make(categoryIndex)
	for i, p := range providers {
		for _, c := range p.Categories {
			key := strings.ToLower(strings.TrimSpace(c))
			bm, ok := idx[key]
			if !ok {
				bm = roaring.New()
				idx[key] = bm
			}
			bm.Add(uint32(i))
		}
	}
	return idx
}

// lookup returns the positions carrying category, never nil.
func (idx categoryIndex) lookup(category string) *roaring.Bitmap {
	if bm, ok := idx[strings.ToLower(strings.TrimSpace(category))]; ok {
		return bm
	}
	return roaring.New()
}

// matchSearch returns the positions whose name or description contains
// term, ignoring case.
func matchSearch(providers []RankedProvider, term string) *roaring.Bitmap {
	term = strings.ToLower(term)
	bm := roaring.New()
	for i, p := range providers {
		if containsFold(p.ProviderRecord, term) {
			bm.Add(uint32(i))
		}
	}
	return bm
}

func containsFold(r models.ProviderRecord, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(r.BusinessName), lowerTerm) ||
		strings.Contains(strings.ToLower(r.Description), lowerTerm)
}
