package bundle

import (
	"cmp"
	"slices"

	"github.com/aluiziolira/bookbundle/models"
)

// Rank drops single-book bundles, orders the rest by book count descending
// then total price ascending and keeps the first limit. A limit <= 0 disables
// truncation. The input slice is not modified.
func Rank(bundles []models.SellerBundle, limit int) []models.SellerBundle {
	ranked := make([]models.SellerBundle, 0, len(bundles))
	for _, b := range bundles {
		if b.TotalBookCount >= 2 {
			ranked = append(ranked, b)
		}
	}

	slices.SortStableFunc(ranked, func(a, b models.SellerBundle) int {
		if c := cmp.Compare(b.TotalBookCount, a.TotalBookCount); c != 0 {
			return c
		}
		if c := cmp.Compare(a.TotalPrice, b.TotalPrice); c != 0 {
			return c
		}
		return cmp.Compare(a.SellerCode, b.SellerCode)
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// HasComplete reports whether any bundle covers all requested books.
func HasComplete(ranked []models.SellerBundle, requested int) bool {
	if requested == 0 {
		return false
	}
	for _, b := range ranked {
		if b.TotalBookCount == requested {
			return true
		}
	}
	return false
}
