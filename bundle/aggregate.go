// Package bundle turns per-book seller discovery into verified, ranked seller
// bundles: aggregation of overlapping sellers, adaptive shop verification and
// ranking.
package bundle

import (
	"cmp"
	"slices"

	"github.com/aluiziolira/bookbundle/models"
)

// ResolvedBook is a requested book together with its canonical id.
type ResolvedBook struct {
	Book        models.BookRequest
	CanonicalID int64
}

// Discovery is the phase-one outcome for one requested book. Sellers is empty
// when discovery failed or found nobody.
type Discovery struct {
	ResolvedBook
	Sellers []models.SellerCandidate
}

// Overlap records the requested books a seller was seen offering.
type Overlap struct {
	Seller models.SellerCandidate
	Books  []ResolvedBook
	Count  int
}

// OverlapMap is keyed by seller code.
type OverlapMap map[string]*Overlap

type pair struct {
	sellerCode  string
	canonicalID int64
}

// ConfirmedPairs is the set of (seller, canonical book) pairs observed during
// discovery.
type ConfirmedPairs map[pair]struct{}

// Add records that sellerCode advertised canonicalID.
func (c ConfirmedPairs) Add(sellerCode string, canonicalID int64) {
	c[pair{sellerCode, canonicalID}] = struct{}{}
}

// Has reports whether sellerCode was seen advertising canonicalID.
func (c ConfirmedPairs) Has(sellerCode string, canonicalID int64) bool {
	_, ok := c[pair{sellerCode, canonicalID}]
	return ok
}

// Aggregate folds per-book discovery results into the overlap map and the
// confirmed pair set. A book is counted at most once per seller even when two
// requests resolve to the same canonical id.
func Aggregate(discoveries []Discovery) (OverlapMap, ConfirmedPairs) {
	overlap := make(OverlapMap)
	confirmed := make(ConfirmedPairs)

	for _, d := range discoveries {
		for _, seller := range d.Sellers {
			confirmed.Add(seller.SellerCode, d.CanonicalID)

			entry, ok := overlap[seller.SellerCode]
			if !ok {
				entry = &Overlap{Seller: seller}
				overlap[seller.SellerCode] = entry
			}
			if entry.hasBook(d.CanonicalID) {
				continue
			}
			entry.Books = append(entry.Books, d.ResolvedBook)
			entry.Count++
		}
	}
	return overlap, confirmed
}

func (o *Overlap) hasBook(canonicalID int64) bool {
	for _, b := range o.Books {
		if b.CanonicalID == canonicalID {
			return true
		}
	}
	return false
}

// Candidates returns the sellers seen for at least two books, most overlap
// first (seller code breaks ties), capped at limit. A limit <= 0 disables the cap.
func Candidates(overlap OverlapMap, limit int) []*Overlap {
	candidates := make([]*Overlap, 0, len(overlap))
	for _, entry := range overlap {
		if entry.Count >= 2 {
			candidates = append(candidates, entry)
		}
	}
	slices.SortFunc(candidates, func(a, b *Overlap) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Seller.SellerCode, b.Seller.SellerCode)
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}
