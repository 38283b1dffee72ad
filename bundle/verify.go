package bundle

import (
	"context"
	"log/slog"

	"github.com/aluiziolira/bookbundle/models"
)

// ShopLookup searches one seller's shop for a requested book. A nil listing
// with a nil error means the title was not located.
type ShopLookup interface {
	LookupInShop(ctx context.Context, sellerCode string, book models.BookRequest) (*models.VerifiedListing, error)
}

// Verification is the outcome of checking one seller.
type Verification struct {
	Listings       []models.VerifiedListing
	Checked        int
	ShortCircuited bool
}

// Verifier checks candidate sellers' shops with an adaptive sampling policy:
// books the seller was seen offering are always checked, while the other
// requested books are only checked past the first SampleSize when the sample
// found something.
type Verifier struct {
	shop       ShopLookup
	sampleSize int
	logger     *slog.Logger
}

// NewVerifier builds a Verifier. A nil logger uses slog.Default.
func NewVerifier(shop ShopLookup, sampleSize int, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	if sampleSize < 0 {
		sampleSize = 0
	}
	return &Verifier{shop: shop, sampleSize: sampleSize, logger: logger}
}

// Verify checks which of books seller actually stocks. Listings come back in
// request order; lookup failures count as "not found" and never abort the
// remaining checks.
func (v *Verifier) Verify(ctx context.Context, seller models.SellerCandidate, books []ResolvedBook, confirmed ConfirmedPairs) Verification {
	var result Verification
	accepted := make([]*models.VerifiedListing, len(books))

	var unknown []int
	for i, b := range books {
		if !confirmed.Has(seller.SellerCode, b.CanonicalID) {
			unknown = append(unknown, i)
			continue
		}
		accepted[i], _ = v.check(ctx, seller, b, &result)
	}

	sample := unknown
	if len(sample) > v.sampleSize {
		sample = unknown[:v.sampleSize]
	}
	hit := false
	for _, i := range sample {
		var found bool
		accepted[i], found = v.check(ctx, seller, books[i], &result)
		hit = hit || found
	}

	rest := unknown[len(sample):]
	if len(rest) > 0 && !hit {
		result.ShortCircuited = true
		v.logger.Debug("sample empty, skipping remaining books",
			slog.String("seller", seller.SellerCode),
			slog.Int("sampled", len(sample)),
			slog.Int("skipped", len(rest)),
		)
	} else {
		for _, i := range rest {
			accepted[i], _ = v.check(ctx, seller, books[i], &result)
		}
	}

	for _, l := range accepted {
		if l != nil {
			result.Listings = append(result.Listings, *l)
		}
	}
	return result
}

// check runs one shop lookup. found reports whether the title was located;
// the returned listing is nil when it was not or when its grade is below the
// book's minimum.
func (v *Verifier) check(ctx context.Context, seller models.SellerCandidate, b ResolvedBook, result *Verification) (*models.VerifiedListing, bool) {
	result.Checked++
	listing, err := v.shop.LookupInShop(ctx, seller.SellerCode, b.Book)
	if err != nil {
		v.logger.Warn("shop lookup failed",
			slog.String("seller", seller.SellerCode),
			slog.Int64("item_id", b.Book.ItemID),
			slog.Any("error", err),
		)
		return nil, false
	}
	if listing == nil {
		return nil, false
	}

	listing.CanonicalID = b.CanonicalID
	if !listing.Quality.IsAtLeast(b.Book.MinQuality) {
		v.logger.Debug("listing below minimum quality",
			slog.String("seller", seller.SellerCode),
			slog.Int64("item_id", b.Book.ItemID),
			slog.String("quality", listing.Quality.String()),
			slog.String("min_quality", b.Book.MinQuality.String()),
		)
		return nil, true
	}
	return listing, true
}
