package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aluiziolira/bookbundle/bundle"
	"github.com/aluiziolira/bookbundle/config"
	"github.com/aluiziolira/bookbundle/models"
	"github.com/aluiziolira/bookbundle/parser"
	"github.com/aluiziolira/bookbundle/scraper"
	"github.com/google/uuid"
)

// ErrPrecondition rejects a request before any analysis work starts.
type ErrPrecondition struct {
	Reason string
}

func (e ErrPrecondition) Error() string {
	return "precondition failed: " + e.Reason
}

// Origin is the set of origin-site operations an analysis needs.
// *scraper.Client satisfies it.
type Origin interface {
	ResolveCanonicalID(ctx context.Context, listingID int64) (int64, error)
	DiscoverSellers(ctx context.Context, canonicalID int64) ([]models.SellerCandidate, error)
	LookupInShop(ctx context.Context, sellerCode string, book models.BookRequest) (*models.VerifiedListing, error)
	SearchBooks(ctx context.Context, keyword string) ([]models.BookSearchResult, error)
}

// Analyzer runs bundle analyses against an Origin. It is safe for concurrent
// use; concurrent analyses share the pool but join on their own tasks.
type Analyzer struct {
	origin  Origin
	pool    *Pool
	metrics *scraper.Metrics

	sampleSize   int
	candidateCap int
	resultCap    int
}

// NewAnalyzer builds an Analyzer. metrics may be nil.
func NewAnalyzer(cfg *config.Config, origin Origin, pool *Pool, metrics *scraper.Metrics) *Analyzer {
	return &Analyzer{
		origin:       origin,
		pool:         pool,
		metrics:      metrics,
		sampleSize:   cfg.SampleSize,
		candidateCap: cfg.CandidateCap,
		resultCap:    cfg.ResultCap,
	}
}

// SearchBooks runs a keyword search on the origin.
func (a *Analyzer) SearchBooks(ctx context.Context, keyword string) ([]models.BookSearchResult, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrPrecondition{Reason: "keyword is required"}
	}
	return a.origin.SearchBooks(ctx, keyword)
}

// AnalyzeBundle finds the sellers able to supply the largest subset of books.
// Only precondition failures are returned as errors; per-book and per-seller
// failures degrade the result instead.
func (a *Analyzer) AnalyzeBundle(ctx context.Context, books []models.BookRequest) (*models.BundleResult, error) {
	if err := validateRequests(books); err != nil {
		return nil, err
	}

	analysisID := uuid.NewString()
	logger := slog.With(slog.String("analysis_id", analysisID))
	ctx = scraper.ContextWithLogger(ctx, logger)
	start := time.Now()
	logger.Info("bundle analysis started", slog.Int("books", len(books)))

	discoveries := a.discoverAll(ctx, logger, books)

	overlap, confirmed := bundle.Aggregate(discoveries)
	candidates := bundle.Candidates(overlap, a.candidateCap)
	logger.Info("sellers aggregated",
		slog.Int("sellers", len(overlap)),
		slog.Int("candidates", len(candidates)),
	)

	bundles := a.verifyAll(ctx, logger, candidates, uniqueBooks(discoveries), confirmed)

	ranked := bundle.Rank(bundles, a.resultCap)
	elapsed := time.Since(start)
	a.metrics.ObserveAnalysis(elapsed)

	result := &models.BundleResult{
		AnalysisID:          analysisID,
		RequestedBooks:      append([]models.BookRequest(nil), books...),
		TotalRequestedCount: len(books),
		Sellers:             ranked,
		HasCompleteSeller:   bundle.HasComplete(ranked, len(books)),
		AnalysisTimeMs:      elapsed.Milliseconds(),
	}
	logger.Info("bundle analysis finished",
		slog.Int("sellers", len(ranked)),
		slog.Bool("complete", result.HasCompleteSeller),
		slog.Duration("elapsed", elapsed),
	)
	return result, nil
}

// discoverAll resolves and discovers every book on the pool and waits for
// all of them. A failed resolution falls back to the listing id; a failed
// discovery yields no sellers.
func (a *Analyzer) discoverAll(ctx context.Context, logger *slog.Logger, books []models.BookRequest) []bundle.Discovery {
	discoveries := make([]bundle.Discovery, len(books))
	var wg sync.WaitGroup

	for i, book := range books {
		discoveries[i] = bundle.Discovery{ResolvedBook: bundle.ResolvedBook{Book: book, CanonicalID: book.ItemID}}
		a.submit(logger, &wg, func() {
			canonicalID, err := a.origin.ResolveCanonicalID(ctx, book.ItemID)
			if err != nil {
				logger.Warn("identity resolution failed, using listing id",
					slog.Int64("item_id", book.ItemID),
					slog.Any("error", err),
				)
				canonicalID = book.ItemID
			}
			discoveries[i].CanonicalID = canonicalID

			sellers, err := a.origin.DiscoverSellers(ctx, canonicalID)
			if err != nil {
				logger.Warn("seller discovery failed",
					slog.Int64("item_id", book.ItemID),
					slog.Int64("canonical_id", canonicalID),
					slog.Any("error", err),
				)
				return
			}
			discoveries[i].Sellers = sellers
		})
	}

	wg.Wait()
	return discoveries
}

func (a *Analyzer) verifyAll(ctx context.Context, logger *slog.Logger, candidates []*bundle.Overlap, books []bundle.ResolvedBook, confirmed bundle.ConfirmedPairs) []models.SellerBundle {
	verifier := bundle.NewVerifier(a.origin, a.sampleSize, logger)
	bundles := make([]models.SellerBundle, len(candidates))
	var wg sync.WaitGroup

	for i, candidate := range candidates {
		bundles[i] = models.NewSellerBundle(candidate.Seller, nil)
		a.submit(logger, &wg, func() {
			v := verifier.Verify(ctx, candidate.Seller, books, confirmed)
			if v.ShortCircuited {
				a.metrics.IncShortCircuit()
			}
			bundles[i] = models.NewSellerBundle(candidate.Seller, v.Listings)
			logger.Debug("seller verified",
				slog.String("seller", candidate.Seller.SellerCode),
				slog.Int("checked", v.Checked),
				slog.Int("found", len(v.Listings)),
			)
		})
	}

	wg.Wait()
	return bundles
}

// submit schedules task on the pool as part of wg. A task the pool refuses
// is logged and counted as done.
func (a *Analyzer) submit(logger *slog.Logger, wg *sync.WaitGroup, task func()) {
	wg.Add(1)
	err := a.pool.Submit(func() {
		defer wg.Done()
		task()
	})
	if err != nil {
		wg.Done()
		logger.Warn("task not scheduled", slog.Any("error", err))
	}
}

// uniqueBooks keeps the first request for each canonical id, so two listings
// of the same book are verified and counted once.
func uniqueBooks(discoveries []bundle.Discovery) []bundle.ResolvedBook {
	books := make([]bundle.ResolvedBook, 0, len(discoveries))
	seen := make(map[int64]struct{}, len(discoveries))
	for _, d := range discoveries {
		if _, dup := seen[d.CanonicalID]; dup {
			continue
		}
		seen[d.CanonicalID] = struct{}{}
		books = append(books, d.ResolvedBook)
	}
	return books
}

func validateRequests(books []models.BookRequest) error {
	if len(books) == 0 {
		return ErrPrecondition{Reason: "no books requested"}
	}
	seen := make(map[int64]struct{}, len(books))
	for _, b := range books {
		if err := parser.ValidateBookRequest(b); err != nil {
			return ErrPrecondition{Reason: err.Error()}
		}
		if _, dup := seen[b.ItemID]; dup {
			return ErrPrecondition{Reason: fmt.Sprintf("book %d requested twice", b.ItemID)}
		}
		seen[b.ItemID] = struct{}{}
	}
	return nil
}
