package scraper

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/bookbundle/models"
	"github.com/aluiziolira/bookbundle/parser"
	"github.com/antzucaro/matchr"
)

const listingRowSelector = "tr, .ss_book_box, div[class*='book']"

// LookupInShop searches a seller's shop for book by its normalized title.
// It returns nil without error when the shop search did not locate the title.
func (c *Client) LookupInShop(ctx context.Context, sellerCode string, book models.BookRequest) (*models.VerifiedListing, error) {
	keyword := parser.NormalizeTitle(book.Title)
	doc, err := c.fetch(ctx, opShop, c.shopSearchURL(sellerCode, keyword))
	if err != nil {
		c.metrics.IncShopLookup("error")
		return nil, err
	}

	if link := bestTitledLink(doc.Find("a.bo3[href*='wproduct.aspx']"), book.Title); link != nil {
		listing := &models.VerifiedListing{
			ItemID:     book.ItemID,
			Title:      book.Title,
			Quality:    models.GradeFair,
			ProductURL: doc.AbsoluteURL(link.AttrOr("href", "")),
		}
		if row := link.Closest(listingRowSelector); row.Length() > 0 {
			text := row.Text()
			listing.Price = parser.ExtractPrice(text)
			listing.Quality = parser.ExtractQuality(text)
		}
		loggerFrom(ctx).Debug("book located in shop",
			slog.String("seller", sellerCode),
			slog.String("title", book.Title),
			slog.String("quality", listing.Quality.String()),
			slog.Int("price", listing.Price),
		)
		c.metrics.IncShopLookup("found")
		return listing, nil
	}

	if link := bestTitledLink(doc.Find("a[href*='ItemId=']"), book.Title); link != nil {
		loggerFrom(ctx).Debug("book located in shop by item link", slog.String("seller", sellerCode), slog.String("title", book.Title))
		c.metrics.IncShopLookup("found")
		return &models.VerifiedListing{
			ItemID:     book.ItemID,
			Title:      book.Title,
			Quality:    models.GradeFair,
			ProductURL: doc.AbsoluteURL(link.AttrOr("href", "")),
		}, nil
	}

	loggerFrom(ctx).Debug("book not in shop", slog.String("seller", sellerCode), slog.String("title", book.Title))
	c.metrics.IncShopLookup("not_found")
	return nil, nil
}

// bestTitledLink returns the link whose text matches title, preferring the
// highest Jaro-Winkler similarity when several match. Nil when none match.
func bestTitledLink(links *goquery.Selection, title string) *goquery.Selection {
	want := strings.ToLower(parser.NormalizeTitle(title))
	var best *goquery.Selection
	bestScore := -1.0
	links.Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if !parser.IsTitleMatch(text, title) {
			return
		}
		score := matchr.JaroWinkler(strings.ToLower(parser.NormalizeTitle(text)), want, false)
		if score > bestScore {
			best, bestScore = s, score
		}
	})
	return best
}
