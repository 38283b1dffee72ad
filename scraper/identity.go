package scraper

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/bookbundle/parser"
)

var canonicalKeywordPattern = regexp.MustCompile(`(?i)(?:기본상품|원본|parent|original).*?ItemId[=:](\d+)`)

// canonicalStrategy inspects a listing page and proposes a canonical id.
type canonicalStrategy struct {
	name string
	find func(doc *Document, listingID int64) (int64, bool)
}

func (c *Client) canonicalStrategies() []canonicalStrategy {
	return []canonicalStrategy{
		{name: "used_copies_link", find: fromUsedCopiesLink},
		{name: "product_link", find: c.fromProductLinks},
		{name: "page_keyword", find: fromPageKeywords},
	}
}

// ResolveCanonicalID maps a listing id to the id the origin uses to enumerate
// used copies. Resolutions, including "already canonical", are cached; a
// failed fetch is returned and not cached.
func (c *Client) ResolveCanonicalID(ctx context.Context, listingID int64) (int64, error) {
	if canonical, ok := c.cache.Get(listingID); ok {
		c.metrics.IncCacheLookup(true)
		loggerFrom(ctx).Debug("canonical id from cache", slog.Int64("listing_id", listingID), slog.Int64("canonical_id", canonical))
		return canonical, nil
	}
	c.metrics.IncCacheLookup(false)

	doc, err := c.fetch(ctx, opIdentity, c.listingURL(listingID))
	if err != nil {
		return 0, err
	}

	for _, strategy := range c.canonicalStrategies() {
		if canonical, ok := strategy.find(doc, listingID); ok {
			loggerFrom(ctx).Info("canonical id resolved",
				slog.Int64("listing_id", listingID),
				slog.Int64("canonical_id", canonical),
				slog.String("strategy", strategy.name),
			)
			c.cache.Put(listingID, canonical)
			return canonical, nil
		}
	}

	loggerFrom(ctx).Info("no canonical id found, using listing id", slog.Int64("listing_id", listingID))
	c.cache.Put(listingID, listingID)
	return listingID, nil
}

func fromUsedCopiesLink(doc *Document, listingID int64) (int64, bool) {
	found := int64(0)
	doc.Find("a[href*='wuseditemall.aspx'][href*='ItemId=']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		id, ok := parser.ItemIDFromHref(s.AttrOr("href", ""))
		if ok && id != listingID {
			found = id
			return false
		}
		return true
	})
	return found, found != 0
}

// fromProductLinks accepts a product link id that is materially smaller than
// the listing id. Best-effort: it relies on canonical ids being allocated
// long before used-copy listing ids.
func (c *Client) fromProductLinks(doc *Document, listingID int64) (int64, bool) {
	limit := float64(listingID) * c.canonicalRatio
	found := int64(0)
	doc.Find("a[href*='wproduct.aspx'][href*='ItemId=']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href := s.AttrOr("href", "")
		if strings.Contains(href, "partner=") || strings.Contains(href, "newproduct") {
			return true
		}
		id, ok := parser.ItemIDFromHref(href)
		if ok && id != listingID && float64(id) < limit {
			found = id
			return false
		}
		return true
	})
	return found, found != 0
}

func fromPageKeywords(doc *Document, listingID int64) (int64, bool) {
	for _, m := range canonicalKeywordPattern.FindAllStringSubmatch(doc.Raw(), -1) {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err == nil && id != listingID {
			return id, true
		}
	}
	return 0, false
}
