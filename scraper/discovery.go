package scraper

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/bookbundle/models"
	"github.com/aluiziolira/bookbundle/parser"
)

// placeholderSellerCode marks aggregate rows that are not a real seller.
const placeholderSellerCode = "0"

// sellerBadges are tier labels rendered as seller links on many rows.
var sellerBadges = []string{"전문셀러", "실버셀러"}

// DiscoverSellers lists the sellers advertising a used copy of canonicalID,
// deduplicated by seller code in page order. An empty page yields no sellers
// and no error.
func (c *Client) DiscoverSellers(ctx context.Context, canonicalID int64) ([]models.SellerCandidate, error) {
	doc, err := c.fetch(ctx, opDiscovery, c.usedCopiesURL(canonicalID))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var sellers []models.SellerCandidate
	doc.Find("a[href*='wshopitem.aspx?SC=']").Each(func(_ int, s *goquery.Selection) {
		code, ok := parser.SellerCodeFromHref(s.AttrOr("href", ""))
		if !ok || code == placeholderSellerCode {
			return
		}
		name := strings.TrimSpace(s.Text())
		if name == "" || isSellerBadge(name) {
			return
		}
		if _, dup := seen[code]; dup {
			return
		}
		seen[code] = struct{}{}
		sellers = append(sellers, models.SellerCandidate{
			SellerCode: code,
			SellerName: name,
			ShopURL:    c.shopURL(code),
		})
	})

	loggerFrom(ctx).Info("sellers discovered", slog.Int64("canonical_id", canonicalID), slog.Int("sellers", len(sellers)))
	return sellers, nil
}

func isSellerBadge(name string) bool {
	for _, badge := range sellerBadges {
		if strings.Contains(name, badge) {
			return true
		}
	}
	return false
}
