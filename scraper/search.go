package scraper

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/bookbundle/models"
	"github.com/aluiziolira/bookbundle/parser"
)

// usedAllLabel is the generic "see all used copies" link text.
const usedAllLabel = "중고모두보기"

// SearchBooks runs a keyword search for used books on the origin.
func (c *Client) SearchBooks(ctx context.Context, keyword string) ([]models.BookSearchResult, error) {
	doc, err := c.fetch(ctx, opSearch, c.searchURL(keyword))
	if err != nil {
		return nil, err
	}

	var results []models.BookSearchResult
	doc.Find(".ss_book_box").Each(func(_ int, s *goquery.Selection) {
		if book, ok := parseSearchBox(doc, s); ok {
			results = append(results, book)
		}
	})

	if len(results) == 0 {
		results = parseUsedAllLinks(doc)
	}

	loggerFrom(ctx).Info("book search", slog.String("keyword", keyword), slog.Int("results", len(results)))
	return results, nil
}

func parseSearchBox(doc *Document, box *goquery.Selection) (models.BookSearchResult, bool) {
	link := box.Find("a[href*='ItemId']").First()
	if link.Length() == 0 {
		return models.BookSearchResult{}, false
	}
	itemID, ok := parser.ItemIDFromHref(link.AttrOr("href", ""))
	if !ok {
		return models.BookSearchResult{}, false
	}

	title := strings.TrimSpace(link.Text())
	if bo3 := box.Find(".bo3").First(); bo3.Length() > 0 {
		title = strings.TrimSpace(bo3.Text())
	}

	book := models.BookSearchResult{
		ItemID: itemID,
		Title:  title,
	}

	if info := box.Find(".ss_book_list_info_1, .info").First(); info.Length() > 0 {
		parts := strings.Split(info.Text(), "|")
		book.Author = strings.TrimSpace(parts[0])
		if len(parts) > 1 {
			book.Publisher = strings.TrimSpace(parts[1])
		}
	}
	if cover := box.Find("img[src*='cover']").First(); cover.Length() > 0 {
		book.Cover = doc.AbsoluteURL(cover.AttrOr("src", ""))
	}
	if used := box.Find("a[href*='TabType=1']").First(); used.Length() > 0 {
		book.UsedCount = parser.ParenthesizedCount(used.Text())
		book.UsedMinPrice = parser.ExtractPrice(used.Text())
	}
	return book, true
}

// parseUsedAllLinks is the fallback when result boxes are missing: every
// titled "all used copies" link becomes a result.
func parseUsedAllLinks(doc *Document) []models.BookSearchResult {
	seen := make(map[int64]struct{})
	var results []models.BookSearchResult
	doc.Find("a[href*='wuseditemall'][href*='ItemId']").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" || text == usedAllLabel {
			return
		}
		id, ok := parser.ItemIDFromHref(s.AttrOr("href", ""))
		if !ok {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		results = append(results, models.BookSearchResult{ItemID: id, Title: text})
	})
	return results
}
