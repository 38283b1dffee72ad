package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aluiziolira/bookbundle/models"
)

var (
	itemIDPattern     = regexp.MustCompile(`ItemId=(\d+)`)
	sellerCodePattern = regexp.MustCompile(`SC=(\d+)`)
	pricePattern      = regexp.MustCompile(`([\d,]+)원`)
	parenCountPattern = regexp.MustCompile(`\((\d+)\)`)
)

// ValidateBookRequest ensures a requested book can be analysed.
func ValidateBookRequest(b models.BookRequest) error {
	if b.ItemID <= 0 {
		return fmt.Errorf("book %q has non-positive itemId %d", b.Title, b.ItemID)
	}
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("book %d missing title", b.ItemID)
	}
	switch b.MinQuality {
	case 0, models.GradeBest, models.GradeGood, models.GradeFair, models.GradePoor:
	default:
		return fmt.Errorf("book %d has invalid minimum quality %d", b.ItemID, int(b.MinQuality))
	}
	return nil
}

// ItemIDFromHref extracts the ItemId query value embedded in a link.
func ItemIDFromHref(href string) (int64, bool) {
	m := itemIDPattern.FindStringSubmatch(href)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// SellerCodeFromHref extracts the SC (seller code) query value embedded in a link.
func SellerCodeFromHref(href string) (string, bool) {
	m := sellerCodePattern.FindStringSubmatch(href)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractPrice returns the first number followed by the currency suffix, or 0.
func ExtractPrice(text string) int {
	m := pricePattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	price, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0
	}
	return price
}

// ParenthesizedCount returns the first "(N)" count in text, or 0.
func ParenthesizedCount(text string) int {
	m := parenCountPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
