package parser

import (
	"testing"

	"github.com/aluiziolira/bookbundle/models"
)

func TestValidateBookRequest(t *testing.T) {
	tests := []struct {
		name    string
		book    models.BookRequest
		wantErr bool
	}{
		{
			name:    "valid book",
			book:    models.BookRequest{ItemID: 1234, Title: "채식주의자", MinQuality: models.GradeGood},
			wantErr: false,
		},
		{
			name:    "default grade",
			book:    models.BookRequest{ItemID: 1234, Title: "채식주의자"},
			wantErr: false,
		},
		{
			name:    "missing title",
			book:    models.BookRequest{ItemID: 1234, Title: "  "},
			wantErr: true,
		},
		{
			name:    "zero id",
			book:    models.BookRequest{Title: "채식주의자"},
			wantErr: true,
		},
		{
			name:    "bad grade",
			book:    models.BookRequest{ItemID: 1, Title: "x", MinQuality: 9},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBookRequest(tt.book)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBookRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "with thousands separator", input: "판매가 12,300원 배송비 2,500원", expected: 12300},
		{name: "plain", input: "900원", expected: 900},
		{name: "no currency suffix", input: "12,300", expected: 0},
		{name: "empty", input: "", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractPrice(tt.input); got != tt.expected {
				t.Errorf("ExtractPrice(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestHrefExtraction(t *testing.T) {
	id, ok := ItemIDFromHref("/shop/wproduct.aspx?ItemId=123456&partner=x")
	if !ok || id != 123456 {
		t.Fatalf("ItemIDFromHref = %d/%v, want 123456/true", id, ok)
	}
	if _, ok := ItemIDFromHref("/shop/wproduct.aspx"); ok {
		t.Fatalf("expected no item id")
	}

	code, ok := SellerCodeFromHref("/shop/usedshop/wshopitem.aspx?SC=8812")
	if !ok || code != "8812" {
		t.Fatalf("SellerCodeFromHref = %q/%v, want 8812/true", code, ok)
	}
	if _, ok := SellerCodeFromHref("/shop/usedshop/wshopitem.aspx"); ok {
		t.Fatalf("expected no seller code")
	}
}

func TestParenthesizedCount(t *testing.T) {
	if got := ParenthesizedCount("중고 (14)"); got != 14 {
		t.Fatalf("count = %d, want 14", got)
	}
	if got := ParenthesizedCount("중고"); got != 0 {
		t.Fatalf("count = %d, want 0", got)
	}
}
