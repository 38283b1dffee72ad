package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/aluiziolira/bookbundle/models"
)

func TestDiscoverSellers(t *testing.T) {
	fetcher := newStubFetcher()
	client := newTestClient(t, fetcher)
	fetcher.pages[client.usedCopiesURL(500)] = `<table>
		<tr><td><a href="/shop/usedshop/wshopitem.aspx?SC=0">알라딘</a></td></tr>
		<tr><td><a href="/shop/usedshop/wshopitem.aspx?SC=11">책방A</a></td></tr>
		<tr><td><a href="/shop/usedshop/wshopitem.aspx?SC=11">책방A</a></td></tr>
		<tr><td><a href="/shop/usedshop/wshopitem.aspx?SC=12"> </a></td></tr>
		<tr><td><a href="/shop/usedshop/wshopitem.aspx?SC=13">전문셀러</a></td></tr>
		<tr><td><a href="/shop/usedshop/wshopitem.aspx?SC=14">헌책방B</a></td></tr>
	</table>`

	got, err := client.DiscoverSellers(context.Background(), 500)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}

	want := []models.SellerCandidate{
		{SellerCode: "11", SellerName: "책방A", ShopURL: "http://origin.test/shop/usedshop/wshopitem.aspx?SC=11"},
		{SellerCode: "14", SellerName: "헌책방B", ShopURL: "http://origin.test/shop/usedshop/wshopitem.aspx?SC=14"},
	}
	if len(got) != len(want) {
		t.Fatalf("sellers = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("seller[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDiscoverSellersEmptyPage(t *testing.T) {
	fetcher := newStubFetcher()
	client := newTestClient(t, fetcher)
	fetcher.pages[client.usedCopiesURL(1)] = `<html><body>판매자가 없습니다</body></html>`

	got, err := client.DiscoverSellers(context.Background(), 1)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("sellers = %+v, want none", got)
	}
}

func TestDiscoverSellersTransportError(t *testing.T) {
	fetcher := newStubFetcher()
	client := newTestClient(t, fetcher)
	fetcher.failures[client.usedCopiesURL(2)] = errors.New("timeout")

	if _, err := client.DiscoverSellers(context.Background(), 2); !IsTransportError(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
