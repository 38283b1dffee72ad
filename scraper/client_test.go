package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aluiziolira/bookbundle/models"
)

func TestClientPausesBeforeEachRequest(t *testing.T) {
	const delay = 50 * time.Millisecond

	fetcher := newStubFetcher()
	client := newDelayedTestClient(t, fetcher, delay)
	fetcher.pages[client.listingURL(900000)] = `<a href="/shop/UsedShop/wuseditemall.aspx?ItemId=500">all</a>`
	fetcher.pages[client.usedCopiesURL(500)] = `<a href="/shop/usedshop/wshopitem.aspx?SC=11">책방A</a>`
	ctx := context.Background()

	operations := []struct {
		name string
		run  func() error
	}{
		{"resolve", func() error {
			_, err := client.ResolveCanonicalID(ctx, 900000)
			return err
		}},
		{"discover", func() error {
			_, err := client.DiscoverSellers(ctx, 500)
			return err
		}},
		// the shop page is missing; the pause still precedes the request
		{"shop lookup", func() error {
			_, _ = client.LookupInShop(ctx, "11", models.BookRequest{ItemID: 1, Title: "데미안"})
			return nil
		}},
	}
	for _, op := range operations {
		start := time.Now()
		if err := op.run(); err != nil {
			t.Fatalf("%s: %v", op.name, err)
		}
		if elapsed := time.Since(start); elapsed < delay {
			t.Errorf("%s took %v, want at least %v", op.name, elapsed, delay)
		}
	}

	start := time.Now()
	got, err := client.ResolveCanonicalID(ctx, 900000)
	if err != nil {
		t.Fatalf("cached resolve: %v", err)
	}
	if got != 500 {
		t.Fatalf("cached resolve = %d, want 500", got)
	}
	if elapsed := time.Since(start); elapsed >= delay/2 {
		t.Errorf("cached resolve took %v, want no pause", elapsed)
	}
	if calls := fetcher.callCount(client.listingURL(900000)); calls != 1 {
		t.Errorf("listing fetches = %d, want 1", calls)
	}
}

func TestClientLogsWithContextLogger(t *testing.T) {
	fetcher := newStubFetcher()
	client := newTestClient(t, fetcher)
	fetcher.pages[client.listingURL(900000)] = `<a href="/shop/UsedShop/wuseditemall.aspx?ItemId=500">all</a>`
	fetcher.pages[client.usedCopiesURL(500)] = `<a href="/shop/usedshop/wshopitem.aspx?SC=11">책방A</a>`

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})).
		With(slog.String("analysis_id", "a-1"))
	ctx := ContextWithLogger(context.Background(), logger)

	if _, err := client.ResolveCanonicalID(ctx, 900000); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := client.ResolveCanonicalID(ctx, 900000); err != nil {
		t.Fatalf("cached resolve: %v", err)
	}
	if _, err := client.DiscoverSellers(ctx, 500); err != nil {
		t.Fatalf("discover: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("log lines = %d, want 3:\n%s", len(lines), buf.String())
	}
	for _, line := range lines {
		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		if record["analysis_id"] != "a-1" {
			t.Errorf("record %q has analysis_id %v, want a-1", record["msg"], record["analysis_id"])
		}
	}
}

func TestLoggerFromDefaultsToGlobal(t *testing.T) {
	if got := loggerFrom(context.Background()); got != slog.Default() {
		t.Fatalf("loggerFrom(empty ctx) is not slog.Default()")
	}
}
