package scraper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aluiziolira/bookbundle/config"
)

type stubFetcher struct {
	mu       sync.Mutex
	pages    map[string]string
	failures map[string]error
	calls    map[string]int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		pages:    make(map[string]string),
		failures: make(map[string]error),
		calls:    make(map[string]int),
	}
}

func (s *stubFetcher) Fetch(_ context.Context, pageURL string) (*Document, error) {
	s.mu.Lock()
	s.calls[pageURL]++
	page, ok := s.pages[pageURL]
	failure := s.failures[pageURL]
	s.mu.Unlock()

	if failure != nil {
		return nil, &TransportError{URL: pageURL, Err: failure}
	}
	if !ok {
		return nil, &TransportError{URL: pageURL, Err: ErrStatus{Code: 404, Err: errors.New("Not Found")}}
	}
	return NewDocument(pageURL, []byte(page))
}

func (s *stubFetcher) callCount(pageURL string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[pageURL]
}

func newTestClient(t *testing.T, fetcher PageFetcher) *Client {
	t.Helper()
	return newDelayedTestClient(t, fetcher, 0)
}

func newDelayedTestClient(t *testing.T, fetcher PageFetcher, delay time.Duration) *Client {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.BaseURL = "http://origin.test"
	cfg.Delay = delay
	cache, err := NewIdentityCache(64)
	if err != nil {
		t.Fatalf("identity cache: %v", err)
	}
	return NewClient(cfg, fetcher, cache, NewMetrics())
}
