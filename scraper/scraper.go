package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/bookbundle/config"
	"github.com/gocolly/colly/v2"
)

const (
	ctxKeyStart  = "start"
	ctxKeyBody   = "body"
	ctxKeyStatus = "status"
	ctxKeyURL    = "final_url"
)

// PageFetcher retrieves a page from the origin as a queryable document.
// Implementations return a *TransportError when the page cannot be fetched.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (*Document, error)
}

// Document is a fetched page exposing CSS-selector queries through goquery.
type Document struct {
	*goquery.Document
	URL *url.URL
	raw string
}

// NewDocument parses body as HTML fetched from pageURL.
func NewDocument(pageURL string, body []byte) (*Document, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc.Url = parsed
	return &Document{Document: doc, URL: parsed, raw: string(body)}, nil
}

// Raw returns the page source as received.
func (d *Document) Raw() string {
	return d.raw
}

// AbsoluteURL resolves href against the document location.
func (d *Document) AbsoluteURL(href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return d.URL.ResolveReference(ref).String()
}

// CollyFetcher is the PageFetcher backed by a synchronous colly collector.
// It is safe for concurrent use; colly's limit rule caps in-flight requests.
type CollyFetcher struct {
	collector *colly.Collector
	metrics   *Metrics
}

// NewCollyFetcher builds a fetcher configured from cfg.
func NewCollyFetcher(cfg *config.Config, metrics *Metrics) (*CollyFetcher, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	collector := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.UserAgent(cfg.UserAgent),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = true
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: cfg.MaxWorkers,
	}); err != nil {
		return nil, fmt.Errorf("configure rate limits: %w", err)
	}

	f := &CollyFetcher{
		collector: collector,
		metrics:   metrics,
	}
	f.configureHandlers()
	return f, nil
}

// WithTransport swaps the underlying round tripper.
func (f *CollyFetcher) WithTransport(rt http.RoundTripper) {
	f.collector.WithTransport(rt)
}

// Fetch issues a GET for pageURL. A cancelled ctx refuses new requests.
func (f *CollyFetcher) Fetch(ctx context.Context, pageURL string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TransportError{URL: pageURL, Err: err}
	}

	reqCtx := colly.NewContext()
	if err := f.collector.Request(http.MethodGet, pageURL, nil, reqCtx, nil); err != nil {
		status, _ := reqCtx.GetAny(ctxKeyStatus).(int)
		return nil, &TransportError{URL: pageURL, Err: classifyError(err, status)}
	}

	body, ok := reqCtx.GetAny(ctxKeyBody).([]byte)
	if !ok {
		return nil, &TransportError{URL: pageURL, Err: errors.New("no response body")}
	}
	finalURL := pageURL
	if u, ok := reqCtx.GetAny(ctxKeyURL).(string); ok && u != "" {
		finalURL = u
	}

	doc, err := NewDocument(finalURL, body)
	if err != nil {
		return nil, &TransportError{URL: pageURL, Err: err}
	}
	return doc, nil
}

func (f *CollyFetcher) configureHandlers() {
	f.collector.OnRequest(func(r *colly.Request) {
		r.Ctx.Put(ctxKeyStart, time.Now())
		slog.Debug("origin request", slog.String("url", r.URL.String()))
	})

	f.collector.OnResponse(func(r *colly.Response) {
		r.Ctx.Put(ctxKeyBody, r.Body)
		r.Ctx.Put(ctxKeyURL, r.Request.URL.String())
		if start, ok := r.Ctx.GetAny(ctxKeyStart).(time.Time); ok {
			f.metrics.ObserveDuration(time.Since(start))
		}
	})

	f.collector.OnError(func(r *colly.Response, err error) {
		statusCode := 0
		if r != nil {
			statusCode = r.StatusCode
			if r.Ctx != nil {
				r.Ctx.Put(ctxKeyStatus, statusCode)
			}
		}
		category := errorTypeLabel(classifyError(err, statusCode))

		pageURL := ""
		if r != nil && r.Request != nil && r.Request.URL != nil {
			pageURL = r.Request.URL.String()
		}
		slog.Debug("origin request error",
			slog.String("url", pageURL),
			slog.Int("status", statusCode),
			slog.String("category", category),
			slog.Any("error", err),
		)
		f.metrics.IncError(category)
	})
}
