package scraper

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aluiziolira/bookbundle/config"
)

// Operation labels for request metrics.
const (
	opIdentity  = "identity"
	opDiscovery = "discovery"
	opShop      = "shop_lookup"
	opSearch    = "search"
)

// Client performs the origin-specific requests of a bundle analysis: identity
// resolution, seller discovery, seller shop lookups and keyword search.
// Each request is preceded by the configured pause.
type Client struct {
	baseURL        string
	delay          time.Duration
	canonicalRatio float64

	fetcher PageFetcher
	cache   *IdentityCache
	metrics *Metrics
}

// NewClient wires a Client. cache must be the process-wide identity cache.
func NewClient(cfg *config.Config, fetcher PageFetcher, cache *IdentityCache, metrics *Metrics) *Client {
	return &Client{
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		delay:          cfg.Delay,
		canonicalRatio: cfg.CanonicalIDRatio,
		fetcher:        fetcher,
		cache:          cache,
		metrics:        metrics,
	}
}

func (c *Client) fetch(ctx context.Context, operation, pageURL string) (*Document, error) {
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	c.metrics.IncRequest(operation)
	return c.fetcher.Fetch(ctx, pageURL)
}

func (c *Client) listingURL(itemID int64) string {
	return c.baseURL + "/shop/wproduct.aspx?ItemId=" + strconv.FormatInt(itemID, 10)
}

func (c *Client) usedCopiesURL(canonicalID int64) string {
	return c.baseURL + "/shop/UsedShop/wuseditemall.aspx?ItemId=" + strconv.FormatInt(canonicalID, 10) + "&TabType=1"
}

func (c *Client) shopURL(sellerCode string) string {
	return c.baseURL + "/shop/usedshop/wshopitem.aspx?SC=" + sellerCode
}

func (c *Client) shopSearchURL(sellerCode, keyword string) string {
	return c.shopURL(sellerCode) + "&KeyWord=" + url.QueryEscape(keyword)
}

func (c *Client) searchURL(keyword string) string {
	return c.baseURL + "/search/wsearchresult.aspx?SearchTarget=Used&KeyWord=" + url.QueryEscape(keyword)
}
