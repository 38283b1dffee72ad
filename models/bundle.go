package models

// SellerCandidate is a seller seen advertising a used copy during discovery.
// SellerCode is the identity.
type SellerCandidate struct {
	SellerCode string `json:"sellerCode"`
	SellerName string `json:"sellerName"`
	ShopURL    string `json:"shopUrl"`
}

// VerifiedListing is a book located in a seller's shop during verification.
type VerifiedListing struct {
	ItemID      int64        `json:"itemId"`
	CanonicalID int64        `json:"canonicalId"`
	Title       string       `json:"title"`
	Quality     QualityGrade `json:"quality"`
	Price       int          `json:"price"`
	ProductURL  string       `json:"productUrl,omitempty"`
}

// SellerBundle is the set of requested books one seller can supply.
type SellerBundle struct {
	SellerCode     string            `json:"sellerCode"`
	SellerName     string            `json:"sellerName"`
	ShopURL        string            `json:"shopUrl"`
	Books          []VerifiedListing `json:"books"`
	TotalBookCount int               `json:"totalBookCount"`
	TotalPrice     int               `json:"totalPrice"`
}

// NewSellerBundle builds a bundle whose totals are derived from listings.
func NewSellerBundle(seller SellerCandidate, listings []VerifiedListing) SellerBundle {
	total := 0
	for _, l := range listings {
		total += l.Price
	}
	return SellerBundle{
		SellerCode:     seller.SellerCode,
		SellerName:     seller.SellerName,
		ShopURL:        seller.ShopURL,
		Books:          listings,
		TotalBookCount: len(listings),
		TotalPrice:     total,
	}
}

// BundleResult is the outcome of one bundle analysis.
type BundleResult struct {
	AnalysisID          string         `json:"analysisId"`
	RequestedBooks      []BookRequest  `json:"requestedBooks"`
	TotalRequestedCount int            `json:"totalRequestedCount"`
	Sellers             []SellerBundle `json:"sellers"`
	HasCompleteSeller   bool           `json:"hasCompleteSeller"`
	AnalysisTimeMs      int64          `json:"analysisTimeMs"`
}
