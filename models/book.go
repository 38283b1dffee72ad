// Package models defines data structures shared by the crawler and the bundle analysis.
package models

// BookRequest is one book the buyer wants. ItemID may be a listing-specific id
// until identity resolution maps it to the canonical one.
type BookRequest struct {
	ItemID     int64        `json:"itemId" yaml:"itemId"`
	ISBN13     string       `json:"isbn13,omitempty" yaml:"isbn13,omitempty"`
	Title      string       `json:"title" yaml:"title"`
	Author     string       `json:"author,omitempty" yaml:"author,omitempty"`
	Cover      string       `json:"cover,omitempty" yaml:"cover,omitempty"`
	MinQuality QualityGrade `json:"minQuality" yaml:"minQuality"`
}

// BookSearchResult is a row from the origin's keyword search.
type BookSearchResult struct {
	ItemID       int64  `json:"itemId"`
	ISBN13       string `json:"isbn13,omitempty"`
	Title        string `json:"title"`
	Author       string `json:"author,omitempty"`
	Publisher    string `json:"publisher,omitempty"`
	Cover        string `json:"cover,omitempty"`
	UsedCount    int    `json:"usedCount"`
	UsedMinPrice int    `json:"usedMinPrice"`
}
