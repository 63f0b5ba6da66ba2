// Package models defines the persisted data structures for the market server.
package models

import "time"

// AssetType distinguishes the two simulated instrument classes.
type AssetType string

const (
	AssetTypeStock AssetType = "stock"
	AssetTypeFund  AssetType = "fund"
)

// PricePoint is a single entry in an asset's rolling price history.
type PricePoint struct {
	Price     float64   `json:"price"`
	Volume    int64     `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
}

// Asset represents a simulated market instrument.
// Price and volume are rewritten every update cycle; ReferencePrice is fixed
// at creation and anchors the clamp band for all subsequent mutations.
// The ID is a plain string field, kept separate from the store's record id.
type Asset struct {
	ID             string       `json:"asset_id"`
	Name           string       `json:"name"`
	Type           AssetType    `json:"type"`
	Price          float64      `json:"price"`
	ReferencePrice float64      `json:"reference_price"`
	Volume         int64        `json:"volume"`
	PriceHistory   []PricePoint `json:"price_history"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// IsStock reports whether the asset is a stock (vs. a fund).
func (a *Asset) IsStock() bool {
	return a.Type == AssetTypeStock
}

// LatestPoint returns the most recent history entry, or nil if none exists.
func (a *Asset) LatestPoint() *PricePoint {
	if len(a.PriceHistory) == 0 {
		return nil
	}
	return &a.PriceHistory[len(a.PriceHistory)-1]
}
