package models

import "time"

// Holding is a user's position in one asset. AssetID is a weak reference:
// the holding does not own the asset, and a holding whose asset no longer
// exists is purged at the next revaluation.
type Holding struct {
	AssetID       string  `json:"asset_id"`
	Quantity      float64 `json:"quantity"`
	PurchasePrice float64 `json:"purchase_price"`
}

// User represents an account with a portfolio of holdings.
// The aggregate fields (TotalInvested through ProfitLossPercentage) are
// derived caches, recomputed every update cycle and never mutated elsewhere.
type User struct {
	ID        string    `json:"user_id"`
	Email     string    `json:"email"`
	Balance   float64   `json:"balance"`
	Portfolio []Holding `json:"portfolio"`

	TotalInvested        float64   `json:"total_invested"`
	CurrentValue         float64   `json:"current_value"`
	ProfitLoss           float64   `json:"profit_loss"`
	ProfitLossPercentage float64   `json:"profit_loss_percentage"`
	LastUpdated          time.Time `json:"last_updated"`

	CreatedAt time.Time `json:"created_at"`
}
