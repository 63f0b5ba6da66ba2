package models

import "time"

// CycleReport summarises one execution of the asset-mutate + revalue pass.
type CycleReport struct {
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration"`
	Skipped        bool          `json:"skipped"`
	SkipReason     string        `json:"skip_reason,omitempty"`
	AssetsUpdated  int           `json:"assets_updated"`
	UsersUpdated   int           `json:"users_updated"`
	HoldingsPurged int           `json:"holdings_purged"`
}

// CycleStatus reports cycle timing for external observers. It is derived on
// query from the last cycle start and the configured interval, never persisted.
type CycleStatus struct {
	LastUpdate         time.Time `json:"last_update"`
	NextUpdate         time.Time `json:"next_update"`
	SecondsUntilUpdate int64     `json:"seconds_until_update"`
}

// UserSummary is a read-only audit row for the users listing.
type UserSummary struct {
	ID            string  `json:"user_id"`
	Email         string  `json:"email"`
	Balance       float64 `json:"balance"`
	TotalInvested float64 `json:"total_invested"`
	CurrentValue  float64 `json:"current_value"`
	ProfitLoss    float64 `json:"profit_loss"`
	Holdings      int     `json:"holdings"`
}
