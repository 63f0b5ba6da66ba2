// Package portfolio recomputes user portfolio valuations from asset prices.
package portfolio

import (
	"math"
	"time"

	"github.com/Ranjith-H7/backend/internal/common"
	"github.com/Ranjith-H7/backend/internal/models"
)

// WriteThreshold is the minimum profit/loss movement (absolute) that forces a
// persistence write. Smaller movements are dropped to avoid redundant writes.
const WriteThreshold = 0.01

// Outcome reports what a revaluation did and whether the user record should
// be persisted this cycle.
type Outcome struct {
	Save   bool
	Purged int
}

// Valuator computes aggregate invested/current/P&L figures for users.
type Valuator struct {
	logger *common.Logger
}

// NewValuator creates a new portfolio valuator.
func NewValuator(logger *common.Logger) *Valuator {
	return &Valuator{logger: logger}
}

// Revalue recomputes the user's derived valuation fields in place against the
// given assetID → price lookup.
//
// Holdings whose asset is absent from the lookup are dropped permanently, not
// just skipped: a dangling asset reference can never resolve again, so the
// purge is intentional data hygiene rather than data loss. Each purge is
// logged for auditability.
//
// The returned Outcome asks for a write when the purge changed the portfolio,
// when profit/loss moved by more than WriteThreshold, or when the user has no
// holdings at all (timestamp-only touch so LastUpdated stays fresh).
func (v *Valuator) Revalue(user *models.User, prices map[string]float64, now time.Time) Outcome {
	if len(user.Portfolio) == 0 {
		user.LastUpdated = now
		return Outcome{Save: true}
	}

	valid := user.Portfolio[:0:0]
	for _, h := range user.Portfolio {
		if _, ok := prices[h.AssetID]; ok {
			valid = append(valid, h)
			continue
		}
		v.logger.Warn().
			Str("user", user.Email).
			Str("asset_id", h.AssetID).
			Msg("Purging holding with unresolvable asset")
	}
	purged := len(user.Portfolio) - len(valid)

	var invested, current float64
	for _, h := range valid {
		invested += h.Quantity * h.PurchasePrice
		current += h.Quantity * prices[h.AssetID]
	}

	profitLoss := current - invested
	profitLossPct := 0.0
	if invested > 0 {
		profitLossPct = profitLoss / invested * 100
	}

	previousProfitLoss := user.ProfitLoss

	user.Portfolio = valid
	user.TotalInvested = round2(invested)
	user.CurrentValue = round2(current)
	user.ProfitLoss = round2(profitLoss)
	user.ProfitLossPercentage = round2(profitLossPct)
	user.LastUpdated = now

	save := purged > 0 || math.Abs(user.ProfitLoss-previousProfitLoss) > WriteThreshold
	return Outcome{Save: save, Purged: purged}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
