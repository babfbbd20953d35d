package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bher20/eratecharge/pkg/seasonal"
)

// ChargeRequest is the input for a single charge computation.
type ChargeRequest struct {
	Date     seasonal.ManagedDate `json:"date"`
	Plan     seasonal.Plan        `json:"plan"`
	Quantity decimal.Decimal      `json:"quantity"`
}

// ChargeResponse is a computed charge. ID and RecordedAt are set only when
// the charge was written to the ledger.
type ChargeResponse struct {
	ID         string               `json:"id,omitempty"`
	Date       seasonal.ManagedDate `json:"date"`
	RecordedAt *time.Time           `json:"recordedAt,omitempty"`
	seasonal.Breakdown
}
