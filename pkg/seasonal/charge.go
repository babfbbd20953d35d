// Package seasonal computes charges for two-tier (summer/regular) billing
// plans.
package seasonal

import "github.com/shopspring/decimal"

// Tier names the rate schedule applied to a charge.
type Tier string

const (
	TierSummer  Tier = "summer"
	TierRegular Tier = "regular"
)

// Breakdown explains how a charge was derived.
type Breakdown struct {
	Tier          Tier            `json:"tier"`
	Quantity      decimal.Decimal `json:"quantity"`
	Rate          decimal.Decimal `json:"rate"`
	ServiceCharge decimal.Decimal `json:"serviceCharge"`
	Amount        decimal.Decimal `json:"amount"`
}

// InSummer reports whether date falls in the plan's inclusive summer window.
func InSummer(date ManagedDate, plan Plan) bool {
	return !date.IsBefore(plan.SummerStart) && !date.IsAfter(plan.SummerEnd)
}

// CalculateCharge returns quantity*SummerRate inside the summer window and
// quantity*RegularRate+RegularServiceCharge outside it. It does not validate
// its inputs; unset plan fields count as zero.
func CalculateCharge(date ManagedDate, plan Plan, quantity decimal.Decimal) decimal.Decimal {
	if InSummer(date, plan) {
		return quantity.Mul(plan.SummerRate)
	}
	return quantity.Mul(plan.RegularRate).Add(plan.RegularServiceCharge)
}

// Quote is CalculateCharge with the intermediate values kept.
func Quote(date ManagedDate, plan Plan, quantity decimal.Decimal) Breakdown {
	b := Breakdown{
		Quantity: quantity,
		Amount:   CalculateCharge(date, plan, quantity),
	}
	if InSummer(date, plan) {
		b.Tier = TierSummer
		b.Rate = plan.SummerRate
		b.ServiceCharge = decimal.Zero
	} else {
		b.Tier = TierRegular
		b.Rate = plan.RegularRate
		b.ServiceCharge = plan.RegularServiceCharge
	}
	return b
}
