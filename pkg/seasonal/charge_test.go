package seasonal

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func testPlan(t *testing.T) Plan {
	return Plan{
		SummerStart:          mustDate(t, "2021-06-01"),
		SummerEnd:            mustDate(t, "2021-09-01"),
		SummerRate:           decimal.NewFromInt(1),
		RegularRate:          decimal.NewFromInt(2),
		RegularServiceCharge: decimal.NewFromInt(3),
	}
}

func TestCalculateCharge_Summer(t *testing.T) {
	date, err := ParseManagedDate("2021-07-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := CalculateCharge(date, testPlan(t), decimal.NewFromInt(10))
	if !got.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected 10, got %s", got)
	}
}

func TestCalculateCharge_OtherSeasons(t *testing.T) {
	date := NewManagedDate(mustDate(t, "2021-01-01"))
	got := CalculateCharge(date, testPlan(t), decimal.NewFromInt(10))
	if !got.Equal(decimal.NewFromInt(23)) {
		t.Fatalf("expected 23, got %s", got)
	}
}

func TestCalculateCharge_Table(t *testing.T) {
	plan := testPlan(t)
	qty := decimal.RequireFromString("12.5")

	tests := []struct {
		name string
		date string
		want string
		tier Tier
	}{
		{"summer start is inclusive", "2021-06-01", "12.5", TierSummer},
		{"summer end is inclusive", "2021-09-01", "12.5", TierSummer},
		{"day before summer", "2021-05-31", "28", TierRegular},
		{"day after summer", "2021-09-02", "28", TierRegular},
		{"mid summer", "2021-08-15", "12.5", TierSummer},
		{"following year", "2022-07-01", "28", TierRegular},
		{"timestamp after end midnight", "2021-09-01T00:00:01Z", "28", TierRegular},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, err := ParseManagedDate(tt.date)
			if err != nil {
				t.Fatalf("parse date: %v", err)
			}
			got := CalculateCharge(date, plan, qty)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("charge: want %s got %s", tt.want, got)
			}
			b := Quote(date, plan, qty)
			if b.Tier != tt.tier {
				t.Errorf("tier: want %s got %s", tt.tier, b.Tier)
			}
			if !b.Amount.Equal(got) {
				t.Errorf("quote amount %s does not match charge %s", b.Amount, got)
			}
		})
	}
}

func TestCalculateCharge_Idempotent(t *testing.T) {
	plan := testPlan(t)
	date := NewManagedDate(mustDate(t, "2021-01-01"))
	qty := decimal.NewFromInt(7)

	first := CalculateCharge(date, plan, qty)
	for i := 0; i < 5; i++ {
		if got := CalculateCharge(date, plan, qty); !got.Equal(first) {
			t.Fatalf("call %d returned %s, first call returned %s", i, got, first)
		}
	}
}

func TestCalculateCharge_ZeroPlanIsPermissive(t *testing.T) {
	// A zero plan has an empty window at the zero time, so any real date
	// is billed on the regular tier with zero rates.
	date := NewManagedDate(mustDate(t, "2021-01-01"))
	got := CalculateCharge(date, Plan{}, decimal.NewFromInt(10))
	if !got.IsZero() {
		t.Fatalf("expected zero charge for zero plan, got %s", got)
	}
}

func TestQuote_RegularBreakdown(t *testing.T) {
	plan := testPlan(t)
	b := Quote(NewManagedDate(mustDate(t, "2021-12-24")), plan, decimal.NewFromInt(4))
	if b.Tier != TierRegular {
		t.Fatalf("expected regular tier, got %s", b.Tier)
	}
	if !b.Rate.Equal(plan.RegularRate) || !b.ServiceCharge.Equal(plan.RegularServiceCharge) {
		t.Fatalf("unexpected breakdown: %+v", b)
	}
	if !b.Amount.Equal(decimal.NewFromInt(11)) {
		t.Fatalf("expected 11, got %s", b.Amount)
	}
}
