package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bher20/eratecharge/internal/storage"
	"github.com/bher20/eratecharge/pkg/seasonal"
)

func request(t *testing.T, date string, qty int64) ChargeRequest {
	t.Helper()
	d, err := seasonal.ParseManagedDate(date)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	return ChargeRequest{
		Date: d,
		Plan: seasonal.Plan{
			SummerStart:          time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC),
			SummerEnd:            time.Date(2021, 9, 1, 0, 0, 0, 0, time.UTC),
			SummerRate:           decimal.NewFromInt(1),
			RegularRate:          decimal.NewFromInt(2),
			RegularServiceCharge: decimal.NewFromInt(3),
		},
		Quantity: decimal.NewFromInt(qty),
	}
}

func TestCharge_NoLedger(t *testing.T) {
	svc := NewService(Config{Strict: true})
	ctx := context.Background()

	res, err := svc.Charge(ctx, request(t, "2021-07-01", 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Amount.Equal(decimal.NewFromInt(10)) || res.Tier != seasonal.TierSummer {
		t.Fatalf("unexpected summer charge: %+v", res)
	}
	if res.ID != "" || res.RecordedAt != nil {
		t.Fatalf("expected no ledger id without storage, got %+v", res)
	}

	res, err = svc.Charge(ctx, request(t, "2021-01-01", 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Amount.Equal(decimal.NewFromInt(23)) || res.Tier != seasonal.TierRegular {
		t.Fatalf("unexpected regular charge: %+v", res)
	}

	if _, err := svc.ListCharges(ctx, 10); !errors.Is(err, ErrLedgerDisabled) {
		t.Fatalf("expected ErrLedgerDisabled, got %v", err)
	}
}

func TestCharge_StrictRejectsInvalid(t *testing.T) {
	svc := NewService(Config{Strict: true})
	req := request(t, "2021-07-01", -1)
	req.Plan.SummerStart, req.Plan.SummerEnd = req.Plan.SummerEnd, req.Plan.SummerStart

	_, err := svc.Charge(context.Background(), req)
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if !errors.Is(err, seasonal.ErrNegativeQuantity) || !errors.Is(err, seasonal.ErrInvertedSummer) {
		t.Fatalf("expected both problems to be reported, got %v", err)
	}

	if _, err := svc.Charge(context.Background(), ChargeRequest{}); !errors.Is(err, seasonal.ErrInvalidDate) {
		t.Fatalf("expected missing date to be rejected, got %v", err)
	}
}

func TestCharge_PermissiveComputesAnyway(t *testing.T) {
	svc := NewService(Config{Strict: false})
	req := request(t, "2021-01-01", -1)

	res, err := svc.Charge(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// -1*2 + 3
	if !res.Amount.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected 1, got %s", res.Amount)
	}
}

func TestCharge_RecordsToLedger(t *testing.T) {
	st := storage.NewMemory()
	svc := NewServiceWithStorage(Config{Strict: true, Driver: "memory"}, st)
	fixed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	svc.newID = func() string { return "rec-1" }
	ctx := context.Background()

	res, err := svc.Charge(ctx, request(t, "2021-01-01", 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ID != "rec-1" || res.RecordedAt == nil || !res.RecordedAt.Equal(fixed) {
		t.Fatalf("expected ledger metadata, got %+v", res)
	}

	rec, err := svc.GetCharge(ctx, "rec-1")
	if err != nil || rec == nil {
		t.Fatalf("GetCharge: %+v, %v", rec, err)
	}
	if rec.Tier != "regular" || !rec.Amount.Equal(decimal.NewFromInt(23)) || !rec.ServiceCharge.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("unexpected record %+v", rec)
	}

	svc.now = func() time.Time { return fixed.Add(48 * time.Hour) }
	n, err := svc.Prune(ctx, 24*time.Hour)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 pruned record, got %d, %v", n, err)
	}
}

type failingStore struct{ *storage.MemoryStorage }

func (failingStore) SaveCharge(context.Context, storage.ChargeRecord) error {
	return errors.New("disk full")
}

func TestCharge_LedgerFailureIsBestEffort(t *testing.T) {
	svc := NewServiceWithStorage(Config{Strict: true, Driver: "memory"}, failingStore{storage.NewMemory()})

	res, err := svc.Charge(context.Background(), request(t, "2021-07-01", 10))
	if err != nil {
		t.Fatalf("ledger failure must not fail the charge: %v", err)
	}
	if res.ID != "" {
		t.Fatalf("expected no id when the write failed, got %q", res.ID)
	}
}
