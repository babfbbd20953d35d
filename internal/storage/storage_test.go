package storage

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func sampleRecord(id string, createdAt time.Time) ChargeRecord {
	return ChargeRecord{
		ID:            id,
		BilledOn:      time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC),
		Tier:          "summer",
		Quantity:      NewNumeric(decimal.NewFromInt(10)),
		Rate:          NewNumeric(decimal.NewFromInt(1)),
		ServiceCharge: NewNumeric(decimal.Zero),
		Amount:        NewNumeric(decimal.NewFromInt(10)),
		SummerStart:   time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC),
		SummerEnd:     time.Date(2021, 9, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:     createdAt,
	}
}

// exerciseStorage runs the same contract checks against any backend.
func exerciseStorage(t *testing.T, st Storage) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	if err := st.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	for i, id := range []string{"a", "b", "c"} {
		if err := st.SaveCharge(ctx, sampleRecord(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("SaveCharge(%s) failed: %v", id, err)
		}
	}

	got, err := st.GetCharge(ctx, "b")
	if err != nil {
		t.Fatalf("GetCharge failed: %v", err)
	}
	if got == nil || got.ID != "b" || !got.Amount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected record %+v", got)
	}

	missing, err := st.GetCharge(ctx, "zzz")
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil for missing record; got %+v, %v", missing, err)
	}

	list, err := st.ListCharges(ctx, 2)
	if err != nil {
		t.Fatalf("ListCharges failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != "c" || list[1].ID != "b" {
		t.Fatalf("expected newest first [c b], got %+v", list)
	}

	n, err := st.PruneCharges(ctx, base.Add(90*time.Minute))
	if err != nil {
		t.Fatalf("PruneCharges failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 pruned records, got %d", n)
	}
	list, err = st.ListCharges(ctx, 0)
	if err != nil {
		t.Fatalf("ListCharges failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != "c" {
		t.Fatalf("expected only c to remain, got %+v", list)
	}
}

func TestMemoryStorage(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	exerciseStorage(t, m)
}

func TestGormStorage_SQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "ledger.db")
	st, err := Open(context.Background(), Config{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer st.Close()
	exerciseStorage(t, st)
}

func TestOpen_None(t *testing.T) {
	st, err := Open(context.Background(), Config{Driver: "none"})
	if err != nil || st != nil {
		t.Fatalf("expected nil storage for none driver, got %v, %v", st, err)
	}
}

func TestOpen_Unsupported(t *testing.T) {
	if _, err := Open(context.Background(), Config{Driver: "mysql"}); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestGormStorage_SQLiteKeepsFullPrecision(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "ledger.db")
	st, err := Open(context.Background(), Config{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	precise := decimal.RequireFromString("12345678901234567.891234")
	rec := sampleRecord("precise", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	rec.Amount = NewNumeric(precise)
	rec.Rate = NewNumeric(decimal.RequireFromString("0.123456789012345678"))
	if err := st.SaveCharge(ctx, rec); err != nil {
		t.Fatalf("SaveCharge failed: %v", err)
	}

	got, err := st.GetCharge(ctx, "precise")
	if err != nil || got == nil {
		t.Fatalf("GetCharge: %+v, %v", got, err)
	}
	if !got.Amount.Equal(precise) {
		t.Fatalf("amount lost precision: want %s got %s", precise, got.Amount)
	}
	if got.Rate.String() != "0.123456789012345678" {
		t.Fatalf("rate lost precision: got %s", got.Rate)
	}
}

func TestChargeRecord_JSONIsCamelCase(t *testing.T) {
	out, err := json.Marshal(sampleRecord("a", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"billedOn", "serviceCharge", "summerStart", "summerEnd", "createdAt"} {
		if _, ok := m[k]; !ok {
			t.Errorf("expected key %q in %s", k, out)
		}
	}
	if m["amount"] != "10" {
		t.Errorf("expected amount as a decimal string, got %v", m["amount"])
	}
}
