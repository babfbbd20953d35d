package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bher20/eratecharge/internal/logging"
	"github.com/bher20/eratecharge/internal/metrics"
	"github.com/bher20/eratecharge/internal/storage"
	"github.com/bher20/eratecharge/pkg/seasonal"
)

var (
	// ErrInvalidRequest wraps every validation failure from Charge.
	ErrInvalidRequest = errors.New("invalid charge request")
	// ErrLedgerDisabled is returned by ledger reads when no storage is configured.
	ErrLedgerDisabled = errors.New("charge ledger is disabled")
)

// Config controls how the billing service behaves.
type Config struct {
	// Strict rejects requests with an invalid plan, a missing date or a
	// negative quantity. When false the calculation runs on whatever it is
	// given.
	Strict bool
	// Driver labels ledger metrics.
	Driver string
}

// Service computes charges and optionally records them in a ledger.
type Service struct {
	cfg   Config
	store storage.Storage // may be nil when the ledger is disabled
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

// NewService returns a Service without a ledger.
func NewService(cfg Config) *Service {
	return NewServiceWithStorage(cfg, nil)
}

// NewServiceWithStorage returns a Service that appends every computed charge
// to st.
func NewServiceWithStorage(cfg Config, st storage.Storage) *Service {
	return &Service{
		cfg:   cfg,
		store: st,
		log:   logging.Named("billing"),
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// LedgerEnabled reports whether charges are being recorded.
func (s *Service) LedgerEnabled() bool {
	return s.store != nil
}

// Validate applies the strict-mode checks to req.
func (s *Service) Validate(req ChargeRequest) error {
	var errs []error
	if req.Date.IsZero() {
		errs = append(errs, fmt.Errorf("%w: date is required", seasonal.ErrInvalidDate))
	}
	if req.Quantity.IsNegative() {
		errs = append(errs, fmt.Errorf("%w: %s", seasonal.ErrNegativeQuantity, req.Quantity))
	}
	if err := req.Plan.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidRequest, errors.Join(errs...))
}

// Charge computes the charge for req. Ledger writes are best-effort: a
// failed write is logged and counted but the charge is still returned.
func (s *Service) Charge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error) {
	if s.cfg.Strict {
		if err := s.Validate(req); err != nil {
			metrics.ChargeRejectionsTotal.Inc()
			return nil, err
		}
	}

	b := seasonal.Quote(req.Date, req.Plan, req.Quantity)
	amount, _ := b.Amount.Float64()
	metrics.ObserveCharge(string(b.Tier), amount)

	resp := &ChargeResponse{Date: req.Date, Breakdown: b}
	if s.store == nil {
		return resp, nil
	}

	rec := storage.ChargeRecord{
		ID:            s.newID(),
		BilledOn:      req.Date.Time(),
		Tier:          string(b.Tier),
		Quantity:      storage.NewNumeric(b.Quantity),
		Rate:          storage.NewNumeric(b.Rate),
		ServiceCharge: storage.NewNumeric(b.ServiceCharge),
		Amount:        storage.NewNumeric(b.Amount),
		SummerStart:   req.Plan.SummerStart,
		SummerEnd:     req.Plan.SummerEnd,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.store.SaveCharge(ctx, rec); err != nil {
		metrics.LedgerWriteFailuresTotal.WithLabelValues(s.cfg.Driver).Inc()
		s.log.Warn("ledger write failed", zap.String("id", rec.ID), zap.Error(err))
		return resp, nil
	}
	resp.ID = rec.ID
	resp.RecordedAt = &rec.CreatedAt
	return resp, nil
}

// GetCharge returns a ledger record, or nil when no record has that id.
func (s *Service) GetCharge(ctx context.Context, id string) (*storage.ChargeRecord, error) {
	if s.store == nil {
		return nil, ErrLedgerDisabled
	}
	return s.store.GetCharge(ctx, id)
}

// ListCharges returns up to limit ledger records, newest first.
func (s *Service) ListCharges(ctx context.Context, limit int) ([]storage.ChargeRecord, error) {
	if s.store == nil {
		return nil, ErrLedgerDisabled
	}
	return s.store.ListCharges(ctx, limit)
}

// Prune deletes ledger records older than retention.
func (s *Service) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if s.store == nil {
		return 0, ErrLedgerDisabled
	}
	cutoff := s.now().UTC().Add(-retention)
	n, err := s.store.PruneCharges(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune charges before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	metrics.LedgerRecordsPrunedTotal.Add(float64(n))
	s.log.Info("pruned ledger", zap.Int64("records", n), zap.Time("cutoff", cutoff))
	return n, nil
}

// Ping checks the ledger backend. It succeeds when the ledger is disabled.
func (s *Service) Ping(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	return s.store.Ping(ctx)
}
