package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bher20/eratecharge/internal/billing"
	"github.com/bher20/eratecharge/internal/storage"
)

const (
	defaultListLimit = 50
	maxListLimit     = 1000
	maxBodyBytes     = 1 << 20
)

type chargeHandler struct {
	svc *billing.Service
	log *zap.Logger
}

// ChargeListResponse wraps ledger records for GET /api/v1/charges.
type ChargeListResponse struct {
	Charges []storage.ChargeRecord `json:"charges"`
}

// create computes a charge and records it in the ledger when enabled.
// @Summary Compute a charge
// @Description Bills a quantity against a summer/regular plan for a date
// @Tags charges
// @Accept json
// @Produce json
// @Param request body billing.ChargeRequest true "Charge request"
// @Success 200 {object} billing.ChargeResponse
// @Failure 400 {object} errorResponse
// @Router /api/v1/charges [post]
func (h *chargeHandler) create(w http.ResponseWriter, r *http.Request) {
	var req billing.ChargeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, h.log, http.StatusBadRequest, "malformed request: "+err.Error())
		return
	}

	resp, err := h.svc.Charge(r.Context(), req)
	if err != nil {
		if errors.Is(err, billing.ErrInvalidRequest) {
			writeError(w, h.log, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("charge failed", zap.Error(err))
		writeError(w, h.log, http.StatusInternalServerError, "internal error")
		return
	}

	h.log.Debug("charge computed",
		zap.String("date", resp.Date.String()),
		zap.String("tier", string(resp.Tier)),
		zap.String("amount", resp.Amount.String()),
		zap.String("id", resp.ID),
	)
	writeJSON(w, h.log, http.StatusOK, resp)
}

// list returns recent ledger records.
// @Summary List recorded charges
// @Tags charges
// @Produce json
// @Param limit query int false "Maximum number of records (default 50)"
// @Success 200 {object} ChargeListResponse
// @Failure 503 {object} errorResponse
// @Router /api/v1/charges [get]
func (h *chargeHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, h.log, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxListLimit)
	}

	recs, err := h.svc.ListCharges(r.Context(), limit)
	if err != nil {
		h.ledgerError(w, err)
		return
	}
	if recs == nil {
		recs = []storage.ChargeRecord{}
	}
	writeJSON(w, h.log, http.StatusOK, ChargeListResponse{Charges: recs})
}

// get returns one ledger record.
// @Summary Get a recorded charge
// @Tags charges
// @Produce json
// @Param id path string true "Charge ID"
// @Success 200 {object} storage.ChargeRecord
// @Failure 404 {object} errorResponse
// @Router /api/v1/charges/{id} [get]
func (h *chargeHandler) get(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/charges/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, h.log, http.StatusNotFound, "not found")
		return
	}

	rec, err := h.svc.GetCharge(r.Context(), id)
	if err != nil {
		h.ledgerError(w, err)
		return
	}
	if rec == nil {
		writeError(w, h.log, http.StatusNotFound, "charge not found")
		return
	}
	writeJSON(w, h.log, http.StatusOK, rec)
}

func (h *chargeHandler) ledgerError(w http.ResponseWriter, err error) {
	if errors.Is(err, billing.ErrLedgerDisabled) {
		writeError(w, h.log, http.StatusServiceUnavailable, err.Error())
		return
	}
	h.log.Error("ledger read failed", zap.Error(err))
	writeError(w, h.log, http.StatusInternalServerError, "internal error")
}

// ready pings the ledger when one is configured.
func (h *chargeHandler) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.svc.Ping(ctx); err != nil {
		h.log.Warn("readyz: ledger ping failed", zap.Error(err))
		http.Error(w, "ledger not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
