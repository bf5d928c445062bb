package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/punchamoorthee/custodyvault/internal/events"
	"github.com/punchamoorthee/custodyvault/internal/gate"
	"github.com/punchamoorthee/custodyvault/internal/ledger"
	"github.com/punchamoorthee/custodyvault/internal/models"
	"github.com/punchamoorthee/custodyvault/internal/registry"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custody_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "custody_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "endpoint"})
)

type Handler struct {
	ledger *ledger.Ledger
	gate   *gate.Gate
	hub    *events.Hub

	// openRegistry builds a registry from a connection string for the
	// admin registry-swap endpoint.
	openRegistry func(source string) (ledger.Registry, error)
}

func NewHandler(l *ledger.Ledger, g *gate.Gate, hub *events.Hub, openRegistry func(string) (ledger.Registry, error)) *Handler {
	return &Handler{ledger: l, gate: g, hub: hub, openRegistry: openRegistry}
}

func (h *Handler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"}, "GET", "/health")
}

func (h *Handler) DepositHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/deposits"))
	defer timer.ObserveDuration()

	var req models.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/deposits")
		return
	}
	if req.Owner == "" {
		h.respondError(w, http.StatusUnprocessableEntity, "Owner is required", "POST", "/deposits")
		return
	}

	if err := h.ledger.Deposit(r.Context(), req.Owner, req.ItemID); err != nil {
		h.respondLedgerError(w, err, "POST", "/deposits")
		return
	}

	rec, _ := h.ledger.Record(req.ItemID)
	h.respondJSON(w, http.StatusCreated, models.DepositResponse{
		Owner:    req.Owner,
		ItemID:   req.ItemID,
		StakedAt: rec.StakedAt,
	}, "POST", "/deposits")
}

func (h *Handler) BatchDepositHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/deposits/batch"))
	defer timer.ObserveDuration()

	var req models.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/deposits/batch")
		return
	}
	if req.Owner == "" || len(req.ItemIDs) == 0 {
		h.respondError(w, http.StatusUnprocessableEntity, "Owner and item_ids are required", "POST", "/deposits/batch")
		return
	}

	if err := h.ledger.BatchDeposit(r.Context(), req.Owner, req.ItemIDs); err != nil {
		h.respondLedgerError(w, err, "POST", "/deposits/batch")
		return
	}

	h.respondJSON(w, http.StatusCreated, models.BatchResponse{
		Owner:   req.Owner,
		ItemIDs: req.ItemIDs,
		Count:   len(req.ItemIDs),
	}, "POST", "/deposits/batch")
}

func (h *Handler) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/withdrawals"))
	defer timer.ObserveDuration()

	var req models.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/withdrawals")
		return
	}
	if req.Owner == "" {
		h.respondError(w, http.StatusUnprocessableEntity, "Owner is required", "POST", "/withdrawals")
		return
	}

	held, err := h.ledger.Withdraw(r.Context(), req.Owner, req.ItemID)
	if err != nil {
		h.respondLedgerError(w, err, "POST", "/withdrawals")
		return
	}

	h.respondJSON(w, http.StatusOK, models.WithdrawResponse{
		Owner:           req.Owner,
		ItemID:          req.ItemID,
		WithdrawnAt:     time.Now(),
		DurationSeconds: held.Seconds(),
	}, "POST", "/withdrawals")
}

func (h *Handler) BatchWithdrawHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/withdrawals/batch"))
	defer timer.ObserveDuration()

	var req models.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/withdrawals/batch")
		return
	}
	if req.Owner == "" || len(req.ItemIDs) == 0 {
		h.respondError(w, http.StatusUnprocessableEntity, "Owner and item_ids are required", "POST", "/withdrawals/batch")
		return
	}

	if err := h.ledger.BatchWithdraw(r.Context(), req.Owner, req.ItemIDs); err != nil {
		h.respondLedgerError(w, err, "POST", "/withdrawals/batch")
		return
	}

	h.respondJSON(w, http.StatusOK, models.BatchResponse{
		Owner:   req.Owner,
		ItemIDs: req.ItemIDs,
		Count:   len(req.ItemIDs),
	}, "POST", "/withdrawals/batch")
}

func (h *Handler) GetRecordHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid item id", "GET", "/items/{id}")
		return
	}

	rec, ok := h.ledger.Record(id)
	if !ok {
		h.respondError(w, http.StatusNotFound, "No stake record for item", "GET", "/items/{id}")
		return
	}

	h.respondJSON(w, http.StatusOK, models.RecordResponse{
		ItemID:   id,
		Owner:    rec.Owner,
		StakedAt: rec.StakedAt,
		IsStaked: rec.IsStaked,
	}, "GET", "/items/{id}")
}

func (h *Handler) GetOwnerItemsHandler(w http.ResponseWriter, r *http.Request) {
	owner := mux.Vars(r)["owner"]
	h.respondJSON(w, http.StatusOK, models.OwnerItemsResponse{
		Owner:   owner,
		ItemIDs: h.ledger.StakedItems(owner),
	}, "GET", "/owners/{owner}/items")
}

func (h *Handler) GetOwnerStakingTimeHandler(w http.ResponseWriter, r *http.Request) {
	owner := mux.Vars(r)["owner"]
	total, active := h.ledger.OwnerStakingTime(owner)
	h.respondJSON(w, http.StatusOK, models.StakingTimeResponse{
		Owner:        owner,
		TotalSeconds: total.Seconds(),
		ActiveItems:  active,
	}, "GET", "/owners/{owner}/staking-time")
}

func (h *Handler) GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.ledger.GetStats(), "GET", "/stats")
}

func (h *Handler) PauseHandler(w http.ResponseWriter, r *http.Request) {
	var req models.AdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/admin/pause")
		return
	}
	if err := h.gate.Pause(req.Caller); err != nil {
		h.respondLedgerError(w, err, "POST", "/admin/pause")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "paused"}, "POST", "/admin/pause")
}

func (h *Handler) ResumeHandler(w http.ResponseWriter, r *http.Request) {
	var req models.AdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/admin/resume")
		return
	}
	if err := h.gate.Resume(req.Caller); err != nil {
		h.respondLedgerError(w, err, "POST", "/admin/resume")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "active"}, "POST", "/admin/resume")
}

func (h *Handler) UpdateRegistryHandler(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateRegistryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/admin/registry")
		return
	}
	if err := h.gate.Authorize(req.Caller); err != nil {
		h.respondLedgerError(w, err, "POST", "/admin/registry")
		return
	}
	if req.DBSource == "" {
		h.respondError(w, http.StatusUnprocessableEntity, "db_source is required", "POST", "/admin/registry")
		return
	}

	reg, err := h.openRegistry(req.DBSource)
	if err != nil {
		h.respondError(w, http.StatusBadGateway, "Registry unreachable", "POST", "/admin/registry")
		return
	}
	h.ledger.SetRegistry(reg)
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "registry updated"}, "POST", "/admin/registry")
}

// respondLedgerError maps sentinel errors to status codes.
func (h *Handler) respondLedgerError(w http.ResponseWriter, err error, method, endpoint string) {
	switch {
	case errors.Is(err, ledger.ErrAlreadyInCustody):
		h.respondError(w, http.StatusConflict, "Item already in custody", method, endpoint)
	case errors.Is(err, ledger.ErrNotInCustody):
		h.respondError(w, http.StatusNotFound, "Item not in custody", method, endpoint)
	case errors.Is(err, ledger.ErrOwnershipMismatch):
		h.respondError(w, http.StatusForbidden, "Item held for another owner", method, endpoint)
	case errors.Is(err, ledger.ErrPaused):
		h.respondError(w, http.StatusServiceUnavailable, "Deposits are paused", method, endpoint)
	case errors.Is(err, ledger.ErrOperationInProgress):
		h.respondError(w, http.StatusConflict, "Request processing in progress", method, endpoint)
	case errors.Is(err, gate.ErrUnauthorized):
		h.respondError(w, http.StatusForbidden, "Caller is not authorized", method, endpoint)
	case errors.Is(err, registry.ErrTransferDenied):
		h.respondError(w, http.StatusConflict, "Registry refused the transfer", method, endpoint)
	default:
		h.respondError(w, http.StatusBadGateway, "Registry transfer failed", method, endpoint)
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, code int, payload interface{}, method, endpoint string) {
	httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, code int, message, method, endpoint string) {
	h.respondJSON(w, code, map[string]string{"error": message}, method, endpoint)
}
