package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router wires every endpoint, including the operational ones.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", h.HealthCheckHandler).Methods("GET")
	r.HandleFunc("/events/ws", h.EventsHandler).Methods("GET")

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/deposits", h.DepositHandler).Methods("POST")
	apiV1.HandleFunc("/deposits/batch", h.BatchDepositHandler).Methods("POST")
	apiV1.HandleFunc("/withdrawals", h.WithdrawHandler).Methods("POST")
	apiV1.HandleFunc("/withdrawals/batch", h.BatchWithdrawHandler).Methods("POST")
	apiV1.HandleFunc("/items/{id}", h.GetRecordHandler).Methods("GET")
	apiV1.HandleFunc("/owners/{owner}/items", h.GetOwnerItemsHandler).Methods("GET")
	apiV1.HandleFunc("/owners/{owner}/staking-time", h.GetOwnerStakingTimeHandler).Methods("GET")
	apiV1.HandleFunc("/stats", h.GetStatsHandler).Methods("GET")
	apiV1.HandleFunc("/admin/pause", h.PauseHandler).Methods("POST")
	apiV1.HandleFunc("/admin/resume", h.ResumeHandler).Methods("POST")
	apiV1.HandleFunc("/admin/registry", h.UpdateRegistryHandler).Methods("POST")

	return r
}
