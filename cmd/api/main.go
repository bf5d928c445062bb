package main

import (
	"log"
	"net/http"

	"github.com/punchamoorthee/custodyvault/internal/api"
	"github.com/punchamoorthee/custodyvault/internal/config"
	"github.com/punchamoorthee/custodyvault/internal/events"
	"github.com/punchamoorthee/custodyvault/internal/gate"
	"github.com/punchamoorthee/custodyvault/internal/ledger"
	"github.com/punchamoorthee/custodyvault/internal/registry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	reg, err := registry.NewPostgres(cfg.DBSource)
	if err != nil {
		log.Fatalf("Unable to connect to registry: %v", err)
	}
	defer reg.Close()

	// Initialize Layers
	hub := events.NewHub()
	accessGate := gate.New(cfg.Admin, hub)
	vault := ledger.New(cfg.Custodian, reg, accessGate, hub)

	openRegistry := func(source string) (ledger.Registry, error) {
		return registry.NewPostgres(source)
	}
	handler := api.NewHandler(vault, accessGate, hub, openRegistry)

	log.Printf("Custody vault starting on :%s (custodian=%s, env=%s)", cfg.Port, cfg.Custodian, cfg.Env)
	if err := http.ListenAndServe(":"+cfg.Port, handler.Router()); err != nil {
		log.Fatal(err)
	}
}
