package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	depositsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "custody_deposits_total",
		Help: "Completed deposits",
	})

	withdrawalsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "custody_withdrawals_total",
		Help: "Completed withdrawals",
	})

	itemsStakedGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "custody_items_staked",
		Help: "Items currently in custody",
	})

	uniqueStakersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "custody_unique_stakers",
		Help: "Owners with at least one item in custody",
	})
)
