// Package metrics defines the custom Prometheus metrics of the catalog
// service. It is the single source of truth for metric names, labels, and
// help strings.
//
// All metrics are registered with the default Prometheus registry through
// promauto, so importing the package is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "catalog"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "missing_fields", "invalid_credentials",
//     "not_authorized" or "misconfigured"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "login_attempts_total",
		Help:      "Total number of admin login attempts, by result.",
	},
	[]string{"result"},
)

// CredentialVerificationsTotal counts credential checks.
// Label:
//   - result: "valid", "invalid" or "revoked"
var CredentialVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "verifications_total",
		Help:      "Total number of session credential verifications, by result.",
	},
	[]string{"result"},
)

// ── Product metrics ───────────────────────────────────────────────────────────

// ProductMutationsTotal counts product writes.
// Labels:
//   - op: "create", "update" or "delete"
//   - result: "ok", "not_found", "invalid" or "error"
var ProductMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "product_mutations_total",
		Help:      "Total number of product mutations, by operation and result.",
	},
	[]string{"op", "result"},
)

// ProductsStored tracks the size of the product collection after each load
// or successful write.
var ProductsStored = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "products_stored",
		Help:      "Current number of products in the collection.",
	},
)

// StoreWriteDuration measures the full read-modify-write-persist cycle,
// including the wait for the writer lock.
// Label:
//   - op: "create", "update", "delete" or "reload"
var StoreWriteDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "write_duration_seconds",
		Help:      "Duration of product store writes including lock wait and fsync.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"op"},
)
