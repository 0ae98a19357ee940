// Package metrics defines and registers all custom Prometheus metrics for the
// fleet auth service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry on package init through
// promauto and exposed by the router on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auth"

// ── Authentication metrics ────────────────────────────────────────────────────

// AuthAttemptsTotal counts authentication operations by outcome.
// Labels:
//   - flow: "register", "password" or "federated"
//   - result: "success", "invalid_credentials", "duplicate_email",
//     "federated_failed", "invalid_input" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attempts_total",
		Help:      "Total number of authentication attempts, by flow and result.",
	},
	[]string{"flow", "result"},
)

// UsersProvisionedTotal counts accounts created on first federated login.
// Label:
//   - provider: identity provider that asserted the identity (e.g. "google")
var UsersProvisionedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_provisioned_total",
		Help:      "Total number of users auto-provisioned by federated login.",
	},
	[]string{"provider"},
)

// ── Password hashing metrics ──────────────────────────────────────────────────

// PasswordHashDuration measures time spent inside the hasher on a pool worker.
// Label:
//   - op: "hash" or "verify"
var PasswordHashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of bcrypt hash and verify operations.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	},
	[]string{"op"},
)

// HashQueueDepth tracks the number of hashing jobs waiting for a worker.
var HashQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "hash_queue_depth",
		Help:      "Current number of password hashing jobs pending in the worker pool.",
	},
)
