// Package metrics defines the custom Prometheus metrics of the user API.
// Metrics are registered with the default registry on package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts POST /user/auth outcomes.
// Label:
//   - result: "success", "invalid_credentials", "unknown_user", "rejected" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenChecksTotal counts authorization gate decisions.
// Label:
//   - result: "ok", "missing", "malformed", "signature", "claim_missing", "expired", "revoked" or "error"
var TokenChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_checks_total",
		Help:      "Total number of bearer token checks on protected routes, by result.",
	},
	[]string{"result"},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// RegistrationsTotal counts registration outcomes.
// Label:
//   - result: "created", "rejected" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration requests, by result.",
	},
	[]string{"result"},
)

// PasswordChangesTotal counts password rotation outcomes.
var PasswordChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_changes_total",
		Help:      "Total number of password change requests, by result.",
	},
	[]string{"result"},
)

// AccountsDeletedTotal counts accounts removed by their owners.
var AccountsDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_deleted_total",
		Help:      "Total number of deleted accounts.",
	},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsTotal counts account events handled by the audit dispatcher.
// Label:
//   - outcome: "recorded", "failed" or "dropped"
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of account events handled by the audit pipeline, by outcome.",
	},
	[]string{"outcome"},
)

// ObserveAuditEvent is a queue.WithObserver callback.
func ObserveAuditEvent(outcome string) {
	AuditEventsTotal.WithLabelValues(outcome).Inc()
}
