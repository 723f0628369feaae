// Package metrics defines and registers all custom Prometheus metrics for
// the ticketing bridge. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ticketing"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenRefreshTotal counts token refresh attempts.
// Label:
//   - result: "success", "not_eligible", or "error"
var TokenRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_total",
		Help:      "Total number of token refresh attempts, by result.",
	},
	[]string{"result"},
)

// ── Ticket metrics ────────────────────────────────────────────────────────────

// TicketSearchesTotal counts ticket search requests.
// Label:
//   - result: "success" or "error"
var TicketSearchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ticket_searches_total",
		Help:      "Total number of ticket searches, by result.",
	},
	[]string{"result"},
)

// TicketSearchDuration measures end-to-end duration of a ticket search,
// including retries against the remote service.
var TicketSearchDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ticket_search_duration_seconds",
		Help:      "Duration of ticket searches including remote retries.",
		Buckets:   prometheus.DefBuckets,
	},
)

// TicketsCreatedTotal counts successfully created tickets.
var TicketsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tickets_created_total",
		Help:      "Total number of tickets created.",
	},
)
