// Package metrics defines and registers all custom Prometheus metrics for the
// QuickDesk API. It is the single source of truth for metric names, labels,
// and help strings. Metrics are registered with the default registry via
// promauto at package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "quickdesk"

// TicketsCreatedTotal counts newly opened tickets.
// Label:
//   - priority: "Low", "Medium", "High", or "Urgent"
var TicketsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tickets_created_total",
		Help:      "Total number of tickets created, by priority.",
	},
	[]string{"priority"},
)

// TicketStatusChangesTotal counts status transitions applied to tickets.
// Label:
//   - status: the newly applied status (e.g. "In Progress")
var TicketStatusChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ticket_status_changes_total",
		Help:      "Total number of ticket status changes, by new status.",
	},
	[]string{"status"},
)

// CommentsAddedTotal counts comments appended to tickets.
var CommentsAddedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "comments_added_total",
		Help:      "Total number of comments appended to tickets.",
	},
)

// VotesCastTotal counts vote toggles.
// Label:
//   - direction: "up" or "down"
var VotesCastTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_cast_total",
		Help:      "Total number of vote toggle operations, by direction.",
	},
	[]string{"direction"},
)

// NotificationsTotal counts notification delivery attempts.
// Labels:
//   - kind: "ticket_created", "ticket_updated", or "comment_added"
//   - outcome: "sent", "failed", or "deduped"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notification emails, by kind and outcome.",
	},
	[]string{"kind", "outcome"},
)
