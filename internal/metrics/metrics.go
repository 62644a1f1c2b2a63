// Package metrics exposes the engine's prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TicketsCreated counts new tickets by entry source.
	TicketsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zapdesk_tickets_created_total",
		Help: "Total number of tickets created",
	}, []string{"entry_source"})

	// TicketsReused counts find-or-create calls resolved to an existing ticket.
	TicketsReused = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zapdesk_tickets_reused_total",
		Help: "Total number of find-or-create calls that matched an existing ticket",
	}, []string{"entry_source"})

	// LockTimeouts counts creation-mutex acquisition timeouts.
	LockTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zapdesk_lock_timeouts_total",
		Help: "Total number of ticket lock acquisition timeouts",
	})

	// AccessDenied counts ticket reads rejected by the access evaluator.
	AccessDenied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zapdesk_access_denied_total",
		Help: "Total number of ticket accesses denied by the tag permission check",
	})

	// MessagesIngested counts persisted messages.
	MessagesIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zapdesk_messages_ingested_total",
		Help: "Total number of messages ingested",
	})

	// WelcomeFailures counts welcome-message dispatch errors (best effort,
	// never propagated).
	WelcomeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zapdesk_welcome_dispatch_failures_total",
		Help: "Total number of failed welcome message dispatches",
	})

	// TicketsAutoClosed counts tickets closed by the pending auto-close job.
	TicketsAutoClosed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zapdesk_tickets_autoclosed_total",
		Help: "Total number of pending tickets closed by the scheduler",
	})
)
