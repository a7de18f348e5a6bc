package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesScanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "repbot_messages_scanned_total",
		Help: "The total number of group messages scanned for reputation signals",
	})

	MentionsExtracted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repbot_mentions_extracted_total",
		Help: "The total number of reputation mentions extracted from messages",
	}, []string{"sentiment"})

	EntriesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "repbot_entries_stored_total",
		Help: "The total number of reputation entries persisted",
	})

	Queries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repbot_queries_total",
		Help: "The total number of reputation lookups by source",
	}, []string{"source"})

	BroadcastMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repbot_broadcast_messages_total",
		Help: "The total number of broadcast deliveries by status",
	}, []string{"status"})

	EntriesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "repbot_entries_gauge",
		Help: "Current number of stored reputation entries",
	})

	ActiveGroupsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "repbot_active_groups_gauge",
		Help: "Current number of actively tracked groups",
	})
)
