package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_login_attempts_total",
		Help: "Total number of login attempts (successful and failed).",
	}, []string{"status"}) // status: "success" or "failed"

	BookmarkCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_bookmark_created_total",
		Help: "Total number of bookmarks created.",
	})
	BookmarkUpdatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_bookmark_updated_total",
		Help: "Total number of bookmarks updated.",
	})
	BookmarkDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_bookmark_deleted_total",
		Help: "Total number of bookmarks deleted.",
	})
	SearchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_searches_total",
		Help: "Total number of debounced search fetches issued.",
	})
	ChangeEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_change_events_total",
		Help: "Total number of realtime change events received.",
	}, []string{"kind"})
)
