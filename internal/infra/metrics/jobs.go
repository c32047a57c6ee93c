package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(chatJobsProcessedTotal, chatJobRetriesTotal, chatJobsStuckTotal, chatJobsInFlight)
}

var chatJobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chat_jobs_processed_total",
		Help: "Total number of chat jobs driven to a terminal state, labeled by status.",
	},
	[]string{"status"}, // 'done', 'failed'
)

var chatJobRetriesTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "chat_job_retries_total",
		Help: "Total number of provider retries performed across all jobs.",
	},
)

var chatJobsStuckTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "chat_jobs_stuck_total",
		Help: "Jobs left in processing because the terminal write failed twice.",
	},
)

var chatJobsInFlight = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "chat_jobs_in_flight",
		Help: "Jobs currently held by a runner.",
	},
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncJob(status string) {
	chatJobsProcessedTotal.WithLabelValues(norm(status)).Inc()
}

func IncJobRetry() { chatJobRetriesTotal.Inc() }

func IncJobStuck() { chatJobsStuckTotal.Inc() }

func JobStarted()  { chatJobsInFlight.Inc() }
func JobFinished() { chatJobsInFlight.Dec() }
