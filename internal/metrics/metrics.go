package metrics

import (
    "net/http"
    "sync"
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
    jobsTotal = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "labelsorter",
            Name:      "jobs_total",
            Help:      "Sorting jobs by result (success, failed)",
        },
        []string{"result"},
    )

    jobDuration = prometheus.NewHistogram(
        prometheus.HistogramOpts{
            Namespace: "labelsorter",
            Name:      "job_duration_seconds",
            Help:      "Duration of sorting jobs, from open to saved result",
            Buckets:   prometheus.DefBuckets,
        },
    )

    labelsTotal = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "labelsorter",
            Name:      "labels_total",
            Help:      "Label pairs processed, by whether a product name was recognized",
        },
        []string{"recognized"},
    )

    droppedPages = prometheus.NewCounter(
        prometheus.CounterOpts{
            Namespace: "labelsorter",
            Name:      "dropped_pages_total",
            Help:      "Trailing unpaired pages left out of sorted documents",
        },
    )

    jobsInflight = prometheus.NewGauge(
        prometheus.GaugeOpts{
            Namespace: "labelsorter",
            Name:      "jobs_inflight",
            Help:      "Sorting jobs currently running",
        },
    )

    once sync.Once
)

// Init registers collectors. Safe to call more than once.
func Init() {
    once.Do(func() {
        prometheus.MustRegister(jobsTotal, jobDuration, labelsTotal, droppedPages, jobsInflight)
    })
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func ObserveJob(result string, dur time.Duration) {
    jobsTotal.WithLabelValues(result).Inc()
    jobDuration.Observe(dur.Seconds())
}

// AddLabels records a finished grouping: total pairs and how many fell back to the sentinel name.
func AddLabels(total, unrecognized int) {
    labelsTotal.WithLabelValues("true").Add(float64(total - unrecognized))
    labelsTotal.WithLabelValues("false").Add(float64(unrecognized))
}

func IncDropped() { droppedPages.Inc() }

func JobStarted()  { jobsInflight.Inc() }
func JobFinished() { jobsInflight.Dec() }
