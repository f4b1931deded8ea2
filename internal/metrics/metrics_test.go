package metrics

import (
    "io"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
    Init()
    Init()

    before := testutil.ToFloat64(labelsTotal.WithLabelValues("false"))
    AddLabels(5, 2)
    if got := testutil.ToFloat64(labelsTotal.WithLabelValues("false")) - before; got != 2 {
        t.Fatalf("unrecognized delta = %v, want 2", got)
    }

    ObserveJob("success", 150*time.Millisecond)
    IncDropped()

    rec := httptest.NewRecorder()
    Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
    body, _ := io.ReadAll(rec.Body)
    for _, name := range []string{"labelsorter_jobs_total", "labelsorter_labels_total", "labelsorter_dropped_pages_total"} {
        if !strings.Contains(string(body), name) {
            t.Errorf("metrics output missing %s", name)
        }
    }
}
