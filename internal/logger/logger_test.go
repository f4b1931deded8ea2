package logger

import (
    "bytes"
    "encoding/json"
    "os"
    "path/filepath"
    "strings"
    "testing"

    "github.com/axiomhq/axiom-go/axiom"
    "github.com/axiomhq/axiom-go/axiom/ingest"
    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"
)

func TestInitWritesJSONToConsoleAndFile(t *testing.T) {
    dir := t.TempDir()
    file := filepath.Join(dir, "logs", "app.log")
    var console bytes.Buffer

    if err := Init(Options{Level: "debug", File: file, MaxSizeMB: 1, Console: &console}); err != nil {
        t.Fatalf("Init: %v", err)
    }
    defer Close()

    l := ForJob("job-1")
    l.Info().Int("pairs", 3).Msg("sorted")

    var ev map[string]any
    line := strings.TrimSpace(console.String())
    if err := json.Unmarshal([]byte(line), &ev); err != nil {
        t.Fatalf("console output is not JSON: %q", line)
    }
    if ev["service"] != DefaultService || ev["job_id"] != "job-1" || ev["message"] != "sorted" {
        t.Fatalf("unexpected event %v", ev)
    }

    b, err := os.ReadFile(file)
    if err != nil {
        t.Fatalf("read log file: %v", err)
    }
    if !strings.Contains(string(b), `"job_id":"job-1"`) {
        t.Fatalf("log file missing event: %s", b)
    }
}

func TestInitLevelFallback(t *testing.T) {
    var console bytes.Buffer
    if err := Init(Options{Level: "nope", Console: &console}); err != nil {
        t.Fatal(err)
    }
    log.Debug().Msg("hidden")
    log.Info().Msg("shown")
    out := console.String()
    if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
        t.Fatalf("unexpected output %q", out)
    }
}

type captureSink struct{ events []axiom.Event }

func (c *captureSink) Send(ev axiom.Event) { c.events = append(c.events, ev) }

func TestForwarderSkipsDebug(t *testing.T) {
    sink := &captureSink{}
    l := zerolog.New(&forwarder{sink: sink, service: "svc"}).Level(zerolog.TraceLevel)

    l.Debug().Msg("noise")
    l.Trace().Msg("noise")
    l.Warn().Str("job_id", "j1").Msg("label page text unavailable")

    if len(sink.events) != 1 {
        t.Fatalf("forwarded %d events, want 1", len(sink.events))
    }
    ev := sink.events[0]
    if ev["service"] != "svc" || ev["level"] != "warn" || ev["job_id"] != "j1" {
        t.Fatalf("event = %v", ev)
    }
    if _, ok := ev[ingest.TimestampField]; !ok {
        t.Fatalf("event without timestamp: %v", ev)
    }
}

func TestForwarderKeepsNonJSON(t *testing.T) {
    sink := &captureSink{}
    if _, err := (&forwarder{sink: sink, service: "svc"}).Write([]byte("plain line")); err != nil {
        t.Fatal(err)
    }
    if len(sink.events) != 1 || sink.events[0]["message"] != "plain line" {
        t.Fatalf("events = %v", sink.events)
    }
}
