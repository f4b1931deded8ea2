package logger

import (
    "context"
    "encoding/json"
    "fmt"
    "io"
    "os"
    "path/filepath"
    "sync"
    "time"

    "github.com/axiomhq/axiom-go/axiom"
    "github.com/axiomhq/axiom-go/axiom/ingest"
    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"
    lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// DefaultService tags every event.
const DefaultService = "labelsorter"

const (
    axiomBuffer    = 1000
    axiomBatchSize = 200
    axiomTimeout   = 15 * time.Second
)

// Options defines logger initialization parameters.
type Options struct {
    Level      string
    Pretty     bool
    File       string
    MaxSizeMB  int
    MaxBackups int
    MaxAgeDays int
    Compress   bool
    Service    string
    Console    io.Writer // defaults to os.Stdout

    // Axiom forwarding, info and above
    SendToAxiom  bool
    AxiomAPIKey  string
    AxiomOrgID   string
    AxiomDataset string
    AxiomFlush   time.Duration
}

var batcher *axiomBatcher

// Init replaces the global zerolog logger. Axiom failures are reported on stderr
// and logging continues without forwarding.
func Init(opts Options) error {
    if opts.Service == "" { opts.Service = DefaultService }
    if opts.Console == nil { opts.Console = os.Stdout }

    out, err := outputs(opts)
    if err != nil { return err }

    zerolog.TimeFieldFormat = time.RFC3339
    lvl, err := zerolog.ParseLevel(opts.Level)
    if err != nil || opts.Level == "" { lvl = zerolog.InfoLevel }

    log.Logger = zerolog.New(io.MultiWriter(out...)).Level(lvl).With().Timestamp().Str("service", opts.Service).Logger()
    return nil
}

func outputs(opts Options) ([]io.Writer, error) {
    var out []io.Writer
    if opts.File != "" {
        if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
            return nil, fmt.Errorf("create logs dir: %w", err)
        }
        out = append(out, &lumberjack.Logger{
            Filename:   opts.File,
            MaxSize:    opts.MaxSizeMB,
            MaxBackups: opts.MaxBackups,
            MaxAge:     opts.MaxAgeDays,
            Compress:   opts.Compress,
        })
    }

    if opts.Pretty {
        out = append(out, zerolog.ConsoleWriter{Out: opts.Console, TimeFormat: time.RFC3339})
    } else {
        out = append(out, opts.Console)
    }

    if opts.SendToAxiom && opts.AxiomAPIKey != "" {
        b, err := newAxiomBatcher(opts.AxiomAPIKey, opts.AxiomOrgID, opts.AxiomDataset, opts.AxiomFlush)
        if err != nil {
            fmt.Fprintf(os.Stderr, "Axiom disabled: %v\n", err)
        } else {
            batcher = b
            out = append(out, &forwarder{sink: b, service: opts.Service})
        }
    }
    return out, nil
}

// Close flushes pending Axiom events.
func Close() {
    if batcher != nil {
        batcher.Close()
        batcher = nil
    }
}

// ForJob returns a child of the global logger tagged with the job id.
func ForJob(jobID string) zerolog.Logger {
    return log.Logger.With().Str("job_id", jobID).Logger()
}

type eventSink interface {
    Send(ev axiom.Event)
}

// forwarder turns zerolog JSON lines into Axiom events, skipping debug and trace.
type forwarder struct {
    sink    eventSink
    service string
}

func (f *forwarder) Write(p []byte) (int, error) {
    ev := axiom.Event{}
    if err := json.Unmarshal(p, &ev); err != nil {
        ev = axiom.Event{"message": string(p), "level": "info"}
    }
    switch ev["level"] {
    case "debug", "trace":
        return len(p), nil
    }
    ev["service"] = f.service
    if _, ok := ev[ingest.TimestampField]; !ok {
        ev[ingest.TimestampField] = time.Now()
    }
    f.sink.Send(ev)
    return len(p), nil
}

// axiomBatcher ingests events in batches from a background goroutine.
type axiomBatcher struct {
    client  *axiom.Client
    dataset string
    events  chan axiom.Event
    stop    chan struct{}
    wg      sync.WaitGroup
}

func newAxiomBatcher(token, orgID, dataset string, every time.Duration) (*axiomBatcher, error) {
    if dataset == "" { dataset = "dev_" + DefaultService }
    if every <= 0 { every = 10 * time.Second }
    opts := []axiom.Option{axiom.SetToken(token)}
    if orgID != "" { opts = append(opts, axiom.SetOrganizationID(orgID)) }
    c, err := axiom.NewClient(opts...)
    if err != nil { return nil, err }

    b := &axiomBatcher{
        client:  c,
        dataset: dataset,
        events:  make(chan axiom.Event, axiomBuffer),
        stop:    make(chan struct{}),
    }
    b.wg.Add(1)
    go b.run(every)
    return b, nil
}

// Send never blocks; events are dropped while the buffer is full.
func (b *axiomBatcher) Send(ev axiom.Event) {
    select {
    case b.events <- ev:
    default:
    }
}

func (b *axiomBatcher) run(every time.Duration) {
    defer b.wg.Done()
    ticker := time.NewTicker(every)
    defer ticker.Stop()

    batch := make([]axiom.Event, 0, axiomBatchSize)
    flush := func() {
        if len(batch) == 0 { return }
        ctx, cancel := context.WithTimeout(context.Background(), axiomTimeout)
        _, _ = b.client.IngestEvents(ctx, b.dataset, batch)
        cancel()
        batch = batch[:0]
    }
    for {
        select {
        case <-b.stop:
            for {
                select {
                case ev := <-b.events:
                    batch = append(batch, ev)
                default:
                    flush()
                    return
                }
            }
        case <-ticker.C:
            flush()
        case ev := <-b.events:
            batch = append(batch, ev)
            if len(batch) >= axiomBatchSize { flush() }
        }
    }
}

func (b *axiomBatcher) Close() {
    close(b.stop)
    b.wg.Wait()
}
