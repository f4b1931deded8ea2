package orchestrator

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "mime"
    "net/http"
    "os"
    "path/filepath"
    "strings"
    "sync"
    "time"

    "github.com/google/uuid"
    "github.com/rs/zerolog/log"
    "golang.org/x/sync/semaphore"

    "github.com/local/labelsorter/internal/labels"
    "github.com/local/labelsorter/internal/metrics"
    "github.com/local/labelsorter/internal/pdfdoc"
    "github.com/local/labelsorter/internal/report"
    "github.com/local/labelsorter/internal/storage"
)

type Status struct {
    Status   string
    Progress int
    Message  string
    Start    *time.Time
    End      *time.Time
    Metadata map[string]any
}

type StatusStore interface {
    Set(ctx context.Context, jobID string, st Status) error
    Get(ctx context.Context, jobID string) (Status, bool, error)
}

type Dependencies struct {
    Status     StatusStore
    Results    ResultSink
    HTTPClient *http.Client // for http(s):// sources; nil uses http.DefaultClient
}

// Options tunes job execution.
type Options struct {
    Concurrency    int
    ExtractWorkers int
    JobTimeout     time.Duration
    TempMaxAge     time.Duration
    UploadDir      string
    MaxUploadMB    int64
    S3             storage.Options // region/credentials for s3:// sources; Bucket is the default for bare keys
}

type Orchestrator struct {
    deps   Dependencies
    opts   Options
    sem    *semaphore.Weighted
    wg     sync.WaitGroup
    ctx    context.Context
    cancel context.CancelFunc
    now    func() time.Time
}

func New(deps Dependencies, opts Options) *Orchestrator {
    if opts.Concurrency <= 0 { opts.Concurrency = 1 }
    if opts.UploadDir == "" { opts.UploadDir = "uploads" }
    if opts.MaxUploadMB <= 0 { opts.MaxUploadMB = 64 }
    ctx, cancel := context.WithCancel(context.Background())
    return &Orchestrator{
        deps:   deps,
        opts:   opts,
        sem:    semaphore.NewWeighted(int64(opts.Concurrency)),
        ctx:    ctx,
        cancel: cancel,
        now:    time.Now,
    }
}

func (o *Orchestrator) RegisterRoutes(mux *http.ServeMux) {
    mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request){ w.WriteHeader(http.StatusOK); _,_ = w.Write([]byte("ok")) })
    mux.Handle("/metrics", metrics.Handler())
    mux.HandleFunc("/sort_upload", o.handleSortUpload)
    mux.HandleFunc("/sort_file", o.handleSortFile)
    mux.HandleFunc("/progress/", o.handleProgress)
    mux.HandleFunc("/download/", o.handleDownload)
    mux.HandleFunc("/stats/", o.handleStats)
}

// Shutdown stops accepting work and waits for running jobs until ctx is done,
// then cancels whatever is still running.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
    done := make(chan struct{})
    go func() { o.wg.Wait(); close(done) }()
    select {
    case <-done:
        o.cancel()
        return nil
    case <-ctx.Done():
        o.cancel()
        <-done
        return ctx.Err()
    }
}

// Wait blocks until all submitted jobs have finished.
func (o *Orchestrator) Wait() { o.wg.Wait() }

// Submit creates a job for ref and runs it in the background.
// cleanup, if set, is removed once the job finishes.
func (o *Orchestrator) Submit(ctx context.Context, ref, name, source, cleanup string) (string, error) {
    jobID := uuid.NewString()
    start := o.now()
    err := o.deps.Status.Set(ctx, jobID, Status{Status: "queued", Progress: 0, Message: "queued", Start: &start,
        Metadata: map[string]any{"source": source, "input_name": name}})
    if err != nil { return "", fmt.Errorf("init job status: %w", err) }

    log.Info().Str("job_id", jobID).Str("file", ref).Str("source", source).Msg("job created")

    o.wg.Add(1)
    go func() {
        defer o.wg.Done()
        if cleanup != "" { defer os.Remove(cleanup) }
        jctx, cancel := o.jobContext()
        defer cancel()
        if err := o.sem.Acquire(jctx, 1); err != nil {
            end := o.now()
            _ = o.deps.Status.Set(context.WithoutCancel(jctx), jobID, Status{Status: "failed", Message: "not started: " + err.Error(), Start: &start, End: &end})
            return
        }
        defer o.sem.Release(1)
        o.runJob(jctx, jobID, ref, name)
    }()
    return jobID, nil
}

type sortReq struct {
    FilePath string `json:"file_path"`
    FileURL  string `json:"file_url"`
}

type sortResp struct {
    Status   string                 `json:"status"`
    JobID    string                 `json:"job_id"`
    Message  string                 `json:"message"`
    Metadata map[string]interface{} `json:"metadata,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(code)
    _ = json.NewEncoder(w).Encode(v)
}

// handleSortFile sorts a document referenced by s3://, http(s):// or a bare key in the default bucket.
func (o *Orchestrator) handleSortFile(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed); return
    }
    defer r.Body.Close()
    var req sortReq
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        http.Error(w, "invalid json", http.StatusBadRequest); return
    }
    ref := req.FilePath
    if ref == "" { ref = req.FileURL }
    if ref == "" {
        http.Error(w, "missing file_path/file_url", http.StatusBadRequest); return
    }
    if strings.HasPrefix(ref, "file://") {
        http.Error(w, "local files must be uploaded", http.StatusBadRequest); return
    }
    if !strings.HasPrefix(ref, "s3://") && !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
        if o.opts.S3.Bucket == "" {
            http.Error(w, "no default bucket for bare file_path", http.StatusBadRequest); return
        }
        ref = storage.URL(o.opts.S3.Bucket, ref)
    }

    jobID, err := o.Submit(r.Context(), ref, refName(ref), "api", "")
    if err != nil {
        log.Error().Err(err).Msg("submit failed")
        http.Error(w, "status store unavailable", http.StatusServiceUnavailable); return
    }
    writeJSON(w, http.StatusCreated, sortResp{Status: "ok", JobID: jobID, Message: "Sorting job created",
        Metadata: map[string]any{"file": ref, "timestamp": o.now().Format(time.RFC3339)}})
}

// handleSortUpload accepts a multipart upload (field "file") and sorts it.
func (o *Orchestrator) handleSortUpload(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost { w.WriteHeader(http.StatusMethodNotAllowed); return }
    limit := o.opts.MaxUploadMB << 20
    r.Body = http.MaxBytesReader(w, r.Body, limit)
    if err := r.ParseMultipartForm(limit); err != nil {
        http.Error(w, "invalid multipart form", http.StatusBadRequest); return
    }
    file, hdr, err := r.FormFile("file")
    if err != nil { http.Error(w, "missing file", http.StatusBadRequest); return }
    defer file.Close()

    if err := os.MkdirAll(o.opts.UploadDir, 0o755); err != nil { http.Error(w, "cannot create upload dir", 500); return }
    name := filepath.Base(hdr.Filename)
    if name == "." || name == string(filepath.Separator) || name == "" { name = "labels.pdf" }
    out, err := os.CreateTemp(o.opts.UploadDir, "upload-*.pdf")
    if err != nil { http.Error(w, "cannot save upload", 500); return }
    localPath := out.Name()
    if _, err := io.Copy(out, file); err != nil { out.Close(); os.Remove(localPath); http.Error(w, "write failed", 500); return }
    _ = out.Close()

    if err := detectPDF(localPath); err != nil {
        os.Remove(localPath)
        if errors.Is(err, pdfdoc.ErrNotPDF) {
            http.Error(w, err.Error(), http.StatusUnsupportedMediaType); return
        }
        http.Error(w, "cannot inspect upload", 500); return
    }

    jobID, err := o.Submit(r.Context(), "file://"+localPath, name, "upload", localPath)
    if err != nil {
        os.Remove(localPath)
        http.Error(w, "status store unavailable", http.StatusServiceUnavailable); return
    }
    writeJSON(w, http.StatusCreated, sortResp{Status: "ok", JobID: jobID, Message: "Upload job created"})
}

func (o *Orchestrator) handleProgress(w http.ResponseWriter, r *http.Request) {
    id := strings.TrimPrefix(r.URL.Path, "/progress/")
    st, ok, err := o.deps.Status.Get(r.Context(), id)
    if err != nil { http.Error(w, "error", 500); return }
    if !ok {
        http.Error(w, "not found", http.StatusNotFound); return
    }
    writeJSON(w, http.StatusOK, map[string]any{
        "success":    st.Status == "success",
        "job_id":     id,
        "status":     st.Status,
        "progress":   st.Progress,
        "message":    st.Message,
        "pairs_done": intFromMeta(st.Metadata, "pairs_done"),
        "pairs_total": intFromMeta(st.Metadata, "pairs_total"),
        "start_time": st.Start,
        "end_time":   st.End,
    })
}

// finished returns the status of a successful job or writes the matching error.
func (o *Orchestrator) finished(w http.ResponseWriter, r *http.Request, id string) (Status, bool) {
    st, ok, err := o.deps.Status.Get(r.Context(), id)
    if err != nil { http.Error(w, "error", 500); return Status{}, false }
    if !ok { http.Error(w, "not found", http.StatusNotFound); return Status{}, false }
    switch st.Status {
    case "success":
        return st, true
    case "failed":
        http.Error(w, "job failed: "+st.Message, http.StatusConflict)
    default:
        http.Error(w, "not ready", http.StatusAccepted)
    }
    return Status{}, false
}

// handleDownload serves the sorted PDF under its derived output name.
func (o *Orchestrator) handleDownload(w http.ResponseWriter, r *http.Request) {
    id := strings.TrimPrefix(r.URL.Path, "/download/")
    st, ok := o.finished(w, r, id)
    if !ok { return }
    ref, _ := st.Metadata["result_ref"].(string)
    if ref == "" { http.Error(w, "result not available", http.StatusNotFound); return }
    rc, err := o.deps.Results.Open(r.Context(), ref)
    if err != nil {
        log.Error().Err(err).Str("job_id", id).Msg("open result failed")
        http.Error(w, "failed to read", 500); return
    }
    defer rc.Close()

    name, _ := st.Metadata["output_name"].(string)
    if name == "" { name = report.OutputFilename("", o.now()) }
    w.Header().Set("Content-Type", "application/pdf")
    w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
    _, _ = io.Copy(w, rc)
}

// handleStats renders per-group counts: text (default), markdown or json.
func (o *Orchestrator) handleStats(w http.ResponseWriter, r *http.Request) {
    id := strings.TrimPrefix(r.URL.Path, "/stats/")
    st, ok := o.finished(w, r, id)
    if !ok { return }
    groups, err := groupsFromMeta(st.Metadata)
    if err != nil { http.Error(w, "corrupt stats", 500); return }

    switch r.URL.Query().Get("format") {
    case "markdown", "md":
        w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
        title := "Label groups"
        if in, _ := st.Metadata["input_name"].(string); in != "" { title += ": " + in }
        _ = report.Markdown(w, title, groups)
    case "json":
        writeJSON(w, http.StatusOK, map[string]any{
            "job_id":        id,
            "groups":        groups,
            "pairs_total":   intFromMeta(st.Metadata, "pairs_total"),
            "unrecognized":  intFromMeta(st.Metadata, "unrecognized"),
            "pages_dropped": intFromMeta(st.Metadata, "pages_dropped"),
        })
    default:
        w.Header().Set("Content-Type", "text/plain; charset=utf-8")
        _ = report.Text(w, groups)
    }
}

func groupsFromMeta(m map[string]any) ([]labels.GroupCount, error) {
    raw, ok := m["groups"]
    if !ok || raw == nil { return nil, nil }
    b, err := json.Marshal(raw)
    if err != nil { return nil, err }
    var groups []labels.GroupCount
    if err := json.Unmarshal(b, &groups); err != nil { return nil, err }
    return groups, nil
}

func intFromMeta(m map[string]any, key string) int {
    if m == nil { return 0 }
    if v, ok := m[key]; ok {
        switch t := v.(type) {
        case float64: return int(t)
        case int: return t
        }
    }
    return 0
}
