package orchestrator

import (
    "context"
    "fmt"
    "os"

    "github.com/local/labelsorter/internal/labels"
    "github.com/local/labelsorter/internal/logger"
    "github.com/local/labelsorter/internal/metrics"
    "github.com/local/labelsorter/internal/pdfdoc"
    "github.com/local/labelsorter/internal/report"
)

type document interface {
    labels.Document
    Close() error
}

// Document backends; swapped in tests.
var (
    detectPDF    = pdfdoc.Detect
    pageCount    = pdfdoc.PageCount
    reorderFile  = pdfdoc.ReorderFile
    openDocument = func(path string) (document, error) {
        d, err := pdfdoc.Open(path)
        if err != nil { return nil, err }
        return d, nil
    }
)

// SortFile groups the label pairs of the PDF at inPath and writes them, reordered, to outPath.
func SortFile(ctx context.Context, inPath, outPath string, g *labels.Grouper) (*labels.Grouping, error) {
    if err := detectPDF(inPath); err != nil { return nil, err }
    // fail before text extraction when there is not a single pair
    n, err := pageCount(inPath)
    if err != nil { return nil, err }
    if n < 2 { return nil, fmt.Errorf("group labels: %w (got %d)", labels.ErrTooFewPages, n) }

    doc, err := openDocument(inPath)
    if err != nil { return nil, err }
    defer doc.Close()

    res, err := g.Group(ctx, doc)
    if err != nil { return nil, err }
    if err := reorderFile(inPath, outPath, res.Order); err != nil { return nil, err }
    return res, nil
}

// runJob executes one sorting job and records its outcome in the status store.
func (o *Orchestrator) runJob(ctx context.Context, jobID, ref, name string) {
    l := logger.ForJob(jobID)
    start := o.now()
    metrics.JobStarted()
    defer metrics.JobFinished()

    // status writes must land even after the job context expired
    sctx := context.WithoutCancel(ctx)

    st, ok, err := o.deps.Status.Get(sctx, jobID)
    if err != nil || !ok { st = Status{Start: &start} }
    if st.Metadata == nil { st.Metadata = map[string]any{} }
    st.Status, st.Progress, st.Message = "processing", 1, "reading document"
    _ = o.deps.Status.Set(sctx, jobID, st)

    res, resultRef, outName, err := o.sortRef(ctx, jobID, ref, name, &st)
    end := o.now()
    st.End = &end
    if err != nil {
        l.Error().Err(err).Str("ref", ref).Msg("sorting job failed")
        metrics.ObserveJob("failed", end.Sub(start))
        st.Status, st.Message = "failed", err.Error()
        _ = o.deps.Status.Set(sctx, jobID, st)
        return
    }

    groups := labels.Summarize(res.Pairs)
    unrecognized := labels.Unrecognized(res.Pairs)
    metrics.AddLabels(len(res.Pairs), unrecognized)
    if res.Dropped { metrics.IncDropped() }
    metrics.ObserveJob("success", end.Sub(start))

    st.Status, st.Progress = "success", 100
    st.Message = fmt.Sprintf("sorted %d labels into %d groups", len(res.Pairs), len(groups))
    st.Metadata["pairs_total"] = len(res.Pairs)
    st.Metadata["pairs_done"] = len(res.Pairs)
    st.Metadata["pages_dropped"] = boolToInt(res.Dropped)
    st.Metadata["unrecognized"] = unrecognized
    st.Metadata["groups"] = groups
    st.Metadata["result_ref"] = resultRef
    st.Metadata["output_name"] = outName
    _ = o.deps.Status.Set(sctx, jobID, st)

    l.Info().
        Int("pairs", len(res.Pairs)).
        Int("groups", len(groups)).
        Int("unrecognized", unrecognized).
        Bool("dropped_page", res.Dropped).
        Dur("took", end.Sub(start)).
        Msg("sorting job done")

    if o.opts.TempMaxAge > 0 { CleanupTemps(o.opts.TempMaxAge) }
}

func (o *Orchestrator) sortRef(ctx context.Context, jobID, ref, name string, st *Status) (*labels.Grouping, string, string, error) {
    sctx := context.WithoutCancel(ctx)

    local, tmp, err := o.ensureLocalPDF(ctx, ref)
    if tmp != "" { defer os.Remove(tmp) }
    if err != nil { return nil, "", "", fmt.Errorf("fetch source: %w", err) }

    out, err := os.CreateTemp("", resultTempPrefix+"*.pdf")
    if err != nil { return nil, "", "", err }
    outPath := out.Name()
    out.Close()
    defer os.Remove(outPath)

    lastPct := st.Progress
    g := &labels.Grouper{
        Workers: o.opts.ExtractWorkers,
        OnPair: func(done, total int) {
            // 5..95 while extracting; saving takes the rest
            pct := 5 + done*90/total
            if pct == lastPct && done != total { return }
            lastPct = pct
            st.Progress = pct
            st.Message = fmt.Sprintf("%d/%d labels read", done, total)
            st.Metadata["pairs_total"] = total
            st.Metadata["pairs_done"] = done
            _ = o.deps.Status.Set(sctx, jobID, *st)
        },
    }
    res, err := SortFile(ctx, local, outPath, g)
    if err != nil { return nil, "", "", err }

    outName := report.OutputFilename(name, o.now())
    resultRef, err := o.deps.Results.Save(ctx, jobID, outName, outPath)
    if err != nil { return nil, "", "", fmt.Errorf("save result: %w", err) }
    return res, resultRef, outName, nil
}

func boolToInt(b bool) int { if b { return 1 }; return 0 }

// jobContext derives a job context bounded by the configured timeout.
func (o *Orchestrator) jobContext() (context.Context, context.CancelFunc) {
    if o.opts.JobTimeout > 0 { return context.WithTimeout(o.ctx, o.opts.JobTimeout) }
    return context.WithCancel(o.ctx)
}
