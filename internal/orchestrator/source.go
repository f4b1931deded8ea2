package orchestrator

import (
    "context"
    "fmt"
    "io"
    "net/http"
    "os"
    "path/filepath"
    "strings"

    "github.com/rs/zerolog/log"

    "github.com/local/labelsorter/internal/storage"
)

// Temp file name prefixes; CleanupTemps only touches these.
const (
    httpTempPrefix   = "lblhttp-"
    s3TempPrefix     = "lbls3-"
    resultTempPrefix = "lblout-"
)

// ensureLocalPDF returns a local file path for a PDF referenced by ref and an optional temp path to remove.
// Supports:
// - file://path or absolute/relative filesystem paths
// - http(s):// URLs (downloads to temp)
// - s3://bucket/key (downloads to temp via AWS SDK v2)
func (o *Orchestrator) ensureLocalPDF(ctx context.Context, ref string) (string, string, error) {
    if i := strings.Index(ref, "#"); i >= 0 { ref = ref[:i] }
    switch {
    case strings.HasPrefix(ref, "file://"):
        return strings.TrimPrefix(ref, "file://"), "", nil
    case strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://"):
        p, err := downloadHTTPToTemp(ctx, o.httpClient(), ref)
        return p, p, err
    case strings.HasPrefix(ref, "s3://"):
        p, err := o.downloadS3ToTemp(ctx, ref)
        return p, p, err
    default:
        return ref, "", nil
    }
}

func (o *Orchestrator) httpClient() *http.Client {
    if o.deps.HTTPClient != nil { return o.deps.HTTPClient }
    return http.DefaultClient
}

func downloadHTTPToTemp(ctx context.Context, client *http.Client, url string) (string, error) {
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
    if err != nil { return "", err }
    resp, err := client.Do(req)
    if err != nil { return "", fmt.Errorf("download %s: %w", url, err) }
    defer resp.Body.Close()
    if resp.StatusCode != http.StatusOK { return "", fmt.Errorf("download %s: http %d", url, resp.StatusCode) }
    return copyToTemp(httpTempPrefix, resp.Body)
}

func (o *Orchestrator) downloadS3ToTemp(ctx context.Context, s3url string) (string, error) {
    bucket, key, err := storage.ParseURL(s3url)
    if err != nil { return "", err }

    opts := o.opts.S3
    opts.Bucket = bucket
    cli, err := storage.NewS3Client(ctx, opts)
    if err != nil { return "", err }

    f, err := os.CreateTemp("", s3TempPrefix+"*.pdf")
    if err != nil { return "", err }
    p := f.Name()
    _, err = cli.Download(ctx, key, f)
    if cerr := f.Close(); err == nil { err = cerr }
    if err != nil { os.Remove(p); return "", err }
    log.Info().Str("bucket", bucket).Str("key", key).Str("file", filepath.Base(p)).Msg("downloaded s3 pdf to temp")
    return p, nil
}

func copyToTemp(prefix string, r io.Reader) (string, error) {
    f, err := os.CreateTemp("", prefix+"*.pdf")
    if err != nil { return "", err }
    if _, err := io.Copy(f, r); err != nil {
        f.Close()
        os.Remove(f.Name())
        return "", err
    }
    if err := f.Close(); err != nil {
        os.Remove(f.Name())
        return "", err
    }
    return f.Name(), nil
}

// refName is the display name of a source reference, used for the output filename.
func refName(ref string) string {
    if i := strings.IndexAny(ref, "#?"); i >= 0 { ref = ref[:i] }
    ref = strings.TrimPrefix(ref, "file://")
    if i := strings.LastIndex(ref, "/"); i >= 0 { ref = ref[i+1:] }
    return ref
}
