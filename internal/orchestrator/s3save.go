package orchestrator

import (
    "context"
    "fmt"
    "io"
    "os"
    "path"
    "time"

    "github.com/local/labelsorter/internal/storage"
)

// S3Results uploads sorted documents to "<prefix>/<job>/<name>" in the client's bucket.
type S3Results struct {
    Client *storage.S3Client
    Prefix string
}

func (s S3Results) Save(ctx context.Context, jobID, name, p string) (string, error) {
    f, err := os.Open(p)
    if err != nil { return "", err }
    defer f.Close()

    key := path.Join(s.Prefix, jobID, path.Base(name))
    meta := map[string]string{
        "job_id":  jobID,
        "source":  "labelsorter",
        "created": time.Now().UTC().Format(time.RFC3339),
    }
    url, err := s.Client.Upload(ctx, key, f, "application/pdf", meta)
    if err != nil { return "", fmt.Errorf("failed to upload sorted PDF: %w", err) }
    return url, nil
}

func (s S3Results) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
    bucket, key, err := storage.ParseURL(ref)
    if err != nil { return nil, err }
    if bucket != s.Client.Bucket() {
        return nil, fmt.Errorf("result %s not in bucket %s", ref, s.Client.Bucket())
    }
    return s.Client.Open(ctx, key)
}
