package orchestrator

import (
    "context"
    "fmt"
    "io"
    "os"
    "path/filepath"
)

// ResultSink stores sorted documents and opens them again for download.
type ResultSink interface {
    Save(ctx context.Context, jobID, name, path string) (string, error)
    Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

// LocalResults keeps sorted documents under Dir as "<job>_<name>".
type LocalResults struct {
    Dir string
}

func (l LocalResults) dir() string {
    if l.Dir == "" { return filepath.Join("uploads", "results") }
    return l.Dir
}

// Save copies the file at path into the results directory and returns the stored path.
func (l LocalResults) Save(_ context.Context, jobID, name, path string) (string, error) {
    dir := l.dir()
    if err := os.MkdirAll(dir, 0o755); err != nil { return "", err }
    dst := filepath.Join(dir, fmt.Sprintf("%s_%s", jobID, filepath.Base(name)))

    in, err := os.Open(path)
    if err != nil { return "", err }
    defer in.Close()
    out, err := os.Create(dst)
    if err != nil { return "", err }
    if _, err := io.Copy(out, in); err != nil {
        out.Close()
        return "", fmt.Errorf("save result: %w", err)
    }
    if err := out.Close(); err != nil { return "", err }
    return dst, nil
}

// Open opens a stored result. Only paths inside the results directory are served.
func (l LocalResults) Open(_ context.Context, ref string) (io.ReadCloser, error) {
    root, err := filepath.Abs(l.dir())
    if err != nil { return nil, err }
    p, err := filepath.Abs(ref)
    if err != nil { return nil, err }
    if filepath.Dir(p) != root { return nil, fmt.Errorf("result %s outside %s", ref, root) }
    return os.Open(p)
}
