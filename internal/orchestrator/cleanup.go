package orchestrator

import (
    "os"
    "path/filepath"
    "strings"
    "time"
)

// CleanupTemps removes temporary files created by our download and result helpers
// (lblhttp-*, lbls3-*, lblout-*) that are older than maxAge.
func CleanupTemps(maxAge time.Duration) int {
    return cleanupDir(os.TempDir(), maxAge, time.Now())
}

func cleanupDir(dir string, maxAge time.Duration, now time.Time) int {
    removed := 0
    entries, err := os.ReadDir(dir)
    if err != nil { return 0 }
    for _, e := range entries {
        if e.IsDir() || !isOwnTemp(e.Name()) { continue }
        info, err := e.Info()
        if err != nil { continue }
        if now.Sub(info.ModTime()) >= maxAge {
            if os.Remove(filepath.Join(dir, e.Name())) == nil { removed++ }
        }
    }
    return removed
}

func isOwnTemp(name string) bool {
    for _, p := range []string{httpTempPrefix, s3TempPrefix, resultTempPrefix} {
        if strings.HasPrefix(name, p) { return true }
    }
    return false
}
