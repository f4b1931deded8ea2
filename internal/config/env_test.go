package config

import (
    "testing"
    "time"
)

func TestFromEnvDefaults(t *testing.T) {
    for _, k := range []string{"LOG_LEVEL", "PORT", "WORKER_CONCURRENCY", "STATUS_BACKEND", "RESULT_BACKEND", "JOB_TIMEOUT", "ENVIRONMENT", "LOG_PRETTY"} {
        t.Setenv(k, "")
    }
    cfg := FromEnv()
    if cfg.Logging.Level != "info" || cfg.Logging.Pretty {
        t.Fatalf("logging = %+v", cfg.Logging)
    }
    if cfg.Server.Port != "8080" || cfg.Server.MaxUploadMB != 64 {
        t.Fatalf("server = %+v", cfg.Server)
    }
    if cfg.Worker.Concurrency != 4 || cfg.Worker.ExtractWorkers != 1 || cfg.Worker.JobTimeout != 5*time.Minute {
        t.Fatalf("worker = %+v", cfg.Worker)
    }
    if cfg.Status.Backend != "redis" || cfg.Storage.ResultBackend != "local" {
        t.Fatalf("backends = %q/%q", cfg.Status.Backend, cfg.Storage.ResultBackend)
    }
    if cfg.Axiom.Dataset != "dev_labelsorter" {
        t.Fatalf("dataset = %q", cfg.Axiom.Dataset)
    }
}

func TestFromEnvOverrides(t *testing.T) {
    t.Setenv("WORKER_CONCURRENCY", "0")
    t.Setenv("EXTRACT_WORKERS", "8")
    t.Setenv("JOB_TIMEOUT", "bogus")
    t.Setenv("STATUS_BACKEND", "Memory")
    t.Setenv("ENVIRONMENT", "dev")
    t.Setenv("LOG_PRETTY", "")
    t.Setenv("S3_ENDPOINT", "http://minio:9000")

    cfg := FromEnv()
    if cfg.Worker.Concurrency != 1 {
        t.Fatalf("concurrency = %d, want clamp to 1", cfg.Worker.Concurrency)
    }
    if cfg.Worker.ExtractWorkers != 8 {
        t.Fatalf("extract workers = %d", cfg.Worker.ExtractWorkers)
    }
    if cfg.Worker.JobTimeout != 5*time.Minute {
        t.Fatalf("invalid duration must fall back, got %v", cfg.Worker.JobTimeout)
    }
    if cfg.Status.Backend != "memory" {
        t.Fatalf("backend = %q", cfg.Status.Backend)
    }
    if cfg.Storage.Endpoint != "http://minio:9000" {
        t.Fatalf("endpoint = %q", cfg.Storage.Endpoint)
    }
    if !cfg.Logging.Pretty {
        t.Fatal("dev environment should default to pretty logs")
    }
}
