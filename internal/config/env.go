package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
    Level        string
    Pretty       bool
    File         string
    MaxSizeMB    int
    MaxBackups   int
    MaxAgeDays   int
    Compress     bool
}

// AxiomConfig holds Axiom logging configuration.
type AxiomConfig struct {
    Send          bool
    APIKey        string
    OrgID         string
    Dataset       string
    FlushInterval time.Duration
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
    Port            string
    MaxUploadMB     int64
    ShutdownTimeout time.Duration
}

// WorkerConfig defines sorting job behavior and limits.
type WorkerConfig struct {
    Concurrency    int           // sorting jobs running at once
    ExtractWorkers int           // label pages extracted in parallel within one job
    JobTimeout     time.Duration
    TempMaxAge     time.Duration
}

// StatusConfig selects the job status backend.
type StatusConfig struct {
    Backend  string // "redis"|"memory"
    RedisURL string
}

// StorageConfig defines where uploads and sorted documents live.
type StorageConfig struct {
    UploadDir     string
    ResultDir     string
    ResultBackend string // "local"|"s3"
    Bucket        string
    Region        string
    AccessKeyID   string
    SecretKey     string
    Endpoint      string // S3-compatible endpoint (MinIO); empty uses AWS
    ResultPrefix  string
}

// Config is the top-level configuration.
type Config struct {
    Logging LoggingConfig
    Axiom   AxiomConfig
    Server  ServerConfig
    Worker  WorkerConfig
    Status  StatusConfig
    Storage StorageConfig
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
    cfg := Config{}

    // Logging defaults
    cfg.Logging = LoggingConfig{
        Level:      getEnv("LOG_LEVEL", "info"),
        Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
        File:       getEnv("LOG_FILE", "logs/labelsorter.log"),
        MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
        MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
        MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
        Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
    }

    // Axiom defaults
    baseDataset := getEnv("AXIOM_DATASET", "dev")
    cfg.Axiom = AxiomConfig{
        Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
        APIKey:        getEnv("AXIOM_API_KEY", ""),
        OrgID:         getEnv("AXIOM_ORG_ID", ""),
        Dataset:       baseDataset + "_labelsorter",
        FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
    }

    cfg.Server = ServerConfig{
        Port:            getEnv("PORT", "8080"),
        MaxUploadMB:     int64(parseInt(getEnv("MAX_UPLOAD_MB", "64"), 64)),
        ShutdownTimeout: parseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s"), 10*time.Second),
    }

    // Worker defaults
    cfg.Worker = WorkerConfig{
        Concurrency:    parseInt(getEnv("WORKER_CONCURRENCY", "4"), 4),
        ExtractWorkers: parseInt(getEnv("EXTRACT_WORKERS", "1"), 1),
        JobTimeout:     parseDuration(getEnv("JOB_TIMEOUT", "5m"), 5*time.Minute),
        TempMaxAge:     parseDuration(getEnv("TEMP_MAX_AGE", "1h"), time.Hour),
    }
    if cfg.Worker.Concurrency <= 0 { cfg.Worker.Concurrency = 1 }

    cfg.Status = StatusConfig{
        Backend:  strings.ToLower(getEnv("STATUS_BACKEND", "redis")),
        RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),
    }

    cfg.Storage = StorageConfig{
        UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
        ResultDir:     getEnv("RESULT_DIR", "uploads/results"),
        ResultBackend: strings.ToLower(getEnv("RESULT_BACKEND", "local")),
        Bucket:        getEnv("AWS_S3_BUCKET", "labelsorter-dev"),
        Region:        getEnv("AWS_REGION", ""),
        AccessKeyID:   getEnv("AWS_ACCESS_KEY_ID", ""),
        SecretKey:     getEnv("AWS_SECRET_ACCESS_KEY", ""),
        Endpoint:      getEnv("S3_ENDPOINT", ""),
        ResultPrefix:  getEnv("RESULT_PREFIX", "sorted"),
    }

    return cfg
}

// Helpers
func getEnv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func parseInt(s string, def int) int {
    if s == "" { return def }
    if n, err := strconv.Atoi(s); err == nil { return n }
    return def
}

func parseBool(s string) bool {
    v := strings.ToLower(strings.TrimSpace(s))
    return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
    if s == "" { return def }
    if d, err := time.ParseDuration(s); err == nil { return d }
    return def
}

func devDefaultPretty() string {
    env := strings.ToLower(os.Getenv("ENVIRONMENT"))
    if env == "dev" || env == "development" || env == "local" { return "true" }
    return "false"
}
