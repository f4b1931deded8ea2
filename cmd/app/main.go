package main

import (
    "context"
    "fmt"
    "net/http"
    "os"
    "os/signal"
    "syscall"

    "github.com/joho/godotenv"
    "github.com/rs/zerolog/log"

    cfgpkg "github.com/local/labelsorter/internal/config"
    logpkg "github.com/local/labelsorter/internal/logger"
    "github.com/local/labelsorter/internal/metrics"
    "github.com/local/labelsorter/internal/orchestrator"
    "github.com/local/labelsorter/internal/storage"
    "github.com/local/labelsorter/internal/store"
)

func main() {
    // .env is optional; real environment wins
    _ = godotenv.Load()
    cfg := cfgpkg.FromEnv()

    // Init logging
    if err := logpkg.Init(logpkg.Options{
        Level: cfg.Logging.Level,
        Pretty: cfg.Logging.Pretty,
        File: cfg.Logging.File,
        MaxSizeMB: cfg.Logging.MaxSizeMB,
        MaxBackups: cfg.Logging.MaxBackups,
        MaxAgeDays: cfg.Logging.MaxAgeDays,
        Compress: cfg.Logging.Compress,
        SendToAxiom: cfg.Axiom.Send && cfg.Axiom.APIKey != "",
        AxiomAPIKey: cfg.Axiom.APIKey,
        AxiomOrgID: cfg.Axiom.OrgID,
        AxiomDataset: cfg.Axiom.Dataset,
        AxiomFlush: cfg.Axiom.FlushInterval,
    }); err != nil {
        fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
    }
    defer logpkg.Close()

    metrics.Init()

    // Status store
    var status orchestrator.StatusStore
    switch cfg.Status.Backend {
    case "memory":
        status = orchestrator.NewStatusAdapter(store.NewMemoryStatus())
        log.Warn().Msg("using in-memory job status; jobs are lost on restart")
    default:
        rs, err := store.NewRedisStatus(cfg.Status.RedisURL)
        if err != nil {
            log.Fatal().Err(err).Msg("failed to init redis status store")
        }
        defer rs.Close()
        status = orchestrator.NewStatusAdapter(rs)
    }

    s3opts := storage.Options{
        Bucket:      cfg.Storage.Bucket,
        Region:      cfg.Storage.Region,
        AccessKeyID: cfg.Storage.AccessKeyID,
        SecretKey:   cfg.Storage.SecretKey,
        Endpoint:    cfg.Storage.Endpoint,
    }

    // Result sink
    var results orchestrator.ResultSink = orchestrator.LocalResults{Dir: cfg.Storage.ResultDir}
    if cfg.Storage.ResultBackend == "s3" {
        cli, err := storage.NewS3Client(context.Background(), s3opts)
        if err != nil {
            log.Fatal().Err(err).Msg("failed to init s3 client")
        }
        results = orchestrator.S3Results{Client: cli, Prefix: cfg.Storage.ResultPrefix}
    }

    orch := orchestrator.New(orchestrator.Dependencies{
        Status:  status,
        Results: results,
    }, orchestrator.Options{
        Concurrency:    cfg.Worker.Concurrency,
        ExtractWorkers: cfg.Worker.ExtractWorkers,
        JobTimeout:     cfg.Worker.JobTimeout,
        TempMaxAge:     cfg.Worker.TempMaxAge,
        UploadDir:      cfg.Storage.UploadDir,
        MaxUploadMB:    cfg.Server.MaxUploadMB,
        S3:             s3opts,
    })
    mux := http.NewServeMux()
    orch.RegisterRoutes(mux)

    srv := &http.Server{Addr: ":"+cfg.Server.Port, Handler: mux}

    go func(){
        log.Info().Msgf("HTTP server listening on :%s", cfg.Server.Port)
        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatal().Err(err).Msg("http server error")
        }
    }()

    // Graceful shutdown
    stop := make(chan os.Signal, 1)
    signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
    <-stop
    ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
    defer cancel()
    _ = srv.Shutdown(ctx)
    if err := orch.Shutdown(ctx); err != nil {
        log.Warn().Err(err).Msg("sorting jobs cancelled on shutdown")
    }
    fmt.Println("shutdown complete")
}
