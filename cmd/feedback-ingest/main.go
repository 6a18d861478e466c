// Command feedback-ingest rebuilds the complaint vector index from a
// tabular dataset export. Each run is a full rebuild.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/luizgdev/rag-feedback-analyzer/internal/chunker"
	"github.com/luizgdev/rag-feedback-analyzer/internal/config"
	"github.com/luizgdev/rag-feedback-analyzer/internal/dataset"
	dbRedis "github.com/luizgdev/rag-feedback-analyzer/internal/db/redis"
	"github.com/luizgdev/rag-feedback-analyzer/internal/domain"
	logpkg "github.com/luizgdev/rag-feedback-analyzer/internal/logger"
	"github.com/luizgdev/rag-feedback-analyzer/internal/metrics"
	chunkrepo "github.com/luizgdev/rag-feedback-analyzer/internal/repository/chunk"
	"github.com/luizgdev/rag-feedback-analyzer/internal/repository/embcache"
	openaiProvider "github.com/luizgdev/rag-feedback-analyzer/internal/transport/openai"
	ingestuc "github.com/luizgdev/rag-feedback-analyzer/internal/usecase/ingest"
	"github.com/luizgdev/rag-feedback-analyzer/internal/version"
)

func main() {
	datasetFlag := flag.String("dataset", "", "dataset path (overrides ingest.dataset_path)")
	formatFlag := flag.String("format", "", "dataset format: csv or parquet (overrides ingest.format)")
	maxRowsFlag := flag.Int("max-rows", 0, "ingest at most this many rows, 0 = unlimited")
	flag.Parse()

	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if *datasetFlag != "" {
		cfg.Ingest.DatasetPath = *datasetFlag
	}
	if *formatFlag != "" {
		cfg.Ingest.Format = *formatFlag
	}
	if *maxRowsFlag > 0 {
		cfg.Ingest.MaxRows = *maxRowsFlag
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting feedback ingestion",
		zap.String("version", version.Version),
		zap.String("env", env),
		zap.String("dataset", cfg.Ingest.DatasetPath),
		zap.String("format", cfg.Ingest.Format),
		zap.String("model", cfg.Embedding.Model),
	)

	if cfg.Ingest.DatasetPath == "" {
		logger.Fatal("No dataset given, set ingest.dataset_path or pass -dataset")
	}

	metrics.RegisterProviderMetrics()
	metrics.RegisterIngestMetrics()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}

	records, datasetReport, err := readDataset(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to read dataset", zap.Error(err))
	}

	baseEmbedder := openaiProvider.NewEmbedder(&openaiProvider.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:     logger,
	})
	embedder := embcache.New(
		baseEmbedder, store,
		cfg.Storage.KeyPrefix, cfg.Embedding.Model,
		metrics.EmbeddingCacheTotal, logger,
	)

	splitter, err := chunker.New(cfg.Ingest.ChunkSize)
	if err != nil {
		logger.Fatal("Invalid chunk size", zap.Error(err))
	}

	repo := chunkrepo.New(store, cfg.Storage.KeyPrefix, cfg.Embedding.Dimensions).
		WithHNSW(cfg.Index.HNSWM, cfg.Index.HNSWEFConstruct)

	svc := ingestuc.New(repo, splitter, embedder, ingestuc.Config{
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		BatchSize:  cfg.Ingest.BatchSize,
	}, logger)

	report, err := svc.Run(ctx, records, cfg.Ingest.DatasetPath)
	if err != nil {
		logger.Fatal("Ingestion failed, index left without meta", zap.Error(err))
	}

	// Cross-check the live index against what the run reported.
	indexed, err := repo.Count(ctx)
	if err != nil {
		logger.Warn("Failed to count indexed chunks", zap.Error(err))
	} else if indexed != report.Chunks {
		logger.Warn("Indexed chunk count differs from run report",
			zap.Int("indexed", indexed),
			zap.Int("written", report.Chunks),
		)
	}

	fmt.Printf("Ingestion complete: %d rows read, %d records kept, %d chunks indexed, %d tokens, %s\n",
		datasetReport.Total(), report.Records, report.Chunks, report.TotalTokens, report.Duration.Round(time.Millisecond))
}

// readDataset opens the configured export, normalizes its rows and
// emits the per-outcome row counters.
func readDataset(cfg config.Config, logger *zap.Logger) ([]domain.ComplaintRecord, dataset.Report, error) {
	var (
		reader dataset.Reader
		err    error
	)
	switch cfg.Ingest.Format {
	case "parquet":
		reader, err = dataset.OpenParquet(cfg.Ingest.DatasetPath)
	default:
		reader, err = dataset.OpenCSV(cfg.Ingest.DatasetPath)
	}
	if err != nil {
		return nil, dataset.Report{}, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = reader.Close() }()

	if cfg.Ingest.MaxRows > 0 {
		reader = dataset.NewLimitReader(reader, cfg.Ingest.MaxRows)
	}

	normalizer, err := dataset.NewNormalizer(cfg.Ingest.TextColumn, cfg.Ingest.IDColumn)
	if err != nil {
		return nil, dataset.Report{}, fmt.Errorf("create normalizer: %w", err)
	}

	records, report, err := normalizer.Normalize(reader)
	if err != nil {
		return nil, report, err
	}

	metrics.IngestRowsTotal.WithLabelValues("kept").Add(float64(report.Kept))
	metrics.IngestRowsTotal.WithLabelValues("skipped_empty_text").Add(float64(report.SkippedEmptyText))
	metrics.IngestRowsTotal.WithLabelValues("skipped_no_id").Add(float64(report.SkippedNoID))
	metrics.IngestRowsTotal.WithLabelValues("skipped_duplicate").Add(float64(report.SkippedDuplicate))

	logger.Info("Dataset normalized",
		zap.Int("rows", report.Total()),
		zap.Int("kept", report.Kept),
		zap.Int("skipped_empty_text", report.SkippedEmptyText),
		zap.Int("skipped_no_id", report.SkippedNoID),
		zap.Int("skipped_duplicate", report.SkippedDuplicate),
	)
	return records, report, nil
}
