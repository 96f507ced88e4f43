// Package app wires the evaluation pipeline together from configuration:
// rubric, rules, narrative gateway, evaluator, batch orchestrator, and
// the optional archive and cache.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/SamuraiJenkinz/onsitereview/internal/batch"
	"github.com/SamuraiJenkinz/onsitereview/internal/config"
	"github.com/SamuraiJenkinz/onsitereview/internal/evaluator"
	"github.com/SamuraiJenkinz/onsitereview/internal/llm"
	"github.com/SamuraiJenkinz/onsitereview/internal/parser"
	"github.com/SamuraiJenkinz/onsitereview/internal/reports"
	"github.com/SamuraiJenkinz/onsitereview/internal/repository"
	"github.com/SamuraiJenkinz/onsitereview/internal/rubric"
	"github.com/SamuraiJenkinz/onsitereview/internal/rules"
	"github.com/SamuraiJenkinz/onsitereview/pkg/cache"
	dbbuilder "github.com/SamuraiJenkinz/onsitereview/pkg/database"
)

type App struct {
	Logger    *zap.Logger
	Registry  *rubric.Registry
	Evaluator *evaluator.Evaluator
	Client    *llm.OpenAIClient
	Parser    *parser.ServiceNowParser
	PDFParser *parser.PDFParser
	Reports   *reports.Generator

	// Archive is nil unless archiving was requested.
	Archive *repository.EvaluationRepository

	dbPool *sql.DB
	cache  *cache.Cache
}

type Options struct {
	WithArchive bool
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration invalid: %w", err)
	}

	registry, err := rubric.Load()
	if err != nil {
		return nil, fmt.Errorf("rubric init failed: %w", err)
	}

	client := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, logger)

	var assessorOpts []llm.AssessorOption
	var cacheClient *cache.Cache
	if cfg.RedisAddr != "" {
		cacheClient, err = cache.New(ctx, cache.WithAddress(cfg.RedisAddr))
		if err != nil {
			// The cache is an accelerator, not a dependency.
			logger.Warn("cache init failed, continuing without verdict cache", zap.Error(err))
		} else {
			assessorOpts = append(assessorOpts,
				llm.WithVerdictCache(cache.NewVerdictStore(cacheClient, cache.DefaultVerdictTTL)))
			logger.Info("verdict cache enabled", zap.String("addr", cfg.RedisAddr))
		}
	}

	assessor := llm.NewAssessor(client, logger, assessorOpts...)
	eval := evaluator.New(registry, rules.NewEngine(logger), assessor, logger)

	a := &App{
		Logger:    logger,
		Registry:  registry,
		Evaluator: eval,
		Client:    client,
		Parser:    parser.NewServiceNowParser(logger),
		PDFParser: parser.NewPDFParser(logger),
		Reports:   reports.NewGenerator(logger),
		cache:     cacheClient,
	}

	if opts.WithArchive {
		if dir := filepath.Dir(cfg.DBPath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create archive dir: %w", err)
			}
		}
		dbPool, err := dbbuilder.New(
			dbbuilder.WithDriver(cfg.DBDriver),
			dbbuilder.WithDataSource(cfg.DBPath),
		)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		logger.Info("archive database initialized", zap.String("path", cfg.DBPath))

		archive := repository.NewEvaluationRepository(dbPool)
		if err := archive.Init(ctx); err != nil {
			dbPool.Close()
			return nil, err
		}
		a.dbPool = dbPool
		a.Archive = archive
	}

	return a, nil
}

// NewOrchestrator builds a batch orchestrator over the app's evaluator.
func (a *App) NewOrchestrator(concurrency int, onProgress batch.ProgressFunc) *batch.Orchestrator {
	opts := []batch.Option{batch.WithConcurrency(concurrency)}
	if onProgress != nil {
		opts = append(opts, batch.WithProgress(onProgress))
	}
	return batch.NewOrchestrator(a.Evaluator, a.Logger, opts...)
}

// Close releases the archive and cache connections.
func (a *App) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.Logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if a.dbPool != nil {
		if err := a.dbPool.Close(); err != nil {
			a.Logger.Error("database shutdown error", zap.Error(err))
		}
	}
	_ = a.Logger.Sync()
}
