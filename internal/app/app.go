package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"paperdigest/internal/config"
	"paperdigest/internal/infrastructure/archive"
	"paperdigest/internal/infrastructure/arxiv"
	"paperdigest/internal/infrastructure/gemini"
	"paperdigest/internal/infrastructure/history"
	"paperdigest/internal/infrastructure/mail"
	"paperdigest/internal/infrastructure/scheduler"
	"paperdigest/internal/logging"
	"paperdigest/internal/ports"
	"paperdigest/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	archive  *archive.SQLiteArchive
}

// New builds a runnable application instance from configuration.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	source := arxiv.NewClient(cfg.Arxiv, nil, baseLogger.With("component", "source.arxiv"))
	store := history.NewFileStore(cfg.History.Path, baseLogger.With("component", "history"))
	notifier := mail.NewNotifier(cfg.SMTP, baseLogger.With("component", "notifier"))

	var classifier ports.Classifier
	if cfg.Gemini.APIKey != "" {
		classifier = gemini.NewClassifier(cfg.Gemini)
	} else {
		baseLogger.Warn("gemini api key unset, every candidate will be skipped")
	}

	application := &Application{cfg: cfg, logger: baseLogger}

	var runArchive ports.RunArchive
	if cfg.Archive.Path != "" {
		sqliteArchive, err := archive.Open(cfg.Archive.Path)
		if err != nil {
			return nil, fmt.Errorf("open run archive: %w", err)
		}
		application.archive = sqliteArchive
		runArchive = sqliteArchive
	}

	application.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:            source,
		History:           store,
		Classifier:        classifier,
		Notifier:          notifier,
		Archive:           runArchive,
		Window:            cfg.Filter.Window(),
		AnalysisCap:       cfg.Filter.AnalysisCap,
		RecommendationCap: cfg.Filter.RecommendationCap,
		Logger:            baseLogger.With("component", "pipeline"),
	})

	return application, nil
}

// Run executes the pipeline once, or keeps it on an interval schedule
// when one is configured, until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}
	defer a.close()

	interval := a.cfg.Scheduler.Interval()
	if interval <= 0 {
		return a.pipeline.Run(ctx, time.Now().UTC())
	}

	driver := scheduler.NewTickerScheduler(interval)
	recurring := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))
	if err := recurring.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	return recurring.Stop(context.Background())
}

func (a *Application) close() {
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			a.logger.Warn("close archive", "error", err)
		}
	}
}
