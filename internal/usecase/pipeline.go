package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"paperdigest/internal/digest"
	"paperdigest/internal/domain"
	"paperdigest/internal/filter"
	"paperdigest/internal/ports"
)

// PipelineDeps wires all driven adapters into the curation pipeline.
type PipelineDeps struct {
	Source     ports.PaperSource
	History    ports.HistoryStore
	Classifier ports.Classifier
	Notifier   ports.Notifier
	Archive    ports.RunArchive

	Window            time.Duration
	AnalysisCap       int
	RecommendationCap int

	Logger *slog.Logger
}

// Pipeline implements one curation run: load history, fetch, filter,
// classify each candidate in order, render and deliver the digest, then
// persist the capped recommendation set back into history.
type Pipeline struct {
	source     ports.PaperSource
	history    ports.HistoryStore
	classifier ports.Classifier
	notifier   ports.Notifier
	archive    ports.RunArchive

	window            time.Duration
	analysisCap       int
	recommendationCap int

	logger *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:            deps.Source,
		history:           deps.History,
		classifier:        deps.Classifier,
		notifier:          deps.Notifier,
		archive:           deps.Archive,
		window:            deps.Window,
		analysisCap:       deps.AnalysisCap,
		recommendationCap: deps.RecommendationCap,
		logger:            deps.Logger,
	}
}

// Run executes one batch. A fetch failure aborts before any history
// mutation; a classification failure degrades that one paper; a
// delivery failure is logged and history is still updated, because the
// digest itself was produced.
func (p *Pipeline) Run(ctx context.Context, now time.Time) error {
	if p.source == nil {
		return nil
	}

	history := domain.History{}
	if p.history != nil {
		var err error
		history, err = p.history.Load(ctx)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
	}

	raw, err := p.source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch papers: %w", err)
	}

	candidates := filter.Admit(raw, history, filter.Params{
		Now:         now,
		Window:      p.window,
		AnalysisCap: p.analysisCap,
	})
	p.info("candidates admitted", "raw", len(raw), "admitted", len(candidates), "history", len(history))

	var recommended []domain.RecommendedPaper
	for _, paper := range candidates {
		if p.classifier == nil {
			break
		}

		verdict, err := p.classifier.Classify(ctx, paper, history)
		if err != nil {
			p.warn("paper left unclassified", "paper", paper.ID, "error", err)
			continue
		}
		if !verdict.IsRelevant {
			p.debug("paper rejected", "paper", paper.ID, "reason", verdict.RelevanceReason)
			continue
		}

		recommended = append(recommended, domain.RecommendedPaper{Paper: paper, Verdict: verdict})
	}
	p.info("classification done", "recommended", len(recommended))

	html, err := digest.Render(recommended, now)
	if err != nil {
		return fmt.Errorf("render digest: %w", err)
	}

	if p.notifier != nil {
		if err := p.notifier.Send(ctx, digest.Subject(now), html); err != nil {
			p.warn("digest delivery failed", "error", err)
		}
	}

	if len(recommended) == 0 {
		return nil
	}

	// Only the first recommendationCap items enter history; anything
	// past the cap stays eligible for a future run even though it was
	// shown in this digest.
	persisted := recommended
	if p.recommendationCap > 0 && len(persisted) > p.recommendationCap {
		persisted = persisted[:p.recommendationCap]
	}
	for _, rec := range persisted {
		history[rec.Paper.ID] = domain.HistoryRecord{
			Title:   rec.Paper.Title,
			Summary: rec.Paper.Summary,
		}
	}

	if p.history != nil {
		if err := p.history.Save(ctx, history); err != nil {
			return fmt.Errorf("save history: %w", err)
		}
		p.info("history updated", "added", len(persisted), "total", len(history))
	}

	if p.archive != nil {
		entries := make([]domain.RunEntry, 0, len(recommended))
		for i, rec := range recommended {
			entries = append(entries, domain.RunEntry{
				PaperID:   rec.Paper.ID,
				Title:     rec.Paper.Title,
				RanAt:     now,
				Persisted: i < len(persisted),
			})
		}
		if err := p.archive.SaveEntries(ctx, entries); err != nil {
			p.warn("archive write failed", "error", err)
		}
	}

	return nil
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
