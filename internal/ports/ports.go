package ports

import (
	"context"
	"time"

	"paperdigest/internal/domain"
)

// PaperSource pulls recent candidate papers from the upstream feed,
// ordered by descending publish time.
type PaperSource interface {
	Fetch(ctx context.Context) ([]domain.Paper, error)
}

// HistoryStore persists which papers were already recommended.
// Load never fails hard: an absent or unreadable store yields an
// empty history.
type HistoryStore interface {
	Load(ctx context.Context) (domain.History, error)
	Save(ctx context.Context, history domain.History) error
}

// Classifier judges one candidate against the recommendation history.
// A non-nil error marks the paper unclassifiable; callers degrade it
// to not-relevant instead of aborting the batch.
type Classifier interface {
	Classify(ctx context.Context, paper domain.Paper, history domain.History) (domain.Verdict, error)
}

// Notifier delivers the rendered digest to the configured recipient.
type Notifier interface {
	Send(ctx context.Context, subject, htmlBody string) error
}

// RunArchive records an audit trail of delivered digests.
type RunArchive interface {
	SaveEntries(ctx context.Context, entries []domain.RunEntry) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
