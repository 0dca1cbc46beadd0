package domain

import "time"

// Paper is a candidate research item parsed from the arXiv feed.
type Paper struct {
	ID          string
	Title       string
	Authors     []string
	Summary     string
	PublishedAt time.Time
}

// HistoryRecord is the persisted trace of a previously recommended paper.
type HistoryRecord struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// History maps paper identifiers to their persisted records.
type History map[string]HistoryRecord

// Verdict is the structured relevance judgment for one candidate paper.
// The narrative fields are empty whenever IsRelevant is false.
type Verdict struct {
	IsRelevant        bool
	HighlightsNovelty string
	WhyRecommend      string
	RelevanceReason   string
}

// RecommendedPaper pairs a candidate with the verdict that admitted it
// into the digest.
type RecommendedPaper struct {
	Paper   Paper
	Verdict Verdict
}

// RunEntry is one audit row describing a paper that appeared in a digest.
type RunEntry struct {
	PaperID   string
	Title     string
	RanAt     time.Time
	Persisted bool
}
