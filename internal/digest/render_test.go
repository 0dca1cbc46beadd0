package digest

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"paperdigest/internal/domain"
)

var renderDay = time.Date(2025, time.November, 10, 9, 0, 0, 0, time.UTC)

func recommended(id, title string) domain.RecommendedPaper {
	return domain.RecommendedPaper{
		Paper: domain.Paper{
			ID:          id,
			Title:       title,
			Authors:     []string{"Ada Lovelace", "Alan Turing"},
			Summary:     "abstract",
			PublishedAt: renderDay.Add(-time.Hour),
		},
		Verdict: domain.Verdict{
			IsRelevant:        true,
			HighlightsNovelty: "Highlights for " + title,
			WhyRecommend:      "Take on " + title,
			RelevanceReason:   "on topic",
		},
	}
}

func TestRenderDigest(t *testing.T) {
	t.Parallel()

	papers := []domain.RecommendedPaper{
		recommended("http://arxiv.org/abs/1", "First Paper"),
		recommended("http://arxiv.org/abs/2", "Second Paper"),
	}

	html, err := Render(papers, renderDay)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse rendered html: %v", err)
	}

	cards := doc.Find("div.paper")
	if cards.Length() != 2 {
		t.Fatalf("expected 2 paper cards, got %d", cards.Length())
	}

	titles := doc.Find("h3.paper-title").Map(func(i int, s *goquery.Selection) string {
		return strings.TrimSpace(s.Text())
	})
	if titles[0] != "First Paper" || titles[1] != "Second Paper" {
		t.Fatalf("card order wrong: %v", titles)
	}

	firstTake := strings.TrimSpace(doc.Find("p.critic-take").First().Text())
	if firstTake != "Take on First Paper" {
		t.Fatalf("unexpected critic take: %q", firstTake)
	}

	link, ok := doc.Find("a.paper-link").First().Attr("href")
	if !ok || link != "http://arxiv.org/abs/1" {
		t.Fatalf("unexpected paper link: %q", link)
	}

	if doc.Find("p.nothing-found").Length() != 0 {
		t.Fatalf("non-empty digest rendered the empty variant")
	}
}

func TestRenderEscapesContent(t *testing.T) {
	t.Parallel()

	paper := recommended("http://arxiv.org/abs/3", `Attention <is> "All"`)

	html, err := Render([]domain.RecommendedPaper{paper}, renderDay)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	if strings.Contains(html, "Attention <is>") {
		t.Fatalf("title not escaped in output")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse rendered html: %v", err)
	}
	if got := strings.TrimSpace(doc.Find("h3.paper-title").Text()); got != `Attention <is> "All"` {
		t.Fatalf("escaped title does not round-trip: %q", got)
	}
}

func TestRenderEmptyVariant(t *testing.T) {
	t.Parallel()

	html, err := Render(nil, renderDay)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse rendered html: %v", err)
	}

	if doc.Find("div.paper").Length() != 0 {
		t.Fatalf("empty digest rendered paper cards")
	}
	if doc.Find("p.nothing-found").Length() != 1 {
		t.Fatalf("empty digest missing the nothing-found variant")
	}
	if !strings.Contains(doc.Text(), "November 10, 2025") {
		t.Fatalf("empty digest missing the date")
	}
}

func TestSubject(t *testing.T) {
	t.Parallel()

	if got := Subject(renderDay); got != "Your AI-Curated ArXiv Digest - Nov 10" {
		t.Fatalf("unexpected subject: %q", got)
	}
}
