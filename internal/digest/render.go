package digest

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"paperdigest/internal/domain"
)

// Render turns the ordered recommendation list into the HTML digest.
// It is a pure function of its input; an empty list produces a distinct
// "nothing found" document rather than an empty container.
func Render(papers []domain.RecommendedPaper, today time.Time) (string, error) {
	date := today.Format("January 2, 2006")

	var out strings.Builder
	if len(papers) == 0 {
		if err := emptyTemplate.Execute(&out, emptyData{Date: date}); err != nil {
			return "", fmt.Errorf("render empty digest: %w", err)
		}
		return out.String(), nil
	}

	items := make([]item, 0, len(papers))
	for _, rec := range papers {
		items = append(items, item{
			Title:      rec.Paper.Title,
			Published:  rec.Paper.PublishedAt.Format("January 2, 2006"),
			Authors:    strings.Join(rec.Paper.Authors, ", "),
			Highlights: rec.Verdict.HighlightsNovelty,
			CriticTake: rec.Verdict.WhyRecommend,
			Link:       rec.Paper.ID,
		})
	}

	if err := digestTemplate.Execute(&out, digestData{Date: date, Papers: items}); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return out.String(), nil
}

// Subject builds the email subject line for a digest sent today.
func Subject(today time.Time) string {
	return "Your AI-Curated ArXiv Digest - " + today.Format("Jan 02")
}

type item struct {
	Title      string
	Published  string
	Authors    string
	Highlights string
	CriticTake string
	Link       string
}

type digestData struct {
	Date   string
	Papers []item
}

type emptyData struct {
	Date string
}

var emptyTemplate = template.Must(template.New("empty").Parse(`<html><body style="font-family: sans-serif; text-align: center; padding: 40px;">
  <h2 style="color: #333;">ArXiv Digest: {{.Date}}</h2>
  <p class="nothing-found" style="color: #666; font-size: 1.1em;">Nothing to see here! No new relevant papers on LLM tool use were found in the past few days. Go enjoy your day!</p>
</body></html>
`))

var digestTemplate = template.Must(template.New("digest").Parse(`<html><head><style>
  body { font-family: -apple-system, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #333; background-color: #f4f5f7; margin: 0; padding: 20px; }
  .container { max-width: 800px; margin: auto; padding: 20px; border-radius: 8px; }
</style></head><body><div class="container">
  <h2 style="text-align: center; color: #1a237e; border-bottom: 2px solid #e0e0e0; padding-bottom: 15px;">Your ArXiv Digest</h2>
  <p style="text-align: center; color: #555;">Here are the AI critic's picks on LLM tool use from the past few days, sorted by publication date:</p>
{{range .Papers}}  <div class="paper" style="margin-bottom: 2.5em; padding: 1.5em; border: 1px solid #e0e0e0; border-radius: 12px; background-color: #ffffff;">
    <h3 class="paper-title" style="margin: 0 0 0.2em 0; color: #1a237e; font-size: 1.4em;">{{.Title}}</h3>
    <p style="font-size: 0.9em; color: #555;"><b>Published:</b> {{.Published}} | <b>By:</b> {{.Authors}}</p>
    <h4 style="color: #3f51b5; margin-bottom: 0.5em; font-size: 1.1em;">Highlights &amp; Novelty</h4>
    <p class="highlights" style="color: #333;">{{.Highlights}}</p>
    <div style="background-color: #fffde7; padding: 1em; border-left: 5px solid #ffc107; border-radius: 8px; margin-top: 1.5em;">
      <h4 style="color: #f57f17; margin: 0 0 0.5em 0; font-size: 1.1em;">Why You're Seeing This (The Critic's Take)</h4>
      <p class="critic-take" style="color: #4e4e4e; margin: 0; font-style: italic;">{{.CriticTake}}</p>
    </div>
    <p style="margin-top: 1.5em; text-align: right;">
      <a class="paper-link" href="{{.Link}}" style="color: #303f9f; text-decoration: none; font-weight: bold;">Read the Full Paper on ArXiv &rarr;</a>
    </p>
  </div>
{{end}}</div></body></html>
`))
