package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"paperdigest/internal/config"
	"paperdigest/internal/domain"
	"paperdigest/internal/ports"
)

const emptyHistorySentinel = "None. This is the first paper being analyzed."

// Classifier judges candidate papers through the Gemini API using a
// structured-output request constrained to the verdict schema.
type Classifier struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ ports.Classifier = (*Classifier)(nil)

// NewClassifier builds a client from configuration.
func NewClassifier(cfg config.GeminiConfig) *Classifier {
	return &Classifier{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"responseMimeType"`
	ResponseSchema   schema `json:"responseSchema"`
}

type schema struct {
	Type       string              `json:"type"`
	Properties map[string]property `json:"properties"`
	Required   []string            `json:"required"`
}

type property struct {
	Type string `json:"type"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// verdictPayload uses pointers so a response that omits a required key
// is distinguishable from one carrying a zero value.
type verdictPayload struct {
	IsRelevant        *bool   `json:"is_relevant"`
	HighlightsNovelty *string `json:"highlights_novelty"`
	WhyRecommend      *string `json:"why_recommend"`
	RelevanceReason   *string `json:"relevance_reason"`
}

// Classify asks the model whether the paper belongs in the digest,
// folding in the titles of everything recommended before. Any
// transport, schema, or parse failure comes back as an error; the
// caller degrades the paper instead of aborting the batch.
func (c *Classifier) Classify(ctx context.Context, paper domain.Paper, history domain.History) (domain.Verdict, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return domain.Verdict{}, fmt.Errorf("gemini classifier misconfigured")
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: buildPrompt(paper, history)}}},
		},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema: schema{
				Type: "OBJECT",
				Properties: map[string]property{
					"is_relevant":        {Type: "BOOLEAN"},
					"highlights_novelty": {Type: "STRING"},
					"why_recommend":      {Type: "STRING"},
					"relevance_reason":   {Type: "STRING"},
				},
				Required: []string{"is_relevant", "highlights_novelty", "why_recommend", "relevance_reason"},
			},
		},
	})
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("marshal gemini payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", strings.TrimSuffix(c.endpoint, "/"), c.model, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.Verdict{}, fmt.Errorf("gemini error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Verdict{}, fmt.Errorf("decode gemini response: %w", err)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return domain.Verdict{}, fmt.Errorf("gemini response has no content")
	}

	return parseVerdict(decoded.Candidates[0].Content.Parts[0].Text)
}

func parseVerdict(text string) (domain.Verdict, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var payload verdictPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return domain.Verdict{}, fmt.Errorf("parse verdict json: %w", err)
	}

	switch {
	case payload.IsRelevant == nil:
		return domain.Verdict{}, fmt.Errorf("verdict missing required field %q", "is_relevant")
	case payload.HighlightsNovelty == nil:
		return domain.Verdict{}, fmt.Errorf("verdict missing required field %q", "highlights_novelty")
	case payload.WhyRecommend == nil:
		return domain.Verdict{}, fmt.Errorf("verdict missing required field %q", "why_recommend")
	case payload.RelevanceReason == nil:
		return domain.Verdict{}, fmt.Errorf("verdict missing required field %q", "relevance_reason")
	}

	verdict := domain.Verdict{
		IsRelevant:        *payload.IsRelevant,
		HighlightsNovelty: *payload.HighlightsNovelty,
		WhyRecommend:      *payload.WhyRecommend,
		RelevanceReason:   *payload.RelevanceReason,
	}

	// Narrative fields are contractually empty for irrelevant papers,
	// whatever the model put in them.
	if !verdict.IsRelevant {
		verdict.HighlightsNovelty = ""
		verdict.WhyRecommend = ""
	}

	return verdict, nil
}

func buildPrompt(paper domain.Paper, history domain.History) string {
	var sb strings.Builder

	sb.WriteString("You are an AI research assistant with a sharp eye for detail and a witty, informal tone. ")
	sb.WriteString("Your goal is to help an expert in Language Models stay on the cutting edge of \"tool use\" and \"function calling\" research.\n\n")

	sb.WriteString("**Previously Recommended Papers (Titles):**\n")
	sb.WriteString(historyDigest(history))
	sb.WriteString("\n\n")

	sb.WriteString("**Candidate Paper to Analyze:**\n")
	sb.WriteString("- Title: \"")
	sb.WriteString(paper.Title)
	sb.WriteString("\"\n- Abstract: \"")
	sb.WriteString(paper.Summary)
	sb.WriteString("\"\n\n")

	sb.WriteString(`**Your Task (in two parts):**

**Part 1: Relevance Check (Strict!)**
First, determine if the paper's CORE contribution is about tool use/function calling/reinforcement learning within the LLM/NLP domain. Be aggressive in filtering out papers on robotics, cognitive science, or other areas that are not directly relevant. The topic must be central to the paper.

**Part 2: Generate Recommendation Content**
If, and only if, the paper is relevant, generate the content for the recommendation email. Your tone should be smart, insightful, and slightly amusing.

**Provide your output as a single, valid JSON object with the following four keys:**
1.  "is_relevant": (boolean) True or false.
2.  "highlights_novelty": (string) A formal, concise summary of the paper's highlights and key novelty. What are the main takeaways? (Empty string if not relevant).
3.  "why_recommend": (string) An INFORMAL and AMUSING explanation of why this paper is important. Is it a follow-up to a paper you've recommended before? Does it challenge a common assumption? Is it from a noteworthy lab? Use the history and your own knowledge to make this section insightful and fun to read. Think of it as a "critic's take". (Empty string if not relevant).
4.  "relevance_reason": (string) A brief, professional justification for your relevance decision.`)

	return sb.String()
}

// historyDigest lists prior recommendation titles one per line, sorted
// for a stable prompt.
func historyDigest(history domain.History) string {
	if len(history) == 0 {
		return emptyHistorySentinel
	}

	titles := make([]string, 0, len(history))
	for _, record := range history {
		titles = append(titles, "- "+record.Title)
	}
	sort.Strings(titles)
	return strings.Join(titles, "\n")
}
