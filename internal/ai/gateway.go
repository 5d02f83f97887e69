// Package ai is the gateway to the external text-generation service.
// It exposes two request shapes: a bulk analysis of the whole task
// collection, and a per-trial improvement advice request. Busy flags
// and in-flight dedup belong to the call sites; the gateway itself is
// stateless.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/moldworks/moldtrack/internal/model"
)

const (
	defaultModel           = "gemini-3-pro-preview"
	defaultMaxOutputTokens = 2048
	defaultBaseURL         = "https://generativelanguage.googleapis.com"
)

// Insight is the structured result of a bulk analysis request.
type Insight struct {
	Bottlenecks   []string `json:"bottlenecks"`
	AtRisk        []string `json:"atRisk"`
	Suggestions   []string `json:"suggestions"`
	HealthSummary string   `json:"healthSummary"`
}

// Gateway sends analysis requests to the generative-AI service.
type Gateway struct {
	apiKey          string
	model           string
	maxOutputTokens int
	baseURL         string
	client          *http.Client
}

// New creates a Gateway. Empty modelName, maxOutputTokens, or baseURL
// fall back to defaults; baseURL is overridable for tests.
func New(apiKey, modelName string, maxOutputTokens int, baseURL string) *Gateway {
	if modelName == "" {
		modelName = defaultModel
	}
	if maxOutputTokens <= 0 {
		maxOutputTokens = defaultMaxOutputTokens
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Gateway{
		apiKey:          apiKey,
		model:           modelName,
		maxOutputTokens: maxOutputTokens,
		baseURL:         baseURL,
		client:          &http.Client{},
	}
}

// BulkInsight analyzes the full task collection and returns structured
// findings. An empty or malformed response is an error; the caller
// keeps whatever insight it was already showing.
func (g *Gateway) BulkInsight(ctx context.Context, tasks []model.Task) (*Insight, error) {
	taskData, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("encoding tasks: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Analyze the following mold-development project data ")
	sb.WriteString("and provide these insights:\n")
	sb.WriteString("1. Bottleneck diagnosis: identify which mold operations are stalling the line.\n")
	sb.WriteString("2. Deadline risk: assess molds that are overdue or progressing slowly.\n")
	sb.WriteString("3. Machine and staffing suggestions: recommend resource reallocation ")
	sb.WriteString("based on assignees and progress.\n")
	sb.WriteString("4. Line health summary: assess overall schedule state and quality stability.\n\n")
	sb.WriteString("Task data:\n")
	sb.Write(taskData)
	sb.WriteString("\n\nRespond as a JSON object.")

	text, err := g.generate(ctx, sb.String(), insightSchema())
	if err != nil {
		return nil, err
	}

	var insight Insight
	if err := json.Unmarshal([]byte(text), &insight); err != nil {
		return nil, fmt.Errorf("decoding insight: %w", err)
	}

	return &insight, nil
}

// TrialAdvice requests improvement advice for one injection-molding
// trial. Returns the plain-text advice; an empty response is an error
// so the trial's advice stays unset and the user can retry.
func (g *Gateway) TrialAdvice(ctx context.Context, moldName string, trial model.MoldTrial) (string, error) {
	var sb strings.Builder
	sb.WriteString("As an injection-molding expert, provide improvement advice ")
	sb.WriteString("for the following mold trial:\n")
	fmt.Fprintf(&sb, "Mold: %s\n", moldName)
	fmt.Fprintf(&sb, "Trial version: %s\n", trial.Version)
	fmt.Fprintf(&sb, "Observed condition: %s\n\n", trial.Condition)
	sb.WriteString("Address the molding defects in the description (e.g. flash, ")
	sb.WriteString("sink marks, flow lines, short shots, dimensional deviation) ")
	sb.WriteString("with technical countermeasures. Keep it to roughly 120 words, ")
	sb.WriteString("professional and precise. Reply with plain text, not JSON.")

	text, err := g.generate(ctx, sb.String(), nil)
	if err != nil {
		return "", err
	}

	advice := strings.TrimSpace(text)
	if advice == "" {
		return "", fmt.Errorf("empty advice response")
	}

	return advice, nil
}

// generate makes a single generateContent request and returns the
// first candidate's text.
func (g *Gateway) generate(ctx context.Context, prompt string, schema json.RawMessage) (string, error) {
	reqBody := apiRequest{
		Contents: []apiContent{
			{Parts: []apiPart{{Text: prompt}}},
		},
		GenerationConfig: &apiGenerationConfig{
			MaxOutputTokens: g.maxOutputTokens,
		},
	}
	if schema != nil {
		reqBody.GenerationConfig.ResponseMIMEType = "application/json"
		reqBody.GenerationConfig.ResponseSchema = schema
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, url, bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling AI service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	text := result.firstText()
	if text == "" {
		return "", fmt.Errorf("empty response from AI service")
	}

	return text, nil
}

// --- generateContent API types ---

type apiRequest struct {
	Contents         []apiContent         `json:"contents"`
	GenerationConfig *apiGenerationConfig `json:"generationConfig,omitempty"`
}

type apiContent struct {
	Parts []apiPart `json:"parts"`
}

type apiPart struct {
	Text string `json:"text"`
}

type apiGenerationConfig struct {
	MaxOutputTokens  int             `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

type apiResponse struct {
	Candidates []struct {
		Content apiContent `json:"content"`
	} `json:"candidates"`
}

// firstText returns the concatenated text parts of the first
// candidate, or "".
func (r apiResponse) firstText() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// insightSchema returns the response schema for the bulk analysis
// request.
func insightSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"bottlenecks": {"type": "array", "items": {"type": "string"}},
			"atRisk": {"type": "array", "items": {"type": "string"}},
			"suggestions": {"type": "array", "items": {"type": "string"}},
			"healthSummary": {"type": "string"}
		},
		"required": ["bottlenecks", "atRisk", "suggestions", "healthSummary"]
	}`)
}
