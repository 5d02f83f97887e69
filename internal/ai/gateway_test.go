package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moldworks/moldtrack/internal/model"
)

// candidateResponse wraps text in the service's candidate envelope.
func candidateResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]string{{"text": text}},
			}},
		},
	}
}

func newTestGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New("test-key", "", 0, srv.URL)
}

func TestBulkInsightDecodesStructuredResult(t *testing.T) {
	insightJSON, err := json.Marshal(Insight{
		Bottlenecks:   []string{"MOLD-A1 stalled in trial"},
		AtRisk:        []string{"A-202 overdue"},
		Suggestions:   []string{"shift one engineer to assembly"},
		HealthSummary: "schedule is tight but recoverable",
	})
	require.NoError(t, err)

	var gotPath, gotKey string
	var gotReq apiRequest
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(candidateResponse(string(insightJSON)))
	})

	insight, err := g.BulkInsight(context.Background(), model.SeedTasks())
	require.NoError(t, err)

	assert.Equal(t, "/v1beta/models/gemini-3-pro-preview:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, []string{"MOLD-A1 stalled in trial"}, insight.Bottlenecks)
	assert.Equal(t, "schedule is tight but recoverable", insight.HealthSummary)

	// Structured analysis pins the response format and schema.
	require.NotNil(t, gotReq.GenerationConfig)
	assert.Equal(t, "application/json", gotReq.GenerationConfig.ResponseMIMEType)
	assert.NotEmpty(t, gotReq.GenerationConfig.ResponseSchema)
	assert.Equal(t, defaultMaxOutputTokens, gotReq.GenerationConfig.MaxOutputTokens)
}

func TestBulkInsightRejectsMalformedPayload(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(candidateResponse("not json at all"))
	})

	_, err := g.BulkInsight(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding insight")
}

func TestTrialAdviceReturnsPlainText(t *testing.T) {
	var gotReq apiRequest
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(candidateResponse("  Increase holding pressure by 5 MPa.  "))
	})

	trial := model.MoldTrial{Version: "T2", Condition: "flash at parting line"}
	advice, err := g.TrialAdvice(context.Background(), "MOLD-A1", trial)
	require.NoError(t, err)

	assert.Equal(t, "Increase holding pressure by 5 MPa.", advice)

	// Plain-text requests must not carry a response schema.
	require.NotNil(t, gotReq.GenerationConfig)
	assert.Empty(t, gotReq.GenerationConfig.ResponseMIMEType)
	require.Len(t, gotReq.Contents, 1)
	assert.Contains(t, gotReq.Contents[0].Parts[0].Text, "MOLD-A1")
	assert.Contains(t, gotReq.Contents[0].Parts[0].Text, "flash at parting line")
}

func TestTrialAdviceEmptyResponseIsAnError(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(candidateResponse("   "))
	})

	_, err := g.TrialAdvice(context.Background(), "MOLD-A1", model.MoldTrial{})
	assert.Error(t, err)
}

func TestNoCandidatesIsAnError(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
	})

	_, err := g.BulkInsight(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestAPIErrorMessageIsSurfaced(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"code": 429, "message": "quota exceeded"},
		})
	})

	_, err := g.TrialAdvice(context.Background(), "MOLD-A1", model.MoldTrial{Condition: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Contains(t, err.Error(), "429")
}

func TestCustomModelNameShapesTheRequestPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(candidateResponse("ok"))
	}))
	t.Cleanup(srv.Close)

	g := New("k", "gemini-2.5-flash", 512, srv.URL)
	_, err := g.TrialAdvice(context.Background(), "MOLD-B2", model.MoldTrial{Condition: "x"})
	require.NoError(t, err)

	assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", gotPath)
}
