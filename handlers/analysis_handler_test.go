package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lexguard-backend/completion"
	"lexguard-backend/models"
	"lexguard-backend/repository"
	"lexguard-backend/service"
)

// analysisDraft passes every validation check against the Katz fixture
const analysisDraft = "Katz v. United States, 389 U.S. 347, governs this question. " +
	"A private conversation in a closed telephone booth carries a reasonable " +
	"expectation of privacy, so the authorities support suppression here."

type stubCompleter struct {
	reply string
	err   error
	calls int
}

func (s *stubCompleter) Complete(_ context.Context, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func testKnowledgeBase() *models.KnowledgeBase {
	return &models.KnowledgeBase{
		Name: "constitutional-law",
		Taxonomy: []models.TaxonomyNode{
			{ID: "law", Title: "Law"},
			{ID: "crim", Title: "Criminal Procedure", ParentID: "law"},
			{ID: "search", Title: "Search and Seizure", ParentID: "crim"},
			{ID: "tax", Title: "Federal Taxation", ParentID: "law"},
		},
		Items: []models.KnowledgeItem{
			{
				ID:                 "katz",
				Kind:               models.ItemKindCase,
				Name:               "Katz v. United States",
				Citation:           "389 U.S. 347",
				Facts:              "Federal agents attached a listening device to a public telephone booth.",
				Holding:            "The Fourth Amendment protects people, not places.",
				RuleOfLaw:          "Evidence obtained in violation of a reasonable expectation of privacy must be excluded from trial.",
				ClassificationPath: []string{"law", "crim", "search"},
			},
		},
	}
}

func newAnalysisRouter(c completion.Client, repo *repository.KnowledgeRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewAnalysisService(service.AnalysisWithCompleter(c))
	h := NewAnalysisHandler(svc, repo, zap.NewNop())
	router := gin.New()
	router.POST("/api/analyses", h.CreateAnalysis)
	return router
}

func postAnalysis(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/analyses", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func analysisBody(t *testing.T, req CreateAnalysisRequest) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(req))
	return buf.String()
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func envelopeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := decodeEnvelope(t, w)
	require.Equal(t, true, out["success"], "body: %s", w.Body.String())
	data, ok := out["data"].(map[string]any)
	require.True(t, ok, "body: %s", w.Body.String())
	return data
}

func envelopeErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	out := decodeEnvelope(t, w)
	require.Equal(t, false, out["success"], "body: %s", w.Body.String())
	errObj, ok := out["error"].(map[string]any)
	require.True(t, ok, "body: %s", w.Body.String())
	code, _ := errObj["code"].(string)
	return code
}

func TestCreateAnalysisValidated(t *testing.T) {
	router := newAnalysisRouter(&stubCompleter{reply: analysisDraft}, repository.NewKnowledgeRepository())

	w := postAnalysis(t, router, analysisBody(t, CreateAnalysisRequest{
		Query:         "Was the warrantless wiretap of the phone booth lawful?",
		KnowledgeBase: testKnowledgeBase(),
		TargetNodeID:  "search",
	}))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	data := envelopeData(t, w)
	assert.Equal(t, "validated", data["status"])
	assert.Equal(t, analysisDraft, data["generatedText"])
	assert.Equal(t, float64(1), data["iterations"])

	report, ok := data["validationReport"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "passed", report["status"])

	authorized, ok := data["authorizedContext"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"law", "crim", "search"}, authorized["path"])
}

func TestCreateAnalysisRejectedStillReturnsDraft(t *testing.T) {
	draft := "Smith v. Jones requires dismissal of the indictment."
	router := newAnalysisRouter(&stubCompleter{reply: draft}, repository.NewKnowledgeRepository())

	w := postAnalysis(t, router, analysisBody(t, CreateAnalysisRequest{
		Query:         "May the recording be admitted?",
		KnowledgeBase: testKnowledgeBase(),
		TargetNodeID:  "search",
	}))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := envelopeData(t, w)
	assert.Equal(t, "rejected", data["status"])
	assert.Equal(t, draft, data["generatedText"])

	report, ok := data["validationReport"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "failed", report["status"])
	assert.Equal(t, "CRITICAL", report["severity"])
	assert.Equal(t, "REJECT", report["recommendedAction"])
}

func TestCreateAnalysisInvalidJSON(t *testing.T) {
	router := newAnalysisRouter(&stubCompleter{reply: analysisDraft}, repository.NewKnowledgeRepository())

	w := postAnalysis(t, router, `{"query": `)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", envelopeErrorCode(t, w))
}

func TestCreateAnalysisErrorCodes(t *testing.T) {
	tests := []struct {
		name     string
		req      CreateAnalysisRequest
		wantCode int
		wantErr  string
	}{
		{
			name:     "empty query",
			req:      CreateAnalysisRequest{Query: "   ", KnowledgeBase: testKnowledgeBase()},
			wantCode: http.StatusBadRequest,
			wantErr:  "EMPTY_QUERY",
		},
		{
			name:     "missing knowledge base",
			req:      CreateAnalysisRequest{Query: "Was the search lawful?"},
			wantCode: http.StatusBadRequest,
			wantErr:  "EMPTY_KNOWLEDGE_BASE",
		},
		{
			name: "unknown target node",
			req: CreateAnalysisRequest{
				Query:         "Was the search lawful?",
				KnowledgeBase: testKnowledgeBase(),
				TargetNodeID:  "ghost",
			},
			wantCode: http.StatusBadRequest,
			wantErr:  "TARGET_NODE_NOT_FOUND",
		},
		{
			name: "node without authorities",
			req: CreateAnalysisRequest{
				Query:         "Is the deduction allowed?",
				KnowledgeBase: testKnowledgeBase(),
				TargetNodeID:  "tax",
			},
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "EMPTY_AUTHORIZATION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &stubCompleter{reply: analysisDraft}
			router := newAnalysisRouter(completer, repository.NewKnowledgeRepository())

			w := postAnalysis(t, router, analysisBody(t, tt.req))

			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			assert.Equal(t, tt.wantErr, envelopeErrorCode(t, w))
			assert.Zero(t, completer.calls)
		})
	}
}

func TestCreateAnalysisCompletionFailure(t *testing.T) {
	completer := &stubCompleter{err: &completion.TransportError{
		Provider:   completion.ProviderGemini,
		StatusCode: 503,
		Message:    "upstream unavailable",
		Retryable:  true,
	}}
	router := newAnalysisRouter(completer, repository.NewKnowledgeRepository())

	w := postAnalysis(t, router, analysisBody(t, CreateAnalysisRequest{
		Query:         "Was the search lawful?",
		KnowledgeBase: testKnowledgeBase(),
		TargetNodeID:  "search",
	}))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "COMPLETION_FAILED", envelopeErrorCode(t, w))
}

func TestCreateAnalysisByStoredID(t *testing.T) {
	repo := repository.NewKnowledgeRepository()
	record, err := repo.Store(context.Background(), []byte(`{"name":"constitutional-law"}`), testKnowledgeBase())
	require.NoError(t, err)

	router := newAnalysisRouter(&stubCompleter{reply: analysisDraft}, repo)

	w := postAnalysis(t, router, analysisBody(t, CreateAnalysisRequest{
		Query:           "Was the warrantless wiretap of the phone booth lawful?",
		KnowledgeBaseID: record.ID,
		TargetNodeID:    "search",
	}))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := envelopeData(t, w)
	assert.Equal(t, "validated", data["status"])
}

func TestCreateAnalysisUnknownStoredID(t *testing.T) {
	router := newAnalysisRouter(&stubCompleter{reply: analysisDraft}, repository.NewKnowledgeRepository())

	w := postAnalysis(t, router, analysisBody(t, CreateAnalysisRequest{
		Query:           "Was the search lawful?",
		KnowledgeBaseID: "no-such-id",
	}))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "KNOWLEDGE_BASE_NOT_FOUND", envelopeErrorCode(t, w))
}
