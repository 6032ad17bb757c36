package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csv2cypher/internal/config"
	"github.com/JonMunkholm/csv2cypher/internal/core"
	"github.com/JonMunkholm/csv2cypher/internal/handler"
	"github.com/JonMunkholm/csv2cypher/internal/history"
	"github.com/JonMunkholm/csv2cypher/internal/tabular"
)

const (
	knowledgeCSV    = "名稱(Name),標籤(Label),學制(Education System),學科(Subject)\n函數,KP,高中,數學\n極限,KP,高中,數學\n"
	prerequisiteCSV = "Types,Prerequisite,Target\n,函數,極限\n"
)

type utf8Detector struct{}

func (utf8Detector) Detect([]byte) (tabular.Detection, error) {
	return tabular.Detection{Encoding: "utf-8", Confidence: 1}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Convert: config.ConvertConfig{MaxFileSize: 1 << 20},
		Server: config.ServerConfig{
			Port:           8080,
			RequestTimeout: 10 * time.Second,
			MaxConcurrent:  2,
		},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *history.Memory) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reader := tabular.NewReader(tabular.WithDetector(utf8Detector{}), tabular.WithLogger(logger))
	conv := core.NewConverter(core.WithReader(reader), core.WithLogger(logger))
	mem := history.NewMemory(50)
	pipeline := handler.NewPipeline(conv, handler.WithRecorder(mem))
	return NewServer(pipeline, mem, cfg, logger), mem
}

type part struct {
	field, filename, content string
}

func multipartRequest(t *testing.T, path string, parts ...part) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.filename)
		require.NoError(t, err)
		_, err = io.WriteString(fw, p.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestConvertKnowledgePoints(t *testing.T) {
	s, mem := newTestServer(t, testConfig())
	req := multipartRequest(t, "/api/convert/knowledge-points", part{"file", "knowledge_points_EMA.csv", knowledgeCSV})

	rec := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "2", rec.Header().Get("X-Records"))
	assert.Equal(t, "utf-8", rec.Header().Get("X-Encoding"))
	assert.Contains(t, rec.Body.String(), "{name: '函數', educationSystem: '高中', subject: '數學'}")
	assert.Contains(t, rec.Body.String(), "CREATE (n:KnowledgePoint) SET n = nodeData")

	entries, err := mem.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "knowledge_points_EMA.csv", entries[0].Source)
}

func TestConvertPrerequisites(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	req := multipartRequest(t, "/api/convert/prerequisites", part{"file", "p.csv", prerequisiteCSV})

	rec := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "{prerequisite: '函數', target: '極限', type: 'Prerequisite'}")
}

func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		name   string
		req    func(t *testing.T) *http.Request
		status int
		code   string
	}{
		{
			name: "missing column",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/convert/knowledge-points", part{"file", "k.csv", "Label,Name\nKP,A\n"})
			},
			status: http.StatusUnprocessableEntity,
			code:   "VAL004",
		},
		{
			name: "duplicate name",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/convert/knowledge-points",
					part{"file", "k.csv", "Label,Name,Education System,Subject\nKP,A,E,S\nKP,A,E,S\n"})
			},
			status: http.StatusUnprocessableEntity,
			code:   "VAL007",
		},
		{
			name: "empty file",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/convert/prerequisites", part{"file", "p.csv", ""})
			},
			status: http.StatusUnprocessableEntity,
			code:   "FILE005",
		},
		{
			name: "wrong field",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/convert/prerequisites", part{"upload", "p.csv", prerequisiteCSV})
			},
			status: http.StatusBadRequest,
			code:   "FILE004",
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/convert/prerequisites", strings.NewReader("x"))
			},
			status: http.StatusBadRequest,
			code:   "FILE004",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, testConfig())
			rec := serve(s, tt.req(t))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestConvert_TooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Convert.MaxFileSize = 16
	s, _ := newTestServer(t, cfg)

	big := strings.Repeat("a,b,c\n", 2<<20)
	rec := serve(s, multipartRequest(t, "/api/convert/prerequisites", part{"file", "p.csv", big}))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "FILE001", decodeError(t, rec).Code)
}

func TestConvertScript(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	req := multipartRequest(t, "/api/convert/script",
		part{"knowledge", "knowledge_points_EMA.csv", knowledgeCSV},
		part{"prerequisite", "Prerequisite_EMA.csv", prerequisiteCSV},
	)

	rec := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "// 完整的Neo4j Cypher腳本\n"))
	assert.Contains(t, body, "// 檔案: knowledge_points_EMA.csv + Prerequisite_EMA.csv\n")
	assert.Contains(t, body, "CREATE (a)-[r:Prerequisite]->(b)")
	assert.Equal(t, "2", rec.Header().Get("X-Nodes"))
	assert.Equal(t, "1", rec.Header().Get("X-Relationships"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "knowledge_points_EMA_Prerequisite_EMA_complete.cypher")
}

func TestConvertScript_OneSideFails(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	req := multipartRequest(t, "/api/convert/script",
		part{"knowledge", "k.csv", "Name\nA\n"},
		part{"prerequisite", "p.csv", prerequisiteCSV},
	)

	rec := serve(s, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VAL004", decodeError(t, rec).Code)
}

func TestHistory(t *testing.T) {
	s, mem := newTestServer(t, testConfig())
	for _, src := range []string{"a.csv", "b.csv", "c.csv"} {
		require.NoError(t, mem.Record(context.Background(), history.NewEntry("knowledge_points", src)))
	}

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/history?limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Entries []history.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Entries, 2)
	assert.Equal(t, "c.csv", body.Entries[0].Source)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/history?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "REQ004", decodeError(t, rec).Code)
}

func TestHistory_Empty(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"entries":[]}`, rec.Body.String())
}

func TestAPIKeyAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Server.APIKeys = []string{"secret"}
	s, _ := newTestServer(t, cfg)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set("X-API-Key", "wrong")
	assert.Equal(t, http.StatusForbidden, serve(s, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set("X-API-Key", "secret")
	assert.Equal(t, http.StatusOK, serve(s, req).Code)

	// Health stays open.
	assert.Equal(t, http.StatusOK, serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(handler.ErrTooManyConversions))
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(context.DeadlineExceeded))
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
}
