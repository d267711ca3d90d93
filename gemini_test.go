package partyhistory

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type geminiStub struct {
	mu       sync.Mutex
	status   int
	text     string
	requests []map[string]interface{}
	paths    []string
}

func (g *geminiStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req map[string]interface{}
	_ = json.Unmarshal(body, &req)

	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.paths = append(g.paths, r.URL.Path)
	status, text := g.status, g.text
	g.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if status != http.StatusOK {
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad request","status":"INVALID_ARGUMENT"}}`))
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"candidates": []interface{}{
			map[string]interface{}{
				"content": map[string]interface{}{
					"role":  "model",
					"parts": []interface{}{map[string]interface{}{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	})
}

func newTestGemini(t *testing.T, stub *geminiStub) *GeminiProvider {
	t.Helper()
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	p, err := NewGeminiProvider(t.Context(), ProviderConfig{Name: ProviderGemini, APIKey: "test", BaseURL: srv.URL})
	require.NoError(t, err)
	return p
}

func TestGeminiProvider_FetchQuestions(t *testing.T) {
	payload, err := json.Marshal(sampleQuestions(5))
	require.NoError(t, err)
	stub := &geminiStub{text: string(payload)}
	p := newTestGemini(t, stub)

	got, err := p.FetchQuestions(t.Context(), 5)
	require.NoError(t, err)
	assert.Equal(t, sampleQuestions(5), got)
	assert.Equal(t, "gemini:gemini-2.5-flash", p.Name())

	require.Len(t, stub.paths, 1)
	assert.True(t, strings.HasSuffix(stub.paths[0], "models/gemini-2.5-flash:generateContent"), stub.paths[0])

	genCfg, ok := stub.requests[0]["generationConfig"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "application/json", genCfg["responseMimeType"])
	assert.NotNil(t, genCfg["responseSchema"])
}

func TestGeminiProvider_FencedJSON(t *testing.T) {
	payload, err := json.Marshal(sampleEvents(2))
	require.NoError(t, err)
	p := newTestGemini(t, &geminiStub{text: "```json\n" + string(payload) + "\n```"})

	got, err := p.FetchTimeline(t.Context(), 2)
	require.NoError(t, err)
	assert.Equal(t, sampleEvents(2), got)
}

func TestGeminiProvider_Errors(t *testing.T) {
	tests := []struct {
		name string
		stub *geminiStub
		want error
	}{
		{"rejected", &geminiStub{status: http.StatusBadRequest}, ErrProviderRequest},
		{"empty text", &geminiStub{text: ""}, ErrEmptyResponse},
		{"not json", &geminiStub{text: "抱歉"}, ErrMalformedResponse},
		{"empty array", &geminiStub{text: "[]"}, ErrEmptyResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestGemini(t, tt.stub).FetchQuestions(t.Context(), 5)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGeminiProvider_ChatReply(t *testing.T) {
	stub := &geminiStub{text: "1921年。"}
	p := newTestGemini(t, stub)

	history := []ChatMessage{
		{Role: RoleModel, Text: tutorWelcome},
		{Role: RoleUser, Text: "你好"},
		{Role: RoleModel, Text: "你好！"},
	}
	reply, err := p.ChatReply(t.Context(), history, "党是哪一年成立的？")
	require.NoError(t, err)
	assert.Equal(t, "1921年。", reply)

	require.Len(t, stub.requests, 1)
	contents := stub.requests[0]["contents"].([]interface{})
	require.Len(t, contents, 4)
	roles := make([]string, len(contents))
	for i, c := range contents {
		roles[i], _ = c.(map[string]interface{})["role"].(string)
	}
	assert.Equal(t, []string{"model", "user", "model", "user"}, roles)
	assert.NotNil(t, stub.requests[0]["systemInstruction"])
}

func TestDecodeList(t *testing.T) {
	_, err := decodeList[Question]("   ")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = decodeList[Question](`{"id":1}`)
	assert.ErrorIs(t, err, ErrMalformedResponse)

	got, err := decodeList[Question]("```\n[{\"id\":3,\"question\":\"q\"}]\n```")
	require.NoError(t, err)
	assert.Equal(t, 3, got[0].ID)
}
