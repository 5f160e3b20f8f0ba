package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"LivingHistory/server/internal/characters"
	"LivingHistory/server/internal/config"
	"LivingHistory/server/internal/engine"
	"LivingHistory/server/internal/generators"
	"LivingHistory/server/internal/session"
	"LivingHistory/server/internal/storage"
)

type nullAssets struct{}

func (nullAssets) GenerateAvatar(_ context.Context, _, _, _ string) string      { return "avatar" }
func (nullAssets) GenerateEnvironment(_ context.Context, _, _, _ string) string { return "env" }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()
	store := storage.NewMemoryStore()
	chars := characters.NewService(nil, logger)
	chain := generators.NewChain(generators.NewFallback(), logger)
	eng := engine.New(store, chars, chain, config.StoryConfig{EstimatedChoicePoints: 20, TraitBonus: 20}, logger)
	controller := session.NewController(eng, chars, nullAssets{}, logger)
	hub := NewEventHub(logger)

	srv := httptest.NewServer(NewRouter(controller, chars, hub, logger))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, into interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestStartAndChooseFlow(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/story/start", StartStoryRequest{
		CharacterID:   "1",
		CharacterType: "historical",
		Accuracy:      "accurate",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var started StoryResponse
	decode(t, resp, &started)
	require.True(t, started.Success)
	require.NotNil(t, started.Storyline)

	start := started.Storyline.Nodes[started.Storyline.StartNodeID]
	require.NotNil(t, start)
	require.NotEmpty(t, start.Choices)

	resp = postJSON(t, srv.URL+"/api/v1/story/choose", ChooseRequest{ChoiceID: start.Choices[0].ID})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var chosen StoryResponse
	decode(t, resp, &chosen)
	require.True(t, chosen.Success)
	require.NotNil(t, chosen.Node)
	assert.NotEqual(t, start.ID, chosen.Node.ID)
}

func TestStartValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		req  StartStoryRequest
	}{
		{"missing character id", StartStoryRequest{}},
		{"unknown character type", StartStoryRequest{CharacterID: "1", CharacterType: "mythical"}},
		{"unknown accuracy", StartStoryRequest{CharacterID: "1", Accuracy: "loose"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/v1/story/start", tt.req)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestCharacterRoster(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/characters/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success    bool `json:"success"`
		Characters []struct {
			Name string `json:"name"`
		} `json:"characters"`
	}
	decode(t, resp, &body)
	require.True(t, body.Success)
	require.Len(t, body.Characters, 3)
	assert.Equal(t, "Mahatma Gandhi", body.Characters[0].Name)
}

func TestCharacterNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/characters/99")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestDeleteUnknownStoryline(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/story/nope", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	// Removal is idempotent at the store level.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestTranscriptEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/story/start", StartStoryRequest{CharacterID: "1"})
	var started StoryResponse
	decode(t, resp, &started)
	require.NotNil(t, started.Storyline)

	resp2, err := http.Get(srv.URL + "/api/v1/story/" + started.Storyline.ID + "/transcript")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
	assert.Contains(t, resp2.Header.Get("Content-Type"), "markdown")
}
