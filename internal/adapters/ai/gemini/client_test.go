package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/catalogseed/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Options{APIKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client()})
}

func reply(w http.ResponseWriter, parts ...map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"candidates": []map[string]any{{"content": map[string]any{"role": "model", "parts": parts}}},
	})
}

func structuredRequest() domain.StructuredRequest {
	return domain.StructuredRequest{
		Name:         "product",
		Instructions: "be precise",
		Prompt:       "make one",
		Schema:       &jsonschema.Definition{Type: jsonschema.Object},
	}
}

func TestGenerateJSON_SendsSchema(t *testing.T) {
	var got generateContentRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/"+DefaultTextModel+":generateContent", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("x-goog-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		reply(w, map[string]any{"text": "thinking...", "thought": true}, map[string]any{"text": `{"name":"Fizz"}`})
	})

	out, err := c.GenerateJSON(context.Background(), structuredRequest())
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Fizz"}`, string(out))

	assert.Equal(t, "application/json", got.GenerationConfig.ResponseMimeType)
	assert.Contains(t, string(got.GenerationConfig.ResponseJSONSchema), `"type":"object"`)
	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "be precise", got.SystemInstruction.Parts[0].Text)
}

func TestGenerateJSON_InlinesSchemaWhenFieldUnknown(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateContentRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if calls.Add(1) == 1 {
			http.Error(w, `Invalid JSON payload received. Unknown name "responseJsonSchema"`, http.StatusBadRequest)
			return
		}
		assert.Empty(t, req.GenerationConfig.ResponseJSONSchema)
		last := req.Contents[0].Parts[len(req.Contents[0].Parts)-1].Text
		assert.True(t, strings.HasPrefix(last, "Respond with JSON matching this JSON schema:"))
		reply(w, map[string]any{"text": "{}"})
	})

	out, err := c.GenerateJSON(context.Background(), structuredRequest())
	require.NoError(t, err)
	assert.Equal(t, "{}", string(out))
	assert.EqualValues(t, 2, calls.Load())
}

func TestGenerateJSON_NoCandidates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})
	_, err := c.GenerateJSON(context.Background(), structuredRequest())
	assert.ErrorIs(t, err, domain.ErrEmptyResponse)
}

func TestGenerateJSON_Blocked(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	})
	_, err := c.GenerateJSON(context.Background(), structuredRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SAFETY")
}

func TestGenerateImage_ReturnsInlineData(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	var got generateContentRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, DefaultImageModel)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		reply(w, map[string]any{"inlineData": map[string]any{
			"mimeType": "image/png",
			"data":     base64.StdEncoding.EncodeToString(png),
		}})
	})

	data, err := c.GenerateImage(context.Background(), "a chair")
	require.NoError(t, err)
	assert.Equal(t, png, data)
	assert.Equal(t, []string{"IMAGE"}, got.GenerationConfig.ResponseModalities)
}

func TestGenerateImage_TextOnlyIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, map[string]any{"text": "I cannot draw that"})
	})
	_, err := c.GenerateImage(context.Background(), "a chair")
	assert.ErrorIs(t, err, domain.ErrEmptyResponse)
}
