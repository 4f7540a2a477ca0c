// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package imagegen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/price-scout/internal/gemini"
	"github.com/pdiddy/price-scout/pkg/types"
)

func newSynth(t *testing.T, handler http.HandlerFunc) *Synthesizer {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return New(gemini.NewClient(ts.Client(), types.AIConfig{APIKey: "test-key", BaseURL: ts.URL}), "")
}

func TestSynthesize(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{
			name:   "jpeg bytes",
			status: http.StatusOK,
			body:   `{"predictions":[{"bytesBase64Encoded":"QUJD","mimeType":"image/jpeg"}]}`,
			want:   "data:image/jpeg;base64,QUJD",
		},
		{
			name:   "mime type defaults to jpeg",
			status: http.StatusOK,
			body:   `{"predictions":[{"bytesBase64Encoded":"QUJD"}]}`,
			want:   "data:image/jpeg;base64,QUJD",
		},
		{
			name:   "png passes through",
			status: http.StatusOK,
			body:   `{"predictions":[{"bytesBase64Encoded":"iVBO","mimeType":"image/png"}]}`,
			want:   "data:image/png;base64,iVBO",
		},
		{name: "no predictions", status: http.StatusOK, body: `{"predictions":[]}`},
		{name: "filtered prediction", status: http.StatusOK, body: `{"predictions":[{"raiFilteredReason":"blocked"}]}`},
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":{"message":"boom"}}`},
		{name: "invalid key", status: http.StatusBadRequest, body: `{"error":{"message":"API key not valid"}}`},
		{name: "bad json", status: http.StatusOK, body: `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSynth(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			assert.Equal(t, tt.want, s.Synthesize(context.Background(), "Organic Bananas"))
		})
	}
}

func TestSynthesizeRequestShape(t *testing.T) {
	var got predictRequest
	s := newSynth(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/"+DefaultModel+":predict", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"predictions":[{"bytesBase64Encoded":"QUJD"}]}`))
	})

	s.Synthesize(context.Background(), "Whole Milk, 1 gal")

	require.Len(t, got.Instances, 1)
	assert.Contains(t, got.Instances[0].Prompt, `"Whole Milk, 1 gal"`)
	assert.Equal(t, 1, got.Parameters.SampleCount)
	assert.Equal(t, "image/jpeg", got.Parameters.OutputMimeType)
}

func TestSynthesizeWithoutKeyMakesNoCall(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	}))
	defer ts.Close()

	s := New(gemini.NewClient(ts.Client(), types.AIConfig{BaseURL: ts.URL}), "")
	assert.False(t, s.Configured())
	assert.Empty(t, s.Synthesize(context.Background(), "Bananas"))
	assert.Zero(t, calls.Load())

	var nilSynth *Synthesizer
	assert.False(t, nilSynth.Configured())
	assert.Empty(t, nilSynth.Synthesize(context.Background(), "Bananas"))
}
