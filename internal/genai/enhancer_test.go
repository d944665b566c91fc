package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/models"
)

func TestEnhanceSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/generate", r.URL.Path)
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "text-v2", req.Model)
		assert.Contains(t, req.Prompt, "Rs.2,50,000")
		assert.Contains(t, req.Prompt, "need 2.5 lakh")

		json.NewEncoder(w).Encode(generateResponse{Text: "Great news! Your Rs.2,50,000 loan is approved."})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key-1", "text-v2", time.Second, logger.NewTestLogger(t))
	history := []models.Exchange{
		{Utterance: "need 2.5 lakh", Response: "Here's your quote."},
	}
	out, err := c.Enhance(context.Background(), "sanction", history, "Approved: Rs.2,50,000 at 12.0%")
	require.NoError(t, err)
	assert.Equal(t, "Great news! Your Rs.2,50,000 loan is approved.", out)
}

func TestEnhanceFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "text-v2", time.Second, logger.NewTestLogger(t))
	original := "Approved: Rs.2,50,000 at 12.0%"
	out, err := c.Enhance(context.Background(), "sanction", nil, original)
	assert.Error(t, err)
	assert.Equal(t, original, out)
}

func TestEnhanceFallsBackOnTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "text-v2", 20*time.Millisecond, logger.NewTestLogger(t))
	original := "Approved: Rs.2,50,000 at 12.0%"
	out, err := c.Enhance(context.Background(), "sanction", nil, original)
	assert.Error(t, err)
	assert.Equal(t, original, out)
}

func TestEnhanceEmptyTextKeepsOriginal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Text: "   "})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "text-v2", time.Second, logger.NewTestLogger(t))
	original := "Approved: Rs.2,50,000 at 12.0%"
	out, err := c.Enhance(context.Background(), "sanction", nil, original)
	require.NoError(t, err)
	assert.Equal(t, original, out)
}
