// Package genai optionally rewrites templated replies into warmer prose.
// Enhancement is strictly cosmetic: every fact in the reply comes from the
// template, and any failure or timeout falls back to the template verbatim.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	commonerrors "loan-assistant/internal/common/errors"
	commonhttp "loan-assistant/internal/common/http"
	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/common/metrics"
	"loan-assistant/internal/models"
)

// Client calls the text generation API.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *commonhttp.Client
	timeout time.Duration
	log     logger.Logger
}

func NewClient(baseURL, apiKey, model string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		http:    commonhttp.NewClient(timeout),
		timeout: timeout,
		log:     log,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// recentExchanges keeps the prompt short while still giving the model the
// conversational tone so far.
const recentExchanges = 3

// Enhance rewrites the templated reply while preserving its facts. On any
// failure the original reply is returned with the error; callers are
// expected to serve the original.
func (c *Client) Enhance(ctx context.Context, stage string, history []models.Exchange, reply string) (string, error) {
	var transcript strings.Builder
	start := len(history) - recentExchanges
	if start < 0 {
		start = 0
	}
	for _, ex := range history[start:] {
		fmt.Fprintf(&transcript, "Applicant: %s\nAssistant: %s\n", ex.Utterance, ex.Response)
	}

	prompt := fmt.Sprintf(
		"Rewrite this loan assistant reply warmly in at most two sentences. "+
			"Keep every number and fact unchanged. Stage: %s.\n%sReply: %s",
		stage, transcript.String(), reply,
	)

	raw, err := json.Marshal(generateRequest{Model: c.model, Prompt: prompt})
	if err != nil {
		return reply, commonerrors.NewGenAIRequestFailedError(err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/generate", bytes.NewReader(raw))
	if err != nil {
		return reply, commonerrors.NewGenAIRequestFailedError(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		metrics.CollaboratorFailures.WithLabelValues("genai").Inc()
		if ctx.Err() == context.DeadlineExceeded {
			return reply, commonerrors.NewGenAITimeoutError()
		}
		return reply, commonerrors.NewGenAIRequestFailedError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.CollaboratorFailures.WithLabelValues("genai").Inc()
		return reply, commonerrors.NewGenAIRequestFailedError(fmt.Errorf("generation API returned %d", resp.StatusCode))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return reply, commonerrors.NewGenAIRequestFailedError(err)
	}

	enhanced := strings.TrimSpace(out.Text)
	if enhanced == "" {
		return reply, nil
	}
	return enhanced, nil
}
