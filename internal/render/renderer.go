// Package render calls the sanction letter service. Rendering is the one
// collaborator whose failure the applicant sees: the conversation stays in
// the sanction stage until a render succeeds or the applicant walks away.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	commonerrors "loan-assistant/internal/common/errors"
	commonhttp "loan-assistant/internal/common/http"
	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/models"
)

// LetterRequest carries the fields printed on the sanction letter.
type LetterRequest struct {
	ApplicationID string  `json:"applicationId"`
	Name          string  `json:"name"`
	Address       string  `json:"address,omitempty"`
	Phone         string  `json:"phone,omitempty"`
	Amount        int64   `json:"amount"`
	TenureMonths  int     `json:"tenureMonths"`
	Rate          float64 `json:"rate"`
	EMI           float64 `json:"emi"`
}

// Client renders sanction letters over HTTP.
type Client struct {
	baseURL string
	http    *commonhttp.Client
	timeout time.Duration
	log     logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    commonhttp.NewClient(timeout),
		timeout: timeout,
		log:     log,
	}
}

// Render produces the sanction letter and returns an opaque document
// reference the applicant can download.
func (c *Client) Render(ctx context.Context, applicationID string, p *models.ApplicantProfile, d *models.Decision) (string, error) {
	reqBody := LetterRequest{
		ApplicationID: applicationID,
		Name:          p.Name,
		Address:       p.Address,
		Phone:         p.Phone,
		Amount:        d.ApprovedAmount,
		TenureMonths:  d.TenureMonths,
		Rate:          d.Rate,
		EMI:           d.EMI,
	}

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return "", commonerrors.NewRenderFailedError(err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render/sanction-letter", bytes.NewReader(raw))
	if err != nil {
		return "", commonerrors.NewRenderFailedError(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", commonerrors.NewRenderTimeoutError()
		}
		return "", commonerrors.NewRenderFailedError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", commonerrors.NewRenderFailedError(fmt.Errorf("render service returned %d", resp.StatusCode))
	}

	var out struct {
		DocumentPath string `json:"documentPath"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", commonerrors.NewRenderFailedError(err)
	}
	if out.DocumentPath == "" {
		return "", commonerrors.NewRenderFailedError(fmt.Errorf("empty document path"))
	}

	c.log.Info("Sanction letter rendered", map[string]interface{}{
		"applicationId": applicationID,
		"documentPath":  out.DocumentPath,
	})
	return out.DocumentPath, nil
}
