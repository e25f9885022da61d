package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// EmailSender delivers one email; implemented by the mail API client and by
// test fakes.
type EmailSender interface {
	Send(ctx context.Context, payload EmailPayload) error
}

// MailClient posts messages to a transactional mail API.
type MailClient struct {
	baseURL string
	apiKey  string
	from    string
	http    *http.Client
}

func NewMailClient(baseURL, apiKey, from string) *MailClient {
	return &MailClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		from:    from,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *MailClient) Send(ctx context.Context, payload EmailPayload) error {
	body := map[string]any{
		"from":    c.from,
		"to":      payload.To,
		"subject": payload.Subject,
		"text":    payload.Body,
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail api error %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return nil
}
