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

// CalendarSender creates one calendar event.
type CalendarSender interface {
	CreateEvent(ctx context.Context, payload CalendarPayload) error
}

// CalendarClient posts events to the scheduling calendar API.
type CalendarClient struct {
	baseURL    string
	apiKey     string
	calendarID string
	http       *http.Client
}

func NewCalendarClient(baseURL, apiKey, calendarID string) *CalendarClient {
	return &CalendarClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		calendarID: calendarID,
		http:       &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *CalendarClient) CreateEvent(ctx context.Context, payload CalendarPayload) error {
	body := map[string]any{
		"title":       payload.Title,
		"description": payload.Description,
		"crew":        payload.CrewName,
		"color":       payload.CrewColor,
	}
	if payload.Start != nil {
		body["start"] = payload.Start.Format(time.RFC3339)
	}
	if payload.End != nil {
		body["end"] = payload.End.Format(time.RFC3339)
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/v1/calendars/%s/events", c.calendarID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
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
		return fmt.Errorf("calendar api error %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return nil
}
