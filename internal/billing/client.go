package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Client talks to the external invoicing provider. The provider owns the
// documents; we only mirror ids and statuses locally.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type InvoiceRequest struct {
	ProjectRef    string          `json:"projectRef"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	Title         string          `json:"title"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
}

type InvoiceDoc struct {
	ID     string          `json:"id"`
	Number string          `json:"number"`
	Status string          `json:"status"` // draft, sent, paid
	Amount decimal.Decimal `json:"amount"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("billing api error %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func (c *Client) CreateInvoice(ctx context.Context, req InvoiceRequest) (*InvoiceDoc, error) {
	var doc InvoiceDoc
	if err := c.do(ctx, http.MethodPost, "/v1/invoices", req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) SendInvoice(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/v1/invoices/"+id+"/send", nil, nil)
}

func (c *Client) GetInvoice(ctx context.Context, id string) (*InvoiceDoc, error) {
	var doc InvoiceDoc
	if err := c.do(ctx, http.MethodGet, "/v1/invoices/"+id, nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
