package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the identity provider's administrative API (GoTrue-style:
// user listing/creation, metadata upserts, password-grant token issuance).
type Client struct {
	baseURL    string
	serviceKey string
	http       *http.Client
}

func NewClient(baseURL, serviceKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		http:       &http.Client{Timeout: 15 * time.Second},
	}
}

type ProviderUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("identity provider error %d: %s", e.Status, e.Body)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
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
		return &apiError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// FindUserByEmail returns the provider account for an email, or nil if none
// exists. Lookup-before-create keeps the provisioning flow retry-safe.
func (c *Client) FindUserByEmail(ctx context.Context, email string) (*ProviderUser, error) {
	q := url.Values{}
	q.Set("email", email)

	var resp struct {
		Users []ProviderUser `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/admin/users", q, nil, &resp); err != nil {
		return nil, err
	}
	for i := range resp.Users {
		if strings.EqualFold(resp.Users[i].Email, email) {
			return &resp.Users[i], nil
		}
	}
	return nil, nil
}

func (c *Client) CreateUser(ctx context.Context, email, password string, metadata map[string]any) (*ProviderUser, error) {
	body := map[string]any{
		"email":         email,
		"password":      password,
		"email_confirm": true,
		"user_metadata": metadata,
	}
	var user ProviderUser
	if err := c.do(ctx, http.MethodPost, "/admin/users", nil, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, password string, metadata map[string]any) error {
	body := map[string]any{}
	if password != "" {
		body["password"] = password
	}
	if metadata != nil {
		body["user_metadata"] = metadata
	}
	return c.do(ctx, http.MethodPut, "/admin/users/"+id, nil, body, nil)
}

// SignIn exchanges email+password for a session token pair.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	q := url.Values{}
	q.Set("grant_type", "password")

	body := map[string]any{
		"email":    email,
		"password": password,
	}
	var session Session
	if err := c.do(ctx, http.MethodPost, "/token", q, body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}
