// Package client is an HTTP client for the attrition API, used by the CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/insightportal/attrition/internal/artifact"
	"github.com/insightportal/attrition/internal/chat"
	"github.com/insightportal/attrition/internal/store"
)

// Client is an HTTP client for the attrition API
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Prediction is the scored result returned by the predict endpoints. The
// customer-only fields are empty for employee predictions.
type Prediction struct {
	EmployeeID      string         `json:"employee_id,omitempty"`
	CustomerID      string         `json:"customer_id,omitempty"`
	Prediction      int            `json:"prediction"`
	PredictionLabel string         `json:"prediction_label,omitempty"`
	Probability     float64        `json:"probability"`
	Status          string         `json:"status"`
	Suggestions     []string       `json:"suggestions"`
	InputFeatures   map[string]any `json:"input_features,omitempty"`
}

// SubjectID returns whichever identifier the prediction carries.
func (p *Prediction) SubjectID() string {
	if p.EmployeeID != "" {
		return p.EmployeeID
	}
	return p.CustomerID
}

// Predict scores one record against the given schema variant ("employee" or
// "customer").
func (c *Client) Predict(ctx context.Context, variant string, record map[string]any) (*Prediction, error) {
	var result Prediction
	if err := c.post(ctx, "/v1/predict/"+variant, record, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListEmployees retrieves a page of the roster with optional filters.
func (c *Client) ListEmployees(ctx context.Context, filter store.Filter) (*store.Page, error) {
	u, err := url.Parse(c.BaseURL + "/v1/employees")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	q := u.Query()
	if filter.Department != "" {
		q.Set("department", filter.Department)
	}
	if filter.RiskLevel != "" {
		q.Set("risk_level", filter.RiskLevel)
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	u.RawQuery = q.Encode()

	var page store.Page
	if err := c.get(ctx, u.String(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetEmployee retrieves one employee by ID.
func (c *Client) GetEmployee(ctx context.Context, employeeID string) (*store.Employee, error) {
	var emp store.Employee
	if err := c.get(ctx, c.BaseURL+"/v1/employees/"+url.PathEscape(employeeID), &emp); err != nil {
		return nil, err
	}
	return &emp, nil
}

// ArtifactStatus reports the load state of both artifact sets.
func (c *Client) ArtifactStatus(ctx context.Context) ([]artifact.Status, error) {
	var result struct {
		Artifacts []artifact.Status `json:"artifacts"`
	}
	if err := c.get(ctx, c.BaseURL+"/v1/artifacts", &result); err != nil {
		return nil, err
	}
	return result.Artifacts, nil
}

// ReloadArtifacts asks the server to re-read both artifact sets from disk.
// Requires the admin API key.
func (c *Client) ReloadArtifacts(ctx context.Context) (map[string]any, error) {
	var result map[string]any
	if err := c.post(ctx, "/v1/artifacts/reload", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Chat sends one question to the assistant.
func (c *Client) Chat(ctx context.Context, message string) (*chat.Reply, error) {
	var reply chat.Reply
	if err := c.post(ctx, "/v1/chat", map[string]string{"message": message}, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
