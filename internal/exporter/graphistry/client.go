// Package graphistry uploads prepared node and edge tables to a Graphistry
// server through its REST upload API and reports the viewer URL.
//
// The session is: log in for a JWT, create a dataset carrying the column
// bindings, upload the edge table, upload the node table. There are no
// retries; any failed request fails the export.
package graphistry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// API paths, relative to the server base URL.
const (
	pathLogin    = "/api/v2/auth/token/generate"
	pathDatasets = "/api/v2/upload/datasets/"
	pathViewer   = "/graph/graph.html"
)

// maxErrorBody bounds how much of a failed response body is kept.
const maxErrorBody = 512

// APIError is returned for non-2xx responses and for responses that report
// success=false.
type APIError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graphistry %s %s: status %d: %s", e.Method, e.Endpoint, e.StatusCode, e.Body)
}

// Client is a minimal Graphistry REST client.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
	token      string
}

// NewClient returns a client for protocol://server. httpClient may be nil.
func NewClient(protocol, server string, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if server == "" {
		return nil, fmt.Errorf("graphistry server not specified")
	}
	if protocol == "" {
		protocol = "https"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	base, err := url.Parse(protocol + "://" + strings.TrimSuffix(server, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid graphistry server %q: %w", server, err)
	}

	return &Client{baseURL: base, httpClient: httpClient, logger: logger}, nil
}

// ViewerURL returns the browser URL for a dataset.
func (c *Client) ViewerURL(datasetID string) string {
	u := c.baseURL.JoinPath(pathViewer)
	u.RawQuery = url.Values{"dataset": {datasetID}}.Encode()
	return u.String()
}

// DatasetRequest is the body of a dataset creation call.
type DatasetRequest struct {
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	NodeEncodings Encodings      `json:"node_encodings"`
	EdgeEncodings Encodings      `json:"edge_encodings"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Encodings wraps the role-to-column bindings for one table.
type Encodings struct {
	Bindings map[string]string `json:"bindings"`
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// CreateDataset registers a dataset and returns its id.
func (c *Client) CreateDataset(ctx context.Context, req DatasetRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode dataset request: %w", err)
	}

	var env envelope
	if err := c.do(ctx, http.MethodPost, pathDatasets, nil, "application/json", body, &env); err != nil {
		return "", fmt.Errorf("failed to create dataset: %w", err)
	}

	var data struct {
		DatasetID string `json:"dataset_id"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.DatasetID == "" {
		return "", fmt.Errorf("failed to create dataset: response has no dataset_id")
	}

	c.logger.Debug("dataset created", "dataset_id", data.DatasetID, "name", req.Name)
	return data.DatasetID, nil
}

// UploadTable uploads one table ("nodes" or "edges") of a dataset in the
// given format ("parquet" or "json").
func (c *Client) UploadTable(ctx context.Context, datasetID, table string, enc Encoding, body []byte) error {
	endpoint := pathDatasets + url.PathEscape(datasetID) + "/" + table + "/" + enc.Format()

	var query url.Values
	if enc == EncodingJSON {
		query = url.Values{"orient": {"records"}}
	}

	if err := c.do(ctx, http.MethodPost, endpoint, query, enc.ContentType(), body, nil); err != nil {
		return fmt.Errorf("failed to upload %s: %w", table, err)
	}

	c.logger.Debug("table uploaded", "dataset_id", datasetID, "table", table, "bytes", len(body))
	return nil
}

// do sends a request and decodes a JSON response into out. A response that
// carries success=false is reported as an APIError.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, contentType string, body []byte, out any) error {
	u := c.baseURL.JoinPath(endpoint)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Method: method, Endpoint: endpoint, StatusCode: resp.StatusCode, Body: truncate(raw)}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Success != nil && !*env.Success {
		return &APIError{Method: method, Endpoint: endpoint, StatusCode: resp.StatusCode, Body: truncate(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func truncate(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
