package client

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

	"github.com/andrewpaige1/learntree-api/models"
)

// APIError is a non-success response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// Client calls the node API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New returns a Client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateNodeRequest is the body of POST /api/nodes.
type CreateNodeRequest struct {
	Question string `json:"question"`
	UserID   string `json:"userId"`
	TreeID   uint   `json:"treeId"`
	ParentID *uint  `json:"parentId"`
}

// CreateNode streams a new node, reporting snapshots to onUpdate, then
// fetches the persisted node from the tree identified by treeHash.
func (c *Client) CreateNode(ctx context.Context, treeHash string, req CreateNodeRequest, onUpdate func(StreamingNode)) (*models.Node, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/nodes", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, decodeError(resp)
	}

	if _, err := Decode(resp.Body, req.Question, onUpdate); err != nil {
		return nil, err
	}

	return c.LatestNode(ctx, treeHash)
}

// Nodes lists the user's nodes, optionally limited to one tree.
func (c *Client) Nodes(ctx context.Context, userID, treeHash string) ([]models.Node, error) {
	q := url.Values{"userId": {userID}}
	if treeHash != "" {
		q.Set("treeHash", treeHash)
	}

	var out struct {
		Nodes []models.Node `json:"nodes"`
	}
	if err := c.getJSON(ctx, "/api/nodes?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Nodes, nil
}

// Tree fetches a tree with its nodes nested.
func (c *Client) Tree(ctx context.Context, hash string) (*models.Tree, error) {
	var tree models.Tree
	if err := c.getJSON(ctx, "/api/trees/"+url.PathEscape(hash), &tree); err != nil {
		return nil, err
	}
	return &tree, nil
}

// LatestNode fetches the most recently created node of a tree.
func (c *Client) LatestNode(ctx context.Context, hash string) (*models.Node, error) {
	var out struct {
		Node models.Node `json:"node"`
	}
	if err := c.getJSON(ctx, "/api/trees/"+url.PathEscape(hash)+"/latest_node", &out); err != nil {
		return nil, err
	}
	return &out.Node, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(raw))
	}
	if body.Error == "" {
		body.Error = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: body.Error}
}
