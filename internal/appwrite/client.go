package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/netchat/netchat/internal/config"
	"github.com/netchat/netchat/internal/models"
)

// UniqueID asks the store to generate the document id.
const UniqueID = "unique()"

// maxResponseSize bounds how much of a response body is read.
const maxResponseSize = 10 * 1024 * 1024

// Client is a wrapper around the Appwrite databases REST API.
// It uses the server API key when one is configured.
type Client struct {
	baseURL    string
	projectID  string
	apiKey     string
	databaseID string
	httpClient *http.Client
}

// NewClient creates a new Appwrite client with the given configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.AppwriteEndpoint, "/"),
		projectID:  cfg.AppwriteProjectID,
		apiKey:     cfg.AppwriteAPIKey,
		databaseID: cfg.DatabaseID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// APIError is a non-2xx answer from the store other than 404.
type APIError struct {
	Status  int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("appwrite error (status %d, %s): %s", e.Status, e.Type, e.Message)
}

// DocumentList is the envelope returned by the listing endpoint.
type DocumentList struct {
	Total     int               `json:"total"`
	Documents []json.RawMessage `json:"documents"`
}

// Decode unmarshals every document into out, which must point to a slice.
func (l *DocumentList) Decode(out any) error {
	raw, err := json.Marshal(l.Documents)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse documents: %w", err)
	}
	return nil
}

// doRequest executes an HTTP request against the databases API.
// It adds the project headers and turns failures into typed errors.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, query url.Values, body any) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	u := fmt.Sprintf("%s/databases/%s/%s", c.baseURL, url.PathEscape(c.databaseID), endpoint)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Appwrite-Project", c.projectID)
	if c.apiKey != "" {
		req.Header.Set("X-Appwrite-Key", c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &models.NetworkError{Op: method, URL: u, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &models.NetworkError{Op: "read " + method, URL: u, Err: err}
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, models.ErrNotFound)
	}
	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = string(respBody)
		}
		apiErr.Status = resp.StatusCode
		log.Debug().Int("status", resp.StatusCode).Str("url", u).Msg("[Appwrite] request failed")
		return nil, apiErr
	}

	return respBody, nil
}

// ListDocuments lists the documents of a collection matching the queries.
func (c *Client) ListDocuments(ctx context.Context, collectionID string, queries ...Query) (*DocumentList, error) {
	params := url.Values{}
	for _, q := range queries {
		params.Add("queries[]", q.String())
	}

	endpoint := fmt.Sprintf("collections/%s/documents", url.PathEscape(collectionID))
	respBody, err := c.doRequest(ctx, http.MethodGet, endpoint, params, nil)
	if err != nil {
		return nil, err
	}

	var list DocumentList
	if err := json.Unmarshal(respBody, &list); err != nil {
		return nil, &models.NetworkError{Op: "decode document list", Err: err}
	}
	return &list, nil
}

// GetDocument fetches one document by id and decodes it into out.
// A missing document yields an error wrapping models.ErrNotFound.
func (c *Client) GetDocument(ctx context.Context, collectionID, documentID string, out any) error {
	endpoint := fmt.Sprintf("collections/%s/documents/%s", url.PathEscape(collectionID), url.PathEscape(documentID))
	respBody, err := c.doRequest(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &models.NetworkError{Op: "decode document", Err: err}
	}
	return nil
}

// CreateDocument inserts a document and decodes the stored representation into out.
// Pass UniqueID to let the store assign the id.
func (c *Client) CreateDocument(ctx context.Context, collectionID, documentID string, data any, out any) error {
	body := map[string]any{
		"documentId": documentID,
		"data":       data,
	}
	endpoint := fmt.Sprintf("collections/%s/documents", url.PathEscape(collectionID))
	respBody, err := c.doRequest(ctx, http.MethodPost, endpoint, nil, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &models.NetworkError{Op: "decode created document", Err: err}
	}
	return nil
}

// IsNotFound reports whether err means the document does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
