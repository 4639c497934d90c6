package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/crmstream/crm-sync/internal/config"
	"github.com/crmstream/crm-sync/internal/models"
	"github.com/crmstream/crm-sync/pkg/utils"
)

// Client is a thin HTTP client for the CRM search, batch-read and
// association endpoints. It performs single requests only; retry policy
// lives in the RetryController.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logrus.Logger

	mu    sync.RWMutex
	token string
}

// ClientOption allows configuring the CRM client
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new CRM client
func NewClient(cfg *config.CRMConfig, logger *logrus.Logger, opts ...ClientOption) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		logger:     logger,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// SetAccessToken sets the bearer token used for subsequent requests
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) accessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SearchRecords requests one page of records of the given type
func (c *Client) SearchRecords(ctx context.Context, recordType models.RecordType, req *SearchRequest) (*SearchResponse, error) {
	var resp SearchResponse
	path := fmt.Sprintf("/crm/v3/objects/%s/search", recordType)
	if err := c.doRequest(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ContactCompanyAssociations resolves contact→company associations for a
// whole page of contact ids in one batch call. Contacts without an
// association are absent from the returned map.
func (c *Client) ContactCompanyAssociations(ctx context.Context, contactIDs []string) (map[string]string, error) {
	if len(contactIDs) == 0 {
		return map[string]string{}, nil
	}

	req := &associationBatchRequest{Inputs: make([]assocRef, len(contactIDs))}
	for i, id := range contactIDs {
		req.Inputs[i] = assocRef{ID: id}
	}

	var resp associationBatchResponse
	if err := c.doRequest(ctx, http.MethodPost, "/crm/v3/associations/contacts/companies/batch/read", req, &resp); err != nil {
		return nil, err
	}

	associations := make(map[string]string, len(resp.Results))
	for _, a := range resp.Results {
		if a.From == nil || len(a.To) == 0 {
			continue
		}
		associations[a.From.ID] = a.To[0].ID
	}
	return associations, nil
}

// BatchReadContacts reads contacts by id with the requested properties
func (c *Client) BatchReadContacts(ctx context.Context, contactIDs []string, properties []string) ([]*models.Record, error) {
	if len(contactIDs) == 0 {
		return nil, nil
	}

	req := &batchReadRequest{
		Properties: properties,
		Inputs:     make([]assocRef, len(contactIDs)),
	}
	for i, id := range contactIDs {
		req.Inputs[i] = assocRef{ID: id}
	}

	var resp batchReadResponse
	if err := c.doRequest(ctx, http.MethodPost, "/crm/v3/objects/contacts/batch/read", req, &resp); err != nil {
		return nil, err
	}

	records := make([]*models.Record, 0, len(resp.Results))
	for _, r := range resp.Results {
		records = append(records, toRecord(r))
	}
	return records, nil
}

// AttendeeEmails resolves the attendee emails of a meeting: the associated
// contacts are listed first, then their emails are read in one batch call.
func (c *Client) AttendeeEmails(ctx context.Context, meetingID string) ([]string, error) {
	var assoc meetingAssociationsResponse
	path := fmt.Sprintf("/crm/v3/objects/meetings/%s/associations/contacts", meetingID)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &assoc); err != nil {
		return nil, err
	}

	contactIDs := make([]string, 0, len(assoc.Results))
	for _, r := range assoc.Results {
		if r.ToObjectID != "" {
			contactIDs = append(contactIDs, r.ToObjectID)
		}
	}
	if len(contactIDs) == 0 {
		return nil, nil
	}

	contacts, err := c.BatchReadContacts(ctx, contactIDs, []string{"email"})
	if err != nil {
		return nil, err
	}

	emails := make([]string, 0, len(contacts))
	for _, contact := range contacts {
		if email, ok := contact.Prop("email"); ok && email != "" {
			emails = append(emails, email)
		}
	}
	return emails, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return NewCRMError(0, "request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewCRMError(resp.StatusCode, "failed to read response body", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return NewCRMError(resp.StatusCode, string(respBody), nil)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return NewCRMError(resp.StatusCode, "failed to decode response", err)
		}
	}

	return nil
}

// toRecord converts a wire record into the domain shape, dropping
// null-valued properties
func toRecord(r searchRecord) *models.Record {
	return &models.Record{
		ID:         r.ID,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		Properties: utils.FilterNilProps(r.Properties),
	}
}
