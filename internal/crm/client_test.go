package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crmstream/crm-sync/internal/config"
	"github.com/crmstream/crm-sync/internal/models"
)

func newTestClient(baseURL string) *Client {
	client := NewClient(&config.CRMConfig{
		BaseURL:        baseURL,
		RequestTimeout: 5 * time.Second,
	}, testLogger())
	client.SetAccessToken("token")
	return client
}

func TestSearchRecordsDropsNullProperties(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crm/v3/objects/contacts/search", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))

		w.Write([]byte(`{
			"results": [
				{
					"id": "42",
					"createdAt": "2024-03-01T00:00:00Z",
					"updatedAt": "2024-03-02T00:00:00Z",
					"properties": {"email": "a@example.com", "jobtitle": null}
				}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	resp, err := client.SearchRecords(context.Background(), models.RecordTypeContact, &SearchRequest{Limit: 100})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Empty(t, resp.NextCursor())

	record := toRecord(resp.Results[0])
	assert.Equal(t, "42", record.ID)

	email, ok := record.Prop("email")
	assert.True(t, ok)
	assert.Equal(t, "a@example.com", email)

	_, ok = record.Prop("jobtitle")
	assert.False(t, ok, "null properties must be dropped")
}

func TestSearchRecordsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.SearchRecords(context.Background(), models.RecordTypeCompany, &SearchRequest{Limit: 100})
	require.Error(t, err)

	var crmErr *CRMError
	require.ErrorAs(t, err, &crmErr)
	assert.Equal(t, http.StatusTooManyRequests, crmErr.StatusCode)
}

func TestContactCompanyAssociations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crm/v3/associations/contacts/companies/batch/read", r.URL.Path)

		var req associationBatchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Inputs, 3)

		w.Write([]byte(`{
			"results": [
				{"from": {"id": "c1"}, "to": [{"id": "comp-1"}]},
				{"from": {"id": "c2"}, "to": []},
				{"to": [{"id": "comp-3"}]}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	associations, err := client.ContactCompanyAssociations(context.Background(), []string{"c1", "c2", "c3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"c1": "comp-1"}, associations)
}

func TestContactCompanyAssociationsEmptyInput(t *testing.T) {
	client := newTestClient("http://unused.invalid")

	associations, err := client.ContactCompanyAssociations(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, associations)
}

func TestAttendeeEmails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/crm/v3/objects/meetings/m-1/associations/contacts":
			w.Write([]byte(`{"results": [{"toObjectId": "c1"}, {"toObjectId": "c2"}, {"toObjectId": "c3"}]}`))
		case "/crm/v3/objects/contacts/batch/read":
			var req batchReadRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, []string{"email"}, req.Properties)
			w.Write([]byte(`{
				"results": [
					{"id": "c1", "properties": {"email": "one@example.com"}},
					{"id": "c2", "properties": {"email": null}},
					{"id": "c3", "properties": {"email": "three@example.com"}}
				]
			}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	emails, err := client.AttendeeEmails(context.Background(), "m-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"one@example.com", "three@example.com"}, emails)
}

func TestAttendeeEmailsNoContacts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	emails, err := client.AttendeeEmails(context.Background(), "m-2")
	require.NoError(t, err)
	assert.Empty(t, emails)
}
