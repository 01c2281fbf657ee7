package hub_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEntryLifecycle(t *testing.T) {
	baseURL, cleanup := setupHubContainer(t)
	defer cleanup()

	client := newPasswordClient(baseURL)

	id := createEntry(t, client, "launch notes", "initial draft")

	// Read it back
	resp, err := client.Get(t.Context(), "/api/entries/"+id)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var entry struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	require.NoError(t, json.Unmarshal(resp.Body, &entry))
	require.Equal(t, id, entry.ID)
	require.Equal(t, "launch notes", entry.Title)
	require.Equal(t, "initial draft", entry.Body)

	// Update
	resp, err = client.Put(t.Context(), "/api/entries/"+id,
		[]byte(`{"title":"launch notes","body":"final draft"}`))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	resp, err = client.Get(t.Context(), "/api/entries/"+id)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	require.NoError(t, json.Unmarshal(resp.Body, &entry))
	require.Equal(t, "final draft", entry.Body)

	// Delete
	resp, err = client.Delete(t.Context(), "/api/entries/"+id)
	require.NoError(t, err)
	require.Equal(t, 204, resp.StatusCode)

	// Gone now; the SDK surfaces the 404 as a response, not an error.
	resp, err = client.Get(t.Context(), "/api/entries/"+id)
	require.NoError(t, err)
	require.Equal(t, 404, resp.StatusCode)
}

func TestEntryList(t *testing.T) {
	baseURL, cleanup := setupHubContainer(t)
	defer cleanup()

	client := newPasswordClient(baseURL)

	for i := range 3 {
		createEntry(t, client, fmt.Sprintf("entry %d", i), "body")
	}

	resp, err := client.Get(t.Context(), "/api/entries")
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var list struct {
		Items []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"items"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(resp.Body, &list))
	require.Len(t, list.Items, 3)
	require.Equal(t, 3, list.Total)
}

func TestEntriesRequireAuthentication(t *testing.T) {
	baseURL, cleanup := setupHubContainer(t)
	defer cleanup()

	// A client with bad credentials cannot reach the resource at all: the
	// token exchange fails before the entries request is sent.
	client := newPasswordClient(baseURL)
	client.Password = "wrong"

	_, err := client.Get(t.Context(), "/api/entries")
	require.Error(t, err)
}

func TestEntriesVisibleAcrossClients(t *testing.T) {
	baseURL, cleanup := setupHubContainer(t)
	defer cleanup()

	writer := newPasswordClient(baseURL)
	id := createEntry(t, writer, "shared", "visible to the service client too")

	reader := newClientCredentialsClient(baseURL)
	resp, err := reader.Get(t.Context(), "/api/entries/"+id)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
}
