package hub_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hubcheck/hubcheck/pkg/hubsdk"
	"github.com/stretchr/testify/require"
)

func TestExecuteSequentiallyAgainstHub(t *testing.T) {
	baseURL, cleanup := setupHubContainer(t)
	defer cleanup()

	client := newPasswordClient(baseURL)

	ops := []hubsdk.Operation{
		func(ctx context.Context) (*hubsdk.Response, error) {
			return client.Post(ctx, "/api/entries", []byte(`{"title":"first","body":"a"}`))
		},
		func(ctx context.Context) (*hubsdk.Response, error) {
			return client.Post(ctx, "/api/entries", []byte(`{"title":"second","body":"b"}`))
		},
		func(ctx context.Context) (*hubsdk.Response, error) {
			// Missing title, the hub rejects it but the batch keeps going.
			return client.Post(ctx, "/api/entries", []byte(`{"body":"no title"}`))
		},
		func(ctx context.Context) (*hubsdk.Response, error) {
			return client.Get(ctx, "/api/entries")
		},
	}

	results := client.ExecuteSequentially(t.Context(), ops)
	require.Len(t, results, len(ops))

	require.NoError(t, results[0].Err)
	require.Equal(t, 201, results[0].Response.StatusCode)
	require.NoError(t, results[1].Err)
	require.Equal(t, 201, results[1].Response.StatusCode)

	// The bad payload comes back as an HTTP failure, not a batch error.
	require.NoError(t, results[2].Err)
	require.Equal(t, 400, results[2].Response.StatusCode)

	require.NoError(t, results[3].Err)
	require.Equal(t, 200, results[3].Response.StatusCode)

	var list struct {
		Items []struct {
			Title string `json:"title"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(results[3].Response.Body, &list))
	require.Len(t, list.Items, 2)
}
