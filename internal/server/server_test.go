package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/argonsync/argon/api"
	"github.com/argonsync/argon/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "init.server.luau"), []byte(`print("hi")`), 0o644))

	project := &api.Project{Name: "game", Path: dir}
	c, err := core.New(context.Background(), project, false)
	require.NoError(t, err)

	return New(c)
}

func TestDetailsEndpoint(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/details", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var d api.Details
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &d))
	assert.Equal(t, "game", d.Name)
}

func TestSnapshotEndpoint(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/snapshot", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var snap api.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.NotEmpty(t, snap.Children)
}

// TestUnsubscribeNotSubscribed ports original_source/src/server/unsubscribe.rs's
// "Not subscribed" branch directly.
func TestUnsubscribeNotSubscribed(t *testing.T) {
	h := newTestServer(t)

	body, _ := json.Marshal(map[string]any{"client_id": 999})
	req := httptest.NewRequest(http.MethodPost, "/unsubscribe", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Not subscribed", rr.Body.String())
}

func TestSubscribeThenUnsubscribe(t *testing.T) {
	h := newTestServer(t)

	body, _ := json.Marshal(map[string]any{"client_id": 7})

	subReq := httptest.NewRequest(http.MethodPost, "/subscribe", bytes.NewReader(body))
	subRR := httptest.NewRecorder()
	h.ServeHTTP(subRR, subReq)
	require.Equal(t, http.StatusOK, subRR.Code)

	unsubReq := httptest.NewRequest(http.MethodPost, "/unsubscribe", bytes.NewReader(body))
	unsubRR := httptest.NewRecorder()
	h.ServeHTTP(unsubRR, unsubReq)
	assert.Equal(t, http.StatusOK, unsubRR.Code)
	assert.Equal(t, "Unsubscribed successfully", unsubRR.Body.String())
}

func TestWriteEndpointAppliesPatch(t *testing.T) {
	h := newTestServer(t)

	snapReq := httptest.NewRequest(http.MethodGet, "/snapshot", nil)
	snapRR := httptest.NewRecorder()
	h.ServeHTTP(snapRR, snapReq)
	var snap api.Snapshot
	require.NoError(t, json.Unmarshal(snapRR.Body.Bytes(), &snap))
	srcID := snap.Children[0].ID

	patch := api.Patch{
		ClientID: 1,
		Changes: api.ChangeSet{
			{Kind: api.Updated, ID: srcID, Delta: map[string]api.TaggedValue{
				"Foo": {Type: api.TypeString, Value: "bar"},
			}},
		},
	}
	body, err := json.Marshal(patch)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/write", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var result api.PatchResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Applied)
	assert.Empty(t, result.Rejected)
}
