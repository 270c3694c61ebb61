package ruote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingServer captures the last request the client issued.
type recordingServer struct {
	*httptest.Server

	requests    atomic.Int64
	lastMethod  string
	lastPath    string
	lastAuth    string
	lastCT      string
	lastBody    []byte
	status      int
	responseRaw string
}

func newRecordingServer(t *testing.T) *recordingServer {
	t.Helper()
	rs := &recordingServer{status: http.StatusOK, responseRaw: `{"ok": true}`}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.requests.Add(1)
		rs.lastMethod = r.Method
		rs.lastPath = r.URL.Path
		rs.lastAuth = r.Header.Get("Authorization")
		rs.lastCT = r.Header.Get("Content-Type")
		rs.lastBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(rs.status)
		_, _ = w.Write([]byte(rs.responseRaw))
	}))
	t.Cleanup(rs.Close)
	return rs
}

func TestRootChildren(t *testing.T) {
	root := NewClient("http://example.invalid").Root()

	for _, name := range []string{"users", "clusters", "queues", "files", "apps", "jobs", "sso"} {
		t.Run(name, func(t *testing.T) {
			_, err := root.Child(name)
			assert.NoError(t, err)
		})
	}
}

func TestUnknownChildFailsLocally(t *testing.T) {
	srv := newRecordingServer(t)
	root := NewClient(srv.URL).Root()

	_, err := root.Child("nonsense")
	require.ErrorIs(t, err, ErrUnknownResource)
	assert.Contains(t, err.Error(), "'nonsense'")
	assert.Zero(t, srv.requests.Load(), "lookup must not issue a request")
}

func TestChildByKey(t *testing.T) {
	root := NewClient("http://example.invalid").Root()
	users, err := root.Child("users")
	require.NoError(t, err)

	_, err = users.ChildByKey("id", "343")
	assert.NoError(t, err)
}

func TestChildByKeyUnsupported(t *testing.T) {
	root := NewClient("http://example.invalid").Root()
	sso, err := root.Child("sso")
	require.NoError(t, err)

	_, err = sso.ChildByKey("id", "343")
	require.ErrorIs(t, err, ErrNoKeyedLookup)
	assert.Contains(t, err.Error(), "'id'")
}

func TestURLBuilding(t *testing.T) {
	srv := newRecordingServer(t)
	root := NewClient(srv.URL).Root()

	users, err := root.Child("users")
	require.NoError(t, err)
	record, err := users.ChildByKey("id", "343")
	require.NoError(t, err)

	_, err = record.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/users/343/", srv.lastPath)

	_, err = users.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/users/", srv.lastPath, "collection URL keeps the trailing slash")
}

func TestResourceBranching(t *testing.T) {
	srv := newRecordingServer(t)
	root := NewClient(srv.URL).Root()

	users, err := root.Child("users")
	require.NoError(t, err)
	record, err := users.ChildByKey("id", "1")
	require.NoError(t, err)
	me, err := users.Child("me")
	require.NoError(t, err)

	_, err = record.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/users/1/", srv.lastPath)

	_, err = me.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/users/me/", srv.lastPath, "sibling navigation must not share path state")
}

func TestVerbMethods(t *testing.T) {
	payload := map[string]any{"name": "batch"}

	tests := []struct {
		name       string
		invoke     func(r Resource) (*Response, error)
		wantMethod string
		wantBody   bool
	}{
		{
			name:       "create",
			invoke:     func(r Resource) (*Response, error) { return r.Create(context.Background(), payload) },
			wantMethod: http.MethodPost,
			wantBody:   true,
		},
		{
			name:       "retrieve",
			invoke:     func(r Resource) (*Response, error) { return r.Retrieve(context.Background()) },
			wantMethod: http.MethodGet,
		},
		{
			name:       "update",
			invoke:     func(r Resource) (*Response, error) { return r.Update(context.Background(), payload) },
			wantMethod: http.MethodPatch,
			wantBody:   true,
		},
		{
			name:       "replace",
			invoke:     func(r Resource) (*Response, error) { return r.Replace(context.Background(), payload) },
			wantMethod: http.MethodPut,
			wantBody:   true,
		},
		{
			name:       "delete",
			invoke:     func(r Resource) (*Response, error) { return r.Delete(context.Background()) },
			wantMethod: http.MethodDelete,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newRecordingServer(t)
			queues, err := NewClient(srv.URL).Root().Child("queues")
			require.NoError(t, err)

			_, err = tc.invoke(queues)
			require.NoError(t, err)
			assert.Equal(t, tc.wantMethod, srv.lastMethod)

			if tc.wantBody {
				assert.Equal(t, "application/json", srv.lastCT)
				var got map[string]any
				require.NoError(t, json.Unmarshal(srv.lastBody, &got))
				assert.Equal(t, map[string]any{"name": "batch"}, got)
			} else {
				assert.Empty(t, srv.lastBody)
			}
		})
	}
}

func TestAuthHeader(t *testing.T) {
	srv := newRecordingServer(t)

	t.Run("with token", func(t *testing.T) {
		users, err := NewClient(srv.URL, WithToken("secret")).Root().Child("users")
		require.NoError(t, err)
		_, err = users.Retrieve(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Token secret", srv.lastAuth)
	})

	t.Run("without token", func(t *testing.T) {
		users, err := NewClient(srv.URL).Root().Child("users")
		require.NoError(t, err)
		_, err = users.Retrieve(context.Background())
		require.NoError(t, err)
		assert.Empty(t, srv.lastAuth)
	})
}

func TestResponseExitCodes(t *testing.T) {
	tests := []struct {
		status   int
		wantOK   bool
		wantCode int
	}{
		{status: http.StatusOK, wantOK: true, wantCode: 0},
		{status: http.StatusCreated, wantOK: true, wantCode: 0},
		{status: http.StatusNotFound, wantCode: 4},
		{status: http.StatusInternalServerError, wantCode: 5},
	}

	for _, tc := range tests {
		resp := &Response{StatusCode: tc.status}
		assert.Equal(t, tc.wantOK, resp.OK(), "status %d", tc.status)
		assert.Equal(t, tc.wantCode, resp.ExitCode(), "status %d", tc.status)
	}
}

func TestResponseDecode(t *testing.T) {
	srv := newRecordingServer(t)
	srv.responseRaw = `{"token": "abc123", "expires": 3600}`

	target, err := NewClient(srv.URL).Root().Child("sso")
	require.NoError(t, err)
	target, err = target.Child("token_by_email")
	require.NoError(t, err)

	resp, err := target.Create(context.Background(), map[string]any{"email": "a@b.c"})
	require.NoError(t, err)
	require.NotNil(t, resp.Node())

	token, ok := resp.StringField("token")
	require.True(t, ok)
	assert.Equal(t, "abc123", token)

	_, ok = resp.StringField("missing")
	assert.False(t, ok)

	assert.Equal(t, "token: abc123\nexpires: 3600", resp.String())
}

func TestResponseRawFallback(t *testing.T) {
	srv := newRecordingServer(t)
	srv.responseRaw = "{invalid: [yaml\n"

	users, err := NewClient(srv.URL).Root().Child("users")
	require.NoError(t, err)
	resp, err := users.Retrieve(context.Background())
	require.NoError(t, err)

	assert.Nil(t, resp.Node())
	assert.Equal(t, "{invalid: [yaml", resp.String())

	_, ok := resp.StringField("token")
	assert.False(t, ok)
}

func TestResponseEmptyBody(t *testing.T) {
	srv := newRecordingServer(t)
	srv.status = http.StatusNoContent
	srv.responseRaw = ""

	record, err := NewClient(srv.URL).Root().Child("jobs")
	require.NoError(t, err)
	record, err = record.ChildByKey("id", "7")
	require.NoError(t, err)

	resp, err := record.Delete(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Nil(t, resp.Node())
	assert.Empty(t, resp.String())
}

func TestTransportErrorWrapped(t *testing.T) {
	users, err := NewClient("http://127.0.0.1:0").Root().Child("users")
	require.NoError(t, err)

	_, err = users.Retrieve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GET ")
}

func TestContextCancellation(t *testing.T) {
	srv := newRecordingServer(t)
	users, err := NewClient(srv.URL).Root().Child("users")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = users.Retrieve(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
