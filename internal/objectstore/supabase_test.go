package objectstore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method      string
	Path        string
	Auth        string
	APIKey      string
	ContentType string
	Body        []byte
}

func newStorageServer(t *testing.T, status int, reply string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()

	var mu sync.Mutex
	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		seen = append(seen, recordedRequest{
			Method:      r.Method,
			Path:        r.URL.EscapedPath(),
			Auth:        r.Header.Get("Authorization"),
			APIKey:      r.Header.Get("apikey"),
			ContentType: r.Header.Get("Content-Type"),
			Body:        body,
		})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestSupabaseStore_Upload(t *testing.T) {
	srv, seen := newStorageServer(t, http.StatusOK, `{"Key":"lots/abc.png"}`)
	store, err := NewSupabaseStore(srv.URL+"/", "service-key", time.Second)
	require.NoError(t, err)

	err = store.Upload(context.Background(), "lots", "abc.png", "image/png", []byte("png-bytes"))
	require.NoError(t, err)

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/storage/v1/object/lots/abc.png", req.Path)
	assert.Equal(t, "Bearer service-key", req.Auth)
	assert.Equal(t, "service-key", req.APIKey)
	assert.Equal(t, "image/png", req.ContentType)
	assert.Equal(t, []byte("png-bytes"), req.Body)
}

func TestSupabaseStore_Remove(t *testing.T) {
	srv, seen := newStorageServer(t, http.StatusOK, `[]`)
	store, err := NewSupabaseStore(srv.URL, "service-key", time.Second)
	require.NoError(t, err)

	require.NoError(t, store.Remove(context.Background(), "lots", "old.png"))

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/storage/v1/object/lots", req.Path)

	var payload struct {
		Prefixes []string `json:"prefixes"`
	}
	require.NoError(t, json.Unmarshal(req.Body, &payload))
	assert.Equal(t, []string{"old.png"}, payload.Prefixes)
}

func TestSupabaseStore_RemoveNothing(t *testing.T) {
	srv, seen := newStorageServer(t, http.StatusOK, `[]`)
	store, err := NewSupabaseStore(srv.URL, "k", time.Second)
	require.NoError(t, err)

	require.NoError(t, store.Remove(context.Background(), "lots"))
	assert.Empty(t, *seen)
}

func TestSupabaseStore_ErrorStatus(t *testing.T) {
	srv, _ := newStorageServer(t, http.StatusBadRequest, `{"statusCode":"400","error":"Bad Request","message":"Bucket not found"}`)
	store, err := NewSupabaseStore(srv.URL, "k", time.Second)
	require.NoError(t, err)

	err = store.Upload(context.Background(), "missing", "a.png", "", []byte("x"))
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Status)
	assert.Equal(t, "Bucket not found", se.Message)
}

func TestSupabaseStore_NotFound(t *testing.T) {
	srv, _ := newStorageServer(t, http.StatusNotFound, `{"message":"Object not found"}`)
	store, err := NewSupabaseStore(srv.URL, "k", time.Second)
	require.NoError(t, err)

	err = store.Remove(context.Background(), "lots", "gone.png")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestSupabaseStore_CancelledContext(t *testing.T) {
	srv, seen := newStorageServer(t, http.StatusOK, `{}`)
	store, err := NewSupabaseStore(srv.URL, "k", time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.Upload(ctx, "lots", "a.png", "", nil), context.Canceled)
	assert.Empty(t, *seen)
}

func TestSupabaseStore_PublicURL(t *testing.T) {
	store, err := NewSupabaseStore("https://proj.supabase.co/", "k", 0)
	require.NoError(t, err)

	u, err := store.PublicURL("lot images", "dir/a b.png")
	require.NoError(t, err)
	assert.Equal(t, "https://proj.supabase.co/storage/v1/object/public/lot%20images/dir/a%20b.png", u)

	_, err = store.PublicURL("", "a.png")
	assert.Error(t, err)
}

func TestNewSupabaseStore_RejectsBadURL(t *testing.T) {
	_, err := NewSupabaseStore("ftp://example.com", "k", 0)
	assert.Error(t, err)
}
