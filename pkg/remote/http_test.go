package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketvcs/pocket/pkg/object"
	"github.com/pocketvcs/pocket/pkg/repo"
)

func TestIsRetryableStatus(t *testing.T) {
	cases := []struct {
		status int
		want   bool
	}{
		{http.StatusOK, false},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusForbidden, false},
		{http.StatusNotFound, false},
		{http.StatusConflict, false},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
		{http.StatusServiceUnavailable, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, isRetryableStatus(tc.status), "status %d", tc.status)
	}
}

func TestRetryDoRecoversFromServerErrors(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		body, _ := io.ReadAll(r.Body)
		w.Write(body)
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL, strings.NewReader("payload"))
	require.NoError(t, err)

	resp, err := retryDo(srv.Client(), req, 5)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The buffered body was replayed on the successful attempt.
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
	assert.Equal(t, 3, attempts)
}

func TestRetryDoDoesNotRetryClientErrors(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		mu.Unlock()
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := retryDo(srv.Client(), req, 5)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 1, attempts)
}

func TestRetryDoExhaustedResponseIsReadable(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		mu.Unlock()
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := retryDo(srv.Client(), req, 2)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, 2, attempts)

	// The drained body was replaced; reading it is safe and yields nothing.
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestHTTPTransportAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tr, err := newHTTPTransport(srv.URL, repo.RemoteAuth{Kind: repo.AuthToken, Token: "bad"})
	require.NoError(t, err)
	defer tr.Close()

	_, err = tr.Timeline(context.Background(), "main")
	require.ErrorIs(t, err, ErrAuthFailed)
}

func TestHTTPTransportTokenHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(wireTimeline{Name: "main", Head: "abc"})
	}))
	defer srv.Close()

	tr, err := newHTTPTransport(srv.URL, repo.RemoteAuth{Kind: repo.AuthToken, Token: "s3cret"})
	require.NoError(t, err)
	defer tr.Close()

	ref, err := tr.Timeline(context.Background(), "main")
	require.NoError(t, err)
	assert.Equal(t, "Bearer s3cret", gotAuth)
	assert.Equal(t, repo.ShoveId("abc"), ref.Head)
}

func TestHTTPTransportObjectRoundTrip(t *testing.T) {
	// Minimal in-memory object endpoint speaking the zstd wire format.
	store := make(map[string][]byte)
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/api/objects/"):]
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			store[id] = body
			w.WriteHeader(http.StatusCreated)
		case http.MethodHead:
			if _, ok := store[id]; !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
		case http.MethodGet:
			body, ok := store[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Encoding", "zstd")
			w.Write(body)
		}
	}))
	defer srv.Close()

	tr, err := newHTTPTransport(srv.URL, repo.RemoteAuth{Kind: repo.AuthNone})
	require.NoError(t, err)
	defer tr.Close()
	ctx := context.Background()

	content := []byte("round trip payload")
	id, err := tr.PutObject(ctx, content)
	require.NoError(t, err)
	assert.Equal(t, object.IDFromContent(content), id)

	ok, err := tr.HasObject(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := tr.GetObject(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	ok, err = tr.HasObject(ctx, object.IDFromContent([]byte("missing")))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCompressRoundTrip(t *testing.T) {
	data := []byte("compress me, then give me back")
	compressed, err := compressZstd(data)
	require.NoError(t, err)
	got, err := decompressZstd(compressed)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}
