package remote

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

	"github.com/pocketvcs/pocket/pkg/object"
	"github.com/pocketvcs/pocket/pkg/repo"
)

// httpTransport speaks the pocket HTTP protocol:
//
//	GET  {base}/api/timelines             list timelines
//	GET  {base}/api/timelines/{name}      resolve one timeline
//	POST {base}/api/timelines/{name}      compare-and-swap head update
//	HEAD/GET/PUT {base}/api/objects/{id}  raw objects, zstd-encoded bodies
//	HEAD/GET/PUT {base}/api/shoves/{id}   shove records as JSON
type httpTransport struct {
	base   string
	auth   repo.RemoteAuth
	client *http.Client
	signer *sshSigner
}

func newHTTPTransport(rawURL string, auth repo.RemoteAuth) (*httpTransport, error) {
	t := &httpTransport{
		base:   strings.TrimRight(rawURL, "/"),
		auth:   auth,
		client: &http.Client{Timeout: 60 * time.Second},
	}
	if auth.Kind == repo.AuthSSHKey {
		signer, err := newSSHSigner(auth.KeyPath)
		if err != nil {
			return nil, err
		}
		t.signer = signer
	}
	return t, nil
}

func (t *httpTransport) do(ctx context.Context, method, path string, body []byte, contentType string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, t.base+path, reader)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if err := t.authorize(req); err != nil {
		return nil, err
	}
	return retryDo(t.client, req, defaultMaxAttempts)
}

func (t *httpTransport) authorize(req *http.Request) error {
	switch t.auth.Kind {
	case repo.AuthBasic:
		req.SetBasicAuth(t.auth.Username, t.auth.Password)
	case repo.AuthToken:
		req.Header.Set("Authorization", "Bearer "+t.auth.Token)
	case repo.AuthSSHKey:
		return t.signer.authorize(req)
	}
	return nil
}

// statusErr maps an unexpected HTTP status to a transport error.
func statusErr(op string, status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s: %w", op, ErrAuthFailed)
	case http.StatusConflict:
		return fmt.Errorf("%s: %w", op, ErrRemoteRejected)
	}
	return fmt.Errorf("%s: remote returned status %d", op, status)
}

func (t *httpTransport) Timeline(ctx context.Context, name string) (TimelineRef, error) {
	resp, err := t.do(ctx, http.MethodGet, "/api/timelines/"+url.PathEscape(name), nil, "")
	if err != nil {
		return TimelineRef{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return TimelineRef{}, fmt.Errorf("timeline %q: %w", name, ErrRemoteTimelineNotFound)
	default:
		return TimelineRef{}, statusErr("get timeline", resp.StatusCode)
	}

	var w wireTimeline
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		return TimelineRef{}, fmt.Errorf("get timeline %q: %w", name, err)
	}
	return TimelineRef{Name: w.Name, Head: repo.ShoveId(w.Head)}, nil
}

func (t *httpTransport) ListTimelines(ctx context.Context) ([]TimelineRef, error) {
	resp, err := t.do(ctx, http.MethodGet, "/api/timelines", nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusErr("list timelines", resp.StatusCode)
	}

	var ws []wireTimeline
	if err := json.NewDecoder(resp.Body).Decode(&ws); err != nil {
		return nil, fmt.Errorf("list timelines: %w", err)
	}
	refs := make([]TimelineRef, 0, len(ws))
	for _, w := range ws {
		refs = append(refs, TimelineRef{Name: w.Name, Head: repo.ShoveId(w.Head)})
	}
	return refs, nil
}

func (t *httpTransport) HasObject(ctx context.Context, id object.ID) (bool, error) {
	return t.head(ctx, "/api/objects/"+string(id), "has object")
}

func (t *httpTransport) GetObject(ctx context.Context, id object.ID) ([]byte, error) {
	resp, err := t.do(ctx, http.MethodGet, "/api/objects/"+string(id), nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusErr(fmt.Sprintf("get object %s", id.Short()), resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", id.Short(), err)
	}
	if strings.Contains(resp.Header.Get("Content-Encoding"), "zstd") {
		if data, err = decompressZstd(data); err != nil {
			return nil, fmt.Errorf("get object %s: %w", id.Short(), err)
		}
	}
	if object.IDFromContent(data) != id {
		return nil, fmt.Errorf("get object %s: content does not match id", id.Short())
	}
	return data, nil
}

func (t *httpTransport) PutObject(ctx context.Context, data []byte) (object.ID, error) {
	id := object.IDFromContent(data)
	compressed, err := compressZstd(data)
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", id.Short(), err)
	}

	resp, err := t.do(ctx, http.MethodPut, "/api/objects/"+string(id), compressed, "application/octet-stream")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", statusErr(fmt.Sprintf("put object %s", id.Short()), resp.StatusCode)
	}
	return id, nil
}

func (t *httpTransport) HasShove(ctx context.Context, id repo.ShoveId) (bool, error) {
	return t.head(ctx, "/api/shoves/"+url.PathEscape(string(id)), "has shove")
}

func (t *httpTransport) GetShove(ctx context.Context, id repo.ShoveId) (*repo.Shove, error) {
	resp, err := t.do(ctx, http.MethodGet, "/api/shoves/"+url.PathEscape(string(id)), nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusErr(fmt.Sprintf("get shove %s", id.Short()), resp.StatusCode)
	}

	var w wireShove
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		return nil, fmt.Errorf("get shove %s: %w", id.Short(), err)
	}
	return fromWireShove(w), nil
}

func (t *httpTransport) PutShove(ctx context.Context, s *repo.Shove) error {
	body, err := json.Marshal(toWireShove(s))
	if err != nil {
		return fmt.Errorf("put shove %s: %w", s.ID.Short(), err)
	}
	resp, err := t.do(ctx, http.MethodPut, "/api/shoves/"+url.PathEscape(string(s.ID)), body, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return statusErr(fmt.Sprintf("put shove %s", s.ID.Short()), resp.StatusCode)
	}
	return nil
}

func (t *httpTransport) UpdateTimeline(ctx context.Context, name string, oldHead, newHead repo.ShoveId) error {
	body, err := json.Marshal(wireTimelineUpdate{OldHead: string(oldHead), NewHead: string(newHead)})
	if err != nil {
		return fmt.Errorf("update timeline %q: %w", name, err)
	}
	resp, err := t.do(ctx, http.MethodPost, "/api/timelines/"+url.PathEscape(name), body, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return statusErr(fmt.Sprintf("update timeline %q", name), resp.StatusCode)
	}
	return nil
}

func (t *httpTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

func (t *httpTransport) head(ctx context.Context, path, op string) (bool, error) {
	resp, err := t.do(ctx, http.MethodHead, path, nil, "")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	}
	return false, statusErr(op, resp.StatusCode)
}
