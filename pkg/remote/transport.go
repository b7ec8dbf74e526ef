// Package remote synchronizes shove history between a local repository and a
// remote one, over either a shared filesystem or HTTP. Transfers walk the
// shove DAG, send only missing content, and finish with a compare-and-swap
// head update so concurrent pushes cannot silently overwrite each other.
package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pocketvcs/pocket/pkg/object"
	"github.com/pocketvcs/pocket/pkg/repo"
)

var (
	// ErrAuthFailed is returned when the remote rejects our credentials.
	// Never retried.
	ErrAuthFailed = errors.New("remote authentication failed")

	// ErrRemoteRejected is returned when the remote refuses a head update,
	// typically because someone else pushed first.
	ErrRemoteRejected = errors.New("remote rejected the update")

	// ErrRemoteTimelineNotFound is returned when the remote has no timeline
	// with the requested name.
	ErrRemoteTimelineNotFound = errors.New("remote timeline not found")
)

// TimelineRef is a remote timeline's name and head.
type TimelineRef struct {
	Name string
	Head repo.ShoveId
}

// Transport is one connection to a remote repository. Object and shove
// writes are idempotent; UpdateTimeline is the only operation with
// compare-and-swap semantics.
type Transport interface {
	// Timeline resolves a remote timeline, or ErrRemoteTimelineNotFound.
	Timeline(ctx context.Context, name string) (TimelineRef, error)
	// ListTimelines returns every timeline the remote has.
	ListTimelines(ctx context.Context) ([]TimelineRef, error)

	HasObject(ctx context.Context, id object.ID) (bool, error)
	GetObject(ctx context.Context, id object.ID) ([]byte, error)
	PutObject(ctx context.Context, data []byte) (object.ID, error)

	HasShove(ctx context.Context, id repo.ShoveId) (bool, error)
	GetShove(ctx context.Context, id repo.ShoveId) (*repo.Shove, error)
	PutShove(ctx context.Context, s *repo.Shove) error

	// UpdateTimeline moves a remote head from oldHead to newHead. An empty
	// oldHead asserts the timeline does not exist yet. A mismatch returns
	// ErrRemoteRejected and changes nothing.
	UpdateTimeline(ctx context.Context, name string, oldHead, newHead repo.ShoveId) error

	Close() error
}

// OpenTransport picks a transport from the remote URL: http/https URLs get
// the HTTP transport, everything else is treated as a local directory
// (optionally prefixed file://).
func OpenTransport(rc repo.RemoteConfig) (Transport, error) {
	url := strings.TrimSpace(rc.URL)
	if url == "" {
		return nil, fmt.Errorf("remote has no url")
	}
	switch {
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return newHTTPTransport(url, rc.Auth)
	case strings.HasPrefix(url, "file://"):
		return newLocalTransport(strings.TrimPrefix(url, "file://"))
	default:
		return newLocalTransport(url)
	}
}
