package remote

import (
	"time"

	"github.com/pocketvcs/pocket/pkg/object"
	"github.com/pocketvcs/pocket/pkg/repo"
)

// Wire types for the HTTP protocol. Shoves travel as JSON; raw object bytes
// travel zstd-compressed in the request or response body.

type wireTimeline struct {
	Name string `json:"name"`
	Head string `json:"head,omitempty"`
}

type wireTimelineUpdate struct {
	OldHead string `json:"old_head,omitempty"`
	NewHead string `json:"new_head"`
}

type wireShove struct {
	ID          string    `json:"id"`
	ParentIDs   []string  `json:"parent_ids,omitempty"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email"`
	AuthorTime  time.Time `json:"author_time"`
	Timestamp   time.Time `json:"timestamp"`
	Message     string    `json:"message"`
	RootTreeID  string    `json:"root_tree_id"`
}

func toWireShove(s *repo.Shove) wireShove {
	w := wireShove{
		ID:          string(s.ID),
		AuthorName:  s.Author.Name,
		AuthorEmail: s.Author.Email,
		AuthorTime:  s.Author.Timestamp,
		Timestamp:   s.Timestamp,
		Message:     s.Message,
		RootTreeID:  string(s.RootTreeID),
	}
	for _, p := range s.ParentIDs {
		w.ParentIDs = append(w.ParentIDs, string(p))
	}
	return w
}

func fromWireShove(w wireShove) *repo.Shove {
	s := &repo.Shove{
		ID: repo.ShoveId(w.ID),
		Author: repo.Author{
			Name:      w.AuthorName,
			Email:     w.AuthorEmail,
			Timestamp: w.AuthorTime,
		},
		Timestamp:  w.Timestamp,
		Message:    w.Message,
		RootTreeID: object.ID(w.RootTreeID),
	}
	for _, p := range w.ParentIDs {
		s.ParentIDs = append(s.ParentIDs, repo.ShoveId(p))
	}
	return s
}
