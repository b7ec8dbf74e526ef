package repo

// RemoteTracking links a timeline to a timeline on a named remote.
// LastKnownShove is the remote head as of the most recent push or fetch; the
// push protocol uses it as the compare-and-swap expectation.
type RemoteTracking struct {
	RemoteName     string  `toml:"remote_name"`
	RemoteTimeline string  `toml:"remote_timeline"`
	LastKnownShove ShoveId `toml:"last_known_shove,omitempty"`
}

// Timeline is a named, movable pointer into shove history. An empty Head
// means the timeline is unborn: no shove has been created on it yet.
type Timeline struct {
	Name   string          `toml:"name"`
	Head   ShoveId         `toml:"head,omitempty"`
	Remote *RemoteTracking `toml:"remote,omitempty"`
}

// NewTimeline returns an unborn timeline with the given name.
func NewTimeline(name string) *Timeline {
	return &Timeline{Name: name}
}

// HasHead reports whether the timeline points at a shove.
func (t *Timeline) HasHead() bool {
	return t.Head != ""
}

// UpdateHead moves the timeline to the given shove.
func (t *Timeline) UpdateHead(id ShoveId) {
	t.Head = id
}

// SetRemoteTracking associates the timeline with a remote timeline,
// preserving any previously recorded remote head.
func (t *Timeline) SetRemoteTracking(remoteName, remoteTimeline string) {
	var last ShoveId
	if t.Remote != nil {
		last = t.Remote.LastKnownShove
	}
	t.Remote = &RemoteTracking{
		RemoteName:     remoteName,
		RemoteTimeline: remoteTimeline,
		LastKnownShove: last,
	}
}
