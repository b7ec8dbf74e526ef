package repo

import "errors"

var (
	// ErrRepositoryExists is returned when initializing over an existing repository.
	ErrRepositoryExists = errors.New("repository already exists")

	// ErrNotARepository is returned when no .pocket directory is found at or
	// above the given path.
	ErrNotARepository = errors.New("not a pocket repository")

	// ErrTimelineNotFound is returned for operations on a timeline that does
	// not exist.
	ErrTimelineNotFound = errors.New("timeline not found")

	// ErrTimelineExists is returned when creating a timeline whose name is taken.
	ErrTimelineExists = errors.New("timeline already exists")

	// ErrShoveNotFound is returned when a shove id has no record on disk.
	ErrShoveNotFound = errors.New("shove not found")

	// ErrEmptyPile is returned when creating a shove from an empty pile.
	ErrEmptyPile = errors.New("pile is empty")

	// ErrStalePile is returned when the pile's base shove no longer matches
	// the timeline head, meaning the timeline advanced after staging began.
	ErrStalePile = errors.New("pile is stale")

	// ErrNotPiled is returned when unpiling a path that is not staged.
	ErrNotPiled = errors.New("path is not piled")

	// ErrDirtyWorktree is returned when an operation requires a clean working
	// directory and finds staged or modified files.
	ErrDirtyWorktree = errors.New("working tree has uncommitted changes")

	// ErrLockHeld is returned when the repository lock could not be acquired
	// within the retry window.
	ErrLockHeld = errors.New("repository lock is held by another process")

	// ErrUntrackedCollision is returned when a checkout would overwrite an
	// untracked file with different content.
	ErrUntrackedCollision = errors.New("untracked file would be overwritten")
)
