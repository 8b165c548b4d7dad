// Package store keeps versioned fragment maps per project session in SQLite.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/scriptsync/internal/model"
)

var (
	// ErrSessionNotFound means no live version exists for the session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrPathMismatch means the stored map belongs to another document.
	ErrPathMismatch = errors.New("session belongs to a different document")
	// ErrCorrupt means a stored fragment row could not be decoded.
	ErrCorrupt = errors.New("corrupt session data")
)

// SaveParams holds parameters for storing a session.
type SaveParams struct {
	Session string
	Map     *model.FragmentMap
}

// LoadParams holds parameters for retrieving a session.
type LoadParams struct {
	Session string
	// DocPath, when set, must match the stored document path.
	DocPath string
	History bool
	Version int // 0 means latest
}

// ListParams holds parameters for listing sessions.
type ListParams struct {
	DocPath string
	Limit   int
}

// RmParams holds parameters for deleting a session.
type RmParams struct {
	Session     string
	AllVersions bool
	Hard        bool
}

// Store defines the session storage interface.
type Store interface {
	// Save stores a new version of the session's map.
	Save(ctx context.Context, p SaveParams) (*model.Session, error)

	// Load retrieves a session with its map.
	// Returns a slice (single element normally, all versions with History=true).
	Load(ctx context.Context, p LoadParams) ([]model.Session, error)

	// List lists the latest version of each session, without maps.
	List(ctx context.Context, p ListParams) ([]model.Session, error)

	// Rm soft-deletes (or hard-deletes) a session.
	Rm(ctx context.Context, p RmParams) error

	// Close closes the store.
	Close() error
}
