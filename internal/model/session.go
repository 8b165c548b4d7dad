package model

import (
	"path/filepath"
	"time"
)

// Session is one stored version of a fragment map, keyed by the host's
// project session name.
type Session struct {
	ID            string       `json:"id"`
	Name          string       `json:"session"`
	Version       int          `json:"version"`
	Supersedes    string       `json:"supersedes,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	DeletedAt     *time.Time   `json:"deleted_at,omitempty"`
	FragmentCount int          `json:"fragment_count"`
	Map           *FragmentMap `json:"map,omitempty"`
}

// SamePath reports whether a and b name the same document once made
// absolute. Empty paths never match.
func SamePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return absPath(a) == absPath(b)
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
