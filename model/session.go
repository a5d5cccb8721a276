package model

import "sync"

// SharedSessionID is the single cell holding a node's current session id.
// The manager task is its sole writer (on a Ready frame); the
// request/response client reads it outside the manager loop, so access is
// guarded by a lock rather than routed through the command channel.
type SharedSessionID struct {
	mu    sync.RWMutex
	value string
	set   bool
}

// NewSharedSessionID returns an empty cell, as if no Ready frame had yet
// arrived.
func NewSharedSessionID() *SharedSessionID {
	return &SharedSessionID{}
}

// Get returns the current session id and whether one has been set.
func (s *SharedSessionID) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.set
}

// Set records a new session id, as observed on a Ready frame.
func (s *SharedSessionID) Set(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = id
	s.set = true
}
