package server

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/filmlens/filmlens/internal/model"
)

// ErrSessionNotFound indicates an unknown session ID.
var ErrSessionNotFound = errors.New("server: session not found")

// Session states.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Session is one uploaded dataset and its cleaning outcome.
type Session struct {
	ID        string
	FileName  string
	FileSize  int64
	Status    string
	StartTime time.Time
	EndTime   *time.Time
	Error     string

	Summary *model.Summary

	// CacheHit reports whether the cleaned result came from the memo.
	CacheHit bool

	table *model.Table
	mu    sync.RWMutex
}

// SessionView is the JSON shape of a session, detached from the live
// session and its lock.
type SessionView struct {
	ID        string         `json:"id"`
	FileName  string         `json:"file_name"`
	FileSize  int64          `json:"file_size"`
	Status    string         `json:"status"`
	StartTime time.Time      `json:"start_time"`
	EndTime   *time.Time     `json:"end_time,omitempty"`
	Error     string         `json:"error,omitempty"`
	Summary   *model.Summary `json:"summary,omitempty"`
	CacheHit  bool           `json:"cache_hit"`
}

// snapshot returns the session's public fields for JSON output.
func (s *Session) snapshot() SessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionView{
		ID:        s.ID,
		FileName:  s.FileName,
		FileSize:  s.FileSize,
		Status:    s.Status,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Error:     s.Error,
		Summary:   s.Summary,
		CacheHit:  s.CacheHit,
	}
}

// Table returns the cleaned table, or nil until cleaning completes.
func (s *Session) Table() *model.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

func (s *Session) complete(t *model.Table, sum *model.Summary, cacheHit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = t
	s.Summary = sum
	s.CacheHit = cacheHit
	s.Status = StatusCompleted
	now := time.Now()
	s.EndTime = &now
}

func (s *Session) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = StatusFailed
	s.Error = err.Error()
	now := time.Now()
	s.EndTime = &now
}

// SessionStore holds sessions by ID.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Create registers a new pending session for an upload.
func (st *SessionStore) Create(fileName string, fileSize int64) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		FileName:  fileName,
		FileSize:  fileSize,
		Status:    StatusPending,
		StartTime: time.Now(),
	}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get looks up a session by ID.
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete removes a session.
func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
