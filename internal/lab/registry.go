package lab

import (
	"sync"
	"time"
)

// Session is the in-memory state of one running lab: the container backing
// it, the owning user, its course/topic context and a virtual file set. A
// session exists iff its container was confirmed running.
type Session struct {
	LabID       string
	ContainerID string
	UserID      string
	CourseID    string
	TopicID     string
	HostPort    int
	CreatedAt   time.Time

	mu         sync.Mutex
	files      map[string]string
	lastActive time.Time
}

func newSession(labID, containerID, userID, courseID, topicID string, hostPort int, files map[string]string) *Session {
	now := time.Now()
	if files == nil {
		files = make(map[string]string)
	}
	return &Session{
		LabID:       labID,
		ContainerID: containerID,
		UserID:      userID,
		CourseID:    courseID,
		TopicID:     topicID,
		HostPort:    hostPort,
		CreatedAt:   now,
		files:       files,
		lastActive:  now,
	}
}

// Files returns a copy of the session's file set. Writes made after the
// call are not reflected in the returned map.
func (s *Session) Files() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActive = time.Now()
	out := make(map[string]string, len(s.files))
	for path, content := range s.files {
		out[path] = content
	}
	return out
}

// WriteFile creates or overwrites one virtual file. Paths are unique within
// a session, so a second write to the same path replaces the content.
func (s *Session) WriteFile(path, content string) error {
	if path == "" {
		return ErrEmptyPath
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = content
	s.lastActive = time.Now()
	return nil
}

// LastActive reports when the session's files were last read or written.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Registry is the process-wide labId -> session map. It is created once at
// startup and injected into every consumer; entries live only as long as
// the process.
type Registry struct {
	mu   sync.RWMutex
	labs map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{labs: make(map[string]*Session)}
}

func (r *Registry) Add(sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labs[sess.LabID] = sess
}

func (r *Registry) Get(labID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.labs[labID]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Remove drops a session from the registry and returns it, so the caller
// can release its port and container.
func (r *Registry) Remove(labID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.labs[labID]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.labs, labID)
	return sess, nil
}

// Snapshot returns the current sessions in no particular order.
func (r *Registry) Snapshot() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0, len(r.labs))
	for _, sess := range r.labs {
		out = append(out, sess)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.labs)
}
