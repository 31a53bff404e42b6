// Package appstore is the client-side application store: the login state and
// a bounded queue of user-facing notifications. The login state can be
// persisted to a JSON file; notifications are transient.
package appstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultNotificationLimit bounds the notification queue.
const DefaultNotificationLimit = 20

// Kind classifies a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Notification is one dismissable message.
type Notification struct {
	ID        int64     `json:"id"`
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// persisted is the on-disk form of the store.
type persisted struct {
	Authenticated bool   `json:"user_authenticated"`
	Token         string `json:"token,omitempty"`
	UserID        string `json:"user_id,omitempty"`
}

// Store is safe for concurrent use.
type Store struct {
	mu            sync.RWMutex
	auth          persisted
	notifications []Notification
	limit         int
	nextID        int64
	now           func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithNotificationLimit overrides DefaultNotificationLimit. Values below 1
// are ignored.
func WithNotificationLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithClock overrides time.Now for notification timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{limit: DefaultNotificationLimit, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login records a successful login.
func (s *Store) Login(token, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth = persisted{Authenticated: true, Token: token, UserID: userID}
}

// Logout clears the login state.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth = persisted{}
}

func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auth.Authenticated
}

// Token returns the bearer token, or "" when logged out. It matches the
// client.WithTokenSource signature.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auth.Token
}

func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auth.UserID
}

// Notify appends a notification, dropping the oldest ones past the limit.
func (s *Store) Notify(kind Kind, message string) Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	n := Notification{ID: s.nextID, Kind: kind, Message: message, CreatedAt: s.now()}
	s.notifications = append(s.notifications, n)
	if over := len(s.notifications) - s.limit; over > 0 {
		s.notifications = append([]Notification(nil), s.notifications[over:]...)
	}
	return n
}

func (s *Store) Success(message string) Notification { return s.Notify(KindSuccess, message) }
func (s *Store) Error(message string) Notification   { return s.Notify(KindError, message) }

// Dismiss removes the notification with id and reports whether it existed.
func (s *Store) Dismiss(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i:i], s.notifications[i+1:]...)
			return true
		}
	}
	return false
}

// Notifications returns the queue, oldest first.
func (s *Store) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Notification(nil), s.notifications...)
}

// Save writes the login state to path, replacing it atomically.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.auth, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".appstore-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Load restores the login state from path. A missing file leaves the store
// logged out and is not an error.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth = p
	return nil
}
