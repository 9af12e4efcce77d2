// Package store persists the CLI session between invocations. It holds the
// bearer token and the identity read from it, never engagement state.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/lumen/internal/domain"
	bolt "go.etcd.io/bbolt"
)

var bucketSession = []byte("session")

// ErrNoSession is returned by Load when nobody has signed in for the server.
var ErrNoSession = errors.New("no saved session")

// Session is what survives between CLI invocations.
type Session struct {
	Token   string    `json:"token"`
	Subject string    `json:"subject,omitempty"`
	Admin   bool      `json:"admin,omitempty"`
	SavedAt time.Time `json:"savedAt"`
}

// Identity returns the session as the identity handed to engagement calls.
func (s Session) Identity() domain.Identity {
	return domain.Identity{Token: s.Token, Subject: s.Subject, Admin: s.Admin}
}

// SessionStore keeps one session per portal server, keyed by a hash of the
// server URL. With no directory it runs memory-only.
type SessionStore struct {
	db  *bolt.DB
	key []byte

	mu     sync.Mutex
	memory []byte
}

// NewSessionStore opens (or creates) the session database under dir.
func NewSessionStore(dir, serverURL string) (*SessionStore, error) {
	key := []byte(hashServerURL(serverURL))
	if dir == "" {
		return &SessionStore{key: key}, nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	dbPath := filepath.Join(dir, "session.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open session db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSession)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SessionStore{db: db, key: key}, nil
}

func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

// Close releases the database
func (s *SessionStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save replaces the stored session
func (s *SessionStore) Save(sess Session) error {
	if sess.Token == "" {
		return fmt.Errorf("refusing to save a session without a token")
	}
	if sess.SavedAt.IsZero() {
		sess.SavedAt = time.Now()
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	if s.db == nil {
		s.mu.Lock()
		s.memory = data
		s.mu.Unlock()
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSession).Put(s.key, data)
	})
}

// Load returns the stored session, or ErrNoSession
func (s *SessionStore) Load() (Session, error) {
	var data []byte
	if s.db == nil {
		s.mu.Lock()
		data = s.memory
		s.mu.Unlock()
	} else {
		err := s.db.View(func(tx *bolt.Tx) error {
			if v := tx.Bucket(bucketSession).Get(s.key); v != nil {
				data = make([]byte, len(v))
				copy(data, v)
			}
			return nil
		})
		if err != nil {
			return Session{}, err
		}
	}

	if data == nil {
		return Session{}, ErrNoSession
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("corrupt session record: %w", err)
	}
	return sess, nil
}

// Clear removes the stored session. Clearing when none exists is not an error.
func (s *SessionStore) Clear() error {
	if s.db == nil {
		s.mu.Lock()
		s.memory = nil
		s.mu.Unlock()
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSession).Delete(s.key)
	})
}
