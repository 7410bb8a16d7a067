// Package session keeps the signed-in user of each login and the small per-user client state.
package session

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/user"
)

const (
	userKeyPrefix    = "rubikon_user:"
	journalKeyPrefix = "rubikon_journal:"
	lockKeyPrefix    = "rubikon_lock:"
)

var (
	// ErrNotFound is returned by a Store for missing or expired keys.
	ErrNotFound     = errors.New("session not found")
	ErrEmptyJournal = errors.New("Jurnal tidak boleh kosong")
)

type (
	// Store is a key/value store with expiring keys.
	Store interface {
		Get(ctx context.Context, key string) (string, error)
		// Set stores value under key, forever when ttl is 0.
		Set(ctx context.Context, key, value string, ttl time.Duration) error
		// SetNX stores value only if key is not set yet and reports whether it did.
		SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
		Delete(ctx context.Context, key string) error
	}

	// Session is one login of a user.
	Session struct {
		ID        string    `json:"id"`
		User      user.User `json:"user"`
		ExpiresAt time.Time `json:"expires_at"`
	}

	Manager struct {
		store Store
		ttl   time.Duration
	}
)

var _ core.Locker = (*Manager)(nil)

// NewManager returns a manager whose sessions live as long as the auth tokens.
func NewManager(store Store, conf *core.Config) *Manager {
	return &Manager{store: store, ttl: conf.Server.JWTExpirationDelta}
}

func (m *Manager) TTL() time.Duration { return m.ttl }

// Create stores usr under a new session id.
func (m *Manager) Create(ctx context.Context, usr user.User) (Session, error) {
	sess := Session{
		ID:        uuid.NewString(),
		User:      usr,
		ExpiresAt: time.Now().UTC().Add(m.ttl),
	}
	if err := m.save(ctx, sess, m.ttl); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Get restores the session sid as stored, without checking the user against the data store.
func (m *Manager) Get(ctx context.Context, sid string) (Session, error) {
	val, err := m.store.Get(ctx, userKeyPrefix+sid)
	if err != nil {
		return Session{}, err
	}
	var sess Session
	if err = json.Unmarshal([]byte(val), &sess); err != nil {
		return Session{}, errors.Wrap(err, "decoding session")
	}
	return sess, nil
}

// Refresh replaces the user of session sid, keeping its expiry.
func (m *Manager) Refresh(ctx context.Context, sid string, usr user.User) (Session, error) {
	sess, err := m.Get(ctx, sid)
	if err != nil {
		return Session{}, err
	}
	sess.User = usr
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return Session{}, ErrNotFound
	}
	if err = m.save(ctx, sess, ttl); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Destroy ends session sid.
func (m *Manager) Destroy(ctx context.Context, sid string) error {
	return m.store.Delete(ctx, userKeyPrefix+sid)
}

func (m *Manager) save(ctx context.Context, sess Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	return m.store.Set(ctx, userKeyPrefix+sess.ID, string(data), ttl)
}

// SaveJournal keeps the latest gratitude journal entry of a user.
func (m *Manager) SaveJournal(ctx context.Context, userID int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyJournal
	}
	return m.store.Set(ctx, journalKey(userID), text, 0)
}

// Journal returns the latest journal entry of a user, empty if none.
func (m *Manager) Journal(ctx context.Context, userID int64) (string, error) {
	text, err := m.store.Get(ctx, journalKey(userID))
	if errors.Cause(err) == ErrNotFound {
		return "", nil
	}
	return text, err
}

func journalKey(userID int64) string {
	return journalKeyPrefix + strconv.FormatInt(userID, 10)
}

func (m *Manager) Lock(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	return m.store.SetNX(ctx, lockKeyPrefix+name, "1", ttl)
}

func (m *Manager) Unlock(ctx context.Context, name string) error {
	return m.store.Delete(ctx, lockKeyPrefix+name)
}
