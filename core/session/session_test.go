package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/session"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/user"
	"github.com/jurnalspendapol-design/rubikon-mobile/storage/cache"
)

func newManager() *session.Manager {
	conf := &core.Config{Server: core.ServerConfig{JWTExpirationDelta: time.Hour}}
	return session.NewManager(cache.NewMemoryStore(), conf)
}

func TestManager_lifecycle(t *testing.T) {
	ctx := context.Background()
	mgr := newManager()
	usr := user.User{ID: 7, Name: "Budi", Email: "budi@siswa.com", Role: user.RoleStudent, PasswordHash: "secret"}

	sess, err := mgr.Create(ctx, usr)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)

	got, err := mgr.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.User.ID)
	assert.Equal(t, "Budi", got.User.Name)
	assert.Empty(t, got.User.PasswordHash, "password hash must not be persisted")

	usr.AvatarURL = null.StringFrom("data:image/png;base64,AA==")
	_, err = mgr.Refresh(ctx, sess.ID, usr)
	require.NoError(t, err)
	got, err = mgr.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, usr.AvatarURL, got.User.AvatarURL)

	require.NoError(t, mgr.Destroy(ctx, sess.ID))
	_, err = mgr.Get(ctx, sess.ID)
	assert.Equal(t, session.ErrNotFound, err)
}

func TestManager_journal(t *testing.T) {
	ctx := context.Background()
	mgr := newManager()

	text, err := mgr.Journal(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, text)

	assert.Equal(t, session.ErrEmptyJournal, mgr.SaveJournal(ctx, 1, "   "))
	require.NoError(t, mgr.SaveJournal(ctx, 1, " Hari ini saya bersyukur. "))
	text, err = mgr.Journal(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Hari ini saya bersyukur.", text)

	text, err = mgr.Journal(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestManager_lock(t *testing.T) {
	ctx := context.Background()
	mgr := newManager()

	calls := 0
	err := core.WithLock(ctx, mgr, "submit:report:1", time.Minute, func() error {
		calls++
		// a second submission while the first is in flight
		return core.WithLock(ctx, mgr, "submit:report:1", time.Minute, func() error {
			calls++
			return nil
		})
	})
	assert.Equal(t, core.ErrBusy, err)
	assert.Equal(t, 1, calls)

	// released afterwards
	require.NoError(t, core.WithLock(ctx, mgr, "submit:report:1", time.Minute, func() error { return nil }))
}
