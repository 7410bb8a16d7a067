package module_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jurnalspendapol-design/rubikon-mobile/core/module"
	appfs "github.com/jurnalspendapol-design/rubikon-mobile/fs"
	inmemdb "github.com/jurnalspendapol-design/rubikon-mobile/storage/database/inmem"
	"github.com/jurnalspendapol-design/rubikon-mobile/storage/repos"
	testutil "github.com/jurnalspendapol-design/rubikon-mobile/tests"
)

var errUnreachable = errors.New("network: connection refused")

// brokenRepository fails every call.
type brokenRepository struct{}

func (brokenRepository) CreateModule(context.Context, module.Module) (module.Module, error) {
	return module.Module{}, errUnreachable
}
func (brokenRepository) GetModule(context.Context, int64) (module.Module, error) {
	return module.Module{}, errUnreachable
}
func (brokenRepository) QueryModules(context.Context) ([]module.Module, error) {
	return nil, errUnreachable
}
func (brokenRepository) UpdateModule(context.Context, module.Module) (module.Module, error) {
	return module.Module{}, errUnreachable
}
func (brokenRepository) DeleteModule(context.Context, int64) error { return errUnreachable }

func newService(t *testing.T, repo module.Repository) *module.Service {
	conf := testutil.NewConfig()
	svc, err := module.NewService(repo, testutil.NewValidator(conf), testutil.NewLogger(conf), appfs.FS, appfs.ContentDir)
	require.NoError(t, err)
	return svc
}

func TestService_List_builtinFallback(t *testing.T) {
	ctx := context.Background()

	for name, repo := range map[string]module.Repository{
		"empty store":  repos.NewModuleRepository(inmemdb.Open()),
		"broken store": brokenRepository{},
	} {
		t.Run(name, func(t *testing.T) {
			svc := newService(t, repo)
			mods := svc.List(ctx)
			require.Len(t, mods, 4)
			assert.True(t, mods[0].Builtin)
			assert.Equal(t, "Akademik", mods[0].CategoryLabel)

			m, err := svc.Get(ctx, 3)
			require.NoError(t, err)
			assert.Equal(t, "Cara Menghadapi Bullying", m.Title)
		})
	}
}

func TestService_CRUD(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, repos.NewModuleRepository(inmemdb.Open()))

	_, err := svc.Create(ctx, module.NewModule{Title: " ", Content: "Isi"})
	assert.Error(t, err)

	first, err := svc.Create(ctx, module.NewModule{Title: "Mengenal Diri", Content: " Isi modul. "})
	require.NoError(t, err)
	assert.Equal(t, module.DefaultCategory, first.Category)
	assert.Equal(t, "Isi modul.", first.Content)
	assert.True(t, first.CreatedAt.Valid)
	assert.False(t, first.Builtin)

	second, err := svc.Create(ctx, module.NewModule{Title: "Sehat Mental", Content: "Isi", Category: "Kesehatan_Mental"})
	require.NoError(t, err)
	assert.Equal(t, "Kesehatan Mental", second.CategoryLabel)

	mods := svc.List(ctx)
	require.Len(t, mods, 2, "stored modules replace the built-in ones")
	assert.Equal(t, second.ID, mods[0].ID, "newest first")

	updated, err := svc.Update(ctx, first.ID, module.UpdateModule{Title: "Mengenal Diri Sendiri", Content: "Isi baru", Category: "Pribadi"})
	require.NoError(t, err)
	assert.Equal(t, "Mengenal Diri Sendiri", updated.Title)
	assert.Equal(t, "Pribadi", updated.CategoryLabel)

	_, err = svc.Update(ctx, 999, module.UpdateModule{Title: "X", Content: "Y"})
	assert.Equal(t, module.ErrNotFound, errors.Cause(err))

	require.NoError(t, svc.Delete(ctx, first.ID))
	assert.Equal(t, module.ErrNotFound, errors.Cause(svc.Delete(ctx, first.ID)))

	_, err = svc.Get(ctx, 999)
	assert.Equal(t, module.ErrNotFound, err)
}
