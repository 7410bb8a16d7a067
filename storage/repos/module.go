package repos

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/module"
)

type moduleRepository struct {
	db core.DataStore
}

func NewModuleRepository(db core.DataStore) module.Repository {
	return &moduleRepository{db: db}
}

func toModule(rec core.Record) module.Module {
	m := module.Module{
		ID:       rec.Int64("id"),
		Title:    rec.String("title"),
		Content:  rec.String("content"),
		Category: rec.String("category"),
	}
	if t := rec.Time("created_at"); !t.IsZero() {
		m.CreatedAt = null.TimeFrom(t)
	}
	return m
}

func fromModule(m module.Module) core.Record {
	return core.Record{"title": m.Title, "content": m.Content, "category": m.Category}
}

func (repo *moduleRepository) CreateModule(ctx context.Context, m module.Module) (module.Module, error) {
	recs, err := repo.db.Insert(ctx, core.CollModules, fromModule(m))
	if err != nil {
		return module.Module{}, errors.Wrap(err, "inserting module")
	}
	return toModule(recs[0]), nil
}

func (repo *moduleRepository) GetModule(ctx context.Context, id int64) (module.Module, error) {
	rec, err := core.SelectOne(ctx, repo.db, core.Query{
		Collection: core.CollModules,
		Filters:    []core.Filter{core.Eq("id", id)},
	})
	if err != nil {
		if err == core.ErrNoRows {
			return module.Module{}, module.ErrNotFound
		}
		return module.Module{}, errors.Wrap(err, "selecting module")
	}
	return toModule(rec), nil
}

func (repo *moduleRepository) QueryModules(ctx context.Context) ([]module.Module, error) {
	recs, err := repo.db.Select(ctx, core.Query{Collection: core.CollModules, Orderings: newestFirst})
	if err != nil {
		return nil, errors.Wrap(err, "selecting modules")
	}
	mods := make([]module.Module, 0, len(recs))
	for _, rec := range recs {
		mods = append(mods, toModule(rec))
	}
	return mods, nil
}

func (repo *moduleRepository) UpdateModule(ctx context.Context, m module.Module) (module.Module, error) {
	recs, err := repo.db.Update(ctx, core.CollModules, fromModule(m), core.Eq("id", m.ID))
	if err != nil {
		return module.Module{}, errors.Wrap(err, "updating module")
	}
	if len(recs) == 0 {
		return module.Module{}, module.ErrNotFound
	}
	return toModule(recs[0]), nil
}

func (repo *moduleRepository) DeleteModule(ctx context.Context, id int64) error {
	n, err := repo.db.Delete(ctx, core.CollModules, core.Eq("id", id))
	if err != nil {
		return errors.Wrap(err, "deleting module")
	}
	if n == 0 {
		return module.ErrNotFound
	}
	return nil
}
