package repos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/user"
)

var userEditableColumns = []string{"name", "email", "role", "class", "avatar_url"}

type userRepository struct {
	db core.DataStore
}

func NewUserRepository(db core.DataStore) user.Repository {
	return &userRepository{db: db}
}

func toUser(rec core.Record) user.User {
	return user.User{
		ID:           rec.Int64("id"),
		Name:         rec.String("name"),
		Email:        rec.String("email"),
		Role:         rec.String("role"),
		Class:        nullableString(rec, "class"),
		AvatarURL:    nullableString(rec, "avatar_url"),
		PasswordHash: rec.String("password"),
		CreatedAt:    rec.Time("created_at"),
	}
}

func fromUser(usr user.User, columns ...string) core.Record {
	all := core.Record{
		"name":       usr.Name,
		"email":      usr.Email,
		"role":       usr.Role,
		"class":      nullValue(usr.Class),
		"avatar_url": nullValue(usr.AvatarURL),
		"password":   usr.PasswordHash,
	}
	if len(columns) == 0 {
		return all
	}
	rec := make(core.Record, len(columns))
	for _, col := range columns {
		rec[col] = all[col]
	}
	return rec
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	recs, err := repo.db.Insert(ctx, core.CollUsers, fromUser(usr))
	if err != nil {
		if core.IsConflict(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return toUser(recs[0]), nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	q := core.Query{Collection: core.CollUsers}
	if filter.ID != 0 {
		q.Filters = append(q.Filters, core.Eq("id", filter.ID))
	}
	if filter.Email != "" {
		q.Filters = append(q.Filters, core.Eq("email", filter.Email))
	}
	if len(q.Filters) == 0 {
		return user.User{}, user.ErrNotFound
	}

	rec, err := core.SelectOne(ctx, repo.db, q)
	if err != nil {
		if err == core.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting user")
	}
	return toUser(rec), nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	q := core.Query{Collection: core.CollUsers, Orderings: filter.Orderings}
	if filter.Search != "" {
		pattern := "%" + core.EscapeLike(filter.Search) + "%"
		q.Filters = append(q.Filters, core.Or(core.ILike("name", pattern), core.ILike("email", pattern)))
	}
	if filter.Role != "" {
		q.Filters = append(q.Filters, core.Eq("role", filter.Role))
	}

	recs, err := repo.db.Select(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "selecting users")
	}
	usrs := make([]user.User, 0, len(recs))
	for _, rec := range recs {
		usrs = append(usrs, toUser(rec))
	}
	return usrs, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, columns ...string) (user.User, error) {
	if len(columns) == 0 {
		columns = userEditableColumns
	}
	recs, err := repo.db.Update(ctx, core.CollUsers, fromUser(usr, columns...), core.Eq("id", usr.ID))
	if err != nil {
		if core.IsConflict(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if len(recs) == 0 {
		return user.User{}, user.ErrNotFound
	}
	return toUser(recs[0]), nil
}

func (repo *userRepository) UpsertUsers(ctx context.Context, usrs []user.User) (int, error) {
	recs := make([]core.Record, 0, len(usrs))
	for _, usr := range usrs {
		recs = append(recs, fromUser(usr, "name", "email", "role", "class", "password"))
	}
	out, err := repo.db.Upsert(ctx, core.CollUsers, "email", recs...)
	if err != nil {
		return 0, errors.Wrap(err, "upserting users")
	}
	return len(out), nil
}

func (repo *userRepository) DeleteUser(ctx context.Context, id int64) error {
	n, err := repo.db.Delete(ctx, core.CollUsers, core.Eq("id", id))
	if err != nil {
		return errors.Wrap(err, "deleting user")
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}
