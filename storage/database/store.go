package database

import (
	"context"
	"database/sql/driver"
	"fmt"
	"net"
	"regexp"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
)

const (
	baseAlias = "t"
	embedSep  = "__" // embedded columns are selected as <collection>__<column>
)

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Store is a core.DataStore on PostgreSQL.
type Store struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

var _ core.DataStore = (*Store)(nil)

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

func quoteIdent(name string) string {
	return pq.QuoteIdentifier(name)
}

func checkIdents(names ...string) error {
	for _, n := range names {
		if !identRe.MatchString(n) {
			return &core.StoreError{Code: "42703", Message: fmt.Sprintf("invalid identifier %q", n)}
		}
	}
	return nil
}

// storeError converts driver failures to *core.StoreError.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &core.StoreError{Code: string(pqErr.Code), Message: pqErr.Message, Details: pqErr.Detail, Hint: pqErr.Hint}
	}
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.As(err, &netErr) {
		return &core.StoreError{Code: core.CodeNetwork, Message: err.Error()}
	}
	return err
}

func where(prefix string, filters []core.Filter) (sq.And, error) {
	conds := make(sq.And, 0, len(filters))
	for _, f := range filters {
		c, err := condition(prefix, f)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	return conds, nil
}

func condition(prefix string, f core.Filter) (sq.Sqlizer, error) {
	if f.Op == core.OpOr {
		or := make(sq.Or, 0, len(f.Any))
		for _, sub := range f.Any {
			c, err := condition(prefix, sub)
			if err != nil {
				return nil, err
			}
			or = append(or, c)
		}
		return or, nil
	}

	if err := checkIdents(f.Field); err != nil {
		return nil, err
	}
	col := prefix + f.Field
	switch f.Op {
	case core.OpEq:
		if f.Value == nil {
			// NULL never matches
			return sq.Expr("FALSE"), nil
		}
		return sq.Eq{col: f.Value}, nil
	case core.OpIn:
		return sq.Eq{col: f.Values()}, nil
	case core.OpILike:
		return sq.ILike{col: f.Value}, nil
	}
	return nil, &core.StoreError{Code: "42883", Message: fmt.Sprintf("unsupported filter %q", f.Op)}
}

func (s *Store) query(ctx context.Context, b sq.Sqlizer) ([]core.Record, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, storeError(err)
	}
	defer func() { _ = rows.Close() }()

	recs := make([]core.Record, 0)
	for rows.Next() {
		row := make(map[string]interface{})
		if err = rows.MapScan(row); err != nil {
			return nil, storeError(err)
		}
		recs = append(recs, core.Record(row))
	}
	if err = rows.Err(); err != nil {
		return nil, storeError(err)
	}
	return recs, nil
}

func (s *Store) Select(ctx context.Context, q core.Query) ([]core.Record, error) {
	b, err := s.selectBuilder(q)
	if err != nil {
		return nil, err
	}
	recs, err := s.query(ctx, b)
	if err != nil {
		return nil, err
	}
	if len(q.Embeds) > 0 {
		for _, rec := range recs {
			nest(rec, q.Embeds)
		}
	}
	return recs, nil
}

func (s *Store) selectBuilder(q core.Query) (sq.SelectBuilder, error) {
	if err := checkIdents(append([]string{q.Collection}, q.Columns...)...); err != nil {
		return sq.SelectBuilder{}, err
	}

	cols := make([]string, 0, len(q.Columns)+1)
	if len(q.Columns) == 0 {
		cols = append(cols, baseAlias+".*")
	}
	for _, c := range q.Columns {
		cols = append(cols, baseAlias+"."+c)
	}

	b := s.sb.Select().From(q.Collection + " AS " + baseAlias)
	for i, emb := range q.Embeds {
		if err := checkIdents(append([]string{emb.Collection, emb.ForeignKey}, emb.Columns...)...); err != nil {
			return sq.SelectBuilder{}, err
		}
		alias := fmt.Sprintf("e%d", i)
		on := fmt.Sprintf("%s AS %s ON %s.id = %s.%s", emb.Collection, alias, alias, baseAlias, emb.ForeignKey)
		if emb.Inner {
			b = b.Join(on)
		} else {
			b = b.LeftJoin(on)
		}
		// the id tells a missing relation from a relation with NULL columns
		cols = append(cols, fmt.Sprintf(`%s.id AS "%s%sid"`, alias, emb.Collection, embedSep))
		for _, c := range emb.Columns {
			if c == "id" {
				continue
			}
			cols = append(cols, fmt.Sprintf(`%s.%s AS "%s%s%s"`, alias, c, emb.Collection, embedSep, c))
		}
	}
	b = b.Columns(cols...)

	conds, err := where(baseAlias+".", q.Filters)
	if err != nil {
		return sq.SelectBuilder{}, err
	}
	if len(conds) > 0 {
		b = b.Where(conds)
	}
	for _, ord := range q.Orderings {
		if err = checkIdents(ord.Field); err != nil {
			return sq.SelectBuilder{}, err
		}
		b = b.OrderBy(baseAlias + "." + ord.String())
	}
	if q.Limit > 0 {
		b = b.Limit(uint64(q.Limit))
	}
	return b, nil
}

// nest moves the <collection>__<column> keys of rec under rec[collection].
func nest(rec core.Record, embeds []core.Embed) {
	for _, emb := range embeds {
		prefix := emb.Collection + embedSep
		nested := make(core.Record, len(emb.Columns))
		for k, v := range rec {
			if strings.HasPrefix(k, prefix) {
				nested[strings.TrimPrefix(k, prefix)] = v
				delete(rec, k)
			}
		}
		if nested["id"] == nil {
			rec[emb.Collection] = nil
			continue
		}
		rec[emb.Collection] = nested
	}
}

// insertBuilder builds a multi-row insert. Keys missing from a record take the column default.
func (s *Store) insertBuilder(collection string, recs []core.Record) (sq.InsertBuilder, []string, error) {
	keys := make(map[string]bool)
	for _, rec := range recs {
		for k := range rec {
			if k != "id" && k != "created_at" {
				keys[k] = true
			}
		}
	}
	cols := make([]string, 0, len(keys))
	for k := range keys {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	if err := checkIdents(append([]string{collection}, cols...)...); err != nil {
		return sq.InsertBuilder{}, nil, err
	}

	b := s.sb.Insert(collection).Columns(cols...)
	for _, rec := range recs {
		vals := make([]interface{}, 0, len(cols))
		for _, c := range cols {
			if v, ok := rec[c]; ok {
				vals = append(vals, v)
			} else {
				vals = append(vals, sq.Expr("DEFAULT"))
			}
		}
		b = b.Values(vals...)
	}
	return b, cols, nil
}

func (s *Store) Insert(ctx context.Context, collection string, recs ...core.Record) ([]core.Record, error) {
	if len(recs) == 0 {
		return []core.Record{}, nil
	}
	b, _, err := s.insertBuilder(collection, recs)
	if err != nil {
		return nil, err
	}
	return s.query(ctx, b.Suffix("RETURNING *"))
}

func (s *Store) Upsert(ctx context.Context, collection, onConflict string, recs ...core.Record) ([]core.Record, error) {
	if len(recs) == 0 {
		return []core.Record{}, nil
	}
	if err := checkIdents(onConflict); err != nil {
		return nil, err
	}
	b, cols, err := s.insertBuilder(collection, recs)
	if err != nil {
		return nil, err
	}

	sets := make([]string, 0, len(cols))
	for _, c := range cols {
		if c != onConflict {
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
		}
	}
	suffix := fmt.Sprintf("ON CONFLICT (%s) DO NOTHING RETURNING *", onConflict)
	if len(sets) > 0 {
		suffix = fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s RETURNING *", onConflict, strings.Join(sets, ", "))
	}
	return s.query(ctx, b.Suffix(suffix))
}

func (s *Store) Update(ctx context.Context, collection string, patch core.Record, filters ...core.Filter) ([]core.Record, error) {
	if err := checkIdents(collection); err != nil {
		return nil, err
	}
	set := make(map[string]interface{}, len(patch))
	for k, v := range patch {
		if k == "id" || k == "created_at" {
			continue
		}
		if err := checkIdents(k); err != nil {
			return nil, err
		}
		set[k] = v
	}
	if len(set) == 0 {
		return []core.Record{}, nil
	}

	conds, err := where("", filters)
	if err != nil {
		return nil, err
	}
	b := s.sb.Update(collection).SetMap(set).Suffix("RETURNING *")
	if len(conds) > 0 {
		b = b.Where(conds)
	}
	return s.query(ctx, b)
}

func (s *Store) Delete(ctx context.Context, collection string, filters ...core.Filter) (int, error) {
	if err := checkIdents(collection); err != nil {
		return 0, err
	}
	conds, err := where("", filters)
	if err != nil {
		return 0, err
	}
	b := s.sb.Delete(collection)
	if len(conds) > 0 {
		b = b.Where(conds)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, storeError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeError(err)
	}
	return int(n), nil
}
