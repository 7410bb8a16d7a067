// Package inmemdb is a DataStore kept in process memory, with the same filter semantics as the SQL stores.
package inmemdb

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
)

type (
	// reference is a foreign key of another collection pointing to this one.
	reference struct {
		collection string
		foreignKey string
		cascade    bool // delete the referencing rows, otherwise set the key to NULL
	}

	schema struct {
		defaults   core.Record
		unique     []string
		references []reference // incoming
		parents    map[string]string // foreign key -> referenced collection
	}

	table struct {
		schema schema
		rows   []core.Record
		seq    int64
	}

	DB struct {
		mu          sync.RWMutex
		tables      map[string]*table
		lastCreated time.Time
	}
)

var schemas = map[string]schema{
	core.CollUsers: {
		defaults: core.Record{"role": "student", "class": nil, "avatar_url": nil, "password": ""},
		unique:   []string{"email"},
		references: []reference{
			{collection: core.CollCounseling, foreignKey: "student_id", cascade: true},
			{collection: core.CollReports, foreignKey: "student_id"},
		},
	},
	core.CollCounseling: {
		defaults: core.Record{"status": "pending", "problem_type": nil, "preferred_time": nil, "notes": nil, "form_data": nil},
		parents:  map[string]string{"student_id": core.CollUsers},
	},
	core.CollReports: {
		defaults: core.Record{"status": "pending", "is_anonymous": 0, "student_id": nil},
		parents:  map[string]string{"student_id": core.CollUsers},
	},
	core.CollModules: {
		defaults: core.Record{"category": "Umum"},
	},
}

var _ core.DataStore = (*DB)(nil)

func Open() *DB {
	db := &DB{tables: make(map[string]*table, len(schemas))}
	for name, sch := range schemas {
		db.tables[name] = &table{schema: sch}
	}
	return db
}

func (db *DB) table(name string) (*table, error) {
	tbl, ok := db.tables[name]
	if !ok {
		return nil, &core.StoreError{Code: "42P01", Message: fmt.Sprintf("relation %q does not exist", name)}
	}
	return tbl, nil
}

// createdAt returns strictly increasing timestamps so that "newest first" is deterministic.
func (db *DB) createdAt() time.Time {
	t := time.Now().UTC().Truncate(time.Microsecond)
	if !t.After(db.lastCreated) {
		t = db.lastCreated.Add(time.Microsecond)
	}
	db.lastCreated = t
	return t
}

func (db *DB) Select(_ context.Context, q core.Query) ([]core.Record, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	tbl, err := db.table(q.Collection)
	if err != nil {
		return nil, err
	}

	out := make([]core.Record, 0)
	for _, row := range tbl.rows {
		if !matchAll(row, q.Filters) {
			continue
		}
		rec := project(row, q.Columns)
		keep := true
		for _, emb := range q.Embeds {
			nested, err := db.embed(row, emb)
			if err != nil {
				return nil, err
			}
			if nested == nil && emb.Inner {
				keep = false
				break
			}
			if nested == nil {
				rec[emb.Collection] = nil
			} else {
				rec[emb.Collection] = nested
			}
		}
		if keep {
			out = append(out, rec)
		}
	}

	sortRecords(out, q.Orderings)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (db *DB) embed(row core.Record, emb core.Embed) (core.Record, error) {
	parent, err := db.table(emb.Collection)
	if err != nil {
		return nil, err
	}
	fk := row[emb.ForeignKey]
	if fk == nil {
		return nil, nil
	}
	for _, p := range parent.rows {
		if equal(p["id"], fk) {
			return project(p, emb.Columns), nil
		}
	}
	return nil, nil
}

func (db *DB) Insert(_ context.Context, collection string, recs ...core.Record) ([]core.Record, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	tbl, err := db.table(collection)
	if err != nil {
		return nil, err
	}
	rows, err := db.prepare(tbl, recs)
	if err != nil {
		return nil, err
	}
	return db.commit(tbl, rows), nil
}

// prepare builds the rows to insert and checks them against the table constraints.
func (db *DB) prepare(tbl *table, recs []core.Record) ([]core.Record, error) {
	rows := make([]core.Record, 0, len(recs))
	for _, rec := range recs {
		row := tbl.schema.defaults.Copy()
		for k, v := range rec {
			if k == "id" || k == "created_at" {
				continue
			}
			row[k] = v
		}
		if err := db.checkParents(tbl, row); err != nil {
			return nil, err
		}
		if err := checkUnique(tbl, row, concat(tbl.rows, rows)); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (db *DB) commit(tbl *table, rows []core.Record) []core.Record {
	out := make([]core.Record, 0, len(rows))
	for _, row := range rows {
		tbl.seq++
		row["id"] = tbl.seq
		row["created_at"] = db.createdAt()
		tbl.rows = append(tbl.rows, row)
		out = append(out, row.Copy())
	}
	return out
}

func (db *DB) checkParents(tbl *table, row core.Record) error {
	for fk, coll := range tbl.schema.parents {
		v := row[fk]
		if v == nil {
			continue
		}
		found := false
		for _, p := range db.tables[coll].rows {
			if equal(p["id"], v) {
				found = true
				break
			}
		}
		if !found {
			return &core.StoreError{
				Code:    "23503",
				Message: fmt.Sprintf("insert or update violates foreign key constraint on %q", fk),
				Details: fmt.Sprintf("Key (%s)=(%v) is not present in table %q.", fk, v, coll),
			}
		}
	}
	return nil
}

func checkUnique(tbl *table, row core.Record, others []core.Record) error {
	for _, col := range tbl.schema.unique {
		for _, o := range others {
			if o["id"] != nil && equal(o["id"], row["id"]) {
				continue
			}
			if equal(o[col], row[col]) {
				return &core.StoreError{
					Code:    core.CodeUniqueViolation,
					Message: fmt.Sprintf("duplicate key value violates unique constraint %q", col+"_key"),
					Details: fmt.Sprintf("Key (%s)=(%v) already exists.", col, row[col]),
				}
			}
		}
	}
	return nil
}

func (db *DB) Update(_ context.Context, collection string, patch core.Record, filters ...core.Filter) ([]core.Record, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	tbl, err := db.table(collection)
	if err != nil {
		return nil, err
	}

	// check every change before applying any
	idxs := make([]int, 0)
	updated := make([]core.Record, 0)
	for i, row := range tbl.rows {
		if !matchAll(row, filters) {
			continue
		}
		next := merge(row, patch)
		if err = db.checkParents(tbl, next); err != nil {
			return nil, err
		}
		if err = checkUnique(tbl, next, concat(tbl.rows, updated)); err != nil {
			return nil, err
		}
		idxs = append(idxs, i)
		updated = append(updated, next)
	}

	out := make([]core.Record, 0, len(idxs))
	for j, i := range idxs {
		tbl.rows[i] = updated[j]
		out = append(out, updated[j].Copy())
	}
	return out, nil
}

func (db *DB) Upsert(_ context.Context, collection, onConflict string, recs ...core.Record) ([]core.Record, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	tbl, err := db.table(collection)
	if err != nil {
		return nil, err
	}

	out := make([]core.Record, 0, len(recs))
	for _, rec := range recs {
		existing := -1
		for i, row := range tbl.rows {
			if equal(row[onConflict], rec[onConflict]) {
				existing = i
				break
			}
		}
		if existing < 0 {
			rows, err := db.prepare(tbl, []core.Record{rec})
			if err != nil {
				return nil, err
			}
			out = append(out, db.commit(tbl, rows)...)
			continue
		}
		next := merge(tbl.rows[existing], rec)
		if err = db.checkParents(tbl, next); err != nil {
			return nil, err
		}
		tbl.rows[existing] = next
		out = append(out, next.Copy())
	}
	return out, nil
}

func (db *DB) Delete(_ context.Context, collection string, filters ...core.Filter) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	tbl, err := db.table(collection)
	if err != nil {
		return 0, err
	}

	kept := tbl.rows[:0:0]
	removed := make([]core.Record, 0)
	for _, row := range tbl.rows {
		if matchAll(row, filters) {
			removed = append(removed, row)
		} else {
			kept = append(kept, row)
		}
	}
	tbl.rows = kept

	for _, ref := range tbl.schema.references {
		child := db.tables[ref.collection]
		rows := child.rows[:0:0]
		for _, row := range child.rows {
			pointsToRemoved := false
			for _, r := range removed {
				if equal(row[ref.foreignKey], r["id"]) {
					pointsToRemoved = true
					break
				}
			}
			switch {
			case !pointsToRemoved:
				rows = append(rows, row)
			case !ref.cascade:
				row[ref.foreignKey] = nil
				rows = append(rows, row)
			}
		}
		child.rows = rows
	}
	return len(removed), nil
}

// helpers

func concat(a, b []core.Record) []core.Record {
	out := make([]core.Record, 0, len(a)+len(b))
	return append(append(out, a...), b...)
}

func merge(row, patch core.Record) core.Record {
	next := row.Copy()
	for k, v := range patch {
		if k == "id" || k == "created_at" {
			continue
		}
		next[k] = v
	}
	return next
}

func project(row core.Record, cols []string) core.Record {
	if len(cols) == 0 || (len(cols) == 1 && cols[0] == "*") {
		return row.Copy()
	}
	rec := make(core.Record, len(cols))
	for _, c := range cols {
		rec[c] = row[c]
	}
	return rec
}

func matchAll(row core.Record, filters []core.Filter) bool {
	for _, f := range filters {
		if !match(row, f) {
			return false
		}
	}
	return true
}

func match(row core.Record, f core.Filter) bool {
	switch f.Op {
	case core.OpEq:
		return equal(row[f.Field], f.Value)
	case core.OpIn:
		for _, v := range f.Values() {
			if equal(row[f.Field], v) {
				return true
			}
		}
		return false
	case core.OpILike:
		v := row[f.Field]
		if v == nil {
			return false
		}
		pattern, _ := f.Value.(string)
		return likeRegexp(pattern).MatchString(core.Record{"v": v}.String("v"))
	case core.OpOr:
		for _, sub := range f.Any {
			if match(row, sub) {
				return true
			}
		}
		return false
	}
	return false
}

// equal compares stored and filter values the way SQL does for our column types: NULL never matches.
func equal(a, b interface{}) bool {
	if a == nil || b == nil {
		return false
	}
	pair := core.Record{"a": a, "b": b}
	return pair.String("a") == pair.String("b")
}

// likeRegexp translates an ILIKE pattern (% any run, _ any char, \ escapes) to a case-insensitive regexp.
func likeRegexp(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("(?is)^")
	escaped := false
	for _, r := range pattern {
		if escaped {
			b.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

func sortRecords(recs []core.Record, orderings []core.DBOrdering) {
	if len(orderings) == 0 {
		return
	}
	sort.SliceStable(recs, func(i, j int) bool {
		for _, ord := range orderings {
			c := compare(recs[i][ord.Field], recs[j][ord.Field])
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

// compare orders NULLs after every value, like PostgreSQL does for ascending orderings.
func compare(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	pair := core.Record{"a": a, "b": b}
	switch av := a.(type) {
	case time.Time:
		bv := pair.Time("b")
		switch {
		case av.Before(bv):
			return -1
		case av.After(bv):
			return 1
		}
		return 0
	case int, int32, int64, float64:
		ai, bi := pair.Int64("a"), pair.Int64("b")
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	}
	return strings.Compare(strings.ToLower(pair.String("a")), strings.ToLower(pair.String("b")))
}
