package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Collections of the portal data store.
const (
	CollUsers      = "users"
	CollCounseling = "counseling_requests"
	CollReports    = "reports"
	CollModules    = "modules"
)

// ErrNoRows is returned by SelectOne when no record matched.
var ErrNoRows = errors.New("no rows in result set")

type (
	// DataStore is a collection based store: the hosted table backend, a SQL database or memory.
	// Implementations never retry; failures are returned as *StoreError.
	DataStore interface {
		Select(ctx context.Context, q Query) ([]Record, error)
		Insert(ctx context.Context, collection string, recs ...Record) ([]Record, error)
		// Update applies patch to every record matching all filters and returns the updated records.
		Update(ctx context.Context, collection string, patch Record, filters ...Filter) ([]Record, error)
		// Upsert inserts recs, updating the existing ones that conflict on the onConflict column.
		Upsert(ctx context.Context, collection, onConflict string, recs ...Record) ([]Record, error)
		// Delete removes every record matching all filters and returns how many were removed.
		Delete(ctx context.Context, collection string, filters ...Filter) (int, error)
	}

	// Query describes a read on one collection. All Filters must match.
	Query struct {
		Collection string
		Columns    []string // empty means all
		Filters    []Filter
		Embeds     []Embed
		Orderings  []DBOrdering
		Limit      int
	}

	// Embed nests the related record referenced by ForeignKey under record[Collection].
	// Records without a related record are dropped when Inner is set.
	Embed struct {
		Collection string
		ForeignKey string
		Columns    []string
		Inner      bool
	}

	FilterOp string

	Filter struct {
		Field string
		Op    FilterOp
		Value interface{}
		Any   []Filter // for OpOr
	}

	DBOrdering struct {
		Field     string
		Ascending bool
	}
)

const (
	OpEq    FilterOp = "eq"
	OpILike FilterOp = "ilike" // % is the wildcard
	OpIn    FilterOp = "in"
	OpOr    FilterOp = "or"
)

func Eq(field string, value interface{}) Filter {
	return Filter{Field: field, Op: OpEq, Value: value}
}

func ILike(field, pattern string) Filter {
	return Filter{Field: field, Op: OpILike, Value: pattern}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// EscapeLike makes `s` match itself literally inside an ILIKE pattern.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func In(field string, values ...interface{}) Filter {
	return Filter{Field: field, Op: OpIn, Value: values}
}

func Or(filters ...Filter) Filter {
	return Filter{Op: OpOr, Any: filters}
}

// Values returns the value list of an OpIn filter.
func (f Filter) Values() []interface{} {
	if vals, ok := f.Value.([]interface{}); ok {
		return vals
	}
	return nil
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// SelectOne returns the only record matching q.
func SelectOne(ctx context.Context, store DataStore, q Query) (Record, error) {
	q.Limit = 2
	recs, err := store.Select(ctx, q)
	if err != nil {
		return nil, err
	}
	switch len(recs) {
	case 0:
		return nil, ErrNoRows
	case 1:
		return recs[0], nil
	default:
		return nil, &StoreError{Code: "PGRST116", Message: "JSON object requested, multiple (or no) rows returned"}
	}
}

// StoreError is the structured failure reported by a DataStore.
type StoreError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *StoreError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return msg
}

// Store error codes, as reported by PostgreSQL.
const (
	CodeUniqueViolation = "23505"
	CodeNetwork         = "network"
)

// IsConflict reports whether err is a unique constraint violation.
func IsConflict(err error) bool {
	serr, ok := errors.Cause(err).(*StoreError)
	return ok && serr.Code == CodeUniqueViolation
}

// IsBadInput reports whether the store rejected a value (PostgreSQL data exception class 22).
func IsBadInput(err error) bool {
	serr, ok := errors.Cause(err).(*StoreError)
	return ok && strings.HasPrefix(serr.Code, "22")
}

// Record is one row as returned by a DataStore.
// Value types depend on the backend, the accessors normalize them.
type Record map[string]interface{}

func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}

func (r Record) Int64(key string) int64 {
	switch v := r[key].(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	case json.Number:
		i, _ := v.Int64()
		return i
	case string:
		i, _ := strconv.ParseInt(v, 10, 64)
		return i
	case []byte:
		i, _ := strconv.ParseInt(string(v), 10, 64)
		return i
	}
	return 0
}

func (r Record) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	case nil:
		return false
	default:
		return r.Int64(key) != 0
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05.999999",
}

func (r Record) Time(key string) time.Time {
	switch v := r[key].(type) {
	case time.Time:
		return v.UTC()
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Time{}
}

// Record returns the embedded record stored under key, nil if missing.
func (r Record) Record(key string) Record {
	switch v := r[key].(type) {
	case Record:
		return v
	case map[string]interface{}:
		return v
	}
	return nil
}

// Copy returns a shallow copy of r.
func (r Record) Copy() Record {
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}
