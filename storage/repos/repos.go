// Package repos maps the portal collections of a core.DataStore to the domain repositories.
package repos

import (
	"github.com/volatiletech/null/v8"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
)

var newestFirst = []core.DBOrdering{{Field: "created_at", Ascending: false}}

func studentEmbed(inner bool) core.Embed {
	return core.Embed{Collection: core.CollUsers, ForeignKey: "student_id", Columns: []string{"name"}, Inner: inner}
}

func nullableString(rec core.Record, key string) null.String {
	if !rec.Has(key) {
		return null.String{}
	}
	return null.StringFrom(rec.String(key))
}

func nullValue(s null.String) interface{} {
	if !s.Valid {
		return nil
	}
	return s.String
}

func nullableID(id int64) interface{} {
	if id == 0 {
		return nil
	}
	return id
}

func statusValues[S ~string](statuses []S) []interface{} {
	vals := make([]interface{}, 0, len(statuses))
	for _, s := range statuses {
		vals = append(vals, string(s))
	}
	return vals
}
