package postgrest_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
	"github.com/jurnalspendapol-design/rubikon-mobile/storage/postgrest"
	testutil "github.com/jurnalspendapol-design/rubikon-mobile/tests"
)

type captured struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   string
}

// backend answers every request with status and body, recording the last request.
func backend(t *testing.T, status int, body string) (*postgrest.Client, *captured) {
	t.Helper()
	last := new(captured)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		*last = captured{method: r.Method, path: r.URL.Path, query: r.URL.Query(), header: r.Header, body: string(data)}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	conf := testutil.NewConfig()
	conf.Backend.RestURL = srv.URL + "/"
	conf.Backend.RestKey = "anon-key"
	return postgrest.NewClient(conf), last
}

func TestClient_Select(t *testing.T) {
	client, last := backend(t, http.StatusOK, `[
		{"id": 7, "student_id": 3, "status": "pending", "created_at": "2024-05-01T08:00:00.123456+00:00", "users": {"name": "Budi"}},
		{"id": 6, "student_id": 4, "status": "accepted", "created_at": "2024-04-30T08:00:00+00:00", "users": null}
	]`)

	recs, err := client.Select(context.Background(), core.Query{
		Collection: core.CollCounseling,
		Filters: []core.Filter{
			core.Eq("student_id", int64(3)),
			core.In("status", "pending", "accepted"),
			core.Or(core.ILike("notes", "%takut, cemas%"), core.ILike("problem_type", "%Teman%")),
		},
		Embeds:    []core.Embed{{Collection: core.CollUsers, ForeignKey: "student_id", Columns: []string{"name"}, Inner: true}},
		Orderings: []core.DBOrdering{{Field: "created_at"}},
		Limit:     5,
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, last.method)
	assert.Equal(t, "/rest/v1/counseling_requests", last.path)
	assert.Equal(t, "*,users!inner(name)", last.query.Get("select"))
	assert.Equal(t, "eq.3", last.query.Get("student_id"))
	assert.Equal(t, "in.(pending,accepted)", last.query.Get("status"))
	assert.Equal(t, `(notes.ilike."*takut, cemas*",problem_type.ilike.*Teman*)`, last.query.Get("or"))
	assert.Equal(t, "created_at.desc", last.query.Get("order"))
	assert.Equal(t, "5", last.query.Get("limit"))
	assert.Equal(t, "anon-key", last.header.Get("apikey"))
	assert.Equal(t, "Bearer anon-key", last.header.Get("Authorization"))

	require.Len(t, recs, 2)
	assert.Equal(t, int64(7), recs[0].Int64("id"))
	assert.Equal(t, "Budi", recs[0].Record(core.CollUsers).String("name"))
	assert.True(t, time.Date(2024, 5, 1, 8, 0, 0, 123456000, time.UTC).Equal(recs[0].Time("created_at")))
	assert.Nil(t, recs[1].Record(core.CollUsers))
}

func TestClient_Select_repeatedColumn(t *testing.T) {
	client, last := backend(t, http.StatusOK, `[]`)

	recs, err := client.Select(context.Background(), core.Query{
		Collection: core.CollUsers,
		Filters:    []core.Filter{core.ILike("name", "%bu%"), core.ILike("name", "%di")},
	})
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Equal(t, "ilike.*bu*", last.query.Get("name"))
	assert.Equal(t, "(name.ilike.*di)", last.query.Get("and"))
}

func TestClient_Select_escapedWildcards(t *testing.T) {
	client, last := backend(t, http.StatusOK, `[]`)

	_, err := client.Select(context.Background(), core.Query{
		Collection: core.CollUsers,
		Filters: []core.Filter{
			core.ILike("name", "%"+core.EscapeLike("50%_")+"%"),
			core.Or(core.ILike("email", "%"+core.EscapeLike("a_b.c")+"%")),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, `ilike.*50\%\_*`, last.query.Get("name"))
	assert.Equal(t, `(email.ilike."*a\\_b.c*")`, last.query.Get("or"))
}

func TestClient_nullNeverMatches(t *testing.T) {
	client, last := backend(t, http.StatusOK, `[{"id": 1}]`)
	ctx := context.Background()

	recs, err := client.Select(ctx, core.Query{Collection: core.CollUsers, Filters: []core.Filter{core.Eq("class", nil)}})
	require.NoError(t, err)
	assert.Empty(t, recs)

	n, err := client.Delete(ctx, core.CollUsers, core.Eq("id", nil))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, last.method, "no request is sent")
}

func TestClient_write(t *testing.T) {
	ctx := context.Background()

	client, last := backend(t, http.StatusCreated, `[{"id": 1, "name": "Budi", "email": "budi@siswa.com"}]`)
	recs, err := client.Insert(ctx, core.CollUsers, core.Record{"name": "Budi", "email": "budi@siswa.com"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, http.MethodPost, last.method)
	assert.Contains(t, last.header.Get("Prefer"), "return=representation")
	var sent []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(last.body), &sent))
	assert.Equal(t, "budi@siswa.com", sent[0]["email"])

	_, err = client.Upsert(ctx, core.CollUsers, "email", core.Record{"name": "Budi", "email": "budi@siswa.com"})
	require.NoError(t, err)
	assert.Equal(t, "email", last.query.Get("on_conflict"))
	assert.Contains(t, last.header.Get("Prefer"), "resolution=merge-duplicates")

	_, err = client.Update(ctx, core.CollCounseling, core.Record{"status": "accepted", "id": 9},
		core.Eq("id", int64(1)), core.In("status", "pending"))
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, last.method)
	assert.Equal(t, "eq.1", last.query.Get("id"))
	assert.Equal(t, "in.(pending)", last.query.Get("status"))
	assert.JSONEq(t, `{"status": "accepted"}`, last.body)

	n, err := client.Delete(ctx, core.CollUsers, core.Eq("id", int64(1)))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, http.MethodDelete, last.method)
}

func TestClient_errors(t *testing.T) {
	ctx := context.Background()

	client, _ := backend(t, http.StatusConflict,
		`{"code": "23505", "message": "duplicate key value violates unique constraint \"users_email_key\"", "details": "Key (email)=(budi@siswa.com) already exists.", "hint": null}`)
	_, err := client.Insert(ctx, core.CollUsers, core.Record{"email": "budi@siswa.com"})
	require.Error(t, err)
	assert.True(t, core.IsConflict(err))

	client, _ = backend(t, http.StatusBadGateway, `<html>bad gateway</html>`)
	_, err = client.Select(ctx, core.Query{Collection: core.CollUsers})
	serr, ok := errors.Cause(err).(*core.StoreError)
	require.True(t, ok)
	assert.Equal(t, "502", serr.Code)
	assert.Equal(t, "<html>bad gateway</html>", serr.Details)

	conf := testutil.NewConfig()
	conf.Backend.RestURL = "http://127.0.0.1:1"
	_, err = postgrest.NewClient(conf).Select(ctx, core.Query{Collection: core.CollUsers})
	serr, ok = errors.Cause(err).(*core.StoreError)
	require.True(t, ok)
	assert.Equal(t, core.CodeNetwork, serr.Code)
}
