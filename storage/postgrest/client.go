// Package postgrest is a core.DataStore on the query API of the hosted table backend.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
)

const restPath = "/rest/v1/"

// Client sends one HTTP request per operation and never retries.
type Client struct {
	baseURL string
	key     string
	http    *rest.Client
}

var _ core.DataStore = (*Client)(nil)

func NewClient(conf *core.Config) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(conf.Backend.RestURL, "/") + restPath,
		key:     conf.Backend.RestKey,
		http:    &rest.Client{HTTPClient: &http.Client{Timeout: conf.Backend.Timeout}},
	}
}

// params is the query string of one request. Repeated columns are moved to an `and` group.
type params struct {
	values map[string]string
	and    []string
}

func newParams() *params {
	return &params{values: make(map[string]string)}
}

func (p *params) add(key, value string) {
	if _, taken := p.values[key]; taken {
		p.and = append(p.and, key+"."+value)
		return
	}
	p.values[key] = value
}

func (p *params) encode() map[string]string {
	if len(p.and) > 0 {
		p.values["and"] = "(" + strings.Join(p.and, ",") + ")"
	}
	return p.values
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// literal renders a filter value. Inside lists the values the query grammar reserves are quoted.
func literal(v interface{}, inList bool) string {
	s := core.Record{"v": v}.String("v")
	if inList && strings.ContainsAny(s, `,.:()" `) {
		return `"` + quoteEscaper.Replace(s) + `"`
	}
	return s
}

// operand renders the operator and value of f, e.g. `eq.3`, `in.(a,b)`.
func operand(f core.Filter, inList bool) (string, error) {
	switch f.Op {
	case core.OpEq:
		return "eq." + literal(f.Value, inList), nil
	case core.OpIn:
		vals := make([]string, 0, len(f.Values()))
		for _, v := range f.Values() {
			vals = append(vals, literal(v, true))
		}
		return "in.(" + strings.Join(vals, ",") + ")", nil
	case core.OpILike:
		pattern, _ := f.Value.(string)
		return "ilike." + literal(starWildcards(pattern), inList), nil
	}
	return "", &core.StoreError{Code: "PGRST100", Message: fmt.Sprintf("unsupported filter %q", f.Op)}
}

// starWildcards swaps the unescaped % wildcards for the * the query grammar expects.
func starWildcards(pattern string) string {
	var b strings.Builder
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%':
			r = '*'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// matchesNothing reports whether a filter compares with NULL, which never matches.
func matchesNothing(filters []core.Filter) bool {
	for _, f := range filters {
		if f.Op == core.OpEq && f.Value == nil {
			return true
		}
	}
	return false
}

func addFilters(p *params, filters []core.Filter) error {
	for _, f := range filters {
		if f.Op != core.OpOr {
			op, err := operand(f, false)
			if err != nil {
				return err
			}
			p.add(f.Field, op)
			continue
		}
		alts := make([]string, 0, len(f.Any))
		for _, sub := range f.Any {
			op, err := operand(sub, true)
			if err != nil {
				return err
			}
			alts = append(alts, sub.Field+"."+op)
		}
		p.add("or", "("+strings.Join(alts, ",")+")")
	}
	return nil
}

func selectParam(cols []string, embeds []core.Embed) string {
	sel := "*"
	if len(cols) > 0 {
		sel = strings.Join(cols, ",")
	}
	for _, emb := range embeds {
		name := emb.Collection
		if emb.Inner {
			name += "!inner"
		}
		embCols := "*"
		if len(emb.Columns) > 0 {
			embCols = strings.Join(emb.Columns, ",")
		}
		sel += "," + name + "(" + embCols + ")"
	}
	return sel
}

func (c *Client) send(ctx context.Context, method rest.Method, collection string, p *params, prefer string, body interface{}) ([]core.Record, error) {
	req := rest.Request{
		Method:  method,
		BaseURL: c.baseURL + collection,
		Headers: map[string]string{
			"apikey":        c.key,
			"Authorization": "Bearer " + c.key,
			"Accept":        "application/json",
		},
		QueryParams: p.encode(),
	}
	if prefer != "" {
		req.Headers["Prefer"] = prefer
	}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encoding request body")
		}
		req.Body = data
		req.Headers["Content-Type"] = "application/json"
	}

	res, err := c.http.SendWithContext(ctx, req)
	if err != nil {
		return nil, &core.StoreError{Code: core.CodeNetwork, Message: err.Error()}
	}
	if res.StatusCode >= http.StatusBadRequest {
		serr := new(core.StoreError)
		if jErr := json.Unmarshal([]byte(res.Body), serr); jErr != nil || serr.Message == "" {
			serr.Code = strconv.Itoa(res.StatusCode)
			serr.Message = http.StatusText(res.StatusCode)
			serr.Details = res.Body
		}
		return nil, serr
	}
	return decode(res.Body)
}

func decode(body string) ([]core.Record, error) {
	recs := make([]core.Record, 0)
	if strings.TrimSpace(body) == "" {
		return recs, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.UseNumber()
	if err := dec.Decode(&recs); err != nil {
		return nil, errors.Wrap(err, "decoding response")
	}
	return recs, nil
}

func (c *Client) Select(ctx context.Context, q core.Query) ([]core.Record, error) {
	if matchesNothing(q.Filters) {
		return []core.Record{}, nil
	}
	p := newParams()
	p.add("select", selectParam(q.Columns, q.Embeds))
	if err := addFilters(p, q.Filters); err != nil {
		return nil, err
	}
	if len(q.Orderings) > 0 {
		ords := make([]string, 0, len(q.Orderings))
		for _, ord := range q.Orderings {
			dir := "desc"
			if ord.Ascending {
				dir = "asc"
			}
			ords = append(ords, ord.Field+"."+dir)
		}
		p.add("order", strings.Join(ords, ","))
	}
	if q.Limit > 0 {
		p.add("limit", strconv.Itoa(q.Limit))
	}
	return c.send(ctx, rest.Get, q.Collection, p, "", nil)
}

func (c *Client) Insert(ctx context.Context, collection string, recs ...core.Record) ([]core.Record, error) {
	if len(recs) == 0 {
		return []core.Record{}, nil
	}
	return c.send(ctx, rest.Post, collection, newParams(), "return=representation,missing=default", recs)
}

func (c *Client) Upsert(ctx context.Context, collection, onConflict string, recs ...core.Record) ([]core.Record, error) {
	if len(recs) == 0 {
		return []core.Record{}, nil
	}
	p := newParams()
	p.add("on_conflict", onConflict)
	return c.send(ctx, rest.Post, collection, p, "resolution=merge-duplicates,return=representation,missing=default", recs)
}

func (c *Client) Update(ctx context.Context, collection string, patch core.Record, filters ...core.Filter) ([]core.Record, error) {
	if matchesNothing(filters) {
		return []core.Record{}, nil
	}
	p := newParams()
	if err := addFilters(p, filters); err != nil {
		return nil, err
	}
	body := patch.Copy()
	delete(body, "id")
	delete(body, "created_at")
	return c.send(ctx, rest.Patch, collection, p, "return=representation", body)
}

func (c *Client) Delete(ctx context.Context, collection string, filters ...core.Filter) (int, error) {
	if matchesNothing(filters) {
		return 0, nil
	}
	p := newParams()
	if err := addFilters(p, filters); err != nil {
		return 0, err
	}
	recs, err := c.send(ctx, rest.Delete, collection, p, "return=representation", nil)
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}
