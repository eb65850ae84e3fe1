// Package odootest provides an in-memory Odoo JSON-RPC server for tests.
package odootest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
)

// Call is one recorded call_kw request.
type Call struct {
	Model  string
	Method string
	Args   []any
	Kwargs map[string]any
}

// Server is a fake Odoo instance holding records per model.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	records  map[string][]map[string]any
	nextID   map[string]int64
	calls    []Call
	failures map[string]bool
	password string
}

// Session credentials accepted by the fake.
const (
	DB       = "test-db"
	Login    = "bot@example.com"
	Password = "secret"
)

// New starts a fake Odoo server. Close it with t.Cleanup(srv.Close).
func New() *Server {
	s := &Server{
		records:  map[string][]map[string]any{},
		nextID:   map[string]int64{},
		failures: map[string]bool{},
		password: Password,
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Seed adds records to a model. Records without an id get the next one.
// Values use JSON shapes: many2one fields are []any{id, name} or false.
func (s *Server) Seed(model string, recs ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range recs {
		s.insert(model, normalize(r))
	}
}

// Records returns a copy of a model's records in JSON shapes, so every
// number is a float64.
func (s *Server) Records(model string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.records[model]))
	for _, r := range s.records[model] {
		out = append(out, normalize(r))
	}
	return out
}

// Record returns one record by id, or nil.
func (s *Server) Record(model string, id int64) map[string]any {
	for _, r := range s.Records(model) {
		if toInt(r["id"]) == id {
			return r
		}
	}
	return nil
}

// Calls returns the recorded call_kw requests, optionally filtered by
// "model.method".
func (s *Server) Calls(filter ...string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(filter) == 0 {
		return append([]Call(nil), s.calls...)
	}
	var out []Call
	for _, c := range s.calls {
		for _, f := range filter {
			if c.Model+"."+c.Method == f {
				out = append(out, c)
			}
		}
	}
	return out
}

// Fail makes every "model.method" call answer with an RPC error.
func (s *Server) Fail(modelMethod string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[modelMethod] = true
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     any             `json:"id"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if r.URL.Path == "/web/session/authenticate" {
		var p struct {
			DB       string `json:"db"`
			Login    string `json:"login"`
			Password string `json:"password"`
		}
		_ = json.Unmarshal(req.Params, &p)
		if p.DB != DB || p.Login != Login || p.Password != s.password {
			writeError(w, "odoo.exceptions.AccessDenied", "Access Denied")
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session_id", Value: "fake-session", Path: "/"})
		writeResult(w, map[string]any{"uid": 2, "username": p.Login})
		return
	}

	if c, err := r.Cookie("session_id"); err != nil || c.Value != "fake-session" {
		writeError(w, "odoo.http.SessionExpiredException", "Session expired")
		return
	}

	if !strings.HasPrefix(r.URL.Path, "/web/dataset/call_kw/") {
		http.NotFound(w, r)
		return
	}

	var p struct {
		Model  string         `json:"model"`
		Method string         `json:"method"`
		Args   []any          `json:"args"`
		Kwargs map[string]any `json:"kwargs"`
	}
	if err := json.Unmarshal(req.Params, &p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Model: p.Model, Method: p.Method, Args: p.Args, Kwargs: p.Kwargs})

	if s.failures[p.Model+"."+p.Method] {
		writeError(w, "odoo.exceptions.UserError", "forced failure")
		return
	}

	switch p.Method {
	case "search_read":
		var domain []any
		if len(p.Args) > 0 {
			domain, _ = p.Args[0].([]any)
		}
		writeResult(w, s.searchRead(p.Model, domain, p.Kwargs))
	case "read":
		ids := idsArg(p.Args)
		var out []map[string]any
		for _, rec := range s.records[p.Model] {
			if containsID(ids, toInt(rec["id"])) {
				out = append(out, project(rec, stringsOf(p.Kwargs["fields"])))
			}
		}
		writeResult(w, nonNil(out))
	case "create":
		vals, _ := p.Args[0].(map[string]any)
		writeResult(w, s.insert(p.Model, vals))
	case "write":
		ids := idsArg(p.Args)
		vals, _ := p.Args[1].(map[string]any)
		found := false
		for _, rec := range s.records[p.Model] {
			if containsID(ids, toInt(rec["id"])) {
				for k, v := range vals {
					rec[k] = v
				}
				found = true
			}
		}
		writeResult(w, found)
	case "method_direct_trigger":
		writeResult(w, true)
	default:
		writeError(w, "builtins.AttributeError", fmt.Sprintf("unknown method %s", p.Method))
	}
}

func (s *Server) insert(model string, vals map[string]any) int64 {
	rec := copyRecord(vals)
	id := toInt(rec["id"])
	if id == 0 {
		s.nextID[model]++
		id = s.nextID[model]
		for s.exists(model, id) {
			s.nextID[model]++
			id = s.nextID[model]
		}
	} else if id > s.nextID[model] {
		s.nextID[model] = id
	}
	rec["id"] = id
	s.records[model] = append(s.records[model], rec)
	return id
}

func (s *Server) exists(model string, id int64) bool {
	for _, r := range s.records[model] {
		if toInt(r["id"]) == id {
			return true
		}
	}
	return false
}

func (s *Server) searchRead(model string, domain []any, kwargs map[string]any) []map[string]any {
	var matched []map[string]any
	for _, rec := range s.records[model] {
		if matches(rec, domain) {
			matched = append(matched, rec)
		}
	}

	if order, _ := kwargs["order"].(string); order != "" {
		field, desc := parseOrder(order)
		sort.SliceStable(matched, func(i, j int) bool {
			c := compare(matched[i][field], matched[j][field])
			if desc {
				return c > 0
			}
			return c < 0
		})
	}
	if off := int(toInt(kwargs["offset"])); off > 0 {
		if off >= len(matched) {
			matched = nil
		} else {
			matched = matched[off:]
		}
	}
	if lim := int(toInt(kwargs["limit"])); lim > 0 && len(matched) > lim {
		matched = matched[:lim]
	}

	fields := stringsOf(kwargs["fields"])
	out := make([]map[string]any, 0, len(matched))
	for _, rec := range matched {
		out = append(out, project(rec, fields))
	}
	return out
}

func matches(rec map[string]any, domain []any) bool {
	for _, term := range domain {
		t, ok := term.([]any)
		if !ok || len(t) != 3 {
			continue // "&" and friends; the fake only ANDs
		}
		field, _ := t[0].(string)
		op, _ := t[1].(string)
		if !eval(rec[field], op, t[2]) {
			return false
		}
	}
	return true
}

func eval(have any, op string, want any) bool {
	if pair, ok := have.([]any); ok && len(pair) > 0 {
		probe := want
		if list, ok := want.([]any); ok && len(list) > 0 {
			probe = list[0]
		}
		if _, isNum := probe.(float64); isNum {
			have = pair[0]
		}
	}
	switch op {
	case "=":
		return compare(have, want) == 0
	case "!=":
		return compare(have, want) != 0
	case ">=":
		return compare(have, want) >= 0
	case "<=":
		return compare(have, want) <= 0
	case ">":
		return compare(have, want) > 0
	case "<":
		return compare(have, want) < 0
	case "in":
		list, _ := want.([]any)
		for _, v := range list {
			if compare(have, v) == 0 {
				return true
			}
		}
		return false
	case "ilike":
		h, _ := have.(string)
		w, _ := want.(string)
		return strings.Contains(strings.ToLower(h), strings.ToLower(w))
	}
	return false
}

// compare orders nil/false below everything else, numbers numerically and
// everything else by string form.
func compare(a, b any) int {
	af, bf := falsy(a), falsy(b)
	switch {
	case af && bf:
		return 0
	case af:
		return -1
	case bf:
		return 1
	}
	an, aok := num(a)
	bn, bok := num(b)
	if aok && bok {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func falsy(v any) bool {
	if v == nil {
		return true
	}
	b, ok := v.(bool)
	return ok && !b
}

func num(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toInt(v any) int64 {
	n, _ := num(v)
	return int64(n)
}

func parseOrder(order string) (string, bool) {
	parts := strings.Fields(strings.Split(order, ",")[0])
	if len(parts) == 0 {
		return "id", false
	}
	return parts[0], len(parts) > 1 && strings.EqualFold(parts[1], "desc")
}

func idsArg(args []any) []int64 {
	if len(args) == 0 {
		return nil
	}
	switch v := args[0].(type) {
	case []any:
		out := make([]int64, 0, len(v))
		for _, x := range v {
			out = append(out, toInt(x))
		}
		return out
	default:
		return []int64{toInt(v)}
	}
}

func containsID(ids []int64, id int64) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func stringsOf(v any) []string {
	list, _ := v.([]any)
	out := make([]string, 0, len(list))
	for _, x := range list {
		if s, ok := x.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func project(rec map[string]any, fields []string) map[string]any {
	if len(fields) == 0 {
		return copyRecord(rec)
	}
	out := map[string]any{"id": rec["id"]}
	for _, f := range fields {
		if v, ok := rec[f]; ok {
			out[f] = v
		}
	}
	return out
}

func copyRecord(r map[string]any) map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// normalize round-trips seed values through JSON so they compare like
// decoded request values.
func normalize(r map[string]any) map[string]any {
	b, err := json.Marshal(r)
	if err != nil {
		panic(err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		panic(err)
	}
	return out
}

func nonNil(v []map[string]any) []map[string]any {
	if v == nil {
		return []map[string]any{}
	}
	return v
}

func writeResult(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": nil, "result": result})
}

func writeError(w http.ResponseWriter, name, msg string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0",
		"id":      nil,
		"error": map[string]any{
			"code":    200,
			"message": "Odoo Server Error",
			"data":    map[string]any{"name": name, "message": msg},
		},
	})
}
