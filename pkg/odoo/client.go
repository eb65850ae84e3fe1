// Package odoo provides session-authenticated JSON-RPC access to an Odoo
// instance.
package odoo

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the Odoo operations used by the jobs.
type Client interface {
	Authenticate(ctx context.Context) (int64, error)
	CallKW(ctx context.Context, model, method string, args []any, kwargs map[string]any, out any) error
	SearchRead(ctx context.Context, model string, domain Domain, opts SearchReadOptions, out any) error
	Read(ctx context.Context, model string, ids []int64, fields []string, out any) error
	Create(ctx context.Context, model string, values map[string]any) (int64, error)
	Write(ctx context.Context, model string, ids []int64, values map[string]any) error
}

// Credentials identify an Odoo user on one database.
type Credentials struct {
	DB       string
	Login    string
	Password string
}

// SearchReadOptions are the keyword arguments accepted by search_read.
// A zero Limit means no limit.
type SearchReadOptions struct {
	Fields []string
	Limit  int
	Offset int
	Order  string
}

func (o SearchReadOptions) kwargs() map[string]any {
	kw := map[string]any{}
	if len(o.Fields) > 0 {
		kw["fields"] = o.Fields
	}
	if o.Limit > 0 {
		kw["limit"] = o.Limit
	}
	if o.Offset > 0 {
		kw["offset"] = o.Offset
	}
	if o.Order != "" {
		kw["order"] = o.Order
	}
	return kw
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client. A cookie jar is
// attached when the client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets a per-second rate limit for RPC calls.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

type httpClient struct {
	baseURL string
	creds   Credentials
	http    *http.Client
	limiter *rate.Limiter
	seq     atomic.Int64
	uid     int64
}

// NewClient creates an Odoo client for the instance at baseURL.
// Authenticate must succeed before any model call.
func NewClient(baseURL string, creds Credentials, opts ...Option) Client {
	c := &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	if c.http.Jar == nil {
		jar, _ := cookiejar.New(nil)
		c.http.Jar = jar
	}
	return c
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	ID      int64  `json:"id"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *Error          `json:"error"`
}

type authParams struct {
	DB       string `json:"db"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

type authResult struct {
	UID      json.RawMessage `json:"uid"`
	Username string          `json:"username"`
}

type callParams struct {
	Model  string         `json:"model"`
	Method string         `json:"method"`
	Args   []any          `json:"args"`
	Kwargs map[string]any `json:"kwargs"`
}

func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// post sends one JSON-RPC envelope and returns the raw result.
func (c *httpClient) post(ctx context.Context, path string, params any) (json.RawMessage, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "odoo: rate limit")
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		ID:      c.seq.Add(1),
		Params:  params,
	})
	if err != nil {
		return nil, eris.Wrap(err, "odoo: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "odoo: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "odoo: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "odoo: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	var out rpcResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, eris.Wrap(err, "odoo: unmarshal response")
	}
	if out.Error != nil {
		return nil, out.Error
	}
	if isFalsy(out.Result) {
		return nil, ErrFalsyResult
	}
	return out.Result, nil
}

func (c *httpClient) Authenticate(ctx context.Context) (int64, error) {
	raw, err := c.post(ctx, "/web/session/authenticate", authParams{
		DB:       c.creds.DB,
		Login:    c.creds.Login,
		Password: c.creds.Password,
	})
	if err != nil {
		return 0, eris.Wrap(ErrAuth, err.Error())
	}

	var res authResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return 0, eris.Wrap(err, "odoo: unmarshal session")
	}
	var uid int64
	if isFalsy(res.UID) || json.Unmarshal(res.UID, &uid) != nil || uid == 0 {
		return 0, eris.Wrap(ErrAuth, "odoo: no uid in session")
	}
	c.uid = uid
	return uid, nil
}

func (c *httpClient) CallKW(ctx context.Context, model, method string, args []any, kwargs map[string]any, out any) error {
	if args == nil {
		args = []any{}
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}

	raw, err := c.post(ctx, "/web/dataset/call_kw/"+model+"/"+method, callParams{
		Model:  model,
		Method: method,
		Args:   args,
		Kwargs: kwargs,
	})
	if err != nil {
		return eris.Wrapf(err, "odoo: %s.%s", model, method)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return eris.Wrapf(err, "odoo: decode %s.%s result", model, method)
	}
	return nil
}

func (c *httpClient) SearchRead(ctx context.Context, model string, domain Domain, opts SearchReadOptions, out any) error {
	if domain == nil {
		domain = Domain{}
	}
	return c.CallKW(ctx, model, "search_read", []any{domain}, opts.kwargs(), out)
}

func (c *httpClient) Read(ctx context.Context, model string, ids []int64, fields []string, out any) error {
	kw := map[string]any{}
	if len(fields) > 0 {
		kw["fields"] = fields
	}
	return c.CallKW(ctx, model, "read", []any{ids}, kw, out)
}

func (c *httpClient) Create(ctx context.Context, model string, values map[string]any) (int64, error) {
	var id int64
	if err := c.CallKW(ctx, model, "create", []any{values}, nil, &id); err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, eris.Wrapf(ErrFalsyResult, "odoo: %s.create", model)
	}
	return id, nil
}

func (c *httpClient) Write(ctx context.Context, model string, ids []int64, values map[string]any) error {
	var ok bool
	if err := c.CallKW(ctx, model, "write", []any{ids, values}, nil, &ok); err != nil {
		return err
	}
	if !ok {
		return eris.Wrapf(ErrFalsyResult, "odoo: %s.write", model)
	}
	return nil
}

// isFalsy reports whether a JSON-RPC result is absent, null or false.
// An empty list is a valid search result and is not falsy here.
func isFalsy(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null" || s == "false"
}
