// Package callrail provides token-authenticated access to the CallRail v3
// calls API.
package callrail

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.callrail.com/v3"
	defaultPerPage = 100

	// TimeLayout is the timestamp format the API accepts for date filters.
	TimeLayout = "2006-01-02T15:04:05Z"
)

// Field sets requested from the calls endpoint.
var (
	SyncFields = []string{"source", "campaign", "landing_page_url", "customer_phone_number", "medium"}

	ExportFields = []string{
		"answered", "tracking_phone_number", "source", "start_time", "duration",
		"customer_name", "customer_phone_number", "customer_city", "customer_state",
		"customer_country", "device_type", "keywords", "referrer_domain", "medium",
		"landing_page_url", "campaign", "value", "recording", "agent_email",
		"first_call", "note",
	}
)

// Client defines the CallRail operations used by the jobs.
type Client interface {
	ListCalls(ctx context.Context, q CallQuery) ([]Call, error)
}

// CallQuery selects calls whose start time falls in [Start, End].
type CallQuery struct {
	Start   time.Time
	End     time.Time
	Fields  []string
	PerPage int
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets a per-second rate limit for page requests.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

type httpClient struct {
	apiKey    string
	accountID string
	baseURL   string
	http      *http.Client
	limiter   *rate.Limiter
}

// NewClient creates a CallRail client for one account.
func NewClient(apiKey, accountID string, opts ...Option) Client {
	c := &httpClient{
		apiKey:    apiKey,
		accountID: accountID,
		baseURL:   defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type listParams struct {
	StartDate string `url:"start_date"`
	EndDate   string `url:"end_date"`
	Fields    string `url:"fields,omitempty"`
	PerPage   int    `url:"per_page"`
	Page      int    `url:"page"`
}

type listResponse struct {
	Page       int    `json:"page"`
	PerPage    int    `json:"per_page"`
	TotalPages int    `json:"total_pages"`
	TotalCount int    `json:"total_records"`
	Calls      []Call `json:"calls"`
}

// ListCalls fetches every page of calls in the window.
func (c *httpClient) ListCalls(ctx context.Context, q CallQuery) ([]Call, error) {
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	params := listParams{
		StartDate: q.Start.UTC().Format(TimeLayout),
		EndDate:   q.End.UTC().Format(TimeLayout),
		Fields:    strings.Join(q.Fields, ","),
		PerPage:   perPage,
	}

	calls := []Call{}
	for page := 1; ; page++ {
		params.Page = page
		resp, err := c.listPage(ctx, params)
		if err != nil {
			return nil, err
		}
		calls = append(calls, resp.Calls...)

		if len(resp.Calls) == 0 {
			break
		}
		if resp.TotalPages > 0 {
			if page >= resp.TotalPages {
				break
			}
		} else if len(resp.Calls) < perPage {
			break
		}
	}
	return calls, nil
}

func (c *httpClient) listPage(ctx context.Context, params listParams) (*listResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "callrail: rate limit")
		}
	}

	v, err := query.Values(params)
	if err != nil {
		return nil, eris.Wrap(err, "callrail: encode query")
	}
	u := fmt.Sprintf("%s/a/%s/calls.json?%s", c.baseURL, c.accountID, v.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, eris.Wrap(err, "callrail: create request")
	}
	req.Header.Set("Authorization", "Token token="+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "callrail: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "callrail: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body), Page: params.Page}
	}

	var out listResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrap(err, "callrail: unmarshal response")
	}
	return &out, nil
}

// StatusError is returned for non-200 responses.
type StatusError struct {
	Code int
	Body string
	Page int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("callrail: unexpected status %d on page %d: %s", e.Code, e.Page, e.Body)
}
