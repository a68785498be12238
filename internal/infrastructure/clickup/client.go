// Package clickup implements workspace.Repository over the ClickUp REST API v2.
package clickup

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"clickup-mcp/internal/domain/workspace"
)

// DefaultBaseURL is the public ClickUp API v2 endpoint.
const DefaultBaseURL = "https://api.clickup.com/api/v2"

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// RequestObserver receives one call per completed HTTP exchange.
// status is 0 when no response was received.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, duration time.Duration)
}

// Options configures a Client.
type Options struct {
	BaseURL string
	// APIKey is a personal token (pk_...), sent verbatim in Authorization.
	APIKey string
	// AccessToken is an OAuth token; it takes precedence over APIKey.
	AccessToken string
	// TeamID is required for custom task ID lookups.
	TeamID  string
	Timeout time.Duration
	// RateLimit is the request budget per minute; 0 disables limiting.
	RateLimit int
	// Transport is the base round tripper; nil means http.DefaultTransport.
	Transport http.RoundTripper
	Observer  RequestObserver
	Logger    *slog.Logger
}

// Client is a ClickUp API client. It is safe for concurrent use; all
// goroutines share one rate limiter.
type Client struct {
	baseURL  string
	apiKey   string
	teamID   string
	http     *http.Client
	limiter  *rate.Limiter
	observer RequestObserver
	logger   *slog.Logger
}

// New creates a Client.
func New(opts Options) (*Client, error) {
	if opts.APIKey == "" && opts.AccessToken == "" {
		return nil, errors.New("clickup: an API key or access token is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, errors.Wrap(err, "clickup: parse base URL")
	}

	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	var transport http.RoundTripper = otelhttp.NewTransport(base)
	apiKey := opts.APIKey
	if opts.AccessToken != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.AccessToken, TokenType: "Bearer"}),
			Base:   transport,
		}
		apiKey = ""
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		burst := opts.RateLimit / 10
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(float64(opts.RateLimit)/60), burst)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		teamID:   opts.TeamID,
		http:     &http.Client{Transport: transport, Timeout: opts.Timeout},
		limiter:  limiter,
		observer: opts.Observer,
		logger:   logger,
	}, nil
}

// request describes one API call. route is the path template used for
// metrics, e.g. "/task/{id}".
type request struct {
	method string
	route  string
	path   string
	query  url.Values
	body   any
}

// do sends req and decodes a JSON response into out when out is not nil.
func (c *Client) do(ctx context.Context, req request, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limiter")
	}

	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return errors.Wrap(err, "marshal request body")
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.observe(req, 0, start)
		return errors.Wrapf(err, "%s %s", req.method, req.route)
	}
	defer resp.Body.Close()
	c.observe(req, resp.StatusCode, start)

	c.logger.Debug("clickup request",
		"method", req.method,
		"route", req.route,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return decodeAPIError(resp.StatusCode, req.method, req.path, raw)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrapf(err, "decode %s %s response", req.method, req.route)
	}
	return nil
}

func (c *Client) observe(req request, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveRequest(req.method, req.route, status, time.Since(start))
	}
}

// decodeAPIError builds an APIError from a ClickUp error body of the form
// {"err": "...", "ECODE": "..."}, falling back to the raw body text.
func decodeAPIError(status int, method, path string, raw []byte) *workspace.APIError {
	apiErr := &workspace.APIError{StatusCode: status, Method: method, Path: path}

	d := jx.DecodeBytes(raw)
	if d.Next() == jx.Object {
		_ = d.ObjBytes(func(d *jx.Decoder, key []byte) error {
			switch string(key) {
			case "err":
				if d.Next() != jx.String {
					return d.Skip()
				}
				s, err := d.Str()
				apiErr.Message = s
				return err
			case "ECODE":
				if d.Next() != jx.String {
					return d.Skip()
				}
				s, err := d.Str()
				apiErr.Code = s
				return err
			default:
				return d.Skip()
			}
		})
	}

	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// customIDQuery adds the parameters ClickUp needs to treat a path ID as a
// custom task ID.
func (c *Client) customIDQuery(target workspace.TaskTarget, q url.Values) url.Values {
	if q == nil {
		q = url.Values{}
	}
	if target.Custom {
		q.Set("custom_task_ids", "true")
		q.Set("team_id", c.teamID)
	}
	return q
}

var _ workspace.Repository = (*Client)(nil)
