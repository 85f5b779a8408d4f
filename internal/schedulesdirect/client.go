// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package schedulesdirect is a small client for the Schedules Direct SD-JSON
// API (version 20141201): token, lineups, schedules and programs.
package schedulesdirect

import (
	"bytes"
	"context"
	"crypto/sha1" // #nosec G505 -- SD-JSON mandates SHA1 password digests
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	xglog "github.com/ManuGH/sd2xmltv/internal/log"
	"github.com/ManuGH/sd2xmltv/internal/metrics"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the production SD-JSON endpoint.
	DefaultBaseURL = "https://json.schedulesdirect.org/20141201"

	defaultTimeout   = 30 * time.Second
	defaultRateLimit = 5
	// maxResponseBytes bounds a single response body; a 5000 program chunk
	// is tens of megabytes.
	maxResponseBytes = 256 << 20
	maxErrorExcerpt  = 256
)

// Options configures a Client.
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// RateLimit is the request pace in requests per second.
	RateLimit float64
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client talks to one SD-JSON endpoint. It is safe for sequential use from
// one refresh run; the token is guarded for concurrent readers.
type Client struct {
	base      string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter

	mu    sync.RWMutex
	token string
}

// New creates a client. Zero option values fall back to defaults.
func New(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	rl := opts.RateLimit
	if rl <= 0 {
		rl = defaultRateLimit
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "sd2xmltv"
	}
	return &Client{
		base:      base,
		userAgent: ua,
		http:      hc,
		limiter:   rate.NewLimiter(rate.Limit(rl), 1),
	}
}

// HashPassword returns the lowercase SHA1 hex digest SD-JSON expects.
func HashPassword(password string) string {
	sum := sha1.Sum([]byte(password)) // #nosec G401
	return hex.EncodeToString(sum[:])
}

// Token returns the current session token, empty before Authenticate.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Authenticate exchanges credentials for a session token. passwordHash must
// already be the SHA1 hex digest (see HashPassword).
func (c *Client) Authenticate(ctx context.Context, username, passwordHash string) error {
	const op = "token"
	body := map[string]string{"username": username, "password": passwordHash}

	var tr TokenResponse
	if err := c.do(ctx, op, http.MethodPost, "/token", body, &tr); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (errors.Is(err, ErrUpstreamError) || errors.Is(err, ErrAuth)) {
			apiErr.Sentinel = ErrAuth
		}
		return err
	}
	if tr.Code != 0 || tr.Token == "" {
		return &APIError{Sentinel: ErrAuth, Op: op, Code: tr.Code, Message: tr.Message}
	}

	c.mu.Lock()
	c.token = tr.Token
	c.mu.Unlock()
	return nil
}

// Status fetches the account status.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var st Status
	if err := c.do(ctx, "status", http.MethodGet, "/status", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Lineups lists the lineups attached to the account.
func (c *Client) Lineups(ctx context.Context) ([]Lineup, error) {
	const op = "lineups"
	var lr lineupsResponse
	if err := c.do(ctx, op, http.MethodGet, "/lineups", nil, &lr); err != nil {
		return nil, err
	}
	if lr.Code != 0 {
		return nil, &APIError{Sentinel: ErrUpstreamError, Op: op, Code: lr.Code, Message: lr.Message}
	}
	return lr.Lineups, nil
}

// LineupDetail fetches the channel map and stations of one lineup. A body
// without a "stations" key is reported as ErrBadResponse.
func (c *Client) LineupDetail(ctx context.Context, lineupID string) (*LineupDetail, error) {
	op := "lineup " + lineupID
	var raw struct {
		Map      []ChannelMap `json:"map"`
		Stations *[]Station   `json:"stations"`
	}
	if err := c.do(ctx, op, http.MethodGet, "/lineups/"+url.PathEscape(lineupID), nil, &raw); err != nil {
		return nil, err
	}
	if raw.Stations == nil {
		return nil, &APIError{Sentinel: ErrBadResponse, Op: op, Message: `missing "stations" key`}
	}
	return &LineupDetail{Map: raw.Map, Stations: *raw.Stations}, nil
}

// Schedules fetches airings for one chunk of stations.
func (c *Client) Schedules(ctx context.Context, reqs []ScheduleRequest) ([]StationSchedule, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	var out []StationSchedule
	if err := c.do(ctx, "schedules", http.MethodPost, "/schedules", reqs, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Programs fetches program metadata for one chunk of IDs. Entries that carry
// a non-zero code (queued, unknown) are dropped.
func (c *Client) Programs(ctx context.Context, ids []string) ([]Program, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var all []Program
	if err := c.do(ctx, "programs", http.MethodPost, "/programs", ids, &all); err != nil {
		return nil, err
	}
	out := all[:0]
	dropped := 0
	for _, p := range all {
		if p.Code != 0 {
			dropped++
			continue
		}
		out = append(out, p)
	}
	if dropped > 0 {
		logger := xglog.WithComponentFromContext(ctx, "schedulesdirect")
		logger.Debug().
			Str(xglog.FieldEvent, "programs.dropped").
			Int("dropped", dropped).
			Int("requested", len(ids)).
			Msg("programs not served by upstream")
	}
	return out, nil
}

// do performs one paced JSON request and decodes the response into out.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	tok := c.Token()
	if tok == "" && op != "token" {
		return &APIError{Sentinel: ErrNoToken, Op: op}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return &APIError{Sentinel: classifyTransport(ctx, err), Op: op, Err: err}
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("token", tok)
	}

	start := time.Now()
	logger := xglog.WithComponentFromContext(ctx, "schedulesdirect")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordSDRequest(op, "error")
		return &APIError{Sentinel: classifyTransport(ctx, err), Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.RecordSDRequest(op, "error")
		return &APIError{Sentinel: classifyTransport(ctx, err), Op: op, Status: resp.StatusCode, Err: err}
	}

	logger.Debug().
		Str(xglog.FieldEvent, "sd.request").
		Str("op", op).
		Int("status", resp.StatusCode).
		Int("bytes", len(data)).
		Dur("duration", time.Since(start)).
		Msg("schedules direct request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordSDRequest(op, "http_"+strconv.Itoa(resp.StatusCode))
		return statusError(op, resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		metrics.RecordSDRequest(op, "error")
		return &APIError{Sentinel: ErrBadResponse, Op: op, Status: resp.StatusCode, Err: err}
	}
	metrics.RecordSDRequest(op, "success")
	return nil
}

func statusError(op string, status int, data []byte) *APIError {
	e := &APIError{Sentinel: ErrUpstreamError, Op: op, Status: status}
	var body apiErrorBody
	if json.Unmarshal(data, &body) == nil && (body.Code != 0 || body.Message != "") {
		e.Code = body.Code
		e.Message = body.Message
	} else {
		e.Message = excerpt(data)
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden || isAuthCode(e.Code) {
		e.Sentinel = ErrAuth
	}
	return e
}

// isAuthCode reports SD response codes of the 40xx account/token family.
func isAuthCode(code int) bool {
	return code >= 4001 && code <= 4009
}

func classifyTransport(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return ErrUnavailable
}

func excerpt(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > maxErrorExcerpt {
		s = s[:maxErrorExcerpt] + "..."
	}
	return s
}
