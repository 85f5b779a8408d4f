// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package notify asks the media server to re-import the guide after a run.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	xglog "github.com/ManuGH/sd2xmltv/internal/log"
	"github.com/ManuGH/sd2xmltv/internal/metrics"
	"github.com/ManuGH/sd2xmltv/internal/netutil"
)

const (
	// DefaultTaskKey is the Jellyfin scheduled task that refreshes the guide.
	DefaultTaskKey = "RefreshGuide"

	defaultTimeout = 10 * time.Second
	maxTasksBytes  = 4 << 20
	tokenHeader    = "X-Emby-Token"
)

// ErrTaskNotFound is returned when no scheduled task carries the key.
var ErrTaskNotFound = errors.New("scheduled task not found")

// Config configures a Jellyfin notifier.
type Config struct {
	URL     string
	APIKey  string
	TaskKey string
	Timeout time.Duration
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// ScheduledTask is the subset of a Jellyfin task we read.
type ScheduledTask struct {
	ID    string `json:"Id"`
	Key   string `json:"Key"`
	Name  string `json:"Name"`
	State string `json:"State"`
}

// Jellyfin triggers a scheduled task through the Jellyfin REST API.
type Jellyfin struct {
	base    string
	apiKey  string
	taskKey string
	client  *http.Client
}

// NewJellyfin creates a notifier.
func NewJellyfin(cfg Config) (*Jellyfin, error) {
	u, err := netutil.ParseHTTPURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("jellyfin: %w", err)
	}
	u.RawQuery = ""
	base := strings.TrimRight(u.String(), "/")
	if cfg.APIKey == "" {
		return nil, errors.New("jellyfin api key is empty")
	}
	taskKey := cfg.TaskKey
	if taskKey == "" {
		taskKey = DefaultTaskKey
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Jellyfin{base: base, apiKey: cfg.APIKey, taskKey: taskKey, client: hc}, nil
}

// Notify finds the configured task and starts it.
func (j *Jellyfin) Notify(ctx context.Context) error {
	logger := xglog.WithComponentFromContext(ctx, "notify")

	err := j.trigger(ctx)
	metrics.RecordNotify(err == nil)
	if err != nil {
		return err
	}
	logger.Info().
		Str(xglog.FieldEvent, "notify.triggered").
		Str("task_key", j.taskKey).
		Msg("media server guide refresh triggered")
	return nil
}

func (j *Jellyfin) trigger(ctx context.Context) error {
	tasks, err := j.Tasks(ctx)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if t.Key == j.taskKey {
			return j.run(ctx, t.ID)
		}
	}
	return fmt.Errorf("%w: %s", ErrTaskNotFound, j.taskKey)
}

// Tasks lists the scheduled tasks of the server.
func (j *Jellyfin) Tasks(ctx context.Context) ([]ScheduledTask, error) {
	resp, err := j.send(ctx, http.MethodGet, "/ScheduledTasks")
	if err != nil {
		return nil, fmt.Errorf("list scheduled tasks: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var tasks []ScheduledTask
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxTasksBytes)).Decode(&tasks); err != nil {
		return nil, fmt.Errorf("decode scheduled tasks: %w", err)
	}
	return tasks, nil
}

func (j *Jellyfin) run(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("task %s has no id", j.taskKey)
	}
	resp, err := j.send(ctx, http.MethodPost, "/ScheduledTasks/Running/"+url.PathEscape(id))
	if err != nil {
		return fmt.Errorf("start task %s: %w", j.taskKey, err)
	}
	_ = resp.Body.Close()
	return nil
}

// send performs the request and returns the response for 2xx statuses.
func (j *Jellyfin) send(ctx context.Context, method, p string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, j.base+p, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(tokenHeader, j.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := j.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp, nil
}
