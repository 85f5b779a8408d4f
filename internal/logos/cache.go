// SPDX-License-Identifier: MIT

// Package logos keeps a local copy of station logos so the guide can point
// at files the media server reads from disk.
package logos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ManuGH/sd2xmltv/internal/fsutil"
	xglog "github.com/ManuGH/sd2xmltv/internal/log"
	"github.com/ManuGH/sd2xmltv/internal/metrics"
	"github.com/ManuGH/sd2xmltv/internal/netutil"
	"github.com/google/renameio/v2"
)

const (
	defaultTimeout = 30 * time.Second
	defaultExt     = "png"
	// maxLogoBytes bounds one download; station logos are a few KB.
	maxLogoBytes = 5 << 20
)

// Metric outcomes.
const (
	OutcomeCached     = "cached"
	OutcomeDownloaded = "downloaded"
	OutcomeFailure    = "failure"
)

var extPattern = regexp.MustCompile(`^[a-z0-9]{1,5}$`)

// Config configures a Cache.
type Config struct {
	Dir     string
	Timeout time.Duration
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Cache stores one logo per station as {Dir}/{stationID}.{ext}. Existing
// files are reused and never refreshed.
type Cache struct {
	dir    string
	client *http.Client
}

// New creates a cache rooted at cfg.Dir.
func New(cfg Config) (*Cache, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, errors.New("logo cache dir is empty")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Cache{dir: filepath.Clean(cfg.Dir), client: hc}, nil
}

// IconFor returns the local path of the station's logo, downloading it on
// first use. Failures are logged and yield "" so the channel carries no icon.
func (c *Cache) IconFor(ctx context.Context, stationID, logoURL string) string {
	logger := xglog.WithComponentFromContext(ctx, "logos")

	if err := os.MkdirAll(c.dir, 0o750); err != nil {
		metrics.RecordLogo(OutcomeFailure)
		logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "logo.failed").
			Str(xglog.FieldPath, c.dir).
			Msg("logo dir unavailable")
		return ""
	}

	local, err := c.Path(stationID, logoURL)
	if err != nil {
		metrics.RecordLogo(OutcomeFailure)
		logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "logo.failed").
			Str(xglog.FieldStationID, stationID).
			Msg("unusable logo reference")
		return ""
	}

	if fsutil.IsRegularFile(local) {
		metrics.RecordLogo(OutcomeCached)
		return local
	}

	if err := c.fetch(ctx, logoURL, local); err != nil {
		metrics.RecordLogo(OutcomeFailure)
		logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "logo.failed").
			Str(xglog.FieldStationID, stationID).
			Str(xglog.FieldURL, netutil.SanitizeURL(logoURL)).
			Msg("logo download failed")
		return ""
	}

	metrics.RecordLogo(OutcomeDownloaded)
	logger.Debug().
		Str(xglog.FieldEvent, "logo.downloaded").
		Str(xglog.FieldStationID, stationID).
		Str(xglog.FieldPath, local).
		Msg("logo cached")
	return local
}

// Path returns the cache location for a station logo. The cache directory
// must exist; the result is confined to it.
func (c *Cache) Path(stationID, logoURL string) (string, error) {
	if stationID == "" || strings.ContainsAny(stationID, `/\`) || stationID == "." || stationID == ".." {
		return "", fmt.Errorf("invalid station id %q", stationID)
	}
	return fsutil.ConfineRelPath(c.dir, stationID+"."+Extension(logoURL))
}

func (c *Cache) fetch(ctx context.Context, logoURL, dest string) error {
	u, err := netutil.ParseHTTPURL(logoURL)
	if err != nil {
		return fmt.Errorf("logo url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	pending, err := renameio.NewPendingFile(dest, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending logo file: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	n, err := io.Copy(pending, io.LimitReader(resp.Body, maxLogoBytes+1))
	if err != nil {
		return fmt.Errorf("write logo: %w", err)
	}
	if n > maxLogoBytes {
		return fmt.Errorf("logo exceeds %d bytes", maxLogoBytes)
	}
	if n == 0 {
		return errors.New("empty logo body")
	}
	return pending.CloseAtomicallyReplace()
}

// Extension infers the file extension from a logo URL: the query is
// dropped, the text after the last dot is taken and any "_suffix" is cut.
// Unusable results fall back to "png".
func Extension(logoURL string) string {
	p := logoURL
	if u, err := url.Parse(logoURL); err == nil && u.Path != "" {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	ext := strings.TrimPrefix(path.Ext(p), ".")
	if i := strings.IndexByte(ext, '_'); i >= 0 {
		ext = ext[:i]
	}
	ext = strings.ToLower(ext)
	if !extPattern.MatchString(ext) {
		return defaultExt
	}
	return ext
}
