// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ManuGH/sd2xmltv/internal/epg"
	xglog "github.com/ManuGH/sd2xmltv/internal/log"
	"github.com/google/renameio/v2"
)

// writeXMLTV writes the guide with full durability guarantees using renameio.
// Readers see either the previous file or the complete new one.
func writeXMLTV(ctx context.Context, path string, tv *epg.TV) error {
	logger := xglog.FromContext(ctx)

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// renameio handles: temp file creation, fsync, atomic rename, cleanup on error
	pendingFile, err := renameio.NewPendingFile(path,
		renameio.WithPermissions(0o644),
		renameio.WithExistingPermissions(),
	)
	if err != nil {
		return fmt.Errorf("create pending XMLTV file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending XMLTV file")
		}
	}()

	if err := epg.Encode(pendingFile, tv); err != nil {
		return fmt.Errorf("write XMLTV data: %w", err)
	}

	// CloseAtomicallyReplace: fsync + rename (durable + atomic)
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace XMLTV file: %w", err)
	}
	return nil
}
