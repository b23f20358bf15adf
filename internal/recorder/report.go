// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package recorder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	xglog "github.com/ManuGH/trackrec/internal/log"
)

// ReportFileName is written into the output directory after a run.
const ReportFileName = "report.json"

// PrepareOutputDir creates dir (and parents) with 0755.
func PrepareOutputDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}
	return nil
}

// WriteReport atomically replaces dir/report.json with r.
func WriteReport(dir string, r Report) (string, error) {
	path := filepath.Join(dir, ReportFileName)
	logger := xglog.WithComponent("recorder")

	pendingFile, err := renameio.NewPendingFile(path)
	if err != nil {
		return "", fmt.Errorf("create pending report: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending report")
		}
	}()

	enc := json.NewEncoder(pendingFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return "", fmt.Errorf("atomically replace report: %w", err)
	}
	return path, nil
}
