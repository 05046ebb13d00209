package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/TordWessman/gitstat/internal/contract"
	"github.com/TordWessman/gitstat/schema"
	"github.com/fatih/color"
)

// syncResult is the serialized form of a report; the error becomes text.
type syncResult struct {
	schema.SyncReport
	Error string `json:"error,omitempty"`
}

// WriteSyncResults outputs the per-repository outcome of a sync.
func WriteSyncResults(reports []schema.SyncReport, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		results := make([]syncResult, len(reports))
		for i, r := range reports {
			results[i] = syncResult{SyncReport: r}
			if r.Err != nil {
				results[i].Error = r.Err.Error()
			}
		}
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, results)
		}, "Wrote JSON sync report"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSyncCSV(w, reports)
		}, "Wrote CSV sync report"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is only available for stats and cache export")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeSyncTable(w, reports, cfg.UseColors, GetMaxTableTextWidth(cfg, 60)); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "Synced %d repositories in %v with %d workers. Cache backend: %s\n",
				len(reports), duration.Round(time.Millisecond), cfg.Workers, cfg.CacheBackend)
			return err
		}, "Wrote table")
	}
	return nil
}

// statusLabel returns the status column text, colored when enabled.
func statusLabel(r schema.SyncReport, useColors bool, width int) string {
	if r.Err == nil {
		if useColors {
			return color.GreenString("ok")
		}
		return "ok"
	}
	msg := contract.TruncateText(r.Err.Error(), width)
	if useColors {
		return color.RedString(msg)
	}
	return msg
}
