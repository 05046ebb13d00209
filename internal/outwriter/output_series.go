package outwriter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/TordWessman/gitstat/internal/contract"
	"github.com/TordWessman/gitstat/internal/parquet"
	"github.com/TordWessman/gitstat/schema"
)

// WriteSeriesResults outputs a series, dispatching based on the output format configured.
func WriteSeriesResults(result schema.SeriesResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON series"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSeriesCSV(w, result)
		}, "Wrote CSV series"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteSeriesParquet(parquet.ConvertSeries(result), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet series to %s\n", cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeSeriesTable(w, result); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "Series of %d repositories over %d buckets computed in %v. Cache backend: %s\n",
				len(result.Repos), len(result.Buckets), duration.Round(time.Millisecond), cfg.CacheBackend)
			return err
		}, "Wrote table")
	}
	return nil
}
