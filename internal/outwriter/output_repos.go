package outwriter

import (
	"fmt"
	"io"

	"github.com/TordWessman/gitstat/internal/contract"
	"github.com/TordWessman/gitstat/schema"
)

// WriteRepoResults outputs repository metadata, dispatching based on the output format configured.
func WriteRepoResults(repos []schema.RepoMeta, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, repos)
		}, "Wrote JSON repositories"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReposCSV(w, repos)
		}, "Wrote CSV repositories"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is only available for stats and cache export")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReposTable(w, repos, GetMaxTableTextWidth(cfg, 70))
		}, "Wrote table")
	}
	return nil
}
