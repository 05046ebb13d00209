package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/TordWessman/gitstat/internal/contract"
	"github.com/TordWessman/gitstat/schema"
)

func writeSyncCSV(w io.Writer, reports []schema.SyncReport) error {
	header := []string{"tag", "repo", "parsed", "stored", "cursor", "duration_ms", "error"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range reports {
			errText := ""
			if r.Err != nil {
				errText = r.Err.Error()
			}
			row := []string{
				r.Tag,
				r.Repo,
				strconv.Itoa(r.Parsed),
				strconv.Itoa(r.Stored),
				r.Cursor,
				strconv.FormatInt(r.Duration.Milliseconds(), 10),
				errText,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeSyncTable(w io.Writer, reports []schema.SyncReport, useColors bool, statusWidth int) error {
	headers := []string{"Tag", "Repo", "Parsed", "Stored", "Cursor", "Took", "Status"}
	data := make([][]string, 0, len(reports))
	for _, r := range reports {
		cursor := contract.ShortHash(r.Cursor)
		if cursor == "" {
			cursor = "-"
		}
		data = append(data, []string{
			r.Tag,
			r.Repo,
			strconv.Itoa(r.Parsed),
			strconv.Itoa(r.Stored),
			cursor,
			r.Duration.Round(time.Millisecond).String(),
			statusLabel(r, useColors, statusWidth),
		})
	}
	return writeTable(w, headers, data)
}
