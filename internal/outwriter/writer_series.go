package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/TordWessman/gitstat/internal/contract"
	"github.com/TordWessman/gitstat/schema"
	"github.com/dustin/go-humanize"
)

// writeSeriesCSV writes one row per bucket in ascending time order.
func writeSeriesCSV(w io.Writer, result schema.SeriesResult) error {
	header := []string{"tag", "bucket_end", "period_seconds", "commits", "insertions", "deletions", "changes"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		period := strconv.FormatInt(result.Period, 10)
		for _, b := range result.Buckets {
			row := []string{
				result.Tag,
				b.Time().Format(contract.DateTimeFormat),
				period,
				strconv.Itoa(b.CommitCount),
				strconv.Itoa(b.Insertions),
				strconv.Itoa(b.Deletions),
				strconv.Itoa(b.ChangeCount()),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeSeriesTable prints the buckets followed by a totals row.
func writeSeriesTable(w io.Writer, result schema.SeriesResult) error {
	headers := []string{"Bucket End", "Commits", "Insertions", "Deletions", "Changes"}

	var total schema.Bucket
	data := make([][]string, 0, len(result.Buckets)+1)
	for _, b := range result.Buckets {
		total.Add(b.CommitCount, b.Insertions, b.Deletions)
		data = append(data, bucketRow(b.Time().Format(contract.DateTimeFormat), b))
	}
	data = append(data, bucketRow("Total ("+formatPeriod(result.Period)+")", total))

	return writeTable(w, headers, data)
}

func bucketRow(label string, b schema.Bucket) []string {
	return []string{
		label,
		humanize.Comma(int64(b.CommitCount)),
		humanize.Comma(int64(b.Insertions)),
		humanize.Comma(int64(b.Deletions)),
		humanize.Comma(int64(b.ChangeCount())),
	}
}

// formatPeriod renders a bucket width in seconds as a Go duration.
func formatPeriod(seconds int64) string {
	return (time.Duration(seconds) * time.Second).String()
}
