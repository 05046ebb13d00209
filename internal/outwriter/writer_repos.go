package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/TordWessman/gitstat/internal/contract"
	"github.com/TordWessman/gitstat/schema"
)

func writeReposCSV(w io.Writer, repos []schema.RepoMeta) error {
	header := []string{"tag", "name", "url", "default_branch", "is_cloned", "failed", "last_commit_hash"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range repos {
			row := []string{
				r.Tag,
				r.Name,
				r.URL,
				r.DefaultBranch,
				strconv.FormatBool(r.IsCloned),
				strconv.Itoa(r.Failed),
				r.LastCommitHash,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeReposTable(w io.Writer, repos []schema.RepoMeta, urlWidth int) error {
	headers := []string{"Tag", "Name", "Branch", "Cloned", "Failed", "Cursor", "URL"}
	data := make([][]string, 0, len(repos))
	for _, r := range repos {
		cursor := contract.ShortHash(r.LastCommitHash)
		if cursor == "" {
			cursor = "-"
		}
		data = append(data, []string{
			r.Tag,
			r.Name,
			r.DefaultBranch,
			strconv.FormatBool(r.IsCloned),
			strconv.Itoa(r.Failed),
			cursor,
			contract.TruncateText(r.URL, urlWidth),
		})
	}
	return writeTable(w, headers, data)
}
