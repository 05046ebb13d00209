package iocache

import (
	"fmt"

	"github.com/TordWessman/gitstat/schema"
	"github.com/dustin/go-humanize"
)

// PrintCacheStatus prints cache status information.
func PrintCacheStatus(status schema.CacheStatus) {
	fmt.Printf("Cache Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	if status.SchemaVersion > 0 {
		fmt.Printf("Schema Version: %d\n", status.SchemaVersion)
	}
	fmt.Printf("Repositories: %s (%s synced)\n", humanize.Comma(int64(status.TotalRepos)), humanize.Comma(int64(status.SyncedRepos)))
	fmt.Printf("Total Commits: %s\n", humanize.Comma(int64(status.TotalCommits)))
	if status.TotalCommits > 0 {
		fmt.Printf("Newest Commit: %s (%s)\n", status.NewestCommitTime.Format("2006-01-02 15:04:05"), humanize.Time(status.NewestCommitTime))
		fmt.Printf("Oldest Commit: %s (%s)\n", status.OldestCommitTime.Format("2006-01-02 15:04:05"), humanize.Time(status.OldestCommitTime))
	}
	fmt.Printf("Table Size: %s\n", humanize.Bytes(uint64(max(status.TableSizeBytes, 0))))
}
