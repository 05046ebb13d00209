package parse

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts are tried in order after whitespace has been collapsed.
var dateLayouts = []string{
	"Mon Jan 2 15:04:05 2006 -0700", // git default
	"Mon, 2 Jan 2006 15:04:05 -0700", // --date=rfc2822
	time.RFC1123Z,
	time.RFC3339,                // --date=iso-strict
	"2006-01-02 15:04:05 -0700", // --date=iso
	"2006-01-02 15:04:05",
}

// parseDate converts a log date into epoch seconds.
func parseDate(s string) (int64, error) {
	s = strings.Join(strings.Fields(s), " ")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("unrecognized date %q", s)
}
