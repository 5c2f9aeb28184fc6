package model

import "time"

// FormatUTC renders a unix timestamp as RFC3339 in UTC.
func FormatUTC(ts uint64) string {
	return time.Unix(int64(ts), 0).UTC().Format(time.RFC3339)
}
