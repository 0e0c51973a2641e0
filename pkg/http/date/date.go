// Package date formats and parses the fixed-width HTTP date used in Date, Expires and Last-Modified headers.
//
// Formatting is a pure function of its input, so it is safe for concurrent use without a shared formatter.
package date

import (
	"fmt"
	"time"

	motmedelErrors "github.com/Motmedel/http_response/pkg/errors"
)

// Layout renders as "Thu, 16 Mar 2000 11:00:00 GMT".
const Layout = "Mon, 02 Jan 2006 15:04:05 GMT"

func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

func FormatUnixMilli(milliseconds int64) string {
	return Format(time.UnixMilli(milliseconds))
}

func Parse(value string) (time.Time, error) {
	t, err := time.Parse(Layout, value)
	if err != nil {
		return time.Time{}, motmedelErrors.New(fmt.Errorf("time parse: %w", err), value)
	}
	return t, nil
}
