package caching

import (
	"fmt"

	motmedelErrors "github.com/Motmedel/http_response/pkg/errors"
	"github.com/Motmedel/http_response/pkg/http/date"
)

func IfNoneMatchCacheHit(ifNoneMatchValue string, etag string) bool {
	if ifNoneMatchValue == "" || etag == "" {
		return false
	}

	return ifNoneMatchValue == etag
}

// IfModifiedSinceCacheHit reports whether a resource last modified at lastModifiedValue is unchanged since
// ifModifiedSinceValue. Both values are HTTP dates as produced by date.Format.
func IfModifiedSinceCacheHit(ifModifiedSinceValue string, lastModifiedValue string) (bool, error) {
	if ifModifiedSinceValue == "" || lastModifiedValue == "" {
		return false, nil
	}

	ifModifiedSinceTimestamp, err := date.Parse(ifModifiedSinceValue)
	if err != nil {
		return false, motmedelErrors.New(
			fmt.Errorf("date parse (If-Modified-Since): %w", err),
			ifModifiedSinceValue,
		)
	}

	lastModifiedTimestamp, err := date.Parse(lastModifiedValue)
	if err != nil {
		return false, motmedelErrors.New(
			fmt.Errorf("date parse (Last-Modified): %w", err),
			lastModifiedValue,
		)
	}

	return !lastModifiedTimestamp.After(ifModifiedSinceTimestamp), nil
}
