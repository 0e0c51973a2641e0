package strings

import (
	"encoding"
	"fmt"
	"reflect"
	"time"

	motmedelErrors "github.com/Motmedel/http_response/pkg/errors"
)

// NOTE: Modelled on log/slog/text_handler.go: byteSlice

func ByteSliceFromAny(a any) ([]byte, bool) {
	if bs, ok := a.([]byte); ok {
		return bs, true
	}
	t := reflect.TypeOf(a)
	if t != nil && t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
		return reflect.ValueOf(a).Bytes(), true
	}
	return nil, false
}

// MakeTextualRepresentation renders error input for log records. Byte slices longer than maxBytes are truncated
// so that a dropped response body does not end up verbatim in the logs.
func MakeTextualRepresentation(value any, maxBytes int) (string, error) {
	switch typedValue := value.(type) {
	case string:
		return typedValue, nil
	case time.Time:
		return typedValue.Format(time.RFC3339), nil
	case fmt.Stringer:
		return typedValue.String(), nil
	default:
		if tm, ok := value.(encoding.TextMarshaler); ok {
			data, err := tm.MarshalText()
			if err != nil {
				return "", motmedelErrors.New(fmt.Errorf("marshal text: %w", err), value)
			}
			return string(data), nil
		}

		if bs, ok := ByteSliceFromAny(value); ok {
			if maxBytes > 0 && len(bs) > maxBytes {
				return fmt.Sprintf("%s... (%d bytes)", bs[:maxBytes], len(bs)), nil
			}
			return string(bs), nil
		}

		return fmt.Sprintf("%#v", value), nil
	}
}
