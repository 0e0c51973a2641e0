package context

import (
	"context"
)

type errorContextType struct{}

var ErrorContextKey errorContextType

func WithErrorContextValue(ctx context.Context, err error) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ErrorContextKey, err)
}

func ErrorFromContext(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	err, _ := ctx.Value(ErrorContextKey).(error)
	return err
}
