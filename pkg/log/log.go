package log

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	motmedelContext "github.com/Motmedel/http_response/pkg/context"
	motmedelErrors "github.com/Motmedel/http_response/pkg/errors"
	motmedelStrings "github.com/Motmedel/http_response/pkg/strings"
)

const DefaultMaxInputBytes = 256

type ContextExtractor interface {
	Handle(context.Context, *slog.Record) error
}

type ContextExtractorFunction func(context.Context, *slog.Record) error

func (cef ContextExtractorFunction) Handle(ctx context.Context, record *slog.Record) error {
	return cef(ctx, record)
}

// ContextHandler runs its extractors on every record before passing it on to the next handler.
type ContextHandler struct {
	Next       slog.Handler
	Extractors []ContextExtractor
}

func (contextHandler *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return contextHandler.Next.Enabled(ctx, level)
}

func (contextHandler *ContextHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, extractor := range contextHandler.Extractors {
		if extractor != nil {
			if err := extractor.Handle(ctx, &record); err != nil {
				return fmt.Errorf("extractor handle: %w", err)
			}
		}
	}
	return contextHandler.Next.Handle(ctx, record)
}

func (contextHandler *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Next: contextHandler.Next.WithAttrs(attrs), Extractors: contextHandler.Extractors}
}

func (contextHandler *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Next: contextHandler.Next.WithGroup(name), Extractors: contextHandler.Extractors}
}

type ErrorContextExtractor struct {
	SkipCause      bool
	SkipInput      bool
	SkipStackTrace bool
	MaxInputBytes  int
}

func (extractor *ErrorContextExtractor) MakeErrorAttrs(err error) []any {
	if err == nil {
		return nil
	}

	errType := reflect.TypeOf(err).String()

	var attrs []any

	switch err.(type) {
	case *motmedelErrors.ExtendedError:
	default:
		switch errType {
		case "*errors.errorString", "*fmt.wrapError":
		default:
			attrs = append(attrs, slog.String("type", errType))
		}
	}

	if inputError, ok := err.(motmedelErrors.InputErrorI); ok && !extractor.SkipInput {
		if input := inputError.GetInput(); input != nil {
			maxInputBytes := extractor.MaxInputBytes
			if maxInputBytes == 0 {
				maxInputBytes = DefaultMaxInputBytes
			}

			textualRepresentation, err := motmedelStrings.MakeTextualRepresentation(input, maxInputBytes)
			if err == nil {
				attrs = append(
					attrs,
					slog.Group(
						"input",
						slog.String("value", textualRepresentation),
						slog.String("type", reflect.TypeOf(input).String()),
					),
				)
			}
		}
	}

	if !extractor.SkipCause {
		wrappedErrors := motmedelErrors.CollectWrappedErrors(err)
		var lastWrappedErrorAttrs []any

		for i := len(wrappedErrors) - 1; i >= 0; i-- {
			wrappedError := wrappedErrors[i]

			switch reflect.TypeOf(wrappedError).String() {
			case "*errors.joinError", "*fmt.wrapError", "*multierr.multiError":
				continue
			}

			// Only the cause part of the chain is rendered; the parent carries its own message.
			wrappedErrorAttrs := (&ErrorContextExtractor{
				SkipCause:      true,
				SkipInput:      extractor.SkipInput,
				SkipStackTrace: extractor.SkipStackTrace,
				MaxInputBytes:  extractor.MaxInputBytes,
			}).MakeErrorAttrs(wrappedError)

			if lastWrappedErrorAttrs != nil {
				wrappedErrorAttrs = append(wrappedErrorAttrs, slog.Group("cause", lastWrappedErrorAttrs...))
			}

			lastWrappedErrorAttrs = wrappedErrorAttrs
		}

		if lastWrappedErrorAttrs != nil {
			attrs = append(attrs, slog.Group("cause", lastWrappedErrorAttrs...))
		}
	}

	if codeError, ok := err.(motmedelErrors.CodeErrorI); ok {
		if code := codeError.GetCode(); code != "" {
			attrs = append(attrs, slog.String("code", code))
		}
	}

	if stackTraceError, ok := err.(motmedelErrors.StackTraceErrorI); ok && !extractor.SkipStackTrace {
		if stackTrace := stackTraceError.GetStackTrace(); stackTrace != "" {
			attrs = append(attrs, slog.String("stack_trace", stackTrace))
		}
	}

	if errorMessage := err.Error(); errorMessage != "" {
		attrs = append(attrs, slog.String("message", errorMessage))
	}

	return attrs
}

func (extractor *ErrorContextExtractor) Handle(ctx context.Context, record *slog.Record) error {
	if record == nil {
		return nil
	}

	if logErr := motmedelContext.ErrorFromContext(ctx); logErr != nil {
		record.Add(slog.Group("error", extractor.MakeErrorAttrs(logErr)...))
	}

	return nil
}

// New wraps handler so that errors attached with WithErrorContextValue end up in an "error" group.
func New(handler slog.Handler, extractors ...ContextExtractor) *slog.Logger {
	if len(extractors) == 0 {
		extractors = []ContextExtractor{&ErrorContextExtractor{}}
	}
	return slog.New(&ContextHandler{Next: handler, Extractors: extractors})
}

// Ensure returns logger unchanged if its handler already runs context extractors. Otherwise it wraps the handler
// so that errors attached with WithErrorContextValue are not lost. A nil logger means slog.Default().
func Ensure(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if _, ok := logger.Handler().(*ContextHandler); ok {
		return logger
	}
	return New(logger.Handler())
}
