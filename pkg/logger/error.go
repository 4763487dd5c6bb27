package logger

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors/errbase"
	"github.com/gaze-network/drop-offerer/pkg/logger/slogx"
)

// errorAttrReplacer renders error values with their message only; the verbose
// form is attached separately by the stack trace middleware.
func errorAttrReplacer(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) != 0 || attr.Key != ErrorKey {
		return attr
	}
	if err, ok := attr.Value.Any().(error); ok && err != nil {
		return slog.String(ErrorKey, err.Error())
	}
	return attr
}

func durationToMsAttrReplacer(groups []string, attr slog.Attr) slog.Attr {
	if attr.Value.Kind() == slog.KindDuration {
		return slog.Int64(attr.Key, attr.Value.Duration().Milliseconds())
	}
	return attr
}

func middlewareErrorStackTrace() middleware {
	return func(next handleFunc) handleFunc {
		return func(ctx context.Context, rec slog.Record) error {
			rec.Attrs(func(attr slog.Attr) bool {
				if attr.Key != slogx.ErrorKey && attr.Key != "err" {
					return true
				}
				if err, ok := attr.Value.Any().(error); ok && err != nil {
					rec.AddAttrs(slog.String(ErrorVerboseKey, fmt.Sprintf("%+v", err)))
					if x, ok := err.(errbase.StackTraceProvider); ok {
						rec.AddAttrs(slog.Any(ErrorStackTraceKey, traceLines(x.StackTrace())))
					}
				}
				return false
			})
			return next(ctx, rec)
		}
	}
}

func traceLines(frames errbase.StackTrace) []string {
	lines := make([]string, 0, len(frames))

	// walk bottom-up to drop consecutive runtime frames
	skipping := true
	for i := len(frames) - 1; i >= 0; i-- {
		pc := uintptr(frames[i]) - 1
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			lines = append(lines, "unknown")
			skipping = false
			continue
		}

		name := fn.Name()
		if skipping && strings.HasPrefix(name, "runtime.") {
			continue
		}
		skipping = false

		filename, lineNr := fn.FileLine(pc)
		lines = append(lines, fmt.Sprintf("%s %s:%d", name, filename, lineNr))
	}
	return lines[:len(lines):len(lines)]
}
