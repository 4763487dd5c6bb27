// nolint: sloglint
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// DefaultLevel is the minimum reporting level before Init is called.
const DefaultLevel = slog.LevelDebug

var (
	lvl = new(slog.LevelVar)

	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: levelAttrReplacer,
	}))
)

func init() {
	lvl.Set(DefaultLevel)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(slog.LevelDebug)
}

// Config is the logger configuration.
type Config struct {
	// Output is the logger output format.
	// Possible values:
	//  - Text (default)
	//  - JSON
	//  - GCP: Output format for Cloud Logging.
	Output string `mapstructure:"output" env:"OUTPUT" envDefault:"text"`

	// Debug enables debug level, source locations and error stack traces.
	Debug bool `mapstructure:"debug" env:"DEBUG" envDefault:"false"`
}

// Init initializes the global logger and the default slog logger.
func Init(cfg Config) error {
	return initWithWriter(cfg, os.Stdout)
}

func initWithWriter(cfg Config, w io.Writer) error {
	options := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: attrReplacerChain(
			levelAttrReplacer,
			errorAttrReplacer,
			durationToMsAttrReplacer,
		),
	}
	var middlewares []middleware

	lvl.Set(slog.LevelInfo)
	if cfg.Debug {
		lvl.Set(slog.LevelDebug)
		options.AddSource = true
		middlewares = append(middlewares, middlewareErrorStackTrace())
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Output) {
	case "json":
		handler = slog.NewJSONHandler(w, options)
	case "gcp":
		handler = NewGCPHandler(w, options)
	case "text", "":
		handler = slog.NewTextHandler(w, options)
	default:
		return errors.Errorf("unsupported logger output %q", cfg.Output)
	}

	logger = slog.New(newChainHandlers(handler, middlewares...))
	slog.SetDefault(logger)
	return nil
}

// SetLevel sets the minimum reporting level and returns the previous one.
func SetLevel(level slog.Level) (old slog.Level) {
	old = lvl.Level()
	lvl.Set(level)
	return old
}

// With returns a Logger that includes the given attributes in each output operation.
func With(args ...any) *slog.Logger {
	return logger.With(args...)
}

// WithGroup returns a Logger that qualifies all attribute keys with the given group name.
func WithGroup(group string) *slog.Logger {
	return logger.WithGroup(group)
}

func Debug(msg string, args ...any) {
	log(context.Background(), logger, slog.LevelDebug, msg, args...)
}

func Info(msg string, args ...any) {
	log(context.Background(), logger, slog.LevelInfo, msg, args...)
}

func Warn(msg string, args ...any) {
	log(context.Background(), logger, slog.LevelWarn, msg, args...)
}

func Error(msg string, args ...any) {
	log(context.Background(), logger, slog.LevelError, msg, args...)
}

// Panic logs at [LevelPanic] and then panics.
func Panic(msg string, args ...any) {
	log(context.Background(), logger, LevelPanic, msg, args...)
	panic(msg)
}

// Fatal logs at [LevelFatal] followed by a call to [os.Exit](1).
func Fatal(msg string, args ...any) {
	log(context.Background(), logger, LevelFatal, msg, args...)
	os.Exit(1)
}

// LogAttrs is a more efficient version of [Log] that accepts only Attrs.
func LogAttrs(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	logAttrs(ctx, FromContext(ctx), level, msg, attrs...)
}

func attrReplacerChain(replacers ...func([]string, slog.Attr) slog.Attr) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, attr slog.Attr) slog.Attr {
		for _, replacer := range replacers {
			if replacer == nil {
				continue
			}
			attr = replacer(groups, attr)
		}
		return attr
	}
}

// log must always be called directly by an exported logging function,
// it uses a fixed call depth to obtain the pc.
func log(ctx context.Context, l *slog.Logger, level slog.Level, msg string, args ...any) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.Enabled(ctx, level) {
		return
	}

	var pcs [1]uintptr
	// skip [runtime.Callers, this function, this function's caller]
	runtime.Callers(3, pcs[:])

	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = l.Handler().Handle(ctx, r)
}

func logAttrs(ctx context.Context, l *slog.Logger, level slog.Level, msg string, attrs ...slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.Enabled(ctx, level) {
		return
	}

	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])

	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.AddAttrs(attrs...)
	_ = l.Handler().Handle(ctx, r)
}
