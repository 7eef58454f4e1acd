package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/frameweavers/showreel/internal/config"
	"github.com/frameweavers/showreel/internal/ctxkeys"
	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Log is the global logger instance
var Log *slog.Logger

// Options controls how Init builds the handler chain.
type Options struct {
	AppName   string
	AppEnv    string
	SentryDSN string
}

// OptionsFrom reads the logger options out of the app config.
func OptionsFrom(cfg *config.Config) Options {
	return Options{
		AppName:   cfg.AppName,
		AppEnv:    cfg.AppEnv,
		SentryDSN: cfg.SentryDSN,
	}
}

// Init initializes the global logger based on environment
// Development: Text format with Debug level
// Production: JSON format with Info level
// Errors are additionally shipped to Sentry when a DSN is configured.
func Init(opts Options) {
	isDev := opts.AppEnv == "development"

	var handlers []slog.Handler
	if isDev {
		handlers = append(handlers, slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	} else {
		handlers = append(handlers, slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	if opts.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              opts.SentryDSN,
			Environment:      opts.AppEnv,
			ServerName:       opts.AppName,
			TracesSampleRate: 0.2,
		})
		if err == nil {
			handlers = append(handlers, slogsentry.Option{
				Level: slog.LevelError,
			}.NewSentryHandler())
		}
	}

	Log = slog.New(withRequestID(fanout(handlers)))
	if opts.AppName != "" {
		Log = Log.With("app", opts.AppName)
	}
	slog.SetDefault(Log)
}

func fanout(handlers []slog.Handler) slog.Handler {
	if len(handlers) == 1 {
		return handlers[0]
	}
	return slogmulti.Fanout(handlers...)
}

// withRequestID stamps records logged with a request context, so handler and
// service lines can be matched to the access log entry.
func withRequestID(h slog.Handler) slog.Handler {
	return slogmulti.Pipe(slogmulti.NewHandleInlineMiddleware(
		func(ctx context.Context, record slog.Record, next func(context.Context, slog.Record) error) error {
			if id := ctxkeys.RequestID(ctx); id != "" {
				record.AddAttrs(slog.String("request_id", id))
			}
			return next(ctx, record)
		},
	)).Handler(h)
}
