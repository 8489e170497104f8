package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"rta-sync/internal/shared/contextkeys"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON = "json"
	FormatText = "text"

	BackendLogrus = "logrus"
	BackendZap    = "zap"

	timestampFormat = "2006-01-02T15:04:05.000Z07:00"
	textTimestamp   = "2006-01-02 15:04:05"
)

// Logger defines the interface for structured logging operations
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Fatal(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	WithFields(fields map[string]interface{}) Logger
	WithContext(ctx context.Context) Logger
	WithComponent(component string) Logger
}

// Options selects the backend, level and encoding of a logger
type Options struct {
	Backend string
	Level   string
	Format  string
	Output  io.Writer
}

// OptionsFromEnv reads LOG_BACKEND, LOG_LEVEL and LOG_FORMAT. Production
// environments (ENVIRONMENT=prod|production) default to JSON.
func OptionsFromEnv() Options {
	opts := Options{
		Backend: strings.ToLower(os.Getenv("LOG_BACKEND")),
		Level:   strings.ToLower(os.Getenv("LOG_LEVEL")),
		Format:  strings.ToLower(os.Getenv("LOG_FORMAT")),
		Output:  os.Stdout,
	}
	if opts.Format == "" {
		switch os.Getenv("ENVIRONMENT") {
		case "production", "prod":
			opts.Format = FormatJSON
		default:
			opts.Format = FormatText
		}
	}
	return opts
}

// NewLogger builds the process logger from the environment
func NewLogger() Logger {
	return New(OptionsFromEnv())
}

// New builds a logger. Unknown levels fall back to info and unknown backends
// to logrus.
func New(opts Options) Logger {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Level == "warning" {
		opts.Level = "warn"
	}
	if opts.Backend == BackendZap {
		return newZap(opts)
	}
	return newLogrus(opts)
}

// contextFields lists the context keys lifted into log fields by WithContext
var contextFields = []struct {
	key  contextkeys.ContextKey
	name string
}{
	{contextkeys.JobNameKey, "job"},
	{contextkeys.RunIDKey, "run_id"},
	{contextkeys.PartitionKey, "partition"},
	{contextkeys.ComponentKey, "component"},
	{contextkeys.OperationKey, "operation"},
}

func fieldsFromContext(ctx context.Context) map[string]interface{} {
	fields := make(map[string]interface{})
	if ctx == nil {
		return fields
	}
	for _, f := range contextFields {
		if s, ok := ctx.Value(f.key).(string); ok && s != "" {
			fields[f.name] = s
		}
	}
	return fields
}

// LogrusLogger implements Logger on a logrus entry
type LogrusLogger struct {
	entry *logrus.Entry
}

func newLogrus(opts Options) *LogrusLogger {
	l := logrus.New()
	l.SetOutput(opts.Output)

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if opts.Format == FormatJSON {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: textTimestamp})
	}
	return &LogrusLogger{entry: logrus.NewEntry(l)}
}

func (l *LogrusLogger) Debug(args ...interface{}) { l.entry.Debug(args...) }
func (l *LogrusLogger) Info(args ...interface{})  { l.entry.Info(args...) }
func (l *LogrusLogger) Warn(args ...interface{})  { l.entry.Warn(args...) }
func (l *LogrusLogger) Error(args ...interface{}) { l.entry.Error(args...) }
func (l *LogrusLogger) Fatal(args ...interface{}) { l.entry.Fatal(args...) }

func (l *LogrusLogger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *LogrusLogger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *LogrusLogger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *LogrusLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
func (l *LogrusLogger) Fatalf(format string, args ...interface{}) { l.entry.Fatalf(format, args...) }

func (l *LogrusLogger) WithFields(fields map[string]interface{}) Logger {
	return &LogrusLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

// WithContext adds the run information carried by ctx
func (l *LogrusLogger) WithContext(ctx context.Context) Logger {
	return l.WithFields(fieldsFromContext(ctx))
}

func (l *LogrusLogger) WithComponent(component string) Logger {
	return &LogrusLogger{entry: l.entry.WithField("component", component)}
}

// ZapLogger implements Logger on zap's sugared logger
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

func newZap(opts Options) *ZapLogger {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil || opts.Level == "" {
		level = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.MessageKey = "message"

	var enc zapcore.Encoder
	if opts.Format == FormatJSON {
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(timestampFormat)
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(textTimestamp)
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(opts.Output)), level)
	return &ZapLogger{sugar: zap.New(core).Sugar()}
}

// NewNopLogger returns a logger that discards everything
func NewNopLogger() Logger {
	return &ZapLogger{sugar: zap.NewNop().Sugar()}
}

func (z *ZapLogger) Debug(args ...interface{}) { z.sugar.Debug(args...) }
func (z *ZapLogger) Info(args ...interface{})  { z.sugar.Info(args...) }
func (z *ZapLogger) Warn(args ...interface{})  { z.sugar.Warn(args...) }
func (z *ZapLogger) Error(args ...interface{}) { z.sugar.Error(args...) }
func (z *ZapLogger) Fatal(args ...interface{}) { z.sugar.Fatal(args...) }

func (z *ZapLogger) Debugf(format string, args ...interface{}) { z.sugar.Debugf(format, args...) }
func (z *ZapLogger) Infof(format string, args ...interface{})  { z.sugar.Infof(format, args...) }
func (z *ZapLogger) Warnf(format string, args ...interface{})  { z.sugar.Warnf(format, args...) }
func (z *ZapLogger) Errorf(format string, args ...interface{}) { z.sugar.Errorf(format, args...) }
func (z *ZapLogger) Fatalf(format string, args ...interface{}) { z.sugar.Fatalf(format, args...) }

func (z *ZapLogger) WithFields(fields map[string]interface{}) Logger {
	kv := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return &ZapLogger{sugar: z.sugar.With(kv...)}
}

// WithContext adds the run information carried by ctx
func (z *ZapLogger) WithContext(ctx context.Context) Logger {
	return z.WithFields(fieldsFromContext(ctx))
}

func (z *ZapLogger) WithComponent(component string) Logger {
	return &ZapLogger{sugar: z.sugar.With("component", component)}
}
