package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the action-oriented logging interface every service layer
// receives. Each entry carries a machine-readable action tag next to
// the human message so log pipelines can aggregate by action.
type Logger interface {
	Info(action, message, requestID string, details map[string]interface{})
	Debug(action, message, requestID string, details map[string]interface{})
	Error(action, message, requestID string, details map[string]interface{}, err error)
}

type zapLogger struct {
	log *zap.Logger
}

// New builds a JSON logger for the named service. Log level comes from
// LOG_LEVEL (default info).
func New(service string) Logger {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))))); err != nil {
		level.SetLevel(zapcore.InfoLevel)
	}

	encoderCfg := zapcore.EncoderConfig{
		MessageKey: "message",
		TimeKey:    "timestamp",
		LevelKey:   "level",
		EncodeTime: zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(strings.ToUpper(l.String()))
		},
	}

	cfg := zap.Config{
		Level:            level,
		Encoding:         "json",
		EncoderConfig:    encoderCfg,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	log, err := cfg.Build()
	if err != nil {
		log = zap.NewNop()
	}

	hostname, _ := os.Hostname()
	return &zapLogger{
		log: log.With(zap.String("service", service), zap.String("hostname", hostname)),
	}
}

// Nop returns a logger that discards everything; used in tests.
func Nop() Logger {
	return &zapLogger{log: zap.NewNop()}
}

func (l *zapLogger) Info(action, message, requestID string, details map[string]interface{}) {
	l.log.Info(message, fields(action, requestID, details, nil)...)
}

func (l *zapLogger) Debug(action, message, requestID string, details map[string]interface{}) {
	l.log.Debug(message, fields(action, requestID, details, nil)...)
}

func (l *zapLogger) Error(action, message, requestID string, details map[string]interface{}, err error) {
	l.log.Error(message, fields(action, requestID, details, err)...)
}

func fields(action, requestID string, details map[string]interface{}, err error) []zap.Field {
	fs := []zap.Field{zap.String("action", action)}
	if requestID != "" {
		fs = append(fs, zap.String("request_id", requestID))
	}
	if len(details) > 0 {
		fs = append(fs, zap.Any("details", details))
	}
	if err != nil {
		fs = append(fs, zap.Error(err))
	}
	return fs
}
