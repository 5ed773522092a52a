package config

import (
	"os"
	"runtime"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var encoderCfg = zapcore.EncoderConfig{
	MessageKey:   "message",
	NameKey:      "name",
	LevelKey:     "level",
	EncodeLevel:  zapcore.LowercaseLevelEncoder,
	CallerKey:    "caller",
	EncodeCaller: zapcore.ShortCallerEncoder,
	TimeKey:      "time",
	EncodeTime:   zapcore.ISO8601TimeEncoder,
	LineEnding:   zapcore.DefaultLineEnding,
}

// NewLogger builds a JSON logger writing to stdout at level.
func NewLogger(level zapcore.Level) *zap.Logger {
	return newLogger(zapcore.Lock(os.Stdout), level)
}

func newLogger(out zapcore.WriteSyncer, level zapcore.Level) *zap.Logger {
	return zap.New(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), out, level),
		zap.AddCaller(),
		zap.Fields(zap.String("go_version", runtime.Version())),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
}
