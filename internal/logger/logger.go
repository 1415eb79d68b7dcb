package logger

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config configures a logger.
type Config struct {
	LogDir         string
	LogName        string
	LogLevel       string
	MaxLogfileSize int // megabytes
	MaxAge         int // days
	EnableStdout   bool
}

var levelMap = map[string]zapcore.Level{
	"debug":  zapcore.DebugLevel,
	"info":   zapcore.InfoLevel,
	"warn":   zapcore.WarnLevel,
	"error":  zapcore.ErrorLevel,
	"dpanic": zapcore.DPanicLevel,
	"panic":  zapcore.PanicLevel,
	"fatal":  zapcore.FatalLevel,
}

// ParseLevel returns the level named lvl, falling back to info.
func ParseLevel(lvl string) zapcore.Level {
	if level, ok := levelMap[lvl]; ok {
		return level
	}
	return zapcore.InfoLevel
}

// TimeEncoder encodes time with millisecond precision in local time.
func TimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
}

// New creates a console encoded logger writing to a rotated file in
// cfg.LogDir and, if enabled, to stdout. Without either it writes to stderr.
func New(cfg Config) *zap.Logger {
	var syncers []zapcore.WriteSyncer

	if cfg.LogDir != "" {
		name := cfg.LogName
		if name == "" {
			name = "qtest.log"
		}

		syncers = append(syncers, zapcore.AddSync(&lumberjack.Logger{
			Filename:  filepath.Join(cfg.LogDir, name),
			MaxSize:   cfg.MaxLogfileSize,
			MaxAge:    cfg.MaxAge,
			LocalTime: true,
		}))
	}

	switch {
	case cfg.EnableStdout:
		syncers = append(syncers, zapcore.AddSync(os.Stdout))
	case len(syncers) == 0:
		syncers = append(syncers, zapcore.AddSync(os.Stderr))
	}

	encoder := zap.NewProductionEncoderConfig()
	encoder.EncodeTime = TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoder),
		zap.CombineWriteSyncers(syncers...),
		zap.NewAtomicLevelAt(ParseLevel(cfg.LogLevel)),
	)

	return zap.New(core, zap.AddCaller())
}
