package logger

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	global *zap.Logger
	once   sync.Once
)

// Init sets up the process logger. Output goes to a rotated file under the
// XDG state dir; stdout stays free for the TUI. The QUARTZ_LOG environment
// variable overrides the configured level (debug, info, warn, error),
// defaulting to info. Safe to call more than once; only the first call wins.
func Init(configuredLevel string) {
	once.Do(func() {
		levelName := configuredLevel
		if env := os.Getenv("QUARTZ_LOG"); env != "" {
			levelName = env
		}
		level := zapcore.InfoLevel
		switch levelName {
		case "debug":
			level = zapcore.DebugLevel
		case "warn":
			level = zapcore.WarnLevel
		case "error":
			level = zapcore.ErrorLevel
		}

		path, err := xdg.StateFile(filepath.Join("quartz", "quartz.log"))
		if err != nil {
			// No writable state dir; stay with the nop logger.
			global = zap.NewNop()
			return
		}

		encoderConfig := zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			MessageKey:     "msg",
			CallerKey:      "caller",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.RFC3339TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}

		writer := zapcore.AddSync(&lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
		})

		core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), writer, level)
		global = zap.New(core, zap.AddCaller())
	})
}

func logger() *zap.Logger {
	if global == nil {
		return zap.NewNop()
	}
	return global
}

// Sync flushes buffered log entries.
func Sync() {
	_ = logger().Sync()
}

func Debug(msg string, fields ...zap.Field) { logger().Debug(msg, fields...) }

func Info(msg string, fields ...zap.Field) { logger().Info(msg, fields...) }

func Warn(msg string, fields ...zap.Field) { logger().Warn(msg, fields...) }

func Error(msg string, fields ...zap.Field) { logger().Error(msg, fields...) }

// Field helpers so callers don't import zap directly.

func String(key, val string) zap.Field { return zap.String(key, val) }

func Int(key string, val int) zap.Field { return zap.Int(key, val) }

func Int64(key string, val int64) zap.Field { return zap.Int64(key, val) }

func Bool(key string, val bool) zap.Field { return zap.Bool(key, val) }

func Duration(key string, val time.Duration) zap.Field { return zap.Duration(key, val) }

func Err(err error) zap.Field { return zap.Error(err) }
