// Package logadapt builds a session.Logger backed by zap, with file
// output rotated through lumberjack, following
// enesaygn-device-service-v3's internal/utils.LoggerManager.
package logadapt

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects where logs go and how verbose they are.
type Config struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string
	// Output is "stdout", "stderr", or a file path to rotate through
	// lumberjack.
	Output     string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Logger implements session.Logger over a zap.SugaredLogger, routing
// each call to the "w"-suffixed structured variant (Debugw/Infow/Errorw)
// rather than the wrapped SugaredLogger's own Debug/Info/Error, whose
// (args ...interface{}) signature doesn't take a fixed message.
type Logger struct {
	sugar *zap.SugaredLogger
	base  *zap.Logger
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// New builds a Logger from cfg.
func New(cfg Config) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	encoderCfg.LevelKey = "level"
	encoderCfg.EncodeLevel = zapcore.LowercaseLevelEncoder

	writer, err := writeSyncer(cfg)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), writer, level)
	base := zap.New(core, zap.AddCaller())
	return &Logger{sugar: base.Sugar(), base: base}, nil
}

// Close flushes buffered log entries.
func (l *Logger) Close() error {
	return l.base.Sync()
}

func writeSyncer(cfg Config) (zapcore.WriteSyncer, error) {
	switch cfg.Output {
	case "stdout", "":
		return zapcore.AddSync(os.Stdout), nil
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil
	default:
		return zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Output,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}), nil
	}
}

func parseLevel(level string) (zapcore.Level, error) {
	switch level {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %s", level)
	}
}
