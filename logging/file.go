package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation settings for file logs, in megabytes and file counts.
const (
	fileLogMaxSize    = 64
	fileLogMaxBackups = 2
)

// NewFileLogger returns a logger that writes to stdout like NewLogger and also appends JSON lines
// to a size-rotated file at path. The returned close function flushes and closes the file.
func NewFileLogger(name, path string, level Level) (Logger, func() error) {
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    fileLogMaxSize,
		MaxBackups: fileLogMaxBackups,
		Compress:   true,
	}

	consoleCfg := NewLoggerConfig().EncoderConfig
	fileCfg := consoleCfg
	fileCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stdout), zapcore.DebugLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(rotator), zapcore.DebugLevel),
	)
	base := zap.New(core, zap.AddCaller())
	if name != "" {
		base = base.Named(name)
	}
	logger := newImpl(name, zap.NewAtomicLevelAt(level.AsZap()), base)
	return logger, func() error {
		//nolint:errcheck
		base.Sync()
		return rotator.Close()
	}
}
