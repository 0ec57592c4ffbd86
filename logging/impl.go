package logging

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Logger is the logging interface used throughout the rig. Structured ("w") variants take
// alternating keys and values.
type Logger interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	// Sublogger returns a child logger named "<parent>.<subname>" sharing the parent's outputs.
	Sublogger(subname string) Logger
	SetLevel(level Level)
	GetLevel() Level
	AsZap() *zap.SugaredLogger
	Sync() error
}

// impl filters a debug-enabled zap core through its own atomic level so that SetLevel on one
// logger never changes the output of its parent or siblings.
type impl struct {
	name  string
	level zap.AtomicLevel
	base  *zap.Logger

	sugared *zap.SugaredLogger
}

func newImpl(name string, level zap.AtomicLevel, base *zap.Logger) *impl {
	return &impl{
		name:    name,
		level:   level,
		base:    base,
		sugared: base.WithOptions(zap.AddCallerSkip(1), zap.IncreaseLevel(level)).Sugar(),
	}
}

func (imp *impl) sugar() *zap.SugaredLogger {
	return imp.sugared
}

func (imp *impl) Sublogger(subname string) Logger {
	newName := subname
	if imp.name != "" {
		newName = imp.name + "." + subname
	}
	return newImpl(newName, zap.NewAtomicLevelAt(imp.level.Level()), imp.base.Named(subname))
}

func (imp *impl) SetLevel(level Level) {
	imp.level.SetLevel(level.AsZap())
}

func (imp *impl) GetLevel() Level {
	return levelFromZap(imp.level.Level())
}

func (imp *impl) AsZap() *zap.SugaredLogger {
	return imp.base.WithOptions(zap.IncreaseLevel(imp.level)).Sugar()
}

func (imp *impl) Sync() error {
	var errs []error
	if err := imp.base.Sync(); err != nil {
		errs = append(errs, err)
	}
	return multierr.Combine(errs...)
}

func (imp *impl) Debug(args ...interface{}) { imp.sugar().Debug(args...) }

func (imp *impl) Debugf(template string, args ...interface{}) {
	imp.sugar().Debugf(template, args...)
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	imp.sugar().Debugw(msg, keysAndValues...)
}

func (imp *impl) Info(args ...interface{}) { imp.sugar().Info(args...) }

func (imp *impl) Infof(template string, args ...interface{}) {
	imp.sugar().Infof(template, args...)
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	imp.sugar().Infow(msg, keysAndValues...)
}

func (imp *impl) Warn(args ...interface{}) { imp.sugar().Warn(args...) }

func (imp *impl) Warnf(template string, args ...interface{}) {
	imp.sugar().Warnf(template, args...)
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	imp.sugar().Warnw(msg, keysAndValues...)
}

func (imp *impl) Error(args ...interface{}) { imp.sugar().Error(args...) }

func (imp *impl) Errorf(template string, args ...interface{}) {
	imp.sugar().Errorf(template, args...)
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	imp.sugar().Errorw(msg, keysAndValues...)
}
