// Package logging provides a shared logger and log utilities to be used in all internal packages.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

var (
	L *zap.Logger        = zap.NewNop()
	S *zap.SugaredLogger = L.Sugar()

	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Initialize replaces the package loggers with one writing at the named level.
// A console encoder is used when attached to a terminal, otherwise logs are
// written as JSON.
func Initialize(lvl string) error {
	if err := SetLevel(lvl); err != nil {
		return err
	}

	var (
		encoder zapcore.Encoder
		writer  zapcore.WriteSyncer
	)

	if term.IsTerminal(int(os.Stdin.Fd())) {
		writer = zapcore.Lock(os.Stderr)
		encoder = zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			MessageKey: "message",

			LevelKey:    "level",
			EncodeLevel: zapcore.CapitalColorLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.ISO8601TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,
		})
	} else {
		writer = zapcore.Lock(os.Stdout)
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	use(zap.New(zapcore.NewCore(encoder, writer, level), zap.AddCaller()))

	return nil
}

// SetLevel changes the level of the package loggers.
func SetLevel(lvl string) error {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(lvl)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", lvl, err)
	}

	level.SetLevel(l)

	return nil
}

// UseWriter replaces the package loggers with a JSON logger writing to w.
// Tests use it to capture output.
func UseWriter(w io.Writer) {
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	use(zap.New(zapcore.NewCore(encoder, zapcore.AddSync(w), level)))
}

func use(l *zap.Logger) {
	L = l
	S = l.Sugar()
}

func Debugf(format string, args ...interface{}) {
	S.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	S.Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	S.Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	S.Errorf(format, args...)
}
