package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	JSON  bool
	Debug bool
	// App is attached to every entry under the "app" key when set.
	App string
}

func New(opts Options) (*zap.Logger, error) {
	cfg := config(opts)

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return logger, nil
}

func config(opts Options) zap.Config {
	level := zapcore.InfoLevel
	encoding := "console"

	if opts.JSON {
		encoding = "json"
	}

	if opts.Debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "step",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,

			EncodeDuration: zapcore.StringDurationEncoder,
		},
	}

	if opts.App != "" {
		cfg.InitialFields = map[string]any{"app": opts.App}
	}

	return cfg
}
