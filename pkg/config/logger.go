package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

type LoggerConfig struct {
	Level       string `yaml:"level" validate:"required,oneof=none debug normal"`
	Destination string `yaml:"destination,omitempty" sanitize:"path_clean,assure_dir_exists_for_file" validate:"omitempty,filepath"`
	Mode        string `yaml:"mode,omitempty" validate:"omitempty,oneof=append overwrite"`
}

type LoggingConfig struct {
	FileLogger    LoggerConfig `yaml:"file"`
	ConsoleLogger LoggerConfig `yaml:"console"`
}

// Prepare builds the program logger. Console output is split between stdout
// (below error) and stderr; debug forces the console level to debug.
func (conf *LoggingConfig) Prepare(debug bool) (*zap.Logger, io.Closer, error) {
	return conf.prepare(os.Stdout, os.Stderr, debug)
}

func (conf *LoggingConfig) prepare(stdout, stderr zapcore.WriteSyncer, debug bool) (*zap.Logger, io.Closer, error) {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	ec.TimeKey = zapcore.OmitKey
	lowEncoder := zapcore.NewConsoleEncoder(ec)
	highEncoder := consoleEnc{zapcore.NewConsoleEncoder(ec)}

	high := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})

	level := conf.ConsoleLogger.Level
	if debug {
		level = "debug"
	}
	var lowCore, highCore zapcore.Core
	switch level {
	case "normal", "debug":
		floor := zapcore.InfoLevel
		if level == "debug" {
			floor = zapcore.DebugLevel
		}
		lowCore = zapcore.NewCore(lowEncoder, zapcore.Lock(stdout),
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return floor <= lvl && lvl < zapcore.ErrorLevel
			}))
		highCore = zapcore.NewCore(highEncoder, zapcore.Lock(stderr), high)
	default:
		lowCore, highCore = zapcore.NewNopCore(), zapcore.NewNopCore()
	}

	fileCore := zapcore.NewNopCore()
	var closer io.Closer = nopCloser{}
	if lvl, ok := fileLevel(conf.FileLogger.Level); ok {
		flags := os.O_CREATE | os.O_WRONLY
		if conf.FileLogger.Mode == "append" {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}
		f, err := os.OpenFile(conf.FileLogger.Destination, flags, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to access file log destination (%s): %w", conf.FileLogger.Destination, err)
		}
		fileCore = zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.Lock(f), lvl)
		closer = f
	}

	log := zap.New(zapcore.NewTee(highCore, lowCore, fileCore))
	return log.Named("boxlayout"), closer, nil
}

func fileLevel(level string) (zapcore.Level, bool) {
	switch level {
	case "debug":
		return zapcore.DebugLevel, true
	case "normal":
		return zapcore.InfoLevel, true
	}
	return 0, false
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// consoleEnc prints only the message of wrapped errors on the console.
type consoleEnc struct {
	zapcore.Encoder
}

func (c consoleEnc) Clone() zapcore.Encoder {
	return consoleEnc{c.Encoder.Clone()}
}

func (c consoleEnc) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	out := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			if e, ok := f.Interface.(error); ok {
				f.Interface = errors.New(e.Error())
			}
		}
		out = append(out, f)
	}
	return c.Encoder.EncodeEntry(ent, out)
}
