package main

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"boxlayout/pkg/config"
)

type envKey struct{}

// localEnv keeps everything the commands need in a single place.
type localEnv struct {
	Cfg *config.Config
	Log *zap.Logger

	logCloser io.Closer
	start     time.Time
}

func envFromContext(ctx context.Context) *localEnv {
	if env, ok := ctx.Value(envKey{}).(*localEnv); ok {
		return env
	}
	panic("environment not found in context")
}

func contextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &localEnv{Log: zap.NewNop(), start: time.Now()})
}

func (e *localEnv) uptime() time.Duration {
	return time.Since(e.start)
}

// close flushes and releases the log destination.
func (e *localEnv) close() error {
	_ = e.Log.Sync()
	if e.logCloser != nil {
		return e.logCloser.Close()
	}
	return nil
}
