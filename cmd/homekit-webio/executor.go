package main

import (
	"context"
	"errors"
	"sync"
	"time"

	webio "github.com/caarlos0/homekit-webio"
	"github.com/cenkalti/backoff/v4"
)

// Executor runs fn with exclusive access to the client, retrying it on
// failure.
type Executor = func(fn func(ctx context.Context, cli *webio.Client) error) error

func defaultBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = time.Second * 5
	bo.MaxElapsedTime = time.Minute
	return bo
}

// clientLock guards a client. Executors bound to different contexts still
// share the lock.
type clientLock struct {
	mu         sync.Mutex
	cli        *webio.Client
	newBackOff func() backoff.BackOff
}

func newClientLock(cli *webio.Client, newBackOff func() backoff.BackOff) *clientLock {
	return &clientLock{
		cli:        cli,
		newBackOff: newBackOff,
	}
}

// bind returns an Executor whose calls and retries stop once ctx is done.
func (l *clientLock) bind(ctx context.Context) Executor {
	return func(fn func(ctx context.Context, cli *webio.Client) error) error {
		t := time.Now()
		l.mu.Lock()
		defer l.mu.Unlock()
		log.Debugf("got client lock after %s", time.Since(t))

		return backoff.RetryNotify(func() error {
			requestCounter.Inc()
			if err := fn(ctx, l.cli); err != nil {
				requestErrorCounter.Inc()
				if errors.Is(err, webio.ErrUnauthorized) {
					return backoff.Permanent(err)
				}
				return err
			}
			return nil
		}, backoff.WithContext(l.newBackOff(), ctx), func(err error, _ time.Duration) {
			log.Error("command to device failed", "err", err)
		})
	}
}

func newExecutor(ctx context.Context, cli *webio.Client, newBackOff func() backoff.BackOff) Executor {
	return newClientLock(cli, newBackOff).bind(ctx)
}
