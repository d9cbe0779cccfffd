package main

import (
	"context"
	"io"
	"net/http"
	"time"

	webio "github.com/caarlos0/homekit-webio"
	"github.com/caarlos0/sync/cio"
)

const (
	pushPath    = "/webio/status"
	maxPushSize = 1 << 20
	pushTimeout = 5 * time.Second
)

// Applier is called with the client lock held after every status update.
type Applier = func(cli *webio.Client, delta webio.Delta)

// pushHandler receives the status updates the device pushes to subscribed
// addresses.
func pushHandler(execute Executor, apply Applier) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(cio.TimeoutReader(io.LimitReader(r.Body, maxPushSize), pushTimeout))
		if err != nil {
			log.Error("could not read pushed status", "err", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		snapshot, err := webio.ParseSnapshot(body)
		if err != nil {
			log.Error("invalid pushed status", "err", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		updatesCounter.WithLabelValues("push").Inc()
		if err := execute(func(_ context.Context, cli *webio.Client) error {
			apply(cli, cli.UpdateDeviceStatus(snapshot))
			return nil
		}); err != nil {
			log.Error("could not apply pushed status", "err", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// poll fetches the status from the device and applies it.
func poll(execute Executor, apply Applier) error {
	updatesCounter.WithLabelValues("poll").Inc()
	return execute(func(ctx context.Context, cli *webio.Client) error {
		delta, err := cli.PollStatus(ctx)
		if err != nil {
			return err
		}
		apply(cli, delta)
		return nil
	})
}
