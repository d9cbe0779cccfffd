package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/brutella/hap"
	"github.com/brutella/hap/accessory"
	"github.com/caarlos0/env/v11"
	webio "github.com/caarlos0/homekit-webio"
	logp "github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed index.html
var index []byte

var log = logp.NewWithOptions(os.Stderr, logp.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
	Prefix:          "homekit",
})

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	manufacturer       = "WebIO"
	unsubscribeTimeout = 5 * time.Second
)

func main() {
	log.Info(
		"homekit-webio",
		"version", version,
		"commit", commit,
		"date", date,
		"info", "Homekit bridge for WebIO home automation controllers",
	)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		log.Fatal(
			"could not parse env",
			"err",
			strings.TrimPrefix(strings.ReplaceAll(err.Error(), "; ", "\n"), "env: ")+"\n",
		)
	}
	log.SetLevel(cfg.logLevel())
	log.Info("loading accessories", "config", cfg.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cli := webio.NewWithCredentials(cfg.Host, cfg.Login, cfg.Password)
	lock := newClientLock(cli, defaultBackOff)
	execute := lock.bind(ctx)

	if err := execute(func(ctx context.Context, cli *webio.Client) error {
		if !cli.RefreshDeviceInfo(ctx) {
			return errors.New("could not load device info")
		}
		return nil
	}); err != nil {
		log.Fatal("could not init device", "err", err)
	}
	if err := poll(execute, func(_ *webio.Client, delta webio.Delta) {
		log.Info("got initial status", "outputs", len(delta.Outputs), "zones", len(delta.Zones))
	}); err != nil {
		log.Fatal("could not init accessories", "err", err)
	}

	serial, _ := cli.SerialNumber()
	macAddr, err := webio.MacAddress(cfg.Host)
	if err != nil {
		log.Warn(
			"could not get the mac address, needs 'cap_net_raw+ep' capabilities",
			"err", err,
		)
	}
	log.Info(
		"got device information",
		"name", cli.Name(),
		"serial", serial,
		"mac", macAddr,
	)

	publisher, err := newPublisher(cfg)
	if err != nil {
		log.Warn("mqtt disabled", "err", err)
	}
	defer publisher.Close()

	bridge := accessory.NewBridge(accessory.Info{
		Name:         cli.Name(),
		SerialNumber: serial,
		Manufacturer: manufacturer,
		Firmware:     version,
	})

	var accessories Accessories
	if err := execute(func(_ context.Context, cli *webio.Client) error {
		accessories = setupAccessories(cfg, cli, execute)
		publisher.Publish(cli)
		return nil
	}); err != nil {
		log.Fatal("could not setup accessories", "err", err)
	}

	apply := func(cli *webio.Client, delta webio.Delta) {
		accessories.reportCreated(cfg, delta)
		accessories.Update(cli)
		publisher.Publish(cli)
	}

	go func() {
		tick := time.NewTicker(cfg.PollInterval)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				if err := poll(execute, apply); err != nil {
					log.Error("could not get status", "err", err)
				}
			}
		}
	}()

	fs := hap.NewFsStore("./db")

	server, err := hap.NewServer(fs, bridge.A, accessories.List()...)
	if err != nil {
		log.Fatal("fail to create server", "error", err)
	}
	server.Addr = cfg.Address
	server.ServeMux().Handle("/metrics", promhttp.Handler())
	server.ServeMux().Handle(pushPath, pushHandler(execute, apply))
	server.ServeMux().Handle("/", statusPage(cfg, execute))

	if cfg.SubscribeAddress != "" {
		if err := subscribe(execute, cfg.SubscribeAddress, true); err != nil {
			log.Error("could not subscribe to status updates, polling only", "err", err)
		}
		defer func() {
			if err := unsubscribe(lock, cfg.SubscribeAddress); err != nil {
				log.Error("could not unsubscribe from status updates", "err", err)
			}
		}()
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	signal.Notify(c, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("stopping server")
		signal.Stop(c)
		cancel()
	}()

	log.Info("starting server", "addr", server.Addr)
	if err := server.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("failed to close server", "err", err)
	}
}

func subscribe(execute Executor, address string, enable bool) error {
	return execute(func(ctx context.Context, cli *webio.Client) error {
		if !cli.StatusSubscription(ctx, address, enable) {
			return fmt.Errorf("device refused subscription=%v for %s", enable, address)
		}
		log.Info("status subscription", "address", address, "subscribe", enable)
		return nil
	})
}

// unsubscribe runs on shutdown, after the main context is gone, so it gets
// its own short deadline.
func unsubscribe(lock *clientLock, address string) error {
	ctx, cancel := context.WithTimeout(context.Background(), unsubscribeTimeout)
	defer cancel()
	return subscribe(lock.bind(ctx), address, false)
}

func statusPage(cfg Config, execute Executor) http.Handler {
	tpl := template.Must(template.New("index").Parse(string(index)))
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		var data struct {
			Name   string
			Serial string
			Items  []PageItem
		}
		_ = execute(func(_ context.Context, cli *webio.Client) error {
			data.Name = cli.Name()
			data.Serial, _ = cli.SerialNumber()
			data.Items = pageItems(cfg, cli)
			return nil
		})
		_ = tpl.Execute(w, data)
	})
}
