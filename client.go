package webio

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	logp "github.com/charmbracelet/log"
)

var log = logp.NewWithOptions(os.Stderr, logp.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
	Prefix:          "webio",
})

// Transport performs the actual requests against the device.
type Transport interface {
	CheckConnection(ctx context.Context) bool
	GetInfo(ctx context.Context) (json.RawMessage, error)
	GetStatus(ctx context.Context) (Snapshot, error)
	StatusSubscription(ctx context.Context, address string, subscribe bool) bool
	SetOutput(ctx context.Context, index int, on bool) error
	ArmZone(ctx context.Context, index int, arm bool, passcode *string) error
}

// Client is the local model of a single WebIO device.
//
// It owns the output and zone collections. Status updates must not be
// applied concurrently for the same Client.
type Client struct {
	host      string
	transport Transport
	log       *logp.Logger

	info    *deviceInfo
	outputs []*Output
	zones   []*Zone
}

type Option func(*Client)

// WithLogger sets the logger used by the client.
func WithLogger(l *logp.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New creates a client for the device at host using the given transport.
func New(host string, transport Transport, opts ...Option) *Client {
	c := &Client{
		host:      host,
		transport: transport,
		log:       log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewWithCredentials creates a client talking to the device HTTP API.
func NewWithCredentials(host, login, password string, opts ...Option) *Client {
	return New(host, NewAPIClient(host, login, password), opts...)
}

func (c *Client) CheckConnection(ctx context.Context) bool {
	return c.transport.CheckConnection(ctx)
}

// RefreshDeviceInfo loads the device serial number and name.
// It must succeed before entities are created, as they carry the serial.
func (c *Client) RefreshDeviceInfo(ctx context.Context) bool {
	raw, err := c.transport.GetInfo(ctx)
	if err != nil {
		c.log.Warn("get_info: request failed", "err", err)
		return false
	}
	info, ok := decodeObject(raw)
	if !ok {
		c.log.Warn("get_info: response is not an object")
		return false
	}
	serial, serialState := info.stringField(keyWebioSerial)
	name, nameState := info.stringField(keyWebioName)
	if serialState != fieldPresent || nameState != fieldPresent {
		c.log.Warn(
			"get_info: response has missing/invalid values",
			"serial", serialState,
			"name", nameState,
		)
		return false
	}
	c.info = &deviceInfo{
		serial: strings.ReplaceAll(serial, "-", ""),
		name:   name,
	}
	return true
}

func (c *Client) StatusSubscription(ctx context.Context, address string, subscribe bool) bool {
	return c.transport.StatusSubscription(ctx, address, subscribe)
}

// UpdateDeviceStatus merges a status snapshot into the retained outputs
// and zones, and returns the entities it created.
//
// Entities already known are updated in place and are not part of the
// result. A category missing from the snapshot is left untouched.
func (c *Client) UpdateDeviceStatus(snapshot Snapshot) Delta {
	if c.info == nil {
		c.log.Warn("status update before device info was loaded")
	}

	var delta Delta
	if outputs, state := snapshot.category(keyOutputs); state == fieldPresent {
		c.outputs, delta.Outputs = c.outputReconciler().reconcile(c.outputs, outputs)
	} else {
		c.log.Error("No outputs data in status update", "outputs", state)
	}

	if zones, state := snapshot.category(keyZones); state == fieldPresent {
		c.zones, delta.Zones = c.zoneReconciler().reconcile(c.zones, zones)
	} else {
		c.log.Error("No zones data in status update", "zones", state)
	}
	return delta
}

// PollStatus requests the current status from the device and applies it.
func (c *Client) PollStatus(ctx context.Context) (Delta, error) {
	snapshot, err := c.transport.GetStatus(ctx)
	if err != nil {
		return Delta{}, err
	}
	return c.UpdateDeviceStatus(snapshot), nil
}

// SerialNumber returns the device serial, without hyphens.
// It is only known after a successful RefreshDeviceInfo.
func (c *Client) SerialNumber() (string, bool) {
	if c.info == nil {
		return "", false
	}
	return c.info.serial, true
}

// Name returns the device name, or its host if the name is not known.
func (c *Client) Name() string {
	if c.info == nil {
		return c.host
	}
	return c.info.name
}

func (c *Client) Host() string {
	return c.host
}

// Output returns the retained output with the given index, or nil.
func (c *Client) Output(index int) *Output {
	for _, o := range c.outputs {
		if o.Index == index {
			return o
		}
	}
	return nil
}

// Zone returns the retained zone with the given index, or nil.
func (c *Client) Zone(index int) *Zone {
	for _, z := range c.zones {
		if z.Index == index {
			return z
		}
	}
	return nil
}

// Outputs returns the retained outputs.
func (c *Client) Outputs() []*Output {
	return append([]*Output(nil), c.outputs...)
}

// Zones returns the retained zones.
func (c *Client) Zones() []*Zone {
	return append([]*Zone(nil), c.zones...)
}

func (c *Client) serial() string {
	if c.info == nil {
		return ""
	}
	return c.info.serial
}
