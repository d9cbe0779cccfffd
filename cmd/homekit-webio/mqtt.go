package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	webio "github.com/caarlos0/homekit-webio"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const (
	publishTimeout = 5 * time.Second
	connectTimeout = 10 * time.Second
)

// Publisher mirrors entity states into retained MQTT messages.
//
// States are collected while the caller holds the client and sent from a
// separate goroutine. A nil Publisher does nothing.
type Publisher struct {
	client mqtt.Client
	prefix string
	queue  chan []publication
	done   chan struct{}
}

type publication struct {
	topic string
	msg   stateMessage
}

type stateMessage struct {
	State     any    `json:"state"`
	Available bool   `json:"available"`
	Name      string `json:"name,omitempty"`
	PassType  int    `json:"passType,omitempty"`
}

func newPublisher(cfg Config) (*Publisher, error) {
	if cfg.MQTTBroker == "" {
		return nil, nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTTBroker)
	opts.SetUsername(cfg.MQTTUsername)
	opts.SetPassword(cfg.MQTTPassword)
	opts.SetClientID("homekit-webio-" + uuid.NewString())
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(connectTimeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		client.Disconnect(0)
		return nil, fmt.Errorf("could not connect to mqtt broker %s: timed out", cfg.MQTTBroker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("could not connect to mqtt broker %s: %w", cfg.MQTTBroker, err)
	}
	return startPublisher(client, cfg.MQTTTopic), nil
}

func startPublisher(client mqtt.Client, topic string) *Publisher {
	p := &Publisher{
		client: client,
		prefix: strings.TrimRight(topic, "/"),
		queue:  make(chan []publication, 1),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish queues the current state of every entity. It never blocks: if the
// previous batch is still being sent, this one is dropped, as the next
// update carries the same entities anyway.
func (p *Publisher) Publish(cli *webio.Client) {
	if p == nil {
		return
	}
	serial, _ := cli.SerialNumber()
	var batch []publication
	for _, o := range cli.Outputs() {
		batch = append(batch, publication{topicFor(p.prefix, serial, "output", o.Index), outputMessage(o)})
	}
	for _, z := range cli.Zones() {
		batch = append(batch, publication{topicFor(p.prefix, serial, "zone", z.Index), zoneMessage(z)})
	}
	select {
	case p.queue <- batch:
	default:
		log.Debug("mqtt publisher is busy, skipping update")
	}
}

// Close sends whatever is queued and disconnects.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	close(p.queue)
	<-p.done
	p.client.Disconnect(250)
}

func (p *Publisher) run() {
	defer close(p.done)
	for batch := range p.queue {
		if !p.client.IsConnectionOpen() {
			log.Debug("mqtt connection is not open, skipping update")
			continue
		}
		for _, pub := range batch {
			p.publish(pub.topic, pub.msg)
		}
	}
}

func (p *Publisher) publish(topic string, msg stateMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Error("could not encode state", "topic", topic, "err", err)
		return
	}
	token := p.client.Publish(topic, 1, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		log.Warn("mqtt publish timed out", "topic", topic)
		return
	}
	if err := token.Error(); err != nil {
		log.Error("could not publish state", "topic", topic, "err", err)
	}
}

func topicFor(prefix, serial, kind string, index int) string {
	return strings.Join([]string{prefix, serial, kind, strconv.Itoa(index)}, "/")
}

func outputMessage(o *webio.Output) stateMessage {
	msg := stateMessage{Available: o.Available}
	if o.State != nil {
		msg.State = *o.State
	}
	return msg
}

func zoneMessage(z *webio.Zone) stateMessage {
	msg := stateMessage{
		Available: z.Available,
		Name:      z.DisplayName(),
		PassType:  z.PassType,
	}
	if z.State.Known() {
		msg.State = z.State.String()
	}
	return msg
}
