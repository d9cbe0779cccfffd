package main

import (
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	webio "github.com/caarlos0/homekit-webio"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"
)

func TestTopicFor(t *testing.T) {
	require.Equal(t, "webio/WB0001/output/3", topicFor("webio", "WB0001", "output", 3))
	require.Equal(t, "home/webio/WB0001/zone/0", topicFor("home/webio", "WB0001", "zone", 0))
}

func TestStateMessages(t *testing.T) {
	on := true
	b, err := json.Marshal(outputMessage(&webio.Output{Index: 1, State: &on, Available: true}))
	require.NoError(t, err)
	require.JSONEq(t, `{"state": true, "available": true}`, string(b))

	b, err = json.Marshal(outputMessage(&webio.Output{Index: 1}))
	require.NoError(t, err)
	require.JSONEq(t, `{"state": null, "available": false}`, string(b))

	name := "Hall"
	b, err = json.Marshal(zoneMessage(&webio.Zone{
		Index:     2,
		Name:      &name,
		State:     webio.ZoneArmedAway,
		PassType:  2,
		Available: true,
	}))
	require.NoError(t, err)
	require.JSONEq(t, `{"state": "armed_away", "available": true, "name": "Hall", "passType": 2}`, string(b))

	b, err = json.Marshal(zoneMessage(&webio.Zone{Index: 2}))
	require.NoError(t, err)
	require.JSONEq(t, `{"state": null, "available": false}`, string(b))
}

func TestNilPublisher(t *testing.T) {
	p, err := newPublisher(Config{})
	require.NoError(t, err)
	require.Nil(t, p)

	cli, _, _ := newTestBridge(t)
	p.Publish(cli)
	p.Close()
}

type testToken struct {
	mqtt.Token
}

func (testToken) WaitTimeout(time.Duration) bool { return true }
func (testToken) Error() error                   { return nil }

type testMQTT struct {
	mqtt.Client

	open      bool
	block     chan struct{}
	mu        sync.Mutex
	published map[string]string
	retained  bool
}

func (c *testMQTT) IsConnectionOpen() bool { return c.open }
func (c *testMQTT) Disconnect(uint)        {}

func (c *testMQTT) Publish(topic string, _ byte, retained bool, payload interface{}) mqtt.Token {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.published == nil {
		c.published = map[string]string{}
	}
	c.published[topic] = string(payload.([]byte))
	c.retained = retained
	return testToken{}
}

func TestPublisher(t *testing.T) {
	cli, _, _ := newTestBridge(t)
	client := &testMQTT{open: true}
	p := startPublisher(client, "webio/")
	p.Publish(cli)
	p.Close()

	require.True(t, client.retained)
	require.Len(t, client.published, 4)
	require.JSONEq(t, `{"state": true, "available": true}`, client.published["webio/WB0001/output/0"])
	require.JSONEq(t, `{"state": "armed_away", "available": true, "name": "House", "passType": 2}`, client.published["webio/WB0001/zone/0"])
}

func TestPublisherSkipsClosedConnection(t *testing.T) {
	cli, _, _ := newTestBridge(t)
	client := &testMQTT{}
	p := startPublisher(client, "webio")
	p.Publish(cli)
	p.Close()
	require.Empty(t, client.published)
}

func TestPublisherDoesNotBlock(t *testing.T) {
	cli, _, _ := newTestBridge(t)
	client := &testMQTT{open: true, block: make(chan struct{})}
	p := startPublisher(client, "webio")

	start := time.Now()
	for i := 0; i < 10; i++ {
		p.Publish(cli)
	}
	require.Less(t, time.Since(start), time.Second)

	close(client.block)
	p.Close()
	require.Len(t, client.published, 4)
}

func TestNewPublisherUnreachableBroker(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	p, err := newPublisher(Config{MQTTBroker: "tcp://" + addr, MQTTTopic: "webio"})
	require.Error(t, err)
	require.Nil(t, p)
}
