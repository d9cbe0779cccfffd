package main

import (
	"fmt"
	"strings"
	"time"

	webio "github.com/caarlos0/homekit-webio"
	logp "github.com/charmbracelet/log"
	"golang.org/x/exp/slices"
)

type Config struct {
	Host             string        `env:"HOST,notEmpty"`
	Login            string        `env:"LOGIN"             envDefault:"admin"`
	Password         string        `env:"PASSWORD,notEmpty"`
	Passcode         string        `env:"PASSCODE"`
	OutputNames      []string      `env:"OUTPUT_NAMES"`
	HiddenOutputs    []int         `env:"HIDDEN_OUTPUTS"`
	PollInterval     time.Duration `env:"POLL_INTERVAL"     envDefault:"3s"`
	SubscribeAddress string        `env:"SUBSCRIBE_ADDRESS"`
	Address          string        `env:"LISTEN"            envDefault:":9009"`
	LogLevel         string        `env:"LOG_LEVEL"         envDefault:"info"`
	MQTTBroker       string        `env:"MQTT_BROKER"`
	MQTTUsername     string        `env:"MQTT_USERNAME"`
	MQTTPassword     string        `env:"MQTT_PASSWORD"`
	MQTTTopic        string        `env:"MQTT_TOPIC"        envDefault:"webio"`
}

func (c Config) outputName(index int) string {
	names := c.OutputNames
	if len(names) > index && index >= 0 {
		if n := names[index]; n != "" {
			return n
		}
	}
	return fmt.Sprintf("Output %d", index)
}

func (c Config) zoneName(zone *webio.Zone) string {
	if n := zone.DisplayName(); n != "" {
		return n
	}
	return fmt.Sprintf("Zone %d", zone.Index)
}

// passcode is sent along every arm and disarm, if set.
func (c Config) passcode() *string {
	if c.Passcode == "" {
		return nil
	}
	code := c.Passcode
	return &code
}

// visibleOutputs filters out hidden outputs and sorts the rest by index.
func (c Config) visibleOutputs(outputs []*webio.Output) []*webio.Output {
	var result []*webio.Output
	for _, o := range outputs {
		if slices.Contains(c.HiddenOutputs, o.Index) {
			continue
		}
		result = append(result, o)
	}
	slices.SortFunc(result, func(a, b *webio.Output) int {
		return a.Index - b.Index
	})
	return result
}

func (c Config) logLevel() logp.Level {
	level, err := logp.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return logp.InfoLevel
	}
	return level
}

func (c Config) String() string {
	return strings.Join([]string{
		fmt.Sprintf("host: %s", c.Host),
		fmt.Sprintf("login: %s", c.Login),
		fmt.Sprintf("poll interval: %s", c.PollInterval),
		fmt.Sprintf("hidden outputs: %v", c.HiddenOutputs),
		fmt.Sprintf("subscribe address: %q", c.SubscribeAddress),
		fmt.Sprintf("mqtt broker: %q", c.MQTTBroker),
	}, "\n")
}
